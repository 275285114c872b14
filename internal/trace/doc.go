// Package trace records what the declaration pipeline is doing.
//
// Enable it from the CLI:
//
//	minic symbols --trace=- --trace-level=detail decls.toml
//
// Events are grouped by scope (driver, pass, unit, decl) and filtered by level
// (off, error, phase, detail, debug). Tracers travel through context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "declare", trace.CurrentSpan(ctx))
//	defer span.End("")
package trace
