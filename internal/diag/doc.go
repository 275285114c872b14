// Package diag defines the diagnostic model shared by declaration processing
// and the CLI: Severity, Code, Diagnostic, a bounded Bag, Reporter adapters and
// two renderers (stable golden lines and coloured terminal output).
//
// Diagnostics describe problems in the user's declarations. Programming errors
// inside the compiler are panics, not diagnostics.
package diag
