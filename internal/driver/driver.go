package driver

import (
	"context"
	"fmt"
	"io/fs"
	"math"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"minic/internal/decl"
	"minic/internal/diag"
	"minic/internal/layout"
	"minic/internal/observ"
	"minic/internal/source"
	"minic/internal/symdump"
	"minic/internal/trace"
)

// ProjectFile is the name of the project configuration, never a manifest.
const ProjectFile = "minic.toml"

// Options configures ProcessFiles.
type Options struct {
	Target         layout.Target
	MaxDiagnostics int
	// Jobs limits parallel workers; 0 means GOMAXPROCS.
	Jobs int
	// Cache is consulted before processing and filled afterwards; nil disables it.
	Cache *DiskCache
	// BaseDir is used to render relative paths in diagnostics.
	BaseDir string
	// Progress receives per-manifest events; nil disables reporting.
	Progress ProgressSink
}

// Result is the outcome for one manifest.
type Result struct {
	Path   string
	Files  *source.FileSet
	FileID source.FileID
	// Unit is nil when the result came from the cache or the manifest was not valid TOML.
	Unit     *decl.Unit
	Snapshot *symdump.Snapshot
	Bag      *diag.Bag
	Cached   bool
	Timing   observ.Report
}

// ProcessFiles processes every manifest in paths in parallel. Results are
// returned in the order of paths. Each worker owns its FileSet.
//
// A manifest that cannot be read aborts the whole run; problems inside a
// manifest only show up in its Result.Bag.
func ProcessFiles(ctx context.Context, paths []string, opts Options) ([]Result, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	if opts.Target.WordSize == 0 {
		opts.Target = layout.DefaultTarget()
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopePass, "declare", trace.CurrentSpan(ctx))
	defer span.WithExtra("files", strconv.Itoa(len(paths))).End("")
	ctx = trace.WithSpan(ctx, span)

	// индексы уникальны для каждой горутины, мьютекс не нужен
	results := make([]Result, len(paths))
	for _, path := range paths {
		emit(opts.Progress, Event{File: path, Status: StatusQueued})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			res, err := processFile(gctx, path, opts)
			if err != nil {
				emit(opts.Progress, Event{File: path, Status: StatusError, Err: err, Elapsed: time.Since(start)})
				return err
			}
			status := StatusDone
			switch {
			case res.Cached:
				status = StatusCached
			case res.Bag.HasErrors():
				status = StatusError
			}
			emit(opts.Progress, Event{File: path, Stage: StageCapture, Status: status, Elapsed: time.Since(start)})
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func processFile(ctx context.Context, path string, opts Options) (Result, error) {
	timer := observ.NewTimer()
	files := source.NewFileSet()
	if opts.BaseDir != "" {
		files.SetBaseDir(opts.BaseDir)
	}

	emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusWorking})
	endLoad := timer.Track("load")
	id, err := files.Load(path)
	if err != nil {
		return Result{}, fmt.Errorf("load %s: %w", path, err)
	}
	endLoad("")

	res := Result{Path: path, Files: files, FileID: id}
	limit := opts.MaxDiagnostics
	if limit == 0 {
		limit = decl.DefaultMaxDiagnostics
	}

	var key Digest
	if opts.Cache != nil {
		emit(opts.Progress, Event{File: path, Stage: StageCache, Status: StatusWorking})
		endCache := timer.Track("cache")
		key = CacheKey(files.Get(id).Hash, opts.Target)
		var payload DiskPayload
		hit, err := opts.Cache.Get(key, &payload)
		if err != nil {
			trace.Point(trace.FromContext(ctx), trace.ScopeUnit, "cache-error", err.Error(), trace.CurrentSpan(ctx))
		}
		if hit {
			endCache("hit")
			res.Snapshot = payload.Snapshot
			res.Bag = restoreBag(&payload, id, limit)
			res.Cached = true
			res.Timing = timer.Report()
			return res, nil
		}
		endCache("miss")
	}

	emit(opts.Progress, Event{File: path, Stage: StageDeclare, Status: StatusWorking})
	endDeclare := timer.Track("declare")
	// кэш хранит все диагностики, лимит применяется при выдаче
	unit, bag, err := decl.Load(ctx, files, id, decl.Options{Target: opts.Target, MaxDiagnostics: math.MaxUint16})
	if err != nil {
		return Result{}, err
	}
	endDeclare(strconv.Itoa(bag.Len()) + " diagnostics")

	endCapture := timer.Track("capture")
	res.Unit = unit
	res.Bag = bag.Limit(limit)
	res.Snapshot = symdump.Capture(unit)
	endCapture("")

	if opts.Cache != nil {
		endStore := timer.Track("store")
		if err := opts.Cache.Put(key, newPayload(res.Snapshot, bag)); err != nil {
			trace.Point(trace.FromContext(ctx), trace.ScopeUnit, "cache-error", err.Error(), trace.CurrentSpan(ctx))
		}
		endStore("")
	}
	res.Timing = timer.Report()
	return res, nil
}

// ListManifests expands paths: directories are walked for *.toml files
// (except the project file), plain files are kept as given. The result is
// sorted and free of duplicates.
func ListManifests(paths []string) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	for _, root := range paths {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if path == root {
				add(path)
				return nil
			}
			if strings.HasSuffix(path, ".toml") && d.Name() != ProjectFile {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(out)
	return out, nil
}
