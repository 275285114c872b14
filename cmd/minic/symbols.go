package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"minic/internal/diagfmt"
	"minic/internal/driver"
	"minic/internal/symdump"
	"minic/internal/version"
)

var errDeclarationsFailed = errors.New("declarations have errors")

var symbolsCmd = &cobra.Command{
	Use:   "symbols [path...]",
	Short: "Build and print the symbol tables of declaration manifests",
	Long: `Process declaration manifests (*.toml) and print their symbol tables.
Directories are searched recursively; without arguments the project root
(the directory holding minic.toml) or the current directory is used.`,
	RunE: runSymbols,
}

func init() {
	symbolsCmd.Flags().String("format", "", "output format (text|json); defaults to [output].format")
	symbolsCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	symbolsCmd.Flags().Bool("no-cache", false, "disable the on-disk result cache")
	symbolsCmd.Flags().String("cache-dir", "", "cache directory (default: $XDG_CACHE_HOME/minic)")
	symbolsCmd.Flags().Int("max-cell", 0, "truncate table cells wider than this (0=off)")
	symbolsCmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
	symbolsCmd.Flags().String("diagnostics", "pretty", "diagnostics format on stderr (pretty|json|sarif)")
	symbolsCmd.Flags().String("path-mode", "auto", "paths in diagnostics (auto|absolute|relative|basename)")
}

type symbolsOptions struct {
	format         string
	jobs           int
	useCache       bool
	cacheDir       string
	maxCell        int
	ui             uiMode
	diagnostics    string
	pathMode       diagfmt.PathMode
	args           []string
	maxDiagnostics int
	color          bool
	quiet          bool
	timings        bool
}

func runSymbols(cmd *cobra.Command, args []string) error {
	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	project, _, err := loadProjectManifest(".")
	if err != nil {
		return err
	}
	opts, err := readSymbolsOptions(cmd, project.Config)
	if err != nil {
		return err
	}
	opts.args = append([]string{cmd.Name()}, args...)

	roots := args
	if len(roots) == 0 {
		roots = []string{"."}
		if project.Root != "" {
			roots = []string{project.Root}
		}
	}
	paths, err := driver.ListManifests(roots)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no manifests found in %s", strings.Join(roots, ", "))
	}

	var cache *driver.DiskCache
	if opts.useCache {
		if opts.cacheDir != "" {
			cache, err = driver.NewDiskCache(opts.cacheDir)
		} else {
			cache, err = driver.OpenDiskCache("minic")
		}
		if err != nil {
			if !opts.quiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "cache disabled: %v\n", err)
			}
			cache = nil
		}
	}

	dopts := driver.Options{
		Target:         project.Config.target(),
		MaxDiagnostics: opts.maxDiagnostics,
		Jobs:           opts.jobs,
		Cache:          cache,
		BaseDir:        project.Root,
	}
	var results []driver.Result
	if !opts.quiet && shouldUseTUI(opts.ui, len(paths)) {
		results, err = runWithUI(cmd.Context(), cmd.ErrOrStderr(), paths, dopts)
	} else {
		results, err = driver.ProcessFiles(cmd.Context(), paths, dopts)
	}
	if err != nil {
		return err
	}
	return printResults(cmd.OutOrStdout(), cmd.ErrOrStderr(), results, opts)
}

// readSymbolsOptions merges flags over the project configuration; a flag
// wins only when it was set explicitly.
func readSymbolsOptions(cmd *cobra.Command, cfg projectConfig) (symbolsOptions, error) {
	opts := symbolsOptions{
		format:         cfg.Output.Format,
		maxDiagnostics: cfg.Output.MaxDiagnostics,
		useCache:       cfg.cacheEnabled(),
	}
	flags := cmd.Flags()
	persistent := cmd.Root().PersistentFlags()

	var err error
	if flags.Changed("format") {
		if opts.format, err = flags.GetString("format"); err != nil {
			return opts, err
		}
	}
	if err := checkFormat(opts.format); err != nil {
		return opts, err
	}
	if persistent.Changed("max-diagnostics") {
		if opts.maxDiagnostics, err = persistent.GetInt("max-diagnostics"); err != nil {
			return opts, err
		}
	}
	if opts.jobs, err = flags.GetInt("jobs"); err != nil {
		return opts, err
	}
	noCache, err := flags.GetBool("no-cache")
	if err != nil {
		return opts, err
	}
	opts.useCache = opts.useCache && !noCache
	if opts.cacheDir, err = flags.GetString("cache-dir"); err != nil {
		return opts, err
	}
	if opts.maxCell, err = flags.GetInt("max-cell"); err != nil {
		return opts, err
	}
	uiValue, err := flags.GetString("ui")
	if err != nil {
		return opts, err
	}
	if opts.ui, err = readUIMode(uiValue); err != nil {
		return opts, err
	}
	if opts.diagnostics, err = flags.GetString("diagnostics"); err != nil {
		return opts, err
	}
	switch opts.diagnostics {
	case "pretty", "json", "sarif":
	default:
		return opts, fmt.Errorf("unsupported diagnostics format %q (must be pretty, json or sarif)", opts.diagnostics)
	}
	pathValue, err := flags.GetString("path-mode")
	if err != nil {
		return opts, err
	}
	if opts.pathMode, err = diagfmt.ParsePathMode(pathValue); err != nil {
		return opts, err
	}
	if opts.quiet, err = persistent.GetBool("quiet"); err != nil {
		return opts, err
	}
	if opts.timings, err = persistent.GetBool("timings"); err != nil {
		return opts, err
	}
	if opts.color, err = resolveColor(cmd); err != nil {
		return opts, err
	}
	return opts, nil
}

// printResults writes tables to out and diagnostics to errOut; --format json
// writes a single array with one snapshot per manifest. It returns
// errDeclarationsFailed when any manifest has errors.
func printResults(out, errOut io.Writer, results []driver.Result, opts symbolsOptions) error {
	failed := false
	var (
		jsonDiags   diagfmt.DiagnosticsOutput
		sarifInputs []diagfmt.SarifInput
		snaps       []*symdump.Snapshot
	)
	for i := range results {
		res := &results[i]
		if res.Bag.HasErrors() {
			failed = true
		}
		res.Bag.Sort()
		switch opts.diagnostics {
		case "json":
			jsonDiags.Merge(diagfmt.BuildDiagnosticsOutput(res.Bag, res.Files, diagfmt.JSONOpts{
				IncludePositions: true,
				IncludeNotes:     true,
				PathMode:         opts.pathMode,
			}))
		case "sarif":
			sarifInputs = append(sarifInputs, diagfmt.SarifInput{Bag: res.Bag, Files: res.Files})
		default:
			diagfmt.Pretty(errOut, res.Bag, res.Files, diagfmt.PrettyOpts{
				Color:     opts.color,
				PathMode:  opts.pathMode,
				ShowNotes: true,
			})
		}

		if opts.format == "json" {
			snaps = append(snaps, res.Snapshot)
		} else {
			if i > 0 {
				fmt.Fprintln(out)
			}
			if err := symdump.RenderText(out, res.Snapshot, symdump.TextOptions{
				Color:   opts.color,
				MaxCell: opts.maxCell,
			}); err != nil {
				return err
			}
		}

		if opts.timings && !opts.quiet && opts.diagnostics == "pretty" {
			label := res.Path
			if res.Cached {
				label += " (cached)"
			}
			fmt.Fprintf(errOut, "%s %s", label, res.Timing)
		}
	}

	// все снимки одним документом
	if opts.format == "json" {
		if err := symdump.RenderJSONAll(out, snaps); err != nil {
			return err
		}
	}

	var err error
	switch opts.diagnostics {
	case "json":
		err = diagfmt.WriteJSON(errOut, jsonDiags)
	case "sarif":
		err = diagfmt.WriteSarif(errOut, diagfmt.BuildSarif(diagfmt.SarifRunMeta{
			ToolName:       "minic",
			ToolVersion:    version.Version,
			InvocationArgs: opts.args,
		}, sarifInputs...))
	}
	if err != nil {
		return err
	}
	if failed {
		return errDeclarationsFailed
	}
	return nil
}
