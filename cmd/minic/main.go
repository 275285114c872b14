package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"minic/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "minic",
	Short: "Symbol tables for MiniC declarations",
	Long: `minic processes declaration manifests into symbol tables: global
variables, struct definitions with their fields, and functions with their
parameters, locals and frame layout.`,
	SilenceUsage: true,
}

// main registers subcommands and global flags and runs the root command.
// Any error exits with status 1.
func main() {
	// версия для автоматического флага --version
	rootCmd.Version = version.Version

	rootCmd.AddCommand(symbolsCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	registerGlobalFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// registerGlobalFlags adds the persistent flags every command understands.
func registerGlobalFlags(root *cobra.Command) {
	flags := root.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("quiet", false, "suppress non-essential output")
	flags.Bool("timings", false, "show timing information")
	flags.Int("max-diagnostics", 100, "maximum number of diagnostics per manifest")
	flags.String("trace", "", "write trace events to file ('-' for stderr)")
	flags.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-format", "auto", "trace format (auto|text|ndjson)")
	flags.String("cpu-profile", "", "write CPU profile to file")
	flags.String("mem-profile", "", "write heap profile to file on exit")
	flags.String("runtime-trace", "", "write Go runtime trace to file")
}

// resolveColor reads --color and configures fatih/color accordingly.
func resolveColor(cmd *cobra.Command) (bool, error) {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, err
	}
	var useColor bool
	switch mode {
	case "on":
		useColor = true
	case "off":
		useColor = false
	case "auto":
		useColor = isTerminal(os.Stdout)
	default:
		return false, fmt.Errorf("invalid --color value %q (must be auto, on or off)", mode)
	}
	color.NoColor = !useColor
	return useColor, nil
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
