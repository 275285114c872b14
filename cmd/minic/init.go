package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"minic/internal/driver"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create a minic.toml and an example manifest",
	Long: `Initialize a minic project by writing a project file (minic.toml) and an
example declaration manifest (example.toml). Without [path] the current
directory is used; a missing directory is created.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

const projectTemplate = `# minic project configuration

[target]
name = "mips32"
word_size = 4
control_link = 8

[output]
format = "text"
max_diagnostics = 100

[cache]
enabled = true
`

const exampleTemplate = `[unit]
name = %q

[[decl]]
kind = "struct"
name = "Point"
fields = [{ name = "x", type = "int" }, { name = "y", type = "int" }]

[[decl]]
kind = "var"
name = "origin"
type = "struct Point"

[[decl]]
kind = "fn"
name = "add"
returns = "int"
params = [{ name = "a", type = "int" }, { name = "b", type = "int" }]
locals = [{ name = "sum", type = "int" }]
`

func runInit(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	created, err := initProject(target)
	if err != nil {
		return err
	}
	for _, path := range created {
		fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path)
	}
	return nil
}

// initProject writes the project files into dir and returns their paths.
// It refuses to touch a directory that already has a minic.toml.
func initProject(dir string) ([]string, error) {
	target, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if st, err := os.Stat(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		if err := os.MkdirAll(target, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	} else if !st.IsDir() {
		return nil, fmt.Errorf("%q is not a directory", target)
	}

	projectPath := filepath.Join(target, driver.ProjectFile)
	if _, err := os.Stat(projectPath); err == nil {
		return nil, fmt.Errorf("project already initialized: %s exists", projectPath)
	}

	name := strings.TrimSpace(filepath.Base(target))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "example"
	}

	created := []string{projectPath}
	if err := os.WriteFile(projectPath, []byte(projectTemplate), 0o644); err != nil {
		return nil, err
	}
	examplePath := filepath.Join(target, "example.toml")
	if _, err := os.Stat(examplePath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(examplePath, fmt.Appendf(nil, exampleTemplate, name), 0o644); err != nil {
			return nil, err
		}
		created = append(created, examplePath)
	}
	return created, nil
}
