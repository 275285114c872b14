package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"minic/internal/driver"
	"minic/internal/layout"
)

type projectManifest struct {
	Path   string
	Root   string
	Config projectConfig
}

type projectConfig struct {
	Target targetConfig `toml:"target"`
	Output outputConfig `toml:"output"`
	Cache  cacheConfig  `toml:"cache"`
}

type targetConfig struct {
	Name        string `toml:"name"`
	WordSize    int    `toml:"word_size"`
	ControlLink int    `toml:"control_link"`
}

type outputConfig struct {
	Format         string `toml:"format"`
	MaxDiagnostics int    `toml:"max_diagnostics"`
}

type cacheConfig struct {
	Enabled *bool `toml:"enabled"`
}

// defaultProjectConfig is what a missing minic.toml amounts to.
func defaultProjectConfig() projectConfig {
	t := layout.DefaultTarget()
	return projectConfig{
		Target: targetConfig{Name: t.Name, WordSize: t.WordSize, ControlLink: t.ControlLinkSize},
		Output: outputConfig{Format: "text", MaxDiagnostics: 100},
	}
}

func (c projectConfig) target() layout.Target {
	return layout.Target{
		Name:            c.Target.Name,
		WordSize:        c.Target.WordSize,
		ControlLinkSize: c.Target.ControlLink,
	}
}

func (c projectConfig) cacheEnabled() bool {
	return c.Cache.Enabled == nil || *c.Cache.Enabled
}

func findProjectFile(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, driver.ProjectFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// loadProjectManifest finds minic.toml at or above startDir. Without one the
// defaults apply and ok is false.
func loadProjectManifest(startDir string) (*projectManifest, bool, error) {
	manifestPath, ok, err := findProjectFile(startDir)
	if err != nil || !ok {
		return &projectManifest{Config: defaultProjectConfig()}, false, err
	}
	cfg, err := loadProjectConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &projectManifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

// loadProjectConfig decodes path on top of the defaults; keys that are not
// set keep their default values.
func loadProjectConfig(path string) (projectConfig, error) {
	cfg := defaultProjectConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return projectConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return projectConfig{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("target", "word_size") && cfg.Target.WordSize <= 0 {
		return projectConfig{}, fmt.Errorf("%s: [target].word_size must be positive", path)
	}
	if meta.IsDefined("target", "control_link") && cfg.Target.ControlLink < 0 {
		return projectConfig{}, fmt.Errorf("%s: [target].control_link must not be negative", path)
	}
	if err := checkFormat(cfg.Output.Format); err != nil {
		return projectConfig{}, fmt.Errorf("%s: [output].format: %w", path, err)
	}
	if cfg.Output.MaxDiagnostics < 0 {
		return projectConfig{}, fmt.Errorf("%s: [output].max_diagnostics must not be negative", path)
	}
	return cfg, nil
}

func checkFormat(format string) error {
	switch format {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf("unsupported format %q (must be text or json)", format)
	}
}
