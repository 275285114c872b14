package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"minic/internal/diagfmt"
)

func TestFindProjectFileWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "minic.toml"), []byte(projectTemplate), 0o600); err != nil {
		t.Fatal(err)
	}
	path, ok, err := findProjectFile(nested)
	if err != nil || !ok {
		t.Fatalf("findProjectFile: %v, %v", ok, err)
	}
	if path != filepath.Join(root, "minic.toml") {
		t.Fatalf("path = %s", path)
	}
}

func TestLoadProjectConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
		check   func(t *testing.T, cfg projectConfig)
	}{
		{
			name:    "partial overrides keep defaults",
			content: "[target]\nword_size = 8\n",
			check: func(t *testing.T, cfg projectConfig) {
				tg := cfg.target()
				if tg.WordSize != 8 || tg.ControlLinkSize != 8 || tg.Name != "mips32" {
					t.Fatalf("target = %+v", tg)
				}
				if cfg.Output.Format != "text" || !cfg.cacheEnabled() {
					t.Fatalf("output/cache defaults lost: %+v", cfg)
				}
			},
		},
		{
			name:    "cache off",
			content: "[cache]\nenabled = false\n",
			check: func(t *testing.T, cfg projectConfig) {
				if cfg.cacheEnabled() {
					t.Fatalf("cache should be disabled")
				}
			},
		},
		{name: "bad format", content: "[output]\nformat = \"yaml\"\n", wantErr: "unsupported format"},
		{name: "bad word size", content: "[target]\nword_size = 0\n", wantErr: "word_size"},
		{name: "unknown key", content: "[target]\nendian = \"big\"\n", wantErr: "target.endian"},
		{name: "not toml", content: "[target\n", wantErr: "failed to parse TOML"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "minic.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatal(err)
			}
			cfg, err := loadProjectConfig(path)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("err = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("loadProjectConfig: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestInitProject(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shapes")
	created, err := initProject(dir)
	if err != nil {
		t.Fatalf("initProject: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("created = %v", created)
	}
	if _, err := loadProjectConfig(created[0]); err != nil {
		t.Fatalf("generated minic.toml does not load: %v", err)
	}
	example, err := os.ReadFile(created[1])
	if err != nil || !strings.Contains(string(example), `name = "shapes"`) {
		t.Fatalf("example.toml: %v\n%s", err, example)
	}
	if _, err := initProject(dir); err == nil || !strings.Contains(err.Error(), "already initialized") {
		t.Fatalf("second init: %v", err)
	}
}

func TestRenderVersionJSON(t *testing.T) {
	var buf bytes.Buffer
	info := collectVersionInfo()
	info.GitCommit = ""
	if err := renderVersionJSON(&buf, info, versionOptions{showHash: true}); err != nil {
		t.Fatal(err)
	}
	var decoded map[string]string
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if decoded["tool"] != "minic" || decoded["git_commit"] != "unknown" || decoded["version"] == "" {
		t.Fatalf("payload = %v", decoded)
	}
	if _, ok := decoded["build_date"]; ok {
		t.Fatalf("build_date should be omitted")
	}
}

func TestSymbolsCommand(t *testing.T) {
	dir := t.TempDir()
	if _, err := initProject(dir); err != nil {
		t.Fatal(err)
	}
	bad := "[[decl]]\nkind = \"var\"\nname = \"g\"\ntype = \"int\"\n\n[[decl]]\nkind = \"var\"\nname = \"g\"\ntype = \"int\"\n"
	if err := os.WriteFile(filepath.Join(dir, "bad.toml"), []byte(bad), 0o600); err != nil {
		t.Fatal(err)
	}

	root := &cobra.Command{Use: "minic", SilenceUsage: true, SilenceErrors: true}
	registerGlobalFlags(root)
	root.AddCommand(symbolsCmd)

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs([]string{"symbols", "--no-cache", "--color", "off", dir})

	err := root.Execute()
	if !errors.Is(err, errDeclarationsFailed) {
		t.Fatalf("Execute: %v\nstderr:\n%s", err, errOut.String())
	}
	tables := out.String()
	for _, want := range []string{"unit bad", "unit " + filepath.Base(dir), "int,int->int params=8 locals=4", "origin"} {
		if !strings.Contains(tables, want) {
			t.Fatalf("stdout missing %q:\n%s", want, tables)
		}
	}
	if !strings.Contains(errOut.String(), "error[SEM3002]") || !strings.Contains(errOut.String(), "first declared here") {
		t.Fatalf("stderr:\n%s", errOut.String())
	}
}

func TestSymbolsCommandSarif(t *testing.T) {
	dir := t.TempDir()
	bad := "[[decl]]\nkind = \"var\"\nname = \"g\"\ntype = \"int\"\n\n[[decl]]\nkind = \"var\"\nname = \"g\"\ntype = \"bool\"\n"
	if err := os.WriteFile(filepath.Join(dir, "bad.toml"), []byte(bad), 0o600); err != nil {
		t.Fatal(err)
	}

	root := &cobra.Command{Use: "minic", SilenceUsage: true, SilenceErrors: true}
	registerGlobalFlags(root)
	root.AddCommand(symbolsCmd)
	t.Cleanup(func() {
		_ = symbolsCmd.Flags().Set("diagnostics", "pretty")
	})

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs([]string{"symbols", "--no-cache", "--color", "off", "--diagnostics", "sarif", dir})

	if err := root.Execute(); !errors.Is(err, errDeclarationsFailed) {
		t.Fatalf("Execute: %v", err)
	}
	var log diagfmt.SarifLog
	if err := json.Unmarshal(errOut.Bytes(), &log); err != nil {
		t.Fatalf("stderr is not SARIF: %v\n%s", err, errOut.String())
	}
	results := log.Runs[0].Results
	if len(results) != 1 || results[0].RuleID != "SEM3002" {
		t.Fatalf("unexpected results %+v", results)
	}
	uri := results[0].Locations[0].PhysicalLocation.ArtifactLocation.URI
	if !strings.HasSuffix(uri, "bad.toml") {
		t.Fatalf("uri = %q", uri)
	}
	if inv := log.Runs[0].Invocations; len(inv) != 1 || inv[0].Arguments[0] != "symbols" {
		t.Fatalf("invocations = %+v", inv)
	}
}

func TestSymbolsCommandJSONArray(t *testing.T) {
	dir := t.TempDir()
	manifests := map[string]string{
		"a.toml": "[[decl]]\nkind = \"var\"\nname = \"x\"\ntype = \"int\"\n",
		"b.toml": "[[decl]]\nkind = \"fn\"\nname = \"f\"\nreturns = \"void\"\nparams = []\n",
	}
	for name, content := range manifests {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	root := &cobra.Command{Use: "minic", SilenceUsage: true, SilenceErrors: true}
	registerGlobalFlags(root)
	root.AddCommand(symbolsCmd)
	t.Cleanup(func() {
		_ = symbolsCmd.Flags().Set("format", "text")
	})

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs([]string{"symbols", "--no-cache", "--color", "off", "--format", "json", dir})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v\nstderr:\n%s", err, errOut.String())
	}
	var snaps []struct {
		Unit string `json:"unit"`
	}
	if err := json.Unmarshal(out.Bytes(), &snaps); err != nil {
		t.Fatalf("stdout is not one JSON document: %v\n%s", err, out.String())
	}
	if len(snaps) != 2 || snaps[0].Unit != "a" || snaps[1].Unit != "b" {
		t.Fatalf("snapshots = %+v", snaps)
	}
}
