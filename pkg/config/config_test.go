package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Thresholds.CyclomaticComplexity != 10 {
		t.Errorf("expected cyclomatic threshold 10, got %d", cfg.Thresholds.CyclomaticComplexity)
	}
	if cfg.Thresholds.CognitiveComplexity != 15 {
		t.Errorf("expected cognitive threshold 15, got %d", cfg.Thresholds.CognitiveComplexity)
	}
	if cfg.Thresholds.FunctionLines != 50 {
		t.Errorf("expected function lines threshold 50, got %d", cfg.Thresholds.FunctionLines)
	}
	if !cfg.Exclude.Gitignore {
		t.Error("expected gitignore exclusion enabled by default")
	}
	if cfg.Output.Format != "text" {
		t.Errorf("expected text format, got %s", cfg.Output.Format)
	}
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pyscan.toml")
	content := `
[thresholds]
cyclomatic_complexity = 20
function_lines = 80

[output]
format = "json"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Thresholds.CyclomaticComplexity != 20 {
		t.Errorf("expected cyclomatic threshold 20, got %d", cfg.Thresholds.CyclomaticComplexity)
	}
	if cfg.Thresholds.FunctionLines != 80 {
		t.Errorf("expected function lines 80, got %d", cfg.Thresholds.FunctionLines)
	}
	// Unset values keep defaults
	if cfg.Thresholds.CognitiveComplexity != 15 {
		t.Errorf("expected default cognitive threshold 15, got %d", cfg.Thresholds.CognitiveComplexity)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("expected json format, got %s", cfg.Output.Format)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pyscan.yaml")
	content := `
thresholds:
  nesting_depth: 6
exclude:
  dirs:
    - custom_dir
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Thresholds.NestingDepth != 6 {
		t.Errorf("expected nesting depth 6, got %d", cfg.Thresholds.NestingDepth)
	}
	found := false
	for _, d := range cfg.Exclude.Dirs {
		if d == "custom_dir" {
			found = true
		}
	}
	if !found {
		t.Error("expected custom_dir in exclude dirs")
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pyscan.json")
	content := `{"thresholds": {"coupling": 5}}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Thresholds.Coupling != 5 {
		t.Errorf("expected coupling 5, got %d", cfg.Thresholds.Coupling)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/pyscan.toml"); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestShouldExclude(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		path string
		want bool
	}{
		{"src/main.py", false},
		{"venv/lib/site.py", true},
		{"project/__pycache__/mod.py", true},
		{"app/models.pyc", true},
		{"src/bundle.min.py", true},
		{"src/utils.py", false},
	}

	for _, tt := range tests {
		if got := cfg.ShouldExclude(tt.path); got != tt.want {
			t.Errorf("ShouldExclude(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestStandardLibraries(t *testing.T) {
	cfg := DefaultConfig()
	set := cfg.StandardLibraries()

	if !set["os"] || !set["typing"] || !set["__future__"] {
		t.Error("expected os, typing, __future__ in standard libraries")
	}
	if set["requests"] {
		t.Error("requests should not be a standard library")
	}
}
