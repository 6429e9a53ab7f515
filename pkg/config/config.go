// Package config loads pyscan configuration from TOML, YAML, or JSON files.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for pyscan.
type Config struct {
	// Thresholds for complexity and quality metrics
	Thresholds ThresholdConfig `koanf:"thresholds"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude"`

	// Import statistics settings
	Imports ImportsConfig `koanf:"imports"`

	// Output settings
	Output OutputConfig `koanf:"output"`
}

// ThresholdConfig defines metric thresholds.
type ThresholdConfig struct {
	CyclomaticComplexity int `koanf:"cyclomatic_complexity"`
	CognitiveComplexity  int `koanf:"cognitive_complexity"`
	FunctionLines        int `koanf:"function_lines"`
	NestingDepth         int `koanf:"nesting_depth"`
	Coupling             int `koanf:"coupling"`
	LineLength           int `koanf:"line_length"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns   []string `koanf:"patterns"`
	Extensions []string `koanf:"extensions"`
	Dirs       []string `koanf:"dirs"`
	Gitignore  bool     `koanf:"gitignore"`
}

// ImportsConfig controls the import-usage analyzer.
type ImportsConfig struct {
	// ExcludedLibraries are treated as standard-library modules and
	// excluded from third-party usage counts.
	ExcludedLibraries []string `koanf:"excluded_libraries"`
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format  string `koanf:"format"` // text, json, markdown
	Color   bool   `koanf:"color"`
	Verbose bool   `koanf:"verbose"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Thresholds: ThresholdConfig{
			CyclomaticComplexity: 10,
			CognitiveComplexity:  15,
			FunctionLines:        50,
			NestingDepth:         4,
			Coupling:             10,
			LineLength:           79,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*.min.py",
			},
			Extensions: []string{
				".pyc",
				".pyo",
			},
			Dirs: []string{
				"venv",
				".venv",
				"env",
				".env",
				"__pycache__",
				".git",
				"node_modules",
				"build",
				"dist",
				".pytest_cache",
				".tox",
				".mypy_cache",
			},
			Gitignore: true,
		},
		Imports: ImportsConfig{
			ExcludedLibraries: []string{
				"__future__", "abc", "base64", "binascii", "bisect",
				"calendar", "collections", "contextlib", "copy",
				"dataclasses", "datetime", "distutils", "email", "enum",
				"errno", "fnmatch", "functools", "html", "importlib",
				"inspect", "io", "ipaddress", "itertools", "json",
				"locale", "logging", "math", "mimetypes",
				"multiprocessing", "operator", "optparse", "os",
				"pathlib", "pkg_resources", "pkgutil", "posixpath",
				"random", "re", "setuptools", "shlex", "shutil", "site",
				"socket", "ssl", "stat", "struct", "subprocess", "sys",
				"tempfile", "textwrap", "threading", "time", "traceback",
				"types", "typing", "unicodedata", "warnings", "weakref",
				"winreg", "zipfile", "zlib",
			},
		},
		Output: OutputConfig{
			Format:  "text",
			Color:   true,
			Verbose: false,
		},
	}
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	// Determine parser based on extension
	var parser koanf.Parser
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	configNames := []string{
		"pyscan.toml",
		"pyscan.yaml",
		"pyscan.yml",
		"pyscan.json",
		".pyscan.toml",
		".pyscan.yaml",
		".pyscan.yml",
		".pyscan.json",
	}

	searchDirs := []string{".", ".pyscan"}

	for _, dir := range searchDirs {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				cfg, err := Load(path)
				if err == nil {
					return cfg
				}
			}
		}
	}

	return DefaultConfig()
}

// ShouldExclude checks if a path should be excluded from analysis.
func (c *Config) ShouldExclude(path string) bool {
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, string(filepath.Separator)+dir+string(filepath.Separator)) ||
			strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}

	ext := filepath.Ext(path)
	for _, excludeExt := range c.Exclude.Extensions {
		if ext == excludeExt {
			return true
		}
	}

	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}

	return false
}

// StandardLibraries returns the excluded-library names as a set.
func (c *Config) StandardLibraries() map[string]bool {
	set := make(map[string]bool, len(c.Imports.ExcludedLibraries))
	for _, lib := range c.Imports.ExcludedLibraries {
		set[lib] = true
	}
	return set
}
