package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/AlgorithmAlchemy/py-import-scanner-sub000/internal/scanner"
	"github.com/AlgorithmAlchemy/py-import-scanner-sub000/pkg/config"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

// getPaths returns paths from positional args, defaulting to ["."]
func getPaths(c *cli.Context) []string {
	if c.Args().Len() > 0 {
		return c.Args().Slice()
	}
	return []string{"."}
}

// loadConfig resolves the effective configuration: --config wins,
// otherwise the usual lookup locations.
func loadConfig(c *cli.Context) *config.Config {
	if path := c.String("config"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			color.Yellow("Failed to load config %s: %v", path, err)
			return config.DefaultConfig()
		}
		return cfg
	}
	return config.LoadOrDefault()
}

// collectFiles scans all requested paths for Python sources. A missing
// path is fatal: project-level commands never return partial reports.
func collectFiles(c *cli.Context, cfg *config.Config) ([]string, error) {
	scan := scanner.NewScanner(cfg)

	var files []string
	for _, path := range getPaths(c) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("invalid path %s: %w", path, err)
		}
		if _, err := os.Stat(absPath); err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", path, err)
		}
		found, err := scan.ScanDir(absPath)
		if err != nil {
			return nil, fmt.Errorf("failed to scan directory %s: %w", path, err)
		}
		files = append(files, found...)
	}
	return files, nil
}

func main() {
	app := &cli.App{
		Name:    "pyscan",
		Usage:   "Python code analysis CLI",
		Version: version,
		Description: `Pyscan analyzes Python codebases for complexity, code quality,
duplicate code, import usage, and module dependency structure.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"PYSCAN_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "text",
				Usage:   "Output format: text, json, markdown",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose output",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("no-color") {
				color.NoColor = true
			}
			return nil
		},
		Commands: []*cli.Command{
			complexityCmd(),
			qualityCmd(),
			duplicatesCmd(),
			importsCmd(),
			architectureCmd(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}
