package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/AlgorithmAlchemy/py-import-scanner-sub000/internal/output"
	"github.com/AlgorithmAlchemy/py-import-scanner-sub000/internal/progress"
	"github.com/AlgorithmAlchemy/py-import-scanner-sub000/pkg/analyzer/imports"
)

func importsCmd() *cli.Command {
	return &cli.Command{
		Name:      "imports",
		Aliases:   []string{"imp"},
		Usage:     "Collect import usage statistics",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "per-file",
				Usage: "List imported libraries per file",
			},
		},
		Action: runImportsCmd,
	}
}

func runImportsCmd(c *cli.Context) error {
	perFile := c.Bool("per-file")

	cfg := loadConfig(c)
	files, err := collectFiles(c, cfg)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		color.Yellow("No Python files found")
		return nil
	}

	tracker := progress.NewTracker("Scanning imports...", len(files))
	impAnalyzer := imports.New(
		imports.WithStandardLibraries(cfg.StandardLibraries()),
		imports.WithProgress(tracker.Tick),
	)
	defer impAnalyzer.Close()

	analysis, err := impAnalyzer.Analyze(c.Context, files)
	if err != nil {
		tracker.FinishError(err)
		return fmt.Errorf("analysis failed: %w", err)
	}
	tracker.FinishSuccess()

	formatter, err := output.NewFormatter(output.ParseFormat(c.String("format")), c.String("output"), !c.Bool("no-color"))
	if err != nil {
		return err
	}
	defer formatter.Close()

	var rows [][]string
	var headers []string
	var title string

	if perFile {
		title = "Imports by File"
		headers = []string{"File", "Libraries"}
		for _, f := range analysis.Files {
			if len(f.Libraries) == 0 {
				continue
			}
			rows = append(rows, []string{f.Path, joinUnique(f.Libraries)})
		}
	} else {
		title = "Most Common Third-Party Libraries"
		headers = []string{"Library", "Imports"}
		for _, lc := range analysis.MostCommon {
			rows = append(rows, []string{lc.Name, fmt.Sprintf("%d", lc.Count)})
		}
	}

	table := output.NewTable(
		title,
		headers,
		rows,
		[]string{
			fmt.Sprintf("Files: %d / Total: %d / Unique: %d / Stdlib: %d / Third-party: %d",
				analysis.Summary.TotalFiles,
				analysis.Summary.TotalImports,
				analysis.Summary.UniqueLibraries,
				analysis.Summary.StdlibImports,
				analysis.Summary.ThirdPartyCount),
			"",
		},
		analysis,
	)

	return formatter.Output(table)
}

// joinUnique renders a library list with duplicates collapsed, keeping
// first-seen order.
func joinUnique(libs []string) string {
	seen := make(map[string]bool, len(libs))
	out := ""
	for _, lib := range libs {
		if seen[lib] {
			continue
		}
		seen[lib] = true
		if out != "" {
			out += ", "
		}
		out += lib
	}
	return out
}
