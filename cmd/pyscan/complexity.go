package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/AlgorithmAlchemy/py-import-scanner-sub000/internal/output"
	"github.com/AlgorithmAlchemy/py-import-scanner-sub000/internal/progress"
	"github.com/AlgorithmAlchemy/py-import-scanner-sub000/pkg/analyzer/complexity"
)

func complexityCmd() *cli.Command {
	return &cli.Command{
		Name:      "complexity",
		Aliases:   []string{"cx"},
		Usage:     "Analyze cyclomatic complexity and maintainability",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "functions-only",
				Usage: "Show only function-level metrics",
			},
			&cli.Int64Flag{
				Name:  "max-file-size",
				Usage: "Skip files larger than this many bytes (0 = no limit)",
			},
		},
		Action: runComplexityCmd,
	}
}

func runComplexityCmd(c *cli.Context) error {
	functionsOnly := c.Bool("functions-only")

	cfg := loadConfig(c)
	files, err := collectFiles(c, cfg)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		color.Yellow("No Python files found")
		return nil
	}

	tracker := progress.NewTracker("Analyzing complexity...", len(files))
	cxAnalyzer := complexity.New(
		complexity.WithMaxFileSize(c.Int64("max-file-size")),
		complexity.WithProgress(tracker.Tick),
	)
	defer cxAnalyzer.Close()

	analysis, err := cxAnalyzer.Analyze(c.Context, files)
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

	ccThreshold := cfg.Thresholds.CyclomaticComplexity

	var rows [][]string
	var warnings []string
	var headers []string

	if functionsOnly {
		headers = []string{"File", "Function", "Line", "Cyclomatic", "Lines", "MI"}
		for _, fr := range analysis.Files {
			for _, fn := range fr.Functions {
				ccStr := fmt.Sprintf("%d", fn.Cyclomatic)
				if fn.Cyclomatic > ccThreshold {
					ccStr = color.RedString("%d", fn.Cyclomatic)
					warnings = append(warnings, fmt.Sprintf("%s:%d %s - cyclomatic complexity %d exceeds threshold %d",
						fr.Path, fn.Line, fn.Name, fn.Cyclomatic, ccThreshold))
				}
				rows = append(rows, []string{
					fr.Path,
					fn.Name,
					fmt.Sprintf("%d", fn.Line),
					ccStr,
					fmt.Sprintf("%d", fn.Lines),
					fmt.Sprintf("%.1f", fn.Maintainability),
				})
			}
		}
	} else {
		headers = []string{"File", "Grade", "Cyclomatic", "MI", "Functions", "Classes", "Code Lines"}
		for _, fr := range analysis.Files {
			grade := fr.Grade
			if formatter.Colored() {
				grade = output.GradeColor(fr.Grade)
			}
			ccStr := fmt.Sprintf("%d", fr.Metrics.Cyclomatic)
			if fr.Metrics.Cyclomatic > ccThreshold {
				ccStr = color.RedString("%d", fr.Metrics.Cyclomatic)
			}
			rows = append(rows, []string{
				fr.Path,
				grade,
				ccStr,
				fmt.Sprintf("%.1f", fr.Metrics.Maintainability),
				fmt.Sprintf("%d", fr.Metrics.Functions),
				fmt.Sprintf("%d", fr.Metrics.Classes),
				fmt.Sprintf("%d", fr.Metrics.CodeLines),
			})
		}
	}

	table := output.NewTable(
		"Complexity Analysis",
		headers,
		rows,
		[]string{
			fmt.Sprintf("Files: %d", analysis.Summary.TotalFiles),
			fmt.Sprintf("Functions: %d", analysis.Summary.TotalFunctions),
			fmt.Sprintf("Avg CC: %.2f", analysis.Summary.AvgComplexity),
			fmt.Sprintf("Avg MI: %.1f", analysis.Summary.AvgMaintainability),
		},
		analysis,
	)

	if err := formatter.Output(table); err != nil {
		return err
	}

	if formatter.Format() == output.FormatText {
		if len(analysis.TopFunctions) > 0 && !functionsOnly {
			formatter.Info("Most complex functions:")
			for _, fn := range analysis.TopFunctions {
				fmt.Fprintf(formatter.Writer(), "  - %s in %s:%d (CC: %d)\n", fn.Name, fn.Path, fn.Line, fn.Cyclomatic)
			}
			fmt.Fprintln(formatter.Writer())
		}

		for _, rec := range analysis.Recommendations {
			formatter.Info("%s", rec)
		}

		if len(warnings) > 0 {
			fmt.Fprintln(formatter.Writer())
			color.Yellow("Warnings (%d):", len(warnings))
			for _, w := range warnings {
				fmt.Fprintf(formatter.Writer(), "  - %s\n", w)
			}
		}
	}

	return nil
}
