package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/AlgorithmAlchemy/py-import-scanner-sub000/internal/output"
	"github.com/AlgorithmAlchemy/py-import-scanner-sub000/internal/progress"
	"github.com/AlgorithmAlchemy/py-import-scanner-sub000/pkg/analyzer/quality"
)

func qualityCmd() *cli.Command {
	return &cli.Command{
		Name:      "quality",
		Aliases:   []string{"q"},
		Usage:     "Check code style, cognitive complexity, and duplication",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "violations",
				Usage: "Show individual style violations",
			},
		},
		Action: runQualityCmd,
	}
}

func runQualityCmd(c *cli.Context) error {
	showViolations := c.Bool("violations")

	cfg := loadConfig(c)
	files, err := collectFiles(c, cfg)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		color.Yellow("No Python files found")
		return nil
	}

	tracker := progress.NewTracker("Checking quality...", len(files))
	qAnalyzer := quality.New(
		quality.WithThresholds(cfg.Thresholds),
		quality.WithProgress(tracker.Tick),
	)
	defer qAnalyzer.Close()

	analysis, err := qAnalyzer.Analyze(c.Context, files)
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
	for _, fr := range analysis.Files {
		scoreStr := fmt.Sprintf("%.1f", fr.Score)
		switch {
		case fr.Score < 50:
			scoreStr = color.RedString(scoreStr)
		case fr.Score < 70:
			scoreStr = color.YellowString(scoreStr)
		}
		rows = append(rows, []string{
			fr.Path,
			scoreStr,
			fmt.Sprintf("%d", len(fr.Violations)),
			fmt.Sprintf("%d", fr.Cognitive.Total),
			fmt.Sprintf("%d", fr.IssuesCount),
		})
	}

	table := output.NewTable(
		"Code Quality",
		[]string{"File", "Score", "Violations", "Cognitive", "Issues"},
		rows,
		[]string{
			fmt.Sprintf("Files: %d", analysis.Summary.TotalFiles),
			fmt.Sprintf("Avg Score: %.1f", analysis.Summary.AvgScore),
			fmt.Sprintf("Violations: %d", analysis.Summary.TotalViolations),
			"",
			fmt.Sprintf("Issues: %d", analysis.Summary.TotalIssues),
		},
		analysis,
	)

	if err := formatter.Output(table); err != nil {
		return err
	}

	if formatter.Format() != output.FormatText {
		return nil
	}

	if showViolations {
		for _, fr := range analysis.Files {
			for _, v := range fr.Violations {
				code := v.Code
				if formatter.Colored() {
					code = output.SeverityColor(v.Severity, v.Code)
				}
				fmt.Fprintf(formatter.Writer(), "%s:%d:%d %s %s\n", fr.Path, v.Line, v.Column, code, v.Message)
			}
		}
		fmt.Fprintln(formatter.Writer())
	}

	if len(analysis.ComplexFunctions) > 0 {
		formatter.Warning("Complex functions:")
		for _, fn := range analysis.ComplexFunctions {
			fmt.Fprintf(formatter.Writer(), "  - %s\n", fn)
		}
		fmt.Fprintln(formatter.Writer())
	}

	if len(analysis.DuplicateSummaries) > 0 {
		formatter.Warning("Duplicated code:")
		for _, d := range analysis.DuplicateSummaries {
			fmt.Fprintf(formatter.Writer(), "  - %s\n", d)
		}
		fmt.Fprintln(formatter.Writer())
	}

	for _, rec := range analysis.Recommendations {
		formatter.Info("%s", rec)
	}

	return nil
}
