package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/AlgorithmAlchemy/py-import-scanner-sub000/internal/output"
	"github.com/AlgorithmAlchemy/py-import-scanner-sub000/internal/progress"
	"github.com/AlgorithmAlchemy/py-import-scanner-sub000/pkg/analyzer/duplicates"
)

func duplicatesCmd() *cli.Command {
	return &cli.Command{
		Name:      "duplicates",
		Aliases:   []string{"dup"},
		Usage:     "Detect duplicated code blocks",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "min-occurrences",
				Value: 2,
				Usage: "Show only blocks repeated at least this many times",
			},
		},
		Action: runDuplicatesCmd,
	}
}

func runDuplicatesCmd(c *cli.Context) error {
	minOccurrences := c.Int("min-occurrences")

	cfg := loadConfig(c)
	files, err := collectFiles(c, cfg)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		color.Yellow("No Python files found")
		return nil
	}

	tracker := progress.NewTracker("Detecting duplicates...", len(files))
	dupAnalyzer := duplicates.New(duplicates.WithProgress(tracker.Tick))
	defer dupAnalyzer.Close()

	analysis, err := dupAnalyzer.Analyze(c.Context, files)
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

	if analysis.Summary.TotalBlocks == 0 {
		if formatter.Format() == output.FormatText {
			formatter.Success("No duplicated blocks found")
		}
		return formatter.Output(analysis)
	}

	var rows [][]string
	for _, fr := range analysis.Files {
		for _, block := range fr.Blocks {
			if block.Occurrences < minOccurrences {
				continue
			}
			occStr := fmt.Sprintf("%d", block.Occurrences)
			if block.Occurrences > 3 {
				occStr = color.RedString(occStr)
			}
			lines := make([]string, len(block.Lines))
			for i, l := range block.Lines {
				lines[i] = fmt.Sprintf("%d", l)
			}
			rows = append(rows, []string{
				fr.Path,
				strings.Join(lines, ", "),
				occStr,
				fmt.Sprintf("%.0f%%", block.Similarity*100),
			})
		}
	}

	table := output.NewTable(
		"Duplicated Blocks",
		[]string{"File", "Lines", "Occurrences", "Similarity"},
		rows,
		[]string{
			fmt.Sprintf("Files: %d", analysis.Summary.TotalFiles),
			fmt.Sprintf("With Duplicates: %d", analysis.Summary.FilesWithDuplicates),
			fmt.Sprintf("Blocks: %d", analysis.Summary.TotalBlocks),
			fmt.Sprintf("Occurrences: %d", analysis.Summary.TotalOccurrences),
		},
		analysis,
	)

	return formatter.Output(table)
}
