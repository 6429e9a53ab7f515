package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/AlgorithmAlchemy/py-import-scanner-sub000/internal/output"
	"github.com/AlgorithmAlchemy/py-import-scanner-sub000/internal/progress"
	"github.com/AlgorithmAlchemy/py-import-scanner-sub000/pkg/analyzer/architecture"
)

func architectureCmd() *cli.Command {
	return &cli.Command{
		Name:      "architecture",
		Aliases:   []string{"arch"},
		Usage:     "Build the module dependency graph and report cycles",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "json",
				Usage: "Write the full graph as JSON to file",
			},
			&cli.StringFlag{
				Name:  "dot",
				Usage: "Write the graph in Graphviz DOT format to file",
			},
		},
		Action: runArchitectureCmd,
	}
}

func runArchitectureCmd(c *cli.Context) error {
	cfg := loadConfig(c)

	root, err := filepath.Abs(getPaths(c)[0])
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	if _, err := os.Stat(root); err != nil {
		return fmt.Errorf("cannot access %s: %w", root, err)
	}

	files, err := collectFiles(c, cfg)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		color.Yellow("No Python files found")
		return nil
	}

	tracker := progress.NewTracker("Building dependency graph...", len(files))
	archAnalyzer := architecture.New(
		architecture.WithRoot(root),
		architecture.WithCouplingThreshold(cfg.Thresholds.Coupling),
		architecture.WithProgress(tracker.Tick),
	)
	defer archAnalyzer.Close()

	analysis, err := archAnalyzer.Analyze(c.Context, files)
	if err != nil {
		tracker.FinishError(err)
		return fmt.Errorf("analysis failed: %w", err)
	}
	tracker.FinishSuccess()

	if path := c.String("json"); path != "" {
		if err := writeExport(path, analysis.WriteJSON); err != nil {
			return err
		}
		color.Green("Graph written to %s", path)
	}
	if path := c.String("dot"); path != "" {
		if err := writeExport(path, analysis.WriteDOT); err != nil {
			return err
		}
		color.Green("Graph written to %s", path)
	}

	formatter, err := output.NewFormatter(output.ParseFormat(c.String("format")), c.String("output"), !c.Bool("no-color"))
	if err != nil {
		return err
	}
	defer formatter.Close()

	var rows [][]string
	for _, m := range analysis.Modules {
		rows = append(rows, []string{
			m.Name,
			fmt.Sprintf("%d", len(m.Imports)),
			fmt.Sprintf("%d", len(m.Dependencies)),
			fmt.Sprintf("%d", len(m.Dependents)),
			fmt.Sprintf("%d", len(m.Classes)),
			fmt.Sprintf("%d", len(m.Functions)),
		})
	}

	table := output.NewTable(
		"Module Dependencies",
		[]string{"Module", "Imports", "Deps", "Dependents", "Classes", "Functions"},
		rows,
		[]string{
			fmt.Sprintf("Modules: %d", analysis.Summary.TotalModules),
			fmt.Sprintf("Edges: %d", analysis.Summary.TotalDependencies),
			fmt.Sprintf("Cycles: %d", analysis.Summary.CircularCount),
			fmt.Sprintf("Isolated: %d", analysis.Summary.IsolatedCount),
			fmt.Sprintf("Coupled: %d", analysis.Summary.HighlyCoupledCount),
			"",
		},
		analysis,
	)

	if err := formatter.Output(table); err != nil {
		return err
	}

	if formatter.Format() != output.FormatText {
		return nil
	}

	if len(analysis.Cycles) > 0 {
		formatter.Error("Circular dependencies:")
		for _, cycle := range analysis.Cycles {
			fmt.Fprintf(formatter.Writer(), "  - %s\n", strings.Join(cycle, " -> "))
		}
		fmt.Fprintln(formatter.Writer())
	}

	if len(analysis.Isolated) > 0 {
		formatter.Warning("Isolated modules: %s", strings.Join(analysis.Isolated, ", "))
	}
	if len(analysis.HighlyCoupled) > 0 {
		formatter.Warning("Highly coupled modules: %s", strings.Join(analysis.HighlyCoupled, ", "))
	}

	for _, rec := range analysis.Recommendations {
		formatter.Info("%s", rec)
	}

	return nil
}

// writeExport creates a file and streams an export into it.
func writeExport(path string, write func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	return write(f)
}
