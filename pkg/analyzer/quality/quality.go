// Package quality runs PEP8-style checks, cognitive complexity, and
// duplication scoring over Python files.
package quality

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/AlgorithmAlchemy/py-import-scanner-sub000/internal/fileproc"
	"github.com/AlgorithmAlchemy/py-import-scanner-sub000/pkg/analyzer"
	"github.com/AlgorithmAlchemy/py-import-scanner-sub000/pkg/analyzer/complexity"
	"github.com/AlgorithmAlchemy/py-import-scanner-sub000/pkg/analyzer/duplicates"
	"github.com/AlgorithmAlchemy/py-import-scanner-sub000/pkg/config"
	"github.com/AlgorithmAlchemy/py-import-scanner-sub000/pkg/parser"
)

var _ analyzer.FileAnalyzer[*Analysis] = (*Analyzer)(nil)

// Analyzer runs the quality pass.
type Analyzer struct {
	parser     *parser.Parser
	thresholds config.ThresholdConfig
	onProgress fileproc.ProgressFunc
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithThresholds overrides the metric thresholds.
func WithThresholds(t config.ThresholdConfig) Option {
	return func(a *Analyzer) {
		a.thresholds = t
	}
}

// WithProgress sets a callback invoked after each file is processed.
func WithProgress(fn fileproc.ProgressFunc) Option {
	return func(a *Analyzer) {
		a.onProgress = fn
	}
}

// New creates a new quality analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		parser:     parser.New(),
		thresholds: config.DefaultConfig().Thresholds,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Close releases analyzer resources.
func (a *Analyzer) Close() {
	a.parser.Close()
}

// AnalyzeFile runs the quality pass on a single file. Line checks run
// even when the file fails to parse; only the tree-based metrics are
// skipped in that case.
func (a *Analyzer) AnalyzeFile(path string) (*FileReport, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return a.analyzeContent(a.parser, path, content), nil
}

// Analyze runs the quality pass on all files in parallel.
func (a *Analyzer) Analyze(ctx context.Context, files []string) (*Analysis, error) {
	results, errs := fileproc.MapFilesWithProgress(ctx, files, func(psr *parser.Parser, path string) (FileReport, error) {
		content, err := os.ReadFile(path)
		if err != nil {
			return FileReport{}, err
		}
		return *a.analyzeContent(psr, path, content), nil
	}, a.onProgress)

	if errs != nil && len(results) == 0 && len(files) > 0 {
		return nil, errs
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return a.buildAnalysis(results), nil
}

func (a *Analyzer) analyzeContent(psr *parser.Parser, path string, content []byte) *FileReport {
	lines := strings.Split(string(content), "\n")

	report := &FileReport{
		Path:       path,
		Violations: CheckStyle(lines),
		Functions:  make([]FunctionQuality, 0),
		Duplicates: duplicates.DetectLines(lines),
	}

	result, err := psr.Parse(content, path)
	switch {
	case err != nil:
		report.Issues = append(report.Issues, fmt.Sprintf("cannot decode file: %v", err))
	case result.HasSyntaxError():
		report.Issues = append(report.Issues, "file contains syntax errors")
	default:
		report.Cognitive = cognitiveComplexity(result.Tree.RootNode(), result.Source)

		metrics := complexity.AnalyzeFunctions(result)
		for i, fn := range parser.GetFunctions(result) {
			fq := FunctionQuality{
				Name:       fn.Name,
				Line:       fn.StartLine,
				Cyclomatic: metrics[i].Cyclomatic,
				Lines:      metrics[i].Lines,
				Params:     metrics[i].Params,
				MaxNesting: metrics[i].MaxNesting,
			}
			if fn.Body != nil {
				fq.Cognitive = cognitiveComplexity(fn.Body, result.Source).Total
			}
			fq.Issues = a.functionIssues(fq)
			report.Functions = append(report.Functions, fq)
		}
	}

	report.Score = a.score(report)
	report.IssuesCount = a.issuesCount(report)
	return report
}

// CheckStyle runs the line-based PEP8 checks: long lines (E501),
// misaligned indentation (E111), tabs (E101), trailing whitespace (W291).
func CheckStyle(lines []string) []Violation {
	violations := make([]Violation, 0)

	for i, line := range lines {
		lineNo := i + 1

		if len(line) > 79 {
			violations = append(violations, Violation{
				Line:     lineNo,
				Column:   80,
				Code:     "E501",
				Message:  fmt.Sprintf("Line too long (%d > 79 characters)", len(line)),
				Severity: "error",
			})
		}

		if tab := strings.IndexByte(line, '\t'); tab >= 0 {
			violations = append(violations, Violation{
				Line:     lineNo,
				Column:   tab + 1,
				Code:     "E101",
				Message:  "Indentation contains tabs",
				Severity: "error",
			})
		}

		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !strings.HasPrefix(trimmed, "#") {
			indent := 0
			for indent < len(line) && line[indent] == ' ' {
				indent++
			}
			if indent%4 != 0 {
				violations = append(violations, Violation{
					Line:     lineNo,
					Column:   1,
					Code:     "E111",
					Message:  "Indentation is not a multiple of four",
					Severity: "error",
				})
			}
		}

		if stripped := strings.TrimRight(line, " \t"); stripped != line {
			violations = append(violations, Violation{
				Line:     lineNo,
				Column:   len(stripped) + 1,
				Code:     "W291",
				Message:  "Trailing whitespace",
				Severity: "warning",
			})
		}
	}

	return violations
}

// cognitiveComplexity computes a flat cognitive tally for a subtree.
// Each control construct adds one; boolean chains add one per operator;
// comprehensions add one.
func cognitiveComplexity(node *sitter.Node, source []byte) Cognitive {
	var cog Cognitive

	add := func(factor string, line uint32) {
		cog.Total++
		cog.Factors = append(cog.Factors, fmt.Sprintf("%s at line %d", factor, line))
	}

	parser.WalkTyped(node, source, func(n *sitter.Node, nodeType string, src []byte) bool {
		line := n.StartPoint().Row + 1
		switch nodeType {
		case "if_statement":
			add("if", line)
		case "elif_clause":
			add("elif", line)
		case "while_statement":
			add("while", line)
		case "for_statement":
			add("for", line)
		case "try_statement":
			add("try", line)
		case "except_clause":
			add("except", line)
		case "with_statement":
			add("with", line)
		case "boolean_operator":
			add("boolean operator", line)
		case "list_comprehension", "set_comprehension", "dictionary_comprehension", "generator_expression":
			add("comprehension", line)
		}
		return true
	})

	return cog
}

// functionIssues lists the thresholds a function exceeds.
func (a *Analyzer) functionIssues(fq FunctionQuality) []string {
	var issues []string
	t := a.thresholds

	if fq.Cyclomatic > t.CyclomaticComplexity {
		issues = append(issues, fmt.Sprintf("cyclomatic complexity %d exceeds %d", fq.Cyclomatic, t.CyclomaticComplexity))
	}
	if fq.Cognitive > t.CognitiveComplexity {
		issues = append(issues, fmt.Sprintf("cognitive complexity %d exceeds %d", fq.Cognitive, t.CognitiveComplexity))
	}
	if fq.Lines > t.FunctionLines {
		issues = append(issues, fmt.Sprintf("function length %d exceeds %d lines", fq.Lines, t.FunctionLines))
	}
	if fq.Params > 5 {
		issues = append(issues, fmt.Sprintf("parameter count %d exceeds 5", fq.Params))
	}
	if fq.MaxNesting > t.NestingDepth {
		issues = append(issues, fmt.Sprintf("nesting depth %d exceeds %d", fq.MaxNesting, t.NestingDepth))
	}
	return issues
}

// score computes the file quality score, starting at 100 and deducting
// per finding, floored at 0.
func (a *Analyzer) score(r *FileReport) float64 {
	score := 100.0

	for _, v := range r.Violations {
		switch v.Severity {
		case "error":
			score -= 2
		case "warning":
			score -= 1
		default:
			score -= 0.5
		}
	}

	t := a.thresholds
	for _, fn := range r.Functions {
		if fn.Cyclomatic > t.CyclomaticComplexity {
			score -= 5
		}
		if fn.Cognitive > t.CognitiveComplexity {
			score -= 3
		}
		if fn.Lines > t.FunctionLines {
			score -= 2
		}
		if fn.Params > 5 {
			score -= 1
		}
		if fn.MaxNesting > t.NestingDepth {
			score -= 2
		}
	}

	for _, d := range r.Duplicates {
		if d.Occurrences > 3 {
			score -= 3
		}
	}

	if score < 0 {
		score = 0
	}
	return score
}

func (a *Analyzer) issuesCount(r *FileReport) int {
	count := len(r.Violations)
	for _, fn := range r.Functions {
		if len(fn.Issues) > 0 {
			count++
		}
		if fn.Cognitive > 10 {
			count++
		}
	}
	for _, d := range r.Duplicates {
		if d.Occurrences > 2 {
			count++
		}
	}
	return count
}

// buildAnalysis folds per-file quality reports into the project view.
func (a *Analyzer) buildAnalysis(files []FileReport) *Analysis {
	analysis := &Analysis{
		Files:   files,
		Summary: Summary{TotalFiles: len(files)},
	}

	scores := make([]FileScore, 0, len(files))
	type rankedFn struct {
		desc       string
		cyclomatic int
	}
	type rankedDup struct {
		desc        string
		occurrences int
	}
	var complexFns []rankedFn
	var dups []rankedDup

	var totalScore float64
	for _, f := range files {
		totalScore += f.Score
		analysis.Summary.TotalViolations += len(f.Violations)
		analysis.Summary.TotalIssues += f.IssuesCount
		scores = append(scores, FileScore{Path: f.Path, Score: f.Score})

		for _, fn := range f.Functions {
			if fn.Cyclomatic > a.thresholds.CyclomaticComplexity {
				complexFns = append(complexFns, rankedFn{
					desc:       fmt.Sprintf("%s in %s (CC: %d)", fn.Name, f.Path, fn.Cyclomatic),
					cyclomatic: fn.Cyclomatic,
				})
			}
		}
		for _, d := range f.Duplicates {
			dups = append(dups, rankedDup{
				desc:        fmt.Sprintf("%d occurrences in %s", d.Occurrences, f.Path),
				occurrences: d.Occurrences,
			})
		}
	}

	if len(files) > 0 {
		analysis.Summary.AvgScore = totalScore / float64(len(files))
	}

	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score < scores[j].Score })
	analysis.WorstFiles = topScores(scores, 5)

	best := make([]FileScore, len(scores))
	copy(best, scores)
	sort.SliceStable(best, func(i, j int) bool { return best[i].Score > best[j].Score })
	analysis.BestFiles = topScores(best, 5)

	sort.SliceStable(complexFns, func(i, j int) bool { return complexFns[i].cyclomatic > complexFns[j].cyclomatic })
	for i, fn := range complexFns {
		if i >= 10 {
			break
		}
		analysis.ComplexFunctions = append(analysis.ComplexFunctions, fn.desc)
	}

	sort.SliceStable(dups, func(i, j int) bool { return dups[i].occurrences > dups[j].occurrences })
	for i, d := range dups {
		if i >= 10 {
			break
		}
		analysis.DuplicateSummaries = append(analysis.DuplicateSummaries, d.desc)
	}

	analysis.Recommendations = a.recommendations(analysis, len(complexFns), len(dups))
	return analysis
}

func topScores(scores []FileScore, n int) []FileScore {
	if len(scores) > n {
		scores = scores[:n]
	}
	out := make([]FileScore, len(scores))
	copy(out, scores)
	return out
}

func (a *Analyzer) recommendations(analysis *Analysis, complexFns, dupBlocks int) []string {
	var recs []string

	if analysis.Summary.TotalFiles > 0 && analysis.Summary.AvgScore < 70 {
		recs = append(recs, fmt.Sprintf("Average quality score is low (%.1f). Address the worst-scoring files first.", analysis.Summary.AvgScore))
	}
	if analysis.Summary.TotalIssues > 100 {
		recs = append(recs, fmt.Sprintf("%d total issues found. Consider enabling a linter in CI to stop regressions.", analysis.Summary.TotalIssues))
	}
	if complexFns > 5 {
		recs = append(recs, fmt.Sprintf("%d functions exceed the complexity threshold. Extract helpers to flatten them.", complexFns))
	}
	if dupBlocks > 5 {
		recs = append(recs, fmt.Sprintf("%d duplicated blocks found. Factor repeated logic into shared functions.", dupBlocks))
	}
	if len(recs) == 0 {
		recs = append(recs, "Code quality is good. Keep it up.")
	}
	return recs
}
