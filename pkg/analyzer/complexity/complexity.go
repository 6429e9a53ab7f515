// Package complexity computes cyclomatic complexity, nesting depth,
// maintainability and related structural metrics for Python sources.
package complexity

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/AlgorithmAlchemy/py-import-scanner-sub000/internal/fileproc"
	"github.com/AlgorithmAlchemy/py-import-scanner-sub000/internal/scanner"
	"github.com/AlgorithmAlchemy/py-import-scanner-sub000/pkg/analyzer"
	"github.com/AlgorithmAlchemy/py-import-scanner-sub000/pkg/parser"
)

var _ analyzer.FileAnalyzer[*Analysis] = (*Analyzer)(nil)

// Analyzer computes complexity metrics for Python files.
type Analyzer struct {
	parser      *parser.Parser
	maxFileSize int64
	onProgress  fileproc.ProgressFunc
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithMaxFileSize sets the maximum file size to analyze (0 = no limit).
func WithMaxFileSize(maxSize int64) Option {
	return func(a *Analyzer) {
		a.maxFileSize = maxSize
	}
}

// WithProgress sets a callback invoked after each file is processed.
func WithProgress(fn fileproc.ProgressFunc) Option {
	return func(a *Analyzer) {
		a.onProgress = fn
	}
}

// New creates a new complexity analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		parser: parser.New(),
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

// AnalyzeFile analyzes a single file. Parse and decoding failures degrade
// the report to grade "F" with a recorded issue instead of returning an
// error; only I/O failures are errors.
func (a *Analyzer) AnalyzeFile(path string) (*FileReport, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return analyzeContent(a.parser, path, content), nil
}

// Analyze analyzes all files in parallel and folds the per-file reports
// into a project-level analysis.
func (a *Analyzer) Analyze(ctx context.Context, files []string) (*Analysis, error) {
	files, _ = scanner.FilterBySize(files, a.maxFileSize)

	results, errs := fileproc.MapFilesWithProgress(ctx, files, func(psr *parser.Parser, path string) (FileReport, error) {
		content, err := os.ReadFile(path)
		if err != nil {
			return FileReport{}, err
		}
		return *analyzeContent(psr, path, content), nil
	}, a.onProgress)

	if errs != nil && len(results) == 0 && len(files) > 0 {
		return nil, errs
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return buildAnalysis(results), nil
}

// analyzeContent produces a complete file report from raw content.
func analyzeContent(psr *parser.Parser, path string, content []byte) *FileReport {
	report := &FileReport{
		Path:      path,
		Functions: make([]FunctionMetrics, 0),
		Classes:   make([]ClassMetrics, 0),
	}

	result, err := psr.Parse(content, path)
	if err != nil {
		report.Grade = "F"
		report.Issues = append(report.Issues, fmt.Sprintf("cannot decode file: %v", err))
		return report
	}
	if result.HasSyntaxError() {
		report.Grade = "F"
		report.Issues = append(report.Issues, "file contains syntax errors")
		return report
	}

	root := result.Tree.RootNode()

	acc := &fileAccumulator{}
	walkFileMetrics(root, result.Source, 0, acc)

	m := &report.Metrics
	m.Cyclomatic = 1 + acc.branches
	m.MaxNesting = acc.maxNesting
	if acc.visited > 0 {
		m.AvgNesting = float64(acc.depthSum) / float64(acc.visited)
	}
	m.Functions = acc.functions
	m.Classes = acc.classes
	m.Imports = acc.imports
	m.Variables = acc.variables
	m.Comprehensions = acc.comprehensions
	m.MagicNumbers = acc.magicNumbers

	countLines(string(content), m)

	for _, fm := range AnalyzeFunctions(result) {
		report.Functions = append(report.Functions, fm)
		if fm.Lines > 50 {
			m.LongFunctions++
		}
		if fm.Cyclomatic > 10 {
			m.ComplexFunctions++
		}
	}

	for _, cls := range parser.GetClasses(result) {
		report.Classes = append(report.Classes, analyzeClass(cls, result.Source))
	}

	m.Halstead = CalculateHalstead(string(content))
	m.Maintainability = maintainabilityIndex(m.Halstead.Volume, m.Cyclomatic, m.CodeLines)

	report.Grade = gradeMetrics(m)
	return report
}

// fileAccumulator carries the mutable tallies of a single file-level
// traversal. One accumulator per traversal, never shared.
type fileAccumulator struct {
	branches       int
	maxNesting     int
	depthSum       int
	visited        int
	functions      int
	classes        int
	imports        int
	variables      int
	comprehensions int
	magicNumbers   int
}

// walkFileMetrics walks the whole tree in pre-order. Nesting depth
// increases at compound statements and resets to zero at every function
// definition, so nested closures do not inherit the enclosing depth.
func walkFileMetrics(node *sitter.Node, source []byte, depth int, acc *fileAccumulator) {
	nodeType := node.Type()
	d := depth

	switch nodeType {
	case "function_definition":
		d = 0
		acc.functions++
	case "if_statement", "while_statement", "for_statement", "try_statement", "with_statement":
		d = depth + 1
	}

	switch nodeType {
	case "if_statement", "elif_clause", "while_statement", "for_statement",
		"except_clause", "with_statement", "boolean_operator":
		acc.branches++
	case "class_definition":
		acc.classes++
	case "assignment":
		acc.variables++
	case "list_comprehension", "set_comprehension", "dictionary_comprehension", "generator_expression":
		acc.comprehensions++
	case "import_statement":
		acc.imports += countImportTargets(node)
	case "import_from_statement":
		acc.imports++
	case "integer", "float":
		if isMagicNumber(node, source) {
			acc.magicNumbers++
		}
	}

	acc.visited++
	acc.depthSum += d
	if d > acc.maxNesting {
		acc.maxNesting = d
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		walkFileMetrics(node.NamedChild(i), source, d, acc)
	}
}

// countImportTargets counts the imported names in an import statement,
// so `import os, sys` contributes two.
func countImportTargets(node *sitter.Node) int {
	count := 0
	for i := 0; i < int(node.NamedChildCount()); i++ {
		switch node.NamedChild(i).Type() {
		case "dotted_name", "aliased_import":
			count++
		}
	}
	return count
}

// isMagicNumber reports whether a numeric literal counts as a magic
// number: absolute value above 10 and not directly inside a structural
// display (list, tuple, set, dict).
func isMagicNumber(node *sitter.Node, source []byte) bool {
	if parent := node.Parent(); parent != nil {
		switch parent.Type() {
		case "list", "tuple", "set", "dictionary":
			return false
		}
	}

	text := strings.ReplaceAll(parser.GetNodeText(node, source), "_", "")
	if v, err := strconv.ParseInt(text, 0, 64); err == nil {
		return v > 10 || v < -10
	}
	if v, err := strconv.ParseFloat(text, 64); err == nil {
		return math.Abs(v) > 10
	}
	return false
}

// functionAccumulator carries tallies for a single function body walk.
type functionAccumulator struct {
	branches     int
	maxNesting   int
	variables    int
	magicNumbers int
}

func walkFunctionBody(node *sitter.Node, source []byte, depth int, acc *functionAccumulator) {
	nodeType := node.Type()
	d := depth

	switch nodeType {
	case "function_definition":
		d = 0
	case "if_statement", "while_statement", "for_statement", "try_statement", "with_statement":
		d = depth + 1
	}

	switch nodeType {
	case "if_statement", "elif_clause", "while_statement", "for_statement",
		"except_clause", "with_statement", "boolean_operator":
		acc.branches++
	case "assignment":
		acc.variables++
	case "integer", "float":
		if isMagicNumber(node, source) {
			acc.magicNumbers++
		}
	}

	if d > acc.maxNesting {
		acc.maxNesting = d
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		walkFunctionBody(node.NamedChild(i), source, d, acc)
	}
}

// AnalyzeFunctions computes the local metrics for every function in a
// parsed file, in order of appearance. Shared with the quality pass.
func AnalyzeFunctions(result *parser.ParseResult) []FunctionMetrics {
	fns := parser.GetFunctions(result)
	out := make([]FunctionMetrics, 0, len(fns))
	for _, fn := range fns {
		out = append(out, analyzeFunction(fn, result.Source))
	}
	return out
}

// analyzeFunction computes the local metrics for one function. The tally
// is independent of the file-level sweep.
func analyzeFunction(fn parser.FunctionNode, source []byte) FunctionMetrics {
	fm := FunctionMetrics{
		Name:       fn.Name,
		Line:       fn.StartLine,
		EndLine:    fn.EndLine,
		Cyclomatic: 1,
		Lines:      int(fn.EndLine-fn.StartLine) + 1,
		Params:     fn.Params,
	}

	if fn.Body != nil {
		acc := &functionAccumulator{}
		walkFunctionBody(fn.Body, source, 0, acc)
		fm.Cyclomatic += acc.branches
		fm.MaxNesting = acc.maxNesting
		fm.Variables = acc.variables
		fm.MagicNumbers = acc.magicNumbers
	}

	fm.Maintainability = clamp(100-2*float64(fm.Cyclomatic)-0.5*float64(fm.Lines), 0, 100)
	return fm
}

// analyzeClass computes the per-class metrics.
func analyzeClass(cls parser.ClassNode, source []byte) ClassMetrics {
	cm := ClassMetrics{
		Name:  cls.Name,
		Line:  cls.StartLine,
		Bases: cls.Bases,
		Lines: int(cls.EndLine-cls.StartLine) + 1,
	}

	if cls.Body == nil {
		return cm
	}

	for i := 0; i < int(cls.Body.NamedChildCount()); i++ {
		child := cls.Body.NamedChild(i)
		switch child.Type() {
		case "function_definition":
			cm.Methods++
		case "decorated_definition":
			if def := child.ChildByFieldName("definition"); def != nil && def.Type() == "function_definition" {
				cm.Methods++
			}
		}
	}

	parser.WalkTyped(cls.Body, source, func(n *sitter.Node, nodeType string, src []byte) bool {
		switch nodeType {
		case "if_statement", "elif_clause", "while_statement", "for_statement",
			"except_clause", "with_statement", "boolean_operator":
			cm.Branches++
		case "assignment":
			if left := n.NamedChild(0); left != nil && left.Type() == "attribute" {
				if strings.HasPrefix(parser.GetNodeText(left, src), "self.") {
					cm.Attributes++
				}
			}
		}
		return true
	})

	return cm
}

// countLines classifies each physical line as code, comment, or blank,
// and counts lines over 79 characters.
func countLines(content string, m *Metrics) {
	if content == "" {
		return
	}
	for _, line := range strings.Split(content, "\n") {
		if len(line) > 79 {
			m.LongLines++
		}
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			m.BlankLines++
		case strings.HasPrefix(trimmed, "#"):
			m.CommentLines++
		default:
			m.CodeLines++
		}
	}
}

// maintainabilityIndex computes the file-level maintainability index,
// clamped to [0,100]. An empty file scores 100.
func maintainabilityIndex(volume float64, cyclomatic, loc int) float64 {
	if loc == 0 {
		return 100.0
	}
	mi := 171 - 5.2*math.Log(math.Max(volume, 1)) -
		0.23*float64(cyclomatic) -
		16.2*math.Log(math.Max(float64(loc), 1))
	return clamp(mi, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// gradeMetrics maps the file metrics to a letter grade using four
// equally weighted buckets.
func gradeMetrics(m *Metrics) string {
	score := 0

	switch {
	case m.Cyclomatic <= 5:
		score += 25
	case m.Cyclomatic <= 10:
		score += 15
	case m.Cyclomatic <= 15:
		score += 5
	}

	switch {
	case m.Maintainability >= 85:
		score += 25
	case m.Maintainability >= 65:
		score += 15
	case m.Maintainability >= 50:
		score += 5
	}

	switch {
	case m.MaxNesting <= 3:
		score += 25
	case m.MaxNesting <= 5:
		score += 15
	case m.MaxNesting <= 7:
		score += 5
	}

	switch {
	case m.LongFunctions == 0:
		score += 25
	case m.LongFunctions <= 2:
		score += 15
	case m.LongFunctions <= 5:
		score += 5
	}

	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

// buildAnalysis folds per-file reports into the project analysis.
func buildAnalysis(files []FileReport) *Analysis {
	analysis := &Analysis{
		Files: files,
		Summary: Summary{
			TotalFiles:        len(files),
			GradeDistribution: map[string]int{"A": 0, "B": 0, "C": 0, "D": 0, "F": 0},
			Maintainability:   map[string]int{"excellent": 0, "good": 0, "fair": 0, "poor": 0},
		},
	}

	var totalComplexity, totalMI float64
	ranks := make([]FileRank, 0, len(files))
	var functions []FunctionRank

	for _, f := range files {
		s := &analysis.Summary
		s.TotalFunctions += len(f.Functions)
		s.TotalClasses += len(f.Classes)
		s.TotalLines += f.Metrics.CodeLines + f.Metrics.CommentLines + f.Metrics.BlankLines
		s.GradeDistribution[f.Grade]++

		totalComplexity += float64(f.Metrics.Cyclomatic)
		totalMI += f.Metrics.Maintainability

		switch {
		case f.Metrics.Maintainability >= 85:
			s.Maintainability["excellent"]++
		case f.Metrics.Maintainability >= 65:
			s.Maintainability["good"]++
		case f.Metrics.Maintainability >= 50:
			s.Maintainability["fair"]++
		default:
			s.Maintainability["poor"]++
		}

		ranks = append(ranks, FileRank{Path: f.Path, Value: float64(f.Metrics.Cyclomatic)})
		for _, fn := range f.Functions {
			functions = append(functions, FunctionRank{
				Name:       fn.Name,
				Path:       f.Path,
				Line:       fn.Line,
				Cyclomatic: fn.Cyclomatic,
			})
		}
	}

	if len(files) > 0 {
		analysis.Summary.AvgComplexity = totalComplexity / float64(len(files))
		analysis.Summary.AvgMaintainability = totalMI / float64(len(files))
	}

	sort.SliceStable(ranks, func(i, j int) bool { return ranks[i].Value > ranks[j].Value })
	analysis.MostComplex = topRanks(ranks, 10)

	worst := make([]FileRank, len(ranks))
	copy(worst, ranks)
	sort.SliceStable(worst, func(i, j int) bool { return worst[i].Value < worst[j].Value })
	analysis.LeastComplex = topRanks(worst, 10)

	sort.SliceStable(functions, func(i, j int) bool { return functions[i].Cyclomatic > functions[j].Cyclomatic })
	if len(functions) > 10 {
		functions = functions[:10]
	}
	analysis.TopFunctions = functions

	analysis.Recommendations = buildRecommendations(analysis)
	return analysis
}

func topRanks(ranks []FileRank, n int) []FileRank {
	if len(ranks) > n {
		ranks = ranks[:n]
	}
	out := make([]FileRank, len(ranks))
	copy(out, ranks)
	return out
}

func buildRecommendations(a *Analysis) []string {
	var recs []string

	if a.Summary.AvgComplexity > 10 {
		recs = append(recs, fmt.Sprintf("Average cyclomatic complexity is high (%.1f). Refactor the most complex files first.", a.Summary.AvgComplexity))
	}
	if n := a.Summary.GradeDistribution["F"]; n > 0 {
		recs = append(recs, fmt.Sprintf("%d files graded F. Prioritize these for cleanup or fix their parse errors.", n))
	}
	if n := a.Summary.Maintainability["poor"]; n > 0 {
		recs = append(recs, fmt.Sprintf("%d files have poor maintainability (index below 50). Consider splitting them into smaller modules.", n))
	}
	if len(a.TopFunctions) > 0 && a.TopFunctions[0].Cyclomatic > 15 {
		recs = append(recs, fmt.Sprintf("Function %s has cyclomatic complexity %d. Break it into smaller functions.", a.TopFunctions[0].Name, a.TopFunctions[0].Cyclomatic))
	}
	if len(recs) == 0 {
		recs = append(recs, "Code complexity is within acceptable limits.")
	}
	return recs
}
