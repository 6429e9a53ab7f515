// Package architecture builds a module-level dependency graph for a
// Python project and reports cycles, isolated modules, and coupling
// hotspots.
package architecture

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/AlgorithmAlchemy/py-import-scanner-sub000/internal/fileproc"
	"github.com/AlgorithmAlchemy/py-import-scanner-sub000/pkg/analyzer"
	"github.com/AlgorithmAlchemy/py-import-scanner-sub000/pkg/parser"
)

// DefaultCouplingThreshold is the combined in+out degree above which a
// module counts as highly coupled.
const DefaultCouplingThreshold = 10

// Analyzer builds dependency graphs from Python source files.
type Analyzer struct {
	root              string
	couplingThreshold int
	onProgress        fileproc.ProgressFunc
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithRoot sets the project root that module names are derived against.
func WithRoot(root string) Option {
	return func(a *Analyzer) {
		a.root = root
	}
}

// WithCouplingThreshold overrides the highly-coupled degree threshold.
func WithCouplingThreshold(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.couplingThreshold = n
		}
	}
}

// WithProgress sets a callback invoked after each file is processed.
func WithProgress(fn fileproc.ProgressFunc) Option {
	return func(a *Analyzer) {
		a.onProgress = fn
	}
}

// New creates a new architecture analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		root:              ".",
		couplingThreshold: DefaultCouplingThreshold,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Compile-time check that Analyzer implements FileAnalyzer.
var _ analyzer.FileAnalyzer[*Analysis] = (*Analyzer)(nil)

// Close releases analyzer resources.
func (a *Analyzer) Close() {}

// fileFacts holds the per-file data gathered during the node phase.
type fileFacts struct {
	path      string
	module    string
	imports   []Import
	classes   []string
	functions []string
}

// Analyze builds the dependency graph for the given files. The node
// phase gathers per-file facts in parallel; the edge phase resolves
// imports only after every node exists.
func (a *Analyzer) Analyze(ctx context.Context, files []string) (*Analysis, error) {
	facts, errs := fileproc.MapFilesWithProgress(ctx, files, func(p *parser.Parser, path string) (fileFacts, error) {
		return a.collectFacts(p, path), nil
	}, a.onProgress)
	if errs != nil && len(facts) == 0 && len(files) > 0 {
		return nil, errs
	}

	sort.Slice(facts, func(i, j int) bool { return facts[i].path < facts[j].path })

	return a.buildGraph(facts), nil
}

// collectFacts parses one file and extracts its module facts. Parse and
// encoding failures degrade to a bare node: the module still appears in
// the graph but declares nothing.
func (a *Analyzer) collectFacts(p *parser.Parser, filePath string) fileFacts {
	facts := fileFacts{
		path:   filePath,
		module: moduleName(a.root, filePath),
	}

	result, err := p.ParseFile(filePath)
	if err != nil {
		return facts
	}

	facts.imports = extractImports(result)
	facts.classes, facts.functions = extractDefinitions(result)
	return facts
}

// moduleName derives the dotted module name from a file path relative
// to the project root. Package markers collapse to the package name.
func moduleName(root, filePath string) string {
	rel, err := filepath.Rel(root, filePath)
	if err != nil {
		rel = filePath
	}
	rel = filepath.ToSlash(rel)
	rel = strings.TrimSuffix(rel, path.Ext(rel))
	if path.Base(rel) == "__init__" {
		rel = path.Dir(rel)
		if rel == "." {
			rel = "__init__"
		}
	}
	return strings.ReplaceAll(rel, "/", ".")
}

// extractImports collects every import target declared anywhere in the
// file, with its statement kind and line number. Relative targets keep
// their leading dots.
func extractImports(result *parser.ParseResult) []Import {
	var imports []Import
	root := result.Tree.RootNode()

	parser.WalkTyped(root, result.Source, func(node *sitter.Node, nodeType string, source []byte) bool {
		switch nodeType {
		case "import_statement":
			line := int(node.StartPoint().Row) + 1
			for i := 0; i < int(node.NamedChildCount()); i++ {
				child := node.NamedChild(i)
				switch child.Type() {
				case "dotted_name":
					imports = append(imports, Import{
						Name: parser.GetNodeText(child, source),
						Type: "import",
						Line: line,
					})
				case "aliased_import":
					if name := child.ChildByFieldName("name"); name != nil {
						imports = append(imports, Import{
							Name: parser.GetNodeText(name, source),
							Type: "import",
							Line: line,
						})
					}
				}
			}
		case "import_from_statement":
			if mod := node.ChildByFieldName("module_name"); mod != nil {
				imports = append(imports, Import{
					Name: parser.GetNodeText(mod, source),
					Type: "from-import",
					Line: int(node.StartPoint().Row) + 1,
				})
			}
		}
		return true
	})

	return imports
}

// extractDefinitions collects the names of classes and functions
// declared in the file, nested ones included.
func extractDefinitions(result *parser.ParseResult) (classes, functions []string) {
	root := result.Tree.RootNode()

	parser.WalkTyped(root, result.Source, func(node *sitter.Node, nodeType string, source []byte) bool {
		switch nodeType {
		case "class_definition":
			if name := node.ChildByFieldName("name"); name != nil {
				classes = append(classes, parser.GetNodeText(name, source))
			}
		case "function_definition":
			if name := node.ChildByFieldName("name"); name != nil {
				functions = append(functions, parser.GetNodeText(name, source))
			}
		}
		return true
	})

	return classes, functions
}

// moduleIndex keeps modules in insertion order so that suffix-match
// resolution is reproducible.
type moduleIndex struct {
	modules []*Module
	byName  map[string]int
}

func newModuleIndex() *moduleIndex {
	return &moduleIndex{byName: make(map[string]int)}
}

func (idx *moduleIndex) add(m *Module) {
	if _, ok := idx.byName[m.Name]; ok {
		return
	}
	idx.byName[m.Name] = len(idx.modules)
	idx.modules = append(idx.modules, m)
}

func (idx *moduleIndex) has(name string) bool {
	_, ok := idx.byName[name]
	return ok
}

// resolve maps a raw import name to a module in the index. Resolution
// order: exact match, relative resolution against the importing module,
// then suffix match in insertion order. Relative imports resolve only
// through the relative branch. Returns "" when the import is external.
func (idx *moduleIndex) resolve(current, imp string) string {
	if idx.has(imp) {
		return imp
	}

	if strings.HasPrefix(imp, ".") {
		dots := 0
		for dots < len(imp) && imp[dots] == '.' {
			dots++
		}
		candidate := current
		for i := 1; i < dots; i++ {
			j := strings.LastIndex(candidate, ".")
			if j < 0 {
				// No parent package to climb into.
				return ""
			}
			candidate = candidate[:j]
		}
		if idx.has(candidate) {
			return candidate
		}
		// Relative imports never fall through to suffix matching.
		return ""
	}

	lastSegment := imp
	if j := strings.LastIndex(imp, "."); j >= 0 {
		lastSegment = imp[j+1:]
	}
	for _, m := range idx.modules {
		if strings.HasSuffix(m.Name, imp) || segmentEquals(m.Name, lastSegment) {
			return m.Name
		}
	}

	return ""
}

// segmentEquals reports whether the last dotted segment of name equals seg.
func segmentEquals(name, seg string) bool {
	if j := strings.LastIndex(name, "."); j >= 0 {
		name = name[j+1:]
	}
	return name == seg
}

// buildGraph runs the edge phase and the structural passes over the
// completed node set.
func (a *Analyzer) buildGraph(facts []fileFacts) *Analysis {
	idx := newModuleIndex()
	for _, f := range facts {
		names := make([]string, len(f.imports))
		for i, imp := range f.imports {
			names[i] = imp.Name
		}
		idx.add(&Module{
			Name:         f.module,
			Path:         f.path,
			Imports:      names,
			Classes:      f.classes,
			Functions:    f.functions,
			Dependencies: []string{},
			Dependents:   []string{},
		})
	}

	var edges []Edge
	for _, f := range facts {
		i, ok := idx.byName[f.module]
		if !ok {
			continue
		}
		m := idx.modules[i]
		if m.Path != f.path {
			continue
		}
		seen := make(map[string]bool)
		for _, imp := range f.imports {
			target := idx.resolve(m.Name, imp.Name)
			if target == "" {
				continue
			}
			edges = append(edges, Edge{
				Source:  m.Name,
				Target:  target,
				Type:    imp.Type,
				Line:    imp.Line,
				Details: imp.Name,
			})
			if !seen[target] {
				seen[target] = true
				m.Dependencies = append(m.Dependencies, target)
			}
		}
	}

	inDegree := make(map[string]int, len(idx.modules))
	outDegree := make(map[string]int, len(idx.modules))
	for _, e := range edges {
		outDegree[e.Source]++
		inDegree[e.Target]++
		target := idx.modules[idx.byName[e.Target]]
		if !containsString(target.Dependents, e.Source) {
			target.Dependents = append(target.Dependents, e.Source)
		}
	}

	cycles := detectCycles(idx, edges)

	var isolated, coupled []string
	for _, m := range idx.modules {
		in, out := inDegree[m.Name], outDegree[m.Name]
		if in == 0 && out == 0 {
			isolated = append(isolated, m.Name)
		}
		if in+out > a.couplingThreshold {
			coupled = append(coupled, m.Name)
		}
	}

	analysis := &Analysis{
		Summary: Summary{
			TotalModules:       len(idx.modules),
			TotalDependencies:  len(edges),
			CircularCount:      len(cycles),
			IsolatedCount:      len(isolated),
			HighlyCoupledCount: len(coupled),
		},
		Modules:         idx.modules,
		Dependencies:    edges,
		Cycles:          cycles,
		Isolated:        isolated,
		HighlyCoupled:   coupled,
		Recommendations: buildRecommendations(cycles, isolated, coupled),
	}
	return analysis
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// detectCycles enumerates all simple cycles in the dependency graph.
// Self-imports are tracked outside gonum since simple graphs reject
// self-loops; they are reported first as one-module cycles.
func detectCycles(idx *moduleIndex, edges []Edge) [][]string {
	var cycles [][]string

	g := simple.NewDirectedGraph()
	for i := range idx.modules {
		g.AddNode(simple.Node(int64(i)))
	}

	selfLoop := make(map[string]bool)
	seen := make(map[[2]int64]bool)
	for _, e := range edges {
		from := int64(idx.byName[e.Source])
		to := int64(idx.byName[e.Target])
		if from == to {
			selfLoop[e.Source] = true
			continue
		}
		key := [2]int64{from, to}
		if seen[key] {
			continue
		}
		seen[key] = true
		g.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
	}

	for _, m := range idx.modules {
		if selfLoop[m.Name] {
			cycles = append(cycles, []string{m.Name})
		}
	}

	for _, cycle := range topo.DirectedCyclesIn(g) {
		// DirectedCyclesIn repeats the first node at the end.
		names := make([]string, 0, len(cycle)-1)
		for _, n := range cycle[:len(cycle)-1] {
			names = append(names, idx.modules[n.ID()].Name)
		}
		cycles = append(cycles, names)
	}

	return cycles
}

func buildRecommendations(cycles [][]string, isolated, coupled []string) []string {
	var recs []string
	if len(cycles) > 0 {
		recs = append(recs, fmt.Sprintf("Found %d circular dependencies. Break the cycles by extracting shared code into a separate module.", len(cycles)))
	}
	if len(isolated) > 0 {
		recs = append(recs, fmt.Sprintf("%d modules are isolated. Remove dead code or connect them to the rest of the project.", len(isolated)))
	}
	if len(coupled) > 0 {
		recs = append(recs, fmt.Sprintf("%d modules are highly coupled. Split responsibilities to reduce their dependency count.", len(coupled)))
	}
	if len(recs) == 0 {
		recs = append(recs, "Architecture looks healthy. No structural issues found.")
	}
	return recs
}

// WriteJSON writes the analysis in the stable JSON export format.
func (a *Analysis) WriteJSON(w io.Writer) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode analysis: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write analysis: %w", err)
	}
	return nil
}

// WriteDOT writes the dependency graph in Graphviz DOT format. Nodes
// are labeled by their last dotted segment.
func (a *Analysis) WriteDOT(w io.Writer) error {
	if len(a.Modules) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("digraph Dependencies {\n")
	b.WriteString("  rankdir=TB;\n")
	b.WriteString("  node [shape=box, style=filled, fillcolor=lightblue];\n")

	for _, m := range a.Modules {
		label := m.Name
		if j := strings.LastIndex(label, "."); j >= 0 {
			label = label[j+1:]
		}
		fmt.Fprintf(&b, "  %q [label=%q];\n", m.Name, label)
	}

	for _, e := range a.Dependencies {
		fmt.Fprintf(&b, "  %q -> %q;\n", e.Source, e.Target)
	}
	b.WriteString("}")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write graph: %w", err)
	}
	return nil
}
