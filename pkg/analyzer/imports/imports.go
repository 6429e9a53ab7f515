// Package imports collects import-usage statistics for a Python
// project: which libraries are pulled in, how often, and how much of
// the surface is standard library versus third party.
package imports

import (
	"context"
	"sort"
	"strings"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/AlgorithmAlchemy/py-import-scanner-sub000/internal/fileproc"
	"github.com/AlgorithmAlchemy/py-import-scanner-sub000/pkg/analyzer"
	"github.com/AlgorithmAlchemy/py-import-scanner-sub000/pkg/config"
	"github.com/AlgorithmAlchemy/py-import-scanner-sub000/pkg/parser"
)

// maxMostCommon limits the ranked library list.
const maxMostCommon = 10

// Analyzer extracts imported library names from Python sources.
type Analyzer struct {
	stdlib     map[string]bool
	onProgress fileproc.ProgressFunc
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithStandardLibraries overrides the standard-library classification set.
func WithStandardLibraries(set map[string]bool) Option {
	return func(a *Analyzer) {
		a.stdlib = set
	}
}

// WithProgress sets a callback invoked after each file is processed.
func WithProgress(fn fileproc.ProgressFunc) Option {
	return func(a *Analyzer) {
		a.onProgress = fn
	}
}

// New creates a new import analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		stdlib: config.DefaultConfig().StandardLibraries(),
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

// Analyze scans the given files and aggregates library usage.
func (a *Analyzer) Analyze(ctx context.Context, files []string) (*Analysis, error) {
	results, errs := fileproc.MapFilesWithProgress(ctx, files, func(p *parser.Parser, path string) (FileImports, error) {
		result, err := p.ParseFile(path)
		if err != nil {
			return FileImports{Path: path}, nil
		}
		return FileImports{Path: path, Libraries: ExtractLibraries(result)}, nil
	}, a.onProgress)
	if errs != nil && len(results) == 0 && len(files) > 0 {
		return nil, errs
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })

	return a.buildAnalysis(results), nil
}

// ExtractLibraries returns the top-level library name of every import
// in the file, one entry per occurrence. Relative imports and
// underscore-prefixed modules are skipped.
func ExtractLibraries(result *parser.ParseResult) []string {
	var libs []string
	root := result.Tree.RootNode()

	parser.WalkTyped(root, result.Source, func(node *sitter.Node, nodeType string, source []byte) bool {
		switch nodeType {
		case "import_statement":
			for i := 0; i < int(node.NamedChildCount()); i++ {
				child := node.NamedChild(i)
				switch child.Type() {
				case "dotted_name":
					if lib := topLevelName(parser.GetNodeText(child, source)); lib != "" {
						libs = append(libs, lib)
					}
				case "aliased_import":
					if name := child.ChildByFieldName("name"); name != nil {
						if lib := topLevelName(parser.GetNodeText(name, source)); lib != "" {
							libs = append(libs, lib)
						}
					}
				}
			}
		case "import_from_statement":
			if mod := node.ChildByFieldName("module_name"); mod != nil {
				if lib := topLevelName(parser.GetNodeText(mod, source)); lib != "" {
					libs = append(libs, lib)
				}
			}
		}
		return true
	})

	return libs
}

// topLevelName reduces an import target to its first dotted segment and
// validates it as a plain public identifier.
func topLevelName(target string) string {
	if j := strings.Index(target, "."); j >= 0 {
		target = target[:j]
	}
	if !isPublicIdentifier(target) {
		return ""
	}
	return target
}

func isPublicIdentifier(s string) bool {
	if s == "" || s[0] == '_' {
		return false
	}
	for i, r := range s {
		if unicode.IsLetter(r) || r == '_' || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}

func (a *Analyzer) buildAnalysis(files []FileImports) *Analysis {
	analysis := &Analysis{
		Files:      files,
		MostCommon: []LibraryCount{},
		Summary:    Summary{TotalFiles: len(files)},
	}

	counts := make(map[string]int)
	for _, f := range files {
		for _, lib := range f.Libraries {
			analysis.Summary.TotalImports++
			counts[lib]++
			if a.stdlib[lib] {
				analysis.Summary.StdlibImports++
			} else {
				analysis.Summary.ThirdPartyCount++
			}
		}
	}
	analysis.Summary.UniqueLibraries = len(counts)

	ranked := make([]LibraryCount, 0, len(counts))
	for name, count := range counts {
		if a.stdlib[name] {
			continue
		}
		ranked = append(ranked, LibraryCount{Name: name, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > maxMostCommon {
		ranked = ranked[:maxMostCommon]
	}
	analysis.MostCommon = ranked

	return analysis
}
