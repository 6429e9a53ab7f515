package architecture

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeProject creates the given files under a temp dir and returns the
// root plus the file list in creation order.
func writeProject(t *testing.T, files map[string]string) (string, []string) {
	t.Helper()
	root := t.TempDir()
	var paths []string
	for rel, content := range files {
		full := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
		paths = append(paths, full)
	}
	return root, paths
}

func analyzeProject(t *testing.T, files map[string]string, opts ...Option) *Analysis {
	t.Helper()
	root, paths := writeProject(t, files)
	a := New(append([]Option{WithRoot(root)}, opts...)...)
	defer a.Close()

	analysis, err := a.Analyze(context.Background(), paths)
	require.NoError(t, err)
	return analysis
}

func TestModuleName(t *testing.T) {
	root := filepath.Join("proj")
	tests := []struct {
		path string
		want string
	}{
		{filepath.Join("proj", "main.py"), "main"},
		{filepath.Join("proj", "pkg", "util.py"), "pkg.util"},
		{filepath.Join("proj", "pkg", "sub", "mod.py"), "pkg.sub.mod"},
		{filepath.Join("proj", "pkg", "__init__.py"), "pkg"},
		{filepath.Join("proj", "__init__.py"), "__init__"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, moduleName(root, tt.path), tt.path)
	}
}

func TestSingleImportEdge(t *testing.T) {
	analysis := analyzeProject(t, map[string]string{
		"main.py":     "import pkg.util\n\npkg.util.run()\n",
		"pkg/util.py": "def run():\n    pass\n",
	})

	require.Len(t, analysis.Dependencies, 1)
	edge := analysis.Dependencies[0]
	assert.Equal(t, "main", edge.Source)
	assert.Equal(t, "pkg.util", edge.Target)
	assert.Equal(t, "import", edge.Type)
	assert.Equal(t, 1, edge.Line)
	assert.Empty(t, analysis.Cycles)
	assert.Empty(t, analysis.Isolated)
	assert.Equal(t, 2, analysis.Summary.TotalModules)
	assert.Equal(t, 1, analysis.Summary.TotalDependencies)
}

func TestTwoModuleCycle(t *testing.T) {
	analysis := analyzeProject(t, map[string]string{
		"a.py": "import b\n",
		"b.py": "import a\n",
	})

	require.Len(t, analysis.Cycles, 1)
	cycle := analysis.Cycles[0]
	assert.Len(t, cycle, 2)
	assert.Contains(t, cycle, "a")
	assert.Contains(t, cycle, "b")
}

func TestSelfImportCycle(t *testing.T) {
	analysis := analyzeProject(t, map[string]string{
		"solo.py": "from . import helper\n",
	})

	require.Len(t, analysis.Cycles, 1)
	assert.Equal(t, []string{"solo"}, analysis.Cycles[0])
}

func TestFromImportEdge(t *testing.T) {
	analysis := analyzeProject(t, map[string]string{
		"app.py":        "from pkg.models import User\n",
		"pkg/models.py": "class User:\n    pass\n",
	})

	require.Len(t, analysis.Dependencies, 1)
	edge := analysis.Dependencies[0]
	assert.Equal(t, "app", edge.Source)
	assert.Equal(t, "pkg.models", edge.Target)
	assert.Equal(t, "from-import", edge.Type)
	assert.Equal(t, "pkg.models", edge.Details)
}

func TestExternalImportsProduceNoEdges(t *testing.T) {
	analysis := analyzeProject(t, map[string]string{
		"app.py": "import os\nimport sys\nimport requests\n",
	})

	assert.Empty(t, analysis.Dependencies)
	require.Len(t, analysis.Modules, 1)
	assert.Len(t, analysis.Modules[0].Imports, 3)
	assert.Equal(t, []string{"app"}, analysis.Isolated)
}

func TestEdgeTargetsAlwaysExist(t *testing.T) {
	analysis := analyzeProject(t, map[string]string{
		"main.py":       "import os\nimport core\nfrom pkg import util\n",
		"core.py":       "import json\nimport pkg.util\n",
		"pkg/util.py":   "import sys\n",
		"pkg/unused.py": "x = 1\n",
	})

	names := make(map[string]bool)
	for _, m := range analysis.Modules {
		names[m.Name] = true
	}
	for _, e := range analysis.Dependencies {
		assert.True(t, names[e.Source], "edge source %q not in node set", e.Source)
		assert.True(t, names[e.Target], "edge target %q not in node set", e.Target)
	}
	assert.Equal(t, []string{"pkg.unused"}, analysis.Isolated)
}

func TestSuffixMatchFirstWins(t *testing.T) {
	analysis := analyzeProject(t, map[string]string{
		"app.py":      "import util\n",
		"bar/util.py": "x = 1\n",
		"foo/util.py": "y = 2\n",
	})

	require.Len(t, analysis.Dependencies, 1)
	// Modules are indexed in sorted path order, so bar.util comes first.
	assert.Equal(t, "bar.util", analysis.Dependencies[0].Target)
}

func TestRelativeImportResolution(t *testing.T) {
	idx := newModuleIndex()
	idx.add(&Module{Name: "pkg"})
	idx.add(&Module{Name: "pkg.sub"})
	idx.add(&Module{Name: "pkg.sub.mod"})

	assert.Equal(t, "pkg.sub.mod", idx.resolve("pkg.sub.mod", "."))
	assert.Equal(t, "pkg.sub", idx.resolve("pkg.sub.mod", ".."))
	assert.Equal(t, "pkg", idx.resolve("pkg.sub.mod", "..."))
}

func TestRelativeImportNeverSuffixMatches(t *testing.T) {
	idx := newModuleIndex()
	idx.add(&Module{Name: "main"})
	idx.add(&Module{Name: "foo.x"})

	// "..x" from a top-level module resolves to nothing; it must not
	// fall through and suffix-match foo.x.
	assert.Equal(t, "", idx.resolve("main", "..x"))
	// A single dot always means the current package.
	assert.Equal(t, "main", idx.resolve("main", ".missing"))
}

func TestDeclaredClassesAndFunctions(t *testing.T) {
	analysis := analyzeProject(t, map[string]string{
		"models.py": "class User:\n    def save(self):\n        pass\n\nclass Order:\n    pass\n\ndef helper():\n    pass\n",
	})

	require.Len(t, analysis.Modules, 1)
	m := analysis.Modules[0]
	assert.Equal(t, []string{"User", "Order"}, m.Classes)
	assert.Equal(t, []string{"save", "helper"}, m.Functions)
}

func TestHighlyCoupledModule(t *testing.T) {
	files := map[string]string{
		"hub.py": "x = 1\n",
	}
	for _, name := range []string{"a", "b", "c"} {
		files[name+".py"] = "import hub\n"
	}

	analysis := analyzeProject(t, files, WithCouplingThreshold(2))

	assert.Equal(t, []string{"hub"}, analysis.HighlyCoupled)
	assert.Equal(t, 1, analysis.Summary.HighlyCoupledCount)
}

func TestRecommendationsPositiveFallback(t *testing.T) {
	analysis := analyzeProject(t, map[string]string{
		"main.py": "import core\n",
		"core.py": "x = 1\n",
	})

	require.Len(t, analysis.Recommendations, 1)
	assert.Contains(t, analysis.Recommendations[0], "healthy")
}

func TestUnparsableFileStillGetsNode(t *testing.T) {
	analysis := analyzeProject(t, map[string]string{
		"good.py":   "import broken\n",
		"broken.py": "x = \xff\xfe\n",
	})

	assert.Equal(t, 2, analysis.Summary.TotalModules)
	require.Len(t, analysis.Dependencies, 1)
	assert.Equal(t, "broken", analysis.Dependencies[0].Target)
}

func TestWriteJSON(t *testing.T) {
	analysis := analyzeProject(t, map[string]string{
		"main.py":     "import pkg.util\n",
		"pkg/util.py": "def run():\n    pass\n",
	})

	var buf strings.Builder
	require.NoError(t, analysis.WriteJSON(&buf))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(buf.String()), &decoded))

	summary, ok := decoded["summary"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(2), summary["total_modules"])
	assert.Equal(t, float64(1), summary["total_dependencies"])
	assert.Equal(t, float64(0), summary["circular_dependencies_count"])
	assert.Contains(t, decoded, "modules")
	assert.Contains(t, decoded, "dependencies")
	assert.Contains(t, decoded, "circular_dependencies")
	assert.Contains(t, decoded, "isolated_modules")
	assert.Contains(t, decoded, "highly_coupled_modules")
	assert.Contains(t, decoded, "recommendations")

	modules, ok := decoded["modules"].([]any)
	require.True(t, ok)
	require.Len(t, modules, 2)
	main := modules[0].(map[string]any)
	assert.Equal(t, []any{"pkg.util"}, main["imports"])

	deps, ok := decoded["dependencies"].([]any)
	require.True(t, ok)
	require.Len(t, deps, 1)
	dep := deps[0].(map[string]any)
	assert.Equal(t, "main", dep["source"])
	assert.Equal(t, "pkg.util", dep["target"])
	assert.Contains(t, dep, "line_number")
	assert.Contains(t, dep, "details")
}

func TestWriteDOT(t *testing.T) {
	analysis := analyzeProject(t, map[string]string{
		"main.py":     "import pkg.util\n",
		"pkg/util.py": "def run():\n    pass\n",
	})

	var buf strings.Builder
	require.NoError(t, analysis.WriteDOT(&buf))

	want := "digraph Dependencies {\n" +
		"  rankdir=TB;\n" +
		"  node [shape=box, style=filled, fillcolor=lightblue];\n" +
		"  \"main\" [label=\"main\"];\n" +
		"  \"pkg.util\" [label=\"util\"];\n" +
		"  \"main\" -> \"pkg.util\";\n" +
		"}"
	assert.Equal(t, want, buf.String())
}

func TestWriteDOTEmptyGraph(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, (&Analysis{}).WriteDOT(&buf))
	assert.Empty(t, buf.String())
}

func TestAnalyzeEmpty(t *testing.T) {
	a := New()
	defer a.Close()

	analysis, err := a.Analyze(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, analysis.Summary.TotalModules)
	assert.Contains(t, analysis.Recommendations[0], "healthy")
}
