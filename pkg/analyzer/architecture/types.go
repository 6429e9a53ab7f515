package architecture

// Import is a raw import declared by a module, before resolution. It is
// kept per-file for edge building; the exported Module carries only the
// import names.
type Import struct {
	Name string
	Type string
	Line int
}

// Module is a node in the dependency graph: one analyzed Python file.
type Module struct {
	Name         string   `json:"name"`
	Path         string   `json:"path"`
	Imports      []string `json:"imports"`
	Classes      []string `json:"classes"`
	Functions    []string `json:"functions"`
	Dependencies []string `json:"dependencies"`
	Dependents   []string `json:"dependents"`
}

// Edge is a resolved dependency between two modules.
type Edge struct {
	Source  string `json:"source"`
	Target  string `json:"target"`
	Type    string `json:"type"`
	Line    int    `json:"line_number"`
	Details string `json:"details"`
}

// Summary holds aggregate counts over the graph.
type Summary struct {
	TotalModules       int `json:"total_modules"`
	TotalDependencies  int `json:"total_dependencies"`
	CircularCount      int `json:"circular_dependencies_count"`
	IsolatedCount      int `json:"isolated_modules_count"`
	HighlyCoupledCount int `json:"highly_coupled_modules_count"`
}

// Analysis is the complete architecture report. Its JSON encoding is the
// export format consumed by external tooling, so field names are stable.
type Analysis struct {
	Summary         Summary    `json:"summary"`
	Modules         []*Module  `json:"modules"`
	Dependencies    []Edge     `json:"dependencies"`
	Cycles          [][]string `json:"circular_dependencies"`
	Isolated        []string   `json:"isolated_modules"`
	HighlyCoupled   []string   `json:"highly_coupled_modules"`
	Recommendations []string   `json:"recommendations"`
}
