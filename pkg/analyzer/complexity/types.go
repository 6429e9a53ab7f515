package complexity

// Halstead holds approximate Halstead software-science metrics.
type Halstead struct {
	Volume     float64 `json:"volume"`
	Difficulty float64 `json:"difficulty"`
	Effort     float64 `json:"effort"`
}

// Metrics holds the file-level aggregate counters for one source file.
type Metrics struct {
	CodeLines    int `json:"code_lines"`
	CommentLines int `json:"comment_lines"`
	BlankLines   int `json:"blank_lines"`

	// Cyclomatic starts at 1 and is always >= 1 for a parsed file.
	Cyclomatic int `json:"cyclomatic_complexity"`

	MaxNesting int     `json:"max_nesting"`
	AvgNesting float64 `json:"avg_nesting"`

	Functions      int `json:"functions"`
	Classes        int `json:"classes"`
	Imports        int `json:"imports"`
	Variables      int `json:"variables"`
	Comprehensions int `json:"comprehensions"`
	MagicNumbers   int `json:"magic_numbers"`

	LongLines        int `json:"long_lines"`
	LongFunctions    int `json:"long_functions"`
	ComplexFunctions int `json:"complex_functions"`

	Maintainability float64  `json:"maintainability_index"`
	Halstead        Halstead `json:"halstead"`
}

// FunctionMetrics holds per-function metrics, independent of the
// file-level tallies.
type FunctionMetrics struct {
	Name            string  `json:"name"`
	Line            uint32  `json:"line"`
	EndLine         uint32  `json:"end_line"`
	Cyclomatic      int     `json:"cyclomatic_complexity"`
	Lines           int     `json:"lines"`
	Params          int     `json:"params"`
	MaxNesting      int     `json:"max_nesting"`
	Variables       int     `json:"variables"`
	MagicNumbers    int     `json:"magic_numbers"`
	Maintainability float64 `json:"maintainability_index"`
}

// ClassMetrics holds per-class metrics.
type ClassMetrics struct {
	Name       string `json:"name"`
	Line       uint32 `json:"line"`
	Methods    int    `json:"methods"`
	Attributes int    `json:"attributes"`
	Bases      int    `json:"bases"`
	Branches   int    `json:"branches"`
	Lines      int    `json:"lines"`
}

// FileReport is the complete complexity report for one file.
type FileReport struct {
	Path      string            `json:"path"`
	Metrics   Metrics           `json:"metrics"`
	Functions []FunctionMetrics `json:"functions"`
	Classes   []ClassMetrics    `json:"classes"`
	Grade     string            `json:"grade"`
	Issues    []string          `json:"issues,omitempty"`
}

// FileRank names a file together with the value it is ranked by.
type FileRank struct {
	Path  string  `json:"path"`
	Value float64 `json:"value"`
}

// FunctionRank names a function together with its complexity.
type FunctionRank struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	Line       uint32 `json:"line"`
	Cyclomatic int    `json:"cyclomatic_complexity"`
}

// Summary aggregates metrics across all analyzed files.
type Summary struct {
	TotalFiles         int            `json:"total_files"`
	TotalFunctions     int            `json:"total_functions"`
	TotalClasses       int            `json:"total_classes"`
	TotalLines         int            `json:"total_lines"`
	AvgComplexity      float64        `json:"average_complexity"`
	AvgMaintainability float64        `json:"average_maintainability"`
	GradeDistribution  map[string]int `json:"grade_distribution"`
	Maintainability    map[string]int `json:"maintainability_distribution"`
}

// Analysis is the project-level complexity report.
type Analysis struct {
	Files           []FileReport   `json:"files"`
	Summary         Summary        `json:"summary"`
	MostComplex     []FileRank     `json:"most_complex_files"`
	LeastComplex    []FileRank     `json:"least_complex_files"`
	TopFunctions    []FunctionRank `json:"most_complex_functions"`
	Recommendations []string       `json:"recommendations"`
}
