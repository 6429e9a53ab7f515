package quality

import (
	"github.com/AlgorithmAlchemy/py-import-scanner-sub000/pkg/analyzer/duplicates"
)

// Violation is one style-check finding.
type Violation struct {
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Severity string `json:"severity"` // error or warning
}

// Cognitive holds the flat cognitive-complexity tally for a scope,
// together with the contributing factors.
type Cognitive struct {
	Total   int      `json:"total"`
	Factors []string `json:"factors,omitempty"`
}

// FunctionQuality combines a function's structural metrics with its
// cognitive complexity and any threshold violations.
type FunctionQuality struct {
	Name       string   `json:"name"`
	Line       uint32   `json:"line"`
	Cyclomatic int      `json:"cyclomatic_complexity"`
	Cognitive  int      `json:"cognitive_complexity"`
	Lines      int      `json:"lines"`
	Params     int      `json:"params"`
	MaxNesting int      `json:"max_nesting"`
	Issues     []string `json:"issues,omitempty"`
}

// FileReport is the quality report for one file.
type FileReport struct {
	Path        string             `json:"path"`
	Violations  []Violation        `json:"violations"`
	Functions   []FunctionQuality  `json:"functions"`
	Duplicates  []duplicates.Block `json:"duplicates"`
	Cognitive   Cognitive          `json:"cognitive"`
	Score       float64            `json:"score"`
	IssuesCount int                `json:"issues_count"`
	Issues      []string           `json:"issues,omitempty"`
}

// FileScore names a file together with its quality score.
type FileScore struct {
	Path  string  `json:"path"`
	Score float64 `json:"score"`
}

// Summary aggregates quality findings across files.
type Summary struct {
	TotalFiles      int     `json:"total_files"`
	AvgScore        float64 `json:"average_score"`
	TotalViolations int     `json:"total_violations"`
	TotalIssues     int     `json:"total_issues"`
}

// Analysis is the project-level quality report.
type Analysis struct {
	Files              []FileReport `json:"files"`
	Summary            Summary      `json:"summary"`
	WorstFiles         []FileScore  `json:"worst_files"`
	BestFiles          []FileScore  `json:"best_files"`
	ComplexFunctions   []string     `json:"complex_functions"`
	DuplicateSummaries []string     `json:"duplicate_summaries"`
	Recommendations    []string     `json:"recommendations"`
}
