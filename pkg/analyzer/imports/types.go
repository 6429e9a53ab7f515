package imports

// FileImports lists the libraries imported by one file, in declaration
// order, one entry per import occurrence.
type FileImports struct {
	Path      string   `json:"path"`
	Libraries []string `json:"libraries"`
}

// LibraryCount pairs a library name with its import count.
type LibraryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Summary holds project-wide import statistics.
type Summary struct {
	TotalFiles      int `json:"total_files"`
	TotalImports    int `json:"total_imports"`
	UniqueLibraries int `json:"unique_libraries"`
	StdlibImports   int `json:"stdlib_imports"`
	ThirdPartyCount int `json:"third_party_imports"`
}

// Analysis is the project-level import report.
type Analysis struct {
	Files      []FileImports  `json:"files"`
	MostCommon []LibraryCount `json:"most_common"`
	Summary    Summary        `json:"summary"`
}
