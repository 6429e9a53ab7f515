package duplicates

// Block is a normalized code fragment seen at least twice in one file.
// Immutable once built.
type Block struct {
	Hash string `json:"hash"`
	// Lines holds the 1-indexed starting line of every occurrence.
	Lines []int `json:"lines"`
	// Content is the raw text of the first occurrence.
	Content     string  `json:"content"`
	Occurrences int     `json:"occurrences"`
	Similarity  float64 `json:"similarity"`
}

// FileResult holds the duplicate blocks found in one file.
type FileResult struct {
	Path   string  `json:"path"`
	Blocks []Block `json:"blocks"`
}

// Analysis is the project-level duplication report.
type Analysis struct {
	Files   []FileResult `json:"files"`
	Summary Summary      `json:"summary"`
}

// Summary aggregates duplication counts across files.
type Summary struct {
	TotalFiles          int `json:"total_files"`
	FilesWithDuplicates int `json:"files_with_duplicates"`
	TotalBlocks         int `json:"total_blocks"`
	TotalOccurrences    int `json:"total_occurrences"`
}
