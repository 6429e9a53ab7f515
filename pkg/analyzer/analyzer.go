package analyzer

import "context"

// FileAnalyzer is implemented by every analyzer in the subpackages
// (complexity, quality, duplicates, imports, architecture). Each takes a
// batch of Python source paths and produces its own analysis type.
type FileAnalyzer[T any] interface {
	// Analyze processes the given files and returns the aggregate result.
	// Cancelling the context stops the scan early.
	Analyze(ctx context.Context, files []string) (T, error)

	// Close releases parser resources held by the analyzer.
	Close()
}
