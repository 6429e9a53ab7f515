// Package duplicates finds repeated code blocks by sliding a fixed
// window over a file's lines and hashing the normalized content.
package duplicates

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/AlgorithmAlchemy/py-import-scanner-sub000/internal/fileproc"
	"github.com/AlgorithmAlchemy/py-import-scanner-sub000/pkg/analyzer"
)

var _ analyzer.FileAnalyzer[*Analysis] = (*Analyzer)(nil)

const (
	windowSize = 3
	// Normalized windows shorter than this are too trivial to report.
	minBlockLength = 10
	maxBlocks      = 10
)

// Analyzer detects duplicate code blocks.
type Analyzer struct {
	onProgress fileproc.ProgressFunc
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithProgress sets a callback invoked after each file is processed.
func WithProgress(fn fileproc.ProgressFunc) Option {
	return func(a *Analyzer) {
		a.onProgress = fn
	}
}

// New creates a new duplicate detector.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Close releases analyzer resources. The detector holds none.
func (a *Analyzer) Close() {}

// DetectLines returns up to 10 duplicate blocks in a line sequence,
// sorted by descending occurrence count.
func DetectLines(lines []string) []Block {
	type group struct {
		starts  []int
		content string
		length  int
	}
	groups := make(map[uint64]*group)
	order := make([]uint64, 0)

	for i := 0; i+windowSize <= len(lines); i++ {
		window := lines[i : i+windowSize]
		normalized := normalizeWindow(window)
		if len(strings.TrimSpace(normalized)) < minBlockLength {
			continue
		}

		h := xxhash.Sum64String(normalized)
		g, ok := groups[h]
		if !ok {
			g = &group{
				content: strings.Join(window, "\n"),
				length:  len(normalized),
			}
			groups[h] = g
			order = append(order, h)
		}
		g.starts = append(g.starts, i+1)
	}

	blocks := make([]Block, 0)
	for _, h := range order {
		g := groups[h]
		if len(g.starts) < 2 {
			continue
		}
		similarity := float64(g.length) / 100
		if similarity > 1 {
			similarity = 1
		}
		blocks = append(blocks, Block{
			Hash:        fmt.Sprintf("%016x", h),
			Lines:       g.starts,
			Content:     g.content,
			Occurrences: len(g.starts),
			Similarity:  similarity,
		})
	}

	sort.SliceStable(blocks, func(i, j int) bool {
		if blocks[i].Occurrences != blocks[j].Occurrences {
			return blocks[i].Occurrences > blocks[j].Occurrences
		}
		return blocks[i].Lines[0] < blocks[j].Lines[0]
	})

	if len(blocks) > maxBlocks {
		blocks = blocks[:maxBlocks]
	}
	return blocks
}

// normalizeWindow strips same-line comments, drops emptied lines, and
// floors each line's indentation to the nearest lower multiple of 4.
func normalizeWindow(window []string) string {
	normalized := make([]string, 0, len(window))
	for _, line := range window {
		line = stripComment(line)
		line = strings.TrimRight(line, " \t")
		if line == "" {
			continue
		}
		normalized = append(normalized, floorIndent(line))
	}
	return strings.Join(normalized, "\n")
}

// stripComment removes everything from the first unescaped '#' onward.
func stripComment(line string) string {
	for i := 0; i < len(line); i++ {
		if line[i] == '#' && (i == 0 || line[i-1] != '\\') {
			return line[:i]
		}
	}
	return line
}

// floorIndent reduces leading spaces to a multiple of 4.
func floorIndent(line string) string {
	indent := 0
	for indent < len(line) && line[indent] == ' ' {
		indent++
	}
	floored := (indent / 4) * 4
	return strings.Repeat(" ", floored) + line[indent:]
}

// DetectFile reads a file and returns its duplicate blocks.
func (a *Analyzer) DetectFile(path string) (*FileResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &FileResult{
		Path:   path,
		Blocks: DetectLines(strings.Split(string(content), "\n")),
	}, nil
}

// Analyze runs duplicate detection across files in parallel.
func (a *Analyzer) Analyze(ctx context.Context, files []string) (*Analysis, error) {
	results, errs := fileproc.ForEachFile(ctx, files, func(path string) (FileResult, error) {
		content, err := os.ReadFile(path)
		if a.onProgress != nil {
			a.onProgress()
		}
		if err != nil {
			return FileResult{}, err
		}
		return FileResult{
			Path:   path,
			Blocks: DetectLines(strings.Split(string(content), "\n")),
		}, nil
	})

	if errs != nil && len(results) == 0 && len(files) > 0 {
		return nil, errs
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })

	analysis := &Analysis{
		Files:   results,
		Summary: Summary{TotalFiles: len(results)},
	}
	for _, f := range results {
		if len(f.Blocks) > 0 {
			analysis.Summary.FilesWithDuplicates++
		}
		analysis.Summary.TotalBlocks += len(f.Blocks)
		for _, b := range f.Blocks {
			analysis.Summary.TotalOccurrences += b.Occurrences
		}
	}
	return analysis, nil
}
