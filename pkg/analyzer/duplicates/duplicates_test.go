package duplicates

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDetectLinesNoDuplicates(t *testing.T) {
	lines := []string{
		"def first_function():",
		"    return 1",
		"",
		"def second_function():",
		"    return 2",
	}
	blocks := DetectLines(lines)
	if len(blocks) != 0 {
		t.Errorf("got %d blocks, want 0", len(blocks))
	}
}

func TestDetectLinesRepeatedBlock(t *testing.T) {
	block := []string{
		"result = compute_value(x)",
		"total += result",
		"log.append(result)",
	}
	var lines []string
	for i := 0; i < 4; i++ {
		lines = append(lines, block...)
	}

	blocks := DetectLines(lines)
	if len(blocks) == 0 {
		t.Fatal("expected duplicate blocks")
	}

	// The aligned window repeats 4 times; overlapping windows repeat 3.
	if blocks[0].Occurrences != 4 {
		t.Errorf("top block occurrences = %d, want 4", blocks[0].Occurrences)
	}

	fours := 0
	for _, b := range blocks {
		if b.Occurrences == 4 {
			fours++
		}
	}
	if fours != 1 {
		t.Errorf("blocks with 4 occurrences = %d, want exactly 1", fours)
	}

	wantLines := []int{1, 4, 7, 10}
	if len(blocks[0].Lines) != len(wantLines) {
		t.Fatalf("lines = %v, want %v", blocks[0].Lines, wantLines)
	}
	for i, l := range wantLines {
		if blocks[0].Lines[i] != l {
			t.Errorf("lines = %v, want %v", blocks[0].Lines, wantLines)
			break
		}
	}

	if blocks[0].Content != strings.Join(block, "\n") {
		t.Errorf("content = %q, want first occurrence verbatim", blocks[0].Content)
	}
}

func TestDetectLinesOverlappingWindows(t *testing.T) {
	block := []string{
		"value = transform(item)",
		"buffer.append(value)",
		"count += 1",
	}
	lines := append(append([]string{}, block...), block...)

	blocks := DetectLines(lines)
	// Overlapping windows are intentionally not deduplicated, so the
	// shifted windows also form groups when they repeat.
	found := false
	for _, b := range blocks {
		if b.Occurrences == 2 && b.Lines[0] == 1 && b.Lines[1] == 4 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected aligned block at lines 1 and 4, got %+v", blocks)
	}
}

func TestDetectLinesIgnoresComments(t *testing.T) {
	lines := []string{
		"x = compute_total(a, b)  # first call",
		"y = compute_total(c, d)",
		"z = normalize(x, y)",
		"x = compute_total(a, b)  # different comment",
		"y = compute_total(c, d)",
		"z = normalize(x, y)",
	}
	blocks := DetectLines(lines)
	if len(blocks) == 0 {
		t.Fatal("comment differences should not prevent matching")
	}
	if blocks[0].Occurrences != 2 {
		t.Errorf("occurrences = %d, want 2", blocks[0].Occurrences)
	}
}

func TestDetectLinesIndentNormalization(t *testing.T) {
	lines := []string{
		"    result = process(data)",
		"    emit(result)",
		"    counter += 1",
		"      result = process(data)",
		"      emit(result)",
		"      counter += 1",
	}
	// 4 and 6 spaces both floor to 4, so the blocks match.
	blocks := DetectLines(lines)
	if len(blocks) == 0 {
		t.Fatal("indent variations within the same 4-space level should match")
	}
	if blocks[0].Occurrences != 2 {
		t.Errorf("occurrences = %d, want 2", blocks[0].Occurrences)
	}
}

func TestDetectLinesSkipsTrivialBlocks(t *testing.T) {
	lines := []string{"x=1", "", "", "x=1", "", ""}
	blocks := DetectLines(lines)
	if len(blocks) != 0 {
		t.Errorf("trivially short windows should be skipped, got %+v", blocks)
	}
}

func TestDetectLinesSimilarityCap(t *testing.T) {
	long := strings.Repeat("a", 80)
	lines := []string{long, long + "b", long + "c", long, long + "b", long + "c"}
	blocks := DetectLines(lines)
	if len(blocks) == 0 {
		t.Fatal("expected a duplicate block")
	}
	if blocks[0].Similarity != 1.0 {
		t.Errorf("similarity = %f, want capped at 1.0", blocks[0].Similarity)
	}
}

func TestDetectLinesTopTen(t *testing.T) {
	var lines []string
	// 12 distinct duplicated blocks, separated so windows do not bridge
	// between them with repeated content.
	for i := 0; i < 12; i++ {
		block := []string{
			strings.Repeat("x", i+1) + " = load_input()",
			"h" + strings.Repeat("y", i+1) + " = digest(x)",
			"store" + strings.Repeat("z", i+1) + "(h)",
		}
		lines = append(lines, block...)
		lines = append(lines, block...)
	}

	blocks := DetectLines(lines)
	if len(blocks) != 10 {
		t.Errorf("got %d blocks, want top 10", len(blocks))
	}
}

func TestDetectLinesShortInput(t *testing.T) {
	if blocks := DetectLines([]string{"only", "two"}); len(blocks) != 0 {
		t.Errorf("input shorter than window should yield nothing, got %+v", blocks)
	}
	if blocks := DetectLines(nil); len(blocks) != 0 {
		t.Errorf("nil input should yield nothing, got %+v", blocks)
	}
}

func TestStripComment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"x = 1  # comment", "x = 1  "},
		{"# full line", ""},
		{"s = 'a\\#b'", "s = 'a\\#b'"},
		{"plain line", "plain line"},
	}
	for _, tt := range tests {
		if got := stripComment(tt.in); got != tt.want {
			t.Errorf("stripComment(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFloorIndent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"x", "x"},
		{"    x", "    x"},
		{"      x", "    x"},
		{"   x", "x"},
		{"        x", "        x"},
	}
	for _, tt := range tests {
		if got := floorIndent(tt.in); got != tt.want {
			t.Errorf("floorIndent(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDetectFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "dup.py")
	content := strings.Join([]string{
		"value = fetch_record(key)",
		"cache.store(key, value)",
		"metrics.increment('hits')",
		"value = fetch_record(key)",
		"cache.store(key, value)",
		"metrics.increment('hits')",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	a := New()
	defer a.Close()

	result, err := a.DetectFile(path)
	if err != nil {
		t.Fatalf("DetectFile() error: %v", err)
	}
	if len(result.Blocks) == 0 {
		t.Fatal("expected duplicate blocks")
	}
	if result.Blocks[0].Occurrences != 2 {
		t.Errorf("occurrences = %d, want 2", result.Blocks[0].Occurrences)
	}
}

func TestAnalyzeProject(t *testing.T) {
	tmpDir := t.TempDir()

	dup := strings.Join([]string{
		"data = parse_payload(raw)",
		"validate_schema(data)",
		"queue.push(data)",
		"data = parse_payload(raw)",
		"validate_schema(data)",
		"queue.push(data)",
	}, "\n")
	clean := "x = 1\n"

	dupPath := filepath.Join(tmpDir, "dup.py")
	cleanPath := filepath.Join(tmpDir, "clean.py")
	if err := os.WriteFile(dupPath, []byte(dup), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cleanPath, []byte(clean), 0644); err != nil {
		t.Fatal(err)
	}

	a := New()
	defer a.Close()

	analysis, err := a.Analyze(context.Background(), []string{dupPath, cleanPath})
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	if analysis.Summary.TotalFiles != 2 {
		t.Errorf("total files = %d, want 2", analysis.Summary.TotalFiles)
	}
	if analysis.Summary.FilesWithDuplicates != 1 {
		t.Errorf("files with duplicates = %d, want 1", analysis.Summary.FilesWithDuplicates)
	}
	if analysis.Summary.TotalBlocks == 0 {
		t.Error("expected at least one duplicate block in summary")
	}
}
