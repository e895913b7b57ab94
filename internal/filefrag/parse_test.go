package filefrag

import (
	"strings"
	"testing"
)

func TestParseOutputSingleFile(t *testing.T) {
	out := strings.Join([]string{
		"File size of movie.mkv is 12288 (3 blocks of 4096 bytes)",
		extentsHeaderLine,
		"   0:        0..       2:     400000..  400002:      3:",
		"movie.mkv: 1 extent found",
		"",
	}, "\n")

	results, err := parseOutput(strings.NewReader(out))
	if err != nil {
		t.Fatalf("parseOutput: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 file, got %d", len(results))
	}

	got := results[0]
	if got.Name != "movie.mkv" {
		t.Errorf("Name = %q, want movie.mkv", got.Name)
	}
	if got.Size != 12288 {
		t.Errorf("Size = %d, want 12288", got.Size)
	}
	if got.BlockSize != 4096 {
		t.Errorf("BlockSize = %d, want 4096", got.BlockSize)
	}
	if len(got.Extents) != 1 {
		t.Fatalf("expected 1 extent, got %d", len(got.Extents))
	}
	e := got.Extents[0]
	if e.LogicalOffset != 0 || e.PhysicalOffset != 400000 || e.BlockCount != 3 {
		t.Errorf("extent = %+v, want {0 400000 3}", e)
	}
}

func TestParseOutputMultipleFiles(t *testing.T) {
	out := strings.Join([]string{
		"File size of a.mp4 is 4096 (1 blocks of 4096 bytes)",
		extentsHeaderLine,
		"   0:        0..       0:     100000..  100000:      1:",
		"a.mp4: 1 extent found",
		"File size of b.mp4 is 8192 (2 blocks of 4096 bytes)",
		extentsHeaderLine,
		"   0:        0..       0:     200000..  200000:      1:",
		"   1:        1..       1:     300000..  300000:      1:",
		"b.mp4: 2 extents found",
	}, "\n")

	results, err := parseOutput(strings.NewReader(out))
	if err != nil {
		t.Fatalf("parseOutput: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 files, got %d", len(results))
	}
	if results[0].Name != "a.mp4" || results[1].Name != "b.mp4" {
		t.Errorf("unexpected names: %q, %q", results[0].Name, results[1].Name)
	}
	if len(results[1].Extents) != 2 {
		t.Fatalf("expected 2 extents for b.mp4, got %d", len(results[1].Extents))
	}
}

func TestParseOutputRejectsMalformedHeader(t *testing.T) {
	out := "this is not a filefrag header\n"
	if _, err := parseOutput(strings.NewReader(out)); err == nil {
		t.Error("expected an error for a malformed header, got nil")
	}
}

func TestParseOutputRejectsTruncatedOutput(t *testing.T) {
	out := strings.Join([]string{
		"File size of a.mp4 is 4096 (1 blocks of 4096 bytes)",
		extentsHeaderLine,
		"   0:        0..       0:     100000..  100000:      1:",
	}, "\n")
	if _, err := parseOutput(strings.NewReader(out)); err == nil {
		t.Error("expected an error for truncated output, got nil")
	}
}

func TestParseOutputEmpty(t *testing.T) {
	results, err := parseOutput(strings.NewReader(""))
	if err != nil {
		t.Fatalf("parseOutput on empty input: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}
