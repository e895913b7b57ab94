package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ledstellar/medialibchecker/internal/extent"
)

func writeTempFile(t *testing.T, contents []byte) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "payload.bin")
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestFileEntryHashStepSingleExtent(t *testing.T) {
	contents := []byte("the quick brown fox jumps over the lazy dog")
	path := writeTempFile(t, contents)

	f := NewFileEntry(path, nil)
	f.SetExtents(int32(len(contents)), int64(len(contents)), []extent.Extent{
		{LogicalOffset: 0, PhysicalOffset: 1000, BlockCount: 1},
	})

	for !f.Dropped() {
		f.HashStep()
	}

	got, ok := f.FinalHash()
	if !ok {
		t.Fatal("FinalHash reported not set after HashStep loop completed")
	}

	want := newSeededDigest()
	want.Write(contents)
	if got != want.Sum64() {
		t.Errorf("FinalHash() = %#x, want %#x", got, want.Sum64())
	}
}

func TestFileEntryHashStepMultipleExtents(t *testing.T) {
	contents := []byte("0123456789ABCDEF")
	path := writeTempFile(t, contents)

	blockSize := int32(4)
	f := NewFileEntry(path, nil)
	// Logical blocks 0..3, four bytes each; deliberately out of physical
	// order to exercise the cursor walking extents smallest-logical-first.
	f.SetExtents(blockSize, int64(len(contents)), []extent.Extent{
		{LogicalOffset: 0, PhysicalOffset: 300, BlockCount: 1},
		{LogicalOffset: 1, PhysicalOffset: 100, BlockCount: 1},
		{LogicalOffset: 2, PhysicalOffset: 400, BlockCount: 1},
		{LogicalOffset: 3, PhysicalOffset: 200, BlockCount: 1},
	})

	if !f.IsNextPhysicalExtent(300) {
		t.Fatal("expected the cursor to start at the smallest logical offset")
	}

	steps := 0
	for !f.Dropped() {
		f.HashStep()
		steps++
	}
	if steps != 4 {
		t.Errorf("HashStep ran %d times, want 4", steps)
	}

	got, ok := f.FinalHash()
	if !ok {
		t.Fatal("FinalHash reported not set")
	}
	want := newSeededDigest()
	want.Write(contents)
	if got != want.Sum64() {
		t.Errorf("FinalHash() = %#x, want %#x", got, want.Sum64())
	}
}

func TestFileEntryAbandonsOnMissingFile(t *testing.T) {
	f := NewFileEntry(filepath.Join(t.TempDir(), "does-not-exist"), nil)
	f.SetExtents(4096, 4096, []extent.Extent{
		{LogicalOffset: 0, PhysicalOffset: 1, BlockCount: 1},
	})

	f.HashStep()

	if !f.Dropped() {
		t.Fatal("expected Dropped() after a failed open")
	}
	if _, ok := f.FinalHash(); ok {
		t.Error("FinalHash should report unset for an abandoned file")
	}
}

func TestFileEntryMaxExtentBytes(t *testing.T) {
	f := NewFileEntry("irrelevant", nil)
	f.SetExtents(4096, 4096*7, []extent.Extent{
		{LogicalOffset: 0, PhysicalOffset: 1, BlockCount: 2},
		{LogicalOffset: 1, PhysicalOffset: 2, BlockCount: 5},
	})
	if got, want := f.MaxExtentBytes(), int64(5*4096); got != want {
		t.Errorf("MaxExtentBytes() = %d, want %d", got, want)
	}
}
