package scan

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDirEntryReadContent(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "a.txt"), "alpha")
	if err := os.Mkdir(filepath.Join(root, "sub"), 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := os.Symlink(filepath.Join(root, "a.txt"), filepath.Join(root, "link")); err != nil {
		t.Skipf("Symlink: %v", err)
	}

	d := NewDirEntry(root, nil)
	if d.ChildrenKnown() {
		t.Fatal("ChildrenKnown before ReadContent")
	}
	d.ReadContent(nil)
	if !d.ChildrenKnown() {
		t.Fatal("ChildrenKnown still false after ReadContent")
	}

	byName := make(map[string]Entry)
	for _, c := range d.Children() {
		byName[filepath.Base(c.Path())] = c
	}
	if len(byName) != 3 {
		t.Fatalf("got %d children, want 3", len(byName))
	}
	if byName["sub"] == nil || !byName["sub"].IsDir() {
		t.Error("sub should be a directory child")
	}
	if byName["a.txt"] == nil || byName["a.txt"].IsDir() {
		t.Error("a.txt should be a regular-file child")
	}
	// Symlinks are treated as regular files, not followed as directories.
	if byName["link"] == nil || byName["link"].IsDir() {
		t.Error("link should be treated as a regular file")
	}
}

func TestDirEntryReadContentMissingDirectory(t *testing.T) {
	d := NewDirEntry(filepath.Join(t.TempDir(), "gone"), nil)
	d.ReadContent(nil)

	if !d.ChildrenKnown() {
		t.Fatal("a missing directory should still mark children as read")
	}
	if len(d.Children()) != 0 {
		t.Errorf("got %d children for a missing directory, want 0", len(d.Children()))
	}
}
