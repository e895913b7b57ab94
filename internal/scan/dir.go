package scan

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// DirEntry is a FileEntry (it is itself a regular file on the underlying
// filesystem, with its own extent map once the worker reports it) plus the
// list of immediate children discovered by ReadContent.
type DirEntry struct {
	*FileEntry
	children []Entry // nil: not yet read. non-nil, possibly empty: read.
}

// NewDirEntry constructs a DirEntry whose children are not yet known.
func NewDirEntry(path string, log *slog.Logger) *DirEntry {
	return &DirEntry{FileEntry: NewFileEntry(path, log)}
}

// IsDir always reports true, overriding the embedded FileEntry.
func (d *DirEntry) IsDir() bool { return true }

// ChildrenKnown reports whether ReadContent has run.
func (d *DirEntry) ChildrenKnown() bool { return d.children != nil }

// Children returns the immediate entries discovered by ReadContent, or nil
// if it has not run yet.
func (d *DirEntry) Children() []Entry { return d.children }

// ReadContent enumerates the directory's immediate entries (non-recursive),
// building a child FileEntry or DirEntry for each. A directory that cannot
// be read (removed mid-scan, permission denied, ...) is treated as present
// but empty, not as a fatal error. Duration is logged through perfLog for
// the performance.DirectoryInfo logger.
func (d *DirEntry) ReadContent(perfLog *slog.Logger) {
	start := time.Now()

	entries, err := os.ReadDir(d.Path())
	if err != nil {
		d.children = []Entry{}
		if perfLog != nil {
			perfLog.Info("dirReadFailed", "path", d.Path(), "err", err)
		}
		return
	}

	children := make([]Entry, 0, len(entries))
	for _, de := range entries {
		childPath := filepath.Join(d.Path(), de.Name())
		if de.IsDir() {
			children = append(children, NewDirEntry(childPath, d.log()))
		} else {
			// Symlinks and every other non-directory dirent type are
			// treated as regular files.
			children = append(children, NewFileEntry(childPath, d.log()))
		}
	}
	d.children = children

	if perfLog != nil {
		perfLog.Info("dirRead",
			"path", d.Path(),
			"children", len(children),
			"duration", time.Since(start).String())
	}
}

// log exposes the embedded FileEntry's logger so children can share it.
func (d *DirEntry) log() *slog.Logger { return d.FileEntry.log }
