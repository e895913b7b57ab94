package scan

import (
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/ledstellar/medialibchecker/internal/extent"
)

// FileEntry tracks one regular file's on-disk layout and streaming-hash
// progress. It is created by DirEntry.ReadContent, populated once by the
// ExtentQueryWorker, and from then on mutated only by the single-threaded
// hash scanner (Traversal's Phase C).
type FileEntry struct {
	path string

	blockSize    int32
	declaredSize int64 // the size filefrag's header line reported
	extents      []extent.Extent
	cursor       int // index into extents of the next extent to hash

	file           *os.File
	size           int64
	bytesRemaining int64
	hashState      *seededDigest

	finalHash    uint64
	finalHashSet bool
	abandoned    bool

	log *slog.Logger
}

// NewFileEntry constructs a FileEntry for a not-yet-extent-mapped regular
// file. log may be nil, in which case file-level events are dropped.
func NewFileEntry(path string, log *slog.Logger) *FileEntry {
	return &FileEntry{path: path, log: log}
}

// Path returns the file's filesystem path.
func (f *FileEntry) Path() string { return f.path }

// IsDir always reports false for a plain FileEntry; DirEntry overrides it.
func (f *FileEntry) IsDir() bool { return false }

// SetExtents records a file's extent map and its block size and declared
// size (the latter two from the extent-query utility's header line). Sorts descending by
// LogicalOffset and resets the cursor to the last element (the smallest
// logical offset). Called at most once per FileEntry.
func (f *FileEntry) SetExtents(blockSize int32, declaredSize int64, extents []extent.Extent) {
	f.blockSize = blockSize
	f.declaredSize = declaredSize
	f.extents = extents
	sort.Sort(extent.ByLogicalDescending(f.extents))
	f.cursor = len(f.extents) - 1
}

// DeclaredSize returns the file size reported by the extent-query
// utility's header line, used for the summary's total-file-size stat
// without requiring every file to be opened first.
func (f *FileEntry) DeclaredSize() int64 { return f.declaredSize }

// Extents exposes the extent list for callers that need the first (largest
// logical offset) or last (smallest) entry, e.g. the traversal cursor
// update and the directory-map key computation.
func (f *FileEntry) Extents() []extent.Extent { return f.extents }

// MaxExtentBytes is the largest BlockCount*blockSize across all extents, or
// 0 if no extents have been set.
func (f *FileEntry) MaxExtentBytes() int64 {
	var max int64
	for _, e := range f.extents {
		if b := int64(e.BlockCount) * int64(f.blockSize); b > max {
			max = b
		}
	}
	return max
}

// IsNextPhysicalExtent reports whether the extent the cursor currently
// points at (the file's earliest remaining logical segment) has the given
// physical offset.
func (f *FileEntry) IsNextPhysicalExtent(physicalOffset int32) bool {
	if f.cursor < 0 || f.cursor >= len(f.extents) {
		return false
	}
	return f.extents[f.cursor].PhysicalOffset == physicalOffset
}

// Dropped reports whether the scanner is done with this file, whether
// because it finished successfully or because an I/O error abandoned it.
// Callers use this to decide whether to keep removing the file's
// remaining extents from fileExtentMap.
func (f *FileEntry) Dropped() bool {
	return f.finalHashSet || f.abandoned
}

// FinalHash returns the completed hash and whether hashing has finished.
func (f *FileEntry) FinalHash() (uint64, bool) {
	return f.finalHash, f.finalHashSet
}

// HashStep performs exactly one extent's worth of hashing: opens the file
// and initializes hash state on first call, reads and feeds the extent the
// cursor currently points at, advances the cursor, and finalizes the hash
// once bytesRemaining reaches zero.
//
// I/O errors are logged and swallowed: the file is abandoned (closed and
// marked Dropped so the scanner's removal-from-fileExtentMap logic still
// applies) and the scan moves on. A scan, not a transaction.
func (f *FileEntry) HashStep() {
	if f.Dropped() {
		return
	}
	if f.hashState == nil {
		if err := f.open(); err != nil {
			f.warn("hashOpenFailed", "path", f.path, "err", err)
			f.abandon()
			return
		}
	}

	e := f.extents[f.cursor]
	toRead := min(f.bytesRemaining, int64(e.BlockCount)*int64(f.blockSize))

	if err := f.feedExtent(e, toRead); err != nil {
		f.warn("hashReadFailed", "path", f.path, "err", err)
		f.abandon()
		return
	}

	f.bytesRemaining -= toRead
	f.cursor--

	if f.bytesRemaining == 0 {
		f.finish()
	}
}

func (f *FileEntry) open() error {
	file, err := os.Open(f.path)
	if err != nil {
		return err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return err
	}
	f.file = file
	f.size = info.Size()
	f.bytesRemaining = f.size
	f.hashState = newSeededDigest()
	return nil
}

// feedExtent maps (or, on platforms/errors where that is unavailable,
// reads) [e.LogicalOffset*blockSize, +toRead) and writes it into the
// streaming hash.
func (f *FileEntry) feedExtent(e extent.Extent, toRead int64) error {
	off := e.LogicalOffset * int64(f.blockSize)

	if data, unmap, err := mmapRegion(f.file, off, toRead); err == nil {
		prefetchHint(data)
		defer unmap()
		_, werr := f.hashState.Write(data)
		return werr
	}

	buf := make([]byte, f.blockSize)
	remaining := toRead
	pos := off
	for remaining > 0 {
		n := int64(len(buf))
		if remaining < n {
			n = remaining
		}
		read, err := f.file.ReadAt(buf[:n], pos)
		if read > 0 {
			if _, werr := f.hashState.Write(buf[:read]); werr != nil {
				return werr
			}
		}
		if err != nil {
			return err
		}
		pos += int64(read)
		remaining -= int64(read)
	}
	return nil
}

func (f *FileEntry) finish() {
	f.finalHash = f.hashState.Sum64()
	f.finalHashSet = true
	f.hashState = nil
	if f.file != nil {
		f.file.Close()
		f.file = nil
	}
}

func (f *FileEntry) abandon() {
	f.abandoned = true // drop from further passes without a usable hash
	f.hashState = nil
	if f.file != nil {
		f.file.Close()
		f.file = nil
	}
}

func (f *FileEntry) warn(msg string, args ...any) {
	if f.log != nil {
		f.log.Warn(msg, args...)
	}
}

func (f *FileEntry) String() string {
	return fmt.Sprintf("FileEntry(%s)", f.path)
}
