package scan

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ledstellar/medialibchecker/internal/humanize"
)

// Summary is the aggregate result of one Traversal run (Phase B's report).
type Summary struct {
	Directories    int
	Files          int
	FilesHashed    int
	FilesAbandoned int
	TotalBytes     int64 // sum of every file's declared size
	MaxExtentBytes int64 // largest single extent, in bytes, across every file
	Duration       time.Duration
}

// Loggers bundles the named loggers Traversal and its worker write to,
// matching internal/logging's logger names: four performance.* loggers
// plus the plain scanner logger that carries the scan-pass announcements
// and the summary line.
type Loggers struct {
	Scanner          *slog.Logger // scan-pass announcements and the Phase B summary
	DirectoryScanner *slog.Logger // per-directory descent events in Phase A
	ExtentMapScanner *slog.Logger // per-directory extent-query outcomes (the worker)
	DirectoryInfo    *slog.Logger // ReadContent timings
	FileInfo         *slog.Logger // per-file hash/open/read outcomes
}

// Traversal drives the whole scan of one root directory. Phase A (gather)
// seeds the root, then repeatedly picks the directoryExtentMap entry
// nearest its sweeping physical cursor, reads that directory's children,
// and hands it to the ExtentQueryWorker to resolve those children's
// extents, until the map is empty and the worker is idle. Phase B
// aggregates statistics; Phase C streams every discovered file through
// its seeded hash.
type Traversal struct {
	root         string
	filefragPath string
	stderr       io.Writer
	logs         Loggers
	exclude      []string

	coord         *coordinator
	fileExtentMap *offsetMap[*FileEntry]
}

// NewTraversal constructs a Traversal rooted at root. filefragPath selects
// the extent-query binary (normally filefrag.DefaultPath); stderr receives
// every invocation's stderr, append-only, for the lifetime of the process.
// exclude is a set of doublestar glob patterns matched against each
// discovered path relative to root; a matching directory is not descended
// into or queried, and a matching file is skipped entirely.
func NewTraversal(root, filefragPath string, stderr io.Writer, logs Loggers, exclude []string) *Traversal {
	return &Traversal{
		root:          root,
		filefragPath:  filefragPath,
		stderr:        stderr,
		logs:          logs,
		exclude:       exclude,
		coord:         newCoordinator(),
		fileExtentMap: newOffsetMap[*FileEntry](),
	}
}

// excluded reports whether path (relative to t.root) matches any of the
// configured exclude patterns.
func (t *Traversal) excluded(path string) bool {
	rel, err := filepath.Rel(t.root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	for _, pat := range t.exclude {
		if ok, _ := doublestar.Match(pat, rel); ok {
			return true
		}
	}
	return false
}

// readAndFilter calls ReadContent (unless already done) and then drops
// any child matching an exclude pattern, in place.
func (t *Traversal) readAndFilter(d *DirEntry) {
	if !d.ChildrenKnown() {
		d.ReadContent(t.logs.DirectoryInfo)
	}
	if len(t.exclude) == 0 {
		return
	}
	kept := d.children[:0]
	for _, child := range d.children {
		if !t.excluded(child.Path()) {
			kept = append(kept, child)
		}
	}
	d.children = kept
}

// Run executes all three phases and returns the aggregate Summary.
func (t *Traversal) Run(ctx context.Context) (Summary, error) {
	start := time.Now()

	worker := NewExtentQueryWorker(t.coord, t.filefragPath, t.stderr, t.logs.ExtentMapScanner, t.fileExtentMap)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Run(ctx)
	}()

	dirCount := t.gather(ctx)

	t.coord.Stop()
	<-workerDone

	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}

	summary := t.summarize(dirCount)
	if t.logs.Scanner != nil {
		t.logs.Scanner.Info("gatherComplete",
			"directories", humanize.Comma(int64(summary.Directories)),
			"files", humanize.Comma(int64(summary.Files)),
			"bytes", humanize.Bytes(uint64(summary.TotalBytes)),
			"maxExtent", humanize.Bytes(uint64(summary.MaxExtentBytes)))
	}

	hashed, abandoned := t.hashAll(ctx)
	summary.FilesHashed = hashed
	summary.FilesAbandoned = abandoned
	summary.Duration = time.Since(start)

	if t.logs.Scanner != nil {
		t.logs.Scanner.Info("scanComplete",
			"hashed", humanize.Comma(int64(summary.FilesHashed)),
			"abandoned", humanize.Comma(int64(summary.FilesAbandoned)),
			"duration", summary.Duration.String())
	}

	return summary, ctx.Err()
}

// gather is Phase A: seed the root, then loop driving currentBlock across
// directoryExtentMap's nearest-neighbor frontier until the frontier is
// empty and the worker has drained.
func (t *Traversal) gather(ctx context.Context) (dirCount int) {
	root := NewDirEntry(t.root, t.logs.FileInfo)
	t.readAndFilter(root)
	dirCount = 1
	t.coord.Enqueue(root)

	var currentBlock int32

	for {
		select {
		case <-ctx.Done():
			return dirCount
		default:
		}

		if t.coord.FrontierEmptyAndIdle() {
			return dirCount
		}

		chosen, ok := t.coord.TakeNearest(currentBlock)
		if !ok {
			t.coord.WaitWhileFrontierEmpty()
			continue
		}

		t.readAndFilter(chosen)
		dirCount++
		t.coord.Enqueue(chosen)

		if extents := chosen.Extents(); len(extents) > 0 {
			currentBlock = extents[0].PhysicalOffset
		}

		if t.logs.DirectoryScanner != nil {
			t.logs.DirectoryScanner.Debug("gatherDescended",
				"path", chosen.Path(), "children", len(chosen.Children()), "currentBlock", currentBlock)
		}
	}
}

// summarize is Phase B: a single pass over fileExtentMap computing the
// totals that go into the report: directory count, file count, total file
// size, and the single largest extent seen across every file. It does not
// mutate the map, since Phase C still needs to walk it.
func (t *Traversal) summarize(dirCount int) Summary {
	s := Summary{Directories: dirCount}
	seen := make(map[*FileEntry]bool)
	t.fileExtentMap.Ascend(func(_ int32, fe *FileEntry) bool {
		if seen[fe] {
			return true
		}
		seen[fe] = true
		s.Files++
		s.TotalBytes += fe.DeclaredSize()
		if m := fe.MaxExtentBytes(); m > s.MaxExtentBytes {
			s.MaxExtentBytes = m
		}
		return true
	})
	return s
}

// hashAll is Phase C: the single-threaded sweep across every discovered
// file's extents, in ascending physical order, feeding each into its
// seeded xxhash digest. By the time this runs the worker goroutine has
// already exited, so fileExtentMap needs no further synchronization. A
// file with several extents has several entries in fileExtentMap; each
// pass advances and removes exactly the entry whose key matches the
// file's current cursor, leaving the rest for later passes once their
// logical predecessor has been consumed.
func (t *Traversal) hashAll(ctx context.Context) (hashed, abandoned int) {
	for pass := 1; t.fileExtentMap.Len() > 0; pass++ {
		select {
		case <-ctx.Done():
			return hashed, abandoned
		default:
		}
		if t.logs.Scanner != nil {
			t.logs.Scanner.Info("fileMapChecksumScan", "pass", pass, "remaining", t.fileExtentMap.Len())
		}

		var drained []int32
		t.fileExtentMap.Ascend(func(key int32, fe *FileEntry) bool {
			if fe.Dropped() {
				// Leftover extent of a file that already finished or was
				// abandoned by an earlier I/O error; drop it from further
				// passes without touching the file again.
				drained = append(drained, key)
				return true
			}
			if !fe.IsNextPhysicalExtent(key) {
				return true
			}
			fe.HashStep()
			drained = append(drained, key)
			if fe.Dropped() {
				if _, ok := fe.FinalHash(); ok {
					hashed++
				} else {
					abandoned++
				}
			}
			return true
		})
		for _, key := range drained {
			t.fileExtentMap.Delete(key)
		}
		if len(drained) == 0 {
			break // no progress possible; avoid spinning forever
		}
	}
	return hashed, abandoned
}
