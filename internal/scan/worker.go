package scan

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"

	"github.com/ledstellar/medialibchecker/internal/filefrag"
)

// coordinator is the single point of shared state between the Traversal
// producer goroutine and the ExtentQueryWorker consumer goroutine.
//
// directoryExtentMap is written by the worker (as a side effect of
// resolving a directory's children's extents, any child that is itself a
// directory lands here keyed by the physical offset of its
// smallest-logical-offset extent, the last one after the descending sort) and
// consumed by the producer, which repeatedly removes the entry nearest
// its sweeping physical cursor to decide which directory to descend into
// next. pending is the plain FIFO of directories the producer has
// already decided to descend into and is waiting on the worker to
// extent-query their children.
//
// One mutex guards directoryExtentMap, pending, and outstanding together,
// because the producer's termination check -- "the queue is empty AND the
// worker is idle" -- has to observe both facts atomically.
// Two independent locks could each report true one at a time while the
// other transitions, and the producer would quit having missed work the
// worker was about to enqueue.
type coordinator struct {
	mu   sync.Mutex
	cond *sync.Cond

	directoryExtentMap *offsetMap[*DirEntry] // keyed by physical offset; producer's frontier
	pending            []*DirEntry           // FIFO of directories awaiting a child extent query
	outstanding        int                   // len(pending) + directories currently being processed
	stopped            bool
}

func newCoordinator() *coordinator {
	c := &coordinator{directoryExtentMap: newOffsetMap[*DirEntry]()}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Enqueue hands a directory (whose own children are already known, via
// ReadContent) to the worker so it can extent-query those children.
func (c *coordinator) Enqueue(d *DirEntry) {
	c.mu.Lock()
	c.pending = append(c.pending, d)
	c.outstanding++
	c.mu.Unlock()
	c.cond.Broadcast()
}

// TakeNearest removes and returns the directoryExtentMap entry whose key
// lies closest to cursor, ties going to the ceiling key. ok is false if
// the map is currently empty.
func (c *coordinator) TakeNearest(cursor int32) (d *DirEntry, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key, d, ok := c.directoryExtentMap.Nearest(cursor)
	if !ok {
		return nil, false
	}
	c.directoryExtentMap.Delete(key)
	return d, true
}

// WaitWhileFrontierEmpty blocks while directoryExtentMap is empty and the
// worker still has outstanding work, returning once either condition
// changes or the coordinator is stopped. This is the producer's half of
// the idle handshake.
func (c *coordinator) WaitWhileFrontierEmpty() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.directoryExtentMap.Len() == 0 && c.outstanding != 0 && !c.stopped {
		c.cond.Wait()
	}
}

// FrontierEmptyAndIdle reports whether the producer's termination
// condition holds: no directory waiting to be descended into, and the
// worker has nothing queued or in flight.
func (c *coordinator) FrontierEmptyAndIdle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.directoryExtentMap.Len() == 0 && c.outstanding == 0
}

// MarkDone decrements the outstanding count for a directory the worker
// has finished processing (successfully or not) and wakes anyone waiting
// on the frontier or on idleness.
func (c *coordinator) MarkDone() {
	c.mu.Lock()
	c.outstanding--
	c.mu.Unlock()
	c.cond.Broadcast()
}

// Stop wakes the worker so it can observe cancellation and exit.
func (c *coordinator) Stop() {
	c.mu.Lock()
	c.stopped = true
	c.mu.Unlock()
	c.cond.Broadcast()
}

// ExtentQueryWorker is the single consumer goroutine that turns queued
// directories into filefrag invocations over their children, depositing
// results into directoryExtentMap (subdirectory children) and
// fileExtentMap (regular-file children).
type ExtentQueryWorker struct {
	coord         *coordinator
	filefragPath  string
	stderr        io.Writer
	log           *slog.Logger
	fileExtentMap *offsetMap[*FileEntry]
}

// NewExtentQueryWorker constructs a worker. fileExtentMap is shared with
// Traversal's hash scan; the worker is the only writer to it while it
// runs, and the scan does not start reading it until Run returns.
func NewExtentQueryWorker(coord *coordinator, filefragPath string, stderr io.Writer, log *slog.Logger, fileExtentMap *offsetMap[*FileEntry]) *ExtentQueryWorker {
	return &ExtentQueryWorker{
		coord:         coord,
		filefragPath:  filefragPath,
		stderr:        stderr,
		log:           log,
		fileExtentMap: fileExtentMap,
	}
}

// Run is the consumer main loop: take the next pending directory,
// blocking on the shared condition variable when the queue is empty (the
// same broadcast that wakes a producer in WaitWhileFrontierEmpty). It
// returns once the coordinator is stopped or ctx is cancelled.
func (w *ExtentQueryWorker) Run(ctx context.Context) {
	stopOnCancel := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			w.coord.Stop()
		case <-stopOnCancel:
		}
	}()
	defer close(stopOnCancel)

	for {
		d, ok := w.takeNext()
		if !ok {
			return
		}
		w.process(ctx, d)
		w.coord.MarkDone()
	}
}

// takeNext pops the head of pending, blocking until work arrives or the
// coordinator is stopped.
func (w *ExtentQueryWorker) takeNext() (d *DirEntry, ok bool) {
	w.coord.mu.Lock()
	defer w.coord.mu.Unlock()

	for len(w.coord.pending) == 0 && !w.coord.stopped {
		w.coord.cond.Wait()
	}
	if w.coord.stopped {
		return nil, false
	}

	d = w.coord.pending[0]
	w.coord.pending = w.coord.pending[1:]
	return d, true
}

// process runs filefrag over d's children and matches each result back
// to its child by name, depositing extents into directoryExtentMap or
// fileExtentMap as appropriate.
func (w *ExtentQueryWorker) process(ctx context.Context, d *DirEntry) {
	children := d.Children()
	if len(children) == 0 {
		return
	}

	byName := make(map[string]Entry, len(children))
	names := make([]string, 0, len(children))
	for _, c := range children {
		base := filepath.Base(c.Path())
		byName[base] = c
		names = append(names, base)
	}
	sort.Strings(names)

	results, err := filefrag.Query(ctx, w.filefragPath, d.Path(), names, w.stderr)
	if err != nil {
		if w.log != nil {
			w.log.Warn("extentQueryFailed", "dir", d.Path(), "err", err)
		}
		return
	}

	for _, r := range results {
		child, ok := byName[r.Name]
		if !ok {
			if w.log != nil {
				w.log.Warn("extentQueryNameMismatch", "dir", d.Path(), "name", r.Name)
			}
			return
		}
		if len(r.Extents) == 0 {
			continue
		}

		switch e := child.(type) {
		case *DirEntry:
			e.SetExtents(r.BlockSize, r.Size, r.Extents)
			last := e.Extents()[len(e.Extents())-1]
			w.coord.mu.Lock()
			w.coord.directoryExtentMap.Set(last.PhysicalOffset, e)
			w.coord.mu.Unlock()
			w.coord.cond.Broadcast()
		case *FileEntry:
			e.SetExtents(r.BlockSize, r.Size, r.Extents)
			for _, extent := range e.Extents() {
				w.fileExtentMap.Set(extent.PhysicalOffset, e)
			}
		}
	}
}
