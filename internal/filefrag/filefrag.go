// Package filefrag invokes the filefrag(8) extent-query utility and parses
// its output into per-file extent lists. It knows nothing about
// directories, FileEntry, or the scan pipeline, only the external process
// and its fixed output grammar.
package filefrag

import (
	"context"
	"io"
	"os/exec"

	"github.com/ledstellar/medialibchecker/internal/extent"
)

// DefaultPath is the command name used when no override is configured.
const DefaultPath = "filefrag"

// FileExtents is one child's parsed extent report.
type FileExtents struct {
	Name      string
	Size      int64 // the declared file size from the header line
	BlockSize int32
	Extents   []extent.Extent
}

// Query runs "filefrag -e <names...>" with its working directory set to
// dir and the bare names of dir's children as arguments (never full
// paths), capturing stderr into stderrW. It returns the parsed per-file
// extent results in the order filefrag reports them.
//
// The external process's exit code is ignored: only the stdout grammar
// matters, and the caller does not wait for the process to exit after
// stdout reaches EOF, leaving the OS to reap it.
func Query(ctx context.Context, filefragPath, dir string, names []string, stderrW io.Writer) ([]FileExtents, error) {
	if len(names) == 0 {
		return nil, nil
	}

	args := append([]string{"-e"}, names...)
	cmd := exec.CommandContext(ctx, filefragPath, args...)
	cmd.Dir = dir
	cmd.Stderr = stderrW

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	results, parseErr := parseOutput(stdout)

	go cmd.Wait()

	if parseErr != nil {
		return nil, parseErr
	}
	return results, nil
}
