package filefrag

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/ledstellar/medialibchecker/internal/extent"
)

// ErrInvalidOutput wraps every parse failure, so callers can distinguish a
// malformed external-tool invocation from an I/O error reading its stdout.
var ErrInvalidOutput = errors.New("filefrag: invalid extent-query output")

var headerRE = regexp.MustCompile(`^File size of (\S+) is (\d+) \((\d+) blocks? of (\d+) bytes\)$`)

const extentsHeaderLine = " ext:     logical_offset:        physical_offset: length:   expected: flags:"

// fieldSplitRE tokenizes an extent row on runs of space, colon, or dot.
// Deliberately not trimmed before splitting: the leading run of spaces
// before the extent number yields an empty leading token, which is what
// lines the fixed field indices below up with the logical/physical/count
// columns across filefrag's ragged column widths.
var fieldSplitRE = regexp.MustCompile(`[ :.]+`)

type parseState int

const (
	stateHeader parseState = iota
	stateExtentsHeader
	stateExtentsBody
)

// parseOutput runs a header -> extents-header -> extents-body state
// machine over filefrag's stdout, returning one FileExtents per file
// block it reports, in output order.
func parseOutput(r io.Reader) ([]FileExtents, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)

	var (
		results      []FileExtents
		state        = stateHeader
		curName      string
		curSize      int64
		curBlockSize int32
		curExtents   []extent.Extent
	)

	for sc.Scan() {
		line := sc.Text()

		switch state {
		case stateHeader:
			if strings.TrimSpace(line) == "" {
				continue
			}
			m := headerRE.FindStringSubmatch(line)
			if m == nil {
				return nil, fmt.Errorf("%w: expected header line, got %q", ErrInvalidOutput, line)
			}
			size, err := strconv.ParseInt(m[2], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad file size in %q: %v", ErrInvalidOutput, line, err)
			}
			blocks, err := strconv.ParseInt(m[4], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("%w: bad block size in %q: %v", ErrInvalidOutput, line, err)
			}
			curName = m[1]
			curSize = size
			curBlockSize = int32(blocks)
			curExtents = nil
			state = stateExtentsHeader

		case stateExtentsHeader:
			if line != extentsHeaderLine {
				return nil, fmt.Errorf("%w: expected extents header, got %q", ErrInvalidOutput, line)
			}
			state = stateExtentsBody

		case stateExtentsBody:
			if strings.HasPrefix(line, curName) && strings.HasSuffix(strings.TrimRight(line, " \t"), "found") {
				results = append(results, FileExtents{Name: curName, Size: curSize, BlockSize: curBlockSize, Extents: curExtents})
				state = stateHeader
				continue
			}

			fields := fieldSplitRE.Split(line, -1)
			if len(fields) < 7 {
				return nil, fmt.Errorf("%w: malformed extent row %q", ErrInvalidOutput, line)
			}
			logical, e1 := strconv.ParseInt(fields[2], 10, 64)
			physical, e2 := strconv.ParseInt(fields[4], 10, 64)
			count, e3 := strconv.ParseInt(fields[6], 10, 64)
			if e1 != nil || e2 != nil || e3 != nil {
				return nil, fmt.Errorf("%w: non-numeric extent row %q", ErrInvalidOutput, line)
			}

			curExtents = append(curExtents, extent.Extent{
				LogicalOffset:  logical,
				PhysicalOffset: int32(physical),
				BlockCount:     int32(count),
			})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if state != stateHeader {
		return nil, fmt.Errorf("%w: truncated output mid-file %q", ErrInvalidOutput, curName)
	}
	return results, nil
}
