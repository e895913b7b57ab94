//go:build unix

package scan

import (
	"os"

	"golang.org/x/sys/unix"
)

var pageSize = int64(unix.Getpagesize())

// mmapRegion maps [offset, offset+length) of file read-only. The returned
// unmap func must be called exactly once when the caller is done with data.
func mmapRegion(file *os.File, offset, length int64) (data []byte, unmap func(), err error) {
	if length <= 0 {
		return nil, func() {}, nil
	}

	aligned := offset &^ (pageSize - 1)
	pad := offset - aligned

	raw, err := unix.Mmap(int(file.Fd()), aligned, int(length+pad), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, err
	}

	return raw[pad : pad+length : pad+length], func() { unix.Munmap(raw) }, nil
}

// prefetchHint advises the kernel that data will be read soon.
// Best-effort: failure is never treated as an error.
func prefetchHint(data []byte) {
	if len(data) == 0 {
		return
	}
	unix.Madvise(data, unix.MADV_WILLNEED)
}
