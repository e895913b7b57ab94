//go:build !unix

package scan

import (
	"errors"
	"os"
)

var errNoMmap = errors.New("memory mapping is not supported on this platform")

// mmapRegion has no implementation outside unix; feedExtent falls back to
// buffered reads whenever it returns an error.
func mmapRegion(file *os.File, offset, length int64) ([]byte, func(), error) {
	return nil, nil, errNoMmap
}

func prefetchHint(data []byte) {}
