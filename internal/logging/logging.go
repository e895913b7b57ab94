// Package logging builds the named *slog.Logger set medialibchecker's scan
// package writes to.
package logging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ledstellar/medialibchecker/internal/scan"
)

const logFileName = "medialibchecker.log"

// Open rolls any existing log file in dir aside (renaming it to
// medialibchecker.log.1, overwriting whatever was there from a session
// before that) and returns a fresh append-mode file plus the named
// loggers scan.Traversal expects, all sharing one slog.TextHandler over
// that file.
//
// The returned file is also suitable as the stderr sink for filefrag
// invocations; callers close it once, at process exit.
func Open(dir string) (*os.File, scan.Loggers, error) {
	path := filepath.Join(dir, logFileName)
	if _, err := os.Stat(path); err == nil {
		_ = os.Rename(path, path+".1")
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, scan.Loggers{}, fmt.Errorf("logging: opening %s: %w", path, err)
	}

	handler := slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})
	named := func(name string) *slog.Logger {
		return slog.New(handler).With("logger", name)
	}

	return f, scan.Loggers{
		Scanner:          named("ExtentMapScanner"),
		DirectoryScanner: named("performance.DirectoryScanner"),
		ExtentMapScanner: named("performance.ExtentMapScanner"),
		DirectoryInfo:    named("performance.DirectoryInfo"),
		FileInfo:         named("performance.FileInfo"),
	}, nil
}
