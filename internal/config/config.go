// Package config parses medialibchecker's command-line arguments. The
// scan root is a bare positional argument rather than a flag.
package config

import (
	"flag"
	"fmt"
	"strings"

	"github.com/ledstellar/medialibchecker/internal/filefrag"
)

// Config holds everything the driver needs to run one scan.
type Config struct {
	Root         string
	FilefragPath string
	LogDir       string
	Exclude      []string // doublestar patterns, matched against paths relative to Root
}

// Parse reads args (normally os.Args[1:]) into a Config. The root
// directory is a required positional argument; -filefrag and -logdir
// override the extent-query binary and log directory, and -exclude takes
// a comma-separated list of doublestar glob patterns (e.g.
// "**/.DS_Store,**/*.thumb") for paths to skip entirely during Phase A.
func Parse(args []string) (Config, error) {
	fs := flag.NewFlagSet("medialibchecker", flag.ContinueOnError)
	filefragPath := fs.String("filefrag", filefrag.DefaultPath, "path to the filefrag(8) binary")
	logDir := fs.String("logdir", "logs", "directory for medialibchecker.log and filefrag.error.log")
	exclude := fs.String("exclude", "", "comma-separated doublestar glob patterns to skip")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if fs.NArg() != 1 {
		return Config{}, fmt.Errorf("usage: medialibchecker [-filefrag path] [-logdir dir] [-exclude patterns] <root>")
	}

	var patterns []string
	if *exclude != "" {
		patterns = strings.Split(*exclude, ",")
	}

	return Config{
		Root:         fs.Arg(0),
		FilefragPath: *filefragPath,
		LogDir:       *logDir,
		Exclude:      patterns,
	}, nil
}
