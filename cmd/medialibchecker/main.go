package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ledstellar/medialibchecker/internal/config"
	"github.com/ledstellar/medialibchecker/internal/logging"
	"github.com/ledstellar/medialibchecker/internal/scan"
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}

	logFile, loggers, err := logging.Open(cfg.LogDir)
	if err != nil {
		return err
	}
	defer logFile.Close()

	stderrLog, err := os.OpenFile(filepath.Join(cfg.LogDir, "filefrag.error.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening filefrag error log: %w", err)
	}
	defer stderrLog.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	t := scan.NewTraversal(cfg.Root, cfg.FilefragPath, stderrLog, loggers, cfg.Exclude)
	summary, err := t.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "interrupted")
			return nil
		}
		return fmt.Errorf("scanning %s: %w", cfg.Root, err)
	}

	fmt.Printf("%d directories, %d files (%d hashed, %d abandoned), %d bytes, max extent %d bytes, %s\n",
		summary.Directories, summary.Files, summary.FilesHashed, summary.FilesAbandoned,
		summary.TotalBytes, summary.MaxExtentBytes, summary.Duration)
	return nil
}
