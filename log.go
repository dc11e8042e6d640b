package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// newLogger opens the configured log file. The terminal belongs to the
// editor, so without a log file records are discarded.
func newLogger(config *Config) (*slog.Logger, io.Closer, error) {
	options := &slog.HandlerOptions{Level: config.slogLevel()}
	if config.LogFile == "" {
		return slog.New(slog.NewTextHandler(io.Discard, options)), nopCloser{}, nil
	}
	if err := os.MkdirAll(filepath.Dir(config.LogFile), 0755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	file, err := os.OpenFile(config.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return slog.New(slog.NewTextHandler(file, options)), file, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
