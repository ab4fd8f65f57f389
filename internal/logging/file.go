package logging

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileOptions configures a rotating log file.
type FileOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	// Verbose enables debug level and mirrors output to stderr.
	Verbose bool
}

// NewFileLogger returns a text logger writing to a lumberjack-rotated file.
// The interactive client logs here so that log lines do not interleave with
// the prompt. The returned closer flushes and closes the file.
func NewFileLogger(opts FileOptions) (*SlogLogger, io.Closer) {
	lj := &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   true,
	}

	var w io.Writer = lj
	level := slog.LevelInfo
	if opts.Verbose {
		w = io.MultiWriter(lj, os.Stderr)
		level = slog.LevelDebug
	}

	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return NewSlogLogger(slog.New(h)), lj
}
