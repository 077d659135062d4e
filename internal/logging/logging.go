// Package logging sets up the session log: a rotated file, mirrored to
// stderr in devel mode.
package logging

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config is the "log" section of the config file.
type Config struct {
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// DefaultConfig returns the rotation defaults for a CLI session log.
func DefaultConfig(path string) Config {
	return Config{
		Path:       path,
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 14,
		Compress:   true,
	}
}

// NewRotatingWriter creates a log writer with rotation support.
func NewRotatingWriter(cfg Config) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
}

// NewLogger creates a structured logger that writes to w.
// devel lowers the level to debug so frame traces are kept.
func NewLogger(w io.Writer, devel bool) *slog.Logger {
	level := slog.LevelInfo
	if devel {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// Open returns the session logger and the file it writes to.
// In devel mode every record is also written to stderr.
func Open(cfg Config, devel bool) (*slog.Logger, io.Closer) {
	return open(cfg, devel, os.Stderr)
}

func open(cfg Config, devel bool, mirror io.Writer) (*slog.Logger, io.Closer) {
	file := NewRotatingWriter(cfg)
	var w io.Writer = file
	if devel {
		w = io.MultiWriter(mirror, file)
	}
	return NewLogger(w, devel), file
}
