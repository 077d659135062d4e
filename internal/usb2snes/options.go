package usb2snes

import (
	"io"
	"log/slog"
	"time"
)

// DefaultChunkSize is the upload frame size the server is known to accept.
const DefaultChunkSize = 1024

// Config holds the client configuration.
type Config struct {
	// ChunkSize is the size of each binary frame sent during an upload.
	ChunkSize int

	// Timeout bounds the wait for each frame read from the server, not the
	// whole operation; zero waits forever. Uploads read nothing and are bound
	// by their context only. A timed-out receive leaves the client unusable.
	Timeout time.Duration

	// Logger receives operation logs.
	Logger *slog.Logger

	// Devel traces every frame exchanged at debug level.
	Devel bool
}

func defaultConfig() Config {
	return Config{
		ChunkSize: DefaultChunkSize,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// Option configures a Client.
type Option func(*Config)

// WithChunkSize sets the upload chunk size. Non-positive values keep the default.
func WithChunkSize(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.ChunkSize = n
		}
	}
}

// WithTimeout bounds the wait for each received frame.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Timeout = d
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithDevel enables frame tracing.
func WithDevel() Option {
	return func(c *Config) {
		c.Devel = true
	}
}
