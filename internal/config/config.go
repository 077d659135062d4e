// Package config handles usb2snes-cli paths and the YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/usb2snes/usb2snes-cli/internal/channel"
	"github.com/usb2snes/usb2snes-cli/internal/logging"
	"github.com/usb2snes/usb2snes-cli/internal/usb2snes"
	"gopkg.in/yaml.v3"
)

// DefaultClientName is the name announced to the server.
const DefaultClientName = "usb2snes-cli"

// Paths holds common paths used by usb2snes-cli.
type Paths struct {
	Home       string
	Config     string
	Logs       string
	SessionLog string
}

// GetPaths returns the paths for the current user.
func GetPaths() (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	appHome := filepath.Join(home, ".usb2snes")
	logsDir := filepath.Join(appHome, "logs")
	return &Paths{
		Home:       appHome,
		Config:     filepath.Join(appHome, "config.yaml"),
		Logs:       logsDir,
		SessionLog: filepath.Join(logsDir, "usb2snes.log"),
	}, nil
}

// EnsureDirectories creates the required directories if they don't exist.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.Home, p.Logs} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// Config is the user configuration file.
type Config struct {
	ServerURL        string         `yaml:"server_url"`
	ClientName       string         `yaml:"client_name"`
	ChunkSize        int            `yaml:"chunk_size,omitempty"`
	Timeout          time.Duration  `yaml:"timeout,omitempty"`
	MinServerVersion string         `yaml:"min_server_version,omitempty"`
	Log              logging.Config `yaml:"log"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig(paths *Paths) *Config {
	return &Config{
		ServerURL:  channel.DefaultURL,
		ClientName: DefaultClientName,
		ChunkSize:  usb2snes.DefaultChunkSize,
		Log:        logging.DefaultConfig(paths.SessionLog),
	}
}

// Load reads the config file at paths.Config, filling unset fields with defaults.
// A missing file yields the defaults.
func Load(paths *Paths) (*Config, error) {
	cfg := DefaultConfig(paths)

	data, err := os.ReadFile(paths.Config)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", paths.Config, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", paths.Config, err)
	}
	return cfg, nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.ServerURL, "ws://") && !strings.HasPrefix(c.ServerURL, "wss://") {
		return fmt.Errorf("server_url must be a ws:// or wss:// URL, got %q", c.ServerURL)
	}
	if c.ChunkSize < 0 {
		return fmt.Errorf("chunk_size must not be negative")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}

// Save writes the configuration to paths.Config.
func (c *Config) Save(paths *Paths) error {
	if err := paths.EnsureDirectories(); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(paths.Config, data, 0644)
}
