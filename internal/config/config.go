// Package config provides configuration management for the Spritedeck Agent.
// Configuration is loaded from environment variables with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	// Default values
	DefaultPort       = 8691
	DefaultLogLevel   = "info"
	DefaultDataDir    = ".spritedeck"
	DefaultPreviewFPS = 12
	DefaultAutoSave   = true

	// Environment variable names
	EnvPort       = "SPRITEDECK_PORT"
	EnvLogLevel   = "SPRITEDECK_LOG_LEVEL"
	EnvDataDir    = "SPRITEDECK_DATA_DIR"
	EnvPreviewFPS = "SPRITEDECK_PREVIEW_FPS"
	EnvAutoSave   = "SPRITEDECK_AUTO_SAVE"
	EnvHeadless   = "SPRITEDECK_HEADLESS"

	// Database filename
	DBFilename = "spritedeck.db"

	// Sidecar watcher defaults
	DefaultWatchInterval = 2 * time.Second

	// Recent files list cap
	DefaultRecentFilesLimit = 10
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	PreviewFPS() int
	AutoSave() bool
	Headless() bool
	WatchInterval() time.Duration
	RecentFilesLimit() int
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port       int
	logLevel   string
	dataDir    string
	previewFPS int
	autoSave   bool
	headless   bool
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:       DefaultPort,
		logLevel:   DefaultLogLevel,
		dataDir:    defaultDataDir(),
		previewFPS: DefaultPreviewFPS,
		autoSave:   DefaultAutoSave,
	}

	// Override port from environment
	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	// Override log level from environment
	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	// Override data directory from environment
	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	// Override preview FPS from environment
	if f := os.Getenv(EnvPreviewFPS); f != "" {
		fps, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPreviewFPS, err)
		}
		if fps < 1 || fps > 120 {
			return nil, fmt.Errorf("invalid %s: fps must be between 1 and 120", EnvPreviewFPS)
		}
		cfg.previewFPS = fps
	}

	// Override auto-save from environment
	if as := os.Getenv(EnvAutoSave); as != "" {
		enabled, err := strconv.ParseBool(as)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvAutoSave, err)
		}
		cfg.autoSave = enabled
	}

	// Override headless mode from environment
	if h := os.Getenv(EnvHeadless); h != "" {
		headless, err := strconv.ParseBool(h)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvHeadless, err)
		}
		cfg.headless = headless
	}

	return cfg, nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// PreviewFPS returns the default frames-per-second for segment preview playback
func (c *EnvConfig) PreviewFPS() int {
	return c.previewFPS
}

// AutoSave reports whether segment stores persist on every mutation
func (c *EnvConfig) AutoSave() bool {
	return c.autoSave
}

// Headless reports whether the system tray should be skipped
func (c *EnvConfig) Headless() bool {
	return c.headless
}

// WatchInterval returns the sidecar file poll interval
func (c *EnvConfig) WatchInterval() time.Duration {
	return DefaultWatchInterval
}

// RecentFilesLimit returns the maximum number of tracked recent files
func (c *EnvConfig) RecentFilesLimit() int {
	return DefaultRecentFilesLimit
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
