// Package config provides configuration management for the tablesnap CLI.
//
// Values are layered with koanf: built-in defaults, then a tablesnap.yaml
// file, then TABLESNAP_* environment variables, then explicitly set flags.
package config

import "time"

// HistoryConfig controls the render history database.
type HistoryConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// ServeConfig holds configuration for the HTTP server.
type ServeConfig struct {
	Addr         string `koanf:"addr"`
	MaxBodyBytes int64  `koanf:"max_body_bytes"`
}

// Config holds all CLI configuration options.
type Config struct {
	Separator     string        `koanf:"separator"`
	MaxCellLength int           `koanf:"max_cell_length"`
	FontSize      float64       `koanf:"font_size"`
	OutDir        string        `koanf:"out_dir"`
	Jobs          int           `koanf:"jobs"`
	Timeout       time.Duration `koanf:"timeout"`
	OutputFormat  string        `koanf:"output"`
	Verbose       bool          `koanf:"verbose"`
	LogLevel      string        `koanf:"log_level"`
	LogFormat     string        `koanf:"log_format"`
	History       HistoryConfig `koanf:"history"`
	Serve         ServeConfig   `koanf:"serve"`
}

// Default configuration values.
const (
	DefaultSeparator    = ","
	DefaultFontSize     = 12.0
	DefaultOutDir       = "."
	DefaultJobs         = 4
	DefaultTimeout      = 30 * time.Second
	DefaultOutput       = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
	DefaultHistoryPath  = ".tablesnap/history.db"
	DefaultServeAddr    = ":8080"
	DefaultMaxBodyBytes = 10 << 20
)

// Defaults returns a Config populated with the default values.
func Defaults() *Config {
	return &Config{
		Separator:    DefaultSeparator,
		FontSize:     DefaultFontSize,
		OutDir:       DefaultOutDir,
		Jobs:         DefaultJobs,
		Timeout:      DefaultTimeout,
		OutputFormat: DefaultOutput,
		LogLevel:     DefaultLogLevel,
		LogFormat:    DefaultLogFormat,
		History: HistoryConfig{
			Enabled: true,
			Path:    DefaultHistoryPath,
		},
		Serve: ServeConfig{
			Addr:         DefaultServeAddr,
			MaxBodyBytes: DefaultMaxBodyBytes,
		},
	}
}
