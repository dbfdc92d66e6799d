// Package config holds the settings of the mztab tool. Values come from
// struct-tag defaults, an optional YAML file and MZTAB_* environment
// variables, in increasing precedence. Command-line flags are applied on
// top by the caller.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ChrisMcGann/mztab/pkg/mzerror"
)

// Config is the full tool configuration
type Config struct {
	Validation ValidationConfig `yaml:"validation"`
	Logging    LoggingConfig    `yaml:"logging"`
	Batch      BatchConfig      `yaml:"batch"`
	Report     ReportConfig     `yaml:"report"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// ValidationConfig controls the reader
type ValidationConfig struct {
	Level     string `yaml:"level" env:"MZTAB_LEVEL" default:"Error"`
	MaxErrors int    `yaml:"max_errors" env:"MZTAB_MAX_ERRORS" default:"300"`
}

// LoggingConfig is passed to logging.Setup
type LoggingConfig struct {
	Level  string `yaml:"level" env:"MZTAB_LOG_LEVEL" default:"info"`
	Format string `yaml:"format" env:"MZTAB_LOG_FORMAT" default:"text"`
}

// BatchConfig bounds parallel validation
type BatchConfig struct {
	Workers int `yaml:"workers" env:"MZTAB_WORKERS" default:"4"`
}

// ReportConfig names the SQLite report database. Empty disables it.
type ReportConfig struct {
	Path string `yaml:"path" env:"MZTAB_REPORT"`
}

// MetricsConfig names the Prometheus textfile. Empty disables it.
type MetricsConfig struct {
	TextfilePath string `yaml:"textfile_path" env:"MZTAB_METRICS_TEXTFILE"`
}

// ErrLevel returns the parsed validation level
func (c *Config) ErrLevel() (mzerror.Level, error) {
	return mzerror.ParseLevel(c.Validation.Level)
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	if _, err := c.ErrLevel(); err != nil {
		errs = append(errs, fmt.Sprintf("validation.level: %v", err))
	}
	if c.Validation.MaxErrors <= 0 {
		errs = append(errs, "validation.max_errors must be positive")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Sprintf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("logging.format %q is not one of text, json", c.Logging.Format))
	}
	if c.Batch.Workers <= 0 {
		errs = append(errs, "batch.workers must be positive")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
