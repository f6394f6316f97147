// Package config handles configuration loading and defaults.
package config

import (
	"path/filepath"

	"github.com/nibzard/todo-go/internal/tododir"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
	// Files lists the config files that were read, lowest priority first.
	Files []string
	// Warnings collects non-fatal problems such as unknown keys.
	Warnings []string
}

// Default values.
const (
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
	DefaultColor     = true
)

// DefaultTaskFile is the task file used when nothing else is configured.
var DefaultTaskFile = filepath.Join("~", tododir.Dir, tododir.DefaultTaskFile)

// Config holds the full configuration for todo.
type Config struct {
	// Paths
	TaskFile string `toml:"task_file"`

	// DefaultSort is applied after loading the task file. Empty keeps the
	// saved order.
	DefaultSort string `toml:"default_sort"`

	// Output
	Color bool `toml:"color"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`

	// Working directory (computed)
	WorkDir string `toml:"-"`
}

// configFields returns the list of configurable field names for source tracking.
func configFields() []string {
	return []string{
		"task_file",
		"default_sort",
		"color",
		"log_level",
		"log_format",
		"log_timestamps",
	}
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.TaskFile = DefaultTaskFile
	cfg.DefaultSort = ""
	cfg.Color = DefaultColor
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.LogTimestamps = false
}
