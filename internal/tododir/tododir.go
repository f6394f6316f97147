// Package tododir provides constants and helpers for the ~/.todo state directory.
package tododir

import (
	"os"
	"path/filepath"
)

const (
	// Dir is the name of the state directory inside the user's home.
	Dir = ".todo"

	// DefaultTaskFile is the default task file name (inside Dir).
	DefaultTaskFile = "tasks.txt"

	// DefaultConfigFile is the config file name, both inside Dir and in a
	// project directory.
	DefaultConfigFile = "todo.toml"
)

// DirPath returns the state directory under home. An empty home falls back
// to a relative .todo directory.
func DirPath(home string) string {
	if home == "" {
		return Dir
	}
	return filepath.Join(home, Dir)
}

// TaskPath returns the default task file path under home.
func TaskPath(home string) string {
	return filepath.Join(DirPath(home), DefaultTaskFile)
}

// ConfigPath returns the user config file path under home.
func ConfigPath(home string) string {
	return filepath.Join(DirPath(home), DefaultConfigFile)
}

// UserHome returns the user's home directory, or "" if it cannot be found.
func UserHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}
