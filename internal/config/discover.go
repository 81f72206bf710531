// internal/config/discover.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultPath returns the XDG-compliant default config path.
func DefaultPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "./anisort.toml"
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "anisort", "config.toml")
}

// DataDir returns the XDG-compliant directory for backups and the database.
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "./data"
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "anisort")
}

// Discover finds the config file using the standard search order.
// Search order:
//  1. ANISORT_CONFIG environment variable
//  2. ./anisort.toml (current directory)
//  3. $XDG_CONFIG_HOME/anisort/config.toml
//  4. /etc/anisort/config.toml
func Discover() (string, error) {
	if envPath := os.Getenv("ANISORT_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("ANISORT_CONFIG=%s: %w", envPath, err)
		}
		return envPath, nil
	}

	paths := []string{
		"./anisort.toml",
		DefaultPath(),
		"/etc/anisort/config.toml",
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("%w, checked: %s", ErrNotFound, formatPaths(paths))
}

func formatPaths(paths []string) string {
	return strings.Join(paths, ", ")
}
