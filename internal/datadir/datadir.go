// Package datadir locates the managed directory that holds persisted
// n-gram models.
package datadir

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvVar overrides the default data directory.
const EnvVar = "CORPUS_PRUNER_DATA_DIR"

// Resolve returns the absolute data directory, creating it on first use.
// An empty dir falls back to $CORPUS_PRUNER_DATA_DIR and then to
// <user cache dir>/corpus-pruner.
func Resolve(dir string) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = strings.TrimSpace(os.Getenv(EnvVar))
	}
	if dir == "" {
		cache, err := os.UserCacheDir()
		if err != nil {
			return "", fmt.Errorf("resolve cache directory: %w", err)
		}
		dir = filepath.Join(cache, "corpus-pruner")
	}

	expanded, err := ExpandPath(dir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(expanded, 0o755); err != nil {
		return "", fmt.Errorf("ensure data directory: %w", err)
	}
	return expanded, nil
}

// ExpandPath resolves a leading ~ and makes the path absolute.
func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	abs, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve path %q: %w", pathValue, err)
	}
	return abs, nil
}
