package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	envPykeenStorePath  = "PYKEEN_STORE_PATH"
	envPykeenDatasetDir = "PYKEEN_DATASET_DIR"
)

// resolveStorePath picks the run store location: the flag, then the
// environment, then a per-user default under the OS config directory.
func resolveStorePath(flagValue string) (string, error) {
	if v := strings.TrimSpace(flagValue); v != "" {
		return filepath.Clean(v), nil
	}
	if v := strings.TrimSpace(os.Getenv(envPykeenStorePath)); v != "" {
		return filepath.Clean(v), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve run store path: %w", err)
	}
	path := filepath.Join(dir, "pykeen", "runs.db")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	return path, nil
}

// resolveDatasetDir falls back to the environment when the flag and the run
// configuration both leave the dataset directory empty.
func resolveDatasetDir(value string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return strings.TrimSpace(os.Getenv(envPykeenDatasetDir))
}
