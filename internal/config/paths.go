package config

import (
	"os"
	"path/filepath"
	"strings"
)

const appDirName = ".pocket"

// DataDir returns ~/.pocket, the default notes directory.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, appDirName), nil
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "config.toml"), nil
}

// expandHome turns a leading "~/" into the user's home directory.
func expandHome(path string) (string, error) {
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, path[2:]), nil
}
