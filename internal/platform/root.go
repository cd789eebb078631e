package platform

import (
	"errors"
	"os"
	"path/filepath"
)

// RootMarker is the directory that makes a folder a notebook root.
const RootMarker = ".pocket"

// ErrRootNotFound is returned by FindRoot when no ancestor holds RootMarker.
var ErrRootNotFound = errors.New("notebook root not found")

// FindRoot walks up from startDir looking for a RootMarker directory and
// returns the absolute path of the directory containing it.
func FindRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if info, err := os.Stat(filepath.Join(dir, RootMarker)); err == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrRootNotFound
		}
		dir = parent
	}
}
