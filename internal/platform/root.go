package platform

import (
	"errors"
	"os"
	"path/filepath"
)

// DataDirName is the directory that marks a project-local note store.
const DataDirName = ".harumemo"

// ErrNoDataDir is returned by FindDataDir when no marker directory exists
// between startDir and the filesystem root.
var ErrNoDataDir = errors.New("no .harumemo directory found")

// FindDataDir looks upwards from startDir for a DataDirName directory and
// returns its absolute path.
func FindDataDir(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(dir, DataDirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoDataDir
		}
		dir = parent
	}
}

// DefaultDataDir picks the data directory when none was configured: the
// nearest project-local one, else ~/.harumemo.
func DefaultDataDir() string {
	if cwd, err := os.Getwd(); err == nil {
		if dir, err := FindDataDir(cwd); err == nil {
			return dir
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, DataDirName)
	}
	return DataDirName
}
