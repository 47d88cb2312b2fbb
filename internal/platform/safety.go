package platform

import (
	"os"
	"path/filepath"
	"strings"
)

// DevDirName namespaces sandboxed data under the system temp directory.
const DevDirName = "harumemo-dev"

// IsDevRun reports whether the binary looks like a `go run` or `go test` build.
func IsDevRun() bool {
	exe, err := os.Executable()
	if err != nil {
		return false
	}
	if strings.HasPrefix(strings.ToLower(exe), strings.ToLower(os.TempDir())) {
		return true
	}
	return strings.HasSuffix(exe, ".test") || strings.HasSuffix(exe, ".test.exe")
}

// ResolveDataPath returns where a file-based store should live. Without
// sandboxing it is userPath itself. With sandboxing, paths already inside the
// temp directory are trusted; anything else is moved under DevDirName,
// keeping only its base name.
func ResolveDataPath(userPath string, sandbox bool) string {
	if !sandbox {
		if userPath == "" {
			return "."
		}
		return userPath
	}

	clean := filepath.Clean(userPath)
	if rel, err := filepath.Rel(os.TempDir(), clean); err == nil && filepath.IsAbs(clean) && !strings.HasPrefix(rel, "..") {
		return clean
	}

	name := filepath.Base(clean)
	if userPath == "" || name == "." || name == string(os.PathSeparator) {
		name = "default"
	}
	return filepath.Join(os.TempDir(), DevDirName, name)
}
