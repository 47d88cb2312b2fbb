package platform

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFindDataDir(t *testing.T) {
	// /tmp/
	//   repo/ (.harumemo)
	//     subdir/
	//       nested/
	//   empty/

	baseDir := t.TempDir()
	repoDir := filepath.Join(baseDir, "repo")
	subDir := filepath.Join(repoDir, "subdir")
	nestedDir := filepath.Join(subDir, "nested")
	emptyDir := filepath.Join(baseDir, "empty")

	if err := os.MkdirAll(nestedDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(emptyDir, 0755); err != nil {
		t.Fatal(err)
	}

	marker := filepath.Join(repoDir, DataDirName)
	if err := os.Mkdir(marker, 0755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		startPath string
		wantDir   string
		wantErr   bool
	}{
		{
			name:      "Start at Root",
			startPath: repoDir,
			wantDir:   marker,
			wantErr:   false,
		},
		{
			name:      "Start in Subdir",
			startPath: subDir,
			wantDir:   marker,
			wantErr:   false,
		},
		{
			name:      "Start Nested Deeply",
			startPath: nestedDir,
			wantDir:   marker,
			wantErr:   false,
		},
		{
			name:      "No Root Found",
			startPath: emptyDir,
			wantDir:   "",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindDataDir(tt.startPath)
			if (err != nil) != tt.wantErr {
				t.Errorf("FindDataDir() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if tt.wantErr && !errors.Is(err, ErrNoDataDir) {
				t.Errorf("FindDataDir() error = %v, want ErrNoDataDir", err)
			}
			if got != "" {
				if filepath.Clean(got) != filepath.Clean(tt.wantDir) {
					t.Errorf("FindDataDir() = %v, want %v", got, tt.wantDir)
				}
			}
		})
	}
}
