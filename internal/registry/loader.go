package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"visiond/internal/common/fsutil"
	"visiond/pkg/types"
)

// LoadDir scans a directory for *.gguf files and builds the artifact list.
// ID is the full filename (including extension); Path is the absolute file
// path. Zero-byte files are aborted transfers and are skipped.
func LoadDir(dir string) ([]types.Artifact, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var artifacts []types.Artifact
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(strings.ToLower(name), ".gguf") {
			continue
		}
		p := filepath.Join(abs, name)
		size := fsutil.FileSize(p)
		if size == 0 {
			continue
		}
		artifacts = append(artifacts, types.Artifact{ID: name, Name: name, Path: p, SizeBytes: size})
	}
	return artifacts, nil
}
