package fsutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}
	got, err := ExpandHome("~/models")
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if got != filepath.Join(home, "models") {
		t.Fatalf("unexpected expansion: %s", got)
	}
	got, err = ExpandHome("/abs/path")
	if err != nil || got != "/abs/path" {
		t.Fatalf("absolute path must pass through, got %s err %v", got, err)
	}
	got, err = ExpandHome("")
	if err != nil || got != "" {
		t.Fatalf("empty path must pass through, got %q err %v", got, err)
	}
}

func TestArtifactPresent(t *testing.T) {
	d := t.TempDir()
	p := filepath.Join(d, "m.gguf")
	if ArtifactPresent(p) {
		t.Fatalf("missing file reported present")
	}
	if err := os.WriteFile(p, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if ArtifactPresent(p) {
		t.Fatalf("zero-byte file must count as absent")
	}
	if err := os.WriteFile(p, []byte("weights"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !ArtifactPresent(p) {
		t.Fatalf("non-empty file reported absent")
	}
	if FileSize(p) != int64(len("weights")) {
		t.Fatalf("unexpected size %d", FileSize(p))
	}
}
