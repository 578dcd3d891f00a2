package registry

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDirFiltersArtifacts(t *testing.T) {
	d := t.TempDir()
	write := func(name string, content []byte) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(d, name), content, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	write("a.gguf", []byte("weights"))
	write("B.GGUF", []byte("weights"))
	write("notes.txt", []byte("skip me"))
	write("empty.gguf", nil) // aborted transfer, must be skipped
	if err := os.Mkdir(filepath.Join(d, "sub.gguf"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	artifacts, err := LoadDir(d)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(artifacts) != 2 {
		t.Fatalf("expected 2 artifacts, got %d: %+v", len(artifacts), artifacts)
	}
	for _, a := range artifacts {
		if a.ID == "" || a.Path == "" || a.SizeBytes == 0 {
			t.Fatalf("incomplete artifact: %+v", a)
		}
		if filepath.Dir(a.Path) != d {
			t.Fatalf("path outside dir: %s", a.Path)
		}
	}
}

func TestLoadDirMissing(t *testing.T) {
	if _, err := LoadDir(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatalf("expected error for missing dir")
	}
}
