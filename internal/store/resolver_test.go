package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestScopedResolverCreatesDirs(t *testing.T) {
	base := t.TempDir()
	r := NewScopedResolver(base, "visiond")
	p, err := r.Resolve("m.gguf")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := filepath.Join(base, "visiond", "models", "m.gguf")
	if p != want {
		t.Fatalf("expected %s got %s", want, p)
	}
	if fi, err := os.Stat(filepath.Dir(p)); err != nil || !fi.IsDir() {
		t.Fatalf("storage dir not created: %v", err)
	}
	// Resolve is idempotent.
	if p2, err := r.Resolve("m.gguf"); err != nil || p2 != p {
		t.Fatalf("second resolve differs: %s err %v", p2, err)
	}
}

func TestLegacyResolverLayout(t *testing.T) {
	base := t.TempDir()
	r := NewLegacyResolver(base, "visiond")
	p, err := r.Resolve("m.gguf")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if p != filepath.Join(base, "m.gguf") {
		t.Fatalf("legacy layout must be flat, got %s", p)
	}
}

// brokenResolver always fails, standing in for an unusable scoped location.
type brokenResolver struct{}

func (brokenResolver) Dir() (string, error)           { return "", errors.New("scoped storage denied") }
func (brokenResolver) Resolve(string) (string, error) { return "", errors.New("scoped storage denied") }

func TestFallbackResolver(t *testing.T) {
	base := t.TempDir()
	r := WithFallback(brokenResolver{}, NewLegacyResolver(base, "visiond"), zerolog.Nop())
	p, err := r.Resolve("m.gguf")
	if err != nil {
		t.Fatalf("fallback must absorb the setup failure: %v", err)
	}
	if p != filepath.Join(base, "m.gguf") {
		t.Fatalf("expected legacy path, got %s", p)
	}
	if _, err := r.Dir(); err != nil {
		t.Fatalf("fallback dir: %v", err)
	}
}

func TestNewResolverModes(t *testing.T) {
	base := t.TempDir()
	if _, ok := NewResolver("legacy", base, "visiond", zerolog.Nop()).(*LegacyResolver); !ok {
		t.Fatalf("legacy mode must select the legacy resolver")
	}
	if _, ok := NewResolver("scoped", base, "visiond", zerolog.Nop()).(*fallbackResolver); !ok {
		t.Fatalf("scoped mode must carry a legacy fallback")
	}
}
