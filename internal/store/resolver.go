package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"visiond/internal/common/fsutil"
)

// PathResolver computes the on-disk location for a named artifact. The
// strategy is chosen once at startup; call sites never branch on platform or
// storage mode themselves.
type PathResolver interface {
	// Resolve returns the target path for filename, creating intermediate
	// directories as needed.
	Resolve(filename string) (string, error)
	// Dir returns the base directory artifacts live in, creating it if
	// absent.
	Dir() (string, error)
}

// ScopedResolver places artifacts in an app-scoped directory under the user
// cache dir (e.g. ~/.cache/visiond/models). No broad permission grant is
// needed for this location.
type ScopedResolver struct {
	base  string // overrides the user cache dir when set
	appID string
}

// NewScopedResolver builds a ScopedResolver. baseDir overrides the platform
// cache dir when non-empty; '~' is expanded.
func NewScopedResolver(baseDir, appID string) *ScopedResolver {
	return &ScopedResolver{base: baseDir, appID: appID}
}

func (s *ScopedResolver) Dir() (string, error) {
	base := s.base
	if base == "" {
		d, err := os.UserCacheDir()
		if err != nil {
			return "", fmt.Errorf("user cache dir: %w", err)
		}
		base = d
	} else {
		d, err := fsutil.ExpandHome(base)
		if err != nil {
			return "", err
		}
		base = d
	}
	dir := filepath.Join(base, s.appID, "models")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create storage dir: %w", err)
	}
	return dir, nil
}

func (s *ScopedResolver) Resolve(filename string) (string, error) {
	dir, err := s.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, filename), nil
}

// LegacyResolver places artifacts in a flat dot-directory under the user home
// dir (e.g. ~/.visiond). Used on hosts where the scoped location is not
// usable.
type LegacyResolver struct {
	base  string
	appID string
}

// NewLegacyResolver builds a LegacyResolver. baseDir overrides the home dir
// when non-empty; '~' is expanded.
func NewLegacyResolver(baseDir, appID string) *LegacyResolver {
	return &LegacyResolver{base: baseDir, appID: appID}
}

func (l *LegacyResolver) Dir() (string, error) {
	base := l.base
	if base == "" {
		d, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("home dir: %w", err)
		}
		base = filepath.Join(d, "."+l.appID)
	} else {
		d, err := fsutil.ExpandHome(base)
		if err != nil {
			return "", err
		}
		base = d
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return "", fmt.Errorf("create storage dir: %w", err)
	}
	return base, nil
}

func (l *LegacyResolver) Resolve(filename string) (string, error) {
	dir, err := l.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, filename), nil
}

// fallbackResolver tries the primary resolver and falls back on setup
// failures instead of raising them. Fallback use is logged once per call, not
// treated as fatal.
type fallbackResolver struct {
	primary  PathResolver
	fallback PathResolver
	log      zerolog.Logger
}

// WithFallback wraps primary so that storage setup failures degrade to the
// fallback resolver.
func WithFallback(primary, fallback PathResolver, log zerolog.Logger) PathResolver {
	return &fallbackResolver{primary: primary, fallback: fallback, log: log}
}

func (f *fallbackResolver) Dir() (string, error) {
	dir, err := f.primary.Dir()
	if err == nil {
		return dir, nil
	}
	f.log.Warn().Err(err).Msg("scoped storage unavailable, falling back")
	return f.fallback.Dir()
}

func (f *fallbackResolver) Resolve(filename string) (string, error) {
	p, err := f.primary.Resolve(filename)
	if err == nil {
		return p, nil
	}
	f.log.Warn().Err(err).Str("filename", filename).Msg("scoped storage unavailable, falling back")
	return f.fallback.Resolve(filename)
}

// NewResolver selects the storage strategy from config. mode is "scoped"
// (default) or "legacy"; scoped mode still degrades to legacy on setup
// failure.
func NewResolver(mode, baseDir, appID string, log zerolog.Logger) PathResolver {
	legacy := NewLegacyResolver("", appID)
	switch mode {
	case "legacy":
		return NewLegacyResolver(baseDir, appID)
	default:
		return WithFallback(NewScopedResolver(baseDir, appID), legacy, log)
	}
}
