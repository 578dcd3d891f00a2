package manager

import (
	"os"

	"github.com/rs/zerolog"

	"visiond/internal/store"
)

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	defaultPrompt       = "Describe what you see in this image."
	defaultHistoryLimit = 100
	defaultMaxTokens    = 256
)

// noTextSentinel is recorded when the model returns an empty completion, so
// history entries are never blank.
const noTextSentinel = "(no text returned)"

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	// Store fetches and caches the model artifact.
	Store *store.Store
	// Adapter backs inference sessions. Defaults to the llama adapter
	// (real or stub depending on build tags).
	Adapter InferenceAdapter

	// ModelURL and ModelFile identify the vision-language model artifact.
	ModelURL  string
	ModelFile string

	// DefaultPrompt is used when an enqueued frame carries no prompt.
	DefaultPrompt string
	// HistoryLimit bounds the in-memory history log; oldest entries are
	// dropped past it. <=0 uses the package default.
	HistoryLimit int
	// TempDir holds per-analysis frame copies. Empty uses os.TempDir.
	TempDir string

	// Inference parameters.
	CtxSize   int
	Threads   int
	MaxTokens int

	Logger zerolog.Logger
}

// NewWithConfig constructs a Manager from ManagerConfig and starts its
// worker.
func NewWithConfig(cfg ManagerConfig) *Manager {
	if cfg.Adapter == nil {
		cfg.Adapter = NewLlamaAdapter(cfg.CtxSize, cfg.Threads)
	}
	if cfg.DefaultPrompt == "" {
		cfg.DefaultPrompt = defaultPrompt
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = defaultHistoryLimit
	}
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	return newManager(cfg)
}
