package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr string `json:"addr" yaml:"addr" toml:"addr"`
	// StorageMode selects the artifact storage strategy: "scoped" (default)
	// or "legacy".
	StorageMode string `json:"storage_mode" yaml:"storage_mode" toml:"storage_mode"`
	// StorageDir overrides the base directory for the selected mode.
	StorageDir string `json:"storage_dir" yaml:"storage_dir" toml:"storage_dir"`
	// ModelURL and ModelFile identify the vision-language model artifact.
	ModelURL  string `json:"model_url" yaml:"model_url" toml:"model_url"`
	ModelFile string `json:"model_file" yaml:"model_file" toml:"model_file"`
	// DefaultPrompt is used when a capture carries no prompt.
	DefaultPrompt string `json:"default_prompt" yaml:"default_prompt" toml:"default_prompt"`
	// HistoryLimit bounds the in-memory analysis history.
	HistoryLimit int `json:"history_limit" yaml:"history_limit" toml:"history_limit"`
	// Inference tunables.
	LlamaCtx     int `json:"llama_ctx" yaml:"llama_ctx" toml:"llama_ctx"`
	LlamaThreads int `json:"llama_threads" yaml:"llama_threads" toml:"llama_threads"`
	MaxTokens    int `json:"max_tokens" yaml:"max_tokens" toml:"max_tokens"`
	// CORS for browser capture clients.
	CORSEnabled bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
