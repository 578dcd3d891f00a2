package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"visiond/internal/config"
	"visiond/internal/httpapi"
	"visiond/internal/manager"
	"visiond/internal/store"
)

const appID = "visiond"

func main() {
	// Flags with environment variable defaults
	defaultAddr := ":8080"
	if v := os.Getenv("VISIOND_ADDR"); v != "" {
		defaultAddr = v
	}
	addr := flag.String("addr", defaultAddr, "HTTP listen address, e.g. :8080")
	cfgPath := flag.String("config", os.Getenv("VISIOND_CONFIG"), "Optional config file (.yaml/.json/.toml)")
	storageMode := flag.String("storage-mode", "scoped", "Artifact storage strategy: scoped|legacy")
	storageDir := flag.String("storage-dir", "", "Override base storage directory")
	modelURL := flag.String("model-url", os.Getenv("VISIOND_MODEL_URL"), "URL of the vision-language model artifact")
	modelFile := flag.String("model-file", os.Getenv("VISIOND_MODEL_FILE"), "Filename of the model artifact")
	llamaCtx := flag.Int("llama-ctx", 2048, "Context size for the llama runtime")
	llamaThreads := flag.Int("llama-threads", 0, "Threads for the llama runtime (0=runtime default)")
	warmup := flag.Bool("warmup", false, "Fetch the model and initialize the session at startup")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Str("app", appID).Logger()

	cfg := config.Config{}
	if *cfgPath != "" {
		c, err := config.Load(*cfgPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *cfgPath).Msg("load config")
		}
		cfg = c
	}
	// Config file values win; flags and their env defaults fill the gaps.
	if cfg.Addr == "" {
		cfg.Addr = *addr
	}
	if cfg.StorageMode == "" {
		cfg.StorageMode = *storageMode
	}
	if cfg.StorageDir == "" {
		cfg.StorageDir = *storageDir
	}
	if cfg.ModelURL == "" {
		cfg.ModelURL = *modelURL
	}
	if cfg.ModelFile == "" {
		cfg.ModelFile = *modelFile
	}
	if cfg.LlamaCtx == 0 {
		cfg.LlamaCtx = *llamaCtx
	}
	if cfg.LlamaThreads == 0 {
		cfg.LlamaThreads = *llamaThreads
	}
	if cfg.ModelURL == "" || cfg.ModelFile == "" {
		log.Fatal().Msg("model-url and model-file are required (flag, env, or config file)")
	}

	resolver := store.NewResolver(cfg.StorageMode, cfg.StorageDir, appID, log)
	st := store.New(store.Config{Resolver: resolver, Logger: log})
	mgr := manager.NewWithConfig(manager.ManagerConfig{
		Store:         st,
		ModelURL:      cfg.ModelURL,
		ModelFile:     cfg.ModelFile,
		DefaultPrompt: cfg.DefaultPrompt,
		HistoryLimit:  cfg.HistoryLimit,
		CtxSize:       cfg.LlamaCtx,
		Threads:       cfg.LlamaThreads,
		MaxTokens:     cfg.MaxTokens,
		Logger:        log,
	})

	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetBaseContext(baseCtx)
	httpapi.SetLogger(log)
	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSOrigins)

	if *warmup {
		if err := mgr.EnsureSession(baseCtx); err != nil {
			// Warmup failure is not fatal: the session is retried lazily on
			// the first capture.
			log.Warn().Err(err).Msg("warmup failed")
		}
	}

	mux := httpapi.NewMux(st, mgr)
	srv := &http.Server{Addr: cfg.Addr, Handler: mux}

	go func() {
		log.Info().Str("addr", cfg.Addr).Str("model", cfg.ModelFile).Msg("visiond listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	cancelBase()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown error")
	}
	if err := mgr.Close(); err != nil {
		log.Error().Err(err).Msg("closing analysis manager")
	}
}
