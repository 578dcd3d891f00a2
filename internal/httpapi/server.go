package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"visiond/internal/manager"
	"visiond/internal/store"
	"visiond/pkg/types"
)

// ArtifactService defines the model-artifact methods required by the HTTP
// layer. *store.Store satisfies it.
type ArtifactService interface {
	Models() ([]types.Artifact, error)
	Download(ctx context.Context, url, filename string) (string, error)
	Record(filename string) (types.DownloadRecord, bool)
	Progress() map[string]types.DownloadRecord
	Delete(filename string) (bool, error)
	ClearRecord(filename string)
}

// AnalysisService defines the capture/analysis methods required by the HTTP
// layer. *manager.Manager satisfies it.
type AnalysisService interface {
	Enqueue(frame []byte, prompt string)
	Current() (string, bool)
	History() []types.AnalysisEntry
	Status() types.StatusResponse
	Ready() bool
}

// pullInterval is how often streamed pull progress lines are emitted.
const pullInterval = 250 * time.Millisecond

// NewMux builds the HTTP router over the artifact store and the analysis
// manager.
func NewMux(artifacts ArtifactService, analysis AnalysisService) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(MetricsMiddleware)
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/models", func(w http.ResponseWriter, r *http.Request) {
		models, err := artifacts.Models()
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, types.ModelsResponse{Models: models})
	})

	r.Post("/models/pull", func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.PullRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if strings.TrimSpace(req.URL) == "" {
			writeJSONError(w, http.StatusBadRequest, "url is required")
			return
		}
		if strings.TrimSpace(req.Filename) == "" {
			writeJSONError(w, http.StatusBadRequest, "filename is required")
			return
		}
		handlePull(w, r, artifacts, req)
	})

	r.Delete("/models/{filename}", func(w http.ResponseWriter, r *http.Request) {
		filename := chi.URLParam(r, "filename")
		removed, err := artifacts.Delete(filename)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		if !removed {
			writeJSONError(w, http.StatusNotFound, "artifact not found: "+filename)
			return
		}
		writeJSON(w, map[string]any{"deleted": filename})
	})

	r.Get("/downloads", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, types.DownloadsResponse{Downloads: artifacts.Progress()})
	})

	r.Delete("/downloads/{filename}", func(w http.ResponseWriter, r *http.Request) {
		artifacts.ClearRecord(chi.URLParam(r, "filename"))
		w.WriteHeader(http.StatusNoContent)
	})

	r.Post("/analyze", func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxFrameBytes)
		frame, err := io.ReadAll(r.Body)
		if err != nil {
			writeJSONError(w, http.StatusRequestEntityTooLarge, "frame too large")
			return
		}
		if len(frame) == 0 {
			writeJSONError(w, http.StatusBadRequest, "empty frame")
			return
		}
		analysis.Enqueue(frame, r.URL.Query().Get("prompt"))
		if ev := logEvent(); ev != nil {
			ev.Int("bytes", len(frame)).Str("request_id", middleware.GetReqID(r.Context())).Msg("frame enqueued")
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(map[string]any{"queued": true})
	})

	r.Get("/analysis", func(w http.ResponseWriter, r *http.Request) {
		text, busy := analysis.Current()
		writeJSON(w, types.AnalysisResponse{Text: text, Busy: busy})
	})

	r.Get("/history", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, types.HistoryResponse{Entries: analysis.History()})
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, analysis.Status())
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if analysis.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}

// handlePull runs the download in the background and streams NDJSON progress
// lines until it finishes. The terminal line carries the resolved path or the
// error.
func handlePull(w http.ResponseWriter, r *http.Request, artifacts ArtifactService, req types.PullRequest) {
	joinedCtx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()

	type pullResult struct {
		path string
		err  error
	}
	resCh := make(chan pullResult, 1)
	go func() {
		p, err := artifacts.Download(joinedCtx, req.URL, req.Filename)
		resCh <- pullResult{path: p, err: err}
	}()

	var flush func()
	if f, ok := w.(http.Flusher); ok {
		flush = f.Flush
	}
	enc := json.NewEncoder(w)
	wrote := false
	writeLine := func(line types.PullProgress) {
		if !wrote {
			w.Header().Set("Content-Type", "application/x-ndjson")
			wrote = true
		}
		_ = enc.Encode(line)
		if flush != nil {
			flush()
		}
	}

	start := time.Now()
	ticker := time.NewTicker(pullInterval)
	defer ticker.Stop()
	for {
		select {
		case res := <-resCh:
			if res.err != nil {
				if !wrote {
					writeStoreError(w, res.err)
					return
				}
				rec, _ := artifacts.Record(req.Filename)
				writeLine(types.PullProgress{
					Filename: req.Filename,
					Progress: rec.Progress,
					State:    types.DownloadFailed,
					Error:    res.err.Error(),
				})
				return
			}
			writeLine(types.PullProgress{
				Filename: req.Filename,
				Progress: 1,
				State:    types.DownloadComplete,
				Path:     res.path,
			})
			if ev := logEvent(); ev != nil {
				ev.Str("filename", req.Filename).Dur("dur", time.Since(start)).Msg("pull complete")
			}
			return
		case <-ticker.C:
			rec, ok := artifacts.Record(req.Filename)
			if !ok {
				continue
			}
			writeLine(types.PullProgress{
				Filename: req.Filename,
				Progress: rec.Progress,
				State:    rec.State,
			})
		case <-joinedCtx.Done():
			return
		}
	}
}

// writeStoreError maps well-known store/manager errors to HTTP status codes.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case store.IsBadFilename(err):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case store.IsArtifactNotFound(err):
		writeJSONError(w, http.StatusNotFound, err.Error())
	case store.IsDownloadFailed(err):
		writeJSONError(w, http.StatusBadGateway, err.Error())
	case manager.IsDependencyUnavailable(err) || manager.IsSessionInit(err):
		writeJSONError(w, http.StatusServiceUnavailable, err.Error())
	default:
		if he, ok := err.(HTTPError); ok {
			writeJSONError(w, he.StatusCode(), he.Error())
			return
		}
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
	}
}
