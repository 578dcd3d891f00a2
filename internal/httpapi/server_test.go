package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"visiond/internal/store"
	"visiond/pkg/types"
)

type fakeArtifacts struct {
	models       []types.Artifact
	records      map[string]types.DownloadRecord
	downloadPath string
	downloadErr  error
	deleteOK     bool
	cleared      []string
}

func (f *fakeArtifacts) Models() ([]types.Artifact, error) { return f.models, nil }
func (f *fakeArtifacts) Download(ctx context.Context, url, filename string) (string, error) {
	return f.downloadPath, f.downloadErr
}
func (f *fakeArtifacts) Record(filename string) (types.DownloadRecord, bool) {
	r, ok := f.records[filename]
	return r, ok
}
func (f *fakeArtifacts) Progress() map[string]types.DownloadRecord { return f.records }
func (f *fakeArtifacts) Delete(filename string) (bool, error)      { return f.deleteOK, nil }
func (f *fakeArtifacts) ClearRecord(filename string) {
	f.cleared = append(f.cleared, filename)
}

type fakeAnalysis struct {
	frames  [][]byte
	prompts []string
	text    string
	busy    bool
	history []types.AnalysisEntry
	ready   bool
}

func (f *fakeAnalysis) Enqueue(frame []byte, prompt string) {
	f.frames = append(f.frames, frame)
	f.prompts = append(f.prompts, prompt)
}
func (f *fakeAnalysis) Current() (string, bool)        { return f.text, f.busy }
func (f *fakeAnalysis) History() []types.AnalysisEntry { return f.history }
func (f *fakeAnalysis) Status() types.StatusResponse   { return types.StatusResponse{State: "idle"} }
func (f *fakeAnalysis) Ready() bool                    { return f.ready }

func newTestMux(fa *fakeArtifacts, fan *fakeAnalysis) http.Handler {
	if fa.records == nil {
		fa.records = map[string]types.DownloadRecord{}
	}
	return NewMux(fa, fan)
}

func TestModelsEndpoint(t *testing.T) {
	fa := &fakeArtifacts{models: []types.Artifact{{ID: "a.gguf", Path: "/m/a.gguf"}}}
	mux := newTestMux(fa, &fakeAnalysis{})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/models", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var resp types.ModelsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Models) != 1 || resp.Models[0].ID != "a.gguf" {
		t.Fatalf("unexpected body: %+v", resp)
	}
}

func TestAnalyzeEnqueues(t *testing.T) {
	fan := &fakeAnalysis{}
	mux := newTestMux(&fakeArtifacts{}, fan)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/analyze?prompt=what+is+this", strings.NewReader("jpegbytes"))
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	if len(fan.frames) != 1 || string(fan.frames[0]) != "jpegbytes" {
		t.Fatalf("frame not enqueued: %v", fan.frames)
	}
	if fan.prompts[0] != "what is this" {
		t.Fatalf("prompt lost: %q", fan.prompts[0])
	}
}

func TestAnalyzeEmptyFrame(t *testing.T) {
	fan := &fakeAnalysis{}
	mux := newTestMux(&fakeArtifacts{}, fan)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/analyze", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty frame must be rejected, got %d", rec.Code)
	}
	if len(fan.frames) != 0 {
		t.Fatalf("empty frame must not be enqueued")
	}
}

func TestDeleteModel(t *testing.T) {
	mux := newTestMux(&fakeArtifacts{deleteOK: true}, &fakeAnalysis{})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/models/a.gguf", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}

	mux = newTestMux(&fakeArtifacts{deleteOK: false}, &fakeAnalysis{})
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/models/a.gguf", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing artifact must 404, got %d", rec.Code)
	}
}

func TestClearDownloadRecord(t *testing.T) {
	fa := &fakeArtifacts{}
	mux := newTestMux(fa, &fakeAnalysis{})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/downloads/a.gguf", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status %d", rec.Code)
	}
	if len(fa.cleared) != 1 || fa.cleared[0] != "a.gguf" {
		t.Fatalf("record not cleared: %v", fa.cleared)
	}
}

func TestPullStreamsTerminalLine(t *testing.T) {
	fa := &fakeArtifacts{downloadPath: "/m/a.gguf"}
	mux := newTestMux(fa, &fakeAnalysis{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/models/pull",
		strings.NewReader(`{"url":"http://host/a.gguf","filename":"a.gguf"}`))
	req.Header.Set("Content-Type", "application/json")
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	var last types.PullProgress
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &last); err != nil {
		t.Fatalf("decode terminal line: %v", err)
	}
	if last.State != types.DownloadComplete || last.Path != "/m/a.gguf" || last.Progress != 1 {
		t.Fatalf("unexpected terminal line: %+v", last)
	}
}

func TestPullValidation(t *testing.T) {
	mux := newTestMux(&fakeArtifacts{}, &fakeAnalysis{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/models/pull", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing url must 400, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/models/pull", strings.NewReader(`{"url":"x","filename":"a"}`))
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("missing content type must 415, got %d", rec.Code)
	}
}

func TestPullErrorMapping(t *testing.T) {
	fa := &fakeArtifacts{downloadErr: store.ErrDownloadFailed("a.gguf", "unexpected status: 404 Not Found")}
	mux := newTestMux(fa, &fakeAnalysis{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/models/pull",
		strings.NewReader(`{"url":"http://host/a.gguf","filename":"a.gguf"}`))
	req.Header.Set("Content-Type", "application/json")
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("download failure must map to 502, got %d", rec.Code)
	}
}

func TestReadyz(t *testing.T) {
	mux := newTestMux(&fakeArtifacts{}, &fakeAnalysis{ready: false})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("not ready must 503, got %d", rec.Code)
	}

	mux = newTestMux(&fakeArtifacts{}, &fakeAnalysis{ready: true})
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("ready must 200, got %d", rec.Code)
	}
}

func TestHistoryAndAnalysis(t *testing.T) {
	fan := &fakeAnalysis{
		text:    "a cat on a desk",
		busy:    true,
		history: []types.AnalysisEntry{{Text: "a cat", Prompt: "describe", At: 1700000000}},
	}
	mux := newTestMux(&fakeArtifacts{}, fan)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analysis", nil))
	var ar types.AnalysisResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &ar); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ar.Text != "a cat on a desk" || !ar.Busy {
		t.Fatalf("unexpected analysis: %+v", ar)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history", nil))
	var hr types.HistoryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &hr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(hr.Entries) != 1 || hr.Entries[0].Text != "a cat" {
		t.Fatalf("unexpected history: %+v", hr)
	}
}
