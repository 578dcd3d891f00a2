package types

// PullRequest is the payload for POST /models/pull.
type PullRequest struct {
	// Source URL of the artifact.
	URL string `json:"url"`
	// Target filename under the storage directory. Must be a bare
	// filename, no path separators.
	Filename string `json:"filename"`
}

// PullProgress is one NDJSON line streamed while a pull is running.
type PullProgress struct {
	Filename string        `json:"filename"`
	Progress float64       `json:"progress"`
	State    DownloadState `json:"state"`
	// Final resolved path, present on the terminal line only.
	Path string `json:"path,omitempty"`
	// Error message, present when the pull failed.
	Error string `json:"error,omitempty"`
}

// ModelsResponse wraps the artifact list returned by GET /models.
type ModelsResponse struct {
	Models []Artifact `json:"models"`
}

// DownloadsResponse is the progress snapshot returned by GET /downloads.
type DownloadsResponse struct {
	Downloads map[string]DownloadRecord `json:"downloads"`
}

// AnalysisResponse is returned by GET /analysis.
type AnalysisResponse struct {
	// Partial or final text of the most recent analysis.
	Text string `json:"text"`
	// Whether an analysis is currently in flight.
	Busy bool `json:"busy"`
}

// HistoryResponse wraps the analysis history returned by GET /history.
type HistoryResponse struct {
	Entries []AnalysisEntry `json:"entries"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Overall worker state (idle, busy, reinitializing, error).
	State string `json:"state"`
	// Path of the loaded model artifact, empty before first load.
	ModelPath string `json:"model_path,omitempty"`
	// Whether an inference session is currently initialized.
	SessionReady bool `json:"session_ready"`
	// Whether a captured frame is waiting for the worker.
	PendingFrame bool `json:"pending_frame"`
	// Total analyses completed since start.
	AnalysesTotal uint64 `json:"analyses_total"`
	// Total frames discarded because a newer frame superseded them.
	SupersededTotal uint64 `json:"superseded_total"`
	// Total session reinitializations after analysis failures.
	ReinitsTotal uint64 `json:"reinits_total"`
	// Last error observed by the manager (if any).
	LastError string `json:"last_error,omitempty"`
	// Uptime of the server in seconds.
	UptimeSeconds int64 `json:"uptime_seconds"`
	// Server time in unix seconds.
	ServerTimeUnix int64 `json:"server_time_unix"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}
