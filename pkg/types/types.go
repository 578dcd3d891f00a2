package types

// DownloadState is the lifecycle state of an artifact download.
type DownloadState string

const (
	DownloadIdle        DownloadState = "idle"
	DownloadDownloading DownloadState = "downloading"
	DownloadComplete    DownloadState = "complete"
	DownloadFailed      DownloadState = "failed"
)

// DownloadRecord tracks progress and state for one artifact download.
// Records live in memory only; they are not persisted across restarts.
type DownloadRecord struct {
	// Fraction of the transfer completed, in [0, 1]. Stays at 0 when the
	// content length is unknown until the transfer finishes.
	Progress float64 `json:"progress"`
	// Current state of the download.
	State DownloadState `json:"state"`
	// Error message, set only when State is failed.
	Error string `json:"error,omitempty"`
}

// AnalysisEntry is one finalized analysis result in the history log.
type AnalysisEntry struct {
	// Trimmed analysis text, or a fixed sentinel when the model returned
	// nothing.
	Text string `json:"text"`
	// Prompt the analysis ran with.
	Prompt string `json:"prompt"`
	// Completion time in unix seconds.
	At int64 `json:"at_unix"`
}
