package types

// Artifact represents a model weight file present on disk.
type Artifact struct {
	// Stable identifier for the artifact (its filename).
	ID string `json:"id"`
	// Human-friendly name.
	Name string `json:"name"`
	// Absolute path to the file on disk.
	Path string `json:"path"`
	// File size in bytes.
	SizeBytes int64 `json:"size_bytes"`
}
