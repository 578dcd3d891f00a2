package store

// downloadFailedError wraps a transfer failure with the artifact filename so
// the HTTP layer can map it to a 502/4xx and the record keeps a readable
// message.
type downloadFailedError struct {
	filename string
	msg      string
}

func (e downloadFailedError) Error() string { return "download " + e.filename + ": " + e.msg }

// ErrDownloadFailed constructs a downloadFailedError.
func ErrDownloadFailed(filename, msg string) error {
	return downloadFailedError{filename: filename, msg: msg}
}

// IsDownloadFailed reports whether err indicates a failed artifact transfer.
func IsDownloadFailed(err error) bool {
	_, ok := err.(downloadFailedError)
	return ok
}

// artifactNotFoundError signals a lookup/delete on a filename with no stored
// artifact, for 404 mapping.
type artifactNotFoundError struct{ filename string }

func (e artifactNotFoundError) Error() string { return "artifact not found: " + e.filename }

// ErrArtifactNotFound constructs an artifactNotFoundError.
func ErrArtifactNotFound(filename string) error { return artifactNotFoundError{filename: filename} }

// IsArtifactNotFound reports whether err indicates a missing artifact.
func IsArtifactNotFound(err error) bool {
	_, ok := err.(artifactNotFoundError)
	return ok
}

// badFilenameError rejects filenames that are empty or carry path separators.
type badFilenameError struct{ filename string }

func (e badFilenameError) Error() string { return "invalid artifact filename: " + e.filename }

// IsBadFilename reports whether err indicates a rejected filename, for 400
// mapping.
func IsBadFilename(err error) bool {
	_, ok := err.(badFilenameError)
	return ok
}
