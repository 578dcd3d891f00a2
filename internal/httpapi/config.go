package httpapi

// maxFrameBytes controls the maximum allowed request body size for frame
// uploads. Default 8 MiB, enough for a full-resolution JPEG capture.
var maxFrameBytes int64 = 8 << 20

// SetMaxFrameBytes allows configuring the maximum frame upload size.
func SetMaxFrameBytes(n int64) {
	if n <= 0 {
		maxFrameBytes = 8 << 20
		return
	}
	maxFrameBytes = n
}

// maxBodyBytes controls the maximum allowed request body size for JSON
// endpoints.
var maxBodyBytes int64 = 1 << 20

// SetMaxBodyBytes allows configuring the maximum request body size.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		maxBodyBytes = 1 << 20
		return
	}
	maxBodyBytes = n
}

// CORS configuration (opt-in). If disabled, no CORS middleware is added.
// Browser capture clients post frames cross-origin, so the daemon usually
// runs with this on.
var (
	corsEnabled        bool
	corsAllowedOrigins []string
)

// SetCORSOptions configures CORS behavior for the HTTP server.
func SetCORSOptions(enabled bool, origins []string) {
	corsEnabled = enabled
	corsAllowedOrigins = append([]string(nil), origins...)
}
