package manager

// sessionInitError signals that the inference session could not be brought
// up (model fetch or load failed). It gates readiness; callers may retry.
type sessionInitError struct{ msg string }

func (e sessionInitError) Error() string { return "session init: " + e.msg }

// ErrSessionInit constructs a sessionInitError.
func ErrSessionInit(msg string) error { return sessionInitError{msg: msg} }

// IsSessionInit reports whether err indicates a failed session
// initialization.
func IsSessionInit(err error) bool {
	_, ok := err.(sessionInitError)
	return ok
}

// dependencyUnavailableError signals a missing external dependency (e.g.,
// llama.cpp built without the proper tag) so the HTTP layer can return 503
// instead of 500.
type dependencyUnavailableError struct{ msg string }

func (e dependencyUnavailableError) Error() string { return e.msg }

// ErrDependencyUnavailable constructs a dependencyUnavailableError.
func ErrDependencyUnavailable(msg string) error { return dependencyUnavailableError{msg: msg} }

// IsDependencyUnavailable reports whether err indicates a missing/failed
// runtime dependency.
func IsDependencyUnavailable(err error) bool {
	_, ok := err.(dependencyUnavailableError)
	return ok
}
