package errs

import (
	"errors"
	"fmt"
)

// Kind categorizes application errors for HTTP status mapping and retry hints.
type Kind int

const (
	// Unknown represents an unclassified error.
	Unknown Kind = iota
	// InvalidInput indicates the request URL was malformed (HTTP 400).
	InvalidInput
	// SessionUnavailable indicates the browser process is not running and
	// could not be re-launched (HTTP 503, possibly transient).
	SessionUnavailable
	// SessionOverloaded indicates page-context creation timed out (HTTP 503,
	// possibly transient).
	SessionOverloaded
	// NavigationTimeout indicates the target took too long to load (HTTP 504).
	NavigationTimeout
	// NavigationFailed indicates a browser-level navigation error or a
	// non-success HTTP status from the target (HTTP 502).
	NavigationFailed
	// ExtractionFailed indicates the in-page extraction script threw (HTTP 500).
	ExtractionFailed
)

// AppError carries a category, user message, and original cause.
type AppError struct {
	Kind           Kind
	UpstreamStatus int // HTTP status code returned by the target domain
	Message        string
	Cause          error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// KindOf returns the Kind of err if it is or wraps an *AppError, Unknown otherwise.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Unknown
}

// String returns a stable label for the kind, used in logs and metrics.
func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid_input"
	case SessionUnavailable:
		return "session_unavailable"
	case SessionOverloaded:
		return "session_overloaded"
	case NavigationTimeout:
		return "navigation_timeout"
	case NavigationFailed:
		return "navigation_failed"
	case ExtractionFailed:
		return "extraction_failed"
	default:
		return "unknown"
	}
}
