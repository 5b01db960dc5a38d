package shared

import (
	"errors"
	"fmt"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Catalog and transfer errors
	ErrInvalidURL        = fmt.Errorf("invalid catalog URL")
	ErrNetwork           = fmt.Errorf("network error")
	ErrTimeout           = fmt.Errorf("operation timed out")
	ErrEmptyResponse     = fmt.Errorf("empty server response")
	ErrCatalogFormat     = fmt.Errorf("unreadable catalog document")
	ErrCancelled         = fmt.Errorf("synchronization cancelled")
	ErrInsufficientSpace = fmt.Errorf("insufficient disk space")

	// Archive errors
	ErrNoDescriptor = fmt.Errorf("archive has no modDesc.xml")

	// Profile errors
	ErrProfileNotFound = fmt.Errorf("profile not found")
	ErrSyncInProgress  = fmt.Errorf("synchronization already running for profile")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)

// HTTPStatusError is returned when a server answers with a status code >= 400.
type HTTPStatusError struct {
	Code   int
	Status string
	URL    string
}

func (e *HTTPStatusError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("HTTP %s: %s", e.Status, e.URL)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.URL)
}

// StatusCode extracts the code of a wrapped [HTTPStatusError], or 0.
func StatusCode(err error) int {
	var se *HTTPStatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

// IsTransient reports whether err is worth another download attempt.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, ErrCancelled) || errors.Is(err, ErrInvalidURL) ||
		errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrInsufficientSpace) {
		return false
	}
	return true
}
