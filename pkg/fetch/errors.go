package fetch

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrFetchExhausted matches every *ExhaustedError.
	ErrFetchExhausted = errors.New("fetch exhausted")
	// ErrCancelled matches every *CancelledError.
	ErrCancelled = errors.New("fetch cancelled")
)

// ExhaustedError reports that every permitted attempt failed.
type ExhaustedError struct {
	URL      string
	Attempts int
	// Err is the failure of the last attempt; nil when no attempt was made.
	Err error
}

func (e *ExhaustedError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("failed to fetch %s: no attempts allowed", e.URL)
	}
	return fmt.Sprintf("failed to fetch %s after %d attempt(s): %v", e.URL, e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// Is reports whether target is ErrFetchExhausted.
func (e *ExhaustedError) Is(target error) bool { return target == ErrFetchExhausted }

// CancelledError reports that the caller's context ended the fetch.
type CancelledError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("fetch %s cancelled after %d attempt(s): %v", e.URL, e.Attempts, e.Err)
}

// Unwrap exposes the context error (context.Canceled or context.DeadlineExceeded).
func (e *CancelledError) Unwrap() error { return e.Err }

// Is reports whether target is ErrCancelled.
func (e *CancelledError) Is(target error) bool { return target == ErrCancelled }

// DecodeError reports a 2xx response whose body is not valid JSON for the
// requested destination.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode response from %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// StatusError is the per-attempt failure for a non-2xx response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.Code, http.StatusText(e.Code))
}
