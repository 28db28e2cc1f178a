package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnexpectedResponse marks a 200 response whose body is not the expected
// shape. It is not retried.
var ErrUnexpectedResponse = errors.New("unexpected EONET response")

// ErrRateLimited is surfaced to consumers when a geometry backfill hits HTTP 429.
var ErrRateLimited = errors.New("Rate limited by EONET (429). Try again later.") //nolint:staticcheck // shown to users verbatim

// StatusError is a non-200 HTTP response from EONET.
type StatusError struct {
	StatusCode int
	// RetryAfter is the raw Retry-After header, empty when absent.
	RetryAfter string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("eonet API error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("eonet API error: status %d: %s", e.StatusCode, e.Body)
}

// IsRateLimited reports whether err carries an HTTP 429 status.
func IsRateLimited(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusTooManyRequests
}

// RetryAfter returns the Retry-After header carried by err, if any.
func RetryAfter(err error) (string, bool) {
	var se *StatusError
	if errors.As(err, &se) && se.RetryAfter != "" {
		return se.RetryAfter, true
	}
	return "", false
}
