package agents

import (
	"errors"
	"fmt"
)

var (
	// ErrBaseURLRequired indicates a client was constructed without a service URL.
	ErrBaseURLRequired = errors.New("base URL is required")

	// ErrServiceReportedError indicates a 2xx response whose body reports failure.
	ErrServiceReportedError = errors.New("service reported an error")

	// ErrMalformedResponse indicates a response body that could not be decoded.
	ErrMalformedResponse = errors.New("malformed response")
)

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned HTTP %d", e.Service, e.StatusCode)
	}
	return fmt.Sprintf("%s returned HTTP %d: %s", e.Service, e.StatusCode, e.Body)
}
