package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"socialnet/internal/entities"
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
}

// Unwrap maps the status to the matching sentinel so callers can use errors.Is.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusRequestEntityTooLarge:
		return entities.ErrInvalidArgument
	case http.StatusUnauthorized:
		return entities.ErrUnauthorized
	case http.StatusForbidden:
		return entities.ErrForbidden
	case http.StatusNotFound:
		return entities.ErrNotFound
	case http.StatusConflict:
		return entities.ErrConflict
	}
	return nil
}

// Temporary reports whether retrying the same request may succeed.
func (e *APIError) Temporary() bool {
	return e.Status >= 500 || e.Status == http.StatusTooManyRequests || e.Status == http.StatusRequestTimeout
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Retryable reports whether err is worth another attempt: transport failures
// and temporary API errors are, client errors and cancellations are not.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	return true
}
