// Package llm provides the completion client used by the analysis stage and
// its error classification.
package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// Error categories for completion calls.
var (
	// ErrEmptyCompletion indicates the service answered without usable
	// content (no choices, or an empty message).
	ErrEmptyCompletion = errors.New("empty completion")

	// ErrInvalidAPIKey indicates the API key is invalid or expired.
	ErrInvalidAPIKey = errors.New("invalid API key")

	// ErrRateLimited indicates the provider rejected the call for rate
	// limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrServiceUnavailable indicates a transient provider outage.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrNotConfigured indicates no API key was supplied; callers should go
	// straight to the heuristic fallback.
	ErrNotConfigured = errors.New("llm client not configured")
)

// ServiceError wraps a provider failure with classification metadata.
type ServiceError struct {
	Err        error
	StatusCode int
	Model      string
	Retryable  bool
}

func (e *ServiceError) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("llm call failed (model %s): %v", e.Model, e.Err)
	}
	return fmt.Sprintf("llm call failed: %v", e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Classify maps a raw provider error and status code onto the taxonomy
// above. Analysis never retries these; the fallback path absorbs them. The
// Retryable flag exists for future callers with different policies.
func Classify(err error, model string, statusCode int) *ServiceError {
	if err == nil {
		return nil
	}

	se := &ServiceError{Err: err, StatusCode: statusCode, Model: model}
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		se.Err = fmt.Errorf("%w: %v", ErrInvalidAPIKey, err)
	case http.StatusTooManyRequests:
		se.Err = fmt.Errorf("%w: %v", ErrRateLimited, err)
		se.Retryable = true
	case http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		se.Err = fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
		se.Retryable = true
	}
	return se
}
