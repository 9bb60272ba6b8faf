package llm

import (
	"context"
	"errors"
	"testing"
)

func TestClassify(t *testing.T) {
	cause := errors.New("provider says no")

	tests := []struct {
		name      string
		status    int
		sentinel  error
		retryable bool
	}{
		{"unauthorized", 401, ErrInvalidAPIKey, false},
		{"forbidden", 403, ErrInvalidAPIKey, false},
		{"rate limited", 429, ErrRateLimited, true},
		{"internal error", 500, ErrServiceUnavailable, true},
		{"bad gateway", 502, ErrServiceUnavailable, true},
		{"unavailable", 503, ErrServiceUnavailable, true},
		{"gateway timeout", 504, ErrServiceUnavailable, true},
		{"unclassified", 418, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			se := Classify(cause, "gpt-4o-mini", tt.status)
			if se == nil {
				t.Fatal("Classify returned nil for non-nil error")
			}
			if se.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", se.StatusCode, tt.status)
			}
			if se.Retryable != tt.retryable {
				t.Errorf("retryable = %v, want %v", se.Retryable, tt.retryable)
			}
			if tt.sentinel != nil && !errors.Is(se, tt.sentinel) {
				t.Errorf("error %v should wrap %v", se, tt.sentinel)
			}
		})
	}

	if Classify(nil, "gpt-4o-mini", 500) != nil {
		t.Error("nil error must classify to nil")
	}
}

func TestServiceErrorMessage(t *testing.T) {
	se := &ServiceError{Err: ErrRateLimited, Model: "gpt-4o-mini"}
	if got := se.Error(); got != "llm call failed (model gpt-4o-mini): rate limited" {
		t.Errorf("Error() = %q", got)
	}
	bare := &ServiceError{Err: ErrEmptyCompletion}
	if got := bare.Error(); got != "llm call failed: empty completion" {
		t.Errorf("Error() = %q", got)
	}
}

func TestCompleteNotConfigured(t *testing.T) {
	c := NewOpenAI(Config{})
	_, err := c.Complete(context.Background(), CompletionRequest{System: "s", User: "u"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}
