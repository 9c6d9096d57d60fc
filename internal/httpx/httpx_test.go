package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

type statusErr struct {
	code int
}

func (e statusErr) Error() string       { return fmt.Sprintf("status %d", e.code) }
func (e statusErr) HTTPStatusCode() int { return e.code }

func TestIsRetryableHTTPStatus(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{http.StatusOK, false},
		{http.StatusBadRequest, false},
		{http.StatusUnauthorized, false},
		{http.StatusRequestTimeout, true},
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusBadGateway, true},
		{http.StatusServiceUnavailable, true},
	}
	for _, tt := range tests {
		if got := IsRetryableHTTPStatus(tt.code); got != tt.want {
			t.Errorf("IsRetryableHTTPStatus(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestIsRetryableError(t *testing.T) {
	if IsRetryableError(nil) {
		t.Error("nil should not be retryable")
	}
	if !IsRetryableError(context.DeadlineExceeded) {
		t.Error("deadline exceeded should be retryable")
	}
	if !IsRetryableError(statusErr{code: 503}) {
		t.Error("503 should be retryable")
	}
	if IsRetryableError(statusErr{code: 401}) {
		t.Error("401 should not be retryable")
	}
	if IsRetryableError(errors.New("connection refused")) {
		t.Error("plain error should not be retryable")
	}
}

func TestIsTimeoutError(t *testing.T) {
	if !IsTimeoutError(context.DeadlineExceeded) {
		t.Error("deadline exceeded is a timeout")
	}
	if !IsTimeoutError(fmt.Errorf("request timeout while waiting")) {
		t.Error("message containing timeout is classified as one")
	}
	if IsTimeoutError(statusErr{code: 500}) {
		t.Error("500 is not a timeout")
	}
	if IsTimeoutError(nil) {
		t.Error("nil is not a timeout")
	}
}

func TestRetryAfterDuration(t *testing.T) {
	resp := &http.Response{Header: http.Header{"Retry-After": []string{"3"}}}
	if got := RetryAfterDuration(resp, time.Second, 10*time.Second); got != 3*time.Second {
		t.Errorf("RetryAfterDuration = %v, want 3s", got)
	}
	// Header wins but is capped.
	if got := RetryAfterDuration(resp, time.Second, 2*time.Second); got != 2*time.Second {
		t.Errorf("capped RetryAfterDuration = %v, want 2s", got)
	}
	if got := RetryAfterDuration(nil, time.Second, 10*time.Second); got != time.Second {
		t.Errorf("fallback RetryAfterDuration = %v, want 1s", got)
	}
}
