package llm

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// FailureCode is a stable identifier for an upstream provider failure,
// surfaced unchanged through the API error envelope.
type FailureCode string

const (
	FailureRateLimited FailureCode = "RATE_LIMITED"
	FailureTimeout     FailureCode = "TIMEOUT"
	FailureUpstream    FailureCode = "UPSTREAM_ERROR"
	FailureUnknown     FailureCode = "UNKNOWN"
)

// UpstreamError is the terminal failure of a retried provider call: either a
// non-retryable error or retry exhaustion. Attempts records how many calls
// were made.
type UpstreamError struct {
	Code     FailureCode
	Message  string
	Attempts int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream failure %s after %d attempt(s): %s", e.Code, e.Attempts, e.Message)
}

// APIError is a structured non-2xx response from the provider.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("provider error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("provider error %d: %s", e.StatusCode, e.Message)
}

type RetryConfig struct {
	MaxAttempts       int
	PerAttemptTimeout time.Duration
}

const (
	defaultMaxAttempts       = 3
	defaultPerAttemptTimeout = 20 * time.Second
	initialBackoff           = 500 * time.Millisecond
	maxBackoff               = 4 * time.Second
)

// WithRetry runs fn under a per-attempt timeout, retrying transient failure
// classes with exponential backoff and jitter. Terminal failures come back as
// *UpstreamError carrying a stable code and the attempt count.
func WithRetry(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) (string, error)) (string, error) {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	perAttempt := cfg.PerAttemptTimeout
	if perAttempt <= 0 {
		perAttempt = defaultPerAttemptTimeout
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, perAttempt)
		result, err := fn(attemptCtx)
		cancel()
		if err == nil {
			return result, nil
		}
		lastErr = err

		code, retryable := Classify(err)
		if !retryable || attempt == maxAttempts {
			return "", &UpstreamError{Code: code, Message: err.Error(), Attempts: attempt}
		}

		select {
		case <-time.After(backoff(attempt)):
		case <-ctx.Done():
			code, _ := Classify(ctx.Err())
			return "", &UpstreamError{Code: code, Message: ctx.Err().Error(), Attempts: attempt}
		}
	}

	// Unreachable: the loop always returns on the last attempt.
	code, _ := Classify(lastErr)
	return "", &UpstreamError{Code: code, Message: lastErr.Error(), Attempts: maxAttempts}
}

// backoff computes min(0.5s * 2^(n-1), 4s) scaled by jitter in [0.8, 1.2).
func backoff(attempt int) time.Duration {
	d := initialBackoff
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= maxBackoff {
			d = maxBackoff
			break
		}
	}
	scale := 0.8 + 0.4*rand.Float64()
	return time.Duration(float64(d) * scale)
}

// Classify maps an error to its stable failure code and whether the call may
// be retried. Rate limits, timeouts and 5xx/connection failures are
// transient; everything else is terminal.
func Classify(err error) (FailureCode, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		lowerCode := strings.ToLower(apiErr.Code)
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests,
			strings.Contains(lowerCode, "rate"):
			return FailureRateLimited, true
		case apiErr.StatusCode == http.StatusRequestTimeout,
			apiErr.StatusCode == http.StatusGatewayTimeout,
			strings.Contains(lowerCode, "timeout"):
			return FailureTimeout, true
		case apiErr.StatusCode >= 500:
			return FailureUpstream, true
		default:
			return FailureUnknown, false
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout, true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout, true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return FailureUpstream, true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return FailureUpstream, true
	}

	return FailureUnknown, false
}
