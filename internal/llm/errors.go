package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrNoProvider is returned by callers that have no provider configured.
var ErrNoProvider = errors.New("no model provider configured")

// ErrRateLimit is a 429 from the provider. RetryAfter is zero when the
// provider gave no hint.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse is content that does not match the requested schema.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid model response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable covers outages, auth failures and network errors.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err == nil {
		return "model provider unavailable"
	}
	return fmt.Sprintf("model provider unavailable: %v", e.Err)
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded is a response cut off at MaxTokens.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "model response truncated: max tokens exceeded"
}

// Failure classifies an error for retry decisions.
type Failure int

const (
	FailurePermanent   Failure = iota // Not worth repeating
	FailureCancelled                  // Context ended
	FailureRateLimited                // Provider asked us to slow down
	FailureInvalid                    // Output did not match the schema
	FailureUnavailable                // Outage or transport error
)

// Classify reports what kind of failure err is.
func Classify(err error) Failure {
	var (
		rl     *ErrRateLimit
		inv    *ErrInvalidResponse
		maxTok *ErrMaxTokensExceeded
		down   *ErrProviderUnavailable
	)
	switch {
	case err == nil:
		return FailurePermanent
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return FailureCancelled
	case errors.As(err, &maxTok):
		return FailurePermanent
	case errors.As(err, &rl):
		return FailureRateLimited
	case errors.As(err, &inv):
		return FailureInvalid
	case errors.As(err, &down):
		return FailureUnavailable
	}
	return FailureUnavailable
}

// RetryAfter returns the provider's requested wait for a rate limit, or 0.
func RetryAfter(err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) {
		return rl.RetryAfter
	}
	return 0
}

// statusError wraps an SDK error by its HTTP status. retryAfter is the
// raw Retry-After header, empty when the SDK does not expose it.
func statusError(status int, retryAfter string, err error) error {
	if status == http.StatusTooManyRequests {
		return &ErrRateLimit{RetryAfter: parseRetryAfter(retryAfter), Err: err}
	}
	return &ErrProviderUnavailable{Err: err}
}

// parseRetryAfter reads the delay-seconds form of Retry-After. HTTP dates
// are ignored.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
