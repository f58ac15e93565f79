package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Failure
	}{
		{"rate limit", &ErrRateLimit{Err: errors.New("429")}, FailureRateLimited},
		{"wrapped rate limit", fmt.Errorf("analyze: %w", &ErrRateLimit{}), FailureRateLimited},
		{"invalid", &ErrInvalidResponse{Err: errors.New("bad")}, FailureInvalid},
		{"unavailable", &ErrProviderUnavailable{}, FailureUnavailable},
		{"network", errors.New("connection reset"), FailureUnavailable},
		{"max tokens", &ErrMaxTokensExceeded{}, FailurePermanent},
		{"cancelled", context.Canceled, FailureCancelled},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), FailureCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRetryAfter(t *testing.T) {
	if d := RetryAfter(&ErrRateLimit{RetryAfter: 3 * time.Second}); d != 3*time.Second {
		t.Errorf("RetryAfter = %s, want 3s", d)
	}
	if d := RetryAfter(errors.New("other")); d != 0 {
		t.Errorf("RetryAfter = %s, want 0", d)
	}
}

func TestStatusError(t *testing.T) {
	cause := errors.New("boom")

	var rl *ErrRateLimit
	if err := statusError(429, "7", cause); !errors.As(err, &rl) || rl.RetryAfter != 7*time.Second {
		t.Errorf("429 = %v", err)
	}
	if err := statusError(429, "Wed, 21 Oct 2026 07:28:00 GMT", cause); RetryAfter(err) != 0 {
		t.Errorf("date form should be ignored, got %s", RetryAfter(err))
	}

	var down *ErrProviderUnavailable
	for _, code := range []int{401, 500, 503, 0} {
		if err := statusError(code, "", cause); !errors.As(err, &down) || !errors.Is(err, cause) {
			t.Errorf("%d = %v", code, err)
		}
	}
}
