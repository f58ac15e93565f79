package llm

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// RetryProvider retries Generate with exponential backoff and jitter.
// Rate limits are always retried. Invalid responses (once) and unavailable
// providers are retried only when the config opts in.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
}

// WithRetry wraps a Provider with retry logic.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &RetryProvider{inner: p, config: cfg}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	var (
		err            error
		invalidRetried bool
	)
	for attempt := range max(r.config.MaxAttempts, 1) {
		if attempt > 0 {
			t := time.NewTimer(r.backoff(attempt-1, err))
			select {
			case <-ctx.Done():
				t.Stop()
				return nil, ctx.Err()
			case <-t.C:
			}
		}

		var resp *Response
		resp, err = r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}

		switch Classify(err) {
		case FailureRateLimited:
			continue
		case FailureInvalid:
			if r.config.RetryInvalid && !invalidRetried {
				invalidRetried = true
				continue
			}
		case FailureUnavailable:
			if r.config.RetryUnavailable {
				continue
			}
		}
		return nil, err
	}
	return nil, err
}

// Stream is passed through without retries: a partially delivered stream
// cannot be replayed.
func (r *RetryProvider) Stream(ctx context.Context, req Request) (<-chan StreamChunk, error) {
	return StreamText(ctx, r.inner, req)
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// backoff is the wait after the given failed attempt. A rate limit's
// RetryAfter wins over the computed delay.
func (r *RetryProvider) backoff(attempt int, err error) time.Duration {
	if d := RetryAfter(err); d > 0 {
		return d
	}

	wait := min(float64(r.config.InitialWait)*math.Pow(r.config.Multiplier, float64(attempt)), float64(r.config.MaxWait))
	wait += wait * 0.2 * (2*rand.Float64() - 1) // ±20% jitter
	return time.Duration(max(wait, 0))
}
