package upstream

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// backoff controls how failed fetches are retried.
type backoff struct {
	maxAttempts int
	initial     time.Duration
	max         time.Duration
	multiplier  float64
	jitter      float64
}

func defaultBackoff() backoff {
	return backoff{
		maxAttempts: 3,
		initial:     500 * time.Millisecond,
		max:         10 * time.Second,
		multiplier:  2.0,
		jitter:      0.25,
	}
}

// delay returns the wait before retry number attempt+1, with +/- jitter.
func (b backoff) delay(attempt int) time.Duration {
	d := float64(b.initial) * math.Pow(b.multiplier, float64(attempt))
	if d > float64(b.max) {
		d = float64(b.max)
	}
	if b.jitter > 0 {
		d += (rand.Float64()*2 - 1) * d * b.jitter
	}
	if d < 0 {
		d = 0
	}
	return time.Duration(d)
}

// do calls fn until it succeeds, returns a non-transient error, the context
// ends or attempts run out.
func do[T any](ctx context.Context, b backoff, address string, fn func(context.Context) (T, error)) (T, error) {
	attempts := max(b.maxAttempts, 1)

	var zero T
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if ctx.Err() != nil || !IsTransient(err) || attempt == attempts-1 {
			break
		}

		zap.L().Warn("upstream: retrying fetch",
			zap.String("address", address),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)

		timer := time.NewTimer(b.delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}
	}
	return zero, lastErr
}
