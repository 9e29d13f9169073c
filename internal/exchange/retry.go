package exchange

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// retry wraps a function with retry logic for transient errors, using
// exponential backoff capped at 5 minutes.
func retry(ctx context.Context, log *zap.SugaredLogger, attempts int, delay time.Duration, fn func() error) error {
	backoff := delay
	var err error
	for i := 1; i <= attempts; i++ {
		err = fn()
		if err == nil {
			return nil
		}
		if i == attempts {
			break
		}
		log.Warnw("retry attempt failed", "attempt", i, "of", attempts, "error", err, "backoff", backoff)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		if backoff < 5*time.Minute {
			backoff *= 2
			if backoff > 5*time.Minute {
				backoff = 5 * time.Minute
			}
		}
	}
	return err
}
