package client

import (
	"context"
	"time"

	"github.com/St1cky1/kanban-service/internal/logger"
	"github.com/sethvargo/go-retry"
)

// connectWithRetry calls connect until it succeeds or ctx is done, waiting a
// fixed delay between attempts.
func connectWithRetry(ctx context.Context, name string, delay time.Duration, connect func(context.Context) error) error {
	attempt := 0
	return retry.Do(ctx, retry.NewConstant(delay), func(ctx context.Context) error {
		attempt++
		if err := connect(ctx); err != nil {
			logger.Warn("connection failed, retrying", "target", name, "attempt", attempt, "delay", delay, "error", err)
			return retry.RetryableError(err)
		}
		if attempt > 1 {
			logger.Info("connected after retry", "target", name, "attempts", attempt)
		}
		return nil
	})
}
