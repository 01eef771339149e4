// Package retry provides exponential backoff retry for transient failures.
//
// Only errors the configured Retryable predicate accepts are retried. The
// default predicate is errors.IsTransient, so invalid and fatal errors
// return after the first attempt.
//
// # Presets
//
//   - DefaultConfig(): 3 attempts, 100ms-5s delay
//   - Quick(): 10 attempts, 50ms-1s delay (initial connect)
//
// # Usage
//
//	cfg := retry.Quick()
//	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
//	    logger.Warn("connect failed", "attempt", attempt, "retry_in", delay, "error", err)
//	}
//	err := retry.Do(ctx, cfg, func() error {
//	    return client.Connect(ctx)
//	})
//
// With a result:
//
//	conn, err := retry.DoWithResult(ctx, retry.DefaultConfig(), dial)
package retry
