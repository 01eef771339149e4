package retry

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/ameersohail0/OpenDaVINCI/errors"
)

var (
	// Thread-safe random source for jitter
	randMu     sync.Mutex
	randSource = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// Config provides retry configuration
type Config struct {
	MaxAttempts  int           // Maximum number of attempts (0 = just run once)
	InitialDelay time.Duration // Initial delay between attempts
	MaxDelay     time.Duration // Maximum delay between attempts
	Multiplier   float64       // Backoff multiplier (typically 2.0)
	AddJitter    bool          // Add up to 25% to each delay

	// Retryable decides whether a failed attempt is tried again.
	// Nil means errors.IsTransient.
	Retryable func(error) bool

	// OnRetry is called before sleeping with the attempt that failed,
	// its error and the delay until the next attempt.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// DefaultConfig returns sensible defaults for retry operations
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
		AddJitter:    true,
	}
}

// Quick returns a config for fast retries, used for the initial connect
func Quick() Config {
	return Config{
		MaxAttempts:  10,
		InitialDelay: 50 * time.Millisecond,
		MaxDelay:     1 * time.Second,
		Multiplier:   1.5,
		AddJitter:    true,
	}
}

func (cfg Config) normalize() (Config, error) {
	invalid := func(msg string) (Config, error) {
		return cfg, errors.WrapInvalid(
			fmt.Errorf("%w: %s", errors.ErrInvalidConfig, msg), "retry", "Do", "validate config")
	}

	if cfg.InitialDelay < 0 {
		return invalid("InitialDelay cannot be negative")
	}
	if cfg.MaxDelay < 0 {
		return invalid("MaxDelay cannot be negative")
	}
	if cfg.Multiplier < 0 {
		return invalid("Multiplier cannot be negative")
	}
	if cfg.Multiplier > 1000 {
		cfg.Multiplier = 1000
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.InitialDelay == 0 {
		cfg.InitialDelay = 100 * time.Millisecond
	}
	if cfg.MaxDelay == 0 {
		cfg.MaxDelay = 5 * time.Second
	}
	if cfg.Multiplier == 0 {
		cfg.Multiplier = 2.0
	}
	if cfg.MaxDelay < cfg.InitialDelay {
		return invalid("MaxDelay must be >= InitialDelay")
	}
	if cfg.Retryable == nil {
		cfg.Retryable = errors.IsTransient
	}
	return cfg, nil
}

// Do calls fn until it succeeds, returns an error cfg.Retryable rejects,
// runs out of attempts or ctx is done. The error from the last attempt is
// wrapped in the returned error.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	cfg, err := cfg.normalize()
	if err != nil {
		return err
	}

	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !cfg.Retryable(err) {
			return err
		}
		if ctx.Err() != nil {
			return errors.WrapTransient(
				errors.Join(ctx.Err(), err), "retry", "Do",
				fmt.Sprintf("attempt %d", attempt))
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		sleep := delay
		if cfg.AddJitter && delay >= 4 {
			randMu.Lock()
			sleep += time.Duration(randSource.Int63n(int64(delay / 4)))
			randMu.Unlock()
		}
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, sleep)
		}

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.WrapTransient(
				errors.Join(ctx.Err(), err), "retry", "Do",
				fmt.Sprintf("backoff before attempt %d", attempt+1))
		case <-timer.C:
		}

		next := float64(delay) * cfg.Multiplier
		if next > float64(cfg.MaxDelay) {
			delay = cfg.MaxDelay
		} else {
			delay = time.Duration(next)
		}
	}

	return errors.Wrap(lastErr, "retry", "Do",
		fmt.Sprintf("%d attempts", cfg.MaxAttempts))
}

// DoWithResult executes fn with retry and returns both result and error
func DoWithResult[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	var result T
	err := Do(ctx, cfg, func() error {
		var innerErr error
		result, innerErr = fn()
		return innerErr
	})
	return result, err
}
