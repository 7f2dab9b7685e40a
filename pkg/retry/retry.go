package retry

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
)

// Config holds retry configuration
type Config struct {
	MaxAttempts  uint
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	// Fixed waits InitialDelay between every attempt instead of backing off.
	Fixed bool
	// RetryIf limits retries to errors it accepts. Nil retries every error.
	RetryIf func(error) bool
	// OnRetry is called before each retry with the attempt number.
	OnRetry func(attempt uint, err error)
}

// DefaultConfig returns default retry configuration
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  5,
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

// FixedConfig retries up to times more attempts after the first, sleeping
// sleep between them.
func FixedConfig(times int, sleep time.Duration) Config {
	if times < 0 {
		times = 0
	}
	return Config{
		MaxAttempts:  uint(times) + 1,
		InitialDelay: sleep,
		MaxDelay:     sleep,
		Multiplier:   1,
		Fixed:        true,
	}
}

// Do executes a function with retry, backing off exponentially unless the
// config is fixed.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	delayType := retry.BackOffDelay
	if cfg.Fixed {
		delayType = retry.FixedDelay
	}
	attempts := cfg.MaxAttempts
	if attempts == 0 {
		attempts = 1
	}

	opts := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(cfg.InitialDelay),
		retry.DelayType(delayType),
		retry.LastErrorOnly(true),
	}
	if cfg.MaxDelay > 0 {
		opts = append(opts, retry.MaxDelay(cfg.MaxDelay))
	}
	if cfg.RetryIf != nil {
		opts = append(opts, retry.RetryIf(cfg.RetryIf))
	}
	if cfg.OnRetry != nil {
		opts = append(opts, retry.OnRetry(cfg.OnRetry))
	}

	return retry.Do(fn, opts...)
}

// DoWithResult executes a function with retry and returns the result of the
// last attempt, even when it failed.
func DoWithResult[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	var result T
	err := Do(ctx, cfg, func() error {
		var err error
		result, err = fn()
		return err
	})
	return result, err
}
