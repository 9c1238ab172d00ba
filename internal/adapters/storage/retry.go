package storage

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// RetryConfig configures retry behavior for storage operations
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	JitterEnabled bool
}

// DefaultRetryConfig returns the retry policy used for backups
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      2 * time.Second,
		BackoffFactor: 2.0,
		JitterEnabled: true,
	}
}

// WithRetry runs op until it succeeds, fails with a non-retryable error or
// runs out of attempts
func WithRetry(ctx context.Context, config *RetryConfig, op func(ctx context.Context) error) error {
	if config == nil {
		config = DefaultRetryConfig()
	}

	var lastErr error
	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt >= config.MaxAttempts || !IsRetryable(lastErr) {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(config.delay(attempt)):
		}
	}
	return lastErr
}

func (c *RetryConfig) delay(attempt int) time.Duration {
	delay := float64(c.InitialDelay) * math.Pow(c.BackoffFactor, float64(attempt-1))
	if delay > float64(c.MaxDelay) {
		delay = float64(c.MaxDelay)
	}
	if c.JitterEnabled {
		delay += rand.Float64() * 0.1 * delay
	}
	return time.Duration(delay)
}

// RetryableFileStorage wraps a FileStorage with retry logic
type RetryableFileStorage struct {
	storage FileStorage
	config  *RetryConfig
}

// NewRetryableFileStorage creates a new RetryableFileStorage
func NewRetryableFileStorage(storage FileStorage, config *RetryConfig) *RetryableFileStorage {
	if config == nil {
		config = DefaultRetryConfig()
	}
	return &RetryableFileStorage{storage: storage, config: config}
}

func (r *RetryableFileStorage) Store(ctx context.Context, key string, data []byte) error {
	return WithRetry(ctx, r.config, func(ctx context.Context) error {
		return r.storage.Store(ctx, key, data)
	})
}

func (r *RetryableFileStorage) Retrieve(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := WithRetry(ctx, r.config, func(ctx context.Context) error {
		var err error
		data, err = r.storage.Retrieve(ctx, key)
		return err
	})
	return data, err
}

func (r *RetryableFileStorage) Delete(ctx context.Context, key string) error {
	return WithRetry(ctx, r.config, func(ctx context.Context) error {
		return r.storage.Delete(ctx, key)
	})
}

func (r *RetryableFileStorage) List(ctx context.Context, prefix string) ([]FileMetadata, error) {
	var files []FileMetadata
	err := WithRetry(ctx, r.config, func(ctx context.Context) error {
		var err error
		files, err = r.storage.List(ctx, prefix)
		return err
	})
	return files, err
}
