package blob

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/compozy/defaultdesk/engine/attachment"
	"github.com/compozy/defaultdesk/pkg/logger"
	"github.com/sethvargo/go-retry"
	"github.com/slok/goresilience"
	"github.com/slok/goresilience/circuitbreaker"
	rerrors "github.com/slok/goresilience/errors"
	"github.com/slok/goresilience/timeout"
)

// ResilienceConfig tunes the guard around a blob store.
type ResilienceConfig struct {
	CallTimeout                 time.Duration
	ErrorPercentThresholdToOpen int
	MinimumRequestToOpen        int
	WaitDurationInOpenState     time.Duration
	RetryAttempts               uint64
	RetryWaitBase               time.Duration
}

func DefaultResilienceConfig() *ResilienceConfig {
	return &ResilienceConfig{
		CallTimeout:                 10 * time.Second,
		ErrorPercentThresholdToOpen: 50,
		MinimumRequestToOpen:        10,
		WaitDurationInOpenState:     15 * time.Second,
		RetryAttempts:               3,
		RetryWaitBase:               100 * time.Millisecond,
	}
}

// ResilientStore bounds every call with a timeout and a circuit breaker.
// Put is retried with exponential backoff; keys are unique per upload so a
// repeated Put overwrites only its own object.
type ResilientStore struct {
	next   attachment.BlobStore
	runner goresilience.Runner
	config *ResilienceConfig
}

func NewResilientStore(next attachment.BlobStore, config *ResilienceConfig) *ResilientStore {
	if config == nil {
		config = DefaultResilienceConfig()
	}
	cb := circuitbreaker.NewMiddleware(circuitbreaker.Config{
		ErrorPercentThresholdToOpen:        config.ErrorPercentThresholdToOpen,
		MinimumRequestToOpen:               config.MinimumRequestToOpen,
		SuccessfulRequiredOnHalfOpen:       1,
		WaitDurationInOpenState:            config.WaitDurationInOpenState,
		MetricsSlidingWindowBucketQuantity: 10,
		MetricsBucketDuration:              time.Second,
	})
	to := timeout.NewMiddleware(timeout.Config{Timeout: config.CallTimeout})
	return &ResilientStore{
		next:   next,
		runner: goresilience.RunnerChain(to, cb),
		config: config,
	}
}

func (s *ResilientStore) Put(ctx context.Context, key string, data []byte, contentType string) (attachment.BlobRef, error) {
	var ref attachment.BlobRef
	backoff := retry.WithMaxRetries(s.config.RetryAttempts, retry.NewExponential(s.config.RetryWaitBase))
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := s.runner.Run(ctx, func(ctx context.Context) error {
			var err error
			ref, err = s.next.Put(ctx, key, data, contentType)
			return err
		})
		if err == nil {
			return nil
		}
		if errors.Is(err, rerrors.ErrCircuitOpen) || ctx.Err() != nil {
			return err
		}
		logger.FromContext(ctx).Warn("Blob upload failed, retrying", "key", key, "attempt", attempt, "error", err)
		return retry.RetryableError(err)
	})
	if err != nil {
		return attachment.BlobRef{}, fmt.Errorf("storing blob %q: %w", key, err)
	}
	return ref, nil
}

func (s *ResilientStore) URL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	var url string
	err := s.runner.Run(ctx, func(ctx context.Context) error {
		var err error
		url, err = s.next.URL(ctx, key, expiry)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("resolving blob url %q: %w", key, err)
	}
	return url, nil
}
