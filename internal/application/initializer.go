// Package application contains use-case orchestration services.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ericfisherdev/clickcounter/internal/domain/port/driven"
)

// ErrInitExhausted is returned by StoreInitializer.Run when every attempt failed.
var ErrInitExhausted = errors.New("database initialization gave up")

// RetryPolicy bounds the startup attempts: at most MaxAttempts tries with a
// fixed Delay between failures.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultRetryPolicy returns 5 attempts spaced 5 seconds apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 5, Delay: 5 * time.Second}
}

// OpenFunc connects to the store and ensures its schema. It must release
// anything it opened before returning an error.
type OpenFunc func(ctx context.Context) (driven.ClickStore, error)

// StoreInitializer drives the uninitialized -> ready transition in the
// background while the HTTP listener is already serving.
type StoreInitializer struct {
	provider *StoreProvider
	open     OpenFunc
	policy   RetryPolicy
	logger   *slog.Logger
}

// NewStoreInitializer creates a StoreInitializer. A policy with fewer than one
// attempt is raised to a single attempt.
func NewStoreInitializer(provider *StoreProvider, open OpenFunc, policy RetryPolicy, logger *slog.Logger) *StoreInitializer {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &StoreInitializer{
		provider: provider,
		open:     open,
		policy:   policy,
		logger:   logger,
	}
}

// Run tries to open the store until it succeeds, the attempts run out or ctx
// is canceled. On success the store is published to the provider. When the
// attempts run out the provider stays empty and an error wrapping
// ErrInitExhausted and the last failure is returned; the caller is expected
// to keep serving in the degraded state.
func (i *StoreInitializer) Run(ctx context.Context) error {
	var lastErr error

	for attempt := 1; attempt <= i.policy.MaxAttempts; attempt++ {
		store, err := i.open(ctx)
		if err == nil {
			i.provider.Set(store)
			i.logger.Info("database initialized", "attempt", attempt)
			return nil
		}
		lastErr = err

		i.logger.Error("database init failed",
			"attempt", attempt,
			"max_attempts", i.policy.MaxAttempts,
			"error", err,
		)

		if attempt == i.policy.MaxAttempts {
			break
		}

		timer := time.NewTimer(i.policy.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	i.logger.Error("giving up on database init after max retries", "max_attempts", i.policy.MaxAttempts)
	return fmt.Errorf("%w after %d attempts: %w", ErrInitExhausted, i.policy.MaxAttempts, lastErr)
}
