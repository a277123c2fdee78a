// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package errs

import (
	"context"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
)

// RetryPolicy decides per error kind whether an operation is retried.
// Only transient upstream conditions are retryable.
var RetryPolicy = map[Kind]bool{
	KindRateLimited:        true,
	KindServiceUnavailable: true,
	KindUnauthorized:       false,
	KindNotFound:           false,
	KindNotion:             false,
	KindCache:              false,
	KindValidation:         false,
}

// IsRetryable reports whether err should be retried under RetryPolicy.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return RetryPolicy[KindOf(err)]
}

// RetryConfig configures exponential backoff.
type RetryConfig struct {
	MaxRetries uint64
	BaseDelay  time.Duration
}

// DefaultRetryConfig returns 3 retries starting at 1s, doubling each time.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  time.Second,
	}
}

// WithRetry runs fn, retrying with exponential backoff while the returned
// error is retryable. The last error is returned when retries run out.
func WithRetry(ctx context.Context, cfg RetryConfig, logger *slog.Logger, op string, fn func(ctx context.Context) error) error {
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	backoff := retry.WithMaxRetries(cfg.MaxRetries, retry.NewExponential(cfg.BaseDelay))

	attempt := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if IsRetryable(err) {
			logger.Warn("retrying notion call",
				"op", op,
				"attempt", attempt,
				"kind", KindOf(err),
				"error", err)
			return retry.RetryableError(err)
		}
		return err
	})
}
