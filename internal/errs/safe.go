// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package errs

import (
	"context"
	"log/slog"
)

// Safe runs fn and returns its result, or logs the error and returns
// fallback. Callers of Safe never see an error.
func Safe[T any](ctx context.Context, logger *slog.Logger, op string, fallback T, fn func(ctx context.Context) (T, error)) T {
	result, err := fn(ctx)
	if err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("content fetch failed, serving fallback",
			"op", op,
			"kind", KindOf(err),
			"error", err)
		return fallback
	}
	return result
}
