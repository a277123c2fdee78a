// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"fmt"
	"time"
)

// Options configures Cached.
type Options[A any] struct {
	// KeyGenerator derives the key suffix from the call argument.
	// Defaults to fmt.Sprint(arg).
	KeyGenerator func(arg A) string

	// Policy namespaces the key and supplies the default TTL.
	Policy Policy

	// TTL overrides the policy TTL when non-zero.
	TTL time.Duration

	// SkipCache bypasses the cache entirely.
	SkipCache bool
}

// Cached wraps fn so fresh results are served from the store. Only
// successful results are stored; errors propagate uncached.
//
// Concurrent calls for the same uncached key are not coalesced: each one
// misses and invokes fn.
func Cached[A, T any](store *Store, fn func(ctx context.Context, arg A) (T, error), opts Options[A]) func(ctx context.Context, arg A) (T, error) {
	keyGen := opts.KeyGenerator
	if keyGen == nil {
		keyGen = func(arg A) string { return fmt.Sprint(arg) }
	}

	ttl := opts.TTL
	if ttl == 0 {
		ttl = opts.Policy.TTL
	}

	return func(ctx context.Context, arg A) (T, error) {
		if opts.SkipCache || store == nil {
			return fn(ctx, arg)
		}

		key := keyGen(arg)
		if opts.Policy.Name != "" {
			key = opts.Policy.Key(key)
		}

		if value, ok := Get[T](ctx, store, key); ok {
			return value, nil
		}

		value, err := fn(ctx, arg)
		if err != nil {
			return value, err
		}

		if err := Set(ctx, store, key, value, ttl); err != nil {
			store.logger.Warn("failed to cache result", "key", key, "error", err)
		}
		return value, nil
	}
}
