// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"regexp"
	"time"

	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/errs"
)

// Store is the typed layer over a cache backend. Values are stored as JSON
// so the same Store works against memory and Redis.
type Store struct {
	backend Cache
	logger  *slog.Logger
}

// NewStore creates a Store over backend.
func NewStore(backend Cache, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		backend: backend,
		logger:  logger.With("component", "cache"),
	}
}

// NewMemoryStore creates a Store over a fresh memory backend.
func NewMemoryStore(logger *slog.Logger) *Store {
	return NewStore(NewMemoryCache(MemoryCacheOptions{}), logger)
}

// Backend returns the underlying cache.
func (s *Store) Backend() Cache {
	return s.backend
}

// Get reads and decodes the value at key. A miss, an expired entry, a
// backend failure and an undecodable value all report false.
func Get[T any](ctx context.Context, s *Store, key string) (T, bool) {
	var value T

	data, err := s.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			s.logger.Warn("cache read failed", "key", key, "error", errs.CacheError("get "+key, err))
		}
		return value, false
	}

	if err := json.Unmarshal(data, &value); err != nil {
		s.logger.Warn("cache entry undecodable, dropping", "key", key, "error", err)
		_ = s.backend.Delete(ctx, key)
		return value, false
	}

	return value, true
}

// Set encodes value and stores it under key for ttl.
func Set[T any](ctx context.Context, s *Store, key string, value T, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errs.CacheError("encode "+key, err)
	}
	if err := s.backend.Set(ctx, key, data, ttl); err != nil {
		return errs.CacheError("set "+key, err)
	}
	return nil
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.backend.Delete(ctx, key); err != nil {
		return errs.CacheError("delete "+key, err)
	}
	return nil
}

// Clear removes every entry.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.backend.Clear(ctx); err != nil {
		return errs.CacheError("clear", err)
	}
	s.logger.Info("cache cleared")
	return nil
}

// InvalidateByPattern removes exactly the keys matching pattern and returns
// how many were removed.
func (s *Store) InvalidateByPattern(ctx context.Context, pattern *regexp.Regexp) (int, error) {
	keys, err := s.backend.Keys(ctx)
	if err != nil {
		return 0, errs.CacheError("list keys", err)
	}

	removed := 0
	for _, key := range keys {
		if !pattern.MatchString(key) {
			continue
		}
		if err := s.backend.Delete(ctx, key); err != nil {
			return removed, errs.CacheError("delete "+key, err)
		}
		removed++
	}

	s.logger.Debug("cache invalidated by pattern", "pattern", pattern.String(), "removed", removed)
	return removed, nil
}

// RevalidateTag removes every entry of the policies carrying tag and
// returns the names of those policies.
func (s *Store) RevalidateTag(ctx context.Context, tag string) ([]string, error) {
	var cleared []string
	for _, p := range PoliciesForTag(tag) {
		if err := s.backend.DeleteByPrefix(ctx, p.Prefix()); err != nil {
			return cleared, errs.CacheError("revalidate "+tag, err)
		}
		cleared = append(cleared, p.Name)
	}

	s.logger.Info("cache tag revalidated", "tag", tag, "policies", cleared)
	return cleared, nil
}

// Stats returns backend statistics when the backend tracks them.
func (s *Store) Stats() Stats {
	if sp, ok := s.backend.(StatsProvider); ok {
		return sp.Stats()
	}
	return Stats{}
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}
