// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging builds the application logger. Besides writing to its
// output, the logger keeps the most recent WARN and ERROR records in memory
// so the health endpoint can report them.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// DefaultCapacity is the number of records kept by a RecentHandler.
const DefaultCapacity = 50

// Entry is a captured log record.
type Entry struct {
	Time      time.Time         `json:"time"`
	Level     string            `json:"level"`
	Component string            `json:"component,omitempty"`
	Message   string            `json:"message"`
	Attrs     map[string]string `json:"attrs,omitempty"`
}

// ParseLevel converts a level name to a slog.Level. Unknown names map to INFO.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a logger writing text or JSON to w at the given level. The
// returned RecentHandler holds the recent WARN+ records.
func New(level, format string, w io.Writer) (*slog.Logger, *RecentHandler) {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var inner slog.Handler
	if strings.EqualFold(format, "json") {
		inner = slog.NewJSONHandler(w, opts)
	} else {
		inner = slog.NewTextHandler(w, opts)
	}

	recent := NewRecentHandler(inner, DefaultCapacity)
	return slog.New(recent), recent
}

// ring is the buffer shared by a RecentHandler and its derived handlers.
type ring struct {
	mu      sync.Mutex
	entries []Entry
	next    int
	full    bool
}

func (r *ring) add(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[r.next] = e
	r.next = (r.next + 1) % len(r.entries)
	if r.next == 0 {
		r.full = true
	}
}

// snapshot returns the entries newest first.
func (r *ring) snapshot() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.next
	if r.full {
		n = len(r.entries)
	}
	out := make([]Entry, 0, n)
	for i := 1; i <= n; i++ {
		idx := (r.next - i + len(r.entries)) % len(r.entries)
		out = append(out, r.entries[idx])
	}
	return out
}

// RecentHandler is a slog.Handler that wraps another handler and also keeps
// WARN and ERROR level records in a fixed-size ring buffer.
type RecentHandler struct {
	inner slog.Handler
	buf   *ring
	attrs []slog.Attr
	group string
	level slog.Level // Minimum level to capture (default: WARN)
}

// NewRecentHandler creates a RecentHandler keeping up to capacity records.
func NewRecentHandler(inner slog.Handler, capacity int) *RecentHandler {
	return NewRecentHandlerWithLevel(inner, capacity, slog.LevelWarn)
}

// NewRecentHandlerWithLevel creates a RecentHandler with a custom minimum level.
func NewRecentHandlerWithLevel(inner slog.Handler, capacity int, level slog.Level) *RecentHandler {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &RecentHandler{
		inner: inner,
		buf:   &ring{entries: make([]Entry, capacity)},
		level: level,
	}
}

// Enabled implements slog.Handler.
func (h *RecentHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *RecentHandler) Handle(ctx context.Context, r slog.Record) error {
	// Always forward to the inner handler first
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}

	if r.Level >= h.level {
		h.buf.add(h.entryFor(r))
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *RecentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.inner = h.inner.WithAttrs(attrs)
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), h.qualify(attrs)...)
	return &clone
}

// WithGroup implements slog.Handler.
func (h *RecentHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.inner = h.inner.WithGroup(name)
	if h.group != "" {
		clone.group = h.group + "." + name
	} else {
		clone.group = name
	}
	return &clone
}

// Recent returns the captured records, newest first.
func (h *RecentHandler) Recent() []Entry {
	return h.buf.snapshot()
}

// qualify prefixes attribute keys with the open group.
func (h *RecentHandler) qualify(attrs []slog.Attr) []slog.Attr {
	if h.group == "" {
		return attrs
	}
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: h.group + "." + a.Key, Value: a.Value}
	}
	return out
}

// entryFor converts a record. The component attribute, usually attached
// with logger.With, is lifted out of the attribute map.
func (h *RecentHandler) entryFor(r slog.Record) Entry {
	e := Entry{
		Time:    r.Time,
		Level:   r.Level.String(),
		Message: r.Message,
	}

	collect := func(a slog.Attr) {
		if a.Key == "component" {
			e.Component = a.Value.String()
			return
		}
		if e.Attrs == nil {
			e.Attrs = make(map[string]string)
		}
		e.Attrs[a.Key] = a.Value.String()
	}

	for _, a := range h.attrs {
		collect(a)
	}
	var own []slog.Attr
	r.Attrs(func(a slog.Attr) bool {
		own = append(own, a)
		return true
	})
	for _, a := range h.qualify(own) {
		collect(a)
	}

	return e
}
