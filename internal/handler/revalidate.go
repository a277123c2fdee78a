// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/cache"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/notion"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/scheduler"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/webhook"
)

// maxWebhookBody bounds the size of a webhook payload.
const maxWebhookBody = 1 << 20

// Queue coalesces revalidation requests.
type Queue interface {
	Queue(tags ...string)
	PendingCount() int
}

// WarmupInfo reports the state of the cache warmup job.
type WarmupInfo interface {
	Info() scheduler.JobInfo
}

// RevalidateHandler handles on-demand revalidation, Notion webhooks and
// cache statistics.
type RevalidateHandler struct {
	blog          Blog
	queue         Queue
	warmup        WarmupInfo
	webhookSecret string
	databases     notion.Databases
	logger        *slog.Logger
}

// RevalidateConfig holds the dependencies of a RevalidateHandler.
type RevalidateConfig struct {
	Queue         Queue
	Warmup        WarmupInfo
	WebhookSecret string
	Databases     notion.Databases
}

// NewRevalidateHandler creates a new revalidation handler.
func NewRevalidateHandler(blog Blog, cfg RevalidateConfig, logger *slog.Logger) *RevalidateHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RevalidateHandler{
		blog:          blog,
		queue:         cfg.Queue,
		warmup:        cfg.Warmup,
		webhookSecret: cfg.WebhookSecret,
		databases:     cfg.Databases,
		logger:        logger.With("component", "revalidation"),
	}
}

// revalidateRequest is the JSON body of POST /api/revalidate.
type revalidateRequest struct {
	Tags []string `json:"tags"`
}

// requestTags collects tags from the JSON body and the tag query parameter.
func requestTags(r *http.Request) ([]string, error) {
	var tags []string

	if r.Body != nil && r.ContentLength != 0 {
		var req revalidateRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, maxWebhookBody)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		tags = append(tags, req.Tags...)
	}
	tags = append(tags, r.URL.Query()["tag"]...)

	var out []string
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" && !slices.Contains(out, tag) {
			out = append(out, tag)
		}
	}
	return out, nil
}

// Revalidate handles POST /api/revalidate. The secret is checked by
// middleware. With async=true the tags go through the debouncer and the
// response is 202.
func (h *RevalidateHandler) Revalidate(w http.ResponseWriter, r *http.Request) {
	tags, err := requestTags(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if len(tags) == 0 {
		writeJSONError(w, http.StatusBadRequest, "No tags given")
		return
	}
	for _, tag := range tags {
		if tag != cache.TagAll && !cache.KnownTag(tag) {
			writeJSONError(w, http.StatusBadRequest, "Unknown tag: "+tag)
			return
		}
	}

	id := uuid.NewString()

	if r.URL.Query().Get("async") == "true" && h.queue != nil {
		h.queue.Queue(tags...)
		h.logger.Info("revalidation queued", "id", id, "tags", tags)
		writeJSONStatus(w, http.StatusAccepted, map[string]any{
			"id":     id,
			"tags":   tags,
			"queued": true,
		})
		return
	}

	cleared, err := h.blog.Revalidate(r.Context(), tags...)
	if err != nil {
		h.logger.Error("revalidation failed", "id", id, "tags", tags, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Revalidation failed")
		return
	}

	h.logger.Info("revalidated", "id", id, "tags", tags, "policies", cleared)
	writeJSONSuccess(w, map[string]any{
		"id":          id,
		"revalidated": true,
		"tags":        tags,
		"policies":    cleared,
		"timestamp":   time.Now().UTC(),
	})
}

// NotionWebhook handles POST /api/webhooks/notion. The verification
// handshake carries no signature; its token is logged so an operator can
// confirm the subscription in Notion. Every other event must be signed.
func (h *RevalidateHandler) NotionWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		writeJSONError(w, http.StatusRequestEntityTooLarge, "Payload too large")
		return
	}

	event, err := webhook.ParseEvent(body)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid event payload")
		return
	}

	if event.IsVerification() {
		h.logger.Warn("notion webhook verification received; set NOTION_WEBHOOK_SECRET to this token",
			"verification_token", event.VerificationToken)
		writeJSONSuccess(w, map[string]any{"verification": "received"})
		return
	}

	if h.webhookSecret == "" {
		writeJSONError(w, http.StatusServiceUnavailable, "Webhook secret is not configured")
		return
	}
	if !webhook.VerifySignature(body, r.Header.Get(webhook.SignatureHeader), h.webhookSecret) {
		h.logger.Warn("invalid webhook signature", "event_id", event.ID, "type", event.Type)
		writeJSONError(w, http.StatusUnauthorized, "Invalid signature")
		return
	}

	tags := webhook.TagsFor(event, h.databases)
	if len(tags) == 0 {
		h.logger.Debug("webhook event ignored", "event_id", event.ID, "type", event.Type)
		writeJSONSuccess(w, map[string]any{"ignored": true, "event_id": event.ID})
		return
	}

	if h.queue != nil {
		h.queue.Queue(tags...)
	} else if _, err := h.blog.Revalidate(r.Context(), tags...); err != nil {
		h.logger.Error("webhook revalidation failed", "event_id", event.ID, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Revalidation failed")
		return
	}

	h.logger.Info("webhook event accepted", "event_id", event.ID, "type", event.Type, "tags", tags)
	writeJSONStatus(w, http.StatusAccepted, map[string]any{
		"event_id": event.ID,
		"tags":     tags,
	})
}

// CacheStats handles GET /api/cache/stats.
func (h *RevalidateHandler) CacheStats(w http.ResponseWriter, _ *http.Request) {
	data := map[string]any{
		"stats":    h.blog.CacheStats(),
		"policies": policySummaries(),
	}
	if h.queue != nil {
		data["pending_revalidations"] = h.queue.PendingCount()
	}
	if h.warmup != nil {
		data["warmup"] = h.warmup.Info()
	}
	writeJSONSuccess(w, data)
}

type policySummary struct {
	Name string   `json:"name"`
	TTL  string   `json:"ttl"`
	Tags []string `json:"tags"`
}

func policySummaries() []policySummary {
	policies := cache.Policies()
	out := make([]policySummary, 0, len(policies))
	for _, p := range policies {
		out = append(out, policySummary{Name: p.Name, TTL: p.TTL.String(), Tags: p.Tags})
	}
	return out
}
