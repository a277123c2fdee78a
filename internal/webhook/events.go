// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package webhook receives Notion change notifications and turns them into
// debounced cache revalidation.
package webhook

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/cache"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/notion"
)

// Entity identifies the Notion object an event is about.
type Entity struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// EventData carries the event details used for routing.
type EventData struct {
	Parent *Entity `json:"parent,omitempty"`
}

// Event is a Notion webhook delivery. The one-time subscription
// verification request only carries VerificationToken.
type Event struct {
	ID                string    `json:"id"`
	Type              string    `json:"type"`
	Timestamp         time.Time `json:"timestamp"`
	WorkspaceID       string    `json:"workspace_id"`
	SubscriptionID    string    `json:"subscription_id"`
	AttemptNumber     int       `json:"attempt_number"`
	Entity            Entity    `json:"entity"`
	Data              EventData `json:"data"`
	VerificationToken string    `json:"verification_token,omitempty"`
}

// ParseEvent decodes a webhook body.
func ParseEvent(body []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("decoding webhook event: %w", err)
	}
	return &event, nil
}

// IsVerification reports whether the event is the subscription
// verification request.
func (e *Event) IsVerification() bool {
	return e.VerificationToken != "" && e.Type == ""
}

// sameID compares Notion ids with or without hyphens.
func sameID(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	norm := func(s string) string { return strings.ToLower(strings.ReplaceAll(s, "-", "")) }
	return norm(a) == norm(b)
}

// TagsFor returns the cache tags an event invalidates. Page changes are
// routed by parent database; schema and database level changes clear
// everything. Events that do not affect content yield nil.
func TagsFor(e *Event, dbs notion.Databases) []string {
	kind, _, _ := strings.Cut(e.Type, ".")

	switch kind {
	case "page":
		parent := ""
		if e.Data.Parent != nil {
			parent = e.Data.Parent.ID
		}
		switch {
		case sameID(parent, dbs.Authors):
			return []string{cache.TagAuthors, cache.TagPosts}
		case sameID(parent, dbs.Categories):
			return []string{cache.TagCategories, cache.TagPosts}
		default:
			return []string{cache.TagPosts}
		}
	case "database", "data_source":
		return []string{cache.TagAll}
	default:
		return nil
	}
}
