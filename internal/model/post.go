// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the blog domain entities projected from Notion pages.
package model

import (
	"strings"
	"time"
)

// PostStatus is the editorial state of a post.
type PostStatus string

// Post statuses
const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
	PostStatusArchived  PostStatus = "archived"
)

// ParsePostStatus maps a Notion select name to a PostStatus.
// Unknown or empty names are treated as drafts.
func ParsePostStatus(name string) PostStatus {
	switch PostStatus(strings.ToLower(strings.TrimSpace(name))) {
	case PostStatusPublished:
		return PostStatusPublished
	case PostStatusArchived:
		return PostStatusArchived
	default:
		return PostStatusDraft
	}
}

// SEO holds the search-engine overrides of a post.
type SEO struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// BlogPost is a read projection of one Notion page in the posts database.
type BlogPost struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Slug          string        `json:"slug"`
	Excerpt       string        `json:"excerpt"`
	Content       string        `json:"content"`
	Status        PostStatus    `json:"status"`
	FeaturedImage string        `json:"featured_image,omitempty"`
	PublishedAt   time.Time     `json:"published_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	Author        *BlogAuthor   `json:"author,omitempty"`
	Category      *BlogCategory `json:"category,omitempty"`
	Tags          []string      `json:"tags"`
	Featured      bool          `json:"featured"`
	ReadingTime   int           `json:"reading_time"`
	SEO           SEO           `json:"seo"`
}

// IsPublished returns true if the post is published.
func (p *BlogPost) IsPublished() bool {
	return p.Status == PostStatusPublished
}

// IsDraft returns true if the post is a draft.
func (p *BlogPost) IsDraft() bool {
	return p.Status == PostStatusDraft
}

// HasTag reports whether the post carries the tag, ignoring case.
func (p *BlogPost) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// PostList is a cursor-paginated page of posts.
type PostList struct {
	Posts      []BlogPost `json:"posts"`
	HasMore    bool       `json:"has_more"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// EmptyPostList returns the safe fallback shape for failed listings.
func EmptyPostList() PostList {
	return PostList{Posts: []BlogPost{}}
}

// Provenance records where an entity was read from.
type Provenance struct {
	NotionPageID string    `json:"notion_page_id"`
	LastEdited   time.Time `json:"last_edited"`
	NotionURL    string    `json:"notion_url,omitempty"`
}
