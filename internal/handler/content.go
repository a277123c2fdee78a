// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler serves the blog content API over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/cache"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/model"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/notion"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/service"
)

// Query limits
const (
	DefaultListLimit    = 10
	MaxListLimit        = 100
	DefaultRelatedLimit = 3
	MaxRelatedLimit     = 12
	DefaultFeaturedSize = 3
	MaxFeaturedSize     = 20
)

// Blog is the content facade consumed by the handlers.
type Blog interface {
	GetAllPosts(ctx context.Context, q service.PostQuery) model.PostList
	GetFeaturedPosts(ctx context.Context, limit int) []model.BlogPost
	GetPostBySlug(ctx context.Context, slug string) (*model.BlogPost, bool)
	GetPostBySlugWithContent(ctx context.Context, slug string) (*model.BlogPost, bool)
	GetRelatedPosts(ctx context.Context, post *model.BlogPost, limit int) []model.BlogPost
	GetPostsByTag(ctx context.Context, tag string) []model.BlogPost
	GetAllCategories(ctx context.Context) []model.BlogCategory
	GetCategoryBySlug(ctx context.Context, slug string) (*model.BlogCategory, bool)
	GetPostsByCategory(ctx context.Context, slug string, q service.PostQuery) model.PostList
	GetAllAuthors(ctx context.Context) []model.BlogAuthor
	GetAuthorBySlug(ctx context.Context, slug string) (*model.BlogAuthor, bool)
	GetPostsByAuthor(ctx context.Context, slug string, q service.PostQuery) model.PostList
	GetAllTags(ctx context.Context) []model.TagCount
	GetHomepageData(ctx context.Context) model.HomepageData
	SearchPosts(ctx context.Context, q service.SearchQuery) model.SearchResult
	Revalidate(ctx context.Context, tags ...string) ([]string, error)
	ValidateConnection(ctx context.Context) notion.ConnectionStatus
	CacheStats() cache.Stats
}

var _ Blog = (*service.BlogService)(nil)

// ContentHandler serves posts, taxonomies, the homepage and search.
type ContentHandler struct {
	blog   Blog
	logger *slog.Logger
}

// NewContentHandler creates a new content handler.
func NewContentHandler(blog Blog, logger *slog.Logger) *ContentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentHandler{blog: blog, logger: logger.With("component", "api")}
}

func postQuery(r *http.Request) service.PostQuery {
	return service.PostQuery{
		PageSize: clamp(queryInt(r, "limit", DefaultListLimit), MaxListLimit),
		Cursor:   r.URL.Query().Get("cursor"),
	}
}

// ListPosts handles GET /api/posts.
func (h *ContentHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	list := h.blog.GetAllPosts(r.Context(), postQuery(r))
	writeJSONSuccess(w, map[string]any{
		"posts":       list.Posts,
		"has_more":    list.HasMore,
		"next_cursor": list.NextCursor,
	})
}

// FeaturedPosts handles GET /api/posts/featured.
func (h *ContentHandler) FeaturedPosts(w http.ResponseWriter, r *http.Request) {
	limit := clamp(queryInt(r, "limit", DefaultFeaturedSize), MaxFeaturedSize)
	writeJSONSuccess(w, map[string]any{
		"posts": h.blog.GetFeaturedPosts(r.Context(), limit),
	})
}

// GetPost handles GET /api/posts/{slug}. The post is returned with its
// rendered content.
func (h *ContentHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	post, ok := h.blog.GetPostBySlugWithContent(r.Context(), slug)
	if !ok {
		h.logger.Debug("post not found", "slug", slug)
		writeJSONError(w, http.StatusNotFound, "Post not found")
		return
	}
	writeJSONSuccess(w, map[string]any{"post": post})
}

// RelatedPosts handles GET /api/posts/{slug}/related.
func (h *ContentHandler) RelatedPosts(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	post, ok := h.blog.GetPostBySlug(r.Context(), slug)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "Post not found")
		return
	}
	limit := clamp(queryInt(r, "limit", DefaultRelatedLimit), MaxRelatedLimit)
	writeJSONSuccess(w, map[string]any{
		"posts": h.blog.GetRelatedPosts(r.Context(), post, limit),
	})
}

// ListCategories handles GET /api/categories.
func (h *ContentHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSONSuccess(w, map[string]any{
		"categories": h.blog.GetAllCategories(r.Context()),
	})
}

// GetCategory handles GET /api/categories/{slug}.
func (h *ContentHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	category, ok := h.blog.GetCategoryBySlug(r.Context(), chi.URLParam(r, "slug"))
	if !ok {
		writeJSONError(w, http.StatusNotFound, "Category not found")
		return
	}
	writeJSONSuccess(w, map[string]any{"category": category})
}

// CategoryPosts handles GET /api/categories/{slug}/posts.
func (h *ContentHandler) CategoryPosts(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	category, ok := h.blog.GetCategoryBySlug(r.Context(), slug)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "Category not found")
		return
	}
	list := h.blog.GetPostsByCategory(r.Context(), slug, postQuery(r))
	writeJSONSuccess(w, map[string]any{
		"category":    category,
		"posts":       list.Posts,
		"has_more":    list.HasMore,
		"next_cursor": list.NextCursor,
	})
}

// ListAuthors handles GET /api/authors.
func (h *ContentHandler) ListAuthors(w http.ResponseWriter, r *http.Request) {
	writeJSONSuccess(w, map[string]any{
		"authors": h.blog.GetAllAuthors(r.Context()),
	})
}

// GetAuthor handles GET /api/authors/{slug}.
func (h *ContentHandler) GetAuthor(w http.ResponseWriter, r *http.Request) {
	author, ok := h.blog.GetAuthorBySlug(r.Context(), chi.URLParam(r, "slug"))
	if !ok {
		writeJSONError(w, http.StatusNotFound, "Author not found")
		return
	}
	writeJSONSuccess(w, map[string]any{"author": author})
}

// AuthorPosts handles GET /api/authors/{slug}/posts.
func (h *ContentHandler) AuthorPosts(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	author, ok := h.blog.GetAuthorBySlug(r.Context(), slug)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "Author not found")
		return
	}
	list := h.blog.GetPostsByAuthor(r.Context(), slug, postQuery(r))
	writeJSONSuccess(w, map[string]any{
		"author":      author,
		"posts":       list.Posts,
		"has_more":    list.HasMore,
		"next_cursor": list.NextCursor,
	})
}

// ListTags handles GET /api/tags.
func (h *ContentHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	writeJSONSuccess(w, map[string]any{
		"tags": h.blog.GetAllTags(r.Context()),
	})
}

// TagPosts handles GET /api/tags/{slug}/posts.
func (h *ContentHandler) TagPosts(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "slug")
	writeJSONSuccess(w, map[string]any{
		"tag":   tag,
		"posts": h.blog.GetPostsByTag(r.Context(), tag),
	})
}

// Home handles GET /api/home.
func (h *ContentHandler) Home(w http.ResponseWriter, r *http.Request) {
	data := h.blog.GetHomepageData(r.Context())
	writeJSONSuccess(w, map[string]any{
		"featured":   data.Featured,
		"recent":     data.Recent,
		"categories": data.Categories,
	})
}

// Search handles GET /api/search.
func (h *ContentHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result := h.blog.SearchPosts(r.Context(), service.SearchQuery{
		Q:        q.Get("q"),
		Page:     queryInt(r, "page", 1),
		Limit:    queryInt(r, "limit", service.DefaultSearchLimit),
		Category: q.Get("category"),
		Author:   q.Get("author"),
		Sort:     q.Get("sort"),
	})
	writeJSONSuccess(w, map[string]any{"result": result})
}
