// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service provides the blog data access layer. BlogService reads
// Notion through the adapter, maps pages to domain entities, caches the
// results per policy and turns failures into safe fallbacks.
package service

import (
	"context"
	"log/slog"

	"github.com/jomei/notionapi"

	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/cache"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/model"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/notion"
)

// Content renderers
const (
	RendererBlocks   = "blocks"
	RendererMarkdown = "markdown"
)

// Defaults
const (
	DefaultPageSize        = 10
	DefaultMaxPosts        = 500
	DefaultConcurrency     = 4
	DefaultPublishedStatus = "published"
	DefaultFeaturedLimit   = 3
	DefaultRecentLimit     = 6
	DefaultRelatedLimit    = 3
)

// Source is the subset of the Notion adapter used by BlogService.
type Source interface {
	Databases() notion.Databases
	QueryDatabase(ctx context.Context, databaseID string, opts notion.QueryOptions) (notion.QueryResult, error)
	QueryAll(ctx context.Context, databaseID string, opts notion.QueryOptions, limit int) ([]notionapi.Page, error)
	GetPage(ctx context.Context, pageID string) (*notionapi.Page, error)
	GetPageBlocks(ctx context.Context, pageID string, includeChildren bool) ([]notion.BlockNode, error)
	ValidateConnection(ctx context.Context) notion.ConnectionStatus
}

var _ Source = (*notion.Client)(nil)

// Options configures a BlogService.
type Options struct {
	// Renderer selects how page blocks become HTML: blocks or markdown.
	Renderer string

	// MaxPosts caps how many published posts are loaded for search,
	// related posts and tag listings.
	MaxPosts int

	// Concurrency bounds related-entity lookups per listing.
	Concurrency int

	// PublishedStatus is the Status select option of published posts.
	PublishedStatus string
}

// PostQuery selects one page of a post listing.
type PostQuery struct {
	PageSize int
	Cursor   string
}

func (q PostQuery) normalized() PostQuery {
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > notion.MaxPageSize {
		q.PageSize = notion.MaxPageSize
	}
	return q
}

type slugQuery struct {
	Slug  string
	Query PostQuery
}

type relatedQuery struct {
	Post  model.BlogPost
	Limit int
}

// BlogService is the data access facade over Notion.
type BlogService struct {
	source    Source
	databases notion.Databases
	store     *cache.Store
	opts      Options
	logger    *slog.Logger

	allPosts       func(context.Context, PostQuery) (model.PostList, error)
	publishedPosts func(context.Context, struct{}) ([]model.BlogPost, error)
	featuredPosts  func(context.Context, int) ([]model.BlogPost, error)
	postBySlug     func(context.Context, string) (model.BlogPost, error)
	postContent    func(context.Context, string) (string, error)
	categoryPosts  func(context.Context, slugQuery) (model.PostList, error)
	authorPosts    func(context.Context, slugQuery) (model.PostList, error)
	categories     func(context.Context, struct{}) ([]model.BlogCategory, error)
	authors        func(context.Context, struct{}) ([]model.BlogAuthor, error)
	authorByID     func(context.Context, string) (model.BlogAuthor, error)
	search         func(context.Context, SearchQuery) (model.SearchResult, error)
	related        func(context.Context, relatedQuery) ([]model.BlogPost, error)
	homepage       func(context.Context, struct{}) (model.HomepageData, error)
}

// New creates a BlogService. A nil store disables caching.
func New(source Source, store *cache.Store, opts Options, logger *slog.Logger) *BlogService {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Renderer == "" {
		opts.Renderer = RendererBlocks
	}
	if opts.MaxPosts <= 0 {
		opts.MaxPosts = DefaultMaxPosts
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.PublishedStatus == "" {
		opts.PublishedStatus = DefaultPublishedStatus
	}

	s := &BlogService{
		source:    source,
		databases: source.Databases(),
		store:     store,
		opts:      opts,
		logger:    logger.With("component", "blog"),
	}

	constKey := func(name string) func(struct{}) string {
		return func(struct{}) string { return name }
	}
	listKey := func(q slugQuery) string {
		return q.Slug + ":" + listSuffix(q.Query)
	}

	s.allPosts = cache.Cached(store, s.fetchPosts, cache.Options[PostQuery]{
		Policy:       cache.PolicyPosts,
		KeyGenerator: func(q PostQuery) string { return "all:" + listSuffix(q) },
	})
	s.publishedPosts = cache.Cached(store, s.fetchPublishedPosts, cache.Options[struct{}]{
		Policy:       cache.PolicyPosts,
		KeyGenerator: constKey("published"),
	})
	s.featuredPosts = cache.Cached(store, s.fetchFeaturedPosts, cache.Options[int]{
		Policy:       cache.PolicyPosts,
		KeyGenerator: func(limit int) string { return "featured:" + itoa(limit) },
	})
	s.postBySlug = cache.Cached(store, s.fetchPostBySlug, cache.Options[string]{
		Policy:       cache.PolicyPost,
		KeyGenerator: func(slug string) string { return "slug:" + slug },
	})
	s.postContent = cache.Cached(store, s.fetchPostContent, cache.Options[string]{
		Policy:       cache.PolicyPost,
		KeyGenerator: func(id string) string { return "content:" + id },
	})
	s.categoryPosts = cache.Cached(store, s.fetchPostsByCategory, cache.Options[slugQuery]{
		Policy:       cache.PolicyPosts,
		KeyGenerator: func(q slugQuery) string { return "category:" + listKey(q) },
	})
	s.authorPosts = cache.Cached(store, s.fetchPostsByAuthor, cache.Options[slugQuery]{
		Policy:       cache.PolicyPosts,
		KeyGenerator: func(q slugQuery) string { return "author:" + listKey(q) },
	})
	s.categories = cache.Cached(store, s.fetchCategories, cache.Options[struct{}]{
		Policy:       cache.PolicyCategories,
		KeyGenerator: constKey("all"),
	})
	s.authors = cache.Cached(store, s.fetchAuthors, cache.Options[struct{}]{
		Policy:       cache.PolicyAuthors,
		KeyGenerator: constKey("all"),
	})
	s.authorByID = cache.Cached(store, s.fetchAuthorByID, cache.Options[string]{
		Policy:       cache.PolicyAuthors,
		KeyGenerator: func(id string) string { return "id:" + id },
	})
	s.search = cache.Cached(store, s.runSearch, cache.Options[SearchQuery]{
		Policy:       cache.PolicySearch,
		KeyGenerator: SearchQuery.cacheKey,
	})
	s.related = cache.Cached(store, s.fetchRelatedPosts, cache.Options[relatedQuery]{
		Policy:       cache.PolicyPosts,
		KeyGenerator: func(q relatedQuery) string { return "related:" + q.Post.ID + ":" + itoa(q.Limit) },
	})
	s.homepage = cache.Cached(store, s.fetchHomepage, cache.Options[struct{}]{
		Policy:       cache.PolicyHomepage,
		KeyGenerator: constKey("data"),
	})

	return s
}

// IsAuthorsConfigured reports whether an authors database is configured.
func (s *BlogService) IsAuthorsConfigured() bool {
	return s.databases.Authors != ""
}

// IsCategoriesConfigured reports whether a categories database is configured.
func (s *BlogService) IsCategoriesConfigured() bool {
	return s.databases.Categories != ""
}

// ValidateConnection checks that Notion is reachable with the configured
// token and databases.
func (s *BlogService) ValidateConnection(ctx context.Context) notion.ConnectionStatus {
	return s.source.ValidateConnection(ctx)
}

// CacheStats returns statistics of the cache backend.
func (s *BlogService) CacheStats() cache.Stats {
	if s.store == nil {
		return cache.Stats{}
	}
	return s.store.Stats()
}
