// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/middleware"
)

// RouterConfig holds the handlers and settings of the HTTP surface.
type RouterConfig struct {
	Content    *ContentHandler
	Revalidate *RevalidateHandler
	Health     *HealthHandler

	RevalidateSecret string
	AllowedOrigins   []string
	IsDevelopment    bool
	// TrustProxy takes the client address from X-Real-IP or
	// X-Forwarded-For. Enable it only behind a proxy that sets them.
	TrustProxy bool

	// RequestTimeout bounds each request. Zero means 30s.
	RequestTimeout time.Duration
	// SearchRate and SearchBurst limit /api/search per client IP. Zero
	// means 2 requests per second with a burst of 10.
	SearchRate  float64
	SearchBurst int
	// Logger logs each request. Nil disables request logging.
	Logger *slog.Logger
}

// NewRouter builds the chi router serving the content API.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.SearchRate <= 0 {
		cfg.SearchRate = 2
	}
	if cfg.SearchBurst <= 0 {
		cfg.SearchBurst = 10
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	if cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	if cfg.Logger != nil {
		r.Use(middleware.RequestLogger(cfg.Logger))
	}
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5, "application/json"))
	r.Use(chimw.GetHead)
	r.Use(chimw.StripSlashes)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment)))
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.NoStore)
		r.Get("/health", cfg.Health.Health)
		r.Get("/health/live", cfg.Health.Liveness)
		r.Get("/health/ready", cfg.Health.Readiness)
	})

	searchLimiter := middleware.NewRateLimiter(cfg.SearchRate, cfg.SearchBurst)
	content := cfg.Content

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(60, 300))

			r.Get("/posts", content.ListPosts)
			r.Get("/posts/featured", content.FeaturedPosts)
			r.Get("/posts/{slug}", content.GetPost)
			r.Get("/posts/{slug}/related", content.RelatedPosts)

			r.Get("/categories", content.ListCategories)
			r.Get("/categories/{slug}", content.GetCategory)
			r.Get("/categories/{slug}/posts", content.CategoryPosts)

			r.Get("/authors", content.ListAuthors)
			r.Get("/authors/{slug}", content.GetAuthor)
			r.Get("/authors/{slug}/posts", content.AuthorPosts)

			r.Get("/tags", content.ListTags)
			r.Get("/tags/{slug}/posts", content.TagPosts)

			r.Get("/home", content.Home)

			r.With(searchLimiter.Middleware()).Get("/search", content.Search)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.NoStore)
			r.Post("/webhooks/notion", cfg.Revalidate.NotionWebhook)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireSecret(cfg.RevalidateSecret))
				r.Post("/revalidate", cfg.Revalidate.Revalidate)
				r.Get("/cache/stats", cfg.Revalidate.CacheStats)
			})
		})
	})

	return r
}
