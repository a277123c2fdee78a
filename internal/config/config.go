// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/cache"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/errs"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/notion"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/service"
)

// DefaultWarmupSchedule applies when CACHE_WARMUP_SCHEDULE is unset.
const DefaultWarmupSchedule = "*/15 * * * *"

// MinRevalidateSecretLength is the length below which the revalidate secret
// is reported as weak.
const MinRevalidateSecretLength = 16

// Config holds the application configuration loaded from environment variables.
type Config struct {
	NotionToken          string `env:"NOTION_TOKEN,required"`
	PostsDatabaseID      string `env:"NOTION_POSTS_DATABASE_ID"`
	LegacyDatabaseID     string `env:"NOTION_DATABASE_ID"` // Fallback for the posts database
	AuthorsDatabaseID    string `env:"NOTION_AUTHORS_DATABASE_ID"`
	CategoriesDatabaseID string `env:"NOTION_CATEGORIES_DATABASE_ID"`
	PublishedStatus      string `env:"NOTION_PUBLISHED_STATUS" envDefault:"published"`
	RevalidateSecret     string `env:"REVALIDATE_SECRET"`
	WebhookSecret        string `env:"NOTION_WEBHOOK_SECRET"`

	ServerHost string `env:"SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"SERVER_PORT" envDefault:"8080"`
	Env        string `env:"APP_ENV" envDefault:"development"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat  string `env:"LOG_FORMAT" envDefault:"text"`

	// Cache configuration
	RedisURL     string `env:"REDIS_URL"`                         // Optional Redis URL for distributed caching
	CachePrefix  string `env:"CACHE_PREFIX" envDefault:"adm:"`    // Redis key prefix
	CacheMaxSize int    `env:"CACHE_MAX_SIZE" envDefault:"10000"` // Max memory cache entries

	// Notion client tuning
	RequestTimeout time.Duration `env:"NOTION_REQUEST_TIMEOUT" envDefault:"30s"`
	RateLimit      float64       `env:"NOTION_RATE_LIMIT" envDefault:"3"`
	RateBurst      int           `env:"NOTION_RATE_BURST" envDefault:"3"`
	MaxRetries     uint64        `env:"NOTION_MAX_RETRIES" envDefault:"3"`
	RetryBaseDelay time.Duration `env:"NOTION_RETRY_BASE_DELAY" envDefault:"1s"`

	Renderer       string   `env:"CONTENT_RENDERER" envDefault:"blocks"`
	WarmupSchedule string   `env:"CACHE_WARMUP_SCHEDULE"` // Set but empty disables warmup
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	TrustProxy     bool     `env:"TRUST_PROXY" envDefault:"false"` // Honor X-Real-IP / X-Forwarded-For
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// PostsDatabase returns the posts database id. NOTION_POSTS_DATABASE_ID
// takes precedence over NOTION_DATABASE_ID.
func (c Config) PostsDatabase() string {
	if c.PostsDatabaseID != "" {
		return c.PostsDatabaseID
	}
	return c.LegacyDatabaseID
}

// Databases returns the configured Notion database ids.
func (c Config) Databases() notion.Databases {
	return notion.Databases{
		Posts:      c.PostsDatabase(),
		Authors:    c.AuthorsDatabaseID,
		Categories: c.CategoriesDatabaseID,
	}
}

// NotionOptions returns the Notion client options.
func (c Config) NotionOptions() notion.Options {
	return notion.Options{
		Token:          c.NotionToken,
		Databases:      c.Databases(),
		RequestTimeout: c.RequestTimeout,
		RateLimit:      c.RateLimit,
		RateBurst:      c.RateBurst,
		Retry: errs.RetryConfig{
			MaxRetries: c.MaxRetries,
			BaseDelay:  c.RetryBaseDelay,
		},
	}
}

// CacheConfig returns the cache backend configuration.
func (c Config) CacheConfig() cache.Config {
	cfg := cache.DefaultConfig()
	cfg.RedisURL = c.RedisURL
	if c.CachePrefix != "" {
		cfg.Prefix = c.CachePrefix
	}
	if c.CacheMaxSize > 0 {
		cfg.MaxSize = c.CacheMaxSize
	}
	return cfg
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// envDefault would also replace an explicitly empty value.
	if _, ok := os.LookupEnv("CACHE_WARMUP_SCHEDULE"); !ok {
		cfg.WarmupSchedule = DefaultWarmupSchedule
	}
	cfg.WarmupSchedule = strings.TrimSpace(cfg.WarmupSchedule)

	cfg.NotionToken = strings.TrimSpace(cfg.NotionToken)
	if cfg.NotionToken == "" {
		return nil, errors.New("NOTION_TOKEN must not be empty")
	}
	if cfg.PostsDatabase() == "" {
		return nil, errors.New("NOTION_POSTS_DATABASE_ID (or NOTION_DATABASE_ID) is required")
	}

	cfg.Renderer = strings.ToLower(strings.TrimSpace(cfg.Renderer))
	if cfg.Renderer != service.RendererBlocks && cfg.Renderer != service.RendererMarkdown {
		return nil, fmt.Errorf("CONTENT_RENDERER must be %q or %q, got %q",
			service.RendererBlocks, service.RendererMarkdown, cfg.Renderer)
	}

	switch strings.ToLower(cfg.LogFormat) {
	case "text", "json":
		cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	default:
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	if cfg.ServerPort <= 0 || cfg.ServerPort > 65535 {
		return nil, fmt.Errorf("SERVER_PORT out of range: %d", cfg.ServerPort)
	}

	// Revalidation endpoints answer 503 without a secret.
	switch {
	case cfg.RevalidateSecret == "":
		slog.Warn("REVALIDATE_SECRET is not set; revalidation endpoints are disabled")
	case len(cfg.RevalidateSecret) < MinRevalidateSecretLength:
		slog.Warn("REVALIDATE_SECRET is short; consider generating one with: openssl rand -hex 32")
	}

	return cfg, nil
}
