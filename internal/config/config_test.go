// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"os"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/service"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set %s: %v", key, err)
	}
}

// setRequired clears the environment and sets only the required variables.
func setRequired(t *testing.T) {
	t.Helper()
	os.Clearenv()
	setEnv(t, "NOTION_TOKEN", "ntn_test_token")
	setEnv(t, "NOTION_POSTS_DATABASE_ID", "posts-db")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.ServerHost != "localhost" {
		t.Errorf("ServerHost = %q, want %q", cfg.ServerHost, "localhost")
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 8080)
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %q, want %q", cfg.Env, "development")
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Errorf("LogLevel/LogFormat = %q/%q, want info/text", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.PublishedStatus != "published" {
		t.Errorf("PublishedStatus = %q, want %q", cfg.PublishedStatus, "published")
	}
	if cfg.CachePrefix != "adm:" || cfg.CacheMaxSize != 10000 {
		t.Errorf("cache defaults = %q/%d", cfg.CachePrefix, cfg.CacheMaxSize)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v, want 30s", cfg.RequestTimeout)
	}
	if cfg.RateLimit != 3 || cfg.RateBurst != 3 {
		t.Errorf("rate limit = %v/%d, want 3/3", cfg.RateLimit, cfg.RateBurst)
	}
	if cfg.MaxRetries != 3 || cfg.RetryBaseDelay != time.Second {
		t.Errorf("retry = %d/%v, want 3/1s", cfg.MaxRetries, cfg.RetryBaseDelay)
	}
	if cfg.Renderer != service.RendererBlocks {
		t.Errorf("Renderer = %q, want %q", cfg.Renderer, service.RendererBlocks)
	}
	if cfg.WarmupSchedule != "*/15 * * * *" {
		t.Errorf("WarmupSchedule = %q", cfg.WarmupSchedule)
	}
	if !reflect.DeepEqual(cfg.AllowedOrigins, []string{"*"}) {
		t.Errorf("AllowedOrigins = %v, want [*]", cfg.AllowedOrigins)
	}
	if cfg.TrustProxy {
		t.Error("TrustProxy should default to false")
	}
	if cfg.UseRedisCache() {
		t.Error("UseRedisCache() should be false without REDIS_URL")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	setRequired(t)
	setEnv(t, "NOTION_AUTHORS_DATABASE_ID", "authors-db")
	setEnv(t, "NOTION_CATEGORIES_DATABASE_ID", "categories-db")
	setEnv(t, "SERVER_HOST", "0.0.0.0")
	setEnv(t, "SERVER_PORT", "3000")
	setEnv(t, "APP_ENV", "production")
	setEnv(t, "LOG_LEVEL", "debug")
	setEnv(t, "LOG_FORMAT", "JSON")
	setEnv(t, "REDIS_URL", "redis://localhost:6379/0")
	setEnv(t, "CONTENT_RENDERER", "Markdown")
	setEnv(t, "NOTION_REQUEST_TIMEOUT", "5s")
	setEnv(t, "CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	setEnv(t, "CACHE_WARMUP_SCHEDULE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.ServerAddr() != "0.0.0.0:3000" {
		t.Errorf("ServerAddr() = %q, want %q", cfg.ServerAddr(), "0.0.0.0:3000")
	}
	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() = true in production")
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want json", cfg.LogFormat)
	}
	if cfg.Renderer != service.RendererMarkdown {
		t.Errorf("Renderer = %q, want %q", cfg.Renderer, service.RendererMarkdown)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("RequestTimeout = %v, want 5s", cfg.RequestTimeout)
	}
	if !cfg.UseRedisCache() {
		t.Error("UseRedisCache() should be true with REDIS_URL")
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}

	dbs := cfg.Databases()
	if dbs.Posts != "posts-db" || dbs.Authors != "authors-db" || dbs.Categories != "categories-db" {
		t.Errorf("Databases() = %+v", dbs)
	}
}

func TestLoad_EmptyScheduleDisablesWarmup(t *testing.T) {
	setRequired(t)
	setEnv(t, "CACHE_WARMUP_SCHEDULE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.WarmupSchedule != "" {
		t.Errorf("WarmupSchedule = %q, want empty", cfg.WarmupSchedule)
	}
}

func TestLoad_PostsDatabaseFallback(t *testing.T) {
	os.Clearenv()
	setEnv(t, "NOTION_TOKEN", "secret_abc")
	setEnv(t, "NOTION_DATABASE_ID", "legacy-db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.PostsDatabase() != "legacy-db" {
		t.Errorf("PostsDatabase() = %q, want legacy-db", cfg.PostsDatabase())
	}

	setEnv(t, "NOTION_POSTS_DATABASE_ID", "posts-db")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.PostsDatabase() != "posts-db" {
		t.Errorf("PostsDatabase() = %q, posts id should win", cfg.PostsDatabase())
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing token",
			env:     map[string]string{"NOTION_POSTS_DATABASE_ID": "db"},
			wantErr: "NOTION_TOKEN",
		},
		{
			name:    "blank token",
			env:     map[string]string{"NOTION_TOKEN": "   ", "NOTION_POSTS_DATABASE_ID": "db"},
			wantErr: "NOTION_TOKEN",
		},
		{
			name:    "missing posts database",
			env:     map[string]string{"NOTION_TOKEN": "ntn_x"},
			wantErr: "NOTION_POSTS_DATABASE_ID",
		},
		{
			name:    "unknown renderer",
			env:     map[string]string{"NOTION_TOKEN": "ntn_x", "NOTION_DATABASE_ID": "db", "CONTENT_RENDERER": "html"},
			wantErr: "CONTENT_RENDERER",
		},
		{
			name:    "unknown log format",
			env:     map[string]string{"NOTION_TOKEN": "ntn_x", "NOTION_DATABASE_ID": "db", "LOG_FORMAT": "xml"},
			wantErr: "LOG_FORMAT",
		},
		{
			name:    "invalid port",
			env:     map[string]string{"NOTION_TOKEN": "ntn_x", "NOTION_DATABASE_ID": "db", "SERVER_PORT": "70000"},
			wantErr: "SERVER_PORT",
		},
		{
			name:    "unparsable port",
			env:     map[string]string{"NOTION_TOKEN": "ntn_x", "NOTION_DATABASE_ID": "db", "SERVER_PORT": "abc"},
			wantErr: "parsing config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for k, v := range tt.env {
				setEnv(t, k, v)
			}

			_, err := Load()
			if err == nil {
				t.Fatal("Load() should fail")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_NotionOptions(t *testing.T) {
	cfg := Config{
		NotionToken:     "ntn_abc",
		PostsDatabaseID: "posts",
		RequestTimeout:  10 * time.Second,
		RateLimit:       2.5,
		RateBurst:       4,
		MaxRetries:      5,
		RetryBaseDelay:  250 * time.Millisecond,
	}

	opts := cfg.NotionOptions()
	if opts.Token != "ntn_abc" || opts.Databases.Posts != "posts" {
		t.Errorf("NotionOptions() = %+v", opts)
	}
	if opts.RateLimit != 2.5 || opts.RateBurst != 4 || opts.RequestTimeout != 10*time.Second {
		t.Errorf("NotionOptions() tuning = %+v", opts)
	}
	if opts.Retry.MaxRetries != 5 || opts.Retry.BaseDelay != 250*time.Millisecond {
		t.Errorf("NotionOptions().Retry = %+v", opts.Retry)
	}
}

func TestConfig_CacheConfig(t *testing.T) {
	cfg := Config{RedisURL: "redis://r:6379/1", CachePrefix: "blog:", CacheMaxSize: 50}

	cc := cfg.CacheConfig()
	if cc.RedisURL != "redis://r:6379/1" || cc.Prefix != "blog:" || cc.MaxSize != 50 {
		t.Errorf("CacheConfig() = %+v", cc)
	}
	if cc.DefaultTTL <= 0 {
		t.Error("CacheConfig() should keep the default TTL")
	}

	empty := Config{}.CacheConfig()
	if empty.Prefix != "adm:" || empty.MaxSize != 10000 {
		t.Errorf("CacheConfig() defaults = %+v", empty)
	}
}
