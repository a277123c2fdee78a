// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/cache"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/config"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/handler"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/logging"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/notion"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/scheduler"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/service"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/version"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/webhook"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = ""
	appGitCommit = ""
	appBuildTime = ""
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Administrativa(mente) blog API - serves Notion content as JSON\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NOTION_TOKEN                 Notion integration token (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NOTION_POSTS_DATABASE_ID     Posts database id (required, or NOTION_DATABASE_ID)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NOTION_AUTHORS_DATABASE_ID   Authors database id (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NOTION_CATEGORIES_DATABASE_ID Categories database id (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  REVALIDATE_SECRET            Secret for /api/revalidate and health details\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NOTION_WEBHOOK_SECRET        Verification token of the Notion webhook\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SERVER_HOST / SERVER_PORT    Listen address (default: localhost:8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  REDIS_URL                    Redis URL for shared caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CACHE_WARMUP_SCHEDULE        Cron spec of the warmup job, empty disables\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TRUST_PROXY                  Use X-Real-IP/X-Forwarded-For for client IPs\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	info := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}.Resolve()

	if *showVersion {
		_, _ = fmt.Printf("blog-api %s\n", info)
		os.Exit(0)
	}

	if err := run(info); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(info version.Info) error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, recent := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	slog.SetDefault(logger)
	logger.Info("starting blog api", "version", info.Short(), "commit", info.GitCommit, "env", cfg.Env)

	client, err := notion.New(cfg.NotionOptions(), logger)
	if err != nil {
		return fmt.Errorf("creating notion client: %w", err)
	}

	store := cache.NewStore(cache.New(cfg.CacheConfig(), logger), logger)
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("error closing cache", "error", err)
		}
	}()

	blog := service.New(client, store, service.Options{
		Renderer:        cfg.Renderer,
		PublishedStatus: cfg.PublishedStatus,
	}, logger)

	debouncer := webhook.NewDebouncer(blog, webhook.DefaultDebounceConfig(), logger)
	defer debouncer.Stop()

	warmup, err := scheduler.New(blog, cfg.WarmupSchedule, logger)
	if err != nil {
		return fmt.Errorf("creating warmup scheduler: %w", err)
	}
	if err := warmup.Start(); err != nil {
		return fmt.Errorf("starting warmup scheduler: %w", err)
	}
	defer warmup.Stop()

	if warmup.Enabled() {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			if err := warmup.RunNow(ctx); err != nil && !errors.Is(err, scheduler.ErrAlreadyRunning) {
				logger.Warn("initial cache warmup failed", "error", err)
			}
		}()
	}

	router := handler.NewRouter(handler.RouterConfig{
		Content: handler.NewContentHandler(blog, logger),
		Revalidate: handler.NewRevalidateHandler(blog, handler.RevalidateConfig{
			Queue:         debouncer,
			Warmup:        warmup,
			WebhookSecret: cfg.WebhookSecret,
			Databases:     cfg.Databases(),
		}, logger),
		Health:           handler.NewHealthHandler(blog, recent, cfg.RevalidateSecret, info),
		RevalidateSecret: cfg.RevalidateSecret,
		AllowedOrigins:   cfg.AllowedOrigins,
		IsDevelopment:    cfg.IsDevelopment(),
		TrustProxy:       cfg.TrustProxy,
		RequestTimeout:   cfg.RequestTimeout + 5*time.Second,
		Logger:           logger,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "cache", store.Stats().Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal or a listener failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
