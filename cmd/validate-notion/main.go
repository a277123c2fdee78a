// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Command validate-notion checks the Notion token and database schemas
// configured in the environment. It exits 0 when every check passes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/config"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/logging"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/notion"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/validate"
)

func main() {
	timeout := flag.Duration("timeout", 2*time.Minute, "Overall time limit for the checks")
	envFile := flag.String("env", ".env", "Environment file to load if present")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "validate-notion - check the Notion setup of the blog API\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nReads NOTION_TOKEN, NOTION_POSTS_DATABASE_ID (or NOTION_DATABASE_ID),\n")
		_, _ = fmt.Fprintf(os.Stderr, "NOTION_AUTHORS_DATABASE_ID and NOTION_CATEGORIES_DATABASE_ID.\n")
	}
	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	os.Exit(run(*envFile, *timeout))
}

func run(envFile string, timeout time.Duration) int {
	_ = godotenv.Load(envFile)

	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "[FAIL] configuration: %v\n", err)
		return 1
	}

	logger, _ := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	factory := func(token string) (*notion.Client, error) {
		opts := cfg.NotionOptions()
		opts.Token = token
		return notion.New(opts, logger)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// The raw value keeps whitespace and quotes so token variants can be tried.
	token := os.Getenv("NOTION_TOKEN")
	if token == "" {
		token = cfg.NotionToken
	}
	report := validate.New(factory, cfg.Databases(), logger).Run(ctx, token)

	_, _ = fmt.Printf("Notion token: %s\n\n", report.Token)
	report.Print(os.Stdout)

	if !report.Passed() {
		return 1
	}
	return 0
}
