// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package notion

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"
)

// Database names used in connection reports.
const (
	DatabasePosts      = "posts"
	DatabaseAuthors    = "authors"
	DatabaseCategories = "categories"
)

// ConnectionStatus is the outcome of ValidateConnection.
type ConnectionStatus struct {
	Valid     bool            `json:"valid"`
	BotName   string          `json:"bot_name,omitempty"`
	Errors    []string        `json:"errors"`
	Databases map[string]bool `json:"databases"`
}

// Me returns the bot user the token belongs to.
func (c *Client) Me(ctx context.Context) (*notionapi.User, error) {
	return call(ctx, c, "users.me", c.api.Me)
}

// ValidateConnection checks the token against users/me and then tries to
// retrieve every configured database. The connection is valid only when no
// step failed and the posts database is reachable.
func (c *Client) ValidateConnection(ctx context.Context) ConnectionStatus {
	status := ConnectionStatus{
		Errors:    []string{},
		Databases: make(map[string]bool),
	}

	me, err := c.Me(ctx)
	if err != nil {
		status.Errors = append(status.Errors, fmt.Sprintf("authentication failed: %v", err))
	} else if me != nil {
		status.BotName = me.Name
	}

	checks := []struct {
		name string
		id   string
	}{
		{DatabasePosts, c.databases.Posts},
		{DatabaseAuthors, c.databases.Authors},
		{DatabaseCategories, c.databases.Categories},
	}

	for _, check := range checks {
		if check.id == "" {
			if check.name == DatabasePosts {
				status.Errors = append(status.Errors, "posts database id is not configured")
				status.Databases[check.name] = false
			}
			continue
		}

		if _, err := c.GetDatabase(ctx, check.id); err != nil {
			status.Errors = append(status.Errors, fmt.Sprintf("%s database (%s): %v", check.name, check.id, err))
			status.Databases[check.name] = false
			continue
		}
		status.Databases[check.name] = true
	}

	status.Valid = len(status.Errors) == 0 && status.Databases[DatabasePosts]

	if status.Valid {
		c.logger.Info("notion connection validated", "bot", status.BotName, "databases", status.Databases)
	} else {
		c.logger.Warn("notion connection invalid", "errors", status.Errors)
	}

	return status
}
