// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package notion

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/jomei/notionapi"

	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/errs"
)

// Notion API error codes
const (
	codeObjectNotFound     = "object_not_found"
	codeUnauthorized       = "unauthorized"
	codeRestrictedResource = "restricted_resource"
	codeRateLimited        = "rate_limited"
	codeServiceUnavailable = "service_unavailable"
)

// translateError maps an SDK error to a BlogError. The SDK message is kept
// and the original error stays reachable through Unwrap.
func translateError(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errs.NotionError(errs.KindServiceUnavailable, op+": notion request timed out", err)
	}

	var apiErr *notionapi.Error
	if errors.As(err, &apiErr) {
		code := string(apiErr.Code)
		switch {
		case code == codeObjectNotFound || apiErr.Status == http.StatusNotFound:
			return errs.NotionError(errs.KindNotFound,
				op+": notion database or page not found; check the id and that the integration has access", err).
				WithDetail("notion_code", code)
		case code == codeUnauthorized || apiErr.Status == http.StatusUnauthorized:
			return errs.NotionError(errs.KindUnauthorized,
				op+": notion rejected the credentials; check NOTION_TOKEN", err).
				WithDetail("notion_code", code)
		case code == codeRestrictedResource || apiErr.Status == http.StatusForbidden:
			return errs.NotionError(errs.KindUnauthorized,
				op+": notion integration lacks access to this resource; share it with the integration", err).
				WithDetail("notion_code", code)
		case code == codeRateLimited || apiErr.Status == http.StatusTooManyRequests:
			return errs.NotionError(errs.KindRateLimited, op+": notion rate limit exceeded", err).
				WithDetail("notion_code", code)
		case code == codeServiceUnavailable ||
			apiErr.Status == http.StatusServiceUnavailable ||
			apiErr.Status == http.StatusBadGateway ||
			apiErr.Status == http.StatusGatewayTimeout:
			return errs.NotionError(errs.KindServiceUnavailable, op+": notion service unavailable", err).
				WithDetail("notion_code", code)
		}
		return errs.NotionError(errs.KindNotion, op+": notion api error: "+apiErr.Message, err).
			WithDetail("notion_code", code)
	}

	// The SDK reports exhausted 429 retries with its own error type.
	if strings.Contains(strings.ToLower(err.Error()), "rate limit") {
		return errs.NotionError(errs.KindRateLimited, op+": notion rate limit exceeded", err)
	}

	return errs.NotionError(errs.KindNotion, op+": notion api error", err)
}
