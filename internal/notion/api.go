// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package notion adapts the Notion SDK to the content pipeline: paginated
// database queries, page and block retrieval, connection validation and
// typed error translation.
package notion

import (
	"context"

	"github.com/jomei/notionapi"
)

// API is the subset of the Notion SDK the adapter depends on.
type API interface {
	QueryDatabase(ctx context.Context, id notionapi.DatabaseID, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)
	GetDatabase(ctx context.Context, id notionapi.DatabaseID) (*notionapi.Database, error)
	GetPage(ctx context.Context, id notionapi.PageID) (*notionapi.Page, error)
	GetBlockChildren(ctx context.Context, id notionapi.BlockID, pagination *notionapi.Pagination) (*notionapi.GetChildrenResponse, error)
	Me(ctx context.Context) (*notionapi.User, error)
}

// sdkAPI forwards API calls to a notionapi.Client.
type sdkAPI struct {
	client *notionapi.Client
}

// NewSDKAPI wraps an SDK client.
func NewSDKAPI(client *notionapi.Client) API {
	return &sdkAPI{client: client}
}

func (s *sdkAPI) QueryDatabase(ctx context.Context, id notionapi.DatabaseID, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	return s.client.Database.Query(ctx, id, req)
}

func (s *sdkAPI) GetDatabase(ctx context.Context, id notionapi.DatabaseID) (*notionapi.Database, error) {
	return s.client.Database.Get(ctx, id)
}

func (s *sdkAPI) GetPage(ctx context.Context, id notionapi.PageID) (*notionapi.Page, error) {
	return s.client.Page.Get(ctx, id)
}

func (s *sdkAPI) GetBlockChildren(ctx context.Context, id notionapi.BlockID, pagination *notionapi.Pagination) (*notionapi.GetChildrenResponse, error) {
	return s.client.Block.GetChildren(ctx, id, pagination)
}

func (s *sdkAPI) Me(ctx context.Context) (*notionapi.User, error) {
	return s.client.User.Me(ctx)
}

var _ API = (*sdkAPI)(nil)
