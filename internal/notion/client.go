// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package notion

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/jomei/notionapi"
	"golang.org/x/time/rate"

	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/errs"
)

// MaxPageSize is the largest page size the Notion API accepts.
const MaxPageSize = 100

// maxPages bounds pagination loops against a misbehaving cursor.
const maxPages = 1000

// Databases holds the configured database ids. Only Posts is required.
type Databases struct {
	Posts      string
	Authors    string
	Categories string
}

// Options configures a Client.
type Options struct {
	Token          string
	Databases      Databases
	RequestTimeout time.Duration
	RateLimit      float64 // requests per second, 0 = unlimited
	RateBurst      int
	Retry          errs.RetryConfig
	HTTPClient     *http.Client
}

// Client is the adapter between the pipeline and the Notion API.
type Client struct {
	api       API
	databases Databases
	limiter   *rate.Limiter
	timeout   time.Duration
	retry     errs.RetryConfig
	logger    *slog.Logger
}

// QueryOptions are the parameters of a database query.
type QueryOptions struct {
	Filter      notionapi.Filter
	Sorts       []notionapi.SortObject
	PageSize    int
	StartCursor string
}

// QueryResult is one page of database query results.
type QueryResult struct {
	Results    []notionapi.Page
	HasMore    bool
	NextCursor string
}

// BlockNode is a block with its recursively fetched children.
type BlockNode struct {
	Block    notionapi.Block
	Children []BlockNode
}

// New creates a Client backed by the Notion SDK.
func New(opts Options, logger *slog.Logger) (*Client, error) {
	if opts.Token == "" {
		return nil, errors.New("notion token is required")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	sdk := notionapi.NewClient(notionapi.Token(opts.Token), notionapi.WithHTTPClient(httpClient))
	return NewWithAPI(NewSDKAPI(sdk), opts, logger), nil
}

// NewWithAPI creates a Client over an arbitrary API implementation.
func NewWithAPI(api API, opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	limit := rate.Inf
	burst := opts.RateBurst
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
		if burst <= 0 {
			burst = 1
		}
	}

	return &Client{
		api:       api,
		databases: opts.Databases,
		limiter:   rate.NewLimiter(limit, burst),
		timeout:   opts.RequestTimeout,
		retry:     opts.Retry,
		logger:    logger.With("component", "notion"),
	}
}

// Databases returns the configured database ids.
func (c *Client) Databases() Databases {
	return c.databases
}

// call runs fn under the rate limiter, the per-request timeout and the
// retry policy, translating SDK errors.
func call[T any](ctx context.Context, c *Client, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := errs.WithRetry(ctx, c.retry, c.logger, op, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		callCtx := ctx
		if c.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}

		r, err := fn(callCtx)
		if err != nil {
			return translateError(op, err)
		}
		result = r
		return nil
	})
	return result, err
}

// QueryDatabase runs one page of a database query.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, opts QueryOptions) (QueryResult, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	req := &notionapi.DatabaseQueryRequest{
		Filter:      opts.Filter,
		Sorts:       opts.Sorts,
		PageSize:    pageSize,
		StartCursor: notionapi.Cursor(opts.StartCursor),
	}

	resp, err := call(ctx, c, "databases.query", func(ctx context.Context) (*notionapi.DatabaseQueryResponse, error) {
		return c.api.QueryDatabase(ctx, notionapi.DatabaseID(databaseID), req)
	})
	if err != nil {
		return QueryResult{}, err
	}
	if resp == nil {
		return QueryResult{Results: []notionapi.Page{}}, nil
	}

	return QueryResult{
		Results:    resp.Results,
		HasMore:    resp.HasMore,
		NextCursor: string(resp.NextCursor),
	}, nil
}

// QueryAll follows cursors until the query is exhausted or limit pages
// have been collected (limit <= 0 means no limit).
func (c *Client) QueryAll(ctx context.Context, databaseID string, opts QueryOptions, limit int) ([]notionapi.Page, error) {
	var pages []notionapi.Page
	cursor := opts.StartCursor

	for i := 0; i < maxPages; i++ {
		opts.StartCursor = cursor
		res, err := c.QueryDatabase(ctx, databaseID, opts)
		if err != nil {
			return nil, err
		}
		pages = append(pages, res.Results...)

		if limit > 0 && len(pages) >= limit {
			return pages[:limit], nil
		}
		if !res.HasMore || res.NextCursor == "" {
			break
		}
		cursor = res.NextCursor
	}

	return pages, nil
}

// GetPage retrieves a single page.
func (c *Client) GetPage(ctx context.Context, pageID string) (*notionapi.Page, error) {
	return call(ctx, c, "pages.retrieve", func(ctx context.Context) (*notionapi.Page, error) {
		return c.api.GetPage(ctx, notionapi.PageID(pageID))
	})
}

// GetDatabase retrieves a database and its property schema.
func (c *Client) GetDatabase(ctx context.Context, databaseID string) (*notionapi.Database, error) {
	return call(ctx, c, "databases.retrieve", func(ctx context.Context) (*notionapi.Database, error) {
		return c.api.GetDatabase(ctx, notionapi.DatabaseID(databaseID))
	})
}

// GetPageBlocks lists every block of a page. With includeChildren, nested
// blocks are fetched recursively; a failing subtree is logged and the block
// is kept without children.
func (c *Client) GetPageBlocks(ctx context.Context, pageID string, includeChildren bool) ([]BlockNode, error) {
	blocks, err := c.listChildren(ctx, pageID)
	if err != nil {
		return nil, err
	}

	nodes := make([]BlockNode, 0, len(blocks))
	for _, b := range blocks {
		if b == nil {
			continue
		}
		node := BlockNode{Block: b}
		if includeChildren && b.GetHasChildren() {
			children, err := c.GetPageBlocks(ctx, string(b.GetID()), true)
			if err != nil {
				c.logger.Warn("failed to fetch child blocks",
					"page_id", pageID,
					"block_id", string(b.GetID()),
					"error", err)
			} else {
				node.Children = children
			}
		}
		nodes = append(nodes, node)
	}

	return nodes, nil
}

// listChildren paginates the direct children of a block.
func (c *Client) listChildren(ctx context.Context, blockID string) ([]notionapi.Block, error) {
	var all []notionapi.Block
	cursor := ""

	for i := 0; i < maxPages; i++ {
		pagination := &notionapi.Pagination{
			StartCursor: notionapi.Cursor(cursor),
			PageSize:    MaxPageSize,
		}

		resp, err := call(ctx, c, "blocks.children.list", func(ctx context.Context) (*notionapi.GetChildrenResponse, error) {
			return c.api.GetBlockChildren(ctx, notionapi.BlockID(blockID), pagination)
		})
		if err != nil {
			return nil, err
		}
		if resp == nil {
			break
		}

		all = append(all, resp.Results...)
		next := string(resp.NextCursor)
		if !resp.HasMore || next == "" {
			break
		}
		cursor = next
	}

	return all, nil
}
