// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jomei/notionapi"
	"golang.org/x/sync/errgroup"

	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/errs"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/model"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/notion"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/transform"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/util"
)

func itoa(n int) string {
	return strconv.Itoa(n)
}

func listSuffix(q PostQuery) string {
	return itoa(q.PageSize) + ":" + q.Cursor
}

func (s *BlogService) publishedFilter() *notionapi.PropertyFilter {
	return &notionapi.PropertyFilter{
		Property: transform.PropStatus,
		Select:   &notionapi.SelectFilterCondition{Equals: s.opts.PublishedStatus},
	}
}

// publishedAnd combines the published filter with extra conditions.
func (s *BlogService) publishedAnd(filters ...notionapi.Filter) notionapi.Filter {
	if len(filters) == 0 {
		return s.publishedFilter()
	}
	return notionapi.AndCompoundFilter(append([]notionapi.Filter{s.publishedFilter()}, filters...))
}

func newestFirst() []notionapi.SortObject {
	return []notionapi.SortObject{{
		Property:  transform.PropPublishedDate,
		Direction: notionapi.SortOrderDESC,
	}}
}

// GetAllPosts returns one page of published posts, newest first.
func (s *BlogService) GetAllPosts(ctx context.Context, q PostQuery) model.PostList {
	q = q.normalized()
	return errs.Safe(ctx, s.logger, "GetAllPosts", model.EmptyPostList(), func(ctx context.Context) (model.PostList, error) {
		return s.allPosts(ctx, q)
	})
}

func (s *BlogService) fetchPosts(ctx context.Context, q PostQuery) (model.PostList, error) {
	return s.queryPostList(ctx, s.publishedAnd(), q)
}

func (s *BlogService) queryPostList(ctx context.Context, filter notionapi.Filter, q PostQuery) (model.PostList, error) {
	result, err := s.source.QueryDatabase(ctx, s.databases.Posts, notion.QueryOptions{
		Filter:      filter,
		Sorts:       newestFirst(),
		PageSize:    q.PageSize,
		StartCursor: q.Cursor,
	})
	if err != nil {
		return model.PostList{}, err
	}

	return model.PostList{
		Posts:      s.buildPosts(ctx, result.Results),
		HasMore:    result.HasMore,
		NextCursor: result.NextCursor,
	}, nil
}

// GetPublishedPosts returns every published post up to the configured cap.
func (s *BlogService) GetPublishedPosts(ctx context.Context) []model.BlogPost {
	return errs.Safe(ctx, s.logger, "GetPublishedPosts", []model.BlogPost{}, func(ctx context.Context) ([]model.BlogPost, error) {
		return s.publishedPosts(ctx, struct{}{})
	})
}

func (s *BlogService) fetchPublishedPosts(ctx context.Context, _ struct{}) ([]model.BlogPost, error) {
	pages, err := s.source.QueryAll(ctx, s.databases.Posts, notion.QueryOptions{
		Filter: s.publishedAnd(),
		Sorts:  newestFirst(),
	}, s.opts.MaxPosts)
	if err != nil {
		return nil, err
	}
	return s.buildPosts(ctx, pages), nil
}

// GetFeaturedPosts returns up to limit published posts marked as featured.
func (s *BlogService) GetFeaturedPosts(ctx context.Context, limit int) []model.BlogPost {
	limit = clampLimit(limit, DefaultFeaturedLimit)
	return errs.Safe(ctx, s.logger, "GetFeaturedPosts", []model.BlogPost{}, func(ctx context.Context) ([]model.BlogPost, error) {
		return s.featuredPosts(ctx, limit)
	})
}

func (s *BlogService) fetchFeaturedPosts(ctx context.Context, limit int) ([]model.BlogPost, error) {
	featured := &notionapi.PropertyFilter{
		Property: transform.PropFeatured,
		Checkbox: &notionapi.CheckboxFilterCondition{Equals: true},
	}
	list, err := s.queryPostList(ctx, s.publishedAnd(featured), PostQuery{PageSize: limit})
	if err != nil {
		return nil, err
	}
	return list.Posts, nil
}

// GetRecentPosts returns the limit newest published posts.
func (s *BlogService) GetRecentPosts(ctx context.Context, limit int) []model.BlogPost {
	limit = clampLimit(limit, DefaultRecentLimit)
	return s.GetAllPosts(ctx, PostQuery{PageSize: limit}).Posts
}

// GetPostBySlug returns the published post with slug. The second result
// is false when no such post exists or it could not be loaded.
func (s *BlogService) GetPostBySlug(ctx context.Context, slug string) (*model.BlogPost, bool) {
	slug = util.SanitizeSlug(slug)
	if slug == "" {
		return nil, false
	}

	post, err := s.postBySlug(ctx, slug)
	if err != nil {
		if !errors.Is(err, errs.ErrNotFound) {
			s.logger.Error("content fetch failed, serving fallback",
				"op", "GetPostBySlug", "slug", slug, "kind", errs.KindOf(err), "error", err)
		}
		return nil, false
	}
	return &post, true
}

func (s *BlogService) fetchPostBySlug(ctx context.Context, slug string) (model.BlogPost, error) {
	bySlug := &notionapi.PropertyFilter{
		Property: transform.PropSlug,
		RichText: &notionapi.TextFilterCondition{Equals: slug},
	}
	result, err := s.source.QueryDatabase(ctx, s.databases.Posts, notion.QueryOptions{
		Filter:   s.publishedAnd(bySlug),
		PageSize: 1,
	})
	if err != nil {
		return model.BlogPost{}, err
	}
	if posts := s.buildPosts(ctx, result.Results); len(posts) > 0 {
		return posts[0], nil
	}

	// Posts without a Slug property derive it from the title, so the
	// property filter cannot find them.
	published, err := s.publishedPosts(ctx, struct{}{})
	if err != nil {
		return model.BlogPost{}, err
	}
	for _, p := range published {
		if p.Slug == slug {
			return p, nil
		}
	}
	return model.BlogPost{}, errs.NotionError(errs.KindNotFound, "post not found: "+slug, nil)
}

// GetPostBySlugWithContent returns the post with slug and its rendered
// content.
func (s *BlogService) GetPostBySlugWithContent(ctx context.Context, slug string) (*model.BlogPost, bool) {
	post, ok := s.GetPostBySlug(ctx, slug)
	if !ok {
		return nil, false
	}
	post.Content = s.GetPostContent(ctx, post.ID)
	return post, true
}

// GetPostContent renders the blocks of a page as sanitized HTML. Failures
// yield an empty string.
func (s *BlogService) GetPostContent(ctx context.Context, pageID string) string {
	if pageID == "" {
		return ""
	}
	return errs.Safe(ctx, s.logger, "GetPostContent", "", func(ctx context.Context) (string, error) {
		return s.postContent(ctx, pageID)
	})
}

func (s *BlogService) fetchPostContent(ctx context.Context, pageID string) (string, error) {
	nodes, err := s.source.GetPageBlocks(ctx, pageID, true)
	if err != nil {
		return "", err
	}

	if s.opts.Renderer == RendererMarkdown {
		html, err := transform.MarkdownToHTML(transform.BlocksToMarkdown(nodes))
		if err != nil {
			return "", errs.New(errs.KindValidation, "render markdown", err)
		}
		return transform.SanitizeHTML(html), nil
	}
	return transform.SanitizeHTML(transform.BlocksToHTML(nodes)), nil
}

// GetPostsByCategory returns one page of published posts in the category
// with slug. Unknown categories yield an empty list.
func (s *BlogService) GetPostsByCategory(ctx context.Context, slug string, q PostQuery) model.PostList {
	q = q.normalized()
	slug = util.SanitizeSlug(slug)
	return errs.Safe(ctx, s.logger, "GetPostsByCategory", model.EmptyPostList(), func(ctx context.Context) (model.PostList, error) {
		return s.categoryPosts(ctx, slugQuery{Slug: slug, Query: q})
	})
}

func (s *BlogService) fetchPostsByCategory(ctx context.Context, q slugQuery) (model.PostList, error) {
	category, ok := s.GetCategoryBySlug(ctx, q.Slug)
	if !ok {
		return model.EmptyPostList(), nil
	}
	byCategory := &notionapi.PropertyFilter{
		Property: transform.PropCategory,
		Select:   &notionapi.SelectFilterCondition{Equals: category.Name},
	}
	return s.queryPostList(ctx, s.publishedAnd(byCategory), q.Query)
}

// GetPostsByAuthor returns one page of published posts by the author with
// slug. The default author owns the posts without an author relation.
func (s *BlogService) GetPostsByAuthor(ctx context.Context, slug string, q PostQuery) model.PostList {
	q = q.normalized()
	slug = util.SanitizeSlug(slug)
	return errs.Safe(ctx, s.logger, "GetPostsByAuthor", model.EmptyPostList(), func(ctx context.Context) (model.PostList, error) {
		return s.authorPosts(ctx, slugQuery{Slug: slug, Query: q})
	})
}

func (s *BlogService) fetchPostsByAuthor(ctx context.Context, q slugQuery) (model.PostList, error) {
	author, ok := s.GetAuthorBySlug(ctx, q.Slug)
	if !ok {
		return model.EmptyPostList(), nil
	}

	cond := &notionapi.RelationFilterCondition{Contains: author.ID}
	if author.ID == model.DefaultAuthorID {
		cond = &notionapi.RelationFilterCondition{IsEmpty: true}
	}
	byAuthor := &notionapi.PropertyFilter{Property: transform.PropAuthor, Relation: cond}
	return s.queryPostList(ctx, s.publishedAnd(byAuthor), q.Query)
}

// GetPostsByTag returns the published posts carrying tag, ignoring case.
func (s *BlogService) GetPostsByTag(ctx context.Context, tag string) []model.BlogPost {
	posts := []model.BlogPost{}
	if tag == "" {
		return posts
	}
	for _, p := range s.GetPublishedPosts(ctx) {
		if p.HasTag(tag) || tagSlugMatches(p.Tags, tag) {
			posts = append(posts, p)
		}
	}
	return posts
}

func tagSlugMatches(tags []string, slug string) bool {
	for _, t := range tags {
		if util.Slugify(t) == slug {
			return true
		}
	}
	return false
}

// buildPosts transforms pages into posts, resolving authors and categories
// concurrently. A failed lookup leaves the relation to the transform
// fallbacks and never drops the post. Pages that are not published are
// skipped.
func (s *BlogService) buildPosts(ctx context.Context, pages []notionapi.Page) []model.BlogPost {
	if len(pages) == 0 {
		return []model.BlogPost{}
	}

	authors := s.authorIndex(ctx)
	categories := s.categoryIndex(ctx)

	built := make([]model.BlogPost, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for i := range pages {
		i := i
		g.Go(func() error {
			page := &pages[i]
			author := s.resolveAuthor(gctx, page, authors)
			category := categories[util.Slugify(transform.CategoryName(page))]
			post := transform.SanitizePost(transform.TransformPost(page, author, category))
			if s.isPublishedStatus(transform.StatusName(page)) {
				post.Status = model.PostStatusPublished
			}
			built[i] = post
			return nil
		})
	}
	_ = g.Wait()

	posts := make([]model.BlogPost, 0, len(built))
	for _, p := range built {
		if p.IsPublished() {
			posts = append(posts, p)
		}
	}
	return posts
}

// isPublishedStatus reports whether a Status option is the configured
// published option, ignoring case.
func (s *BlogService) isPublishedStatus(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), strings.TrimSpace(s.opts.PublishedStatus))
}

func (s *BlogService) resolveAuthor(ctx context.Context, page *notionapi.Page, index map[string]*model.BlogAuthor) *model.BlogAuthor {
	id := transform.AuthorRelationID(page)
	if id == "" {
		return nil
	}
	if a, ok := index[id]; ok {
		return a
	}
	if !s.IsAuthorsConfigured() {
		return nil
	}

	author, err := s.authorByID(ctx, id)
	if err != nil {
		s.logger.Warn("author lookup failed", "author_id", id, "error", err)
		return nil
	}
	return &author
}

// authorIndex maps author page ids to authors. Relation ids may come with
// or without hyphens, so both forms are indexed.
func (s *BlogService) authorIndex(ctx context.Context) map[string]*model.BlogAuthor {
	index := map[string]*model.BlogAuthor{}
	if !s.IsAuthorsConfigured() {
		return index
	}
	for _, a := range s.GetAllAuthors(ctx) {
		a := a
		index[a.ID] = &a
		index[stripHyphens(a.ID)] = &a
	}
	return index
}

func (s *BlogService) categoryIndex(ctx context.Context) map[string]*model.BlogCategory {
	index := map[string]*model.BlogCategory{}
	for _, c := range s.GetAllCategories(ctx) {
		c := c
		index[c.Slug] = &c
		index[util.Slugify(c.Name)] = &c
	}
	return index
}

func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > notion.MaxPageSize {
		return notion.MaxPageSize
	}
	return limit
}
