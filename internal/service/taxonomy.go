// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"sort"
	"strings"

	"github.com/jomei/notionapi"

	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/errs"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/model"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/notion"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/transform"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/util"
)

func stripHyphens(id string) string {
	return strings.ReplaceAll(id, "-", "")
}

func byName() []notionapi.SortObject {
	return []notionapi.SortObject{{
		Property:  transform.PropName,
		Direction: notionapi.SortOrderASC,
	}}
}

// GetAllCategories returns the categories of the categories database, or
// the built-in defaults when none is configured or it cannot be read.
func (s *BlogService) GetAllCategories(ctx context.Context) []model.BlogCategory {
	if !s.IsCategoriesConfigured() {
		return model.DefaultCategories()
	}
	categories := errs.Safe(ctx, s.logger, "GetAllCategories", []model.BlogCategory(nil), func(ctx context.Context) ([]model.BlogCategory, error) {
		return s.categories(ctx, struct{}{})
	})
	if len(categories) == 0 {
		return model.DefaultCategories()
	}
	return categories
}

func (s *BlogService) fetchCategories(ctx context.Context, _ struct{}) ([]model.BlogCategory, error) {
	pages, err := s.source.QueryAll(ctx, s.databases.Categories, notion.QueryOptions{Sorts: byName()}, 0)
	if err != nil {
		return nil, err
	}

	categories := make([]model.BlogCategory, 0, len(pages))
	for i := range pages {
		c := transform.TransformCategory(&pages[i])
		if c.Name == "" {
			continue
		}
		categories = append(categories, c)
	}
	return categories, nil
}

// GetCategoryBySlug returns the category with slug.
func (s *BlogService) GetCategoryBySlug(ctx context.Context, slug string) (*model.BlogCategory, bool) {
	slug = util.SanitizeSlug(slug)
	if slug == "" {
		return nil, false
	}
	for _, c := range s.GetAllCategories(ctx) {
		if c.Slug == slug {
			return &c, true
		}
	}
	return nil, false
}

// GetAllAuthors returns the authors of the authors database, or only the
// default author when none is configured or it cannot be read.
func (s *BlogService) GetAllAuthors(ctx context.Context) []model.BlogAuthor {
	if !s.IsAuthorsConfigured() {
		return []model.BlogAuthor{*model.DefaultAuthor()}
	}
	authors := errs.Safe(ctx, s.logger, "GetAllAuthors", []model.BlogAuthor(nil), func(ctx context.Context) ([]model.BlogAuthor, error) {
		return s.authors(ctx, struct{}{})
	})
	if len(authors) == 0 {
		return []model.BlogAuthor{*model.DefaultAuthor()}
	}
	return authors
}

func (s *BlogService) fetchAuthors(ctx context.Context, _ struct{}) ([]model.BlogAuthor, error) {
	pages, err := s.source.QueryAll(ctx, s.databases.Authors, notion.QueryOptions{Sorts: byName()}, 0)
	if err != nil {
		return nil, err
	}

	authors := make([]model.BlogAuthor, 0, len(pages))
	for i := range pages {
		a := transform.TransformAuthor(&pages[i])
		if a.Name == "" {
			continue
		}
		authors = append(authors, a)
	}
	return authors, nil
}

// GetAuthorBySlug returns the author with slug. The default author is
// always resolvable.
func (s *BlogService) GetAuthorBySlug(ctx context.Context, slug string) (*model.BlogAuthor, bool) {
	slug = util.SanitizeSlug(slug)
	if slug == "" {
		return nil, false
	}
	for _, a := range s.GetAllAuthors(ctx) {
		if a.Slug == slug {
			return &a, true
		}
	}
	if slug == model.DefaultAuthorSlug {
		return model.DefaultAuthor(), true
	}
	return nil, false
}

// GetAuthorByID returns the author page with id.
func (s *BlogService) GetAuthorByID(ctx context.Context, id string) (*model.BlogAuthor, error) {
	if id == model.DefaultAuthorID {
		return model.DefaultAuthor(), nil
	}
	if !s.IsAuthorsConfigured() {
		return nil, errs.NotionError(errs.KindNotFound, "authors database not configured", nil)
	}
	author, err := s.authorByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &author, nil
}

func (s *BlogService) fetchAuthorByID(ctx context.Context, id string) (model.BlogAuthor, error) {
	page, err := s.source.GetPage(ctx, id)
	if err != nil {
		return model.BlogAuthor{}, err
	}
	return transform.TransformAuthor(page), nil
}

// GetAllTags counts published posts per tag, most used first.
func (s *BlogService) GetAllTags(ctx context.Context) []model.TagCount {
	counts := map[string]*model.TagCount{}
	for _, p := range s.GetPublishedPosts(ctx) {
		for _, tag := range p.Tags {
			slug := util.Slugify(tag)
			if slug == "" {
				continue
			}
			if tc, ok := counts[slug]; ok {
				tc.Count++
				continue
			}
			counts[slug] = &model.TagCount{Name: tag, Slug: slug, Count: 1}
		}
	}

	tags := make([]model.TagCount, 0, len(counts))
	for _, tc := range counts {
		tags = append(tags, *tc)
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Count != tags[j].Count {
			return tags[i].Count > tags[j].Count
		}
		return tags[i].Slug < tags[j].Slug
	})
	return tags
}
