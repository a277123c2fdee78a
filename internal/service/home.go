// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/cache"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/errs"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/model"
)

// GetHomepageData returns the featured and recent posts and the categories
// shown on the home page.
func (s *BlogService) GetHomepageData(ctx context.Context) model.HomepageData {
	data := errs.Safe(ctx, s.logger, "GetHomepageData", model.HomepageData{}, func(ctx context.Context) (model.HomepageData, error) {
		return s.homepage(ctx, struct{}{})
	})
	if data.Categories == nil {
		return model.HomepageData{
			Featured:   []model.BlogPost{},
			Recent:     []model.BlogPost{},
			Categories: s.GetAllCategories(ctx),
		}
	}
	return data
}

func (s *BlogService) fetchHomepage(ctx context.Context, _ struct{}) (model.HomepageData, error) {
	var data model.HomepageData

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		featured, err := s.featuredPosts(gctx, DefaultFeaturedLimit)
		data.Featured = featured
		return err
	})
	g.Go(func() error {
		recent, err := s.allPosts(gctx, PostQuery{PageSize: DefaultRecentLimit}.normalized())
		data.Recent = recent.Posts
		return err
	})
	g.Go(func() error {
		data.Categories = s.GetAllCategories(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return model.HomepageData{}, err
	}
	return data, nil
}

// Revalidate drops the cached entries of every policy carrying one of tags
// and returns the names of the cleared policies. TagAll clears the whole
// cache. Unknown tags are ignored.
func (s *BlogService) Revalidate(ctx context.Context, tags ...string) ([]string, error) {
	cleared := []string{}
	if s.store == nil {
		return cleared, nil
	}

	for _, tag := range tags {
		if tag == cache.TagAll {
			if err := s.store.Clear(ctx); err != nil {
				return cleared, err
			}
			cleared = cleared[:0]
			for _, p := range cache.Policies() {
				cleared = append(cleared, p.Name)
			}
			return cleared, nil
		}

		if !cache.KnownTag(tag) {
			s.logger.Warn("ignoring unknown revalidation tag", "tag", tag)
			continue
		}
		names, err := s.store.RevalidateTag(ctx, tag)
		if err != nil {
			return cleared, err
		}
		for _, name := range names {
			if !slices.Contains(cleared, name) {
				cleared = append(cleared, name)
			}
		}
	}
	return cleared, nil
}

// Warm loads the most requested content into the cache.
func (s *BlogService) Warm(ctx context.Context) error {
	if _, err := s.homepage(ctx, struct{}{}); err != nil {
		return err
	}
	if _, err := s.allPosts(ctx, PostQuery{}.normalized()); err != nil {
		return err
	}
	if _, err := s.publishedPosts(ctx, struct{}{}); err != nil {
		return err
	}
	s.GetAllCategories(ctx)
	s.GetAllAuthors(ctx)
	return nil
}
