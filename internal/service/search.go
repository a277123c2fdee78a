// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/errs"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/model"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/util"
)

// Search limits
const (
	DefaultSearchLimit = 10
	MaxSearchLimit     = 50
	MaxSuggestions     = 5
)

// Field weights of a term match.
const (
	weightTitle    = 10
	weightTag      = 5
	weightCategory = 3
	weightExcerpt  = 2
)

// searchNoise matches everything that is not a letter, digit, space,
// underscore or hyphen.
var searchNoise = regexp.MustCompile(`[^\p{L}\p{N}\s_-]`)

// SearchQuery describes a search over published posts.
type SearchQuery struct {
	Q        string
	Page     int
	Limit    int
	Category string
	Author   string
	Sort     string
}

func (q SearchQuery) normalized() SearchQuery {
	q.Q = strings.Join(strings.Fields(q.Q), " ")
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = DefaultSearchLimit
	}
	if q.Limit > MaxSearchLimit {
		q.Limit = MaxSearchLimit
	}
	q.Category = util.SanitizeSlug(q.Category)
	q.Author = util.SanitizeSlug(q.Author)
	switch q.Sort {
	case model.SearchSortDate, model.SearchSortTitle:
	default:
		q.Sort = model.SearchSortRelevance
	}
	return q
}

func (q SearchQuery) cacheKey() string {
	return strings.Join([]string{
		foldText(q.Q), itoa(q.Page), itoa(q.Limit), q.Category, q.Author, q.Sort,
	}, ":")
}

// foldText lowercases s and removes its diacritics.
func foldText(s string) string {
	return strings.ToLower(util.FoldAccents(s))
}

// searchTerms splits a query into folded terms.
func searchTerms(q string) []string {
	return strings.Fields(foldText(searchNoise.ReplaceAllString(q, " ")))
}

type scoredPost struct {
	post  model.BlogPost
	score int
}

// scorePost returns the weighted score of post for terms. Every term must
// match at least one field; otherwise the post does not match.
func scorePost(post model.BlogPost, terms []string) (int, bool) {
	title := foldText(post.Title)
	excerpt := foldText(post.Excerpt)
	tags := foldText(strings.Join(post.Tags, " "))
	category := ""
	if post.Category != nil {
		category = foldText(post.Category.Name)
	}

	total := 0
	for _, term := range terms {
		score := 0
		if strings.Contains(title, term) {
			score += weightTitle
		}
		if strings.Contains(tags, term) {
			score += weightTag
		}
		if strings.Contains(category, term) {
			score += weightCategory
		}
		if strings.Contains(excerpt, term) {
			score += weightExcerpt
		}
		if score == 0 {
			return 0, false
		}
		total += score
	}
	return total, true
}

// SearchPosts searches published posts. Matching ignores case and accents.
func (s *BlogService) SearchPosts(ctx context.Context, q SearchQuery) model.SearchResult {
	q = q.normalized()
	return errs.Safe(ctx, s.logger, "SearchPosts", model.EmptySearchResult(q.Q, q.Page, q.Limit), func(ctx context.Context) (model.SearchResult, error) {
		return s.search(ctx, q)
	})
}

func (s *BlogService) runSearch(ctx context.Context, q SearchQuery) (model.SearchResult, error) {
	published, err := s.publishedPosts(ctx, struct{}{})
	if err != nil {
		return model.SearchResult{}, err
	}

	terms := searchTerms(q.Q)
	var matched []scoredPost
	for _, p := range published {
		score, ok := scorePost(p, terms)
		if ok {
			matched = append(matched, scoredPost{post: p, score: score})
		}
	}

	result := model.EmptySearchResult(q.Q, q.Page, q.Limit)
	result.Facets = facetsOf(matched)
	if len(terms) > 0 {
		result.Suggestions = suggestionsFor(matched, published, terms)
	}

	filtered := matched[:0:0]
	for _, m := range matched {
		if q.Category != "" && (m.post.Category == nil || m.post.Category.Slug != q.Category) {
			continue
		}
		if q.Author != "" && (m.post.Author == nil || m.post.Author.Slug != q.Author) {
			continue
		}
		filtered = append(filtered, m)
	}
	sortMatches(filtered, q.Sort)

	result.Total = len(filtered)
	result.TotalPages = (result.Total + q.Limit - 1) / q.Limit
	result.HasMore = q.Page < result.TotalPages

	start := (q.Page - 1) * q.Limit
	end := min(start+q.Limit, len(filtered))
	for i := start; i < end; i++ {
		result.Posts = append(result.Posts, filtered[i].post)
	}
	return result, nil
}

func sortMatches(matches []scoredPost, order string) {
	newer := func(a, b model.BlogPost) bool { return a.PublishedAt.After(b.PublishedAt) }

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		switch order {
		case model.SearchSortDate:
			return newer(a.post, b.post)
		case model.SearchSortTitle:
			return foldText(a.post.Title) < foldText(b.post.Title)
		default:
			if a.score != b.score {
				return a.score > b.score
			}
			return newer(a.post, b.post)
		}
	})
}

func facetsOf(matches []scoredPost) model.SearchFacets {
	categories := map[string]*model.FacetCount{}
	authors := map[string]*model.FacetCount{}

	count := func(index map[string]*model.FacetCount, slug, name string) {
		if slug == "" {
			return
		}
		if fc, ok := index[slug]; ok {
			fc.Count++
			return
		}
		index[slug] = &model.FacetCount{Slug: slug, Name: name, Count: 1}
	}

	for _, m := range matches {
		if c := m.post.Category; c != nil {
			count(categories, c.Slug, c.Name)
		}
		if a := m.post.Author; a != nil {
			count(authors, a.Slug, a.Name)
		}
	}

	return model.SearchFacets{
		Categories: sortedFacets(categories),
		Authors:    sortedFacets(authors),
	}
}

func sortedFacets(index map[string]*model.FacetCount) []model.FacetCount {
	facets := make([]model.FacetCount, 0, len(index))
	for _, fc := range index {
		facets = append(facets, *fc)
	}
	sort.Slice(facets, func(i, j int) bool {
		if facets[i].Count != facets[j].Count {
			return facets[i].Count > facets[j].Count
		}
		return facets[i].Slug < facets[j].Slug
	})
	return facets
}

// suggestionsFor proposes titles of the best matches, then tags containing
// a query term.
func suggestionsFor(matches []scoredPost, published []model.BlogPost, terms []string) []string {
	ranked := make([]scoredPost, len(matches))
	copy(ranked, matches)
	sortMatches(ranked, model.SearchSortRelevance)

	suggestions := []string{}
	seen := map[string]bool{}
	add := func(s string) bool {
		key := foldText(s)
		if key == "" || seen[key] {
			return len(suggestions) < MaxSuggestions
		}
		seen[key] = true
		suggestions = append(suggestions, s)
		return len(suggestions) < MaxSuggestions
	}

	for _, m := range ranked {
		if !add(m.post.Title) {
			return suggestions
		}
	}
	for _, p := range published {
		for _, tag := range p.Tags {
			folded := foldText(tag)
			for _, term := range terms {
				if strings.Contains(folded, term) {
					if !add(tag) {
						return suggestions
					}
					break
				}
			}
		}
	}
	return suggestions
}

// GetRelatedPosts returns up to limit published posts related to post:
// same category first, then most shared tags, then newest. The post itself
// is never included.
func (s *BlogService) GetRelatedPosts(ctx context.Context, post *model.BlogPost, limit int) []model.BlogPost {
	if post == nil {
		return []model.BlogPost{}
	}
	limit = clampLimit(limit, DefaultRelatedLimit)
	return errs.Safe(ctx, s.logger, "GetRelatedPosts", []model.BlogPost{}, func(ctx context.Context) ([]model.BlogPost, error) {
		return s.related(ctx, relatedQuery{Post: *post, Limit: limit})
	})
}

func (s *BlogService) fetchRelatedPosts(ctx context.Context, q relatedQuery) ([]model.BlogPost, error) {
	published, err := s.publishedPosts(ctx, struct{}{})
	if err != nil {
		return nil, err
	}
	return rankRelated(q.Post, published, q.Limit), nil
}

func rankRelated(post model.BlogPost, candidates []model.BlogPost, limit int) []model.BlogPost {
	type ranked struct {
		post         model.BlogPost
		sameCategory bool
		sharedTags   int
	}

	var list []ranked
	for _, c := range candidates {
		if c.ID == post.ID || (c.Slug != "" && c.Slug == post.Slug) {
			continue
		}
		r := ranked{post: c}
		if post.Category != nil && c.Category != nil && post.Category.Slug == c.Category.Slug {
			r.sameCategory = true
		}
		for _, tag := range post.Tags {
			if c.HasTag(tag) {
				r.sharedTags++
			}
		}
		list = append(list, r)
	}

	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.sameCategory != b.sameCategory {
			return a.sameCategory
		}
		if a.sharedTags != b.sharedTags {
			return a.sharedTags > b.sharedTags
		}
		return a.post.PublishedAt.After(b.post.PublishedAt)
	})

	related := make([]model.BlogPost, 0, min(limit, len(list)))
	for i := 0; i < len(list) && i < limit; i++ {
		related = append(related, list[i].post)
	}
	return related
}
