// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Search sort orders
const (
	SearchSortRelevance = "relevance"
	SearchSortDate      = "date"
	SearchSortTitle     = "title"
)

// FacetCount is the number of matching posts for one facet value.
type FacetCount struct {
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// SearchFacets groups facet counts of a search.
type SearchFacets struct {
	Categories []FacetCount `json:"categories"`
	Authors    []FacetCount `json:"authors"`
}

// SearchResult is a paginated page of search matches.
type SearchResult struct {
	Query       string       `json:"query"`
	Posts       []BlogPost   `json:"posts"`
	Total       int          `json:"total"`
	Page        int          `json:"page"`
	Limit       int          `json:"limit"`
	TotalPages  int          `json:"total_pages"`
	HasMore     bool         `json:"has_more"`
	Facets      SearchFacets `json:"facets"`
	Suggestions []string     `json:"suggestions"`
}

// EmptySearchResult returns the safe fallback shape for a failed search.
func EmptySearchResult(query string, page, limit int) SearchResult {
	return SearchResult{
		Query:       query,
		Posts:       []BlogPost{},
		Page:        page,
		Limit:       limit,
		Facets:      SearchFacets{Categories: []FacetCount{}, Authors: []FacetCount{}},
		Suggestions: []string{},
	}
}

// TagCount is the number of published posts carrying a tag.
type TagCount struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

// HomepageData bundles the content shown on the home page.
type HomepageData struct {
	Featured   []BlogPost     `json:"featured"`
	Recent     []BlogPost     `json:"recent"`
	Categories []BlogCategory `json:"categories"`
}
