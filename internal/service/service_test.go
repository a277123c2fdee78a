// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/jomei/notionapi"

	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/cache"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/errs"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/model"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/notion"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/transform"
)

const (
	postsDB      = "posts-db"
	authorsDB    = "authors-db"
	categoriesDB = "categories-db"
)

// fakeSource serves pages from memory and evaluates the subset of Notion
// filters used by BlogService.
type fakeSource struct {
	mu sync.Mutex

	dbs      notion.Databases
	pages    map[string][]notionapi.Page
	byID     map[string]*notionapi.Page
	blocks   map[string][]notion.BlockNode
	queryErr map[string]error
	pageErr  error
	status   notion.ConnectionStatus

	queries   map[string]int
	lastQuery map[string]notion.QueryOptions
}

func newFakeSource(dbs notion.Databases) *fakeSource {
	return &fakeSource{
		dbs:       dbs,
		pages:     map[string][]notionapi.Page{},
		byID:      map[string]*notionapi.Page{},
		blocks:    map[string][]notion.BlockNode{},
		queryErr:  map[string]error{},
		queries:   map[string]int{},
		lastQuery: map[string]notion.QueryOptions{},
		status:    notion.ConnectionStatus{Valid: true, Databases: map[string]bool{}},
	}
}

func (f *fakeSource) add(db string, pages ...*notionapi.Page) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range pages {
		f.pages[db] = append(f.pages[db], *p)
		f.byID[string(p.ID)] = p
	}
}

func (f *fakeSource) queryCount(db string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[db]
}

func (f *fakeSource) Databases() notion.Databases { return f.dbs }

func (f *fakeSource) QueryDatabase(_ context.Context, db string, opts notion.QueryOptions) (notion.QueryResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries[db]++
	f.lastQuery[db] = opts
	if err := f.queryErr[db]; err != nil {
		return notion.QueryResult{}, err
	}

	var matched []notionapi.Page
	for _, p := range f.pages[db] {
		if matchFilter(&p, opts.Filter) {
			matched = append(matched, p)
		}
	}

	start := 0
	if opts.StartCursor != "" {
		for i, p := range matched {
			if string(p.ID) == opts.StartCursor {
				start = i
			}
		}
	}
	size := opts.PageSize
	if size <= 0 {
		size = notion.MaxPageSize
	}
	end := min(start+size, len(matched))

	res := notion.QueryResult{Results: matched[start:end]}
	if end < len(matched) {
		res.HasMore = true
		res.NextCursor = string(matched[end].ID)
	}
	return res, nil
}

func (f *fakeSource) QueryAll(ctx context.Context, db string, opts notion.QueryOptions, limit int) ([]notionapi.Page, error) {
	var all []notionapi.Page
	for {
		res, err := f.QueryDatabase(ctx, db, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, res.Results...)
		if limit > 0 && len(all) >= limit {
			return all[:limit], nil
		}
		if !res.HasMore {
			return all, nil
		}
		opts.StartCursor = res.NextCursor
	}
}

func (f *fakeSource) GetPage(_ context.Context, id string) (*notionapi.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pageErr != nil {
		return nil, f.pageErr
	}
	if p, ok := f.byID[id]; ok {
		return p, nil
	}
	return nil, errs.NotionError(errs.KindNotFound, "page not found", nil)
}

func (f *fakeSource) GetPageBlocks(_ context.Context, id string, _ bool) ([]notion.BlockNode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.blocks[id], nil
}

func (f *fakeSource) ValidateConnection(context.Context) notion.ConnectionStatus {
	return f.status
}

func matchFilter(page *notionapi.Page, filter notionapi.Filter) bool {
	switch flt := filter.(type) {
	case nil:
		return true
	case notionapi.AndCompoundFilter:
		for _, sub := range flt {
			if !matchFilter(page, sub) {
				return false
			}
		}
		return true
	case *notionapi.PropertyFilter:
		return matchProperty(page.Properties[flt.Property], flt)
	}
	return false
}

func matchProperty(prop notionapi.Property, flt *notionapi.PropertyFilter) bool {
	switch {
	case flt.Select != nil:
		p, ok := prop.(*notionapi.SelectProperty)
		return ok && p.Select.Name == flt.Select.Equals
	case flt.RichText != nil:
		p, ok := prop.(*notionapi.RichTextProperty)
		return ok && transform.RichTextToPlainText(p.RichText) == flt.RichText.Equals
	case flt.Checkbox != nil:
		p, ok := prop.(*notionapi.CheckboxProperty)
		return ok && p.Checkbox == flt.Checkbox.Equals
	case flt.Relation != nil:
		p, _ := prop.(*notionapi.RelationProperty)
		var ids []string
		if p != nil {
			for _, r := range p.Relation {
				ids = append(ids, string(r.ID))
			}
		}
		if flt.Relation.IsEmpty {
			return len(ids) == 0
		}
		for _, id := range ids {
			if id == flt.Relation.Contains {
				return true
			}
		}
		return false
	}
	return false
}

func rt(s string) []notionapi.RichText {
	return []notionapi.RichText{{PlainText: s, Text: &notionapi.Text{Content: s}}}
}

// postSpec describes a posts database page.
type postSpec struct {
	id       string
	title    string
	slug     string
	status   string
	category string
	tags     []string
	excerpt  string
	author   string
	featured bool
	date     time.Time
}

func postPage(p postSpec) *notionapi.Page {
	if p.status == "" {
		p.status = "published"
	}
	props := notionapi.Properties{
		transform.PropTitle:    &notionapi.TitleProperty{Title: rt(p.title)},
		transform.PropStatus:   &notionapi.SelectProperty{Select: notionapi.Option{Name: p.status}},
		transform.PropFeatured: &notionapi.CheckboxProperty{Checkbox: p.featured},
		transform.PropExcerpt:  &notionapi.RichTextProperty{RichText: rt(p.excerpt)},
		transform.PropAuthor:   &notionapi.RelationProperty{},
	}
	if p.slug != "" {
		props[transform.PropSlug] = &notionapi.RichTextProperty{RichText: rt(p.slug)}
	}
	if p.category != "" {
		props[transform.PropCategory] = &notionapi.SelectProperty{Select: notionapi.Option{Name: p.category}}
	}
	if len(p.tags) > 0 {
		opts := make([]notionapi.Option, 0, len(p.tags))
		for _, t := range p.tags {
			opts = append(opts, notionapi.Option{Name: t})
		}
		props[transform.PropTags] = &notionapi.MultiSelectProperty{MultiSelect: opts}
	}
	if p.author != "" {
		props[transform.PropAuthor] = &notionapi.RelationProperty{
			Relation: []notionapi.Relation{{ID: notionapi.PageID(p.author)}},
		}
	}
	if !p.date.IsZero() {
		d := notionapi.Date(p.date)
		props[transform.PropPublishedDate] = &notionapi.DateProperty{Date: &notionapi.DateObject{Start: &d}}
	}
	return &notionapi.Page{
		ID:             notionapi.ObjectID(p.id),
		CreatedTime:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		LastEditedTime: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		Properties:     props,
	}
}

func authorPage(id, name, slug string) *notionapi.Page {
	props := notionapi.Properties{
		transform.PropName: &notionapi.TitleProperty{Title: rt(name)},
		transform.PropBio:  &notionapi.RichTextProperty{RichText: rt("Bio de " + name)},
	}
	if slug != "" {
		props[transform.PropSlug] = &notionapi.RichTextProperty{RichText: rt(slug)}
	}
	return &notionapi.Page{ID: notionapi.ObjectID(id), Properties: props}
}

func categoryPage(id, name, color string) *notionapi.Page {
	return &notionapi.Page{
		ID: notionapi.ObjectID(id),
		Properties: notionapi.Properties{
			transform.PropName:  &notionapi.TitleProperty{Title: rt(name)},
			transform.PropColor: &notionapi.SelectProperty{Select: notionapi.Option{Name: color}},
		},
	}
}

func day(d int) time.Time {
	return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(src *fakeSource) *BlogService {
	return New(src, cache.NewMemoryStore(discardLogger()), Options{}, discardLogger())
}

// seedPosts adds a small published corpus plus one draft.
func seedPosts(src *fakeSource) {
	src.add(postsDB,
		postPage(postSpec{id: "p1", title: "Gestão ágil na prática", slug: "gestao-agil", category: "Gestão",
			tags: []string{"Agile", "OKR"}, excerpt: "Como aplicar métodos ágeis", featured: true, date: day(10)}),
		postPage(postSpec{id: "p2", title: "Liderança servidora", slug: "lideranca-servidora", category: "Liderança",
			tags: []string{"Pessoas"}, excerpt: "O líder a serviço da equipe", date: day(9)}),
		postPage(postSpec{id: "p3", title: "OKRs para times de gestão", category: "Gestão",
			tags: []string{"OKR"}, excerpt: "Metas e resultados-chave", date: day(8)}),
		postPage(postSpec{id: "p4", title: "Estratégia em tempos incertos", slug: "estrategia", category: "Estratégia",
			tags: []string{"Planejamento"}, excerpt: "Cenários e decisões", featured: true, date: day(7)}),
		postPage(postSpec{id: "d1", title: "Rascunho", slug: "rascunho", status: "draft", date: day(11)}),
	)
}

var errNotionDown = errs.NotionError(errs.KindServiceUnavailable, "notion down", errors.New("503"))

func postSlugs(posts []model.BlogPost) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Slug)
	}
	return out
}
