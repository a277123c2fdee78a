// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transform

import (
	"math"
	"strings"

	"github.com/jomei/notionapi"

	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/model"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/util"
)

// socialProps maps author URL properties to social link keys.
var socialProps = map[string]string{
	"Website":   "website",
	"LinkedIn":  "linkedin",
	"Twitter":   "twitter",
	"Instagram": "instagram",
	"GitHub":    "github",
	"Email":     "email",
}

func provenanceOf(page *notionapi.Page) model.Provenance {
	return model.Provenance{
		NotionPageID: string(page.ID),
		LastEdited:   page.LastEditedTime,
		NotionURL:    page.URL,
	}
}

// TransformPost maps a posts database page to a BlogPost.
//
// A resolved author or category takes precedence. Without one, the category
// is synthesized from the Category select and the author becomes a stub when
// only a relation id is known, or the default author when there is none.
// Content is not filled here; the page blocks are fetched separately.
func TransformPost(page *notionapi.Page, author *model.BlogAuthor, category *model.BlogCategory) model.BlogPost {
	if page == nil {
		return model.BlogPost{
			Status:      model.PostStatusDraft,
			Author:      model.DefaultAuthor(),
			Tags:        []string{},
			ReadingTime: 1,
		}
	}
	props := page.Properties

	post := model.BlogPost{
		ID:            string(page.ID),
		Title:         titleProp(props, PropTitle),
		Slug:          textProp(props, PropSlug),
		Excerpt:       textProp(props, PropExcerpt),
		Status:        model.ParsePostStatus(selectProp(props, PropStatus)),
		FeaturedImage: firstFileProp(props, PropFeaturedImage),
		UpdatedAt:     page.LastEditedTime,
		Tags:          multiSelectProp(props, PropTags),
		Featured:      checkboxProp(props, PropFeatured),
		SEO: model.SEO{
			Title:       textProp(props, PropSEOTitle),
			Description: textProp(props, PropSEODesc),
		},
	}

	if post.Slug == "" {
		post.Slug = util.Slugify(post.Title)
	}
	if post.Slug == "" {
		post.Slug = strings.ReplaceAll(string(page.ID), "-", "")
	}

	if published, ok := dateProp(props, PropPublishedDate); ok {
		post.PublishedAt = published
	} else {
		post.PublishedAt = page.CreatedTime
	}

	// Content is normally empty at this point, so the estimate rarely runs.
	if stored := numberProp(props, PropReadingTime); stored > 0 {
		post.ReadingTime = int(math.Round(stored))
	} else {
		post.ReadingTime = EstimateReadingTime(post.Content)
	}
	if post.ReadingTime < 1 {
		post.ReadingTime = 1
	}

	if post.SEO.Title == "" {
		post.SEO.Title = post.Title
	}
	if post.SEO.Description == "" {
		post.SEO.Description = post.Excerpt
	}

	switch {
	case category != nil:
		post.Category = category
	default:
		if name := selectProp(props, PropCategory); name != "" {
			post.Category = CategoryStub(name)
		}
	}

	switch authorIDs := relationProp(props, PropAuthor); {
	case author != nil:
		post.Author = author
	case len(authorIDs) > 0:
		post.Author = model.StubAuthor(authorIDs[0])
	default:
		post.Author = model.DefaultAuthor()
	}

	return post
}

// AuthorRelationID returns the first related author page id of a post page.
func AuthorRelationID(page *notionapi.Page) string {
	if page == nil {
		return ""
	}
	ids := relationProp(page.Properties, PropAuthor)
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}

// CategoryName returns the Category select value of a post page.
func CategoryName(page *notionapi.Page) string {
	if page == nil {
		return ""
	}
	return selectProp(page.Properties, PropCategory)
}

// StatusName returns the raw Status select option of a posts page.
func StatusName(page *notionapi.Page) string {
	if page == nil {
		return ""
	}
	return selectProp(page.Properties, PropStatus)
}

// CategoryStub builds a category from a select option name alone.
func CategoryStub(name string) *model.BlogCategory {
	slug := util.Slugify(name)
	return &model.BlogCategory{
		ID:           "category-" + slug,
		Name:         name,
		Slug:         slug,
		Color:        model.DefaultColor,
		ColorClasses: model.ColorClassesFor(model.DefaultColor),
	}
}

// TransformAuthor maps an authors database page to a BlogAuthor.
func TransformAuthor(page *notionapi.Page) model.BlogAuthor {
	if page == nil {
		return model.BlogAuthor{SocialLinks: map[string]string{}}
	}
	props := page.Properties

	author := model.BlogAuthor{
		ID:          string(page.ID),
		Name:        titleProp(props, PropName),
		Slug:        textProp(props, PropSlug),
		Bio:         textProp(props, PropBio),
		Role:        textProp(props, PropRole),
		Avatar:      firstFileProp(props, PropAvatar),
		SocialLinks: make(map[string]string),
		Provenance:  provenanceOf(page),
	}

	if author.Slug == "" {
		author.Slug = util.Slugify(author.Name)
	}

	for prop, key := range socialProps {
		if v := textProp(props, prop); v != "" {
			author.SocialLinks[key] = v
		}
	}

	return author
}

// TransformCategory maps a categories database page to a BlogCategory.
func TransformCategory(page *notionapi.Page) model.BlogCategory {
	if page == nil {
		return model.BlogCategory{Color: model.DefaultColor, ColorClasses: model.ColorClassesFor(model.DefaultColor)}
	}
	props := page.Properties

	category := model.BlogCategory{
		ID:          string(page.ID),
		Name:        titleProp(props, PropName),
		Slug:        textProp(props, PropSlug),
		Description: textProp(props, PropDescription),
		Color:       model.ParseColor(selectProp(props, PropColor)),
		Icon:        textProp(props, PropIcon),
		Provenance:  provenanceOf(page),
	}

	if category.Slug == "" {
		category.Slug = util.Slugify(category.Name)
	}
	if category.Icon == "" {
		category.Icon = pageEmoji(page)
	}
	category.ColorClasses = model.ColorClassesFor(category.Color)

	return category
}
