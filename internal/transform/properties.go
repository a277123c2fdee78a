// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transform

import (
	"strings"
	"time"

	"github.com/jomei/notionapi"
)

// Property names of the posts database.
const (
	PropTitle         = "Title"
	PropSlug          = "Slug"
	PropStatus        = "Status"
	PropPublishedDate = "Published Date"
	PropAuthor        = "Author"
	PropCategory      = "Category"
	PropTags          = "Tags"
	PropExcerpt       = "Excerpt"
	PropFeaturedImage = "Featured Image"
	PropSEOTitle      = "SEO Title"
	PropSEODesc       = "SEO Description"
	PropReadingTime   = "Reading Time"
	PropFeatured      = "Featured"
)

// Property names shared by the authors and categories databases.
const (
	PropName        = "Name"
	PropBio         = "Bio"
	PropRole        = "Role"
	PropAvatar      = "Avatar"
	PropDescription = "Description"
	PropColor       = "Color"
	PropIcon        = "Icon"
)

// textProp returns the text of a title, rich_text, select, url, email or
// phone property. Other types and missing properties yield "".
func textProp(props notionapi.Properties, name string) string {
	switch p := props[name].(type) {
	case *notionapi.TitleProperty:
		if p != nil {
			return strings.TrimSpace(RichTextToPlainText(p.Title))
		}
	case *notionapi.RichTextProperty:
		if p != nil {
			return strings.TrimSpace(RichTextToPlainText(p.RichText))
		}
	case *notionapi.SelectProperty:
		if p != nil {
			return strings.TrimSpace(p.Select.Name)
		}
	case *notionapi.URLProperty:
		if p != nil {
			return strings.TrimSpace(p.URL)
		}
	case *notionapi.EmailProperty:
		if p != nil {
			return strings.TrimSpace(p.Email)
		}
	case *notionapi.PhoneNumberProperty:
		if p != nil {
			return strings.TrimSpace(p.PhoneNumber)
		}
	}
	return ""
}

// titleProp returns the page title. The named property wins; otherwise the
// first title-typed property is used, since every database has exactly one.
func titleProp(props notionapi.Properties, preferred string) string {
	if p, ok := props[preferred].(*notionapi.TitleProperty); ok && p != nil {
		return strings.TrimSpace(RichTextToPlainText(p.Title))
	}
	for _, prop := range props {
		if p, ok := prop.(*notionapi.TitleProperty); ok && p != nil {
			return strings.TrimSpace(RichTextToPlainText(p.Title))
		}
	}
	return ""
}

// selectProp returns the option name of a select property.
func selectProp(props notionapi.Properties, name string) string {
	if p, ok := props[name].(*notionapi.SelectProperty); ok && p != nil {
		return strings.TrimSpace(p.Select.Name)
	}
	return ""
}

// multiSelectProp returns the non-empty option names of a multi_select property.
func multiSelectProp(props notionapi.Properties, name string) []string {
	values := []string{}
	p, ok := props[name].(*notionapi.MultiSelectProperty)
	if !ok || p == nil {
		return values
	}
	for _, opt := range p.MultiSelect {
		if n := strings.TrimSpace(opt.Name); n != "" {
			values = append(values, n)
		}
	}
	return values
}

// relationProp returns the related page ids of a relation property.
func relationProp(props notionapi.Properties, name string) []string {
	var ids []string
	p, ok := props[name].(*notionapi.RelationProperty)
	if !ok || p == nil {
		return ids
	}
	for _, rel := range p.Relation {
		if rel.ID != "" {
			ids = append(ids, string(rel.ID))
		}
	}
	return ids
}

// numberProp returns the value of a number property.
func numberProp(props notionapi.Properties, name string) float64 {
	if p, ok := props[name].(*notionapi.NumberProperty); ok && p != nil {
		return p.Number
	}
	return 0
}

// checkboxProp returns the value of a checkbox property.
func checkboxProp(props notionapi.Properties, name string) bool {
	if p, ok := props[name].(*notionapi.CheckboxProperty); ok && p != nil {
		return p.Checkbox
	}
	return false
}

// dateProp returns the start of a date property.
func dateProp(props notionapi.Properties, name string) (time.Time, bool) {
	p, ok := props[name].(*notionapi.DateProperty)
	if !ok || p == nil || p.Date == nil || p.Date.Start == nil {
		return time.Time{}, false
	}
	t := time.Time(*p.Date.Start)
	return t, !t.IsZero()
}

// fileURL returns the URL of an uploaded or external file.
func fileURL(f notionapi.File) string {
	if f.File != nil && f.File.URL != "" {
		return f.File.URL
	}
	if f.External != nil && f.External.URL != "" {
		return f.External.URL
	}
	return ""
}

// firstFileProp returns the URL of the first file of a files property.
// A url property is accepted too, for databases that store image links.
func firstFileProp(props notionapi.Properties, name string) string {
	switch p := props[name].(type) {
	case *notionapi.FilesProperty:
		if p == nil {
			return ""
		}
		for _, f := range p.Files {
			if u := fileURL(f); u != "" {
				return u
			}
		}
	case *notionapi.URLProperty:
		if p != nil {
			return strings.TrimSpace(p.URL)
		}
	}
	return ""
}

// imageURL returns the URL of a Notion image object.
func imageURL(img *notionapi.Image) string {
	if img == nil {
		return ""
	}
	if img.File != nil && img.File.URL != "" {
		return img.File.URL
	}
	if img.External != nil && img.External.URL != "" {
		return img.External.URL
	}
	return ""
}

// PageCoverURL returns the cover image of a page, or "" when it has none.
func PageCoverURL(page *notionapi.Page) string {
	if page == nil {
		return ""
	}
	return imageURL(page.Cover)
}

// pageEmoji returns the emoji icon of a page, if it has one.
func pageEmoji(page *notionapi.Page) string {
	if page == nil || page.Icon == nil || page.Icon.Emoji == nil {
		return ""
	}
	return string(*page.Icon.Emoji)
}
