// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transform

import (
	"bytes"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/model"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/util"
)

// DefaultExcerptLength is the excerpt length used when none is given.
const DefaultExcerptLength = 160

// WordsPerMinute is the reading speed behind EstimateReadingTime.
const WordsPerMinute = 200

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// StripTags removes HTML tags from s.
func StripTags(s string) string {
	return tagPattern.ReplaceAllString(s, "")
}

// CreateExcerpt strips tags from content and shortens it to maxLength runes,
// cutting at the last space and appending "...". Content that already fits
// is returned as is, surrounding whitespace included.
func CreateExcerpt(content string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultExcerptLength
	}

	text := StripTags(content)
	if utf8.RuneCountInString(text) <= maxLength {
		return text
	}

	cut := string([]rune(text)[:maxLength])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut) + "..."
}

// EstimateReadingTime returns the minutes needed to read content, at least 1.
func EstimateReadingTime(content string) int {
	words := len(strings.Fields(StripTags(content)))
	minutes := int(math.Ceil(float64(words) / WordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// SanitizePost trims text fields, re-derives the slug so it only holds
// lowercase letters, digits and hyphens, drops empty tags and clamps the
// reading time to at least one minute. Applying it twice changes nothing.
func SanitizePost(p model.BlogPost) model.BlogPost {
	p.ID = strings.TrimSpace(p.ID)
	p.Title = strings.TrimSpace(p.Title)
	p.Slug = util.SanitizeSlug(p.Slug)
	p.Excerpt = strings.TrimSpace(p.Excerpt)
	p.Content = strings.TrimSpace(p.Content)
	p.FeaturedImage = strings.TrimSpace(p.FeaturedImage)
	p.SEO.Title = strings.TrimSpace(p.SEO.Title)
	p.SEO.Description = strings.TrimSpace(p.SEO.Description)

	tags := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	p.Tags = tags

	if p.ReadingTime < 1 {
		p.ReadingTime = 1
	}
	return p
}

var htmlPolicy = newHTMLPolicy()

func newHTMLPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^language-[a-z0-9+#-]+$`)).OnElements("code")
	return p
}

// SanitizeHTML removes anything from rendered content that is not safe
// user-generated HTML.
func SanitizeHTML(s string) string {
	return htmlPolicy.Sanitize(s)
}

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithXHTML()),
)

// MarkdownToHTML renders Markdown with GitHub flavoured extensions.
func MarkdownToHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
