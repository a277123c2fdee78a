// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package transform converts Notion pages and blocks into blog domain
// objects and rendered content. Every function here is pure and tolerates
// missing or malformed input by degrading to zero values.
package transform

import (
	"html"
	"strings"

	"github.com/jomei/notionapi"
)

// plainTextOf returns the text of a rich text run, falling back to the raw
// content when the API did not fill plain_text.
func plainTextOf(item notionapi.RichText) string {
	if item.PlainText != "" {
		return item.PlainText
	}
	if item.Text != nil {
		return item.Text.Content
	}
	return ""
}

// linkOf returns the link target of a rich text run, if any.
func linkOf(item notionapi.RichText) string {
	if item.Href != "" {
		return item.Href
	}
	if item.Text != nil && item.Text.Link != nil {
		return item.Text.Link.Url
	}
	return ""
}

// RichTextToPlainText concatenates the plain text of every run in order.
func RichTextToPlainText(items []notionapi.RichText) string {
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString(plainTextOf(item))
	}
	return sb.String()
}

// RichTextToHTML renders rich text runs as inline HTML. Annotations nest in
// a fixed order: strong, em, code, del, u. Links wrap the annotated text.
func RichTextToHTML(items []notionapi.RichText) string {
	var sb strings.Builder
	for _, item := range items {
		text := html.EscapeString(plainTextOf(item))

		if a := item.Annotations; a != nil {
			if a.Bold {
				text = "<strong>" + text + "</strong>"
			}
			if a.Italic {
				text = "<em>" + text + "</em>"
			}
			if a.Code {
				text = "<code>" + text + "</code>"
			}
			if a.Strikethrough {
				text = "<del>" + text + "</del>"
			}
			if a.Underline {
				text = "<u>" + text + "</u>"
			}
		}

		if href := linkOf(item); href != "" {
			text = `<a href="` + html.EscapeString(href) + `">` + text + "</a>"
		}

		sb.WriteString(text)
	}
	return sb.String()
}

// RichTextToMarkdown renders rich text runs as inline Markdown. Underline
// has no Markdown form and is dropped.
func RichTextToMarkdown(items []notionapi.RichText) string {
	var sb strings.Builder
	for _, item := range items {
		text := plainTextOf(item)
		if text == "" {
			continue
		}

		if a := item.Annotations; a != nil {
			if a.Code {
				text = "`" + text + "`"
			}
			if a.Bold {
				text = "**" + text + "**"
			}
			if a.Italic {
				text = "*" + text + "*"
			}
			if a.Strikethrough {
				text = "~~" + text + "~~"
			}
		}

		if href := linkOf(item); href != "" {
			text = "[" + text + "](" + href + ")"
		}

		sb.WriteString(text)
	}
	return sb.String()
}
