// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transform

import (
	"html"
	"strings"

	"github.com/jomei/notionapi"

	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/notion"
)

// BlocksToHTML renders a block tree as HTML. Unsupported block types are
// dropped. Every list item gets its own <ul> or <ol>; consecutive items are
// not merged into one list.
func BlocksToHTML(nodes []notion.BlockNode) string {
	parts := make([]string, 0, len(nodes))
	for _, node := range nodes {
		if s := blockToHTML(node); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

func blockToHTML(node notion.BlockNode) string {
	children := BlocksToHTML(node.Children)

	var out string
	switch b := node.Block.(type) {
	case *notionapi.ParagraphBlock:
		out = "<p>" + RichTextToHTML(b.Paragraph.RichText) + "</p>"
	case *notionapi.Heading1Block:
		out = "<h1>" + RichTextToHTML(b.Heading1.RichText) + "</h1>"
	case *notionapi.Heading2Block:
		out = "<h2>" + RichTextToHTML(b.Heading2.RichText) + "</h2>"
	case *notionapi.Heading3Block:
		out = "<h3>" + RichTextToHTML(b.Heading3.RichText) + "</h3>"
	case *notionapi.BulletedListItemBlock:
		return "<ul><li>" + RichTextToHTML(b.BulletedListItem.RichText) + nested(children) + "</li></ul>"
	case *notionapi.NumberedListItemBlock:
		return "<ol><li>" + RichTextToHTML(b.NumberedListItem.RichText) + nested(children) + "</li></ol>"
	case *notionapi.QuoteBlock:
		out = "<blockquote>" + RichTextToHTML(b.Quote.RichText) + "</blockquote>"
	case *notionapi.CodeBlock:
		lang := html.EscapeString(strings.ToLower(b.Code.Language))
		code := html.EscapeString(RichTextToPlainText(b.Code.RichText))
		if lang != "" {
			out = `<pre><code class="language-` + lang + `">` + code + "</code></pre>"
		} else {
			out = "<pre><code>" + code + "</code></pre>"
		}
	case *notionapi.DividerBlock:
		out = "<hr />"
	case *notionapi.ImageBlock:
		src := imageURL(&b.Image)
		if src == "" {
			return ""
		}
		caption := RichTextToPlainText(b.Image.Caption)
		img := `<img src="` + html.EscapeString(src) + `" alt="` + html.EscapeString(caption) + `" />`
		if caption != "" {
			out = "<figure>" + img + "<figcaption>" + RichTextToHTML(b.Image.Caption) + "</figcaption></figure>"
		} else {
			out = img
		}
	default:
		return ""
	}

	if children != "" {
		out += "\n" + children
	}
	return out
}

func nested(children string) string {
	if children == "" {
		return ""
	}
	return "\n" + children + "\n"
}

// listKind identifies Markdown list blocks so consecutive items stay tight.
func listKind(b notionapi.Block) string {
	switch b.(type) {
	case *notionapi.BulletedListItemBlock:
		return "ul"
	case *notionapi.NumberedListItemBlock:
		return "ol"
	}
	return ""
}

// BlocksToMarkdown renders a block tree as Markdown. Unsupported block types
// are dropped.
func BlocksToMarkdown(nodes []notion.BlockNode) string {
	var sb strings.Builder
	prevKind := ""
	for _, node := range nodes {
		s := blockToMarkdown(node)
		if s == "" {
			continue
		}
		kind := listKind(node.Block)
		if sb.Len() > 0 {
			if kind != "" && kind == prevKind {
				sb.WriteString("\n")
			} else {
				sb.WriteString("\n\n")
			}
		}
		sb.WriteString(s)
		prevKind = kind
	}
	return sb.String()
}

func blockToMarkdown(node notion.BlockNode) string {
	children := BlocksToMarkdown(node.Children)

	var out string
	switch b := node.Block.(type) {
	case *notionapi.ParagraphBlock:
		out = RichTextToMarkdown(b.Paragraph.RichText)
	case *notionapi.Heading1Block:
		out = "# " + RichTextToMarkdown(b.Heading1.RichText)
	case *notionapi.Heading2Block:
		out = "## " + RichTextToMarkdown(b.Heading2.RichText)
	case *notionapi.Heading3Block:
		out = "### " + RichTextToMarkdown(b.Heading3.RichText)
	case *notionapi.BulletedListItemBlock:
		return "- " + RichTextToMarkdown(b.BulletedListItem.RichText) + indent(children, "  ")
	case *notionapi.NumberedListItemBlock:
		return "1. " + RichTextToMarkdown(b.NumberedListItem.RichText) + indent(children, "   ")
	case *notionapi.QuoteBlock:
		out = "> " + RichTextToMarkdown(b.Quote.RichText)
	case *notionapi.CodeBlock:
		out = "```" + strings.ToLower(b.Code.Language) + "\n" + RichTextToPlainText(b.Code.RichText) + "\n```"
	case *notionapi.DividerBlock:
		out = "---"
	case *notionapi.ImageBlock:
		src := imageURL(&b.Image)
		if src == "" {
			return ""
		}
		out = "![" + RichTextToPlainText(b.Image.Caption) + "](" + src + ")"
	default:
		return ""
	}

	if children != "" {
		out += "\n\n" + children
	}
	return out
}

// indent nests child Markdown under a list item.
func indent(children, prefix string) string {
	if children == "" {
		return ""
	}
	lines := strings.Split(children, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return "\n" + strings.Join(lines, "\n")
}
