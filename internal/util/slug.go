// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides URL slug generation and validation with Unicode
// normalization support.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// slugRegex matches non-alphanumeric characters (except hyphens)
	slugRegex = regexp.MustCompile(`[^a-z0-9-]+`)
	// multipleHyphens matches multiple consecutive hyphens
	multipleHyphens = regexp.MustCompile(`-{2,}`)
	// whitespace matches any run of whitespace
	whitespace = regexp.MustCompile(`\s+`)
)

// FoldAccents removes diacritics ("Gestão" -> "Gestao") and transliterates
// any remaining non-ASCII runes.
func FoldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)

	for _, r := range result {
		if r > unicode.MaxASCII {
			return unidecode.Unidecode(result)
		}
	}
	return result
}

// Slugify converts a string to a URL-friendly slug.
// Words are separated by single hyphens; everything that is not a lowercase
// letter, digit or hyphen is removed.
func Slugify(s string) string {
	result := strings.ToLower(FoldAccents(s))
	result = whitespace.ReplaceAllString(strings.TrimSpace(result), "-")
	result = slugRegex.ReplaceAllString(result, "")
	result = multipleHyphens.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// SanitizeSlug re-derives a stored slug so it only contains lowercase
// letters, digits and single hyphens. Unlike Slugify, invalid characters
// become hyphens instead of being dropped. SanitizeSlug is idempotent.
func SanitizeSlug(s string) string {
	result := strings.ToLower(FoldAccents(strings.TrimSpace(s)))
	result = slugRegex.ReplaceAllString(result, "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// IsValidSlug checks if a string is a valid slug format.
func IsValidSlug(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			return false
		}
	}

	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}

	return !strings.Contains(s, "--")
}
