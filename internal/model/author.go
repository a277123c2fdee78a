// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Default author identity used when a post has no author relation.
const (
	DefaultAuthorID   = "default-author"
	DefaultAuthorName = "Administrativa(mente)"
	DefaultAuthorSlug = "administrativa-mente"
)

// Stub author identity used when only a relation id is known.
const (
	StubAuthorName = "Autor"
	StubAuthorSlug = "autor"
)

// BlogAuthor is a read projection of one Notion page in the authors database.
type BlogAuthor struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Slug        string            `json:"slug"`
	Bio         string            `json:"bio"`
	Role        string            `json:"role"`
	Avatar      string            `json:"avatar,omitempty"`
	SocialLinks map[string]string `json:"social_links,omitempty"`
	Provenance  Provenance        `json:"provenance"`
}

// DefaultAuthor returns the editorial team identity.
func DefaultAuthor() *BlogAuthor {
	return &BlogAuthor{
		ID:          DefaultAuthorID,
		Name:        DefaultAuthorName,
		Slug:        DefaultAuthorSlug,
		Bio:         "Conteúdo sobre gestão, liderança e estratégia para profissionais da administração.",
		Role:        "Equipe Editorial",
		SocialLinks: map[string]string{},
	}
}

// StubAuthor returns a placeholder author for an unresolved relation id.
func StubAuthor(id string) *BlogAuthor {
	return &BlogAuthor{
		ID:          id,
		Name:        StubAuthorName,
		Slug:        StubAuthorSlug,
		SocialLinks: map[string]string{},
		Provenance:  Provenance{NotionPageID: id},
	}
}
