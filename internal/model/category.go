// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "strings"

// Color is a palette token assigned to a category.
type Color string

// Palette tokens
const (
	ColorBlue   Color = "blue"
	ColorGreen  Color = "green"
	ColorPurple Color = "purple"
	ColorOrange Color = "orange"
	ColorRed    Color = "red"
	ColorYellow Color = "yellow"
	ColorPink   Color = "pink"
	ColorIndigo Color = "indigo"
	ColorGray   Color = "gray"
)

// DefaultColor is used for categories without a recognised color.
const DefaultColor = ColorBlue

var palette = map[Color]bool{
	ColorBlue: true, ColorGreen: true, ColorPurple: true, ColorOrange: true,
	ColorRed: true, ColorYellow: true, ColorPink: true, ColorIndigo: true,
	ColorGray: true,
}

// ParseColor normalizes a Notion select name to a palette token.
func ParseColor(name string) Color {
	c := Color(strings.ToLower(strings.TrimSpace(name)))
	if c == "grey" {
		c = ColorGray
	}
	if palette[c] {
		return c
	}
	return DefaultColor
}

// ColorClasses are presentation classes derived from a category color.
type ColorClasses struct {
	Background string `json:"bg"`
	Text       string `json:"text"`
	Border     string `json:"border"`
	Hover      string `json:"hover"`
}

// ColorClassesFor derives the utility classes for a palette token.
func ColorClassesFor(c Color) ColorClasses {
	if !palette[c] {
		c = DefaultColor
	}
	name := string(c)
	return ColorClasses{
		Background: "bg-" + name + "-100",
		Text:       "text-" + name + "-800",
		Border:     "border-" + name + "-200",
		Hover:      "hover:bg-" + name + "-200",
	}
}

// BlogCategory is a read projection of one Notion page in the categories database.
type BlogCategory struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Slug         string       `json:"slug"`
	Description  string       `json:"description"`
	Color        Color        `json:"color"`
	Icon         string       `json:"icon,omitempty"`
	ColorClasses ColorClasses `json:"color_classes"`
	Provenance   Provenance   `json:"provenance"`
}

// DefaultCategories returns the built-in categories served when no
// categories database is configured. Order is significant.
func DefaultCategories() []BlogCategory {
	defs := []struct {
		slug, name, desc, icon string
		color                  Color
	}{
		{"gestao", "Gestão", "Práticas e ferramentas de gestão organizacional.", "📊", ColorBlue},
		{"lideranca", "Liderança", "Desenvolvimento de líderes e equipes de alta performance.", "🎯", ColorPurple},
		{"estrategia", "Estratégia", "Planejamento estratégico e tomada de decisão.", "♟️", ColorGreen},
		{"tecnologia", "Tecnologia", "Transformação digital e inovação na administração.", "💡", ColorIndigo},
		{"pessoas", "Pessoas", "Gestão de pessoas, cultura e comportamento organizacional.", "👥", ColorOrange},
		{"processos", "Processos", "Melhoria contínua e gestão de processos.", "⚙️", ColorGray},
	}

	categories := make([]BlogCategory, 0, len(defs))
	for _, d := range defs {
		categories = append(categories, BlogCategory{
			ID:           "default-" + d.slug,
			Name:         d.name,
			Slug:         d.slug,
			Description:  d.desc,
			Color:        d.color,
			Icon:         d.icon,
			ColorClasses: ColorClassesFor(d.color),
		})
	}
	return categories
}
