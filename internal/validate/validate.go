// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package validate checks a Notion integration setup before deployment: the
// token, its access to the configured databases and their property schemas.
package validate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"github.com/jomei/notionapi"

	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/notion"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/transform"
)

// Token prefixes issued by Notion. Internal integrations created before
// September 2024 use secret_.
var tokenPrefixes = []string{"secret_", "ntn_"}

// ErrTokenFormat is returned for tokens without a known prefix.
var ErrTokenFormat = errors.New("token must start with secret_ or ntn_")

// Field is a required database property.
type Field struct {
	Name string
	Type string
}

// Schema lists the properties a database must have.
type Schema struct {
	Database string
	Fields   []Field
}

// PostsSchema is the required shape of the posts database.
var PostsSchema = Schema{
	Database: notion.DatabasePosts,
	Fields: []Field{
		{transform.PropTitle, "title"},
		{transform.PropSlug, "rich_text"},
		{transform.PropStatus, "select"},
		{transform.PropPublishedDate, "date"},
		{transform.PropAuthor, "relation"},
		{transform.PropCategory, "select"},
		{transform.PropTags, "multi_select"},
		{transform.PropExcerpt, "rich_text"},
		{transform.PropFeaturedImage, "files"},
		{transform.PropSEOTitle, "rich_text"},
		{transform.PropSEODesc, "rich_text"},
		{transform.PropReadingTime, "number"},
		{transform.PropFeatured, "checkbox"},
	},
}

// AuthorsSchema is the required shape of the authors database.
var AuthorsSchema = Schema{
	Database: notion.DatabaseAuthors,
	Fields: []Field{
		{transform.PropName, "title"},
		{transform.PropSlug, "rich_text"},
		{transform.PropBio, "rich_text"},
	},
}

// CategoriesSchema is the required shape of the categories database.
var CategoriesSchema = Schema{
	Database: notion.DatabaseCategories,
	Fields: []Field{
		{transform.PropName, "title"},
		{transform.PropSlug, "rich_text"},
		{transform.PropColor, "select"},
	},
}

// CheckTokenFormat reports whether token carries a Notion token prefix.
func CheckTokenFormat(token string) error {
	token = normalize(token)
	if token == "" {
		return errors.New("token is empty")
	}
	for _, prefix := range tokenPrefixes {
		if strings.HasPrefix(token, prefix) {
			return nil
		}
	}
	return ErrTokenFormat
}

// TokenVariants returns the token as given, trimmed of whitespace and with
// surrounding quotes stripped, without duplicates and empty values.
// Copy-pasted tokens in .env files often carry one of these.
func TokenVariants(token string) []string {
	candidates := []string{
		token,
		strings.TrimSpace(token),
		normalize(token),
	}

	var out []string
	for _, c := range candidates {
		if c != "" && !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out
}

func normalize(token string) string {
	token = strings.TrimSpace(token)
	for _, q := range []string{`"`, `'`, "`"} {
		if len(token) >= 2 && strings.HasPrefix(token, q) && strings.HasSuffix(token, q) {
			token = strings.TrimSpace(token[1 : len(token)-1])
		}
	}
	return token
}

// MaskToken hides all but the prefix and the last four characters.
func MaskToken(token string) string {
	token = normalize(token)
	if len(token) <= 12 {
		return strings.Repeat("*", len(token))
	}
	prefix := token[:4]
	for _, p := range tokenPrefixes {
		if strings.HasPrefix(token, p) {
			prefix = p
		}
	}
	return prefix + "..." + token[len(token)-4:]
}

// Check is the outcome of one validation step.
type Check struct {
	Name   string
	Passed bool
	Detail string
	// Problems lists missing or mistyped properties of a database check.
	Problems []string
}

// Report collects the checks of one run.
type Report struct {
	Token   string
	BotName string
	Checks  []Check
}

// Passed reports whether every check passed.
func (r *Report) Passed() bool {
	if len(r.Checks) == 0 {
		return false
	}
	for _, c := range r.Checks {
		if !c.Passed {
			return false
		}
	}
	return true
}

func (r *Report) add(c Check) {
	r.Checks = append(r.Checks, c)
}

// Print writes a human readable summary.
func (r *Report) Print(w io.Writer) {
	for _, c := range r.Checks {
		mark := "PASS"
		if !c.Passed {
			mark = "FAIL"
		}
		_, _ = fmt.Fprintf(w, "[%s] %s", mark, c.Name)
		if c.Detail != "" {
			_, _ = fmt.Fprintf(w, ": %s", c.Detail)
		}
		_, _ = fmt.Fprintln(w)
		for _, p := range c.Problems {
			_, _ = fmt.Fprintf(w, "       - %s\n", p)
		}
	}

	failed := 0
	for _, c := range r.Checks {
		if !c.Passed {
			failed++
		}
	}
	_, _ = fmt.Fprintln(w)
	if r.Passed() {
		_, _ = fmt.Fprintf(w, "All %d checks passed.\n", len(r.Checks))
		return
	}
	_, _ = fmt.Fprintf(w, "%d of %d checks failed.\n", failed, len(r.Checks))
}

// ClientFactory builds a Notion client for one token.
type ClientFactory func(token string) (*notion.Client, error)

// Validator runs the setup checks.
type Validator struct {
	newClient ClientFactory
	databases notion.Databases
	logger    *slog.Logger
}

// New creates a Validator for the given databases.
func New(newClient ClientFactory, databases notion.Databases, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{
		newClient: newClient,
		databases: databases,
		logger:    logger.With("component", "validate"),
	}
}

// Run validates token and every configured database.
func (v *Validator) Run(ctx context.Context, token string) *Report {
	report := &Report{Token: MaskToken(token)}

	if err := CheckTokenFormat(token); err != nil {
		report.add(Check{Name: "token format", Detail: err.Error()})
	} else {
		report.add(Check{Name: "token format", Passed: true})
	}

	client, bot, err := v.authenticate(ctx, token)
	if err != nil {
		report.add(Check{Name: "authentication", Detail: err.Error()})
		return report
	}
	report.BotName = bot
	report.add(Check{Name: "authentication", Passed: true, Detail: "connected as " + bot})

	targets := []struct {
		id     string
		schema Schema
	}{
		{v.databases.Posts, PostsSchema},
		{v.databases.Authors, AuthorsSchema},
		{v.databases.Categories, CategoriesSchema},
	}
	for _, t := range targets {
		if t.id == "" {
			if t.schema.Database == notion.DatabasePosts {
				report.add(Check{Name: "posts database", Detail: "database id is not configured"})
			}
			continue
		}
		report.add(v.checkDatabase(ctx, client, t.id, t.schema))
	}

	return report
}

// authenticate tries each token variant against users/me and returns the
// client of the first that works.
func (v *Validator) authenticate(ctx context.Context, token string) (*notion.Client, string, error) {
	variants := TokenVariants(token)
	if len(variants) == 0 {
		return nil, "", errors.New("token is empty")
	}

	var lastErr error
	for i, variant := range variants {
		client, err := v.newClient(variant)
		if err != nil {
			lastErr = err
			continue
		}
		me, err := client.Me(ctx)
		if err != nil {
			v.logger.Debug("token variant rejected", "variant", i, "error", err)
			lastErr = err
			continue
		}
		if i > 0 {
			v.logger.Warn("token only works after cleanup; remove surrounding whitespace or quotes from NOTION_TOKEN")
		}
		name := "unnamed bot"
		if me != nil && me.Name != "" {
			name = me.Name
		}
		return client, name, nil
	}
	return nil, "", fmt.Errorf("no token variant authenticated: %w", lastErr)
}

// checkDatabase retrieves a database and compares its properties to schema.
func (v *Validator) checkDatabase(ctx context.Context, client *notion.Client, id string, schema Schema) Check {
	check := Check{Name: schema.Database + " database"}

	db, err := client.GetDatabase(ctx, id)
	if err != nil {
		check.Detail = err.Error()
		return check
	}

	check.Problems = SchemaProblems(db.Properties, schema)
	check.Passed = len(check.Problems) == 0
	title := databaseTitle(db)
	if check.Passed {
		check.Detail = fmt.Sprintf("%q has all %d required properties", title, len(schema.Fields))
	} else {
		check.Detail = fmt.Sprintf("%q has %d schema problem(s)", title, len(check.Problems))
	}
	return check
}

// SchemaProblems lists the fields of schema that are missing from props or
// have another type.
func SchemaProblems(props notionapi.PropertyConfigs, schema Schema) []string {
	var problems []string
	for _, f := range schema.Fields {
		prop, ok := props[f.Name]
		if !ok || prop == nil {
			problems = append(problems, fmt.Sprintf("missing property %q (%s)", f.Name, f.Type))
			continue
		}
		if got := string(prop.GetType()); got != f.Type {
			problems = append(problems, fmt.Sprintf("property %q is %s, want %s", f.Name, got, f.Type))
		}
	}
	sort.Strings(problems)
	return problems
}

func databaseTitle(db *notionapi.Database) string {
	var b strings.Builder
	for _, t := range db.Title {
		b.WriteString(t.PlainText)
	}
	if b.Len() == 0 {
		return string(db.ID)
	}
	return b.String()
}
