package cache

import (
	"slices"
	"strings"
	"time"
)

// Policy pairs a key namespace with a revalidation interval and the tags
// that invalidate it.
type Policy struct {
	Name string
	TTL  time.Duration
	Tags []string
}

// Invalidation tags
const (
	TagPosts      = "posts"
	TagPost       = "post"
	TagCategories = "categories"
	TagAuthors    = "authors"
	TagHomepage   = "homepage"
	TagSearch     = "search"

	// TagAll is not carried by any policy; it stands for the whole cache.
	TagAll = "all"
)

// Content policies
var (
	PolicyPosts      = Policy{Name: "posts", TTL: time.Hour, Tags: []string{TagPosts}}
	PolicyPost       = Policy{Name: "post", TTL: 2 * time.Hour, Tags: []string{TagPosts, TagPost}}
	PolicyCategories = Policy{Name: "categories", TTL: 24 * time.Hour, Tags: []string{TagCategories}}
	PolicyAuthors    = Policy{Name: "authors", TTL: 12 * time.Hour, Tags: []string{TagAuthors}}
	PolicyHomepage   = Policy{Name: "homepage", TTL: 30 * time.Minute, Tags: []string{TagHomepage, TagPosts, TagCategories}}
	PolicySearch     = Policy{Name: "search", TTL: 15 * time.Minute, Tags: []string{TagSearch, TagPosts}}
)

// Policies returns the policy table.
func Policies() []Policy {
	return []Policy{
		PolicyPosts,
		PolicyPost,
		PolicyCategories,
		PolicyAuthors,
		PolicyHomepage,
		PolicySearch,
	}
}

// Prefix returns the key namespace of the policy.
func (p Policy) Prefix() string {
	return p.Name + ":"
}

// Key builds a namespaced cache key from parts.
func (p Policy) Key(parts ...string) string {
	return p.Prefix() + strings.Join(parts, ":")
}

// HasTag reports whether tag invalidates the policy.
func (p Policy) HasTag(tag string) bool {
	return slices.Contains(p.Tags, tag)
}

// PoliciesForTag returns the policies invalidated by tag.
func PoliciesForTag(tag string) []Policy {
	var matched []Policy
	for _, p := range Policies() {
		if p.HasTag(tag) {
			matched = append(matched, p)
		}
	}
	return matched
}

// KnownTag reports whether any policy carries tag.
func KnownTag(tag string) bool {
	return len(PoliciesForTag(tag)) > 0
}
