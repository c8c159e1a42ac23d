package core

import (
	"slices"
	"sort"
	"strings"
	"time"
)

// Sort orders accepted by SortPostsByDate.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// dateLayouts are tried in order when reading a post date.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
}

// PagesOnly returns the entries of type page, in order.
func PagesOnly(pages []Page) []Page {
	return filterPages(pages, func(p Page) bool { return p.Type == TypePage })
}

// PostsOnly returns the entries of type post, in order.
func PostsOnly(pages []Page) []Page {
	return filterPages(pages, func(p Page) bool { return p.Type == TypePost })
}

// HasPosts reports whether any entry is a post.
func HasPosts(pages []Page) bool {
	return slices.ContainsFunc(pages, func(p Page) bool { return p.Type == TypePost })
}

// SortPostsByDate returns a sorted copy of posts. Any order other than
// SortAsc sorts newest first. Missing or unreadable dates sort as the zero
// time, and equal dates keep their sheet order.
func SortPostsByDate(posts []Page, order string) []Page {
	sorted := slices.Clone(posts)
	asc := order == SortAsc
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := ParseDate(sorted[i].Date), ParseDate(sorted[j].Date)
		if asc {
			return a.Before(b)
		}
		return a.After(b)
	})
	return sorted
}

// ParseDate reads a post date in any of the common sheet formats.
// It returns the zero time when the value cannot be read.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// UniqueTags returns every tag used by posts, deduplicated and sorted.
func UniqueTags(posts []Page) []string {
	seen := make(map[string]struct{})
	for _, p := range posts {
		for _, t := range p.Tags {
			seen[t] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// UniqueCategories returns every category used by posts, deduplicated and sorted.
func UniqueCategories(posts []Page) []string {
	seen := make(map[string]struct{})
	for _, p := range posts {
		if p.Category != "" {
			seen[p.Category] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// FilterByTag keeps posts carrying tag. An empty tag keeps everything.
func FilterByTag(posts []Page, tag string) []Page {
	if tag == "" {
		return posts
	}
	return filterPages(posts, func(p Page) bool { return p.HasTag(tag) })
}

// FilterByCategory keeps posts in category. An empty category keeps everything.
func FilterByCategory(posts []Page, category string) []Page {
	if category == "" {
		return posts
	}
	return filterPages(posts, func(p Page) bool { return p.Category == category })
}

func filterPages(pages []Page, keep func(Page) bool) []Page {
	out := make([]Page, 0, len(pages))
	for _, p := range pages {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
