package core

import (
	"strings"

	"github.com/634252452/Sheets2Website/internal/csvparse"
)

// Page types recognised in the type column.
const (
	TypePage = "page"
	TypePost = "post"
)

// Page is one row of the Pages sheet projected onto the columns the site
// renders. Pages and posts share the sheet and differ only by Type.
type Page struct {
	ID            string
	Type          string
	Title         string
	Subtitle      string
	Summary       string
	Content       string // raw HTML
	FeaturedImage string
	CreationDate  string
	Date          string // creation_date, else publication_date
	Tags          []string
	RawTags       string
	Category      string
}

// NewPage projects a Pages sheet row.
func NewPage(r csvparse.Row) Page {
	raw := r.Get("tags")
	return Page{
		ID:            r.Get("id"),
		Type:          r.Get("type"),
		Title:         r.Get("title"),
		Subtitle:      r.Get("subtitle"),
		Summary:       r.Get("summary"),
		Content:       r.First("content", "content_html"),
		FeaturedImage: r.Get("featured_image"),
		CreationDate:  r.Get("creation_date"),
		Date:          r.First("creation_date", "publication_date"),
		Tags:          splitTags(raw),
		RawTags:       raw,
		Category:      strings.TrimSpace(r.Get("category")),
	}
}

// NewPages projects every row of the Pages sheet, in sheet order.
func NewPages(t csvparse.Table) []Page {
	pages := make([]Page, 0, len(t))
	for _, r := range t {
		pages = append(pages, NewPage(r))
	}
	return pages
}

// DisplayTitle is the title, or the ID for untitled pages.
func (p Page) DisplayTitle() string {
	if p.Title != "" {
		return p.Title
	}
	return p.ID
}

// HasTag reports whether tag is one of the page's tags.
func (p Page) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// FindPage returns the page with the given ID.
func FindPage(pages []Page, id string) (Page, bool) {
	for _, p := range pages {
		if p.ID == id {
			return p, true
		}
	}
	return Page{}, false
}

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}
