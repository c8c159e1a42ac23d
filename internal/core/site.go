package core

import (
	"log/slog"
	"strings"

	"golang.org/x/text/language"

	"github.com/634252452/Sheets2Website/internal/csvparse"
)

// Site sheet column names.
const (
	ColTitle           = "title"
	ColPageTitle       = "page_title"
	ColFaviconURL      = "favicon_url"
	ColLanguage        = "language"
	ColFooter          = "footer"
	ColTemplate        = "template"
	ColHomepageID      = "homepage_id"
	ColDefaultPageID   = "defaultPageId"
	ColWebpagesCSVURL  = "webpages_csv_url"
	ColPagesCSVURL     = "pages_csv_url"
	ColWebpagesVersion = "webpages_cache_version"
)

// Defaults applied when the Site sheet leaves a value out.
const (
	DefaultSiteTitle    = "Sito"
	DefaultHomePageID   = "home"
	DefaultCacheVersion = "v1"
)

// Site is the first row of the Site sheet. The zero value is an empty Site
// whose accessors all return defaults.
type Site struct {
	row          csvparse.Row
	defaultTitle string
}

// NewSite wraps the Site sheet. Only the first row is used; an empty table
// yields an empty Site.
func NewSite(t csvparse.Table) Site {
	if len(t) == 0 {
		return Site{}
	}
	return Site{row: t[0]}
}

// WithDefaultTitle returns a copy of s that falls back to title instead of
// DefaultSiteTitle.
func (s Site) WithDefaultTitle(title string) Site {
	s.defaultTitle = title
	return s
}

// Row returns the underlying Site sheet row.
func (s Site) Row() csvparse.Row { return s.row }

// Title is the site heading shown in the header.
func (s Site) Title() string {
	if v := s.row.Get(ColTitle); v != "" {
		return v
	}
	if s.defaultTitle != "" {
		return s.defaultTitle
	}
	return DefaultSiteTitle
}

// PageTitle is the document title, empty when unset.
func (s Site) PageTitle() string { return s.row.Get(ColPageTitle) }

// FaviconURL is empty when unset.
func (s Site) FaviconURL() string { return s.row.Get(ColFaviconURL) }

// Footer is raw HTML and is emitted unescaped.
func (s Site) Footer() string { return s.row.Get(ColFooter) }

// Template is the theme the Site sheet asks for, empty when unset.
func (s Site) Template() string { return s.row.Get(ColTemplate) }

// Language returns the document language as a BCP 47 tag. Values that do
// not parse are dropped so they never reach the lang attribute.
func (s Site) Language() string {
	raw := strings.TrimSpace(s.row.Get(ColLanguage))
	if raw == "" {
		return ""
	}
	tag, err := language.Parse(raw)
	if err != nil {
		slog.Warn("ignoring invalid site language", "language", raw, "error", err)
		return ""
	}
	return tag.String()
}

// HomepageID is the page shown at the root route, empty when the sheet
// names none.
func (s Site) HomepageID() string {
	return s.row.First(ColHomepageID, ColDefaultPageID)
}

// PagesURL is the Pages sheet reference.
func (s Site) PagesURL() string {
	return s.row.First(ColWebpagesCSVURL, ColPagesCSVURL)
}

// PagesCacheVersion is the version token for the cached Pages sheet.
// A missing token falls back to DefaultCacheVersion.
func (s Site) PagesCacheVersion() string {
	v, _ := s.pagesCacheVersion()
	return v
}

func (s Site) pagesCacheVersion() (version string, defaulted bool) {
	if v := s.row.Get(ColWebpagesVersion); v != "" {
		return v, false
	}
	return DefaultCacheVersion, true
}
