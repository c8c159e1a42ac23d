package core

import (
	"testing"

	"github.com/634252452/Sheets2Website/internal/csvparse"
)

func TestSite_Defaults(t *testing.T) {
	s := NewSite(nil)

	if got := s.Title(); got != "Sito" {
		t.Errorf("Title() = %q, want %q", got, "Sito")
	}
	if got := s.PagesCacheVersion(); got != "v1" {
		t.Errorf("PagesCacheVersion() = %q, want %q", got, "v1")
	}
	for name, got := range map[string]string{
		"PageTitle":  s.PageTitle(),
		"FaviconURL": s.FaviconURL(),
		"Footer":     s.Footer(),
		"Template":   s.Template(),
		"Language":   s.Language(),
		"HomepageID": s.HomepageID(),
		"PagesURL":   s.PagesURL(),
	} {
		if got != "" {
			t.Errorf("%s() = %q, want empty", name, got)
		}
	}

	if got := s.WithDefaultTitle("My Site").Title(); got != "My Site" {
		t.Errorf("WithDefaultTitle().Title() = %q, want %q", got, "My Site")
	}
}

func TestSite_Columns(t *testing.T) {
	s := NewSite(csvparse.Parse(
		"title,page_title,favicon_url,language,footer,template,homepage_id,webpages_csv_url,webpages_cache_version\n" +
			`Blog,Blog | Home,/f.ico,it,<b>(c)</b>,dark,start,abc123,v7` + "\n" +
			"ignored,,,,,,,,\n",
	))

	tests := []struct {
		name, got, want string
	}{
		{"Title", s.Title(), "Blog"},
		{"PageTitle", s.PageTitle(), "Blog | Home"},
		{"FaviconURL", s.FaviconURL(), "/f.ico"},
		{"Language", s.Language(), "it"},
		{"Footer", s.Footer(), "<b>(c)</b>"},
		{"Template", s.Template(), "dark"},
		{"HomepageID", s.HomepageID(), "start"},
		{"PagesURL", s.PagesURL(), "abc123"},
		{"PagesCacheVersion", s.PagesCacheVersion(), "v7"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s() = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestSite_Fallbacks(t *testing.T) {
	s := NewSite(csvparse.Table{csvparse.NewRow(
		"defaultPageId", "about",
		"pages_csv_url", "legacy",
	)})

	if got := s.HomepageID(); got != "about" {
		t.Errorf("HomepageID() = %q, want %q", got, "about")
	}
	if got := s.PagesURL(); got != "legacy" {
		t.Errorf("PagesURL() = %q, want %q", got, "legacy")
	}
}

func TestSite_Language(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"en", "en"},
		{"en-us", "en-US"},
		{" pt-BR ", "pt-BR"},
		{"not a language!", ""},
	}
	for _, tt := range tests {
		s := NewSite(csvparse.Table{csvparse.NewRow("language", tt.raw)})
		if got := s.Language(); got != tt.want {
			t.Errorf("Language(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
