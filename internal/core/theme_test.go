package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestThemes(t *testing.T) {
	if diff := cmp.Diff([]string{"default", "dark"}, Themes()); diff != "" {
		t.Errorf("Themes() mismatch (-want +got):\n%s", diff)
	}
	th, ok := LookupTheme("dark")
	if !ok || th.Stylesheet != "dark.css" {
		t.Errorf("LookupTheme(dark) = %+v, %v", th, ok)
	}
	if ThemeExists("neon") {
		t.Error("ThemeExists(neon) = true")
	}
}

func TestRegisterTheme_Duplicate(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("RegisterTheme(duplicate) did not panic")
		}
	}()
	RegisterTheme(Theme{Name: "default"})
}

func TestResolveTheme(t *testing.T) {
	tests := []struct {
		name     string
		saved    string
		fromSite string
		want     string
	}{
		{"nothing", "", "", "default"},
		{"site only", "", "dark", "dark"},
		{"saved wins", "default", "dark", "default"},
		{"saved dark", "dark", "", "dark"},
		{"unknown saved", "neon", "dark", "default"},
		{"unknown site", "", "neon", "default"},
		{"whitespace", " dark ", "", "dark"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveTheme(tt.saved, tt.fromSite); got != tt.want {
				t.Errorf("ResolveTheme(%q, %q) = %q, want %q", tt.saved, tt.fromSite, got, tt.want)
			}
		})
	}
}

func TestThemeLabel(t *testing.T) {
	for in, want := range map[string]string{"default": "Default", "dark": "Dark", "": ""} {
		if got := ThemeLabel(in); got != want {
			t.Errorf("ThemeLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveRoute(t *testing.T) {
	tests := []struct {
		fragment string
		want     Route
	}{
		{"", Route{Kind: RoutePage, PageID: "home"}},
		{"#", Route{Kind: RoutePage, PageID: "home"}},
		{"#about", Route{Kind: RoutePage, PageID: "about"}},
		{"/about", Route{Kind: RoutePage, PageID: "about"}},
		{"#posts", Route{Kind: RoutePosts}},
		{"posts", Route{Kind: RoutePosts}},
		{"p1", Route{Kind: RoutePage, PageID: "p1"}},
	}
	for _, tt := range tests {
		if got := ResolveRoute(tt.fragment, "home"); got != tt.want {
			t.Errorf("ResolveRoute(%q) = %+v, want %+v", tt.fragment, got, tt.want)
		}
	}
}

func TestHomePageID(t *testing.T) {
	if got := HomePageID(Site{}, ""); got != "home" {
		t.Errorf("HomePageID() = %q, want home", got)
	}
	if got := HomePageID(Site{}, "start"); got != "start" {
		t.Errorf("HomePageID() = %q, want start", got)
	}
}
