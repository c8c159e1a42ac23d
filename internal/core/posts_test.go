package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/634252452/Sheets2Website/internal/csvparse"
)

const pagesCSV = `id,type,title,subtitle,summary,content,featured_image,creation_date,publication_date,tags,category
home,page,Home,,Welcome,<p>hi</p>,,,,,
about,page,,,,,,,,,
p1,post,First,Sub,S1,<p>one</p>,/a.png,2024-01-10,,"go, web",Tech
p2,post,Second,,,,,,2024-03-05,web,Life
p3,post,Third,,,,,2023-12-31,,"go,,",Tech
p4,post,Undated,,,,,,,,
`

func samplePages(t *testing.T) []Page {
	t.Helper()
	return NewPages(csvparse.Parse(pagesCSV))
}

func ids(pages []Page) []string {
	out := make([]string, 0, len(pages))
	for _, p := range pages {
		out = append(out, p.ID)
	}
	return out
}

func TestNewPage(t *testing.T) {
	pages := samplePages(t)
	p1, ok := FindPage(pages, "p1")
	if !ok {
		t.Fatal("FindPage(p1) not found")
	}

	want := Page{
		ID:            "p1",
		Type:          "post",
		Title:         "First",
		Subtitle:      "Sub",
		Summary:       "S1",
		Content:       "<p>one</p>",
		FeaturedImage: "/a.png",
		CreationDate:  "2024-01-10",
		Date:          "2024-01-10",
		Tags:          []string{"go", "web"},
		RawTags:       "go, web",
		Category:      "Tech",
	}
	if diff := cmp.Diff(want, p1); diff != "" {
		t.Errorf("NewPage() mismatch (-want +got):\n%s", diff)
	}

	p2, _ := FindPage(pages, "p2")
	if p2.Date != "2024-03-05" || p2.CreationDate != "" {
		t.Errorf("p2 dates = %q/%q, want publication_date fallback", p2.Date, p2.CreationDate)
	}
}

func TestPage_ContentFallback(t *testing.T) {
	p := NewPage(csvparse.NewRow("id", "x", "content_html", "<i>legacy</i>"))
	if p.Content != "<i>legacy</i>" {
		t.Errorf("Content = %q, want content_html fallback", p.Content)
	}
	p = NewPage(csvparse.NewRow("id", "x", "content", "<b>new</b>", "content_html", "<i>legacy</i>"))
	if p.Content != "<b>new</b>" {
		t.Errorf("Content = %q, want content column", p.Content)
	}
}

func TestPage_DisplayTitle(t *testing.T) {
	if got := (Page{ID: "about"}).DisplayTitle(); got != "about" {
		t.Errorf("DisplayTitle() = %q, want id", got)
	}
	if got := (Page{ID: "about", Title: "About us"}).DisplayTitle(); got != "About us" {
		t.Errorf("DisplayTitle() = %q, want title", got)
	}
}

func TestPagesAndPostsOnly(t *testing.T) {
	pages := samplePages(t)

	if diff := cmp.Diff([]string{"home", "about"}, ids(PagesOnly(pages))); diff != "" {
		t.Errorf("PagesOnly() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"p1", "p2", "p3", "p4"}, ids(PostsOnly(pages))); diff != "" {
		t.Errorf("PostsOnly() mismatch (-want +got):\n%s", diff)
	}
	if !HasPosts(pages) {
		t.Error("HasPosts() = false")
	}
	if HasPosts(PagesOnly(pages)) {
		t.Error("HasPosts(pages only) = true")
	}
	if got := PostsOnly(nil); len(got) != 0 {
		t.Errorf("PostsOnly(nil) = %v, want empty", got)
	}
}

func TestSortPostsByDate(t *testing.T) {
	posts := PostsOnly(samplePages(t))

	tests := []struct {
		order string
		want  []string
	}{
		{"desc", []string{"p2", "p1", "p3", "p4"}},
		{"", []string{"p2", "p1", "p3", "p4"}},
		{"asc", []string{"p4", "p3", "p1", "p2"}},
	}
	for _, tt := range tests {
		got := ids(SortPostsByDate(posts, tt.order))
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("SortPostsByDate(%q) mismatch (-want +got):\n%s", tt.order, diff)
		}
	}

	// input untouched
	if diff := cmp.Diff([]string{"p1", "p2", "p3", "p4"}, ids(posts)); diff != "" {
		t.Errorf("SortPostsByDate mutated input (-want +got):\n%s", diff)
	}
}

func TestSortPostsByDate_StableForEqualDates(t *testing.T) {
	posts := []Page{
		{ID: "a", Date: "2024-01-01"},
		{ID: "b", Date: "garbage"},
		{ID: "c", Date: "2024-01-01"},
		{ID: "d"},
	}
	got := ids(SortPostsByDate(posts, SortDesc))
	if diff := cmp.Diff([]string{"a", "c", "b", "d"}, got); diff != "" {
		t.Errorf("SortPostsByDate mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-03-05", "2024-03-05"},
		{"2024-03-05T10:00:00Z", "2024-03-05"},
		{"2024-03-05 10:00", "2024-03-05"},
		{"03/05/2024", "2024-03-05"},
		{"Mar 5, 2024", "2024-03-05"},
		{"5 March 2024", "2024-03-05"},
		{"", "0001-01-01"},
		{"soon", "0001-01-01"},
	}
	for _, tt := range tests {
		if got := ParseDate(tt.in).Format("2006-01-02"); got != tt.want {
			t.Errorf("ParseDate(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestUniqueTagsAndCategories(t *testing.T) {
	posts := PostsOnly(samplePages(t))

	if diff := cmp.Diff([]string{"go", "web"}, UniqueTags(posts)); diff != "" {
		t.Errorf("UniqueTags() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Life", "Tech"}, UniqueCategories(posts)); diff != "" {
		t.Errorf("UniqueCategories() mismatch (-want +got):\n%s", diff)
	}
	if got := UniqueTags(nil); len(got) != 0 {
		t.Errorf("UniqueTags(nil) = %v, want empty", got)
	}
}

func TestFilters(t *testing.T) {
	posts := PostsOnly(samplePages(t))

	tests := []struct {
		name     string
		tag      string
		category string
		want     []string
	}{
		{"no filters", "", "", []string{"p1", "p2", "p3", "p4"}},
		{"tag go", "go", "", []string{"p1", "p3"}},
		{"tag web", "web", "", []string{"p1", "p2"}},
		{"category", "", "Tech", []string{"p1", "p3"}},
		{"tag and category", "web", "Life", []string{"p2"}},
		{"no match", "rust", "", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(FilterByCategory(FilterByTag(posts, tt.tag), tt.category))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("filters mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
