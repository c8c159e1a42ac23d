// Package render turns a loaded site into HTML.
//
// BuildView is a pure function from application state to a View describing
// what to show. The components in this package bind a View to HTML; the web
// server and the static exporter share both.
package render

//go:generate templ generate

import (
	"net/url"

	"github.com/634252452/Sheets2Website/internal/core"
)

// Messages shown in place of content.
const (
	MsgNoPosts        = "No available posts."
	MsgNoMatchingPost = "No posts match the selected filters."
	MsgPageNotFound   = "Page not found."
	MsgErrorPrefix    = "Error loading page: "
	PostsHeading      = "Posts"
)

// BodyKind selects what the main area shows.
type BodyKind int

const (
	BodyPage BodyKind = iota
	BodyNotFound
	BodyPosts
)

// Options carries request state that is not part of the snapshot.
type Options struct {
	Theme        string // visitor's saved theme, may be empty
	DefaultTheme string // theme used when neither visitor nor Site sheet picks one
	DefaultHome  string // home page id when the Site sheet names none

	// Posts list controls.
	Sort     string
	Tag      string
	Category string

	// Static renders for file export: links point at <id>.html, assets are
	// relative and the theme and filter forms are left out.
	Static bool

	// CurrentPath is where the theme form returns to.
	CurrentPath string
}

// View is everything needed to draw one page of the site.
type View struct {
	Head   Head
	Header Header
	Body   Body
	Footer string // raw HTML
}

// Head holds document metadata.
type Head struct {
	Title       string
	FaviconURL  string
	Lang        string
	Stylesheets []string
}

// Header holds the site title, menu and theme selector.
type Header struct {
	SiteTitle   string
	HomeHref    string
	Menu        []Link
	Themes      []ThemeOption
	ThemeAction string // empty hides the selector
	ReturnTo    string
}

// Link is a menu entry.
type Link struct {
	Label  string
	Href   string
	Active bool
}

// ThemeOption is one entry of the theme selector.
type ThemeOption struct {
	Value    string
	Label    string
	Selected bool
}

// Body is the main area.
type Body struct {
	Kind  BodyKind
	Page  PageView
	Posts PostsView
}

// PageView is a single page.
type PageView struct {
	ID            string
	Title         string
	Summary       string
	FeaturedImage string
	ImageAlt      string
	Content       string // raw HTML
}

// PostsView is the posts list with its controls.
type PostsView struct {
	Action     string // empty hides the controls
	Sort       string
	Tags       []string
	Tag        string
	Categories []string
	Category   string
	Cards      []PostCard
	Message    string // shown instead of cards when set
}

// PostCard is one entry of the posts list.
type PostCard struct {
	Href     string
	Title    string
	Subtitle string
	Summary  string
	Image    string
	Date     string
	Tags     []string
	Category string
}

// BuildView describes the page for route given a loaded snapshot.
func BuildView(snap *core.Snapshot, route core.Route, opts Options) View {
	site := snap.Site
	fromSite := site.Template()
	if fromSite == "" {
		fromSite = opts.DefaultTheme
	}
	theme := core.ResolveTheme(opts.Theme, fromSite)

	v := View{
		Head:   buildHead(site, theme, opts),
		Header: buildHeader(site, snap.Pages, theme, route, opts),
		Footer: site.Footer(),
	}

	if route.Kind == core.RoutePosts {
		v.Body = Body{Kind: BodyPosts, Posts: buildPosts(core.PostsOnly(snap.Pages), opts)}
		return v
	}

	page, ok := core.FindPage(snap.Pages, route.PageID)
	if !ok {
		v.Body = Body{Kind: BodyNotFound}
		return v
	}
	v.Body = Body{Kind: BodyPage, Page: buildPage(page)}
	return v
}

// ErrorView describes the error page shown when the site cannot be loaded.
// It has no snapshot to draw from, so only the defaults are used.
func ErrorView(opts Options) View {
	theme := core.ResolveTheme(opts.Theme, opts.DefaultTheme)
	site := core.Site{}
	return View{
		Head:   buildHead(site, theme, opts),
		Header: Header{SiteTitle: site.Title(), HomeHref: pageHref(opts, "")},
	}
}

func buildHead(site core.Site, theme string, opts Options) Head {
	title := site.PageTitle()
	if title == "" {
		title = site.Title()
	}
	sheet := theme + ".css"
	if t, ok := core.LookupTheme(theme); ok {
		sheet = t.Stylesheet
	}
	return Head{
		Title:       title,
		FaviconURL:  site.FaviconURL(),
		Lang:        site.Language(),
		Stylesheets: []string{staticHref(opts, "base.css"), staticHref(opts, sheet)},
	}
}

func buildHeader(site core.Site, pages []core.Page, theme string, route core.Route, opts Options) Header {
	h := Header{
		SiteTitle: site.Title(),
		HomeHref:  pageHref(opts, ""),
	}

	home := core.HomePageID(site, opts.DefaultHome)
	current := route.PageID
	if current == "" {
		current = home
	}
	for _, p := range core.PagesOnly(pages) {
		h.Menu = append(h.Menu, Link{
			Label:  p.DisplayTitle(),
			Href:   pageHref(opts, p.ID),
			Active: route.Kind == core.RoutePage && p.ID == current,
		})
	}
	if core.HasPosts(pages) {
		h.Menu = append(h.Menu, Link{
			Label:  PostsHeading,
			Href:   postsHref(opts),
			Active: route.Kind == core.RoutePosts,
		})
	}

	for _, name := range core.Themes() {
		h.Themes = append(h.Themes, ThemeOption{
			Value:    name,
			Label:    core.ThemeLabel(name),
			Selected: name == theme,
		})
	}
	if !opts.Static {
		h.ThemeAction = "/theme"
		h.ReturnTo = opts.CurrentPath
	}
	return h
}

func buildPage(p core.Page) PageView {
	alt := p.Title
	if alt == "" {
		alt = "Featured image"
	}
	return PageView{
		ID:            p.ID,
		Title:         p.Title,
		Summary:       p.Summary,
		FeaturedImage: p.FeaturedImage,
		ImageAlt:      alt,
		Content:       p.Content,
	}
}

func buildPosts(posts []core.Page, opts Options) PostsView {
	if len(posts) == 0 {
		return PostsView{Message: MsgNoPosts}
	}

	sortOrder := core.SortDesc
	if opts.Sort == core.SortAsc {
		sortOrder = core.SortAsc
	}

	pv := PostsView{
		Sort:       sortOrder,
		Tags:       core.UniqueTags(posts),
		Tag:        opts.Tag,
		Categories: core.UniqueCategories(posts),
		Category:   opts.Category,
	}
	if !opts.Static {
		pv.Action = postsHref(opts)
	}

	filtered := core.FilterByCategory(core.FilterByTag(posts, opts.Tag), opts.Category)
	filtered = core.SortPostsByDate(filtered, sortOrder)
	if len(filtered) == 0 {
		pv.Message = MsgNoMatchingPost
		return pv
	}

	for _, p := range filtered {
		pv.Cards = append(pv.Cards, PostCard{
			Href:     pageHref(opts, p.ID),
			Title:    p.DisplayTitle(),
			Subtitle: p.Subtitle,
			Summary:  p.Summary,
			Image:    p.FeaturedImage,
			Date:     p.CreationDate,
			Tags:     p.Tags,
			Category: p.Category,
		})
	}
	return pv
}

func pageHref(opts Options, id string) string {
	if opts.Static {
		if id == "" {
			return "index.html"
		}
		return url.PathEscape(id) + ".html"
	}
	return "/" + url.PathEscape(id)
}

func postsHref(opts Options) string {
	if opts.Static {
		return core.PostsRouteID + ".html"
	}
	return "/" + core.PostsRouteID
}

func staticHref(opts Options, name string) string {
	if opts.Static {
		return "static/" + name
	}
	return "/static/" + name
}
