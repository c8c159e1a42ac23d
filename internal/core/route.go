package core

import "strings"

// RouteKind distinguishes the two kinds of destinations.
type RouteKind int

const (
	RoutePage RouteKind = iota
	RoutePosts
)

// PostsRouteID is the reserved route id of the posts list.
const PostsRouteID = "posts"

// Route is a resolved destination.
type Route struct {
	Kind   RouteKind
	PageID string
}

// ResolveRoute maps a route fragment ("#about", "/about", "posts", "") to a
// destination. An empty fragment resolves to the home page.
func ResolveRoute(fragment, home string) Route {
	id := strings.TrimLeft(strings.TrimSpace(fragment), "#/")
	if id == PostsRouteID {
		return Route{Kind: RoutePosts}
	}
	if id == "" {
		id = home
	}
	return Route{Kind: RoutePage, PageID: id}
}

// HomePageID picks the home page: the Site sheet's choice, then fallback,
// then DefaultHomePageID.
func HomePageID(site Site, fallback string) string {
	if id := site.HomepageID(); id != "" {
		return id
	}
	if fallback != "" {
		return fallback
	}
	return DefaultHomePageID
}
