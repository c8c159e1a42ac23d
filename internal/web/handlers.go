package web

import (
	"bytes"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/634252452/Sheets2Website/internal/core"
	"github.com/634252452/Sheets2Website/internal/logging"
	"github.com/634252452/Sheets2Website/internal/render"
)

// ThemeCookie stores the visitor's theme choice.
const ThemeCookie = "selected-template"

const themeCookieMaxAge = 365 * 24 * time.Hour

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.servePage(w, r, "")
}

func (s *Server) handlePosts(w http.ResponseWriter, r *http.Request) {
	s.servePage(w, r, core.PostsRouteID)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "pageID")
	// chi matches on RawPath when it is set, so only then is the id still
	// escaped.
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(id); err == nil {
			id = unescaped
		}
	}
	s.servePage(w, r, id)
}

// servePage renders the route named by fragment from the current snapshot.
func (s *Server) servePage(w http.ResponseWriter, r *http.Request, fragment string) {
	snap, err := s.app.Snapshot()
	if err != nil {
		respondError(w, r, err, http.StatusServiceUnavailable)
		return
	}

	site := s.siteConfig()
	home := core.HomePageID(snap.Site, site.DefaultPageID)
	route := core.ResolveRoute(fragment, home)

	q := r.URL.Query()
	opts := render.Options{
		Theme:        savedTheme(r),
		DefaultTheme: site.DefaultTheme,
		DefaultHome:  site.DefaultPageID,
		Sort:         q.Get("sort"),
		Tag:          q.Get("tag"),
		Category:     q.Get("category"),
		CurrentPath:  r.URL.RequestURI(),
	}
	v := render.BuildView(snap, route, opts)

	status := http.StatusOK
	if v.Body.Kind == render.BodyNotFound {
		status = http.StatusNotFound
	}
	if isHTMX(r) {
		renderHTML(w, r, status, render.Content(v))
		return
	}
	renderHTML(w, r, status, render.Page(v))
}

// isHTMX reports whether the request came from htmx, which swaps in the
// main area only.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// handleTheme stores the chosen theme in a cookie and sends the visitor back.
func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	theme := strings.TrimSpace(r.PostFormValue("theme"))
	if !core.ThemeExists(theme) {
		respondError(w, r, errUnknownTheme, http.StatusBadRequest)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     ThemeCookie,
		Value:    theme,
		Path:     "/",
		MaxAge:   int(themeCookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	logging.FromContext(r.Context()).Debug("theme selected", "theme", theme)
	http.Redirect(w, r, safeReturnPath(r.PostFormValue("return")), http.StatusSeeOther)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"status": "ok", "loaded": false}
	if snap, err := s.app.Snapshot(); err == nil {
		resp["loaded"] = true
		resp["load_id"] = snap.LoadID.String()
		resp["loaded_at"] = snap.LoadedAt
	}
	if err := s.app.LastError(); err != nil {
		resp["last_error"] = core.MapError(err)
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// savedTheme returns the visitor's theme cookie, or "" when unset.
func savedTheme(r *http.Request) string {
	c, err := r.Cookie(ThemeCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

// safeReturnPath only allows local absolute paths as redirect targets.
func safeReturnPath(p string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return "/"
	}
	return p
}

// renderHTML buffers a component so a render failure can still produce an
// error response.
func renderHTML(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	var buf bytes.Buffer
	if err := c.Render(r.Context(), &buf); err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
