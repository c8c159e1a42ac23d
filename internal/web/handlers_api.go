package web

import (
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/634252452/Sheets2Website/internal/csvparse"
)

// SiteResponse describes the loaded Site sheet.
type SiteResponse struct {
	LoadID       string       `json:"load_id"`
	LoadedAt     time.Time    `json:"loaded_at"`
	Title        string       `json:"title"`
	PageTitle    string       `json:"page_title,omitempty"`
	Language     string       `json:"language,omitempty"`
	Template     string       `json:"template,omitempty"`
	HomepageID   string       `json:"homepage_id"`
	PagesURL     string       `json:"pages_url"`
	CacheVersion string       `json:"cache_version"`
	FromCache    bool         `json:"from_cache"`
	Row          csvparse.Row `json:"row"`
}

// CacheEntryResponse describes one cached table.
type CacheEntryResponse struct {
	Key      string    `json:"key"`
	Version  string    `json:"version"`
	StoredAt time.Time `json:"stored_at"`
	Age      string    `json:"age"`
	Rows     int       `json:"rows"`
}

// RefreshResponse reports the result of a manual refresh.
type RefreshResponse struct {
	LoadID    string `json:"load_id"`
	Pages     int    `json:"pages"`
	Version   string `json:"version"`
	FromCache bool   `json:"from_cache"`
}

func (s *Server) handleSite(w http.ResponseWriter, r *http.Request) {
	snap, err := s.app.Snapshot()
	if err != nil {
		respondError(w, r, err, http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, r, http.StatusOK, SiteResponse{
		LoadID:       snap.LoadID.String(),
		LoadedAt:     snap.LoadedAt,
		Title:        snap.Site.Title(),
		PageTitle:    snap.Site.PageTitle(),
		Language:     snap.Site.Language(),
		Template:     snap.Site.Template(),
		HomepageID:   snap.Site.HomepageID(),
		PagesURL:     snap.PagesURL,
		CacheVersion: snap.Version,
		FromCache:    snap.FromCache,
		Row:          snap.Site.Row(),
	})
}

// handlePages returns the Pages sheet rows with their original column order.
func (s *Server) handlePages(w http.ResponseWriter, r *http.Request) {
	snap, err := s.app.Snapshot()
	if err != nil {
		respondError(w, r, err, http.StatusServiceUnavailable)
		return
	}
	table := snap.PagesTable
	if table == nil {
		table = csvparse.Table{}
	}
	writeJSON(w, r, http.StatusOK, table)
}

func (s *Server) handleCacheStatus(w http.ResponseWriter, r *http.Request) {
	c := s.app.Loader().Cache()
	entries := []CacheEntryResponse{}
	if c != nil {
		for _, e := range c.Entries(r.Context()) {
			entries = append(entries, CacheEntryResponse{
				Key:      e.Key,
				Version:  e.Version,
				StoredAt: e.StoredAt,
				Age:      humanize.Time(e.StoredAt),
				Rows:     e.Rows,
			})
		}
	}
	writeJSON(w, r, http.StatusOK, entries)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	snap, err := s.app.Refresh(r.Context())
	if err != nil {
		respondError(w, r, err, http.StatusBadGateway)
		return
	}
	writeJSON(w, r, http.StatusOK, RefreshResponse{
		LoadID:    snap.LoadID.String(),
		Pages:     len(snap.Pages),
		Version:   snap.Version,
		FromCache: snap.FromCache,
	})
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	if c := s.app.Loader().Cache(); c != nil {
		c.Clear(r.Context())
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "cleared"})
}
