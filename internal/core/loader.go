package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/634252452/Sheets2Website/internal/cache"
	"github.com/634252452/Sheets2Website/internal/csvparse"
	"github.com/634252452/Sheets2Website/internal/logging"
	"github.com/634252452/Sheets2Website/internal/sheets"
)

// DefaultPagesKey is the cache key of the Pages sheet.
const DefaultPagesKey = "pagesSheet"

// ErrPagesURLMissing is returned when the Site sheet names no Pages sheet.
var ErrPagesURLMissing = errors.New("site sheet has no webpages_csv_url or pages_csv_url")

// Snapshot is one consistent load of the Site and Pages sheets.
type Snapshot struct {
	LoadID     uuid.UUID
	LoadedAt   time.Time
	Site       Site
	Pages      []Page
	PagesTable csvparse.Table
	PagesURL   string
	Version    string
	FromCache  bool
}

// LoaderOptions tunes a Loader. Zero fields take package defaults.
type LoaderOptions struct {
	PagesKey       string // cache key for the Pages sheet
	DefaultVersion string // version used when the Site sheet has none
	DefaultTitle   string // site title used when the Site sheet has none
}

// Loader fetches the Site sheet, follows it to the Pages sheet and returns a
// Snapshot. The Site sheet is always fetched fresh; the Pages sheet goes
// through the versioned cache.
type Loader struct {
	fetcher sheets.Fetcher
	cache   *cache.Cache
	opts    LoaderOptions
	now     func() time.Time

	mu      sync.RWMutex
	siteRef string

	group singleflight.Group
}

// NewLoader creates a Loader for the Site sheet reference siteRef (URL or ID).
func NewLoader(f sheets.Fetcher, c *cache.Cache, siteRef string, opts LoaderOptions) *Loader {
	if opts.PagesKey == "" {
		opts.PagesKey = DefaultPagesKey
	}
	if opts.DefaultVersion == "" {
		opts.DefaultVersion = DefaultCacheVersion
	}
	return &Loader{
		fetcher: f,
		cache:   c,
		opts:    opts,
		now:     time.Now,
		siteRef: siteRef,
	}
}

// Cache returns the cache behind the Pages sheet.
func (l *Loader) Cache() *cache.Cache { return l.cache }

// SiteRef returns the configured Site sheet reference.
func (l *Loader) SiteRef() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.siteRef
}

// SetSiteRef replaces the Site sheet reference used by later loads.
func (l *Loader) SetSiteRef(ref string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.siteRef = ref
}

// Load fetches both sheets. Concurrent calls share a single load.
//
// The shared load is detached from the cancellation of whichever caller
// started it, so one caller giving up never fails the others. A cancelled
// caller returns ctx.Err() while the load runs on for the rest; the fetcher's
// own timeout bounds it.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	ch := l.group.DoChan("load", func() (any, error) {
		return l.load(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			logging.FromContext(ctx).Debug("joined in-flight site load")
		}
		return res.Val.(*Snapshot), nil
	}
}

func (l *Loader) load(ctx context.Context) (*Snapshot, error) {
	id := uuid.New()
	logger := logging.WithFields(ctx, "load_id", id.String())
	start := l.now()

	siteURL, err := sheets.NormalizeURL(l.SiteRef())
	if err != nil {
		return nil, fmt.Errorf("site sheet: %w", err)
	}
	siteTable, err := sheets.FetchTable(ctx, l.fetcher, siteURL)
	if err != nil {
		return nil, fmt.Errorf("site sheet: %w", err)
	}
	site := NewSite(siteTable).WithDefaultTitle(l.opts.DefaultTitle)

	pagesRef := site.PagesURL()
	if pagesRef == "" {
		return nil, ErrPagesURLMissing
	}
	pagesURL, err := sheets.NormalizeURL(pagesRef)
	if err != nil {
		return nil, fmt.Errorf("pages sheet: %w", err)
	}

	version, defaulted := site.pagesCacheVersion()
	if defaulted {
		version = l.opts.DefaultVersion
		logger.Info("site sheet has no webpages_cache_version, using default", "version", version)
	}

	pagesTable, hit, err := l.FetchCSVWithCache(ctx, pagesURL, l.opts.PagesKey, version)
	if err != nil {
		return nil, fmt.Errorf("pages sheet: %w", err)
	}

	snap := &Snapshot{
		LoadID:     id,
		LoadedAt:   l.now(),
		Site:       site,
		Pages:      NewPages(pagesTable),
		PagesTable: pagesTable,
		PagesURL:   pagesURL,
		Version:    version,
		FromCache:  hit,
	}
	logger.Info("site loaded",
		"pages", len(snap.Pages),
		"version", version,
		"from_cache", hit,
		"duration_ms", l.now().Sub(start).Milliseconds(),
	)
	return snap, nil
}

// FetchCSVWithCache returns the table cached under key when its version
// matches; otherwise it fetches url, parses it and caches the result.
// The boolean reports a cache hit.
func (l *Loader) FetchCSVWithCache(ctx context.Context, url, key, version string) (csvparse.Table, bool, error) {
	if l.cache != nil {
		if t, ok := l.cache.Get(ctx, key, version); ok {
			logging.FromContext(ctx).Debug("cache hit", "key", key, "version", version)
			return t, true, nil
		}
	}

	t, err := sheets.FetchTable(ctx, l.fetcher, url)
	if err != nil {
		return nil, false, err
	}
	if l.cache != nil {
		l.cache.Put(ctx, key, t, version)
	}
	return t, false, nil
}
