package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/634252452/Sheets2Website/internal/cache"
	"github.com/634252452/Sheets2Website/internal/config"
	"github.com/634252452/Sheets2Website/internal/core"
	"github.com/634252452/Sheets2Website/internal/kv"
	"github.com/634252452/Sheets2Website/internal/sheets"
)

// openCache opens the configured store and wraps it in the versioned cache.
// The caller closes the returned store.
func openCache(ctx context.Context, cfg *config.Config) (*cache.Cache, kv.Store, error) {
	store, err := kv.Open(ctx, kv.Options{
		Backend:     cfg.Cache.Backend,
		Dir:         cfg.Cache.Dir,
		DatabaseURL: cfg.Cache.DatabaseURL,
		SQLitePath:  cfg.Cache.SQLitePath,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open %s cache: %w", cfg.Cache.Backend, err)
	}
	slog.Debug("cache store opened", "backend", cfg.Cache.Backend, "prefix", cfg.Cache.Prefix)
	return cache.New(store, cache.WithPrefix(cfg.Cache.Prefix)), store, nil
}

// newLoader builds a site loader over the given cache.
func newLoader(cfg *config.Config, c *cache.Cache) *core.Loader {
	fetcher := sheets.NewHTTPFetcher(cfg.Fetch.Timeout, cfg.Fetch.UserAgent, cfg.Fetch.MaxBodySize)
	return core.NewLoader(fetcher, c, cfg.Sheet.SiteSheetURL, core.LoaderOptions{
		PagesKey:       cfg.Cache.PagesKey,
		DefaultVersion: cfg.Site.DefaultCacheVersion,
		DefaultTitle:   cfg.Site.DefaultTitle,
	})
}

func closeStore(store kv.Store) {
	if err := store.Close(); err != nil {
		slog.Warn("closing cache store", "error", err)
	}
}
