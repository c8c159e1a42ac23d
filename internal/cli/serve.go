package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/634252452/Sheets2Website/internal/config"
	"github.com/634252452/Sheets2Website/internal/core"
	"github.com/634252452/Sheets2Website/internal/web"
)

func newServeCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		Long: `Loads the Site and Pages sheets, serves the rendered site over HTTP and
reloads both sheets every SITE_REFRESH_INTERVAL.`,
		Example: `  # Serve a sheet by ID on port 8080
  SITE_SHEET_URL=1AbC... sheetsite serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), rt.cfg)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	if err := cfg.RequireSiteSheet(); err != nil {
		return err
	}

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"cache_backend", cfg.Cache.Backend,
		"refresh_interval", cfg.Site.RefreshInterval,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	c, store, err := openCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore(store)

	loader := newLoader(cfg, c)
	app := core.NewApp(loader)
	server := web.NewServer(app, cfg)

	// Background jobs stop on the first signal.
	jobCtx, cancelJobs := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancelJobs()

	go app.StartRefreshScheduler(jobCtx, cfg.Site.RefreshInterval)

	if cfg.Sheet.ConfigFile != "" && cfg.Sheet.WatchConfigFile {
		go watchSiteFile(jobCtx, cfg, app, server)
	}

	go func() {
		<-jobCtx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	slog.Info("server stopped")
	return nil
}

// watchSiteFile applies the site config file to the running server
// whenever it changes.
func watchSiteFile(ctx context.Context, cfg *config.Config, app *core.App, server *web.Server) {
	err := config.WatchSiteFile(ctx, cfg.Sheet.ConfigFile, config.DefaultDebounce, func(sf config.SiteFile) {
		applySiteFile(ctx, cfg, sf, app, server)
	})
	if err != nil {
		slog.Warn("site config watch stopped", "error", err)
	}
}

// applySiteFile swaps in the site defaults from sf and, when the Site sheet
// changed, points the loader at it and reloads right away. The environment
// still wins for the Site sheet URL.
func applySiteFile(ctx context.Context, cfg *config.Config, sf config.SiteFile, app *core.App, server *web.Server) {
	next := cfg.WithSiteFile(sf)
	server.SetSiteConfig(next.Site)

	ref := next.Sheet.SiteSheetURL
	loader := app.Loader()
	if ref == "" || ref == loader.SiteRef() {
		return
	}
	slog.Info("site sheet changed", "site_sheet", ref)
	loader.SetSiteRef(ref)
	if _, err := app.Refresh(ctx); err != nil {
		slog.Warn("reload after site config change failed", "error", err, "code", core.MapError(err).Code)
	}
}
