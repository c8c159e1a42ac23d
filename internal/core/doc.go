// Package core holds the site domain: the Site and Page records read from
// the spreadsheet, the post helpers, themes, routes and the application
// state shared by the web server and the CLI.
//
// It is independent of any transport layer and can be used by web handlers,
// CLI commands, or tests without modification.
//
// # Loading
//
// A [Loader] fetches the Site sheet (never cached), reads the Pages sheet
// reference from its webpages_csv_url column and fetches the Pages sheet
// through the versioned cache, keyed by the Site sheet's
// webpages_cache_version:
//
//	loader := core.NewLoader(fetcher, c, cfg.Sheet.SiteSheetURL, core.LoaderOptions{})
//	app := core.NewApp(loader)
//	go app.StartRefreshScheduler(ctx, 5*time.Minute)
//
// The result is an immutable [Snapshot]. [App] swaps snapshots atomically so
// readers never see a half-loaded site.
//
// # Posts
//
// Pages and posts share the Pages sheet and differ by their type column.
// [PostsOnly], [SortPostsByDate], [FilterByTag] and [FilterByCategory]
// implement the posts list.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - URL001-URL003: Sheet reference errors
//   - FETCH001-FETCH003: Download errors
//   - SITE001-SITE002: Site sheet errors
package core
