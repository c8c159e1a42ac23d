package cli

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/a-h/templ"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/634252452/Sheets2Website/internal/config"
	"github.com/634252452/Sheets2Website/internal/core"
	"github.com/634252452/Sheets2Website/internal/render"
	"github.com/634252452/Sheets2Website/internal/web"
)

const exportWorkers = 8

func newExportCmd(rt *runtime) *cobra.Command {
	var (
		outDir string
		theme  string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the site as static HTML files",
		Long: `Loads the site once and writes index.html, one <id>.html per page and post,
posts.html when there are posts, and the stylesheets under static/.
Links between files are relative, so the output can be opened from disk or
uploaded to any static host.`,
		Example: `  sheetsite export --out public`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := runExport(cmd.Context(), rt.cfg, outDir, theme)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d pages to %s\n", n, outDir)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "public", "output directory")
	cmd.Flags().StringVar(&theme, "theme", "", "theme to render with (default: from the Site sheet)")
	return cmd
}

// exportFile is one HTML file to write.
type exportFile struct {
	name  string
	route core.Route
}

func runExport(ctx context.Context, cfg *config.Config, outDir, theme string) (int, error) {
	if err := cfg.RequireSiteSheet(); err != nil {
		return 0, err
	}
	if theme != "" && !core.ThemeExists(theme) {
		return 0, fmt.Errorf("unknown theme %q", theme)
	}

	c, store, err := openCache(ctx, cfg)
	if err != nil {
		return 0, err
	}
	defer closeStore(store)

	snap, err := newLoader(cfg, c).Load(ctx)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return 0, fmt.Errorf("create output directory: %w", err)
	}

	files := exportPlan(snap, cfg.Site.DefaultPageID)
	opts := render.Options{
		Theme:        theme,
		DefaultTheme: cfg.Site.DefaultTheme,
		DefaultHome:  cfg.Site.DefaultPageID,
		Sort:         core.SortDesc,
		Static:       true,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(exportWorkers)

	g.Go(func() error {
		return copyStatic(filepath.Join(outDir, "static"), web.StaticFS())
	})
	for _, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v := render.BuildView(snap, f.route, opts)
			return writeComponent(gctx, filepath.Join(outDir, f.name), render.Page(v))
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	slog.Info("site exported", "dir", outDir, "files", len(files), "load_id", snap.LoadID)
	return len(files), nil
}

// exportPlan lists the files for a snapshot. Pages whose ids cannot be file
// names are skipped with a warning.
func exportPlan(snap *core.Snapshot, defaultHome string) []exportFile {
	home := core.HomePageID(snap.Site, defaultHome)
	files := []exportFile{{name: "index.html", route: core.Route{Kind: core.RoutePage, PageID: home}}}

	seen := map[string]bool{"index": true}
	if core.HasPosts(snap.Pages) {
		files = append(files, exportFile{name: core.PostsRouteID + ".html", route: core.Route{Kind: core.RoutePosts}})
		seen[core.PostsRouteID] = true
	}

	for _, p := range snap.Pages {
		if !validFileName(p.ID) {
			slog.Warn("skipping page with unusable id", "id", p.ID)
			continue
		}
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		files = append(files, exportFile{name: p.ID + ".html", route: core.Route{Kind: core.RoutePage, PageID: p.ID}})
	}
	return files
}

func validFileName(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	return !strings.ContainsAny(id, `/\`+"\x00")
}

func writeComponent(ctx context.Context, path string, c templ.Component) error {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return fmt.Errorf("render %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// copyStatic copies the embedded stylesheets into dir.
func copyStatic(dir string, src fs.FS) error {
	return fs.WalkDir(src, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		target := filepath.Join(dir, filepath.FromSlash(path))
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := fs.ReadFile(src, path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0o644)
	})
}
