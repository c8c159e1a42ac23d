package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/634252452/Sheets2Website/internal/config"
	"github.com/634252452/Sheets2Website/internal/csvparse"
	"github.com/634252452/Sheets2Website/internal/sheets"
)

// fetchResult is the JSON printed by fetch for a full site load.
type fetchResult struct {
	LoadID    string         `json:"loadId"`
	PagesURL  string         `json:"pagesUrl"`
	Version   string         `json:"version"`
	FromCache bool           `json:"fromCache"`
	Site      csvparse.Row   `json:"site"`
	Pages     csvparse.Table `json:"pages"`
}

// sheetOutput selects how a single fetched sheet is printed.
type sheetOutput struct {
	headers bool
	column  string
}

func newFetchCmd(rt *runtime) *cobra.Command {
	var so sheetOutput
	cmd := &cobra.Command{
		Use:   "fetch [sheet]",
		Short: "Download sheets and print them as JSON",
		Long: `Without arguments, loads the configured Site sheet and the Pages sheet it
names, going through the cache. With a sheet URL or ID, downloads just that
sheet and prints its rows.`,
		Example: `  # Print the whole site
  sheetsite fetch

  # Print one sheet
  sheetsite fetch https://docs.google.com/spreadsheets/d/1AbC.../edit

  # List the page ids of a Pages sheet
  sheetsite fetch 1AbC... --column id`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runFetchSheet(cmd.Context(), cmd.OutOrStdout(), rt.cfg, args[0], so)
			}
			if so.headers || so.column != "" {
				return errors.New("--headers and --column need a sheet argument")
			}
			return runFetchSite(cmd.Context(), cmd.OutOrStdout(), rt.cfg)
		},
	}
	cmd.Flags().BoolVar(&so.headers, "headers", false, "print the sheet's column names, one per line")
	cmd.Flags().StringVar(&so.column, "column", "", "print one column's values, one per line")
	cmd.MarkFlagsMutuallyExclusive("headers", "column")
	return cmd
}

func runFetchSheet(ctx context.Context, out io.Writer, cfg *config.Config, ref string, so sheetOutput) error {
	url, err := sheets.NormalizeURL(ref)
	if err != nil {
		return err
	}
	fetcher := sheets.NewHTTPFetcher(cfg.Fetch.Timeout, cfg.Fetch.UserAgent, cfg.Fetch.MaxBodySize)
	table, err := sheets.FetchTable(ctx, fetcher, url)
	if err != nil {
		return err
	}

	switch {
	case so.headers:
		return printLines(out, table.Headers())
	case so.column != "":
		if !slices.Contains(table.Headers(), so.column) {
			return fmt.Errorf("sheet has no column %q", so.column)
		}
		return printLines(out, table.Column(so.column))
	}
	return printJSON(out, table)
}

func runFetchSite(ctx context.Context, out io.Writer, cfg *config.Config) error {
	if err := cfg.RequireSiteSheet(); err != nil {
		return err
	}

	c, store, err := openCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore(store)

	snap, err := newLoader(cfg, c).Load(ctx)
	if err != nil {
		return err
	}
	return printJSON(out, fetchResult{
		LoadID:    snap.LoadID.String(),
		PagesURL:  snap.PagesURL,
		Version:   snap.Version,
		FromCache: snap.FromCache,
		Site:      snap.Site.Row(),
		Pages:     snap.PagesTable,
	})
}

func printLines(out io.Writer, lines []string) error {
	for _, l := range lines {
		if _, err := fmt.Fprintln(out, l); err != nil {
			return err
		}
	}
	return nil
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
