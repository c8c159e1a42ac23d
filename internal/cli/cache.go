package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"
)

func newCacheCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the sheet cache",
	}
	cmd.AddCommand(newCacheStatusCmd(rt), newCacheClearCmd(rt))
	return cmd
}

func newCacheStatusCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List cached sheets with their version and age",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			c, store, err := openCache(ctx, rt.cfg)
			if err != nil {
				return err
			}
			defer closeStore(store)

			entries := c.Entries(ctx)
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintf(out, "cache %q is empty\n", rt.cfg.Cache.Backend)
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tVERSION\tROWS\tSTORED")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", e.Key, e.Version, e.Rows, humanize.Time(e.StoredAt))
			}
			return tw.Flush()
		},
	}
}

func newCacheClearCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached sheet under the configured prefix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			c, store, err := openCache(ctx, rt.cfg)
			if err != nil {
				return err
			}
			defer closeStore(store)

			n := len(c.Entries(ctx))
			c.Clear(ctx)
			fmt.Fprintf(cmd.OutOrStdout(), "cleared %d cached %s\n", n, english.PluralWord(n, "sheet", ""))
			return nil
		},
	}
}
