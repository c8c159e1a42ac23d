package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/634252452/Sheets2Website/internal/sheets"
)

func newNormalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <sheet>",
		Short: "Print the CSV export URL for a sheet URL or ID",
		Example: `  sheetsite normalize 1AbCdEf
  sheetsite normalize "https://docs.google.com/spreadsheets/d/1AbCdEf/edit#gid=0"`,
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{annotationNoConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := sheets.NormalizeURL(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		},
	}
}
