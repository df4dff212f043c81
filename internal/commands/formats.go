package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ynabimport/internal/importer"
)

func newFormatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported statement formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := importer.DefaultRegistry()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "FORMAT\tENCODING\tDELIMITER\tMULTI-CURRENCY")
			for _, name := range registry.Formats() {
				p := registry.Get(name)
				fmt.Fprintf(tw, "%s\t%s\t%q\t%t\n", p.Format(), p.Encoding(), p.Delimiter(), p.MultiCurrency())
			}
			return tw.Flush()
		},
	}
}
