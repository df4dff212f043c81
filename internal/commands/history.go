package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ynabimport/internal/runlog"
)

func newHistoryCommand(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List previous conversions from the run log",
		Long: `List previous conversions from the run log.

The run log is off unless output.run_log is set in the config file. When
enabled, convert appends one CSV line per successful run holding only run
metadata (time, batch id, format, source name, transaction count and output
path), never transactions. Delete the file to clear the history.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(global)
			if err != nil {
				return err
			}
			if cfg.Output.RunLog == "" {
				return fmt.Errorf("no run log configured (set output.run_log)")
			}

			entries, err := runlog.Read(cfg.Output.RunLog)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No conversions recorded.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tFORMAT\tTRANSACTIONS\tSOURCE\tOUTPUT")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
					e.Timestamp.Local().Format(time.DateTime), e.Format, e.Transactions, e.Source, e.Output)
			}
			return tw.Flush()
		},
	}
}
