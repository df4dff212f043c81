package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ynabimport/internal/convert"
	"github.com/cleared-dev/ynabimport/internal/model"
)

func newShowCommand(global *globalOptions) *cobra.Command {
	opts := &convertOptions{}

	cmd := &cobra.Command{
		Use:   "show <statement.csv|->",
		Short: "Print the transactions parsed from a statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(global)
			if err != nil {
				return err
			}
			applyConvertFlags(cmd, cfg, opts)

			logger, err := newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			svc, err := newService(cfg, logger)
			if err != nil {
				return err
			}

			data, err := source(cmd, args[0]).Read(cmd.Context())
			if err != nil {
				return err
			}
			batch, err := svc.Import(cmd.Context(), data, opts.format)
			if err != nil {
				return err
			}
			return printBatch(cmd.OutOrStdout(), batch)
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", convert.FormatAuto, "statement format: auto, wise or otp")
	cmd.Flags().StringVar(&opts.rate, "rate", "", "fixed exchange rate, skips the rate request")
	cmd.Flags().StringVar(&opts.policy, "policy", "", "conversion policy: fixed, historical or none")

	return cmd
}

func printBatch(w io.Writer, batch *model.Batch) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tID\tAMOUNT\tCURRENCY\tCONVERTED\tPAYEE\tMEMO")
	for _, txn := range batch.Transactions() {
		converted := ""
		if txn.ConvertedAmount.Valid {
			converted = txn.ConvertedAmount.Decimal.StringFixed(2)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			txn.Date.Format("2006-01-02"),
			txn.ID,
			txn.Amount.StringFixed(2),
			txn.Currency,
			converted,
			txn.Payee,
			txn.Memo,
		)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("writing table: %w", err)
	}
	_, err := fmt.Fprintf(w, "\n%d transactions (%s, batch %s)\n", batch.Len(), batch.Format(), batch.ID())
	return err
}
