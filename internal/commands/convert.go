package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ynabimport/internal/config"
	"github.com/cleared-dev/ynabimport/internal/convert"
	"github.com/cleared-dev/ynabimport/internal/model"
	"github.com/cleared-dev/ynabimport/internal/runlog"
	"github.com/cleared-dev/ynabimport/internal/storage"
	"github.com/cleared-dev/ynabimport/internal/ynab"
)

// stdio marks stdin as the source or stdout as the destination.
const stdio = "-"

type convertOptions struct {
	format string
	out    string
	rate   string
	policy string
}

func newConvertCommand(global *globalOptions) *cobra.Command {
	opts := &convertOptions{}

	cmd := &cobra.Command{
		Use:   "convert <statement.csv|->",
		Short: "Convert a bank statement into a YNAB import file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(global)
			if err != nil {
				return err
			}
			applyConvertFlags(cmd, cfg, opts)
			return runConvert(cmd.Context(), cmd, cfg, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", convert.FormatAuto, "statement format: auto, wise or otp")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output directory, or - for stdout (default from config)")
	cmd.Flags().StringVar(&opts.rate, "rate", "", "fixed exchange rate, skips the rate request")
	cmd.Flags().StringVar(&opts.policy, "policy", "", "conversion policy: fixed, historical or none")

	return cmd
}

func applyConvertFlags(cmd *cobra.Command, cfg *config.Config, opts *convertOptions) {
	if cmd.Flags().Changed("rate") {
		cfg.Conversion.FixedRate = opts.rate
	}
	if cmd.Flags().Changed("policy") {
		cfg.Conversion.Policy = opts.policy
	}
	if opts.out == "" {
		opts.out = cfg.Output.Dir
	}
}

func runConvert(ctx context.Context, cmd *cobra.Command, cfg *config.Config, path string, opts *convertOptions) error {
	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	svc, err := newService(cfg, logger)
	if err != nil {
		return err
	}

	src := source(cmd, path)

	var sink storage.Sink
	output := opts.out
	if opts.out == stdio {
		sink = storage.WriterSink{W: cmd.OutOrStdout()}
	} else {
		dirSink := storage.DirSink{Dir: opts.out}
		output = dirSink.Path(ynab.Filename)
		sink = dirSink
	}

	batch, err := svc.Run(ctx, src, sink, opts.format)
	if err != nil {
		return err
	}

	if cfg.Output.RunLog != "" {
		if err := recordRun(cfg.Output.RunLog, batch, src.Name(), output); err != nil {
			logger.Warn("run log not updated", "path", cfg.Output.RunLog, "error", err)
		}
	}

	if opts.out != stdio {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d %s transactions to %s\n", batch.Len(), batch.Format(), output)
	}
	return nil
}

// newService leaves the rate request to the first multi-currency import;
// the HTTP client built from cfg bounds it by conversion.timeout.
func newService(cfg *config.Config, logger *slog.Logger) (*convert.Service, error) {
	if cfg.Conversion.Timeout <= 0 {
		cfg.Conversion.Timeout = config.Default().Conversion.Timeout
	}
	return convert.NewServiceFromConfig(cfg, nil, logger)
}

func source(cmd *cobra.Command, path string) storage.Source {
	if path == stdio {
		return storage.ReaderSource{Label: "stdin", Reader: cmd.InOrStdin()}
	}
	return storage.FileSource{Path: path}
}

func recordRun(path string, batch *model.Batch, src, output string) error {
	return runlog.Append(path, []runlog.Entry{{
		Timestamp:    batch.ImportedAt().Truncate(time.Second),
		BatchID:      batch.ID(),
		Format:       batch.Format(),
		Source:       src,
		Transactions: batch.Len(),
		Output:       output,
	}})
}
