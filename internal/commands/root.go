package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/ynabimport/internal/buildinfo"
	"github.com/cleared-dev/ynabimport/internal/config"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "ynabimport",
		Short:   "Convert bank statement exports into YNAB import files",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default "+config.DefaultPath+" if present)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format: text or json")

	rootCmd.AddCommand(newConvertCommand(opts))
	rootCmd.AddCommand(newShowCommand(opts))
	rootCmd.AddCommand(newFormatsCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newHistoryCommand(opts))

	return rootCmd
}
