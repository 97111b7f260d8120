package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/voucherbook/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var opts globalOptions

	rootCmd := &cobra.Command{
		Use:     "voucherbook",
		Short:   "Voucher journal and account ledger",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.bookDir, "book", ".", "book directory")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "dotenv file with VOUCHERBOOK_* overrides (default ./.env if present)")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newAccountCommand(&opts))
	rootCmd.AddCommand(newVoucherCommand(&opts))
	rootCmd.AddCommand(newBalanceCommand(&opts))
	rootCmd.AddCommand(newStatementCommand(&opts))
	rootCmd.AddCommand(newImportCommand(&opts))
	rootCmd.AddCommand(newServeCommand(&opts))

	return rootCmd
}
