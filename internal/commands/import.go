package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/voucherbook/internal/importer"
)

func newImportCommand(opts *globalOptions) *cobra.Command {
	var format string
	var mapping importer.BankMapping

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Record CSV files in <book>/import/ as pending vouchers",
		Long: `Parse every CSV file in the book's import/ directory and record each row
as a pending voucher. Each file is imported completely or not at all.
Imported files are moved to import/processed/. A file whose name is already
in import/processed/ stops the run before anything is recorded.

Formats:
  voucherbook  date,credit_account,debit_account,amount,remarks
  bank         bank statement export; rows are booked against --bank-account
               and --income-account or --expense-account by sign`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, nil)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if !flags.Changed("bank-account") {
				mapping.Account = s.cfg.Import.BankAccount
			}
			if !flags.Changed("income-account") {
				mapping.Income = s.cfg.Import.IncomeAccount
			}
			if !flags.Changed("expense-account") {
				mapping.Expense = s.cfg.Import.ExpenseAccount
			}

			p := importer.DefaultRegistry(mapping).Get(format)
			if p == nil {
				return fmt.Errorf("unknown import format %q", format)
			}

			results, err := importer.Import(s.book, s.root, p)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No CSV files in import/")
				return nil
			}
			if err := s.save(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, r := range results {
				if err := importer.MarkProcessed(s.root, r.File.Name); err != nil {
					return err
				}
				fmt.Fprintf(out, "%s: %d vouchers", r.File.Name, len(r.Vouchers))
				if n := len(r.Vouchers); n > 0 {
					fmt.Fprintf(out, " (%s-%s)", r.Vouchers[0].ID, r.Vouchers[n-1].ID)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "voucherbook", "input format: voucherbook or bank")
	cmd.Flags().StringVar(&mapping.Account, "bank-account", "", "bank format: account the statement belongs to")
	cmd.Flags().StringVar(&mapping.Income, "income-account", "", "bank format: account credited for deposits")
	cmd.Flags().StringVar(&mapping.Expense, "expense-account", "", "bank format: account debited for withdrawals")

	return cmd
}
