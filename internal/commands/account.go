package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/voucherbook/internal/model"
)

func newAccountCommand(opts *globalOptions) *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Manage the chart of accounts",
	}
	accountCmd.AddCommand(newAccountAddCommand(opts))
	accountCmd.AddCommand(newAccountListCommand(opts))
	accountCmd.AddCommand(newAccountDeleteCommand(opts))
	return accountCmd
}

func newAccountAddCommand(opts *globalOptions) *cobra.Command {
	var accountType string
	var opening string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := model.ParseAccountType(accountType)
			if err != nil {
				return err
			}
			bal, err := decimal.NewFromString(opening)
			if err != nil {
				return fmt.Errorf("%w: opening balance %q", model.ErrInvalidAmount, opening)
			}

			s, err := openSession(opts, nil)
			if err != nil {
				return err
			}
			a, err := s.book.AddAccount(args[0], t, bal)
			if err != nil {
				return err
			}
			if err := s.save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s account %s (%s) with opening balance %s\n",
				a.Type, a.Name, a.ID, s.cfg.Formatter().Format(a.Balance))
			return nil
		},
	}

	cmd.Flags().StringVar(&accountType, "type", "", "account type: expense, income or asset (required)")
	_ = cmd.MarkFlagRequired("type")
	cmd.Flags().StringVar(&opening, "balance", "0", "opening balance")

	return cmd
}

func newAccountListCommand(opts *globalOptions) *cobra.Command {
	var accountType string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts with their live balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, nil)
			if err != nil {
				return err
			}

			accts := s.book.Accounts()
			if accountType != "" {
				t, err := model.ParseAccountType(accountType)
				if err != nil {
					return err
				}
				accts = s.book.AccountsByType(t)
			}

			balances := s.book.Balances()
			f := s.cfg.Formatter()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tTYPE\tOPENING\tBALANCE\tID")
			for _, a := range accts {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", a.Name, a.Type, f.Format(a.Balance), f.Format(balances[a.ID]), a.ID)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&accountType, "type", "", "only list accounts of this type")

	return cmd
}

func newAccountDeleteCommand(opts *globalOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <name-or-id>",
		Short: "Delete an account no voucher references",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, nil)
			if err != nil {
				return err
			}
			a, err := s.lookupAccount(args[0])
			if err != nil {
				return err
			}

			ok := yes || confirm(cmd, fmt.Sprintf("Delete account %s?", a.Name))
			if _, err := s.book.DeleteAccount(a.ID, ok); err != nil {
				return err
			}
			if err := s.save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted account %s\n", a.Name)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}
