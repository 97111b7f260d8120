package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/voucherbook/internal/balance"
	"github.com/cleared-dev/voucherbook/internal/model"
)

func newBalanceCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "balance [account]",
		Short: "Show the live balance of one account, or of every account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, nil)
			if err != nil {
				return err
			}
			f := s.cfg.Formatter()

			if len(args) == 1 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", args[0], f.Format(s.book.Balance(args[0])))
				return nil
			}

			balances := s.book.Balances()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ACCOUNT\tTYPE\tBALANCE")
			for _, a := range s.book.Accounts() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", a.Name, a.Type, f.Format(balances[a.ID]))
			}
			return tw.Flush()
		},
	}
}

func newStatementCommand(opts *globalOptions) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "statement <account>",
		Short: "Print the running-balance statement of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, nil)
			if err != nil {
				return err
			}

			start, err := model.ParseDate(from)
			if err != nil {
				return err
			}
			end := s.book.Today()
			if to != "" {
				if end, err = model.ParseDate(to); err != nil {
					return err
				}
			}

			st, err := s.book.Statement(args[0], start, end)
			if err != nil {
				return err
			}
			return printStatement(cmd, st, s)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first date, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("from")
	cmd.Flags().StringVar(&to, "to", "", "last date, YYYY-MM-DD (default today)")

	return cmd
}

func printStatement(cmd *cobra.Command, st balance.Statement, s *session) error {
	f := s.cfg.Formatter()
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%s (%s) %s to %s\n", st.Account.Name, st.Account.Type,
		st.Start.Format(model.DateFormat), st.End.Format(model.DateFormat))

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tVOUCHER\tCOUNTERPARTY\tDEBIT\tCREDIT\tBALANCE")
	for _, r := range st.Rows {
		var debit, credit string
		if !r.Debit.IsZero() {
			debit = f.Format(r.Debit)
		}
		if !r.Credit.IsZero() {
			credit = f.Format(r.Credit)
		}
		label := r.VoucherID
		switch r.Kind {
		case balance.RowOpening:
			label = "opening"
		case balance.RowClosing:
			label = "closing"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Date.Format(model.DateFormat), label, r.Counterparty, debit, credit, f.Format(r.Balance))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if st.NoTransactions() {
		fmt.Fprintln(out, "No transactions in this period.")
		return nil
	}
	fmt.Fprintf(out, "Total debits %s, total credits %s\n", f.Format(st.TotalDebits()), f.Format(st.TotalCredits()))
	return nil
}
