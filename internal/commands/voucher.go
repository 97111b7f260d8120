package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/voucherbook/internal/book"
	"github.com/cleared-dev/voucherbook/internal/journal"
	"github.com/cleared-dev/voucherbook/internal/model"
	"github.com/cleared-dev/voucherbook/internal/money"
)

func newVoucherCommand(opts *globalOptions) *cobra.Command {
	voucherCmd := &cobra.Command{
		Use:   "voucher",
		Short: "Record and review vouchers",
	}
	voucherCmd.AddCommand(newVoucherCreateCommand(opts))
	voucherCmd.AddCommand(newVoucherEditCommand(opts))
	voucherCmd.AddCommand(newVoucherStatusCommand(opts, "approve", "Approve a pending voucher", (*book.Book).Approve))
	voucherCmd.AddCommand(newVoucherStatusCommand(opts, "reject", "Reject a pending voucher", (*book.Book).Reject))
	voucherCmd.AddCommand(newVoucherDeleteCommand(opts))
	voucherCmd.AddCommand(newVoucherListCommand(opts))
	return voucherCmd
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", model.ErrInvalidAmount, s)
	}
	return d, nil
}

func newVoucherCreateCommand(opts *globalOptions) *cobra.Command {
	var params journal.CreateParams
	var amount string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Record a pending voucher dated today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if amount != "" {
				d, err := parseAmount(amount)
				if err != nil {
					return err
				}
				params.Amount = d
			}

			s, err := openSession(opts, nil)
			if err != nil {
				return err
			}
			v, err := s.book.CreateVoucher(params)
			if err != nil {
				return err
			}
			if err := s.save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s: %s -> %s %s (pending)\n",
				v.ID, params.CreditAccount, params.DebitAccount, s.cfg.Formatter().Format(v.Amount))
			return nil
		},
	}

	cmd.Flags().StringVar(&params.CreditAccount, "credit", "", "account credited (money out)")
	cmd.Flags().StringVar(&params.DebitAccount, "debit", "", "account debited (money in)")
	cmd.Flags().StringVar(&amount, "amount", "", "positive amount, at most 2 decimal places")
	cmd.Flags().StringVar(&params.Remarks, "remarks", "", "free-text remarks")

	return cmd
}

func newVoucherEditCommand(opts *globalOptions) *cobra.Command {
	var credit, debit, amount, remarks, date string
	var version int

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a pending voucher",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := journal.Patch{Version: version}
			flags := cmd.Flags()
			if flags.Changed("credit") {
				patch.CreditAccount = &credit
			}
			if flags.Changed("debit") {
				patch.DebitAccount = &debit
			}
			if flags.Changed("amount") {
				d, err := parseAmount(amount)
				if err != nil {
					return err
				}
				patch.Amount = &d
			}
			if flags.Changed("remarks") {
				patch.Remarks = &remarks
			}
			if flags.Changed("date") {
				d, err := model.ParseDate(date)
				if err != nil {
					return err
				}
				patch.Date = &d
			}

			s, err := openSession(opts, nil)
			if err != nil {
				return err
			}
			v, err := s.book.EditVoucher(args[0], patch)
			if err != nil {
				return err
			}
			if err := s.save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s (version %d)\n", v.ID, v.Version)
			return nil
		},
	}

	cmd.Flags().StringVar(&credit, "credit", "", "new credit account")
	cmd.Flags().StringVar(&debit, "debit", "", "new debit account")
	cmd.Flags().StringVar(&amount, "amount", "", "new amount")
	cmd.Flags().StringVar(&remarks, "remarks", "", "new remarks")
	cmd.Flags().StringVar(&date, "date", "", "new date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&version, "version", 0, "expected current version; 0 skips the check")

	return cmd
}

func newVoucherStatusCommand(opts *globalOptions, use, short string, apply func(*book.Book, string) (model.Voucher, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, nil)
			if err != nil {
				return err
			}
			v, err := apply(s.book, args[0])
			if err != nil {
				return err
			}
			if err := s.save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", v.ID, v.Status)
			return nil
		},
	}
}

func newVoucherDeleteCommand(opts *globalOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a voucher at any status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, nil)
			if err != nil {
				return err
			}
			v, err := s.book.Voucher(args[0])
			if err != nil {
				return err
			}

			ok := yes || confirm(cmd, fmt.Sprintf("Delete %s voucher %s?", v.Status, v.ID))
			if _, err := s.book.DeleteVoucher(v.ID, ok); err != nil {
				return err
			}
			if err := s.save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted voucher %s\n", v.ID)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

func newVoucherListCommand(opts *globalOptions) *cobra.Command {
	var status, account string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List vouchers in journal order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, nil)
			if err != nil {
				return err
			}

			var f journal.Filter
			if status != "" {
				st, err := model.ParseVoucherStatus(status)
				if err != nil {
					return err
				}
				f.Status = st
			}
			if account != "" {
				a, err := s.lookupAccount(account)
				if err != nil {
					return err
				}
				f.AccountID = a.ID
			}

			return printVouchers(cmd, s.book.Vouchers(f), s.cfg.Formatter())
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "only pending, approved or rejected vouchers")
	cmd.Flags().StringVar(&account, "account", "", "only vouchers touching this account")

	return cmd
}

func printVouchers(cmd *cobra.Command, vs []book.VoucherView, f money.Formatter) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tCREDIT\tDEBIT\tAMOUNT\tSTATUS\tREMARKS")
	for _, v := range vs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			v.ID, v.Date.Format(model.DateFormat), v.CreditName, v.DebitName, f.Format(v.Amount), v.Status, v.Remarks)
	}
	return tw.Flush()
}
