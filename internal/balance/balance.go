// Package balance derives account balances and running-balance statements
// from the chart of accounts and the voucher journal. Every function is a
// pure fold over its inputs; nothing is cached.
package balance

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/voucherbook/internal/model"
)

// Of returns the live balance of the named account: its opening balance
// (zero when no such account exists) plus approved debits minus approved
// credits. Pending and rejected vouchers do not count.
func Of(accounts []model.Account, vouchers []model.Voucher, accountName string) decimal.Decimal {
	acct, ok := find(accounts, accountName)
	if !ok {
		return decimal.Zero
	}
	return fold(acct, vouchers)
}

// All returns the live balance of every account keyed by account ID.
func All(accounts []model.Account, vouchers []model.Voucher) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(accounts))
	for _, a := range accounts {
		out[a.ID] = a.Balance
	}
	for _, v := range vouchers {
		if v.Status != model.StatusApproved {
			continue
		}
		if b, ok := out[v.DebitAccountID]; ok {
			out[v.DebitAccountID] = b.Add(v.Amount)
		}
		if b, ok := out[v.CreditAccountID]; ok {
			out[v.CreditAccountID] = b.Sub(v.Amount)
		}
	}
	return out
}

func fold(acct model.Account, vouchers []model.Voucher) decimal.Decimal {
	bal := acct.Balance
	for _, v := range vouchers {
		if v.Status != model.StatusApproved {
			continue
		}
		// Both branches apply if a voucher names the account on each side.
		if v.DebitAccountID == acct.ID {
			bal = bal.Add(v.Amount)
		}
		if v.CreditAccountID == acct.ID {
			bal = bal.Sub(v.Amount)
		}
	}
	return bal
}

func find(accounts []model.Account, name string) (model.Account, bool) {
	i := slices.IndexFunc(accounts, func(a model.Account) bool { return a.Name == name })
	if i < 0 {
		return model.Account{}, false
	}
	return accounts[i], true
}

// RowKind tags statement rows.
type RowKind string

const (
	RowOpening RowKind = "opening"
	RowEntry   RowKind = "entry"
	RowClosing RowKind = "closing"
)

// Row is one line of a statement. Debit and Credit are zero on opening and
// closing rows; exactly one of them is set on entry rows.
type Row struct {
	Kind         RowKind
	Date         time.Time
	VoucherID    string
	Counterparty string
	Debit        decimal.Decimal
	Credit       decimal.Decimal
	Balance      decimal.Decimal
}

// Statement is the running-balance history of one account over [Start, End].
type Statement struct {
	Account model.Account
	Start   time.Time
	End     time.Time
	Opening decimal.Decimal
	Closing decimal.Decimal
	Rows    []Row // opening row, entries in date order, closing row
}

// Entries returns the rows between the opening and closing rows.
func (s Statement) Entries() []Row {
	if len(s.Rows) < 2 {
		return nil
	}
	return s.Rows[1 : len(s.Rows)-1]
}

// NoTransactions reports whether no voucher fell inside the range.
func (s Statement) NoTransactions() bool {
	return len(s.Entries()) == 0
}

// TotalDebits sums the debit column.
func (s Statement) TotalDebits() decimal.Decimal {
	total := decimal.Zero
	for _, r := range s.Entries() {
		total = total.Add(r.Debit)
	}
	return total
}

// TotalCredits sums the credit column.
func (s Statement) TotalCredits() decimal.Decimal {
	total := decimal.Zero
	for _, r := range s.Entries() {
		total = total.Add(r.Credit)
	}
	return total
}

// BuildStatement replays the approved vouchers touching the named account
// whose date falls in [start, end] inclusive. Vouchers are stably sorted by
// date only, so same-day vouchers keep journal order. The running balance
// starts from the account's stored opening balance.
func BuildStatement(accounts []model.Account, vouchers []model.Voucher, accountName string, start, end time.Time) (Statement, error) {
	acct, ok := find(accounts, accountName)
	if !ok {
		return Statement{}, fmt.Errorf("account %q: %w", accountName, model.ErrNotFound)
	}
	start, end = model.Day(start), model.Day(end)
	if end.Before(start) {
		return Statement{}, fmt.Errorf("%w: %s is after %s", model.ErrInvalidRange, start.Format(model.DateFormat), end.Format(model.DateFormat))
	}

	var matched []model.Voucher
	for _, v := range vouchers {
		if v.Status != model.StatusApproved || !v.Touches(acct.ID) {
			continue
		}
		if v.Date.Before(start) || v.Date.After(end) {
			continue
		}
		matched = append(matched, v)
	}
	slices.SortStableFunc(matched, func(a, b model.Voucher) int {
		return a.Date.Compare(b.Date)
	})

	names := make(map[string]string, len(accounts))
	for _, a := range accounts {
		names[a.ID] = a.Name
	}
	counterparty := func(accountID string) string {
		if n, ok := names[accountID]; ok {
			return n
		}
		return accountID
	}

	running := acct.Balance
	rows := make([]Row, 0, len(matched)+2)
	rows = append(rows, Row{Kind: RowOpening, Date: start, Balance: running})

	for _, v := range matched {
		row := Row{
			Kind:         RowEntry,
			Date:         v.Date,
			VoucherID:    v.ID,
			Counterparty: counterparty(v.Counterparty(acct.ID)),
		}
		if v.DebitAccountID == acct.ID {
			running = running.Add(v.Amount)
			row.Debit = v.Amount
		}
		if v.CreditAccountID == acct.ID {
			running = running.Sub(v.Amount)
			row.Credit = v.Amount
		}
		row.Balance = running
		rows = append(rows, row)
	}

	rows = append(rows, Row{Kind: RowClosing, Date: end, Balance: running})

	return Statement{
		Account: acct,
		Start:   start,
		End:     end,
		Opening: acct.Balance,
		Closing: running,
		Rows:    rows,
	}, nil
}
