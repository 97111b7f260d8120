package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the calendar-date layout used for voucher dates.
const DateFormat = "2006-01-02"

// VoucherStatus represents the lifecycle state of a voucher.
type VoucherStatus string

const (
	StatusPending  VoucherStatus = "pending"
	StatusApproved VoucherStatus = "approved"
	StatusRejected VoucherStatus = "rejected"
)

// Valid reports whether s is one of the known statuses.
func (s VoucherStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Final reports whether no further transition is possible.
func (s VoucherStatus) Final() bool {
	return s == StatusApproved || s == StatusRejected
}

// ParseVoucherStatus converts user input to a VoucherStatus.
func ParseVoucherStatus(s string) (VoucherStatus, error) {
	st := VoucherStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

// Voucher is a double-entry transaction moving Amount from the credit
// account to the debit account. Accounts are referenced by ID.
type Voucher struct {
	ID              string // "VN0001"
	Date            time.Time
	CreditAccountID string
	DebitAccountID  string
	Amount          decimal.Decimal
	Remarks         string
	Status          VoucherStatus
	Version         int // bumped on every mutation
}

// Touches reports whether the voucher credits or debits accountID.
func (v Voucher) Touches(accountID string) bool {
	return v.CreditAccountID == accountID || v.DebitAccountID == accountID
}

// Counterparty returns the account on the other side of the entry from accountID.
func (v Voucher) Counterparty(accountID string) string {
	if v.DebitAccountID == accountID {
		return v.CreditAccountID
	}
	return v.DebitAccountID
}

// Day truncates t to a UTC calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t, nil
}
