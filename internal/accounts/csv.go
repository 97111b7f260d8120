package accounts

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/voucherbook/internal/model"
)

// Header is the first row of accounts.csv.
var Header = []string{"id", "name", "type", "opening_balance"}

const (
	colID = iota
	colName
	colType
	colBalance
	numFields
)

// ReadAccounts parses accounts.csv. An empty input yields no accounts.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	head, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading accounts header: %w", err)
	}
	if !slices.Equal(head, Header) {
		return nil, fmt.Errorf("unexpected accounts header %q", strings.Join(head, ","))
	}

	var out []model.Account
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading accounts: %w", err)
		}
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("accounts line %d: %w", line, err)
		}
		out = append(out, acct)
	}
}

// WriteAccounts writes the header followed by one row per account.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	rows := make([][]string, 0, len(accounts)+1)
	rows = append(rows, Header)
	for _, acct := range accounts {
		rows = append(rows, MarshalAccount(acct))
	}
	if err := csv.NewWriter(w).WriteAll(rows); err != nil {
		return fmt.Errorf("writing accounts: %w", err)
	}
	return nil
}

// MarshalAccount renders an account as a CSV row with a two-place balance.
func MarshalAccount(acct model.Account) []string {
	return []string{acct.ID, acct.Name, string(acct.Type), acct.Balance.StringFixed(2)}
}

// UnmarshalAccount parses a CSV row. An empty balance column means zero.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	if record[colID] == "" {
		return model.Account{}, fmt.Errorf("%w: id", model.ErrMissingField)
	}

	typ, err := model.ParseAccountType(record[colType])
	if err != nil {
		return model.Account{}, err
	}

	balance := decimal.Zero
	if s := record[colBalance]; s != "" {
		if balance, err = decimal.NewFromString(s); err != nil {
			return model.Account{}, fmt.Errorf("opening_balance %q: %w", s, err)
		}
	}

	return model.Account{
		ID:      record[colID],
		Name:    record[colName],
		Type:    typ,
		Balance: balance,
	}, nil
}
