package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeExpense AccountType = "expense"
	AccountTypeIncome  AccountType = "income"
	AccountTypeAsset   AccountType = "asset"
)

// AccountTypes lists every valid account type in display order.
var AccountTypes = []AccountType{AccountTypeExpense, AccountTypeIncome, AccountTypeAsset}

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeExpense, AccountTypeIncome, AccountTypeAsset:
		return true
	}
	return false
}

// ParseAccountType converts user input to an AccountType.
func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
	}
	return t, nil
}

// Account represents a row in accounts.csv.
type Account struct {
	ID      string
	Name    string
	Type    AccountType
	Balance decimal.Decimal // opening balance, before any voucher
}
