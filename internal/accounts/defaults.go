package accounts

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/voucherbook/internal/id"
	"github.com/cleared-dev/voucherbook/internal/model"
)

// DefaultChart returns a starter chart of accounts with zero opening balances.
func DefaultChart() []model.Account {
	starter := []struct {
		name string
		typ  model.AccountType
	}{
		{"Cash", model.AccountTypeAsset},
		{"Bank", model.AccountTypeAsset},
		{"Sales", model.AccountTypeIncome},
		{"Commission", model.AccountTypeIncome},
		{"Rent", model.AccountTypeExpense},
		{"Utilities", model.AccountTypeExpense},
		{"Salaries", model.AccountTypeExpense},
		{"Shipping", model.AccountTypeExpense},
	}

	chart := make([]model.Account, 0, len(starter))
	for _, s := range starter {
		chart = append(chart, model.Account{
			ID:      id.NewAccountID(),
			Name:    s.name,
			Type:    s.typ,
			Balance: decimal.Zero,
		})
	}
	return chart
}
