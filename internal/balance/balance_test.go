package balance

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/voucherbook/internal/model"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var (
	rent  = model.Account{ID: "a-rent", Name: "Rent", Type: model.AccountTypeExpense, Balance: dec("0")}
	bank  = model.Account{ID: "a-bank", Name: "Bank", Type: model.AccountTypeAsset, Balance: dec("500")}
	sales = model.Account{ID: "a-sales", Name: "Sales", Type: model.AccountTypeIncome, Balance: dec("0")}
	cash  = model.Account{ID: "a-cash", Name: "Cash", Type: model.AccountTypeAsset, Balance: dec("25.50")}

	chart = []model.Account{rent, bank, sales, cash}
)

func v(voucherID string, day time.Time, credit, debit model.Account, amount string, status model.VoucherStatus) model.Voucher {
	return model.Voucher{
		ID:              voucherID,
		Date:            day,
		CreditAccountID: credit.ID,
		DebitAccountID:  debit.ID,
		Amount:          dec(amount),
		Status:          status,
		Version:         1,
	}
}

func TestOf_RentBankScenario(t *testing.T) {
	vouchers := []model.Voucher{
		v("VN0001", date(2025, 1, 5), rent, bank, "100", model.StatusApproved),
	}
	assert.True(t, Of(chart, vouchers, "Bank").Equal(dec("600")), "got %s", Of(chart, vouchers, "Bank"))
	assert.True(t, Of(chart, vouchers, "Rent").Equal(dec("-100")), "got %s", Of(chart, vouchers, "Rent"))
}

func TestOf_IgnoresUnapproved(t *testing.T) {
	vouchers := []model.Voucher{
		v("VN0001", date(2025, 1, 1), sales, bank, "40", model.StatusApproved),
		v("VN0002", date(2025, 1, 2), sales, bank, "1000", model.StatusPending),
		v("VN0003", date(2025, 1, 3), bank, cash, "7.25", model.StatusApproved),
		v("VN0004", date(2025, 1, 4), bank, rent, "300", model.StatusRejected),
	}

	// opening + debits - credits over approved vouchers only.
	assert.True(t, Of(chart, vouchers, "Bank").Equal(dec("532.75")), "got %s", Of(chart, vouchers, "Bank"))
	assert.True(t, Of(chart, vouchers, "Cash").Equal(dec("32.75")))
	assert.True(t, Of(chart, vouchers, "Sales").Equal(dec("-40")))
	assert.True(t, Of(chart, vouchers, "Rent").IsZero())
}

func TestOf_UnknownAccount(t *testing.T) {
	vouchers := []model.Voucher{v("VN0001", date(2025, 1, 1), rent, bank, "1", model.StatusApproved)}
	assert.True(t, Of(chart, vouchers, "Nope").IsZero())
}

func TestOf_SelfReferenceAppliesBothSides(t *testing.T) {
	vouchers := []model.Voucher{v("VN0001", date(2025, 1, 1), bank, bank, "50", model.StatusApproved)}
	assert.True(t, Of(chart, vouchers, "Bank").Equal(dec("500")))
}

func TestAll_MatchesOf(t *testing.T) {
	vouchers := []model.Voucher{
		v("VN0001", date(2025, 1, 1), sales, bank, "40", model.StatusApproved),
		v("VN0002", date(2025, 1, 2), bank, rent, "15", model.StatusApproved),
		v("VN0003", date(2025, 1, 3), bank, cash, "99", model.StatusPending),
	}
	all := All(chart, vouchers)
	require.Len(t, all, len(chart))
	for _, a := range chart {
		assert.True(t, Of(chart, vouchers, a.Name).Equal(all[a.ID]), "account %s", a.Name)
	}
}

func TestBuildStatement_RunningBalance(t *testing.T) {
	vouchers := []model.Voucher{
		v("VN0001", date(2025, 1, 20), bank, rent, "100", model.StatusApproved),
		v("VN0002", date(2025, 1, 5), sales, bank, "250", model.StatusApproved),
		v("VN0003", date(2025, 1, 10), sales, bank, "999", model.StatusPending),
		v("VN0004", date(2025, 1, 12), bank, cash, "30.50", model.StatusApproved),
		v("VN0005", date(2025, 2, 1), sales, bank, "5", model.StatusApproved),
	}

	st, err := BuildStatement(chart, vouchers, "Bank", date(2025, 1, 1), date(2025, 1, 31))
	require.NoError(t, err)

	assert.Equal(t, "Bank", st.Account.Name)
	assert.True(t, st.Opening.Equal(dec("500")))
	require.Len(t, st.Rows, 5, "opening + 3 entries + closing")
	assert.Equal(t, RowOpening, st.Rows[0].Kind)
	assert.Equal(t, RowClosing, st.Rows[4].Kind)
	assert.False(t, st.NoTransactions())

	entries := st.Entries()
	require.Len(t, entries, 3)

	assert.Equal(t, "VN0002", entries[0].VoucherID)
	assert.Equal(t, "Sales", entries[0].Counterparty)
	assert.True(t, entries[0].Debit.Equal(dec("250")))
	assert.True(t, entries[0].Credit.IsZero())
	assert.True(t, entries[0].Balance.Equal(dec("750")))

	assert.Equal(t, "VN0004", entries[1].VoucherID)
	assert.Equal(t, "Cash", entries[1].Counterparty)
	assert.True(t, entries[1].Credit.Equal(dec("30.50")))
	assert.True(t, entries[1].Balance.Equal(dec("719.50")))

	assert.Equal(t, "VN0001", entries[2].VoucherID)
	assert.Equal(t, "Rent", entries[2].Counterparty)
	assert.True(t, entries[2].Balance.Equal(dec("619.50")))

	assert.True(t, st.Closing.Equal(dec("619.50")))
	assert.True(t, st.Rows[4].Balance.Equal(st.Closing))
	assert.True(t, st.TotalDebits().Equal(dec("250")))
	assert.True(t, st.TotalCredits().Equal(dec("130.50")))
}

func TestBuildStatement_ReplayMatchesFold(t *testing.T) {
	vouchers := []model.Voucher{
		v("VN0001", date(2025, 3, 3), sales, cash, "10", model.StatusApproved),
		v("VN0002", date(2025, 3, 1), cash, rent, "4.40", model.StatusApproved),
		v("VN0003", date(2025, 3, 2), bank, cash, "100", model.StatusApproved),
		v("VN0004", date(2025, 3, 2), cash, bank, "0.10", model.StatusApproved),
	}
	st, err := BuildStatement(chart, vouchers, "Cash", date(2025, 3, 1), date(2025, 3, 31))
	require.NoError(t, err)

	running := st.Opening
	for _, r := range st.Entries() {
		running = running.Add(r.Debit).Sub(r.Credit)
		assert.True(t, running.Equal(r.Balance), "row %s", r.VoucherID)
	}
	assert.True(t, running.Equal(st.Closing))

	// With every voucher inside the range the closing equals the live balance.
	assert.True(t, st.Closing.Equal(Of(chart, vouchers, "Cash")))
}

func TestBuildStatement_SameDayKeepsJournalOrder(t *testing.T) {
	day := date(2025, 4, 1)
	vouchers := []model.Voucher{
		v("VN0003", day, sales, bank, "3", model.StatusApproved),
		v("VN0001", day, sales, bank, "1", model.StatusApproved),
		v("VN0002", date(2025, 3, 31), sales, bank, "2", model.StatusApproved),
		v("VN0004", day, sales, bank, "4", model.StatusApproved),
	}
	st, err := BuildStatement(chart, vouchers, "Bank", date(2025, 3, 1), date(2025, 4, 30))
	require.NoError(t, err)

	var ids []string
	for _, r := range st.Entries() {
		ids = append(ids, r.VoucherID)
	}
	assert.Equal(t, []string{"VN0002", "VN0003", "VN0001", "VN0004"}, ids)
}

func TestBuildStatement_InclusiveBounds(t *testing.T) {
	vouchers := []model.Voucher{
		v("VN0001", date(2025, 1, 1), sales, bank, "1", model.StatusApproved),
		v("VN0002", date(2025, 1, 31), sales, bank, "2", model.StatusApproved),
		v("VN0003", date(2024, 12, 31), sales, bank, "4", model.StatusApproved),
	}
	// Times of day on the bounds are ignored.
	st, err := BuildStatement(chart, vouchers, "Bank", date(2025, 1, 1).Add(13*time.Hour), date(2025, 1, 31).Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, st.Entries(), 2)
	assert.True(t, st.Closing.Equal(dec("503")))
}

func TestBuildStatement_Empty(t *testing.T) {
	vouchers := []model.Voucher{
		v("VN0001", date(2025, 6, 1), sales, bank, "1", model.StatusApproved),
		v("VN0002", date(2025, 1, 15), sales, bank, "8", model.StatusPending),
	}
	st, err := BuildStatement(chart, vouchers, "Bank", date(2025, 1, 1), date(2025, 1, 31))
	require.NoError(t, err)

	require.Len(t, st.Rows, 2)
	assert.True(t, st.NoTransactions())
	assert.True(t, st.Rows[0].Balance.Equal(bank.Balance))
	assert.True(t, st.Rows[1].Balance.Equal(bank.Balance))
	assert.True(t, st.Opening.Equal(st.Closing))
}

func TestBuildStatement_Errors(t *testing.T) {
	_, err := BuildStatement(chart, nil, "Ghost", date(2025, 1, 1), date(2025, 1, 31))
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = BuildStatement(chart, nil, "Bank", date(2025, 2, 1), date(2025, 1, 31))
	assert.ErrorIs(t, err, model.ErrInvalidRange)

	// Single-day range is valid.
	_, err = BuildStatement(chart, nil, "Bank", date(2025, 1, 31), date(2025, 1, 31))
	assert.NoError(t, err)
}

func TestReadsAreIdempotent(t *testing.T) {
	vouchers := []model.Voucher{
		v("VN0002", date(2025, 1, 9), sales, bank, "12", model.StatusApproved),
		v("VN0001", date(2025, 1, 2), bank, rent, "3", model.StatusApproved),
	}
	first, err := BuildStatement(chart, vouchers, "Bank", date(2025, 1, 1), date(2025, 1, 31))
	require.NoError(t, err)
	second, err := BuildStatement(chart, vouchers, "Bank", date(2025, 1, 1), date(2025, 1, 31))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.True(t, Of(chart, vouchers, "Bank").Equal(Of(chart, vouchers, "Bank")))

	// The input slice order is not disturbed by sorting.
	assert.Equal(t, "VN0002", vouchers[0].ID)
}
