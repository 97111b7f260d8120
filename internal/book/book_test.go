package book

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/voucherbook/internal/accounts"
	"github.com/cleared-dev/voucherbook/internal/auditlog"
	"github.com/cleared-dev/voucherbook/internal/journal"
	"github.com/cleared-dev/voucherbook/internal/model"
)

var today = time.Date(2025, 3, 10, 15, 4, 5, 0, time.UTC)

type countingObserver struct {
	mu     sync.Mutex
	counts map[string]int
}

func (o *countingObserver) Record(action string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.counts == nil {
		o.counts = map[string]int{}
	}
	o.counts[action]++
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestBook(t *testing.T) *Book {
	t.Helper()
	ledger, err := accounts.NewLedger(nil)
	require.NoError(t, err)
	return New(ledger, Options{Now: func() time.Time { return today }, Actor: "tester"})
}

func rentAndBank(t *testing.T, b *Book) (model.Account, model.Account) {
	t.Helper()
	rent, err := b.AddAccount("Rent", model.AccountTypeExpense, decimal.Zero)
	require.NoError(t, err)
	bank, err := b.AddAccount("Bank", model.AccountTypeAsset, dec("500"))
	require.NoError(t, err)
	return rent, bank
}

func TestRentBankScenario(t *testing.T) {
	b := newTestBook(t)
	rentAndBank(t, b)

	v, err := b.CreateVoucher(journal.CreateParams{CreditAccount: "Rent", DebitAccount: "Bank", Amount: dec("100")})
	require.NoError(t, err)

	// Pending vouchers do not move balances.
	assert.True(t, b.Balance("Bank").Equal(dec("500")))

	_, err = b.Approve(v.ID)
	require.NoError(t, err)

	assert.True(t, b.Balance("Bank").Equal(dec("600")), "got %s", b.Balance("Bank"))
	assert.True(t, b.Balance("Rent").Equal(dec("-100")), "got %s", b.Balance("Rent"))
	assert.True(t, b.Balance("Nope").IsZero())
}

func TestDeleteAccount(t *testing.T) {
	b := newTestBook(t)
	rent, bank := rentAndBank(t, b)

	_, err := b.DeleteAccount(rent.ID, false)
	assert.ErrorIs(t, err, model.ErrConfirmationRequired)
	assert.Len(t, b.Accounts(), 2)

	_, err = b.DeleteAccount("missing", true)
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = b.CreateVoucher(journal.CreateParams{CreditAccount: "Rent", DebitAccount: "Bank", Amount: dec("1")})
	require.NoError(t, err)

	_, err = b.DeleteAccount(bank.ID, true)
	assert.ErrorIs(t, err, model.ErrAccountInUse)

	cash, err := b.AddAccount("Cash", model.AccountTypeAsset, decimal.Zero)
	require.NoError(t, err)
	deleted, err := b.DeleteAccount(cash.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "Cash", deleted.Name)
	_, ok := b.Account(cash.ID)
	assert.False(t, ok)
}

func TestDeleteVoucher(t *testing.T) {
	b := newTestBook(t)
	rentAndBank(t, b)

	v, err := b.CreateVoucher(journal.CreateParams{CreditAccount: "Rent", DebitAccount: "Bank", Amount: dec("1")})
	require.NoError(t, err)
	_, err = b.Approve(v.ID)
	require.NoError(t, err)

	_, err = b.DeleteVoucher(v.ID, false)
	assert.ErrorIs(t, err, model.ErrConfirmationRequired)
	assert.Len(t, b.Vouchers(journal.Filter{}), 1)

	_, err = b.DeleteVoucher(v.ID, true)
	require.NoError(t, err)
	assert.Empty(t, b.Vouchers(journal.Filter{}))
	assert.True(t, b.Balance("Bank").Equal(dec("500")))

	_, err = b.Voucher(v.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestVouchers_ResolvesNames(t *testing.T) {
	b := newTestBook(t)
	rentAndBank(t, b)

	v, err := b.CreateVoucher(journal.CreateParams{CreditAccount: "Rent", DebitAccount: "Bank", Amount: dec("5"), Remarks: "march"})
	require.NoError(t, err)

	got, err := b.Voucher(v.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rent", got.CreditName)
	assert.Equal(t, "Bank", got.DebitName)
	assert.Equal(t, "march", got.Remarks)

	assert.Len(t, b.Vouchers(journal.Filter{Status: model.StatusPending}), 1)
	assert.Empty(t, b.Vouchers(journal.Filter{Status: model.StatusApproved}))
}

func TestInvalidCreateLeavesBookUnchanged(t *testing.T) {
	obs := &countingObserver{}
	ledger, err := accounts.NewLedger(nil)
	require.NoError(t, err)
	b := New(ledger, Options{Observer: obs})
	rentAndBank(t, b)

	_, err = b.CreateVoucher(journal.CreateParams{CreditAccount: "Ghost", DebitAccount: "Bank", Amount: dec("5")})
	assert.ErrorIs(t, err, model.ErrUnresolvedReference)
	assert.Empty(t, b.Vouchers(journal.Filter{}))
	assert.Zero(t, obs.counts[auditlog.ActionVoucherCreate])
	assert.Equal(t, 2, obs.counts[auditlog.ActionAccountAdd])
}

func TestStatement(t *testing.T) {
	b := newTestBook(t)
	rentAndBank(t, b)

	v, err := b.CreateVoucher(journal.CreateParams{CreditAccount: "Rent", DebitAccount: "Bank", Amount: dec("100")})
	require.NoError(t, err)
	_, err = b.Approve(v.ID)
	require.NoError(t, err)

	st, err := b.Statement("Bank", today.AddDate(0, 0, -1), today)
	require.NoError(t, err)
	require.Len(t, st.Entries(), 1)
	assert.Equal(t, "Rent", st.Entries()[0].Counterparty)
	assert.True(t, st.Closing.Equal(dec("600")))

	_, err = b.Statement("Bank", today, today.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, model.ErrInvalidRange)
}

func TestEditVoucher_Audited(t *testing.T) {
	b := newTestBook(t)
	rentAndBank(t, b)

	v, err := b.CreateVoucher(journal.CreateParams{CreditAccount: "Rent", DebitAccount: "Bank", Amount: dec("100")})
	require.NoError(t, err)

	amount := dec("120.50")
	edited, err := b.EditVoucher(v.ID, journal.Patch{Amount: &amount, Version: v.Version})
	require.NoError(t, err)
	assert.Equal(t, v.Version+1, edited.Version)

	_, err = b.EditVoucher(v.ID, journal.Patch{Amount: &amount, Version: v.Version})
	assert.ErrorIs(t, err, model.ErrConflict)

	entries := b.PendingAudit()
	require.Len(t, entries, 4)
	last := entries[3]
	assert.Equal(t, auditlog.ActionVoucherEdit, last.Action)
	assert.Equal(t, v.ID, last.Target)
	assert.Equal(t, "tester", last.Actor)
	assert.Contains(t, last.Details, "120.50")
}

func TestSaveOpen(t *testing.T) {
	dir := t.TempDir()
	b := newTestBook(t)
	rentAndBank(t, b)

	v1, err := b.CreateVoucher(journal.CreateParams{CreditAccount: "Rent", DebitAccount: "Bank", Amount: dec("100")})
	require.NoError(t, err)
	_, err = b.Approve(v1.ID)
	require.NoError(t, err)
	v2, err := b.CreateVoucher(journal.CreateParams{CreditAccount: "Bank", DebitAccount: "Rent", Amount: dec("1")})
	require.NoError(t, err)
	_, err = b.DeleteVoucher(v2.ID, true)
	require.NoError(t, err)

	require.NoError(t, b.Save(dir))
	assert.Empty(t, b.PendingAudit())

	entries, err := auditlog.Read(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 6)

	reopened, err := Open(dir, Options{Now: func() time.Time { return today }})
	require.NoError(t, err)
	assert.Len(t, reopened.Accounts(), 2)
	assert.True(t, reopened.Balance("Bank").Equal(dec("600")))

	// The deleted voucher's ID stays retired.
	v3, err := reopened.CreateVoucher(journal.CreateParams{CreditAccount: "Rent", DebitAccount: "Bank", Amount: dec("2")})
	require.NoError(t, err)
	assert.Equal(t, "VN0003", v3.ID)
}

func TestConcurrentCreates(t *testing.T) {
	b := newTestBook(t)
	rentAndBank(t, b)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := b.CreateVoucher(journal.CreateParams{CreditAccount: "Rent", DebitAccount: "Bank", Amount: dec("1")})
			assert.NoError(t, err)
			_ = b.Balance("Bank")
		}()
	}
	wg.Wait()

	vs := b.Vouchers(journal.Filter{})
	require.Len(t, vs, n)
	seen := map[string]bool{}
	for _, v := range vs {
		assert.False(t, seen[v.ID], "duplicate id %s", v.ID)
		seen[v.ID] = true
	}
}

func TestCreateVouchers_AllOrNothing(t *testing.T) {
	b := newTestBook(t)
	rentAndBank(t, b)

	_, err := b.CreateVouchers([]journal.CreateParams{
		{CreditAccount: "Rent", DebitAccount: "Bank", Amount: dec("1")},
		{CreditAccount: "Rent", DebitAccount: "Ghost", Amount: dec("2")},
	})
	require.ErrorIs(t, err, model.ErrUnresolvedReference)
	assert.ErrorContains(t, err, "entry 2")
	assert.Empty(t, b.Vouchers(journal.Filter{}))
	assert.Len(t, b.PendingAudit(), 2, "only the account adds")

	vs, err := b.CreateVouchers([]journal.CreateParams{
		{CreditAccount: "Rent", DebitAccount: "Bank", Amount: dec("1")},
		{CreditAccount: "Bank", DebitAccount: "Rent", Amount: dec("2"), Date: today.AddDate(0, 0, -3)},
	})
	require.NoError(t, err)
	require.Len(t, vs, 2)
	assert.Equal(t, "VN0002", vs[0].ID)
	assert.Equal(t, "VN0003", vs[1].ID)
	assert.Equal(t, model.Day(today.AddDate(0, 0, -3)), vs[1].Date)
}

func TestSave_RefusesToOverwriteNewerSave(t *testing.T) {
	dir := t.TempDir()
	seed := newTestBook(t)
	rentAndBank(t, seed)
	require.NoError(t, seed.Save(dir))

	opts := Options{Now: func() time.Time { return today }}
	server, err := Open(dir, opts)
	require.NoError(t, err)
	cli, err := Open(dir, opts)
	require.NoError(t, err)

	_, err = cli.CreateVoucher(journal.CreateParams{CreditAccount: "Rent", DebitAccount: "Bank", Amount: dec("5")})
	require.NoError(t, err)
	require.NoError(t, cli.Save(dir))

	_, err = server.CreateVoucher(journal.CreateParams{CreditAccount: "Bank", DebitAccount: "Rent", Amount: dec("7")})
	require.NoError(t, err)
	err = server.Save(dir)
	require.ErrorIs(t, err, model.ErrConflict)
	assert.Len(t, server.PendingAudit(), 1, "unsaved entries are kept")

	onDisk, err := Open(dir, opts)
	require.NoError(t, err)
	vs := onDisk.Vouchers(journal.Filter{})
	require.Len(t, vs, 1)
	assert.True(t, vs[0].Amount.Equal(dec("5")), "the other writer's voucher survives")
}

func TestSave_RepeatedSavesFromOneBook(t *testing.T) {
	dir := t.TempDir()
	seed := newTestBook(t)
	rentAndBank(t, seed)
	require.NoError(t, seed.Save(dir))

	b, err := Open(dir, Options{Now: func() time.Time { return today }})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := b.CreateVoucher(journal.CreateParams{CreditAccount: "Rent", DebitAccount: "Bank", Amount: dec("1")})
		require.NoError(t, err)
		require.NoError(t, b.Save(dir))
	}

	reopened, err := Open(dir, Options{})
	require.NoError(t, err)
	assert.Len(t, reopened.Vouchers(journal.Filter{}), 3)
}

func TestSave_FailureLeavesPreviousFiles(t *testing.T) {
	dir := t.TempDir()
	seed := newTestBook(t)
	rentAndBank(t, seed)
	require.NoError(t, seed.Save(dir))
	before, err := os.ReadFile(accounts.Path(dir))
	require.NoError(t, err)

	// A file where the journal directory belongs stops the journal from staging.
	require.NoError(t, os.RemoveAll(filepath.Join(dir, "journal")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "journal"), nil, 0o644))

	other := newTestBook(t)
	_, err = other.AddAccount("Sales", model.AccountTypeIncome, decimal.Zero)
	require.NoError(t, err)
	require.Error(t, other.Save(dir))

	after, err := os.ReadFile(accounts.Path(dir))
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))

	des, err := os.ReadDir(filepath.Join(dir, "accounts"))
	require.NoError(t, err)
	assert.Len(t, des, 1, "no staged files left behind")
}
