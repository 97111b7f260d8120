package journal

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/voucherbook/internal/id"
	"github.com/cleared-dev/voucherbook/internal/model"
)

// AccountResolver looks accounts up by ID or display name.
type AccountResolver interface {
	Get(accountID string) (model.Account, bool)
	ByName(name string) (model.Account, bool)
}

// Journal holds vouchers in insertion order and drives their lifecycle.
type Journal struct {
	vouchers []model.Voucher
	seq      *id.Sequence
	accounts AccountResolver
	now      func() time.Time
}

// NewJournal creates an empty Journal. now supplies voucher dates; nil
// means time.Now.
func NewJournal(accounts AccountResolver, now func() time.Time) *Journal {
	if now == nil {
		now = time.Now
	}
	return &Journal{
		seq:      id.NewSequence(0),
		accounts: accounts,
		now:      now,
	}
}

// Restore replaces the journal contents with previously saved vouchers.
// The sequence resumes after the larger of lastSeq and the highest ID seen.
func (j *Journal) Restore(vouchers []model.Voucher, lastSeq int) error {
	if verrs := ValidateVouchers(vouchers, j.accounts, lastSeq); len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i, ve := range verrs {
			msgs[i] = ve.Error()
		}
		return fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
	}

	seq := id.NewSequence(lastSeq)
	for _, v := range vouchers {
		n, _ := id.ParseVoucherID(v.ID)
		seq.Observe(n)
	}
	j.vouchers = slices.Clone(vouchers)
	j.seq = seq
	return nil
}

// CreateParams holds the user input for a new voucher. Accounts are given
// by display name.
type CreateParams struct {
	CreditAccount string
	DebitAccount  string
	Amount        decimal.Decimal
	Remarks       string
	Date          time.Time // zero means today
}

// Create validates params and appends a pending voucher.
func (j *Journal) Create(params CreateParams) (model.Voucher, error) {
	credit, debit, err := j.resolveSides(params.CreditAccount, params.DebitAccount)
	if err != nil {
		return model.Voucher{}, err
	}
	if err := validateAmount(params.Amount); err != nil {
		return model.Voucher{}, err
	}

	date := j.now()
	if !params.Date.IsZero() {
		date = params.Date
	}
	v := model.Voucher{
		ID:              id.FormatVoucherID(j.seq.Next()),
		Date:            model.Day(date),
		CreditAccountID: credit.ID,
		DebitAccountID:  debit.ID,
		Amount:          params.Amount,
		Remarks:         strings.TrimSpace(params.Remarks),
		Status:          model.StatusPending,
		Version:         1,
	}
	j.vouchers = append(j.vouchers, v)
	return v, nil
}

// Patch lists the fields to change on a voucher; nil fields are kept.
// A non-zero Version must match the stored version.
type Patch struct {
	CreditAccount *string
	DebitAccount  *string
	Amount        *decimal.Decimal
	Remarks       *string
	Date          *time.Time
	Version       int
}

// Edit applies patch to a pending voucher and replaces the stored record.
func (j *Journal) Edit(voucherID string, patch Patch) (model.Voucher, error) {
	i, err := j.index(voucherID)
	if err != nil {
		return model.Voucher{}, err
	}
	v := j.vouchers[i]

	if patch.Version != 0 && patch.Version != v.Version {
		return model.Voucher{}, fmt.Errorf("voucher %s at version %d, expected %d: %w", voucherID, v.Version, patch.Version, model.ErrConflict)
	}
	if v.Status.Final() {
		return model.Voucher{}, fmt.Errorf("voucher %s is %s: %w", voucherID, v.Status, model.ErrVoucherFinalized)
	}

	creditName := j.nameOf(v.CreditAccountID)
	if patch.CreditAccount != nil {
		creditName = *patch.CreditAccount
	}
	debitName := j.nameOf(v.DebitAccountID)
	if patch.DebitAccount != nil {
		debitName = *patch.DebitAccount
	}
	credit, debit, err := j.resolveSides(creditName, debitName)
	if err != nil {
		return model.Voucher{}, err
	}
	v.CreditAccountID = credit.ID
	v.DebitAccountID = debit.ID

	if patch.Amount != nil {
		if err := validateAmount(*patch.Amount); err != nil {
			return model.Voucher{}, err
		}
		v.Amount = *patch.Amount
	}
	if patch.Remarks != nil {
		v.Remarks = strings.TrimSpace(*patch.Remarks)
	}
	if patch.Date != nil {
		if patch.Date.IsZero() {
			return model.Voucher{}, fmt.Errorf("%w: date", model.ErrMissingField)
		}
		v.Date = model.Day(*patch.Date)
	}

	v.Version++
	j.vouchers[i] = v
	return v, nil
}

// SetStatus moves a pending voucher to approved or rejected.
func (j *Journal) SetStatus(voucherID string, status model.VoucherStatus) (model.Voucher, error) {
	if status != model.StatusApproved && status != model.StatusRejected {
		return model.Voucher{}, fmt.Errorf("%w: cannot set %q", model.ErrInvalidStatus, status)
	}
	i, err := j.index(voucherID)
	if err != nil {
		return model.Voucher{}, err
	}
	v := j.vouchers[i]
	if v.Status != model.StatusPending {
		return model.Voucher{}, fmt.Errorf("voucher %s %s -> %s: %w", voucherID, v.Status, status, model.ErrInvalidTransition)
	}

	v.Status = status
	v.Version++
	j.vouchers[i] = v
	return v, nil
}

// Approve is SetStatus(voucherID, StatusApproved).
func (j *Journal) Approve(voucherID string) (model.Voucher, error) {
	return j.SetStatus(voucherID, model.StatusApproved)
}

// Reject is SetStatus(voucherID, StatusRejected).
func (j *Journal) Reject(voucherID string) (model.Voucher, error) {
	return j.SetStatus(voucherID, model.StatusRejected)
}

// Delete removes a voucher regardless of status. Its ID is not reissued.
func (j *Journal) Delete(voucherID string) (model.Voucher, error) {
	i, err := j.index(voucherID)
	if err != nil {
		return model.Voucher{}, err
	}
	v := j.vouchers[i]
	j.vouchers = slices.Delete(j.vouchers, i, i+1)
	return v, nil
}

// Get returns a voucher by ID.
func (j *Journal) Get(voucherID string) (model.Voucher, bool) {
	i, err := j.index(voucherID)
	if err != nil {
		return model.Voucher{}, false
	}
	return j.vouchers[i], true
}

// All returns every voucher in insertion order.
func (j *Journal) All() []model.Voucher {
	return slices.Clone(j.vouchers)
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Status    model.VoucherStatus
	AccountID string
}

// List returns vouchers matching f in insertion order.
func (j *Journal) List(f Filter) []model.Voucher {
	var out []model.Voucher
	for _, v := range j.vouchers {
		if f.Status != "" && v.Status != f.Status {
			continue
		}
		if f.AccountID != "" && !v.Touches(f.AccountID) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// References reports whether any voucher credits or debits accountID.
func (j *Journal) References(accountID string) bool {
	return slices.ContainsFunc(j.vouchers, func(v model.Voucher) bool {
		return v.Touches(accountID)
	})
}

// LastSeq returns the most recently issued voucher sequence number.
func (j *Journal) LastSeq() int {
	return j.seq.Last()
}

func (j *Journal) index(voucherID string) (int, error) {
	i := slices.IndexFunc(j.vouchers, func(v model.Voucher) bool { return v.ID == voucherID })
	if i < 0 {
		return 0, fmt.Errorf("voucher %q: %w", voucherID, model.ErrNotFound)
	}
	return i, nil
}

func (j *Journal) nameOf(accountID string) string {
	if a, ok := j.accounts.Get(accountID); ok {
		return a.Name
	}
	return ""
}

func (j *Journal) resolveSides(creditName, debitName string) (model.Account, model.Account, error) {
	creditName = strings.TrimSpace(creditName)
	debitName = strings.TrimSpace(debitName)
	if creditName == "" {
		return model.Account{}, model.Account{}, fmt.Errorf("%w: credit account", model.ErrMissingField)
	}
	if debitName == "" {
		return model.Account{}, model.Account{}, fmt.Errorf("%w: debit account", model.ErrMissingField)
	}

	credit, ok := j.accounts.ByName(creditName)
	if !ok {
		return model.Account{}, model.Account{}, fmt.Errorf("%w: unknown credit account %q", model.ErrUnresolvedReference, creditName)
	}
	debit, ok := j.accounts.ByName(debitName)
	if !ok {
		return model.Account{}, model.Account{}, fmt.Errorf("%w: unknown debit account %q", model.ErrUnresolvedReference, debitName)
	}
	if credit.ID == debit.ID {
		return model.Account{}, model.Account{}, fmt.Errorf("%w: %q", model.ErrSelfReference, credit.Name)
	}
	return credit, debit, nil
}
