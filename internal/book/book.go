// Package book owns the chart of accounts and the voucher journal as one
// store. Every mutation takes the write lock, is recorded in the audit
// trail, and reports to an optional Observer.
package book

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/voucherbook/internal/accounts"
	"github.com/cleared-dev/voucherbook/internal/auditlog"
	"github.com/cleared-dev/voucherbook/internal/balance"
	"github.com/cleared-dev/voucherbook/internal/bookfs"
	"github.com/cleared-dev/voucherbook/internal/journal"
	"github.com/cleared-dev/voucherbook/internal/model"
)

// Observer is told about every successful mutation by audit action name.
type Observer interface {
	Record(action string)
}

// Options configures a Book.
type Options struct {
	// Now supplies voucher dates and audit timestamps. Defaults to time.Now.
	Now func() time.Time
	// Actor is written to the audit log. Defaults to "voucherbook".
	Actor    string
	Observer Observer
}

// DefaultActor is used when Options.Actor is empty.
const DefaultActor = "voucherbook"

// Book is safe for concurrent use.
type Book struct {
	mu       sync.RWMutex
	ledger   *accounts.Ledger
	journal  *journal.Journal
	now      func() time.Time
	actor    string
	observer Observer
	pending  []auditlog.Entry

	// root and disk record where the book was last loaded or saved and a
	// fingerprint of its files at that moment.
	root string
	disk string
}

// New creates a Book over an existing ledger with an empty journal.
func New(ledger *accounts.Ledger, opts Options) *Book {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Actor == "" {
		opts.Actor = DefaultActor
	}
	return &Book{
		ledger:   ledger,
		journal:  journal.NewJournal(ledger, opts.Now),
		now:      opts.Now,
		actor:    opts.Actor,
		observer: opts.Observer,
	}
}

// Open loads a book directory. Missing account or journal files yield an
// empty book.
func Open(root string, opts Options) (*Book, error) {
	disk, err := bookfs.Fingerprint(files(root)...)
	if err != nil {
		return nil, err
	}
	ledger, err := accounts.Load(root)
	if err != nil {
		return nil, err
	}
	b := New(ledger, opts)
	if err := b.journal.Load(root); err != nil {
		return nil, fmt.Errorf("loading journal: %w", err)
	}
	b.root, b.disk = root, disk
	return b, nil
}

// Save writes accounts, vouchers and the sequence under root, then appends
// the audit entries recorded since the last save. All three files are
// replaced together or not at all. Saving back to the directory the book
// came from fails with ErrConflict when another writer has saved there
// since.
func (b *Book) Save(root string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	paths := files(root)
	if b.root != "" && root == b.root {
		cur, err := bookfs.Fingerprint(paths...)
		if err != nil {
			return err
		}
		if cur != b.disk {
			return fmt.Errorf("saving book: files in %s changed since they were loaded: %w", root, model.ErrConflict)
		}
	}

	var batch bookfs.Batch
	if err := b.ledger.Stage(&batch, root); err != nil {
		batch.Abort()
		return fmt.Errorf("saving accounts: %w", err)
	}
	if err := b.journal.Stage(&batch, root); err != nil {
		batch.Abort()
		return fmt.Errorf("saving journal: %w", err)
	}
	if err := batch.Commit(); err != nil {
		return fmt.Errorf("saving book: %w", err)
	}

	disk, err := bookfs.Fingerprint(paths...)
	if err != nil {
		return err
	}
	b.root, b.disk = root, disk

	if err := auditlog.Append(root, b.pending); err != nil {
		return fmt.Errorf("appending audit log: %w", err)
	}
	b.pending = nil
	return nil
}

func files(root string) []string {
	return []string{accounts.Path(root), journal.VouchersPath(root), journal.SequencePath(root)}
}

// ConfigPath returns the location of the config file inside a book root.
func ConfigPath(root string) string {
	return filepath.Join(root, "voucherbook.yaml")
}

// AddAccount adds a named account with an opening balance.
func (b *Book) AddAccount(name string, accountType model.AccountType, opening decimal.Decimal) (model.Account, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	a, err := b.ledger.Add(name, accountType, opening)
	if err != nil {
		return model.Account{}, err
	}
	b.record(auditlog.ActionAccountAdd, a.ID, fmt.Sprintf("%s (%s) opening %s", a.Name, a.Type, a.Balance.StringFixed(2)))
	return a, nil
}

// DeleteAccount removes an account that no voucher references.
func (b *Book) DeleteAccount(accountID string, confirmed bool) (model.Account, error) {
	if !confirmed {
		return model.Account{}, fmt.Errorf("delete account %s: %w", accountID, model.ErrConfirmationRequired)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.ledger.Exists(accountID) {
		return model.Account{}, fmt.Errorf("account %q: %w", accountID, model.ErrNotFound)
	}
	if b.journal.References(accountID) {
		return model.Account{}, fmt.Errorf("account %q: %w", accountID, model.ErrAccountInUse)
	}
	a, err := b.ledger.Delete(accountID)
	if err != nil {
		return model.Account{}, err
	}
	b.record(auditlog.ActionAccountDelete, a.ID, a.Name)
	return a, nil
}

// Accounts returns every account in insertion order.
func (b *Book) Accounts() []model.Account {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ledger.All()
}

// AccountsByType returns the accounts of one type in insertion order.
func (b *Book) AccountsByType(accountType model.AccountType) []model.Account {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ledger.ByType(accountType)
}

// Account looks an account up by ID.
func (b *Book) Account(accountID string) (model.Account, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ledger.Get(accountID)
}

// AccountByName looks an account up by display name.
func (b *Book) AccountByName(name string) (model.Account, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ledger.ByName(name)
}

// CreateVoucher records a pending voucher dated today.
func (b *Book) CreateVoucher(params journal.CreateParams) (model.Voucher, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	v, err := b.journal.Create(params)
	if err != nil {
		return model.Voucher{}, err
	}
	b.record(auditlog.ActionVoucherCreate, v.ID, b.describe(v))
	return v, nil
}

// CreateVouchers records a batch of pending vouchers. If any entry fails
// validation none are kept; the sequence numbers already issued stay
// retired.
func (b *Book) CreateVouchers(batch []journal.CreateParams) ([]model.Voucher, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	created := make([]model.Voucher, 0, len(batch))
	for i, params := range batch {
		v, err := b.journal.Create(params)
		if err != nil {
			for _, c := range created {
				_, _ = b.journal.Delete(c.ID)
			}
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
		created = append(created, v)
	}
	for _, v := range created {
		b.record(auditlog.ActionVoucherCreate, v.ID, b.describe(v))
	}
	return created, nil
}

// EditVoucher applies a patch to a pending voucher.
func (b *Book) EditVoucher(voucherID string, patch journal.Patch) (model.Voucher, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	v, err := b.journal.Edit(voucherID, patch)
	if err != nil {
		return model.Voucher{}, err
	}
	b.record(auditlog.ActionVoucherEdit, v.ID, b.describe(v))
	return v, nil
}

// Approve finalizes a pending voucher so it counts toward balances.
func (b *Book) Approve(voucherID string) (model.Voucher, error) {
	return b.setStatus(voucherID, model.StatusApproved, auditlog.ActionVoucherApprove)
}

// Reject finalizes a pending voucher without affecting balances.
func (b *Book) Reject(voucherID string) (model.Voucher, error) {
	return b.setStatus(voucherID, model.StatusRejected, auditlog.ActionVoucherReject)
}

func (b *Book) setStatus(voucherID string, status model.VoucherStatus, action string) (model.Voucher, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	v, err := b.journal.SetStatus(voucherID, status)
	if err != nil {
		return model.Voucher{}, err
	}
	b.record(action, v.ID, b.describe(v))
	return v, nil
}

// DeleteVoucher removes a voucher at any status.
func (b *Book) DeleteVoucher(voucherID string, confirmed bool) (model.Voucher, error) {
	if !confirmed {
		return model.Voucher{}, fmt.Errorf("delete voucher %s: %w", voucherID, model.ErrConfirmationRequired)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	v, err := b.journal.Delete(voucherID)
	if err != nil {
		return model.Voucher{}, err
	}
	b.record(auditlog.ActionVoucherDelete, v.ID, b.describe(v))
	return v, nil
}

// VoucherView is a voucher with its account names resolved.
type VoucherView struct {
	model.Voucher
	CreditName string
	DebitName  string
}

// Vouchers lists vouchers matching f in insertion order.
func (b *Book) Vouchers(f journal.Filter) []VoucherView {
	b.mu.RLock()
	defer b.mu.RUnlock()

	vs := b.journal.List(f)
	out := make([]VoucherView, len(vs))
	for i, v := range vs {
		out[i] = b.view(v)
	}
	return out
}

// Voucher returns one voucher by ID.
func (b *Book) Voucher(voucherID string) (VoucherView, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	v, ok := b.journal.Get(voucherID)
	if !ok {
		return VoucherView{}, fmt.Errorf("voucher %q: %w", voucherID, model.ErrNotFound)
	}
	return b.view(v), nil
}

// Balance returns the live balance of the named account, zero when no
// account has that name.
func (b *Book) Balance(accountName string) decimal.Decimal {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return balance.Of(b.ledger.All(), b.journal.All(), accountName)
}

// Balances returns the live balance of every account keyed by ID.
func (b *Book) Balances() map[string]decimal.Decimal {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return balance.All(b.ledger.All(), b.journal.All())
}

// Statement builds the running-balance statement of the named account.
func (b *Book) Statement(accountName string, start, end time.Time) (balance.Statement, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return balance.BuildStatement(b.ledger.All(), b.journal.All(), accountName, start, end)
}

// Today returns the current date according to the book's clock.
func (b *Book) Today() time.Time {
	return model.Day(b.now())
}

// PendingAudit returns the audit entries not yet written by Save.
func (b *Book) PendingAudit() []auditlog.Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]auditlog.Entry, len(b.pending))
	copy(out, b.pending)
	return out
}

// record must be called with the write lock held.
func (b *Book) record(action, target, details string) {
	b.pending = append(b.pending, auditlog.Entry{
		Timestamp: b.now().UTC(),
		Actor:     b.actor,
		Action:    action,
		Target:    target,
		Details:   details,
	})
	if b.observer != nil {
		b.observer.Record(action)
	}
}

func (b *Book) view(v model.Voucher) VoucherView {
	return VoucherView{
		Voucher:    v,
		CreditName: b.nameOf(v.CreditAccountID),
		DebitName:  b.nameOf(v.DebitAccountID),
	}
}

func (b *Book) nameOf(accountID string) string {
	if a, ok := b.ledger.Get(accountID); ok {
		return a.Name
	}
	return ""
}

func (b *Book) describe(v model.Voucher) string {
	return fmt.Sprintf("%s -> %s %s [%s]", b.nameOf(v.CreditAccountID), b.nameOf(v.DebitAccountID), v.Amount.StringFixed(2), v.Status)
}
