package accounts

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/voucherbook/internal/bookfs"
	"github.com/cleared-dev/voucherbook/internal/id"
	"github.com/cleared-dev/voucherbook/internal/model"
)

// Ledger holds the chart of accounts in insertion order.
type Ledger struct {
	accounts []model.Account
	byID     map[string]int
	byName   map[string]string
}

// NewLedger creates a Ledger from a slice of accounts. It rejects
// duplicate IDs and names.
func NewLedger(accounts []model.Account) (*Ledger, error) {
	l := &Ledger{
		byID:   make(map[string]int, len(accounts)),
		byName: make(map[string]string, len(accounts)),
	}
	for _, a := range accounts {
		if _, dup := l.byID[a.ID]; dup {
			return nil, fmt.Errorf("duplicate account id %q", a.ID)
		}
		if _, dup := l.byName[a.Name]; dup {
			return nil, fmt.Errorf("%w: %q", model.ErrDuplicateName, a.Name)
		}
		l.insert(a)
	}
	return l, nil
}

// Load reads accounts/accounts.csv from a book root. A missing file yields
// an empty ledger.
func Load(bookRoot string) (*Ledger, error) {
	f, err := os.Open(Path(bookRoot))
	if errors.Is(err, fs.ErrNotExist) {
		return NewLedger(nil)
	}
	if err != nil {
		return nil, fmt.Errorf("opening accounts: %w", err)
	}
	defer f.Close()

	accts, err := ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("reading accounts: %w", err)
	}
	return NewLedger(accts)
}

// Add appends a new account with a fresh ID.
func (l *Ledger) Add(name string, accountType model.AccountType, opening decimal.Decimal) (model.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Account{}, fmt.Errorf("%w: account name", model.ErrMissingField)
	}
	if !accountType.Valid() {
		return model.Account{}, fmt.Errorf("%w: %q", model.ErrInvalidType, accountType)
	}
	if _, dup := l.byName[name]; dup {
		return model.Account{}, fmt.Errorf("%w: %q", model.ErrDuplicateName, name)
	}

	acct := model.Account{
		ID:      id.NewAccountID(),
		Name:    name,
		Type:    accountType,
		Balance: opening,
	}
	l.insert(acct)
	return acct, nil
}

// Delete removes an account by ID.
func (l *Ledger) Delete(accountID string) (model.Account, error) {
	i, ok := l.byID[accountID]
	if !ok {
		return model.Account{}, fmt.Errorf("account %q: %w", accountID, model.ErrNotFound)
	}
	acct := l.accounts[i]
	l.accounts = append(l.accounts[:i:i], l.accounts[i+1:]...)
	l.reindex()
	return acct, nil
}

// All returns all accounts.
func (l *Ledger) All() []model.Account {
	out := make([]model.Account, len(l.accounts))
	copy(out, l.accounts)
	return out
}

// Get returns an account by ID.
func (l *Ledger) Get(accountID string) (model.Account, bool) {
	i, ok := l.byID[accountID]
	if !ok {
		return model.Account{}, false
	}
	return l.accounts[i], true
}

// ByName returns an account by its display name.
func (l *Ledger) ByName(name string) (model.Account, bool) {
	accountID, ok := l.byName[strings.TrimSpace(name)]
	if !ok {
		return model.Account{}, false
	}
	return l.Get(accountID)
}

// Exists reports whether an account ID exists.
func (l *Ledger) Exists(accountID string) bool {
	_, ok := l.byID[accountID]
	return ok
}

// ByType returns all accounts of the given type.
func (l *Ledger) ByType(accountType model.AccountType) []model.Account {
	var result []model.Account
	for _, a := range l.accounts {
		if a.Type == accountType {
			result = append(result, a)
		}
	}
	return result
}

// Save writes the ledger to accounts/accounts.csv.
func (l *Ledger) Save(bookRoot string) error {
	var b bookfs.Batch
	if err := l.Stage(&b, bookRoot); err != nil {
		b.Abort()
		return err
	}
	return b.Commit()
}

// Stage renders accounts.csv into b without touching the live file.
func (l *Ledger) Stage(b *bookfs.Batch, bookRoot string) error {
	var buf bytes.Buffer
	if err := WriteAccounts(&buf, l.accounts); err != nil {
		return err
	}
	return b.Stage(Path(bookRoot), buf.Bytes())
}

func (l *Ledger) insert(a model.Account) {
	l.byID[a.ID] = len(l.accounts)
	l.byName[a.Name] = a.ID
	l.accounts = append(l.accounts, a)
}

func (l *Ledger) reindex() {
	clear(l.byID)
	clear(l.byName)
	for i, a := range l.accounts {
		l.byID[a.ID] = i
		l.byName[a.Name] = a.ID
	}
}

// Path returns the location of accounts.csv inside a book.
func Path(bookRoot string) string {
	return filepath.Join(bookRoot, "accounts", "accounts.csv")
}
