package journal

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/voucherbook/internal/id"
	"github.com/cleared-dev/voucherbook/internal/model"
)

var hundred = decimal.NewFromInt(100)

// ValidationError describes a single problem found in a stored journal.
type ValidationError struct {
	Check       string
	VoucherID   string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s [%s]: %s", e.Check, e.VoucherID, e.Description)
}

// ValidateVouchers checks a loaded journal: well-formed unique IDs not past
// lastSeq (when lastSeq > 0), known distinct accounts, positive two-place
// amounts, known statuses and present dates.
func ValidateVouchers(vouchers []model.Voucher, accounts AccountResolver, lastSeq int) []ValidationError {
	var errs []ValidationError
	add := func(check, voucherID, format string, args ...any) {
		errs = append(errs, ValidationError{Check: check, VoucherID: voucherID, Description: fmt.Sprintf(format, args...)})
	}

	seen := make(map[string]bool, len(vouchers))
	for _, v := range vouchers {
		seq, err := id.ParseVoucherID(v.ID)
		switch {
		case err != nil:
			add("id", v.ID, "%v", err)
		case seen[v.ID]:
			add("id", v.ID, "duplicate voucher ID")
		case lastSeq > 0 && seq > lastSeq:
			add("id", v.ID, "sequence %d is past last issued %d", seq, lastSeq)
		}
		seen[v.ID] = true

		if _, ok := accounts.Get(v.CreditAccountID); !ok {
			add("accounts", v.ID, "unknown credit account %s", v.CreditAccountID)
		}
		if _, ok := accounts.Get(v.DebitAccountID); !ok {
			add("accounts", v.ID, "unknown debit account %s", v.DebitAccountID)
		}
		if v.CreditAccountID == v.DebitAccountID {
			add("accounts", v.ID, "credit and debit account are both %s", v.CreditAccountID)
		}

		if err := validateAmount(v.Amount); err != nil {
			add("amount", v.ID, "%v", err)
		}
		if !v.Status.Valid() {
			add("status", v.ID, "unknown status %q", v.Status)
		}
		if v.Date.IsZero() {
			add("date", v.ID, "missing date")
		}
	}
	return errs
}

// validateAmount requires a positive amount with at most two decimal places.
func validateAmount(amount decimal.Decimal) error {
	if amount.IsZero() {
		return fmt.Errorf("%w: amount", model.ErrMissingField)
	}
	if amount.IsNegative() {
		return fmt.Errorf("%w: %s must be positive", model.ErrInvalidAmount, amount)
	}
	if scaled := amount.Mul(hundred); !scaled.Equal(scaled.Floor()) {
		return fmt.Errorf("%w: %s has more than 2 decimal places", model.ErrInvalidAmount, amount)
	}
	return nil
}
