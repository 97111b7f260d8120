package model

import "errors"

// Validation errors are user-correctable; the operation that returned one
// made no change.
var (
	ErrMissingField         = errors.New("missing required field")
	ErrInvalidType          = errors.New("invalid account type")
	ErrInvalidStatus        = errors.New("invalid voucher status")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidRange         = errors.New("invalid date range")
	ErrDuplicateName        = errors.New("account name already exists")
	ErrUnresolvedReference  = errors.New("select valid accounts")
	ErrSelfReference        = errors.New("credit and debit accounts must differ")
	ErrNotFound             = errors.New("not found")
	ErrAccountInUse         = errors.New("account is referenced by vouchers")
	ErrVoucherFinalized     = errors.New("voucher is already finalized")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrConflict             = errors.New("voucher was modified concurrently")
	ErrConfirmationRequired = errors.New("confirmation required")
)
