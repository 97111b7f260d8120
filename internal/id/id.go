package id

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// VoucherPrefix starts every voucher ID.
const VoucherPrefix = "VN"

// FormatVoucherID returns a voucher ID like "VN0001".
func FormatVoucherID(seq int) string {
	return fmt.Sprintf("%s%04d", VoucherPrefix, seq)
}

// ParseVoucherID parses "VN0001" into its sequence number.
func ParseVoucherID(id string) (int, error) {
	digits, ok := strings.CutPrefix(id, VoucherPrefix)
	if !ok || len(digits) < 4 {
		return 0, fmt.Errorf("invalid voucher ID format: %q", id)
	}
	seq, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("invalid sequence in voucher ID %q: %w", id, err)
	}
	if seq <= 0 {
		return 0, fmt.Errorf("invalid sequence in voucher ID %q", id)
	}
	return seq, nil
}

// Sequence hands out voucher sequence numbers. It only moves forward, so
// numbers freed by deletion are never issued again.
type Sequence struct {
	last int
}

// NewSequence resumes a sequence after last.
func NewSequence(last int) *Sequence {
	return &Sequence{last: last}
}

// Next reserves and returns the next sequence number.
func (s *Sequence) Next() int {
	s.last++
	return s.last
}

// Last returns the most recently issued number (0 if none).
func (s *Sequence) Last() int {
	return s.last
}

// Observe advances the sequence so it is at least seq.
func (s *Sequence) Observe(seq int) {
	if seq > s.last {
		s.last = seq
	}
}

// NewAccountID returns a fresh stable account identifier.
func NewAccountID() string {
	return uuid.New().String()
}

// ValidAccountID reports whether s looks like an identifier from NewAccountID.
func ValidAccountID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
