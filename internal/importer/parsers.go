package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/voucherbook/internal/journal"
	"github.com/cleared-dev/voucherbook/internal/model"
)

// VoucherParser reads the native import format:
//
//	date,credit_account,debit_account,amount,remarks
//
// Accounts are display names; date is YYYY-MM-DD.
type VoucherParser struct{}

// VoucherHeader is the header row VoucherParser expects.
const VoucherHeader = "date,credit_account,debit_account,amount,remarks"

const (
	voucherNumFields = 5
	voucherColDate   = 0
	voucherColCredit = 1
	voucherColDebit  = 2
	voucherColAmount = 3
	voucherColRemark = 4
)

// Format returns the parser name.
func (p *VoucherParser) Format() string { return "voucherbook" }

// Parse reads the CSV and returns one draft per row.
func (p *VoucherParser) Parse(r io.Reader) ([]journal.CreateParams, error) {
	records, err := readAll(r, voucherNumFields)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	if got := strings.Join(records[0], ","); got != VoucherHeader {
		return nil, fmt.Errorf("unexpected header %q, want %q", got, VoucherHeader)
	}

	var drafts []journal.CreateParams
	for i, rec := range records[1:] {
		date, err := model.ParseDate(rec[voucherColDate])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(rec[voucherColAmount]))
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing amount %q: %w", i+2, rec[voucherColAmount], err)
		}
		drafts = append(drafts, journal.CreateParams{
			Date:          date,
			CreditAccount: rec[voucherColCredit],
			DebitAccount:  rec[voucherColDebit],
			Amount:        amount,
			Remarks:       rec[voucherColRemark],
		})
	}
	return drafts, nil
}

// BankMapping names the accounts a bank statement row is booked against.
// Deposits credit Income and debit Account; withdrawals credit Account and
// debit Expense.
type BankMapping struct {
	Account string
	Income  string
	Expense string
}

// BankParser reads bank statement exports:
//
//	Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #
//
// Posting Date is MM/DD/YYYY; Amount is signed, negative for money out.
type BankParser struct {
	Mapping BankMapping
}

const (
	bankDateFormat = "01/02/2006"
	bankNumFields  = 7
	bankColDate    = 1
	bankColDesc    = 2
	bankColAmount  = 3
	bankColType    = 4
)

// Format returns the parser name.
func (p *BankParser) Format() string { return "bank" }

// Parse reads the statement and returns one draft per row.
func (p *BankParser) Parse(r io.Reader) ([]journal.CreateParams, error) {
	records, err := readAll(r, bankNumFields)
	if err != nil {
		return nil, err
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var drafts []journal.CreateParams
	for i, rec := range records[1:] {
		d, err := p.parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		drafts = append(drafts, d)
	}
	return drafts, nil
}

func (p *BankParser) parseRow(rec []string) (journal.CreateParams, error) {
	date, err := time.Parse(bankDateFormat, rec[bankColDate])
	if err != nil {
		return journal.CreateParams{}, fmt.Errorf("parsing date %q: %w", rec[bankColDate], err)
	}

	amount, err := decimal.NewFromString(rec[bankColAmount])
	if err != nil {
		return journal.CreateParams{}, fmt.Errorf("parsing amount %q: %w", rec[bankColAmount], err)
	}

	d := journal.CreateParams{
		Date:    date,
		Amount:  amount.Abs(),
		Remarks: fmt.Sprintf("%s (%s)", rec[bankColDesc], rec[bankColType]),
	}
	if amount.IsNegative() {
		d.CreditAccount = p.Mapping.Account
		d.DebitAccount = p.Mapping.Expense
	} else {
		d.CreditAccount = p.Mapping.Income
		d.DebitAccount = p.Mapping.Account
	}
	return d, nil
}

func readAll(r io.Reader, fields int) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = fields
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	return records, nil
}
