package journal

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/voucherbook/internal/bookfs"
	"github.com/cleared-dev/voucherbook/internal/model"
)

// Header is the CSV header for vouchers.csv.
const Header = "voucher_id,date,credit_account_id,debit_account_id,amount,remarks,status,version"

const (
	numFields = 8
	colID     = 0
	colDate   = 1
	colCredit = 2
	colDebit  = 3
	colAmount = 4
	colRemark = 5
	colStatus = 6
	colVer    = 7
)

// ReadVouchers reads all vouchers from a vouchers.csv reader.
func ReadVouchers(r io.Reader) ([]model.Voucher, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading vouchers CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var vouchers []model.Voucher
	for i, rec := range records[1:] {
		v, err := UnmarshalVoucher(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		vouchers = append(vouchers, v)
	}
	return vouchers, nil
}

// WriteVouchers writes vouchers to a vouchers.csv writer (including header).
func WriteVouchers(w io.Writer, vouchers []model.Voucher) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, v := range vouchers {
		if err := cw.Write(MarshalVoucher(v)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalVoucher converts a Voucher to a CSV row ([]string).
func MarshalVoucher(v model.Voucher) []string {
	row := make([]string, numFields)
	row[colID] = v.ID
	row[colDate] = v.Date.Format(model.DateFormat)
	row[colCredit] = v.CreditAccountID
	row[colDebit] = v.DebitAccountID
	row[colAmount] = v.Amount.StringFixed(2)
	row[colRemark] = v.Remarks
	row[colStatus] = string(v.Status)
	row[colVer] = strconv.Itoa(v.Version)
	return row
}

// UnmarshalVoucher converts a CSV row to a Voucher.
func UnmarshalVoucher(record []string) (model.Voucher, error) {
	if len(record) != numFields {
		return model.Voucher{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := time.Parse(model.DateFormat, record[colDate])
	if err != nil {
		return model.Voucher{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.Voucher{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	status, err := model.ParseVoucherStatus(record[colStatus])
	if err != nil {
		return model.Voucher{}, err
	}

	version := 1
	if record[colVer] != "" {
		version, err = strconv.Atoi(record[colVer])
		if err != nil {
			return model.Voucher{}, fmt.Errorf("parsing version %q: %w", record[colVer], err)
		}
	}

	return model.Voucher{
		ID:              record[colID],
		Date:            date,
		CreditAccountID: record[colCredit],
		DebitAccountID:  record[colDebit],
		Amount:          amount,
		Remarks:         record[colRemark],
		Status:          status,
		Version:         version,
	}, nil
}

// Load reads journal/vouchers.csv and journal/sequence from a book root
// into j. Missing files mean an empty journal.
func (j *Journal) Load(bookRoot string) error {
	var vouchers []model.Voucher
	f, err := os.Open(VouchersPath(bookRoot))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return fmt.Errorf("opening vouchers: %w", err)
	default:
		defer f.Close()
		vouchers, err = ReadVouchers(f)
		if err != nil {
			return fmt.Errorf("reading vouchers: %w", err)
		}
	}

	lastSeq, err := readSequence(bookRoot)
	if err != nil {
		return err
	}
	return j.Restore(vouchers, lastSeq)
}

// Save writes journal/vouchers.csv and journal/sequence under a book root.
// Neither file changes unless both could be written.
func (j *Journal) Save(bookRoot string) error {
	var b bookfs.Batch
	if err := j.Stage(&b, bookRoot); err != nil {
		b.Abort()
		return err
	}
	return b.Commit()
}

// Stage renders vouchers.csv and sequence into b without touching the live
// files.
func (j *Journal) Stage(b *bookfs.Batch, bookRoot string) error {
	var buf bytes.Buffer
	if err := WriteVouchers(&buf, j.vouchers); err != nil {
		return fmt.Errorf("writing vouchers: %w", err)
	}
	if err := b.Stage(VouchersPath(bookRoot), buf.Bytes()); err != nil {
		return err
	}
	return b.Stage(SequencePath(bookRoot), []byte(strconv.Itoa(j.seq.Last())+"\n"))
}

func readSequence(bookRoot string) (int, error) {
	data, err := os.ReadFile(SequencePath(bookRoot))
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading sequence: %w", err)
	}
	s := strings.TrimSpace(string(data))
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("parsing sequence %q: invalid value", s)
	}
	return n, nil
}

// VouchersPath returns the location of vouchers.csv inside a book.
func VouchersPath(bookRoot string) string {
	return filepath.Join(bookRoot, "journal", "vouchers.csv")
}

// SequencePath returns the location of the voucher sequence file inside a
// book.
func SequencePath(bookRoot string) string {
	return filepath.Join(bookRoot, "journal", "sequence")
}
