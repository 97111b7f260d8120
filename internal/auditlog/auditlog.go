// Package auditlog records book mutations in logs/audit-log.csv.
package auditlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Actions recorded by the book.
const (
	ActionAccountAdd     = "account.add"
	ActionAccountDelete  = "account.delete"
	ActionVoucherCreate  = "voucher.create"
	ActionVoucherEdit    = "voucher.edit"
	ActionVoucherApprove = "voucher.approve"
	ActionVoucherReject  = "voucher.reject"
	ActionVoucherDelete  = "voucher.delete"
)

// Entry is one row in the audit log.
type Entry struct {
	Timestamp time.Time
	Actor     string
	Action    string
	Target    string // account or voucher ID
	Details   string
}

// Header is the first row of audit-log.csv.
var Header = []string{"timestamp", "actor", "action", "target", "details"}

// Path returns the audit log location inside a book.
func Path(bookRoot string) string {
	return filepath.Join(bookRoot, "logs", "audit-log.csv")
}

// MarshalEntry renders an entry as a CSV row with a UTC RFC3339 timestamp.
func MarshalEntry(e Entry) []string {
	return []string{e.Timestamp.UTC().Format(time.RFC3339), e.Actor, e.Action, e.Target, e.Details}
}

// UnmarshalEntry parses a CSV row.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != len(Header) {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", len(Header), len(record))
	}
	ts, err := time.Parse(time.RFC3339, record[0])
	if err != nil {
		return Entry{}, fmt.Errorf("timestamp %q: %w", record[0], err)
	}
	return Entry{
		Timestamp: ts,
		Actor:     record[1],
		Action:    record[2],
		Target:    record[3],
		Details:   record[4],
	}, nil
}

// Append adds entries to the book's audit log. The file and its header are
// created on first use; an empty batch touches nothing.
func Append(bookRoot string, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	p := Path(bookRoot)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	rows := make([][]string, 0, len(entries)+1)
	if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
		rows = append(rows, Header)
	}
	for _, e := range entries {
		rows = append(rows, MarshalEntry(e))
	}

	f, err := os.OpenFile(p, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	if err := csv.NewWriter(f).WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("appending audit log: %w", err)
	}
	return f.Close()
}

// Read returns every entry in the book's audit log, oldest first. A book
// without a log has no entries.
func Read(bookRoot string) ([]Entry, error) {
	f, err := os.Open(Path(bookRoot))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = len(Header)
	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading audit log header: %w", err)
	}

	var entries []Entry
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading audit log: %w", err)
		}
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("audit log line %d: %w", line, err)
		}
		entries = append(entries, e)
	}
}
