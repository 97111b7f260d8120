// Package importer turns CSV files dropped in a book's import/ directory
// into pending vouchers.
package importer

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cleared-dev/voucherbook/internal/book"
	"github.com/cleared-dev/voucherbook/internal/journal"
	"github.com/cleared-dev/voucherbook/internal/model"
)

// Parser converts a CSV file into voucher drafts.
type Parser interface {
	Parse(r io.Reader) ([]journal.CreateParams, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// File is a CSV waiting in the import directory.
type File struct {
	Name string
	Path string
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// DefaultRegistry returns a registry with the voucher CSV parser and a
// bank statement parser for the given account mapping.
func DefaultRegistry(bank BankMapping) *Registry {
	r := NewRegistry()
	r.Register(&VoucherParser{})
	r.Register(&BankParser{Mapping: bank})
	return r
}

const (
	importDir    = "import"
	processedDir = "processed"
)

// Scan lists the CSV files directly under <bookRoot>/import/, sorted by
// name. A missing directory yields no files.
func Scan(bookRoot string) ([]File, error) {
	dir := filepath.Join(bookRoot, importDir)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []File
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		files = append(files, File{Name: e.Name(), Path: filepath.Join(dir, e.Name())})
	}
	return files, nil
}

// ErrAlreadyProcessed reports an import file whose name is already taken in
// import/processed/.
var ErrAlreadyProcessed = errors.New("already processed")

// Processed reports whether import/processed/ already holds a file called name.
func Processed(bookRoot, name string) bool {
	_, err := os.Stat(filepath.Join(bookRoot, importDir, processedDir, name))
	return err == nil
}

// MarkProcessed moves an imported file into import/processed/. It refuses
// to replace a file of the same name already there.
func MarkProcessed(bookRoot, name string) error {
	if Processed(bookRoot, name) {
		return fmt.Errorf("%s: %w", name, ErrAlreadyProcessed)
	}
	done := filepath.Join(bookRoot, importDir, processedDir)
	if err := os.MkdirAll(done, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}
	if err := os.Rename(filepath.Join(bookRoot, importDir, name), filepath.Join(done, name)); err != nil {
		return fmt.Errorf("moving %s to processed: %w", name, err)
	}
	return nil
}

// ParseFile opens path and parses it with p.
func ParseFile(p Parser, path string) ([]journal.CreateParams, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	drafts, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s as %s: %w", filepath.Base(path), p.Format(), err)
	}
	return drafts, nil
}

// FileResult reports the vouchers created from one import file.
type FileResult struct {
	File     File
	Vouchers []model.Voucher
}

// Import parses every CSV in <bookRoot>/import/ with p and records the
// rows as pending vouchers in b. Each file is all-or-nothing; the first
// failing file stops the run. A file whose name is already in
// import/processed/ fails the run before anything is recorded. Files are
// not moved: callers save the book and then call MarkProcessed for each
// result.
func Import(b *book.Book, bookRoot string, p Parser) ([]FileResult, error) {
	files, err := Scan(bookRoot)
	if err != nil {
		return nil, err
	}
	for _, fi := range files {
		if Processed(bookRoot, fi.Name) {
			return nil, fmt.Errorf("importing %s: %w; rename it and run import again", fi.Name, ErrAlreadyProcessed)
		}
	}

	var results []FileResult
	for _, fi := range files {
		drafts, err := ParseFile(p, fi.Path)
		if err != nil {
			return results, err
		}
		vs, err := b.CreateVouchers(drafts)
		if err != nil {
			return results, fmt.Errorf("importing %s: %w", fi.Name, err)
		}
		results = append(results, FileResult{File: fi, Vouchers: vs})
	}
	return results, nil
}
