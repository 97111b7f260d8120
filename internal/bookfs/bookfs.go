// Package bookfs writes book files through temporary siblings so a failed
// save never leaves a half-written file, and fingerprints the files so a
// stale copy of the book can tell that someone else has saved since.
package bookfs

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Batch collects file contents and puts them in place together. The zero
// value is ready to use.
type Batch struct {
	staged []staged
}

type staged struct {
	tmp string
	dst string
}

// Stage writes data to a temporary file next to dst. Nothing at dst
// changes until Commit.
func (b *Batch) Stage(dst string, data []byte) error {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".tmp-*")
	if err != nil {
		return fmt.Errorf("staging %s: %w", filepath.Base(dst), err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		_ = os.Remove(f.Name())
		return fmt.Errorf("staging %s: %w", filepath.Base(dst), err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = os.Remove(f.Name())
		return fmt.Errorf("syncing %s: %w", filepath.Base(dst), err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return fmt.Errorf("staging %s: %w", filepath.Base(dst), err)
	}
	if err := os.Chmod(f.Name(), 0o644); err != nil {
		_ = os.Remove(f.Name())
		return fmt.Errorf("staging %s: %w", filepath.Base(dst), err)
	}

	b.staged = append(b.staged, staged{tmp: f.Name(), dst: dst})
	return nil
}

// Commit renames every staged file over its destination in staging order.
// Staged files left over after a failed rename are removed.
func (b *Batch) Commit() error {
	defer b.Abort()
	for len(b.staged) > 0 {
		s := b.staged[0]
		if err := os.Rename(s.tmp, s.dst); err != nil {
			return fmt.Errorf("replacing %s: %w", filepath.Base(s.dst), err)
		}
		b.staged = b.staged[1:]
	}
	return nil
}

// Abort discards staged files that were not committed.
func (b *Batch) Abort() {
	for _, s := range b.staged {
		_ = os.Remove(s.tmp)
	}
	b.staged = nil
}

// Fingerprint hashes the names and contents of paths. A missing file
// hashes differently from an empty one.
func Fingerprint(paths ...string) (string, error) {
	h := sha256.New()
	for _, p := range paths {
		h.Write([]byte(p))
		data, err := os.ReadFile(p)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			h.Write([]byte{0})
		case err != nil:
			return "", fmt.Errorf("reading %s: %w", filepath.Base(p), err)
		default:
			h.Write([]byte{1})
			h.Write(data)
		}
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
