package commands

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/voucherbook/internal/book"
	"github.com/cleared-dev/voucherbook/internal/config"
	"github.com/cleared-dev/voucherbook/internal/gitops"
	"github.com/cleared-dev/voucherbook/internal/model"
)

type globalOptions struct {
	bookDir string
	envFile string
}

// session is an opened book plus its effective configuration.
type session struct {
	root string
	cfg  *config.Config
	book *book.Book

	saveMu sync.Mutex
}

func openSession(opts *globalOptions, observer book.Observer) (*session, error) {
	root, err := filepath.Abs(opts.bookDir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.LoadOrDefault(book.ConfigPath(root))
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(opts.envFile); err != nil {
		return nil, err
	}

	b, err := book.Open(root, book.Options{Actor: cfg.Audit.Actor, Observer: observer})
	if err != nil {
		return nil, fmt.Errorf("opening book %s: %w", root, err)
	}
	return &session{root: root, cfg: cfg, book: b}, nil
}

// save writes the book and, when auto-commit is on and the book is a git
// repository, commits the change.
func (s *session) save() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	entries := s.book.PendingAudit()
	if err := s.book.Save(s.root); err != nil {
		return err
	}
	if !s.cfg.Git.AutoCommit || len(entries) == 0 || !gitops.IsRepo(s.root) {
		return nil
	}
	if _, err := gitops.CommitAll(s.root, gitops.CommitMessage(entries), gitAuthor(s.cfg)); err != nil {
		return fmt.Errorf("committing book: %w", err)
	}
	return nil
}

// confirm asks a yes/no question on cmd's streams. Anything but y/yes is no.
func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// lookupAccount resolves an account by display name, then by ID.
func (s *session) lookupAccount(ref string) (model.Account, error) {
	if a, ok := s.book.AccountByName(ref); ok {
		return a, nil
	}
	if a, ok := s.book.Account(ref); ok {
		return a, nil
	}
	return model.Account{}, fmt.Errorf("account %q: %w", ref, model.ErrNotFound)
}

func gitAuthor(cfg *config.Config) gitops.Author {
	return gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
}
