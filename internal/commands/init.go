package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/voucherbook/internal/accounts"
	"github.com/cleared-dev/voucherbook/internal/book"
	"github.com/cleared-dev/voucherbook/internal/config"
	"github.com/cleared-dev/voucherbook/internal/gitops"
	"github.com/cleared-dev/voucherbook/internal/model"
)

func newInitCommand() *cobra.Command {
	var name string
	var empty bool
	var git bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new book",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			hash, err := runInit(absDir, name, empty, git)
			if err != nil {
				return err
			}
			if hash != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Initialized book %q at %s (%s)\n", name, absDir, hash)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized book %q at %s\n", name, absDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "book name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().BoolVar(&empty, "empty", false, "start without the default chart of accounts")
	cmd.Flags().BoolVar(&git, "git", false, "track the book in git and commit every change")

	return cmd
}

// runInit lays out a new book. With git it also initializes a repository
// and returns the initial commit hash.
func runInit(dir, name string, empty, git bool) (string, error) {
	if _, err := os.Stat(book.ConfigPath(dir)); err == nil {
		return "", fmt.Errorf("%s already contains a book", dir)
	}

	// Create directory structure.
	for _, d := range []string{"accounts", "journal", "logs", filepath.Join("import", "processed")} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return "", fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	// Write voucherbook.yaml.
	cfg := config.Default(name)
	cfg.Git.AutoCommit = git
	if err := config.Save(book.ConfigPath(dir), cfg); err != nil {
		return "", fmt.Errorf("writing config: %w", err)
	}

	// Write chart of accounts.
	var chart []model.Account
	if !empty {
		chart = accounts.DefaultChart()
	}
	ledger, err := accounts.NewLedger(chart)
	if err != nil {
		return "", err
	}

	// Write the empty journal and sequence alongside it.
	b := book.New(ledger, book.Options{Actor: cfg.Audit.Actor})
	if err := b.Save(dir); err != nil {
		return "", fmt.Errorf("writing book: %w", err)
	}

	// Write import/processed/.gitkeep.
	if err := os.WriteFile(filepath.Join(dir, "import", "processed", ".gitkeep"), []byte{}, 0o644); err != nil {
		return "", fmt.Errorf("writing .gitkeep: %w", err)
	}

	if !git {
		return "", nil
	}

	// Initialize git and create initial commit.
	if err := gitops.Init(dir); err != nil {
		return "", err
	}
	hash, err := gitops.CommitAll(dir, "init: Initialize "+name, gitAuthor(cfg))
	if err != nil {
		return "", fmt.Errorf("initial commit: %w", err)
	}
	return hash, nil
}
