// Package gitops versions a book directory with the git CLI.
package gitops

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/cleared-dev/voucherbook/internal/auditlog"
)

// Author identifies who commits book changes.
type Author struct {
	Name  string
	Email string
}

func (a Author) String() string {
	return fmt.Sprintf("%s <%s>", a.Name, a.Email)
}

// Init initializes a new git repository at dir.
func Init(dir string) error {
	_, err := git(dir, nil, "init", "--quiet")
	return err
}

// CommitAll stages every change in the book and commits it under author,
// who is also recorded as committer. It returns the short commit hash.
func CommitAll(dir, message string, author Author) (string, error) {
	if _, err := git(dir, nil, "add", "-A"); err != nil {
		return "", err
	}
	env := []string{
		"GIT_COMMITTER_NAME=" + author.Name,
		"GIT_COMMITTER_EMAIL=" + author.Email,
	}
	if _, err := git(dir, env, "commit", "--quiet", "-m", message, "--author", author.String()); err != nil {
		return "", err
	}
	return git(dir, nil, "rev-parse", "--short", "HEAD")
}

// git runs a git subcommand in dir and returns its trimmed combined output.
func git(dir string, env []string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %s: %w", args[0], bytes.TrimSpace(out), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// IsRepo reports whether dir is the root of a git repository.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// CommitMessage summarizes audit entries: the subject names a single
// action, or counts them, and the body lists every entry.
func CommitMessage(entries []auditlog.Entry) string {
	switch len(entries) {
	case 0:
		return "book: save"
	case 1:
		e := entries[0]
		return fmt.Sprintf("%s %s\n\n%s", e.Action, e.Target, e.Details)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "book: %d changes\n\n", len(entries))
	for _, e := range entries {
		fmt.Fprintf(&b, "- %s %s: %s\n", e.Action, e.Target, e.Details)
	}
	return strings.TrimRight(b.String(), "\n")
}
