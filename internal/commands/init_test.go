package commands_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/voucherbook/internal/accounts"
	"github.com/cleared-dev/voucherbook/internal/commands"
)

// runVoucherbook executes the CLI in-process with stdin as its input.
func runVoucherbook(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := commands.NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func initBook(t *testing.T, extra ...string) string {
	t.Helper()
	dir := t.TempDir()
	args := append([]string{"init", dir, "--name", "Test Biz"}, extra...)
	_, err := runVoucherbook(t, "", args...)
	require.NoError(t, err)
	return dir
}

func TestInit_CreatesStructure(t *testing.T) {
	dir := initBook(t)

	for _, d := range []string{"accounts", "journal", "logs"} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}
	for _, f := range []string{"voucherbook.yaml", "accounts/accounts.csv", "journal/vouchers.csv", "journal/sequence"} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, "file %s should exist", f)
	}
}

func TestInit_Config(t *testing.T) {
	dir := initBook(t)

	data, err := os.ReadFile(filepath.Join(dir, "voucherbook.yaml"))
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "name: Test Biz")
	assert.Contains(t, contents, "symbol: ৳")
}

func TestInit_Accounts(t *testing.T) {
	dir := initBook(t)

	ledger, err := accounts.Load(dir)
	require.NoError(t, err)
	assert.Len(t, ledger.All(), len(accounts.DefaultChart()))
	_, ok := ledger.ByName("Bank")
	assert.True(t, ok)
}

func TestInit_Empty(t *testing.T) {
	dir := initBook(t, "--empty")

	ledger, err := accounts.Load(dir)
	require.NoError(t, err)
	assert.Empty(t, ledger.All())
}

func TestInit_RequiresName(t *testing.T) {
	_, err := runVoucherbook(t, "", "init", t.TempDir())
	assert.Error(t, err)
}

func TestInit_RefusesExistingBook(t *testing.T) {
	dir := initBook(t)
	_, err := runVoucherbook(t, "", "init", dir, "--name", "Again")
	assert.ErrorContains(t, err, "already contains a book")
}
