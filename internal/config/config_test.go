package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default("Dhaka Traders")
	cfg.Currency.Symbol = "$"
	cfg.Log.Development = true
	cfg.Git.AutoCommit = true
	cfg.Import.ExpenseAccount = "Shipping"

	path := filepath.Join(t.TempDir(), "voucherbook.yaml")
	err := Save(path, cfg)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg, got)
}

func TestDefaults(t *testing.T) {
	cfg := Default("My Company")

	assert.Equal(t, "My Company", cfg.Book.Name)
	assert.Equal(t, "৳", cfg.Currency.Symbol)
	assert.Equal(t, int32(2), cfg.Currency.Places)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.Development)
	assert.Equal(t, "voucherbook", cfg.Audit.Actor)
	assert.False(t, cfg.Git.AutoCommit)
	assert.Equal(t, "Voucherbook", cfg.Git.AuthorName)
	assert.Equal(t, "Bank", cfg.Import.BankAccount)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(""), cfg)
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voucherbook.yaml")
	require.NoError(t, os.WriteFile(path, []byte("book:\n  name: Partial\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Partial", cfg.Book.Name)
	assert.Equal(t, "৳", cfg.Currency.Symbol)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_RejectsNegativePlaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voucherbook.yaml")
	require.NoError(t, os.WriteFile(path, []byte("currency:\n  places: -1\n"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "currency.places")
}

func TestYAMLFormat(t *testing.T) {
	cfg := Default("Test Biz")
	path := filepath.Join(t.TempDir(), "voucherbook.yaml")
	err := Save(path, cfg)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "name: Test Biz")
	assert.Contains(t, contents, "places: 2")
	assert.Contains(t, contents, "8080")
	assert.Contains(t, contents, "level: info")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvAddr, "127.0.0.1:9000")
	t.Setenv(EnvCurrencySymbol, "$")

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("VOUCHERBOOK_LOG_LEVEL=debug\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv(EnvLogLevel) })

	cfg := Default("Env")
	require.NoError(t, cfg.ApplyEnv(envFile))

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, "$", cfg.Currency.Symbol)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "$1,000.00", cfg.Formatter().Format(decimal.NewFromInt(1000)))
}

func TestApplyEnv_MissingFile(t *testing.T) {
	cfg := Default("Env")
	err := cfg.ApplyEnv(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestApplyEnv_BadPlaces(t *testing.T) {
	t.Setenv(EnvCurrencyPlaces, "two")
	cfg := Default("Env")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	assert.Error(t, cfg.ApplyEnv(""))
}
