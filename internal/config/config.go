package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/voucherbook/internal/money"
)

// Environment variables that override voucherbook.yaml.
const (
	EnvAddr           = "VOUCHERBOOK_ADDR"
	EnvLogLevel       = "VOUCHERBOOK_LOG_LEVEL"
	EnvCurrencySymbol = "VOUCHERBOOK_CURRENCY_SYMBOL"
	EnvCurrencyPlaces = "VOUCHERBOOK_CURRENCY_PLACES"
	EnvActor          = "VOUCHERBOOK_ACTOR"
)

// Config represents the top-level voucherbook.yaml configuration.
type Config struct {
	Book     BookConfig     `yaml:"book"`
	Currency CurrencyConfig `yaml:"currency"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Audit    AuditConfig    `yaml:"audit"`
	Git      GitConfig      `yaml:"git"`
	Import   ImportConfig   `yaml:"import"`
}

// BookConfig identifies the book.
type BookConfig struct {
	Name string `yaml:"name"`
}

// CurrencyConfig controls how amounts are displayed.
type CurrencyConfig struct {
	Symbol string `yaml:"symbol"`
	Places int32  `yaml:"places"`
}

// ServerConfig controls `voucherbook serve`.
type ServerConfig struct {
	Addr string `yaml:"addr"` // host:port, e.g. ":8080"
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// AuditConfig sets the actor written to the audit log.
type AuditConfig struct {
	Actor string `yaml:"actor"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// ImportConfig maps bank statement rows onto accounts.
type ImportConfig struct {
	BankAccount    string `yaml:"bank_account"`
	IncomeAccount  string `yaml:"income_account"`
	ExpenseAccount string `yaml:"expense_account"`
}

// Load reads a voucherbook.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default("")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Currency.Places < 0 {
		return nil, fmt.Errorf("parsing config: currency.places must not be negative, got %d", cfg.Currency.Places)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except a missing file yields Default.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(""), nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new book.
func Default(bookName string) *Config {
	return &Config{
		Book: BookConfig{
			Name: bookName,
		},
		Currency: CurrencyConfig{
			Symbol: money.DefaultSymbol,
			Places: money.DefaultPlaces,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Log: LogConfig{
			Level: "info",
		},
		Audit: AuditConfig{
			Actor: "voucherbook",
		},
		Git: GitConfig{
			AutoCommit:  false,
			AuthorName:  "Voucherbook",
			AuthorEmail: "voucherbook@localhost",
		},
		Import: ImportConfig{
			BankAccount:    "Bank",
			IncomeAccount:  "Sales",
			ExpenseAccount: "Utilities",
		},
	}
}

// ApplyEnv loads envFile (or ./.env when empty, ignoring a missing file)
// and overlays VOUCHERBOOK_* variables onto cfg.
func (c *Config) ApplyEnv(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("loading env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvCurrencySymbol); v != "" {
		c.Currency.Symbol = v
	}
	if v := os.Getenv(EnvCurrencyPlaces); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid %s %q", EnvCurrencyPlaces, v)
		}
		c.Currency.Places = int32(n)
	}
	if v := os.Getenv(EnvActor); v != "" {
		c.Audit.Actor = v
	}
	return nil
}

// Formatter returns the money formatter for the configured currency.
func (c *Config) Formatter() money.Formatter {
	return money.Formatter{Symbol: c.Currency.Symbol, Places: c.Currency.Places}
}
