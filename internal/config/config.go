package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/cotizador/internal/pricing"
)

const (
	defaultEnv           = "development"
	defaultDBPath        = "./dev.db"
	defaultPort          = "8080"
	defaultMargin        = "30"
	defaultNotifyTimeout = 10 * time.Second
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env      string
	Port     string
	DBPath   string
	LogLevel string

	Policy                   pricing.Policy
	DefaultMarginPercent     decimal.Decimal
	InstallationCostPerPiece decimal.Decimal

	SheetsWebhookURL      string
	SheetsCredentialsFile string
	SheetsSpreadsheetID   string
	SheetsRange           string
	NotifyTimeout         time.Duration
}

// Load reads environment variables and returns a populated Config. Invalid values
// are logged and replaced by their defaults.
func Load() Config {
	// Best-effort: load local dev environment variables.
	// We don't fail if the file is missing; production should use real env injection.
	if err := loadDotEnv(".env"); err != nil {
		slog.Warn("failed to load .env", "error", err)
	}

	cfg := Config{
		Env:                   getEnv("APP_ENV", defaultEnv),
		Port:                  getEnv("PORT", defaultPort),
		DBPath:                getEnv("DB_PATH", defaultDBPath),
		LogLevel:              os.Getenv("LOG_LEVEL"),
		SheetsWebhookURL:      strings.TrimSpace(os.Getenv("SHEETS_WEBHOOK_URL")),
		SheetsCredentialsFile: strings.TrimSpace(os.Getenv("SHEETS_CREDENTIALS_FILE")),
		SheetsSpreadsheetID:   strings.TrimSpace(os.Getenv("SHEETS_SPREADSHEET_ID")),
		SheetsRange:           strings.TrimSpace(os.Getenv("SHEETS_RANGE")),
		NotifyTimeout:         defaultNotifyTimeout,
	}

	cfg.Policy = pricing.PolicyItemized
	if raw := os.Getenv("QUOTE_POLICY"); raw != "" {
		p, err := pricing.ParsePolicy(raw)
		if err != nil {
			slog.Warn("invalid QUOTE_POLICY, using A", "value", raw)
		} else {
			cfg.Policy = p
		}
	}

	cfg.DefaultMarginPercent = decimalEnv("DEFAULT_MARGIN_PERCENT", decimal.RequireFromString(defaultMargin))
	cfg.InstallationCostPerPiece = decimalEnv("INSTALLATION_COST_PER_PIECE", decimal.Zero)

	if raw := os.Getenv("NOTIFY_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			slog.Warn("invalid NOTIFY_TIMEOUT, using default", "value", raw, "default", defaultNotifyTimeout)
		} else {
			cfg.NotifyTimeout = d
		}
	}

	if cfg.SheetsSpreadsheetID != "" && cfg.SheetsCredentialsFile == "" {
		slog.Warn("SHEETS_SPREADSHEET_ID is set but SHEETS_CREDENTIALS_FILE is not")
	}
	if !cfg.NotificationsEnabled() {
		slog.Warn("no sheet notification target configured; generated quotes will not be forwarded")
	}

	return cfg
}

// IsDev reports whether the service runs outside production.
func (c Config) IsDev() bool {
	return !strings.EqualFold(c.Env, "production")
}

// UseSheetsAPI reports whether the Google Sheets API target is fully configured.
func (c Config) UseSheetsAPI() bool {
	return c.SheetsSpreadsheetID != "" && c.SheetsCredentialsFile != ""
}

func (c Config) NotificationsEnabled() bool {
	return c.UseSheetsAPI() || c.SheetsWebhookURL != ""
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func decimalEnv(key string, fallback decimal.Decimal) decimal.Decimal {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		slog.Warn("invalid "+key+", using default", "value", raw, "default", fallback.String())
		return fallback
	}
	return d
}
