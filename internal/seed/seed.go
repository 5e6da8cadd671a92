package seed

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/cotizador/internal/pricing"
	"github.com/Simplici0/cotizador/internal/settings"
)

// Config contains the defaults written on first start.
type Config struct {
	DefaultMarginPercent     decimal.Decimal
	Policy                   pricing.Policy
	InstallationCostPerPiece decimal.Decimal
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// Run executes the startup seed in an idempotent way. Existing settings are never
// overwritten.
func Run(db *sql.DB, cfg Config) (Stats, error) {
	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := ensureSettings(tx, cfg, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureSettings(tx *sql.Tx, cfg Config, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM quote_settings WHERE id = 1)`).Scan(&exists); err != nil {
		return fmt.Errorf("check quote settings existence: %w", err)
	}
	if exists {
		return nil
	}

	policy := cfg.Policy
	if policy == "" {
		policy = pricing.PolicyItemized
	}

	if _, err := tx.Exec(`
		INSERT INTO quote_settings (
			id,
			default_margin_percent,
			policy,
			installation_cost_per_piece,
			auto_installation,
			currency
		)
		VALUES (1, ?, ?, ?, ?, ?)
	`,
		cfg.DefaultMarginPercent.String(),
		string(policy),
		cfg.InstallationCostPerPiece.String(),
		policy == pricing.PolicyLumpSum,
		settings.DefaultCurrency,
	); err != nil {
		return fmt.Errorf("insert quote settings singleton: %w", err)
	}
	stats.Inserts++
	return nil
}
