// Package settings stores the business-wide quoting defaults in a singleton row.
package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/cotizador/internal/pricing"
)

var (
	ErrNotSeeded = errors.New("quote settings singleton not found")
	ErrInvalid   = errors.New("invalid settings")
)

const DefaultCurrency = "MXN"

type Settings struct {
	DefaultMarginPercent     decimal.Decimal `json:"defaultMarginPercent"`
	Policy                   pricing.Policy  `json:"policy"`
	InstallationCostPerPiece decimal.Decimal `json:"installationCostPerPiece"`
	// AutoInstallation charges InstallationCostPerPiece for every piece on the quote
	// instead of a manually entered installation extra.
	AutoInstallation bool   `json:"autoInstallation"`
	Currency         string `json:"currency"`
}

func (s Settings) Validate() error {
	if s.DefaultMarginPercent.IsNegative() {
		return fmt.Errorf("%w: defaultMarginPercent must be >= 0", ErrInvalid)
	}
	if s.InstallationCostPerPiece.IsNegative() {
		return fmt.Errorf("%w: installationCostPerPiece must be >= 0", ErrInvalid)
	}
	if _, err := pricing.ParsePolicy(string(s.Policy)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Get(ctx context.Context) (Settings, error) {
	var (
		s                    Settings
		margin, install, pol string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT default_margin_percent, policy, installation_cost_per_piece, auto_installation, currency
		FROM quote_settings
		WHERE id = 1
	`).Scan(&margin, &pol, &install, &s.AutoInstallation, &s.Currency)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Settings{}, ErrNotSeeded
		}
		return Settings{}, fmt.Errorf("query quote_settings: %w", err)
	}

	if s.DefaultMarginPercent, err = decimal.NewFromString(margin); err != nil {
		return Settings{}, fmt.Errorf("parse default_margin_percent: %w", err)
	}
	if s.InstallationCostPerPiece, err = decimal.NewFromString(install); err != nil {
		return Settings{}, fmt.Errorf("parse installation_cost_per_piece: %w", err)
	}
	s.Policy = pricing.Policy(pol)
	return s, nil
}

// Update overwrites the singleton. Currency is fixed to MXN.
func (r *Repository) Update(ctx context.Context, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	policy, _ := pricing.ParsePolicy(string(s.Policy))

	result, err := r.db.ExecContext(ctx, `
		UPDATE quote_settings
		SET
			default_margin_percent = ?,
			policy = ?,
			installation_cost_per_piece = ?,
			auto_installation = ?,
			currency = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = 1
	`,
		s.DefaultMarginPercent.String(),
		string(policy),
		s.InstallationCostPerPiece.String(),
		s.AutoInstallation,
		DefaultCurrency,
	)
	if err != nil {
		return fmt.Errorf("update quote_settings: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update quote_settings: %w", err)
	}
	if affected == 0 {
		return ErrNotSeeded
	}
	return nil
}
