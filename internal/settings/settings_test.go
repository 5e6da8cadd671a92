package settings

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/cotizador/internal/db"
	"github.com/Simplici0/cotizador/internal/migrations"
	"github.com/Simplici0/cotizador/internal/pricing"
)

func newRepo(t *testing.T) *Repository {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "settings.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := migrations.Up(database); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return NewRepository(database)
}

func TestGetBeforeSeed(t *testing.T) {
	repo := newRepo(t)
	if _, err := repo.Get(context.Background()); !errors.Is(err, ErrNotSeeded) {
		t.Fatalf("Get error = %v, want ErrNotSeeded", err)
	}
	err := repo.Update(context.Background(), Settings{Policy: pricing.PolicyItemized})
	if !errors.Is(err, ErrNotSeeded) {
		t.Fatalf("Update error = %v, want ErrNotSeeded", err)
	}
}

func TestUpdateRoundTrip(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	if _, err := repo.db.Exec(`
		INSERT INTO quote_settings (id, default_margin_percent, policy, installation_cost_per_piece)
		VALUES (1, '30', 'A', '0')
	`); err != nil {
		t.Fatalf("insert singleton: %v", err)
	}

	want := Settings{
		DefaultMarginPercent:     decimal.RequireFromString("37.5"),
		Policy:                   "b",
		InstallationCostPerPiece: decimal.NewFromInt(250),
		AutoInstallation:         true,
	}
	if err := repo.Update(ctx, want); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.DefaultMarginPercent.Equal(want.DefaultMarginPercent) ||
		!got.InstallationCostPerPiece.Equal(want.InstallationCostPerPiece) ||
		got.Policy != pricing.PolicyLumpSum ||
		!got.AutoInstallation ||
		got.Currency != DefaultCurrency {
		t.Fatalf("unexpected settings: %+v", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		s       Settings
		wantErr string
	}{
		{"valid", Settings{Policy: pricing.PolicyItemized}, ""},
		{"negative margin", Settings{Policy: pricing.PolicyItemized, DefaultMarginPercent: decimal.NewFromInt(-1)}, "defaultMarginPercent must be >= 0"},
		{"negative installation", Settings{Policy: pricing.PolicyLumpSum, InstallationCostPerPiece: decimal.NewFromInt(-1)}, "installationCostPerPiece must be >= 0"},
		{"unknown policy", Settings{Policy: "Z"}, "invalid settings"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Validate()
			if (err != nil) != (tt.wantErr != "") {
				t.Fatalf("Validate() error = %v, wantErr %q", err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %q, want it to mention %q", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}
}
