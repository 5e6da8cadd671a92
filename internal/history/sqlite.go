package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/cotizador/internal/pricing"
)

var _ Backend = (*SQLiteBackend)(nil)

// SQLiteBackend stores summaries in the quote_history table. Amounts are kept as
// decimal strings so they round-trip exactly.
type SQLiteBackend struct {
	db *sql.DB
}

func NewSQLiteBackend(db *sql.DB) *SQLiteBackend {
	return &SQLiteBackend{db: db}
}

func (b *SQLiteBackend) Append(ctx context.Context, s Summary) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO quote_history (
			id,
			number,
			created_at,
			client_name,
			client_total,
			net_profit,
			margin_percent,
			item_count,
			policy
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		s.ID,
		s.Number,
		s.CreatedAt.UnixMilli(),
		s.ClientName,
		s.ClientTotal.String(),
		s.NetProfit.String(),
		s.MarginPercent.String(),
		s.ItemCount,
		string(s.Policy),
	)
	if err != nil {
		return fmt.Errorf("insert quote_history: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) LoadAll(ctx context.Context) ([]Summary, error) {
	rows, err := b.db.QueryContext(ctx, `
		SELECT id, number, created_at, client_name, client_total, net_profit, margin_percent, item_count, policy
		FROM quote_history
		ORDER BY seq DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query quote_history: %w", err)
	}
	defer rows.Close()

	summaries := make([]Summary, 0)
	for rows.Next() {
		var (
			s                          Summary
			createdAt                  int64
			total, profit, margin, pol string
		)
		if err := rows.Scan(&s.ID, &s.Number, &createdAt, &s.ClientName, &total, &profit, &margin, &s.ItemCount, &pol); err != nil {
			return nil, fmt.Errorf("scan quote_history: %w", err)
		}
		s.CreatedAt = time.UnixMilli(createdAt)
		s.Policy = pricing.Policy(pol)
		if s.ClientTotal, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("parse client_total of %s: %w", s.ID, err)
		}
		if s.NetProfit, err = decimal.NewFromString(profit); err != nil {
			return nil, fmt.Errorf("parse net_profit of %s: %w", s.ID, err)
		}
		if s.MarginPercent, err = decimal.NewFromString(margin); err != nil {
			return nil, fmt.Errorf("parse margin_percent of %s: %w", s.ID, err)
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quote_history: %w", err)
	}

	return summaries, nil
}

func (b *SQLiteBackend) Clear(ctx context.Context) error {
	if _, err := b.db.ExecContext(ctx, `DELETE FROM quote_history`); err != nil {
		return fmt.Errorf("delete quote_history: %w", err)
	}
	return nil
}
