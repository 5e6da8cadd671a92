// Package history keeps the append-only log of generated quote summaries.
package history

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/cotizador/internal/pricing"
)

// UnnamedClient replaces a blank client name in summaries.
const UnnamedClient = "Sin nombre"

const numberPrefix = "HMGO"

// Summary is the flat record persisted for every generated quote. It is never
// modified once appended.
type Summary struct {
	ID            string          `json:"id"`
	Number        string          `json:"number"`
	CreatedAt     time.Time       `json:"createdAt"`
	ClientName    string          `json:"clientName"`
	ClientTotal   decimal.Decimal `json:"clientTotal"`
	NetProfit     decimal.Decimal `json:"netProfit"`
	MarginPercent decimal.Decimal `json:"marginPercent"`
	ItemCount     int             `json:"itemCount"`
	Policy        pricing.Policy  `json:"policy"`
}

// Project reduces a computed quote plus client metadata into a Summary.
func Project(q pricing.Quote, clientName string, margin decimal.Decimal, now time.Time) Summary {
	name := strings.TrimSpace(clientName)
	if name == "" {
		name = UnnamedClient
	}
	return Summary{
		ID:            uuid.New().String(),
		Number:        QuoteNumber(now),
		CreatedAt:     now,
		ClientName:    name,
		ClientTotal:   q.Totals.ClientTotal,
		NetProfit:     q.Totals.NetProfit,
		MarginPercent: margin,
		ItemCount:     q.ItemCount,
		Policy:        q.Policy,
	}
}

// QuoteNumber builds the quote folio from the last five digits of the millisecond clock.
func QuoteNumber(now time.Time) string {
	ms := strconv.FormatInt(now.UnixMilli(), 10)
	if len(ms) > 5 {
		ms = ms[len(ms)-5:]
	}
	return numberPrefix + ms
}
