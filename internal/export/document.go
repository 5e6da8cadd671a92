// Package export renders client quotes and factory pre-quotes as PDF and XLSX.
// Renderers only read their inputs.
package export

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/cotizador/internal/measure"
	"github.com/Simplici0/cotizador/internal/pricing"
)

const (
	BusinessName = "HOME MY GOD QUERETARO"
	ValidityDays = 15
)

// QuoteDocument is everything the client-facing quote shows.
type QuoteDocument struct {
	Number     string
	Date       time.Time
	ClientName string
	Notes      string
	Quote      pricing.Quote
	Lines      []pricing.VisibleLine
}

// NewQuoteDocument projects items through q into client-visible lines.
func NewQuoteDocument(number, clientName, notes string, date time.Time, items []pricing.LineItem, q pricing.Quote) QuoteDocument {
	return QuoteDocument{
		Number:     number,
		Date:       date,
		ClientName: clientName,
		Notes:      notes,
		Quote:      q,
		Lines:      q.VisibleLines(items),
	}
}

// PreQuote is the measurement list sent to the factory to request prices.
type PreQuote struct {
	ClientName   string
	Date         time.Time
	Measurements []measure.Measurement
}

var monthsES = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// FormatDate renders t as "15 de octubre de 2026".
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), monthsES[t.Month()-1], t.Year())
}

// SubtotalAfterDiscount is the client subtotal net of discount, before travel.
func (d QuoteDocument) SubtotalAfterDiscount() decimal.Decimal {
	b := d.Quote.Breakdown
	return b.ClientSubtotal.Sub(b.DiscountAmount)
}

func (d QuoteDocument) showDiscount() bool {
	return d.Quote.Policy == pricing.PolicyItemized && d.Quote.Breakdown.DiscountPercent.IsPositive()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func clientOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}

// Filename is the suggested download name for the client quote.
func (d QuoteDocument) Filename(ext string) string {
	return fmt.Sprintf("Cotizacion_%s_%s.%s", d.Number, clientOr(d.ClientName, "Cliente"), ext)
}

func (p PreQuote) Filename(ext string) string {
	return fmt.Sprintf("PreCotizacion_Fabrica_%s.%s", clientOr(p.ClientName, "Cliente"), ext)
}
