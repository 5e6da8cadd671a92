// Package notify forwards a summary of every generated quote to the business
// spreadsheet. Delivery is best effort: failures are logged and dropped.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/cotizador/internal/pricing"
)

const unnamedClient = "Sin Nombre"

// Record is one spreadsheet row.
type Record struct {
	Date          time.Time
	Client        string
	FactoryCost   decimal.Decimal
	MarginPercent decimal.Decimal
	Installation  decimal.Decimal
	// Other is scaffolding, commission and travel together.
	Other decimal.Decimal
	Total decimal.Decimal
}

// FromQuote flattens a computed quote into a Record.
func FromQuote(q pricing.Quote, client string, margin decimal.Decimal, now time.Time) Record {
	name := strings.TrimSpace(client)
	if name == "" {
		name = unnamedClient
	}
	b := q.Breakdown
	return Record{
		Date:          now,
		Client:        name,
		FactoryCost:   b.FactoryCostTotal,
		MarginPercent: margin,
		Installation:  b.InstallationTotal,
		Other:         b.ScaffoldingTotal.Add(b.CommissionTotal).Add(b.TravelExpense),
		Total:         q.Totals.ClientTotal,
	}
}

// FormattedDate renders the date as d/m/yyyy.
func (r Record) FormattedDate() string {
	return fmt.Sprintf("%d/%d/%d", r.Date.Day(), int(r.Date.Month()), r.Date.Year())
}

// Row returns the cell values in column order.
func (r Record) Row() []interface{} {
	return []interface{}{
		r.FormattedDate(),
		r.Client,
		pricing.Round2(r.FactoryCost).InexactFloat64(),
		r.MarginPercent.InexactFloat64(),
		pricing.Round2(r.Installation).InexactFloat64(),
		pricing.Round2(r.Other).InexactFloat64(),
		pricing.Round2(r.Total).InexactFloat64(),
	}
}

// MarshalJSON emits the payload the spreadsheet script reads, with amounts as numbers.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Fecha            string      `json:"fecha"`
		Cliente          string      `json:"cliente"`
		CostoFabrica     json.Number `json:"costoFabrica"`
		MargenPorcentaje json.Number `json:"margenPorcentaje"`
		Instalacion      json.Number `json:"instalacion"`
		Otros            json.Number `json:"otros"`
		TotalFinal       json.Number `json:"totalFinal"`
	}{
		Fecha:            r.FormattedDate(),
		Cliente:          r.Client,
		CostoFabrica:     json.Number(pricing.Round2(r.FactoryCost).String()),
		MargenPorcentaje: json.Number(r.MarginPercent.String()),
		Instalacion:      json.Number(pricing.Round2(r.Installation).String()),
		Otros:            json.Number(pricing.Round2(r.Other).String()),
		TotalFinal:       json.Number(pricing.Round2(r.Total).String()),
	})
}

// Notifier delivers a record somewhere outside the process.
type Notifier interface {
	Notify(ctx context.Context, rec Record) error
}

// Nop is used when no destination is configured.
type Nop struct{}

func (Nop) Notify(context.Context, Record) error { return nil }

var _ Notifier = Nop{}

// Dispatcher sends records in the background. Each record gets one attempt
// bounded by the timeout.
type Dispatcher struct {
	notifier  Notifier
	timeout   time.Duration
	logger    *slog.Logger
	onFailure func(error)

	wg sync.WaitGroup
}

type DispatcherOption func(*Dispatcher)

// WithFailureHook registers f to run after every failed delivery.
func WithFailureHook(f func(error)) DispatcherOption {
	return func(d *Dispatcher) { d.onFailure = f }
}

func NewDispatcher(n Notifier, timeout time.Duration, logger *slog.Logger, opts ...DispatcherOption) *Dispatcher {
	if n == nil {
		n = Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	d := &Dispatcher{notifier: n, timeout: timeout, logger: logger}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch returns immediately.
func (d *Dispatcher) Dispatch(rec Record) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		start := time.Now()
		if err := d.notifier.Notify(ctx, rec); err != nil {
			d.logger.Warn("quote notification failed",
				"client", rec.Client,
				"total", pricing.Round2(rec.Total).StringFixed(2),
				"error", err,
			)
			if d.onFailure != nil {
				d.onFailure(err)
			}
			return
		}
		d.logger.Debug("quote notification sent",
			"client", rec.Client,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}()
}

// Wait blocks until every dispatched record has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
