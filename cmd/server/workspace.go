package main

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/cotizador/internal/lineitem"
	"github.com/Simplici0/cotizador/internal/measure"
	"github.com/Simplici0/cotizador/internal/pricing"
	"github.com/Simplici0/cotizador/internal/settings"
)

// workspace is the single quote being built. Every field is guarded by mu.
type workspace struct {
	mu sync.Mutex

	clientName string
	notes      string
	margin     decimal.Decimal
	policy     pricing.Policy

	adj                 pricing.AdjustmentSet
	autoInstallation    bool
	installCostPerPiece decimal.Decimal

	factory []pricing.FactoryItem
	items   *lineitem.Store
	sheet   measure.Sheet

	// lastNumber is the folio of the most recent generated quote; documents reuse it.
	lastNumber string
}

func newWorkspace(defaults settings.Settings) *workspace {
	w := &workspace{items: lineitem.NewStore()}
	w.reset(defaults)
	return w
}

// reset starts a new quote from defaults. Caller holds mu, except during construction.
func (w *workspace) reset(defaults settings.Settings) {
	w.clientName = ""
	w.notes = ""
	w.margin = defaults.DefaultMarginPercent
	w.policy = defaults.Policy
	w.adj = pricing.AdjustmentSet{}
	w.autoInstallation = defaults.AutoInstallation
	w.installCostPerPiece = defaults.InstallationCostPerPiece
	w.factory = nil
	w.items.Reset()
	w.sheet.Reset()
	w.lastNumber = ""
}

// adjustments returns the set Compute sees: the workspace margin, plus installation
// per piece when auto installation is on. Caller holds mu.
func (w *workspace) adjustments(items []pricing.LineItem) pricing.AdjustmentSet {
	adj := w.adj
	adj.MarginPercent = w.margin
	if w.autoInstallation {
		adj.Installation = pricing.InstallationPerPiece(items, w.installCostPerPiece)
	}
	return adj
}

// compute prices the current items. Caller holds mu.
func (w *workspace) compute() (pricing.Quote, []pricing.LineItem) {
	items := w.items.Items()
	return pricing.Compute(items, w.adjustments(items), w.policy), items
}

func (w *workspace) findFactory(id string) (pricing.FactoryItem, bool) {
	for _, f := range w.factory {
		if f.ID == id {
			return f, true
		}
	}
	return pricing.FactoryItem{}, false
}
