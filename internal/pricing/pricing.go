package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Policy selects how internal extras reach the client price.
type Policy string

const (
	// PolicyItemized folds all extras into the subtotal, spread evenly per line, and
	// lets the discount apply to them.
	PolicyItemized Policy = "A"
	// PolicyLumpSum adds installation and scaffolding once, keeps commission internal
	// and ignores the discount.
	PolicyLumpSum Policy = "B"
)

// ParsePolicy accepts "A"/"B" (case-insensitive) and the aliases "itemized"/"lump-sum".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "a", "itemized":
		return PolicyItemized, nil
	case "b", "lump-sum", "lumpsum":
		return PolicyLumpSum, nil
	}
	return "", fmt.Errorf("unknown pricing policy %q", s)
}

// Breakdown contains all intermediate values of a quote, unrounded.
type Breakdown struct {
	ItemSubtotal      decimal.Decimal `json:"itemSubtotal"`
	FactoryCostTotal  decimal.Decimal `json:"factoryCostTotal"`
	InstallationTotal decimal.Decimal `json:"installationTotal"`
	ScaffoldingTotal  decimal.Decimal `json:"scaffoldingTotal"`
	CommissionTotal   decimal.Decimal `json:"commissionTotal"`
	ExtrasTotal       decimal.Decimal `json:"extrasTotal"`
	ClientSubtotal    decimal.Decimal `json:"clientSubtotal"`
	DiscountPercent   decimal.Decimal `json:"discountPercent"`
	DiscountAmount    decimal.Decimal `json:"discountAmount"`
	TravelExpense     decimal.Decimal `json:"travelExpense"`
	// ExtraPerItem is the hidden amount added to every visible unit price: extras per
	// line under policy A, installation+scaffolding per unit of quantity under policy B.
	ExtraPerItem decimal.Decimal `json:"extraPerItem"`
}

// Totals contains the two figures a quote exists to produce.
type Totals struct {
	ClientTotal decimal.Decimal `json:"clientTotal"`
	NetProfit   decimal.Decimal `json:"netProfit"`
}

// Quote is the result of Compute.
type Quote struct {
	Policy        Policy    `json:"policy"`
	ItemCount     int       `json:"itemCount"`
	TotalQuantity int64     `json:"totalQuantity"`
	Breakdown     Breakdown `json:"breakdown"`
	Totals        Totals    `json:"totals"`
}

// VisibleLine is one row of the client-facing document.
type VisibleLine struct {
	Item      LineItem        `json:"item"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// Compute prices items under adj and policy. It is pure: same inputs, same output.
// An empty or unknown policy prices as PolicyItemized.
func Compute(items []LineItem, adj AdjustmentSet, policy Policy) Quote {
	var subtotal, factory decimal.Decimal
	for _, it := range items {
		qty := decimal.NewFromInt(int64(it.Quantity))
		subtotal = subtotal.Add(it.EffectiveUnitPrice().Mul(qty))
		factory = factory.Add(it.SupplierCost.Mul(qty))
	}

	b := Breakdown{
		ItemSubtotal:      subtotal,
		FactoryCostTotal:  factory,
		InstallationTotal: adj.Installation.Total(),
		ScaffoldingTotal:  adj.Scaffolding.Total(),
		CommissionTotal:   adj.Commission.Total(),
		TravelExpense:     adj.TravelExpense,
	}
	b.ExtrasTotal = b.InstallationTotal.Add(b.ScaffoldingTotal).Add(b.CommissionTotal)

	q := Quote{
		Policy:        policy,
		ItemCount:     len(items),
		TotalQuantity: totalQuantity(items),
	}

	switch policy {
	case PolicyLumpSum:
		hidden := b.InstallationTotal.Add(b.ScaffoldingTotal)
		b.ExtraPerItem = share(hidden, q.TotalQuantity)
		b.ClientSubtotal = subtotal.Add(hidden)
		q.Totals.ClientTotal = b.ClientSubtotal.Add(b.TravelExpense)
		costs := factory.Add(hidden).Add(b.TravelExpense).Add(b.CommissionTotal)
		q.Totals.NetProfit = q.Totals.ClientTotal.Sub(costs)
	default:
		q.Policy = PolicyItemized
		b.ExtraPerItem = share(b.ExtrasTotal, int64(len(items)))
		b.ClientSubtotal = subtotal.Add(b.ExtrasTotal)
		b.DiscountPercent = adj.DiscountPercent
		b.DiscountAmount = Percent(b.ClientSubtotal, adj.DiscountPercent)
		q.Totals.ClientTotal = b.ClientSubtotal.Sub(b.DiscountAmount).Add(b.TravelExpense)
		q.Totals.NetProfit = subtotal.Sub(factory).Sub(b.DiscountAmount)
	}

	q.Breakdown = b
	return q
}

// share divides amount by n, defining the share as zero when n is zero.
func share(amount decimal.Decimal, n int64) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return amount.Div(decimal.NewFromInt(n))
}

// VisibleUnitPrice is the unit price shown to the client, with the hidden extras embedded.
func (q Quote) VisibleUnitPrice(it LineItem) decimal.Decimal {
	return it.EffectiveUnitPrice().Add(q.Breakdown.ExtraPerItem)
}

// VisibleLines projects items into client-facing rows, in input order. Line totals
// always add up to ClientSubtotal: under PolicyItemized each line carries its extras
// share once, regardless of quantity.
func (q Quote) VisibleLines(items []LineItem) []VisibleLine {
	lines := make([]VisibleLine, 0, len(items))
	for _, it := range items {
		qty := decimal.NewFromInt(int64(it.Quantity))
		unit := q.VisibleUnitPrice(it)
		total := unit.Mul(qty)
		if q.Policy != PolicyLumpSum {
			total = it.EffectiveUnitPrice().Mul(qty).Add(q.Breakdown.ExtraPerItem)
		}
		lines = append(lines, VisibleLine{
			Item:      it,
			UnitPrice: unit,
			LineTotal: total,
		})
	}
	return lines
}

// RealCosts is everything the business spends to deliver the quote, travel included.
func (q Quote) RealCosts() decimal.Decimal {
	b := q.Breakdown
	return b.FactoryCostTotal.
		Add(b.InstallationTotal).
		Add(b.ScaffoldingTotal).
		Add(b.CommissionTotal).
		Add(b.TravelExpense)
}
