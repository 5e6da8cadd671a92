package pricing

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Details holds the descriptive attributes of a quoted piece. Pricing never reads them.
type Details struct {
	Description string `json:"description"`
	Measures    string `json:"measures,omitempty"`
	Location    string `json:"location,omitempty"`
	BlindType   string `json:"blindType,omitempty"`
	FabricType  string `json:"fabricType,omitempty"`
	FabricName  string `json:"fabricName,omitempty"`
	Color       string `json:"color,omitempty"`
	Mechanism   string `json:"mechanism,omitempty"`
}

// FactoryItem is one priced row of a supplier price list.
type FactoryItem struct {
	ID           string          `json:"id"`
	SupplierCost decimal.Decimal `json:"supplierCost"`
	Details
}

// PriceKind tells whether a sale price was derived from the margin or typed in by hand.
type PriceKind int

const (
	Computed PriceKind = iota
	Overridden
)

func (k PriceKind) String() string {
	if k == Overridden {
		return "overridden"
	}
	return "computed"
}

// SalePrice is the unit price an item is sold at, tagged with its origin.
type SalePrice struct {
	kind  PriceKind
	value decimal.Decimal
}

// ComputedPrice wraps a price derived from supplier cost and margin.
func ComputedPrice(v decimal.Decimal) SalePrice {
	return SalePrice{kind: Computed, value: v}
}

// OverriddenPrice wraps a manual sale price.
func OverriddenPrice(v decimal.Decimal) SalePrice {
	return SalePrice{kind: Overridden, value: v}
}

func (p SalePrice) Kind() PriceKind        { return p.kind }
func (p SalePrice) Value() decimal.Decimal { return p.value }
func (p SalePrice) IsOverridden() bool     { return p.kind == Overridden }

func (p SalePrice) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind  string          `json:"kind"`
		Value decimal.Decimal `json:"value"`
	}{p.kind.String(), p.value})
}

// LineItem is one quoted piece. SupplierCost and SuggestedSalePrice are fixed at creation.
type LineItem struct {
	ID                 string          `json:"id"`
	SupplierCost       decimal.Decimal `json:"supplierCost"`
	SuggestedSalePrice decimal.Decimal `json:"suggestedSalePrice"`
	Price              SalePrice       `json:"price"`
	Quantity           int             `json:"quantity"`
	Details
}

// SuggestedPrice returns cost * (1 + marginPercent/100).
func SuggestedPrice(cost, marginPercent decimal.Decimal) decimal.Decimal {
	return cost.Mul(one.Add(marginPercent.Div(hundred)))
}

// NewLineItem snapshots the margin into the item's suggested price. Later margin
// changes do not reach items created earlier.
func NewLineItem(id string, f FactoryItem, marginPercent decimal.Decimal) LineItem {
	suggested := SuggestedPrice(f.SupplierCost, marginPercent)
	return LineItem{
		ID:                 id,
		SupplierCost:       f.SupplierCost,
		SuggestedSalePrice: suggested,
		Price:              ComputedPrice(suggested),
		Quantity:           1,
		Details:            f.Details,
	}
}

// EffectiveUnitPrice is the manual price when overridden, else the suggested price.
func (it LineItem) EffectiveUnitPrice() decimal.Decimal {
	return it.Price.Value()
}

func (it LineItem) WithOverride(price decimal.Decimal) LineItem {
	it.Price = OverriddenPrice(price)
	return it
}

func (it LineItem) WithoutOverride() LineItem {
	it.Price = ComputedPrice(it.SuggestedSalePrice)
	return it
}

func (it LineItem) WithQuantity(q int) LineItem {
	it.Quantity = q
	return it
}
