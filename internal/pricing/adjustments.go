package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidAdjustment is returned by Validate for negative amounts or an out-of-range discount.
var ErrInvalidAdjustment = errors.New("invalid adjustment")

// Extra is an internal cost, either quantity x unit cost or a flat amount.
type Extra struct {
	Quantity int64            `json:"quantity"`
	UnitCost decimal.Decimal  `json:"unitCost"`
	Flat     *decimal.Decimal `json:"flat,omitempty"`
}

func PerUnit(quantity int64, unitCost decimal.Decimal) Extra {
	return Extra{Quantity: quantity, UnitCost: unitCost}
}

func FlatAmount(amount decimal.Decimal) Extra {
	return Extra{Flat: &amount}
}

// Total is the flat amount if set, otherwise quantity * unit cost.
func (e Extra) Total() decimal.Decimal {
	if e.Flat != nil {
		return *e.Flat
	}
	return e.UnitCost.Mul(decimal.NewFromInt(e.Quantity))
}

func (e Extra) validate(field string) error {
	if e.Flat != nil {
		if e.Flat.IsNegative() {
			return fmt.Errorf("%w: %s must be >= 0", ErrInvalidAdjustment, field)
		}
		return nil
	}
	if e.Quantity < 0 {
		return fmt.Errorf("%w: %s quantity must be >= 0", ErrInvalidAdjustment, field)
	}
	if e.UnitCost.IsNegative() {
		return fmt.Errorf("%w: %s unit cost must be >= 0", ErrInvalidAdjustment, field)
	}
	return nil
}

// AdjustmentSet groups the global margin, the internal extras and the client-visible adjustments.
type AdjustmentSet struct {
	MarginPercent   decimal.Decimal `json:"marginPercent"`
	Installation    Extra           `json:"installation"`
	Scaffolding     Extra           `json:"scaffolding"`
	Commission      Extra           `json:"commission"`
	TravelExpense   decimal.Decimal `json:"travelExpense"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
}

// Validate checks the ranges Compute assumes. Compute itself never clamps.
func (a AdjustmentSet) Validate() error {
	if a.MarginPercent.IsNegative() {
		return fmt.Errorf("%w: marginPercent must be >= 0", ErrInvalidAdjustment)
	}
	if err := a.Installation.validate("installation"); err != nil {
		return err
	}
	if err := a.Scaffolding.validate("scaffolding"); err != nil {
		return err
	}
	if err := a.Commission.validate("commission"); err != nil {
		return err
	}
	if a.TravelExpense.IsNegative() {
		return fmt.Errorf("%w: travelExpense must be >= 0", ErrInvalidAdjustment)
	}
	if a.DiscountPercent.IsNegative() || a.DiscountPercent.GreaterThan(hundred) {
		return fmt.Errorf("%w: discountPercent must be between 0 and 100", ErrInvalidAdjustment)
	}
	return nil
}

// InstallationPerPiece charges costPerPiece for every unit across all items.
func InstallationPerPiece(items []LineItem, costPerPiece decimal.Decimal) Extra {
	return PerUnit(totalQuantity(items), costPerPiece)
}

func totalQuantity(items []LineItem) int64 {
	var n int64
	for _, it := range items {
		n += int64(it.Quantity)
	}
	return n
}
