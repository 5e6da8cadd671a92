package lineitem

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/cotizador/internal/pricing"
)

func factory(cost string, desc string) pricing.FactoryItem {
	return pricing.FactoryItem{
		ID:           "f-" + desc,
		SupplierCost: decimal.RequireFromString(cost),
		Details:      pricing.Details{Description: desc},
	}
}

func TestAddAssignsUniqueIDsAndKeepsOrder(t *testing.T) {
	s := NewStore()
	margin := decimal.NewFromInt(30)

	added := s.AddAll([]pricing.FactoryItem{
		factory("100", "sala"),
		factory("200", "comedor"),
		factory("300", "recamara"),
	}, margin)

	if s.Len() != 3 || len(added) != 3 {
		t.Fatalf("expected 3 items, got store=%d added=%d", s.Len(), len(added))
	}

	seen := map[string]bool{}
	for i, it := range s.Items() {
		if it.ID == "" || seen[it.ID] {
			t.Fatalf("item %d has empty or duplicate id %q", i, it.ID)
		}
		seen[it.ID] = true
		if it.ID != added[i].ID {
			t.Fatalf("order mismatch at %d", i)
		}
	}
	if got := s.Items()[1].Description; got != "comedor" {
		t.Fatalf("second item = %q, want comedor", got)
	}
}

func TestMarginChangeDoesNotTouchExistingItems(t *testing.T) {
	s := NewStore()
	first := s.Add(factory("1000", "a"), decimal.NewFromInt(30))
	s.Add(factory("1000", "b"), decimal.NewFromInt(50))

	got, err := s.Get(first.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.SuggestedSalePrice.Equal(decimal.NewFromInt(1300)) {
		t.Fatalf("suggested = %s, want 1300", got.SuggestedSalePrice)
	}
}

func TestSetQuantity(t *testing.T) {
	s := NewStore()
	it := s.Add(factory("100", "a"), decimal.Zero)

	updated, err := s.SetQuantity(it.ID, 4)
	if err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}
	if updated.Quantity != 4 {
		t.Fatalf("quantity = %d, want 4", updated.Quantity)
	}

	for _, q := range []int{0, -2} {
		if _, err := s.SetQuantity(it.ID, q); !errors.Is(err, ErrInvalidQuantity) {
			t.Fatalf("SetQuantity(%d) error = %v, want ErrInvalidQuantity", q, err)
		}
	}
	if got, _ := s.Get(it.ID); got.Quantity != 4 {
		t.Fatalf("rejected update changed quantity to %d", got.Quantity)
	}
}

func TestOverrideAndClear(t *testing.T) {
	s := NewStore()
	it := s.Add(factory("1000", "a"), decimal.NewFromInt(30))

	over, err := s.Override(it.ID, decimal.NewFromInt(1450))
	if err != nil {
		t.Fatalf("Override: %v", err)
	}
	if !over.Price.IsOverridden() || !over.EffectiveUnitPrice().Equal(decimal.NewFromInt(1450)) {
		t.Fatalf("unexpected override state: %+v", over.Price)
	}
	if !over.SupplierCost.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("override changed supplier cost to %s", over.SupplierCost)
	}

	cleared, err := s.ClearOverride(it.ID)
	if err != nil {
		t.Fatalf("ClearOverride: %v", err)
	}
	if cleared.Price.IsOverridden() || !cleared.EffectiveUnitPrice().Equal(decimal.NewFromInt(1300)) {
		t.Fatalf("clear did not restore suggested price: %+v", cleared.Price)
	}

	if _, err := s.Override(it.ID, decimal.NewFromInt(-1)); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("negative override error = %v, want ErrInvalidPrice", err)
	}
}

func TestUnknownIDReturnsNotFound(t *testing.T) {
	s := NewStore()
	s.Add(factory("100", "a"), decimal.Zero)

	checks := map[string]error{}
	_, checks["Get"] = s.Get("nope")
	_, checks["SetQuantity"] = s.SetQuantity("nope", 2)
	_, checks["Override"] = s.Override("nope", decimal.NewFromInt(5))
	_, checks["ClearOverride"] = s.ClearOverride("nope")
	checks["Remove"] = s.Remove("nope")

	for op, err := range checks {
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("%s error = %v, want ErrNotFound", op, err)
		}
	}
}

func TestRemoveAndReset(t *testing.T) {
	s := NewStore()
	a := s.Add(factory("100", "a"), decimal.Zero)
	b := s.Add(factory("200", "b"), decimal.Zero)
	c := s.Add(factory("300", "c"), decimal.Zero)

	if err := s.Remove(b.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	items := s.Items()
	if len(items) != 2 || items[0].ID != a.ID || items[1].ID != c.ID {
		t.Fatalf("unexpected items after remove: %+v", items)
	}

	s.Reset()
	if s.Len() != 0 {
		t.Fatalf("Len after Reset = %d", s.Len())
	}
}

func TestItemsReturnsCopy(t *testing.T) {
	s := NewStore()
	it := s.Add(factory("100", "a"), decimal.Zero)

	items := s.Items()
	items[0].Quantity = 99

	got, _ := s.Get(it.ID)
	if got.Quantity != 1 {
		t.Fatalf("mutating Items() leaked into store: quantity=%d", got.Quantity)
	}
}
