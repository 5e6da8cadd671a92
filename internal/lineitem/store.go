// Package lineitem holds the ordered working set of items on the quote being built.
package lineitem

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/cotizador/internal/pricing"
)

var (
	ErrNotFound        = errors.New("line item not found")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrInvalidPrice    = errors.New("sale price must be >= 0")
)

// Store keeps line items in insertion order. It is not safe for concurrent use;
// callers that share a Store must serialise access themselves.
type Store struct {
	items []pricing.LineItem
	newID func() string
}

func NewStore() *Store {
	return &Store{newID: func() string { return uuid.New().String() }}
}

// Add snapshots margin into a new line item built from f and appends it.
func (s *Store) Add(f pricing.FactoryItem, margin decimal.Decimal) pricing.LineItem {
	it := pricing.NewLineItem(s.newID(), f, margin)
	s.items = append(s.items, it)
	return it
}

// AddAll adds every factory item in order with the same margin.
func (s *Store) AddAll(fs []pricing.FactoryItem, margin decimal.Decimal) []pricing.LineItem {
	added := make([]pricing.LineItem, 0, len(fs))
	for _, f := range fs {
		added = append(added, s.Add(f, margin))
	}
	return added
}

func (s *Store) SetQuantity(id string, q int) (pricing.LineItem, error) {
	if q < 1 {
		return pricing.LineItem{}, fmt.Errorf("%w: got %d", ErrInvalidQuantity, q)
	}
	return s.update(id, func(it pricing.LineItem) pricing.LineItem {
		return it.WithQuantity(q)
	})
}

// Override sets a manual sale price. Supplier cost and suggested price are left untouched.
func (s *Store) Override(id string, price decimal.Decimal) (pricing.LineItem, error) {
	if price.IsNegative() {
		return pricing.LineItem{}, fmt.Errorf("%w: got %s", ErrInvalidPrice, price)
	}
	return s.update(id, func(it pricing.LineItem) pricing.LineItem {
		return it.WithOverride(price)
	})
}

// ClearOverride reverts the item to its suggested price.
func (s *Store) ClearOverride(id string) (pricing.LineItem, error) {
	return s.update(id, pricing.LineItem.WithoutOverride)
}

func (s *Store) Remove(id string) error {
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("remove %q: %w", id, ErrNotFound)
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

func (s *Store) Get(id string) (pricing.LineItem, error) {
	i := s.index(id)
	if i < 0 {
		return pricing.LineItem{}, fmt.Errorf("get %q: %w", id, ErrNotFound)
	}
	return s.items[i], nil
}

// Items returns a copy of the working set in insertion order.
func (s *Store) Items() []pricing.LineItem {
	out := make([]pricing.LineItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Len() int {
	return len(s.items)
}

func (s *Store) Reset() {
	s.items = nil
}

func (s *Store) update(id string, fn func(pricing.LineItem) pricing.LineItem) (pricing.LineItem, error) {
	i := s.index(id)
	if i < 0 {
		return pricing.LineItem{}, fmt.Errorf("update %q: %w", id, ErrNotFound)
	}
	s.items[i] = fn(s.items[i])
	return s.items[i], nil
}

func (s *Store) index(id string) int {
	for i, it := range s.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
