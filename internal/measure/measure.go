// Package measure records the on-site survey of windows that precedes a factory pre-quote.
package measure

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidMeasurement = errors.New("invalid measurement")
	ErrNotFound           = errors.New("measurement not found")
)

const (
	MechanismRight = "Derecho"
	MechanismLeft  = "Izquierdo"
)

// Measurement is one surveyed opening. Width and height are in meters.
type Measurement struct {
	ID         string          `json:"id"`
	No         int             `json:"no"`
	Width      decimal.Decimal `json:"width"`
	Height     decimal.Decimal `json:"height"`
	Area       decimal.Decimal `json:"area"`
	BlindType  string          `json:"blindType"`
	FabricType string          `json:"fabricType,omitempty"`
	FabricName string          `json:"fabricName,omitempty"`
	Color      string          `json:"color,omitempty"`
	Mechanism  string          `json:"mechanism"`
	Location   string          `json:"location,omitempty"`
}

// Area returns width*height rounded to 2 decimals, the value recorded on the sheet.
func Area(width, height decimal.Decimal) decimal.Decimal {
	return width.Mul(height).Round(2)
}

// Sheet is the ordered list of measurements for one visit. Numbers are 1-based and
// always contiguous.
type Sheet struct {
	rows []Measurement
}

// Add validates m, stamps its ID, number and area, and appends it.
func (s *Sheet) Add(m Measurement) (Measurement, error) {
	m.BlindType = strings.TrimSpace(m.BlindType)
	if m.BlindType == "" {
		return Measurement{}, fmt.Errorf("%w: blind type is required", ErrInvalidMeasurement)
	}
	if !m.Width.IsPositive() {
		return Measurement{}, fmt.Errorf("%w: width must be > 0", ErrInvalidMeasurement)
	}
	if !m.Height.IsPositive() {
		return Measurement{}, fmt.Errorf("%w: height must be > 0", ErrInvalidMeasurement)
	}
	if m.Mechanism == "" {
		m.Mechanism = MechanismRight
	}

	m.ID = uuid.New().String()
	m.No = len(s.rows) + 1
	m.Area = Area(m.Width, m.Height)
	s.rows = append(s.rows, m)
	return m, nil
}

// Remove deletes a measurement and renumbers the rest.
func (s *Sheet) Remove(id string) error {
	for i, m := range s.rows {
		if m.ID != id {
			continue
		}
		s.rows = append(s.rows[:i], s.rows[i+1:]...)
		for j := range s.rows {
			s.rows[j].No = j + 1
		}
		return nil
	}
	return fmt.Errorf("remove measurement %q: %w", id, ErrNotFound)
}

func (s *Sheet) All() []Measurement {
	out := make([]Measurement, len(s.rows))
	copy(out, s.rows)
	return out
}

func (s *Sheet) Len() int { return len(s.rows) }

// TotalArea sums the recorded areas.
func (s *Sheet) TotalArea() decimal.Decimal {
	total := decimal.Zero
	for _, m := range s.rows {
		total = total.Add(m.Area)
	}
	return total
}

func (s *Sheet) Reset() { s.rows = nil }
