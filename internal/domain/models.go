package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// --- Enums & Constants ---

type Direction string

const (
	DirectionRise Direction = "RISE"
	DirectionDrop Direction = "DROP"
)

var hundred = decimal.NewFromInt(100)

// ClassifyDirection - zero change counts as a rise.
func ClassifyDirection(diffPercent decimal.Decimal) Direction {
	if diffPercent.IsNegative() {
		return DirectionDrop
	}
	return DirectionRise
}

// Label returns the direction as it appears in notification text.
func (d Direction) Label() string {
	switch d {
	case DirectionDrop:
		return "📉 DROP"
	default:
		return "📈 RISE"
	}
}

// --- Value Objects ---

// PriceChange - result of comparing the current price with the stored baseline
type PriceChange struct {
	Previous    decimal.Decimal
	Current     decimal.Decimal
	DiffPercent decimal.Decimal // (current - previous) / previous * 100
	Direction   Direction
}

// ComputeChange compares current against last. The baseline must be positive.
func ComputeChange(last, current decimal.Decimal) (PriceChange, error) {
	if !last.IsPositive() {
		return PriceChange{}, fmt.Errorf("%w: baseline %s", ErrInvalidPrice, last.String())
	}

	diff := current.Sub(last).Div(last).Mul(hundred)

	return PriceChange{
		Previous:    last,
		Current:     current,
		DiffPercent: diff,
		Direction:   ClassifyDirection(diff),
	}, nil
}
