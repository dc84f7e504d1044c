package model

import (
	"time"

	"github.com/shopspring/decimal"
)

var pipFactor = decimal.NewFromInt(10000)

// PriceTime is a single price observation. It is a value type and is never
// modified after construction.
type PriceTime struct {
	Price decimal.Decimal
	Time  time.Time
}

// Pips converts a price difference into pips, rounded half-to-even to one
// decimal place (a tenth of a pip).
func Pips(delta decimal.Decimal) decimal.Decimal {
	return delta.Mul(pipFactor).RoundBank(1)
}

// PipsFrom returns the movement from ref to p in pips.
func (p PriceTime) PipsFrom(ref PriceTime) decimal.Decimal {
	return Pips(p.Price.Sub(ref.Price))
}

// After reports whether p was observed strictly later than ref.
func (p PriceTime) After(ref PriceTime) bool {
	return p.Time.After(ref.Time)
}

// Date returns the calendar date of the observation.
func (p PriceTime) Date() time.Time {
	return DateOf(p.Time)
}
