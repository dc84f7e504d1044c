package model

import "github.com/shopspring/decimal"

// Position is the long/short classification of a day's exit price against a benchmark.
type Position string

const (
	PositionLong  Position = "LONG"
	PositionShort Position = "SHORT"
	PositionPar   Position = "PAR"
)

// Classify compares exit with the benchmark price.
func Classify(benchmark, exit decimal.Decimal) Position {
	switch exit.Cmp(benchmark) {
	case 1:
		return PositionLong
	case -1:
		return PositionShort
	default:
		return PositionPar
	}
}
