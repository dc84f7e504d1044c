package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Bar represents a single OHLC candlestick, either one minute or one day wide.
type Bar struct {
	Time  time.Time
	Open  decimal.Decimal
	High  decimal.Decimal
	Low   decimal.Decimal
	Close decimal.Decimal
}

// Field names one of the four prices of a bar.
type Field string

const (
	FieldOpen  Field = "Open"
	FieldHigh  Field = "High"
	FieldLow   Field = "Low"
	FieldClose Field = "Close"
)

// Fields lists the bar fields in their conventional order.
var Fields = []Field{FieldOpen, FieldHigh, FieldLow, FieldClose}

// ParseField accepts a field name as written in config files.
func ParseField(s string) (Field, error) {
	for _, f := range Fields {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown price field %q", s)
}

// Price returns the value of field f.
func (b Bar) Price(f Field) decimal.Decimal {
	switch f {
	case FieldOpen:
		return b.Open
	case FieldHigh:
		return b.High
	case FieldLow:
		return b.Low
	default:
		return b.Close
	}
}

// Fix is one day's fixing rate. Valid is false where the source holds no
// finite value, typically a trading holiday.
type Fix struct {
	Date  time.Time
	Price decimal.Decimal
	Valid bool
}

// DateOf truncates t to midnight UTC of its calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FixIdentifier converts a pair name such as GBPUSD into the column name used
// by fixing-rate files (GBP-USD).
func FixIdentifier(pair string) string {
	if len(pair) != 6 {
		return pair
	}
	return pair[:3] + "-" + pair[3:]
}
