package calculator

import (
	"time"

	"PipSentinel/internal/model"

	"github.com/shopspring/decimal"
)

// PeriodAverages groups the bars inside section by date and returns, per date,
// the mean close rounded to 5 places and the times of the lowest and highest
// close. Under ties the later minute wins. bars must be chronological.
func PeriodAverages(bars []model.Bar, section model.DayWindow) []model.PeriodAverage {
	var (
		out      []model.PeriodAverage
		cur      *model.PeriodAverage
		sum      decimal.Decimal
		n        int64
		low, hi  decimal.Decimal
		curStart time.Time
	)
	closeDay := func() {
		if cur == nil {
			return
		}
		cur.Mean = sum.Div(decimal.NewFromInt(n)).RoundBank(5)
		out = append(out, *cur)
	}
	for _, b := range bars {
		if !section.Contains(b.Time) {
			continue
		}
		date := model.DateOf(b.Time)
		if cur == nil || !date.Equal(curStart) {
			closeDay()
			curStart = date
			cur = &model.PeriodAverage{Date: date}
			sum, n = decimal.Zero, 0
			low, hi = b.Close, b.Close
			cur.TimeOfMin = model.TimeOfDayOf(b.Time)
			cur.TimeOfMax = cur.TimeOfMin
		}
		sum = sum.Add(b.Close)
		n++
		if b.Close.LessThanOrEqual(low) {
			low, cur.TimeOfMin = b.Close, model.TimeOfDayOf(b.Time)
		}
		if b.Close.GreaterThanOrEqual(hi) {
			hi, cur.TimeOfMax = b.Close, model.TimeOfDayOf(b.Time)
		}
	}
	closeDay()
	return out
}

// DailyFromMinutes aggregates chronological minute bars into one bar per date:
// first open, highest high, lowest low, last close.
func DailyFromMinutes(bars []model.Bar) []model.Bar {
	var out []model.Bar
	for _, b := range bars {
		date := model.DateOf(b.Time)
		if len(out) == 0 || !out[len(out)-1].Time.Equal(date) {
			out = append(out, model.Bar{Time: date, Open: b.Open, High: b.High, Low: b.Low, Close: b.Close})
			continue
		}
		d := &out[len(out)-1]
		if b.High.GreaterThan(d.High) {
			d.High = b.High
		}
		if b.Low.LessThan(d.Low) {
			d.Low = b.Low
		}
		d.Close = b.Close
	}
	return out
}
