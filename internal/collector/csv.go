package collector

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"PipSentinel/internal/model"
	"PipSentinel/internal/store"

	"github.com/shopspring/decimal"
)

var dateLayouts = []string{"2006.01.02", "2006-01-02", "2006/01/02", "02.01.2006", "01/02/2006"}

var clockLayouts = []string{"15:04:05", "15:04"}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) > 10 {
		s = s[:10]
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

func parseClock(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	for _, l := range clockLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, nil
		}
	}
	return 0, fmt.Errorf("unrecognised time %q", s)
}

// parseStamp reads "02.01.2006 15:04:05" style timestamps; any suffix such
// as ".000 GMT+0000" is ignored.
func parseStamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	date, clock, ok := strings.Cut(s, " ")
	if !ok {
		return parseDate(s)
	}
	d, err := parseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	if len(clock) > 8 {
		clock = clock[:8]
	}
	c, err := parseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return d.Add(c), nil
}

func parsePrices(fields []string) (o, h, l, c decimal.Decimal, err error) {
	if len(fields) < 4 {
		return o, h, l, c, fmt.Errorf("expected 4 prices, got %d", len(fields))
	}
	vals := make([]decimal.Decimal, 4)
	for i := range vals {
		if vals[i], err = decimal.NewFromString(strings.TrimSpace(fields[i])); err != nil {
			return o, h, l, c, fmt.Errorf("price %q: %w", fields[i], err)
		}
	}
	return vals[0], vals[1], vals[2], vals[3], nil
}

// ReadMinuteCSV parses a minute candlestick file. Two layouts are accepted:
//
//	Local time,Open,High,Low,Close[,Volume]   stamps like 02.01.2006 15:04:05.000 GMT+0000
//	date,time,Open,High,Low,Close[,...]       with or without a header row
//
// Rows must be strictly increasing in time. A repeated or earlier timestamp
// fails with store.ErrDuplicateTimestamp or store.ErrOutOfOrder and its line.
func ReadMinuteCSV(r io.Reader) ([]model.Bar, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	first, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var parse func([]string) (model.Bar, error)
	splitStamp := func(rec []string) (model.Bar, error) {
		if len(rec) < 5 {
			return model.Bar{}, fmt.Errorf("expected at least 5 fields, got %d", len(rec))
		}
		t, err := parseStamp(rec[0])
		if err != nil {
			return model.Bar{}, err
		}
		o, h, l, c, err := parsePrices(rec[1:5])
		return model.Bar{Time: t, Open: o, High: h, Low: l, Close: c}, err
	}
	splitDateTime := func(rec []string) (model.Bar, error) {
		if len(rec) < 6 {
			return model.Bar{}, fmt.Errorf("expected at least 6 fields, got %d", len(rec))
		}
		d, err := parseDate(rec[0])
		if err != nil {
			return model.Bar{}, err
		}
		c, err := parseClock(rec[1])
		if err != nil {
			return model.Bar{}, err
		}
		o, h, l, cl, err := parsePrices(rec[2:6])
		return model.Bar{Time: d.Add(c), Open: o, High: h, Low: l, Close: cl}, err
	}

	var bars []model.Bar
	head := strings.ToLower(strings.TrimSpace(first[0]))
	switch {
	case strings.Contains(head, "time"):
		parse = splitStamp
	case head == "date":
		parse = splitDateTime
	default:
		// headerless: the first record is data
		if b, err := splitDateTime(first); err == nil {
			parse = splitDateTime
			bars = append(bars, b)
		} else if b, err := splitStamp(first); err == nil {
			parse = splitStamp
			bars = append(bars, b)
		} else {
			return nil, fmt.Errorf("unrecognised minute layout starting %q", strings.Join(first, ","))
		}
	}

	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		b, err := parse(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if n := len(bars); n > 0 {
			switch prev := bars[n-1].Time; {
			case b.Time.Equal(prev):
				return nil, fmt.Errorf("line %d: %w: %s", line, store.ErrDuplicateTimestamp, b.Time.Format(time.DateTime))
			case b.Time.Before(prev):
				return nil, fmt.Errorf("line %d: %w: %s follows %s", line, store.ErrOutOfOrder,
					b.Time.Format(time.DateTime), prev.Format(time.DateTime))
			}
		}
		bars = append(bars, b)
	}
	return bars, nil
}

var missingValues = map[string]bool{"": true, "nan": true, "#n/a": true, "n/a": true, "null": true}

// ReadFixCSV parses a fixing-rate file with a date column followed by one
// column per pair identifier (GBP-USD) and returns the column for pair.
// Blank and NaN cells are returned as invalid fixes.
func ReadFixCSV(r io.Reader, pair string) ([]model.Fix, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := -1
	for i, h := range header {
		h = strings.TrimSpace(h)
		if i > 0 && (h == model.FixIdentifier(pair) || strings.EqualFold(h, pair)) {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("no fix column for %s (%s)", pair, model.FixIdentifier(pair))
	}

	var fixes []model.Fix
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		d, err := parseDate(rec[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		f := model.Fix{Date: d}
		if col < len(rec) {
			v := strings.TrimSpace(rec[col])
			if !missingValues[strings.ToLower(v)] {
				p, err := decimal.NewFromString(v)
				if err != nil {
					return nil, fmt.Errorf("line %d: fix %q: %w", line, v, err)
				}
				f.Price, f.Valid = p, true
			}
		}
		fixes = append(fixes, f)
	}
	return fixes, nil
}
