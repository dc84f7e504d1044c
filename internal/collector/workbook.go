package collector

import (
	"fmt"
	"strconv"
	"strings"

	"PipSentinel/internal/model"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ReadDailyWorkbook parses daily OHLC bars from the first sheet of an xlsx
// file. Price columns are located by header text, so both plain "Open" and
// quoted "GBP/USD(Open, Bid)*" headings work. Rows with an empty date are skipped.
func ReadDailyWorkbook(path string) ([]model.Bar, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	cols, err := locateColumns(rows[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var bars []model.Bar
	for i, row := range rows[1:] {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		b, err := dailyBar(row, cols)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		bars = append(bars, b)
	}
	return bars, nil
}

// locateColumns maps Open, High, Low, Close to their column index. The date
// is always the first column.
func locateColumns(header []string) (map[model.Field]int, error) {
	cols := map[model.Field]int{}
	for i, h := range header {
		if i == 0 {
			continue
		}
		lower := strings.ToLower(h)
		for _, f := range model.Fields {
			if _, done := cols[f]; !done && strings.Contains(lower, strings.ToLower(string(f))) {
				cols[f] = i
				break
			}
		}
	}
	for _, f := range model.Fields {
		if _, ok := cols[f]; !ok {
			return nil, fmt.Errorf("no %s column in header %v", f, header)
		}
	}
	return cols, nil
}

func dailyBar(row []string, cols map[model.Field]int) (model.Bar, error) {
	var b model.Bar
	raw := strings.TrimSpace(row[0])
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return b, fmt.Errorf("date %q: %w", raw, err)
		}
		b.Time = model.DateOf(t)
	} else {
		t, err := parseDate(raw)
		if err != nil {
			return b, err
		}
		b.Time = t
	}

	prices := map[model.Field]*decimal.Decimal{
		model.FieldOpen: &b.Open, model.FieldHigh: &b.High,
		model.FieldLow: &b.Low, model.FieldClose: &b.Close,
	}
	for f, dst := range prices {
		i := cols[f]
		if i >= len(row) {
			return b, fmt.Errorf("missing %s", f)
		}
		v, err := decimal.NewFromString(strings.TrimSpace(row[i]))
		if err != nil {
			return b, fmt.Errorf("%s %q: %w", f, row[i], err)
		}
		*dst = v
	}
	return b, nil
}
