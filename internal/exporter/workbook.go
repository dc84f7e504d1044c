// Package exporter writes assembled report tables to xlsx workbooks, one per
// currency pair, under a timestamped run folder.
package exporter

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"PipSentinel/internal/model"
	"PipSentinel/internal/report"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// WorkbookWriter renders a report.Table with a two-row header: group labels
// merged across their columns, then metric names.
type WorkbookWriter struct {
	SheetName   string
	ColumnWidth float64
}

// NewWorkbookWriter creates a writer, defaulting the sheet name and width.
func NewWorkbookWriter(sheet string, width float64) *WorkbookWriter {
	if sheet == "" {
		sheet = "max_pip_mvmts"
	}
	if width <= 0 {
		width = 20
	}
	return &WorkbookWriter{SheetName: sheet, ColumnWidth: width}
}

// RunFolder returns the output folder of a run started at t.
func RunFolder(dir string, t time.Time) string {
	return filepath.Join(dir, "dataout"+t.Format("_20060102_150405"))
}

// FileName returns the workbook name of pair.
func FileName(pair string) string {
	return "dataout_" + pair + ".xlsx"
}

// Write saves tbl into folder and returns the workbook path.
func (w *WorkbookWriter) Write(folder, pair string, tbl *report.Table) (string, error) {
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", fmt.Errorf("create output folder: %w", err)
	}
	f := excelize.NewFile()
	defer f.Close()

	sheet := w.SheetName
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return "", fmt.Errorf("rename sheet: %w", err)
	}

	cols := tbl.Columns()
	if err := w.writeHeader(f, cols); err != nil {
		return "", err
	}

	for i, date := range tbl.Dates() {
		row := make([]any, 0, len(cols)+1)
		row = append(row, date.Format(time.DateOnly))
		for _, c := range cols {
			v, ok := tbl.Get(date, c)
			if !ok {
				row = append(row, nil)
				continue
			}
			row = append(row, cellValue(v))
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+3)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return "", fmt.Errorf("write row %s: %w", date.Format(time.DateOnly), err)
		}
	}

	last, _ := excelize.ColumnNumberToName(len(cols) + 1)
	if err := f.SetColWidth(sheet, "A", last, w.ColumnWidth); err != nil {
		return "", fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze: true, XSplit: 1, YSplit: 2, TopLeftCell: "B3", ActivePane: "bottomRight",
	}); err != nil {
		return "", fmt.Errorf("freeze header: %w", err)
	}

	path := filepath.Join(folder, FileName(pair))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return path, nil
}

func (w *WorkbookWriter) writeHeader(f *excelize.File, cols []report.Column) error {
	sheet := w.SheetName
	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", WrapText: true},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	if err := f.SetCellValue(sheet, "A2", "Date"); err != nil {
		return err
	}
	start := 0
	for i := range cols {
		top, _ := excelize.CoordinatesToCellName(i+2, 1)
		sub, _ := excelize.CoordinatesToCellName(i+2, 2)
		if err := f.SetCellValue(sheet, sub, cols[i].Metric); err != nil {
			return err
		}
		if i == 0 || cols[i].Group != cols[i-1].Group {
			start = i
			if err := f.SetCellValue(sheet, top, cols[i].Group); err != nil {
				return err
			}
		}
		if i == len(cols)-1 || cols[i+1].Group != cols[i].Group {
			if i > start {
				from, _ := excelize.CoordinatesToCellName(start+2, 1)
				if err := f.MergeCell(sheet, from, top); err != nil {
					return fmt.Errorf("merge group %s: %w", cols[i].Group, err)
				}
			}
		}
	}
	end, _ := excelize.CoordinatesToCellName(len(cols)+1, 2)
	return f.SetCellStyle(sheet, "A1", end, style)
}

func cellValue(v any) any {
	switch x := v.(type) {
	case decimal.Decimal:
		return x.InexactFloat64()
	case model.TimeOfDay:
		return x.String()
	case model.Position:
		return string(x)
	default:
		return x
	}
}
