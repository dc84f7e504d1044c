// Package report assembles per-day analytics into a single date-indexed table
// whose columns are keyed by (group label, metric name).
package report

import (
	"sort"
	"time"

	"PipSentinel/internal/model"
)

// Column identifies a table column by its group label and metric name.
type Column struct {
	Group  string
	Metric string
}

// Table is a sparse wide table. Rows are calendar dates; a cell that was never
// set is empty. Column order is the order columns were first added.
type Table struct {
	columns []Column
	known   map[Column]bool
	rows    map[time.Time]map[Column]any
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{known: map[Column]bool{}, rows: map[time.Time]map[Column]any{}}
}

// AddColumn appends c unless it already exists.
func (t *Table) AddColumn(c Column) {
	if t.known[c] {
		return
	}
	t.known[c] = true
	t.columns = append(t.columns, c)
}

// Set stores v in the cell at (date, c), adding the column if needed.
func (t *Table) Set(date time.Time, c Column, v any) {
	t.AddColumn(c)
	date = model.DateOf(date)
	row, ok := t.rows[date]
	if !ok {
		row = map[Column]any{}
		t.rows[date] = row
	}
	row[c] = v
}

// Get returns the cell at (date, c).
func (t *Table) Get(date time.Time, c Column) (any, bool) {
	v, ok := t.rows[model.DateOf(date)][c]
	return v, ok
}

// Columns returns the columns in display order.
func (t *Table) Columns() []Column {
	return append([]Column(nil), t.columns...)
}

// Groups returns the distinct group labels in display order.
func (t *Table) Groups() []string {
	var out []string
	seen := map[string]bool{}
	for _, c := range t.columns {
		if !seen[c.Group] {
			seen[c.Group] = true
			out = append(out, c.Group)
		}
	}
	return out
}

// Dates returns every row date, oldest first.
func (t *Table) Dates() []time.Time {
	out := make([]time.Time, 0, len(t.rows))
	for d := range t.rows {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Join outer-joins o into t on date. Columns of o are appended after those of t;
// a cell present in both keeps o's value.
func (t *Table) Join(o *Table) *Table {
	if o == nil {
		return t
	}
	for _, c := range o.columns {
		t.AddColumn(c)
	}
	for d, row := range o.rows {
		for c, v := range row {
			t.Set(d, c, v)
		}
	}
	return t
}
