// Package tabular is a small column-oriented table used to carry raw
// provider extracts through the pipeline. Cells are strings because
// scraped data is stringly typed; numeric coercion happens at the edge,
// once, via AsInt/AsFloat.
package tabular

import (
	"strconv"
	"strings"
)

// Table holds an ordered header and string cell rows. The zero value is
// not useful; construct with New.
type Table struct {
	cols []string
	rows [][]string
}

func New(cols ...string) *Table {
	out := &Table{cols: make([]string, len(cols))}
	copy(out.cols, cols)
	return out
}

func (t *Table) Columns() []string {
	if t == nil {
		return nil
	}
	return t.cols
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// IsEmpty reports whether the table carries no data rows. A nil table is
// empty, which is how a failed extract travels through the pipeline.
func (t *Table) IsEmpty() bool {
	return t == nil || len(t.rows) == 0
}

// AppendRow adds one row, padding or truncating to the header width so a
// short provider row never corrupts column alignment.
func (t *Table) AppendRow(cells ...string) {
	row := make([]string, len(t.cols))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

func (t *Table) Rows() [][]string {
	if t == nil {
		return nil
	}
	return t.rows
}

// ColumnIndex returns the position of the first column with the given
// name, or -1. Lookup is case-insensitive because providers drift between
// casings of the same label.
func (t *Table) ColumnIndex(name string) int {
	if t == nil {
		return -1
	}
	for i, col := range t.cols {
		if strings.EqualFold(col, name) {
			return i
		}
	}
	return -1
}

// PickColumn returns the first candidate name present in the table, in
// candidate priority order.
func (t *Table) PickColumn(candidates ...string) (string, bool) {
	for _, c := range candidates {
		if t.ColumnIndex(c) >= 0 {
			return c, true
		}
	}
	return "", false
}

func (t *Table) Cell(row int, col string) string {
	idx := t.ColumnIndex(col)
	if idx < 0 || row < 0 || row >= len(t.rows) {
		return ""
	}
	return t.rows[row][idx]
}

// AddConst sets every row's value for the named column, creating the
// column when absent. Used to stamp provenance (source, league_code,
// season) onto an extract before accumulation.
func (t *Table) AddConst(name, value string) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		t.cols = append(t.cols, name)
		idx = len(t.cols) - 1
		for i := range t.rows {
			t.rows[i] = append(t.rows[i], "")
		}
	}
	for i := range t.rows {
		t.rows[i][idx] = value
	}
}

// DedupColumns drops repeated column labels keeping the first occurrence,
// in original order. Providers occasionally repeat a header when two
// sub-tables share a label.
func (t *Table) DedupColumns() *Table {
	if t == nil {
		return nil
	}
	keep := make([]int, 0, len(t.cols))
	seen := make(map[string]bool, len(t.cols))
	for i, col := range t.cols {
		key := strings.ToLower(col)
		if seen[key] {
			continue
		}
		seen[key] = true
		keep = append(keep, i)
	}
	if len(keep) == len(t.cols) {
		return t
	}

	out := &Table{cols: make([]string, len(keep))}
	for i, idx := range keep {
		out.cols[i] = t.cols[idx]
	}
	out.rows = make([][]string, len(t.rows))
	for r, row := range t.rows {
		next := make([]string, len(keep))
		for i, idx := range keep {
			next[i] = row[idx]
		}
		out.rows[r] = next
	}
	return out
}

// Append merges another table into this one by column-name union: columns
// missing on either side are filled with empty cells. Row order is
// preserved, appended table last.
func (t *Table) Append(other *Table) {
	if other.IsEmpty() {
		return
	}
	for _, col := range other.cols {
		if t.ColumnIndex(col) < 0 {
			t.AddConst(col, "")
		}
	}
	for _, row := range other.rows {
		next := make([]string, len(t.cols))
		for i, col := range t.cols {
			if idx := other.ColumnIndex(col); idx >= 0 {
				next[i] = row[idx]
			}
		}
		t.rows = append(t.rows, next)
	}
}

// FlattenHeader collapses a multi-level header into single labels by
// joining the non-empty levels of each column with sep.
func FlattenHeader(levels [][]string, sep string) []string {
	width := 0
	for _, level := range levels {
		if len(level) > width {
			width = len(level)
		}
	}

	out := make([]string, width)
	for i := 0; i < width; i++ {
		parts := make([]string, 0, len(levels))
		for _, level := range levels {
			if i >= len(level) {
				continue
			}
			if part := strings.TrimSpace(level[i]); part != "" {
				parts = append(parts, part)
			}
		}
		out[i] = strings.Join(parts, sep)
	}
	return out
}

// AsInt coerces a cell to an integer, tolerating thousands separators and
// decimal renderings of whole numbers. Unparseable input is zero, never an
// error: downstream arithmetic must not see nulls.
func AsInt(s string) int {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

// AsFloat coerces a cell to a float, zero on failure.
func AsFloat(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return 0
}
