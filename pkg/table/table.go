// Package table holds the in-memory form of delimiter-separated text: a header
// of column names followed by data rows, in source order.
package table

// DefaultSeparator is used when no separator is given.
const DefaultSeparator = ","

// TruncationMarker is appended to cells cut down to the maximum cell length.
const TruncationMarker = "..."

// ColumnName is a single header cell. Its identity is its position in the header.
type ColumnName struct {
	Name string
}

// Row is one data line. Line is the 1-based position of the line among the
// non-blank lines of the source, so the first data row after the header is 2.
type Row struct {
	Values []string
	Line   int
}

// Table is a parsed header plus its data rows.
//
// Rows are not required to have as many values as there are columns: short
// lines are left short and long lines keep their extra values.
type Table struct {
	Separator string
	Columns   []ColumnName
	Rows      []Row
}

// ColumnCount returns the number of header columns.
func (t *Table) ColumnCount() int {
	if t == nil {
		return 0
	}
	return len(t.Columns)
}

// RowCount returns the number of data rows.
func (t *Table) RowCount() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Width returns the widest of the header and every row.
func (t *Table) Width() int {
	if t == nil {
		return 0
	}
	width := len(t.Columns)
	for _, row := range t.Rows {
		if len(row.Values) > width {
			width = len(row.Values)
		}
	}
	return width
}

// Header returns the column names as plain strings.
func (t *Table) Header() []string {
	if t == nil {
		return nil
	}
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return names
}

// Cell returns the value at (row, col). Positions past the end of a ragged
// row, or outside the table, read as the empty string.
func (t *Table) Cell(row, col int) string {
	if t == nil || row < 0 || row >= len(t.Rows) || col < 0 {
		return ""
	}
	values := t.Rows[row].Values
	if col >= len(values) {
		return ""
	}
	return values[col]
}

// Records returns the header followed by every row's values.
func (t *Table) Records() [][]string {
	if t == nil {
		return nil
	}
	records := make([][]string, 0, len(t.Rows)+1)
	records = append(records, t.Header())
	for _, row := range t.Rows {
		values := make([]string, len(row.Values))
		copy(values, row.Values)
		records = append(records, values)
	}
	return records
}

// Equal reports whether two tables have the same separator, columns and rows.
func (t *Table) Equal(other *Table) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.Separator != other.Separator || len(t.Columns) != len(other.Columns) || len(t.Rows) != len(other.Rows) {
		return false
	}
	for i := range t.Columns {
		if t.Columns[i] != other.Columns[i] {
			return false
		}
	}
	for i := range t.Rows {
		a, b := t.Rows[i], other.Rows[i]
		if a.Line != b.Line || len(a.Values) != len(b.Values) {
			return false
		}
		for j := range a.Values {
			if a.Values[j] != b.Values[j] {
				return false
			}
		}
	}
	return true
}
