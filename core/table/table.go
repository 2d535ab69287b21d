package table

import (
	"fmt"
	"slices"
)

// Row maps column names to scalar values. A missing entry reads as null.
type Row map[string]any

// Clone returns an independent copy of the row.
// List cells are copied too so callers can mutate them freely.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

// Table is an ordered collection of rows sharing one column set.
type Table struct {
	// Columns is the ordered list of column names.
	Columns []string

	// Rows holds the data, one map per row.
	Rows []Row
}

// New creates an empty table with the given columns.
func New(columns ...string) *Table {
	return &Table{
		Columns: slices.Clone(columns),
		Rows:    []Row{},
	}
}

// Append adds a row given positionally in column order.
// It panics when the number of values does not match the number of columns.
func (t *Table) Append(values ...any) *Table {
	if len(values) != len(t.Columns) {
		panic(fmt.Sprintf("table: append got %d values for %d columns", len(values), len(t.Columns)))
	}
	row := make(Row, len(values))
	for i, c := range t.Columns {
		row[c] = values[i]
	}
	t.Rows = append(t.Rows, row)
	return t
}

// AppendRow adds a row. Values for columns not in the table are kept but ignored by
// column-aware operations.
func (t *Table) AppendRow(row Row) {
	t.Rows = append(t.Rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// HasColumn reports whether the column exists.
func (t *Table) HasColumn(name string) bool {
	return slices.Contains(t.Columns, name)
}

// MissingColumns returns the names that are not columns of the table, in the given order.
func (t *Table) MissingColumns(names ...string) []string {
	var missing []string
	for _, n := range names {
		if !t.HasColumn(n) {
			missing = append(missing, n)
		}
	}
	return missing
}

// Column returns the values of one column in row order.
func (t *Table) Column(name string) []any {
	out := make([]any, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[name]
	}
	return out
}

// Value returns the cell at the given row index and column.
func (t *Table) Value(row int, column string) any {
	return t.Rows[row][column]
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := &Table{
		Columns: slices.Clone(t.Columns),
		Rows:    make([]Row, len(t.Rows)),
	}
	for i, r := range t.Rows {
		out.Rows[i] = r.Clone()
	}
	return out
}

// Select returns a copy of the table restricted to the given columns, in that order.
// Columns absent from the table read as null.
func (t *Table) Select(columns ...string) *Table {
	out := New(columns...)
	out.Rows = make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		nr := make(Row, len(columns))
		for _, c := range columns {
			nr[c] = cloneValue(r[c])
		}
		out.Rows[i] = nr
	}
	return out
}

// Records returns the rows as positional records in column order.
func (t *Table) Records() [][]any {
	out := make([][]any, len(t.Rows))
	for i, r := range t.Rows {
		rec := make([]any, len(t.Columns))
		for j, c := range t.Columns {
			rec[j] = r[c]
		}
		out[i] = rec
	}
	return out
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case []string:
		return slices.Clone(x)
	case []any:
		return slices.Clone(x)
	case []byte:
		return slices.Clone(x)
	default:
		return v
	}
}
