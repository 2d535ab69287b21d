package reconcile

import (
	"fmt"
	"slices"

	"lakehouse-utils/core/table"
)

const (
	snapshotNew      = "new"
	snapshotHistoric = "historic"
)

// Reconcile compares a new snapshot against a historic snapshot on the given key and
// classifies every row as created, updated, deleted or unchanged.
//
// Matched rows are compared column by column with table.Equal, so a value and its
// representation in another type (int64(1) vs float64(1)) count as a change.
// Output rows are copies; the inputs are never modified.
func Reconcile(newSnapshot, historic *table.Table, key []string, opts Options) (*Result, error) {
	if newSnapshot == nil || historic == nil {
		return nil, fmt.Errorf("%w: snapshot is nil", ErrSchemaMismatch)
	}

	compared, err := validate(newSnapshot, historic, key)
	if err != nil {
		return nil, err
	}

	newIndex, err := indexRows(newSnapshot, key, snapshotNew)
	if err != nil {
		return nil, err
	}
	historicIndex, err := indexRows(historic, key, snapshotHistoric)
	if err != nil {
		return nil, err
	}

	old := oldColumns(compared)
	full := concat(key, compared, []string{ColumnChangedColumns, ColumnTypeOfChange}, old)

	result := &Result{
		ToCreate: table.New(full...),
		ToDelete: table.New(full...),
		Key:      slices.Clone(key),
		Compared: compared,
	}

	// Rows only in the new snapshot, in new-snapshot order
	for _, row := range newSnapshot.Rows {
		if _, ok := historicIndex[table.KeyOf(row, key)]; ok {
			continue
		}
		result.ToCreate.AppendRow(paddedRow(row, key, compared, ChangeCreate))
	}

	// Rows only in the historic snapshot, in historic-snapshot order
	for _, row := range historic.Rows {
		if _, ok := newIndex[table.KeyOf(row, key)]; ok {
			continue
		}
		result.ToDelete.AppendRow(paddedRow(row, key, compared, ChangeDelete))
	}

	keepColumns := concat(key, compared, []string{ColumnChangedColumns, ColumnTypeOfChange})
	updateColumns := concat(key, compared, []string{ColumnTypeOfChange})
	if opts.IncludeChangedColumns {
		updateColumns = full
	}

	toUpdate := table.New(updateColumns...)
	toKeep := table.New(keepColumns...)
	matched := 0

	// Inner join in new-snapshot order
	for _, newRow := range newSnapshot.Rows {
		idx, ok := historicIndex[table.KeyOf(newRow, key)]
		if !ok {
			continue
		}
		matched++
		oldRow := historic.Rows[idx].Clone()

		changed := changedColumns(newRow, oldRow, compared)
		if len(changed) == 0 {
			out := projectRow(newRow, key, compared)
			out[ColumnChangedColumns] = nil
			out[ColumnTypeOfChange] = string(ChangeNone)
			toKeep.AppendRow(out)
			continue
		}

		out := projectRow(newRow, key, compared)
		out[ColumnTypeOfChange] = string(ChangeUpdate)
		if opts.IncludeChangedColumns {
			for _, col := range compared {
				out[OldPrefix+col] = oldRow[col]
			}
			out[ColumnChangedColumns] = changed
		}
		toUpdate.AppendRow(out)
	}

	if matched == 0 {
		// Keep a stable schema for consumers even without overlapping keys
		toUpdate = table.New(full...)
		toKeep = table.New(full...)
	}

	result.ToUpdate = toUpdate
	result.ToKeep = toKeep

	return result, nil
}

// validate checks the key against both snapshots and returns the compared columns.
func validate(newSnapshot, historic *table.Table, key []string) ([]string, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("%w: key is empty", ErrSchemaMismatch)
	}

	seen := make(map[string]struct{}, len(key))
	for _, col := range key {
		if _, dup := seen[col]; dup {
			return nil, fmt.Errorf("%w: key column %q listed twice", ErrSchemaMismatch, col)
		}
		seen[col] = struct{}{}
	}

	if missing := newSnapshot.MissingColumns(key...); len(missing) > 0 {
		return nil, fmt.Errorf("%w: key columns %v missing from %s snapshot", ErrSchemaMismatch, missing, snapshotNew)
	}
	if missing := historic.MissingColumns(key...); len(missing) > 0 {
		return nil, fmt.Errorf("%w: key columns %v missing from %s snapshot", ErrSchemaMismatch, missing, snapshotHistoric)
	}

	compared := nonKeyColumns(newSnapshot.Columns, key)
	historicCompared := nonKeyColumns(historic.Columns, key)

	onlyNew := difference(compared, historicCompared)
	onlyHistoric := difference(historicCompared, compared)
	if len(onlyNew) > 0 || len(onlyHistoric) > 0 {
		return nil, fmt.Errorf("%w: columns only in %s snapshot %v, only in %s snapshot %v",
			ErrSchemaMismatch, snapshotNew, onlyNew, snapshotHistoric, onlyHistoric)
	}

	reserved := map[string]struct{}{
		ColumnChangedColumns: {},
		ColumnTypeOfChange:   {},
	}
	for _, col := range compared {
		reserved[OldPrefix+col] = struct{}{}
	}
	for _, col := range concat(key, compared) {
		if _, clash := reserved[col]; clash {
			return nil, fmt.Errorf("%w: column %q clashes with a generated output column", ErrSchemaMismatch, col)
		}
	}

	return compared, nil
}

// indexRows maps every encoded key to its row index and rejects duplicates.
func indexRows(t *table.Table, key []string, name string) (map[string]int, error) {
	index := make(map[string]int, len(t.Rows))
	for i, row := range t.Rows {
		k := table.KeyOf(row, key)
		if first, dup := index[k]; dup {
			return nil, fmt.Errorf("%w: %s snapshot rows %d and %d share key (%s)",
				ErrAmbiguousKey, name, first, i, table.FormatKey(row, key))
		}
		index[k] = i
	}
	return index, nil
}

// changedColumns returns the compared columns whose values differ, in column order.
func changedColumns(newRow, oldRow table.Row, compared []string) []string {
	var changed []string
	for _, col := range compared {
		if !table.Equal(newRow[col], oldRow[col]) {
			changed = append(changed, col)
		}
	}
	return changed
}

// projectRow copies the key and compared columns of a row.
func projectRow(row table.Row, key, compared []string) table.Row {
	out := make(table.Row, len(key)+len(compared)*2+2)
	src := row.Clone()
	for _, col := range key {
		out[col] = src[col]
	}
	for _, col := range compared {
		out[col] = src[col]
	}
	return out
}

// paddedRow builds a create/delete row with null change metadata and null old_ values.
func paddedRow(row table.Row, key, compared []string, change ChangeType) table.Row {
	out := projectRow(row, key, compared)
	out[ColumnChangedColumns] = nil
	out[ColumnTypeOfChange] = string(change)
	for _, col := range compared {
		out[OldPrefix+col] = nil
	}
	return out
}

func nonKeyColumns(columns, key []string) []string {
	out := make([]string, 0, len(columns))
	for _, c := range columns {
		if !slices.Contains(key, c) {
			out = append(out, c)
		}
	}
	return out
}

func oldColumns(columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = OldPrefix + c
	}
	return out
}

// difference returns the elements of a not present in b, in a's order.
func difference(a, b []string) []string {
	var out []string
	for _, x := range a {
		if !slices.Contains(b, x) {
			out = append(out, x)
		}
	}
	return out
}

func concat(parts ...[]string) []string {
	var n int
	for _, p := range parts {
		n += len(p)
	}
	out := make([]string, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
