package database

import (
	"context"
	"fmt"

	"lakehouse-utils/core/table"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"gorm.io/gorm"
)

// TableMutator applies reconciliation actions to a SQL table.
type TableMutator struct {
	db      *gorm.DB
	table   string
	dialect goqu.DialectWrapper
}

// NewTableMutator creates a mutator writing to the named table.
func NewTableMutator(db *gorm.DB, tableName string) *TableMutator {
	return &TableMutator{db: db, table: tableName, dialect: Dialect(db)}
}

// Insert adds one row.
func (m *TableMutator) Insert(ctx context.Context, values table.Row) error {
	return m.InsertBatch(ctx, []table.Row{values})
}

// InsertBatch adds all rows in a single statement. Rows must share one column set.
func (m *TableMutator) InsertBatch(ctx context.Context, rows []table.Row) error {
	if len(rows) == 0 {
		return nil
	}
	records := make([]any, len(rows))
	for i, r := range rows {
		records[i] = goqu.Record(r)
	}

	query, args, err := m.dialect.Insert(m.table).Prepared(true).Rows(records...).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build insert for %s: %w", m.table, err)
	}
	return m.exec(ctx, query, args)
}

// Update overwrites the given columns of the row matching key.
func (m *TableMutator) Update(ctx context.Context, key, values table.Row) error {
	if len(values) == 0 {
		return nil
	}
	query, args, err := m.dialect.Update(m.table).Prepared(true).
		Set(goqu.Record(values)).
		Where(goqu.Ex(key)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build update for %s: %w", m.table, err)
	}
	return m.exec(ctx, query, args)
}

// Delete removes the row matching key.
func (m *TableMutator) Delete(ctx context.Context, key table.Row) error {
	return m.DeleteBatch(ctx, []table.Row{key})
}

// DeleteBatch removes every row matching one of the keys.
func (m *TableMutator) DeleteBatch(ctx context.Context, keys []table.Row) error {
	if len(keys) == 0 {
		return nil
	}
	conds := make([]exp.Expression, len(keys))
	for i, k := range keys {
		conds[i] = goqu.Ex(k)
	}

	query, args, err := m.dialect.Delete(m.table).Prepared(true).Where(goqu.Or(conds...)).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build delete for %s: %w", m.table, err)
	}
	return m.exec(ctx, query, args)
}

func (m *TableMutator) exec(ctx context.Context, query string, args []any) error {
	if m.db == nil {
		return fmt.Errorf("database connection not configured")
	}
	// Statements carry dialect placeholders already, so bypass gorm's rebinding
	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if _, err := sqlDB.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to write %s: %w", m.table, err)
	}
	return nil
}
