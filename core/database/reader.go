package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"lakehouse-utils/core/table"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/mysql"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"gorm.io/gorm"
)

// Dialect returns the goqu dialect matching the connection's driver.
func Dialect(db *gorm.DB) goqu.DialectWrapper {
	if db == nil || db.Dialector == nil {
		return goqu.Dialect("mysql")
	}
	switch db.Dialector.Name() {
	case "postgres":
		return goqu.Dialect("postgres")
	case "sqlite":
		return goqu.Dialect("sqlite3")
	default:
		return goqu.Dialect("mysql")
	}
}

// Reader loads query results into tables.
type Reader struct {
	db      *gorm.DB
	dialect goqu.DialectWrapper
}

// NewReader creates a Reader over an open connection.
func NewReader(db *gorm.DB) *Reader {
	return &Reader{db: db, dialect: Dialect(db)}
}

// Query runs a raw SQL query and returns its rows as a table with the result's
// column order. Byte slices are returned as strings.
func (r *Reader) Query(ctx context.Context, query string, args ...any) (*table.Table, error) {
	if r.db == nil {
		return nil, fmt.Errorf("database connection not configured")
	}

	rows, err := r.db.WithContext(ctx).Raw(query, args...).Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to run query: %w", err)
	}
	defer rows.Close()

	return scanTable(rows)
}

// ReadTable reads every row of a table, optionally restricted by a raw SQL
// condition such as "status = 'active'".
func (r *Reader) ReadTable(ctx context.Context, name, filter string) (*table.Table, error) {
	query, err := r.SelectSQL(name, filter)
	if err != nil {
		return nil, err
	}

	t, err := r.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", name, err)
	}
	return t, nil
}

// SelectSQL builds the statement ReadTable runs.
func (r *Reader) SelectSQL(name, filter string) (string, error) {
	ds := r.dialect.From(goqu.T(name)).Select(goqu.Star())
	if f := strings.TrimSpace(filter); f != "" {
		ds = ds.Where(goqu.L(f))
	}

	query, _, err := ds.ToSQL()
	if err != nil {
		return "", fmt.Errorf("failed to build query for %s: %w", name, err)
	}
	return query, nil
}

// ReadTables reads several tables with the same filter. It returns every table it
// could read together with a joined error naming the ones that failed.
func (r *Reader) ReadTables(ctx context.Context, names []string, filter string) (map[string]*table.Table, error) {
	out := make(map[string]*table.Table, len(names))
	var errs []error
	for _, name := range names {
		t, err := r.ReadTable(ctx, name, filter)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out[name] = t
	}
	return out, errors.Join(errs...)
}

func scanTable(rows *sql.Rows) (*table.Table, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	out := table.New(cols...)
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row := make(table.Row, len(cols))
		for i, c := range cols {
			row[c] = normalizeValue(values[i])
		}
		out.AppendRow(row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return out, nil
}

func normalizeValue(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case float32:
		return float64(x)
	default:
		return v
	}
}
