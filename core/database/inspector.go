package database

import (
	"context"
	"fmt"
	"strings"

	"lakehouse-utils/core/table"

	"gorm.io/gorm"
)

// ColumnInfo describes one column of a database table.
type ColumnInfo struct {
	Field    string
	Type     string
	Nullable bool
}

// GetTableColumns retrieves the column definitions for a given table.
// Names and types are lowercased.
func GetTableColumns(ctx context.Context, db *gorm.DB, tableName string) ([]ColumnInfo, error) {
	var columns []ColumnInfo

	switch db.Dialector.Name() {
	case "sqlite":
		type sqliteColumn struct {
			Cid        int
			Name       string
			Type       string
			Notnull    int
			DefaultVal *string
			Pk         int
		}
		var cols []sqliteColumn
		if err := db.WithContext(ctx).Raw(fmt.Sprintf("PRAGMA table_info('%s')", escapeLiteral(tableName))).Scan(&cols).Error; err != nil {
			return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
		}
		for _, col := range cols {
			columns = append(columns, ColumnInfo{Field: col.Name, Type: col.Type, Nullable: col.Notnull == 0 && col.Pk == 0})
		}

	case "postgres":
		type pgColumn struct {
			ColumnName string
			DataType   string
			IsNullable string
		}
		var cols []pgColumn
		err := db.WithContext(ctx).Raw(
			"SELECT column_name, data_type, is_nullable FROM information_schema.columns WHERE table_name = ? ORDER BY ordinal_position",
			tableName,
		).Scan(&cols).Error
		if err != nil {
			return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
		}
		for _, col := range cols {
			columns = append(columns, ColumnInfo{Field: col.ColumnName, Type: col.DataType, Nullable: col.IsNullable == "YES"})
		}

	default:
		type mysqlColumn struct {
			Field   string
			Type    string
			Null    string
			Key     string
			Default *string
			Extra   string
		}
		var cols []mysqlColumn
		if err := db.WithContext(ctx).Raw(fmt.Sprintf("SHOW COLUMNS FROM `%s`", strings.ReplaceAll(tableName, "`", "``"))).Scan(&cols).Error; err != nil {
			return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
		}
		for _, col := range cols {
			columns = append(columns, ColumnInfo{Field: col.Field, Type: col.Type, Nullable: col.Null == "YES"})
		}
	}

	for i := range columns {
		columns[i].Field = strings.ToLower(columns[i].Field)
		columns[i].Type = strings.ToLower(columns[i].Type)
	}
	return columns, nil
}

// Describe returns the column definitions of a table as a table with the columns
// field, type and nullable.
func (r *Reader) Describe(ctx context.Context, name string) (*table.Table, error) {
	cols, err := GetTableColumns(ctx, r.db, name)
	if err != nil {
		return nil, err
	}
	out := table.New("field", "type", "nullable")
	for _, c := range cols {
		out.Append(c.Field, c.Type, c.Nullable)
	}
	return out, nil
}

func escapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
