package database

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTableColumns(t *testing.T) {
	db := setupSQLite(t, "inspector_columns")

	err := db.Exec("CREATE TABLE test_items (id INTEGER PRIMARY KEY, name TEXT NOT NULL, description TEXT)").Error
	require.NoError(t, err)

	columns, err := GetTableColumns(context.Background(), db, "test_items")
	require.NoError(t, err)
	require.Len(t, columns, 3)

	assert.Equal(t, ColumnInfo{Field: "id", Type: "integer", Nullable: false}, columns[0])
	assert.Equal(t, ColumnInfo{Field: "name", Type: "text", Nullable: false}, columns[1])
	assert.Equal(t, ColumnInfo{Field: "description", Type: "text", Nullable: true}, columns[2])

	// PRAGMA table_info returns an empty result for a missing table
	cols, err := GetTableColumns(context.Background(), db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}

func TestGetTableColumns_MySQL(t *testing.T) {
	db, mock := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
		AddRow("ID", "INT(11)", "NO", "PRI", nil, "auto_increment").
		AddRow("name", "varchar(70)", "YES", "", nil, "")
	mock.ExpectQuery("SHOW COLUMNS FROM `people`").WillReturnRows(rows)

	cols, err := GetTableColumns(context.Background(), db, "people")
	require.NoError(t, err)
	assert.Equal(t, []ColumnInfo{
		{Field: "id", Type: "int(11)", Nullable: false},
		{Field: "name", Type: "varchar(70)", Nullable: true},
	}, cols)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReader_Describe(t *testing.T) {
	db := setupSQLite(t, "inspector_describe")
	require.NoError(t, db.Exec("CREATE TABLE t (id INTEGER, label TEXT)").Error)

	desc, err := NewReader(db).Describe(context.Background(), "t")
	require.NoError(t, err)
	assert.Equal(t, []string{"field", "type", "nullable"}, desc.Columns)
	assert.Equal(t, []any{"id", "label"}, desc.Column("field"))
}
