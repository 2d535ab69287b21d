package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader_SelectSQL(t *testing.T) {
	db, _ := setupMockDB(t)
	r := NewReader(db)

	query, err := r.SelectSQL("people", "")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM `people`", query)

	query, err = r.SelectSQL("people", " status = 'active' ")
	require.NoError(t, err)
	assert.Contains(t, query, "SELECT * FROM `people` WHERE")
	assert.Contains(t, query, "status = 'active'")
}

func TestReader_ReadTable_MySQL(t *testing.T) {
	db, mock := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"id", "name", "score"}).
		AddRow(int64(1), []byte("Alice"), 9.5).
		AddRow(int64(2), "Bob", nil)
	mock.ExpectQuery("SELECT \\* FROM `people` WHERE .*status = 'active'").WillReturnRows(rows)

	got, err := NewReader(db).ReadTable(context.Background(), "people", "status = 'active'")
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name", "score"}, got.Columns)
	assert.Equal(t, []any{int64(1), int64(2)}, got.Column("id"))
	assert.Equal(t, []any{"Alice", "Bob"}, got.Column("name"))
	assert.Equal(t, 9.5, got.Value(0, "score"))
	assert.Nil(t, got.Value(1, "score"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReader_ReadTable_Error(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("SELECT \\* FROM `missing`").WillReturnError(errors.New("table does not exist"))

	got, err := NewReader(db).ReadTable(context.Background(), "missing", "")
	assert.Nil(t, got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestReader_ReadTables_PartialFailure(t *testing.T) {
	db := setupSQLite(t, "reader_tables")
	require.NoError(t, db.Exec("CREATE TABLE a (id INTEGER, v TEXT)").Error)
	require.NoError(t, db.Exec("INSERT INTO a (id, v) VALUES (1, 'x'), (2, 'y')").Error)

	got, err := NewReader(db).ReadTables(context.Background(), []string{"a", "ghost"}, "id > 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")

	require.Contains(t, got, "a")
	assert.NotContains(t, got, "ghost")
	assert.Equal(t, []any{int64(2)}, got["a"].Column("id"))
	assert.Equal(t, []any{"y"}, got["a"].Column("v"))
}

func TestReader_Query_SQLite(t *testing.T) {
	db := setupSQLite(t, "reader_query")
	require.NoError(t, db.Exec("CREATE TABLE m (k TEXT, amount REAL)").Error)
	require.NoError(t, db.Exec("INSERT INTO m (k, amount) VALUES ('a', 1.5), ('b', NULL)").Error)

	got, err := NewReader(db).Query(context.Background(), "SELECT k, amount FROM m WHERE k = ?", "a")
	require.NoError(t, err)
	require.Equal(t, 1, got.Len())
	assert.Equal(t, "a", got.Value(0, "k"))
	assert.Equal(t, 1.5, got.Value(0, "amount"))
}

func TestReader_NoConnection(t *testing.T) {
	_, err := (&Reader{}).Query(context.Background(), "SELECT 1")
	assert.Error(t, err)
}
