package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"lakehouse-utils/core/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sample() *table.Table {
	t := table.New("id", "name", "score", "changed_columns")
	t.Append(int64(1), "Alice", 2.5, []string{"name", "score"})
	t.Append(int64(2), nil, nil, nil)
	return t
}

func sheetList(t *testing.T, path string) []string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	return f.GetSheetList()
}

func TestXLSX_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")

	require.NoError(t, WriteXLSX(path, sample(), "Report"))
	assert.Equal(t, []string{"Report"}, sheetList(t, path))

	got, err := ReadXLSX(path, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "score", "changed_columns"}, got.Columns)
	require.Equal(t, 2, got.Len())
	assert.Equal(t, table.Row{"id": "1", "name": "Alice", "score": "2.5", "changed_columns": "name,score"}, got.Rows[0])
	assert.Equal(t, "2", got.Value(1, "id"))
	assert.Nil(t, got.Value(1, "name"))
	assert.Nil(t, got.Value(1, "changed_columns"))
}

func TestWriteSheets_AutoNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "multi.xlsx")

	require.NoError(t, WriteSheets(path, []*table.Table{sample(), sample(), sample()}, nil, false))
	assert.Equal(t, []string{"Sheet1", "Sheet2", "Sheet3"}, sheetList(t, path))

	got, err := ReadXLSX(path, "Sheet3")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Len())
}

func TestWriteSheets_Validation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.xlsx")
	tables := []*table.Table{sample(), sample()}

	err := WriteSheets(path, tables, []string{"only"}, false)
	assert.ErrorIs(t, err, ErrSheetNames)

	err = WriteSheets(path, tables, []string{"same", "same"}, false)
	assert.ErrorIs(t, err, ErrSheetNames)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriteSheets_Append(t *testing.T) {
	path := filepath.Join(t.TempDir(), "append.xlsx")

	require.NoError(t, WriteSheets(path, []*table.Table{sample()}, []string{"to_create"}, true))
	require.NoError(t, WriteSheets(path, []*table.Table{sample()}, []string{"to_update"}, true))
	assert.Equal(t, []string{"to_create", "to_update"}, sheetList(t, path))

	err := WriteSheets(path, []*table.Table{sample()}, []string{"to_create"}, true)
	assert.ErrorIs(t, err, ErrSheetNames)
	assert.Equal(t, []string{"to_create", "to_update"}, sheetList(t, path))

	require.NoError(t, WriteSheets(path, []*table.Table{sample()}, []string{"fresh"}, false))
	assert.Equal(t, []string{"fresh"}, sheetList(t, path))
}

func TestWriteSpreadsheetML(t *testing.T) {
	in := table.New("id", "name", "when", "flag", "changed_columns")
	in.Append(int64(1), nil, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), true, []string{"a", "b"})

	var buf bytes.Buffer
	require.NoError(t, WriteSpreadsheetML(&buf, in, "Report"))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Contains(t, out, `xmlns="urn:schemas-microsoft-com:office:spreadsheet"`)
	assert.Contains(t, out, `<Style ss:ID="sDate">`)
	assert.Contains(t, out, `<NumberFormat ss:Format="DD/MM/YYYY"></NumberFormat>`)
	assert.Contains(t, out, `<Worksheet ss:Name="Report">`)
	assert.Contains(t, out, `<Data ss:Type="String">changed_columns</Data>`)
	assert.Contains(t, out, `<Data ss:Type="Number">1</Data>`)
	assert.Contains(t, out, `<Cell ss:Index="3" ss:StyleID="sDate">`)
	assert.Contains(t, out, `<Data ss:Type="DateTime">2026-01-02T00:00:00.000</Data>`)
	assert.Contains(t, out, `<Data ss:Type="Boolean">1</Data>`)
	assert.Contains(t, out, `<Data ss:Type="String">a,b</Data>`)
	assert.Equal(t, 2, strings.Count(out, "<Row>"))
}

func TestCSV_RoundTripWithEncoding(t *testing.T) {
	enc, err := Encoding("windows-1252")
	require.NoError(t, err)
	require.NotNil(t, enc)

	in := table.New("id", "city")
	in.Append(int64(1), "Genève")
	in.Append(int64(2), nil)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, in, enc))
	assert.Contains(t, buf.String(), "Gen\xe8ve")

	got, err := ReadCSV(&buf, enc)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "city"}, got.Columns)
	assert.Equal(t, []any{"1", "2"}, got.Column("id"))
	assert.Equal(t, []any{"Genève", nil}, got.Column("city"))
}

func TestReadCSV_Header(t *testing.T) {
	got, err := ReadCSV(strings.NewReader("a,,c\n1,2\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "column_2", "c"}, got.Columns)
	assert.Equal(t, table.Row{"a": "1", "column_2": "2", "c": nil}, got.Rows[0])

	_, err = ReadCSV(strings.NewReader("a,a\n1,2\n"), nil)
	assert.ErrorIs(t, err, ErrDuplicateHeader)

	_, err = ReadCSV(strings.NewReader(""), nil)
	assert.ErrorIs(t, err, ErrEmptySheet)
}

func TestEncoding(t *testing.T) {
	for _, name := range []string{"", "utf-8", "UTF8"} {
		enc, err := Encoding(name)
		require.NoError(t, err, name)
		assert.Nil(t, enc, name)
	}

	_, err := Encoding("klingon")
	assert.Error(t, err)
}

func TestReadXLS_Invalid(t *testing.T) {
	_, err := ReadXLS(strings.NewReader("not a workbook"), 0)
	assert.Error(t, err)
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	in := sample()

	for _, name := range []string{"out.csv", "out.json", "out.xlsx"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, WriteFile(path, in, Options{}))

			got, err := ReadFile(path, Options{})
			require.NoError(t, err)
			assert.Equal(t, in.Columns, got.Columns)
			assert.Equal(t, in.Len(), got.Len())
		})
	}

	t.Run("json keeps types", func(t *testing.T) {
		got, err := ReadFile(filepath.Join(dir, "out.json"), Options{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.Value(0, "id"))
		assert.Equal(t, []string{"name", "score"}, got.Value(0, "changed_columns"))
	})

	t.Run("xml", func(t *testing.T) {
		path := filepath.Join(dir, "out.xml")
		require.NoError(t, WriteFile(path, in, Options{Sheet: "Data"}))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `ss:Name="Data"`)
	})

	_, err := ReadFile(filepath.Join(dir, "out.parquet"), Options{})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.ErrorIs(t, WriteFile(filepath.Join(dir, "out.parquet"), in, Options{}), ErrUnsupportedFormat)
	assert.Equal(t, "xlsx", Format("/tmp/A.XLSX"))
}
