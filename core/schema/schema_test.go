package schema

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"lakehouse-utils/core/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lakehouseTable() *table.Table {
	t := table.New("positionNumber", "is_opportunity_post", "date_start_effective", "project_code", "untouched")
	t.Append(1.0, true, "2026-01-01", "ABC123", "a")
	t.Append(2.0, false, "not a date", nil, 1.5)
	t.Append(math.NaN(), nil, nil, "DEF456", nil)
	t.Append(math.Inf(1), true, "2026-01-03", "GHI789", "d")
	t.Append(math.Inf(-1), false, "2026-01-04", math.NaN(), "e")
	return t
}

func lakehouseSchema() Schema {
	return Schema{
		"positionNumber":       Int64,
		"is_opportunity_post":  Boolean,
		"date_start_effective": Datetime,
		"project_code":         "str",
	}
}

func TestEnforce_Lakehouse(t *testing.T) {
	in := lakehouseTable()

	out, err := Enforce(in, lakehouseSchema())
	require.NoError(t, err)

	assert.Equal(t, []any{int64(1), int64(2), nil, nil, nil}, out.Column("positionNumber"))
	assert.Equal(t, []any{true, false, nil, true, false}, out.Column("is_opportunity_post"))

	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), out.Value(0, "date_start_effective"))
	assert.Nil(t, out.Value(1, "date_start_effective"))
	assert.Nil(t, out.Value(2, "date_start_effective"))

	assert.Equal(t, []any{"ABC123", nil, "DEF456", "GHI789", nil}, out.Column("project_code"))
	assert.Equal(t, in.Column("untouched"), out.Column("untouched"))
	assert.Equal(t, in.Columns, out.Columns)
}

func TestEnforce_IntegerColumnNeverKeepsNonFinite(t *testing.T) {
	in := table.New("n")
	for _, v := range []any{math.NaN(), math.Inf(1), math.Inf(-1), 3.0, "4", "x", 2.5, float32(7)} {
		in.Append(v)
	}

	out, err := Enforce(in, Schema{"n": Int64})
	require.NoError(t, err)
	require.Equal(t, in.Len(), out.Len())

	for i, v := range out.Column("n") {
		if v == nil {
			continue
		}
		_, isInt := v.(int64)
		assert.True(t, isInt, "row %d holds %T", i, v)
	}
	assert.Equal(t, []any{nil, nil, nil, int64(3), int64(4), nil, nil, int64(7)}, out.Column("n"))
}

func TestEnforce_DoesNotMutateInput(t *testing.T) {
	in := lakehouseTable()

	_, err := Enforce(in, lakehouseSchema())
	require.NoError(t, err)

	assert.Equal(t, 1.0, in.Value(0, "positionNumber"))
	assert.Equal(t, "2026-01-01", in.Value(0, "date_start_effective"))
}

func TestEnforce_Errors(t *testing.T) {
	in := lakehouseTable()

	_, err := Enforce(in, Schema{"ghost": Int64, "positionNumber": Int64})
	assert.True(t, errors.Is(err, ErrMissingColumn))
	assert.Contains(t, err.Error(), "ghost")

	_, err = Enforce(in, Schema{"positionNumber": "complex128"})
	assert.True(t, errors.Is(err, ErrUnknownType))

	_, err = Enforce(nil, Schema{})
	assert.True(t, errors.Is(err, ErrMissingColumn))
}

func TestParseType(t *testing.T) {
	for name, want := range map[string]Type{
		"Int64":          Int64,
		"int":            Int64,
		"BOOLEAN":        Boolean,
		"datetime64[ns]": Datetime,
		"str":            String,
		" string ":       String,
	} {
		got, err := ParseType(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseType("decimal")
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestLoadSchema(t *testing.T) {
	dir := t.TempDir()

	files := map[string]string{
		"flat.yaml":    "positionNumber: Int64\nproject_code: str\n",
		"wrapped.yaml": "schema:\n  positionNumber: Int64\n  project_code: str\n",
		"flat.json":    `{"positionNumber": "Int64", "project_code": "str"}`,
		"wrapped.toml": "[schema]\npositionNumber = \"Int64\"\nproject_code = \"str\"\n",
		"flat.toml":    "positionNumber = \"Int64\"\nproject_code = \"str\"\n",
	}

	want := Schema{"positionNumber": Int64, "project_code": String}

	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			got, err := LoadSchema(path)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestLoadSchema_MissingFile(t *testing.T) {
	_, err := LoadSchema(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
