package table

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

type tableJSON struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// MarshalJSON encodes the table as {"columns": [...], "rows": [...]}.
// Every row carries every column; missing cells are written as null.
func (t Table) MarshalJSON() ([]byte, error) {
	out := tableJSON{
		Columns: t.Columns,
		Rows:    make([]map[string]any, len(t.Rows)),
	}
	if out.Columns == nil {
		out.Columns = []string{}
	}
	for i, r := range t.Rows {
		m := make(map[string]any, len(t.Columns))
		for _, c := range t.Columns {
			v := r[c]
			m[c] = jsonValue(v)
		}
		out.Rows[i] = m
	}
	return json.Marshal(out)
}

// jsonValue maps nulls to nil and writes whole floats with a fraction, so that
// decoding keeps them float64.
func jsonValue(v any) any {
	if IsNull(v) {
		return nil
	}
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	default:
		return v
	}
	if math.IsInf(f, 0) || f != math.Trunc(f) {
		return v
	}
	return json.Number(strconv.FormatFloat(f, 'f', -1, 64) + ".0")
}

// UnmarshalJSON decodes a table. When "columns" is omitted the column set is taken from
// the first row in sorted key order.
func (t *Table) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var in tableJSON
	if err := dec.Decode(&in); err != nil {
		return fmt.Errorf("failed to decode table: %w", err)
	}

	t.Columns = in.Columns
	if len(t.Columns) == 0 && len(in.Rows) > 0 {
		t.Columns = sortedKeys(in.Rows[0])
	}

	t.Rows = make([]Row, len(in.Rows))
	for i, r := range in.Rows {
		row := make(Row, len(r))
		for k, v := range r {
			row[k] = normalizeJSON(v)
		}
		t.Rows[i] = row
	}
	return nil
}

// normalizeJSON turns json.Number into int64 or float64 and string lists into []string.
func normalizeJSON(v any) any {
	switch x := v.(type) {
	case json.Number:
		s := x.String()
		if !strings.ContainsAny(s, ".eE") {
			if i, err := x.Int64(); err == nil {
				return i
			}
		}
		f, err := x.Float64()
		if err != nil {
			return s
		}
		return f
	case []any:
		strs := make([]string, 0, len(x))
		for _, e := range x {
			s, ok := e.(string)
			if !ok {
				out := make([]any, len(x))
				for i, e := range x {
					out[i] = normalizeJSON(e)
				}
				return out
			}
			strs = append(strs, s)
		}
		return strs
	default:
		return v
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
