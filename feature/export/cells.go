package export

import (
	"fmt"
	"strings"
	"time"

	"lakehouse-utils/core/table"
	"lakehouse-utils/core/utils"
)

// cellValue maps a table value onto something a spreadsheet cell can hold.
// Nulls become nil and list cells are joined into text.
func cellValue(v any) any {
	if table.IsNull(v) {
		return nil
	}
	switch x := v.(type) {
	case []string:
		return strings.Join(x, ",")
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i], _ = utils.ToString(e)
		}
		return strings.Join(parts, ",")
	case []byte:
		return string(x)
	case time.Time, string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return x
	default:
		return fmt.Sprintf("%v", x)
	}
}

// cellText renders a value for text formats. Nulls render as "".
func cellText(v any) string {
	s, _ := utils.ToString(cellValue(v))
	return s
}

// fromText turns a raw cell read from a file into a table value.
func fromText(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// newTableFromRecords builds a table whose header is the first record.
// Short records are padded with nulls, extra cells are dropped.
func newTableFromRecords(records [][]string) (*table.Table, error) {
	if len(records) == 0 {
		return nil, ErrEmptySheet
	}

	header := make([]string, len(records[0]))
	seen := make(map[string]struct{}, len(header))
	for i, h := range records[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		if _, dup := seen[h]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateHeader, h)
		}
		seen[h] = struct{}{}
		header[i] = h
	}

	t := table.New(header...)
	for _, rec := range records[1:] {
		row := make(table.Row, len(header))
		for i, c := range header {
			if i < len(rec) {
				row[c] = fromText(rec[i])
			} else {
				row[c] = nil
			}
		}
		t.AppendRow(row)
	}
	return t, nil
}
