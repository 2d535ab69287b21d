package table

import (
	"bytes"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// IsNull reports whether v is a missing value: nil or a float NaN.
func IsNull(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	default:
		return false
	}
}

// Equal reports whether two cell values are exactly equal.
// Values of different dynamic types are never equal, so int64(1) differs from float64(1).
func Equal(a, b any) bool {
	an, bn := IsNull(a), IsNull(b)
	if an || bn {
		return an && bn
	}

	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}

	switch x := a.(type) {
	case time.Time:
		return x.Equal(b.(time.Time))
	case []byte:
		return bytes.Equal(x, b.([]byte))
	}

	return reflect.DeepEqual(a, b)
}

// KeyOf encodes the key columns of a row into a comparable string.
// Each value is tagged with its dynamic type and length prefixed, so no value can
// spill into its neighbour; null values share a single encoding.
func KeyOf(row Row, key []string) string {
	var sb strings.Builder
	for _, col := range key {
		enc := encodeKeyValue(row[col])
		sb.WriteString(strconv.Itoa(len(enc)))
		sb.WriteByte(':')
		sb.WriteString(enc)
	}
	return sb.String()
}

// FormatKey renders the key columns of a row for messages, e.g. "id=2, region=EU".
func FormatKey(row Row, key []string) string {
	parts := make([]string, len(key))
	for i, col := range key {
		parts[i] = fmt.Sprintf("%s=%v", col, row[col])
	}
	return strings.Join(parts, ", ")
}

func encodeKeyValue(v any) string {
	if IsNull(v) {
		return "null"
	}
	if t, ok := v.(time.Time); ok {
		return "time.Time:" + t.UTC().Format(time.RFC3339Nano)
	}
	return fmt.Sprintf("%T:%v", v, v)
}
