package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayouts lists the layouts ToTime tries, in order, when parsing strings.
var DateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"02.01.2006",
}

// ToInt64 converts various types to int64 using explicit type switching.
// It handles standard integer types, floats, strings, booleans and byte slices.
// The second result is false when the value has no exact integer representation:
// NaN, infinities, fractional or out-of-range numbers and unparsable strings.
func ToInt64(val any) (int64, bool) {
	switch v := val.(type) {
	case nil:
		return 0, false
	case int:
		return int64(v), true
	case int64:
		return v, true
	case int32:
		return int64(v), true
	case int16:
		return int64(v), true
	case int8:
		return int64(v), true
	case uint:
		return uintToInt64(uint64(v))
	case uint64:
		return uintToInt64(v)
	case uint32:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint8:
		return int64(v), true
	case float64:
		return floatToInt64(v)
	case float32:
		return floatToInt64(float64(v))
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		return parseInt64(v)
	case []byte:
		return parseInt64(string(v))
	default:
		return 0, false
	}
}

// ToFloat64 converts numeric values and numeric strings to float64.
func ToFloat64(val any) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	case []byte:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
		return f, err == nil
	}
	if i, ok := ToInt64(val); ok {
		if _, isBool := val.(bool); !isBool {
			return float64(i), true
		}
	}
	return 0, false
}

// ToString converts various types to string.
// The second result is false for nil and NaN, which have no text form.
func ToString(val any) (string, bool) {
	switch v := val.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case []byte:
		return string(v), true
	case float64:
		if math.IsNaN(v) {
			return "", false
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case float32:
		if math.IsNaN(float64(v)) {
			return "", false
		}
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case time.Time:
		return v.Format(time.RFC3339Nano), true
	case []string:
		return strings.Join(v, ","), true
	default:
		return fmt.Sprintf("%v", v), true
	}
}

// ToBool converts various types to bool.
// It handles bool, numeric types (non-zero=true), and strings ("true/false", "1/0",
// "yes/no", "t/f", "y/n"; any other non-empty string is true).
// The second result is false for nil and NaN.
func ToBool(val any) (bool, bool) {
	switch v := val.(type) {
	case nil:
		return false, false
	case bool:
		return v, true
	case float64:
		if math.IsNaN(v) {
			return false, false
		}
		return v != 0, true
	case float32:
		if math.IsNaN(float64(v)) {
			return false, false
		}
		return v != 0, true
	case string:
		return parseBool(v), true
	case []byte:
		return parseBool(string(v)), true
	}
	if i, ok := ToInt64(val); ok {
		return i != 0, true
	}
	if u, ok := val.(uint64); ok {
		return u != 0, true
	}
	return true, true
}

// ToTime converts time values, date strings and epoch nanoseconds to time.Time.
// Strings are tried against DateLayouts; the second result is false when nothing matches.
func ToTime(val any) (time.Time, bool) {
	switch v := val.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return v, true
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, true
	case string:
		return parseTime(v)
	case []byte:
		return parseTime(string(v))
	case bool:
		return time.Time{}, false
	}
	if ns, ok := ToInt64(val); ok {
		return time.Unix(0, ns).UTC(), true
	}
	return time.Time{}, false
}

func uintToInt64(v uint64) (int64, bool) {
	if v > math.MaxInt64 {
		return 0, false
	}
	return int64(v), true
}

func floatToInt64(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	// 2^63 is exactly representable; anything at or above it overflows
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func parseInt64(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return floatToInt64(f)
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "false", "0", "no", "n", "f", "off":
		return false
	default:
		return true
	}
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
