package schema

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"lakehouse-utils/core/table"
	"lakehouse-utils/core/utils"
)

var (
	// ErrMissingColumn is returned when a schema column is absent from the table.
	ErrMissingColumn = errors.New("schema enforcement failed: missing column")

	// ErrUnknownType is returned for a logical type Enforce does not support.
	ErrUnknownType = errors.New("unknown logical type")
)

// Type is a logical column type.
type Type string

const (
	// Int64 is a nullable integer.
	Int64 Type = "Int64"
	// Boolean is a nullable boolean.
	Boolean Type = "boolean"
	// Datetime is a nullable timestamp.
	Datetime Type = "datetime64[ns]"
	// String is nullable text.
	String Type = "string"
)

var aliases = map[string]Type{
	"int64":          Int64,
	"int":            Int64,
	"integer":        Int64,
	"bool":           Boolean,
	"boolean":        Boolean,
	"datetime64[ns]": Datetime,
	"datetime":       Datetime,
	"timestamp":      Datetime,
	"date":           Datetime,
	"string":         String,
	"str":            String,
	"text":           String,
}

// ParseType resolves a type name, accepting common aliases case-insensitively.
func ParseType(name string) (Type, error) {
	t, ok := aliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, name)
	}
	return t, nil
}

// Schema maps column names to logical types.
type Schema map[string]Type

// Columns returns the schema's column names in sorted order.
func (s Schema) Columns() []string {
	cols := make([]string, 0, len(s))
	for c := range s {
		cols = append(cols, c)
	}
	slices.Sort(cols)
	return cols
}

// Validate normalizes every type name and reports unsupported ones.
func (s Schema) Validate() (Schema, error) {
	out := make(Schema, len(s))
	var errs []error
	for _, col := range s.Columns() {
		t, err := ParseType(string(s[col]))
		if err != nil {
			errs = append(errs, fmt.Errorf("column %q: %w", col, err))
			continue
		}
		out[col] = t
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// Enforce returns a copy of t with every schema column coerced to its type.
// Columns not named in the schema pass through unchanged; t is never modified.
func Enforce(t *table.Table, s Schema) (*table.Table, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: table is nil", ErrMissingColumn)
	}

	normalized, err := s.Validate()
	if err != nil {
		return nil, err
	}

	cols := normalized.Columns()
	if missing := t.MissingColumns(cols...); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	out := t.Clone()
	for _, row := range out.Rows {
		for _, col := range cols {
			row[col] = Coerce(row[col], normalized[col])
		}
	}
	return out, nil
}

// Coerce converts a single value to the given type, returning nil when it has no
// representation in that type.
func Coerce(v any, t Type) any {
	if table.IsNull(v) {
		return nil
	}

	switch t {
	case Int64:
		if i, ok := utils.ToInt64(v); ok {
			return i
		}
	case Boolean:
		if b, ok := utils.ToBool(v); ok {
			return b
		}
	case Datetime:
		if ts, ok := utils.ToTime(v); ok {
			return ts
		}
	case String:
		if str, ok := utils.ToString(v); ok {
			return str
		}
	}
	return nil
}
