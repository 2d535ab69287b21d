// Package table provides the in-memory tabular value exchanged by every other package.
//
// A Table is an ordered list of column names plus an ordered list of rows. Each row maps
// a column name to a scalar value: integers, floats, strings, booleans, time.Time,
// []string (list cells such as changed_columns) or nil for null.
//
// # Equality
//
// Equal implements exact, type-sensitive comparison: int64(1) and float64(1) are
// different values, nil equals nil, nil never equals a non-null value. A float NaN is
// treated as null so that two missing measurements compare equal.
//
// # Keys
//
// KeyOf encodes the values of a key column set into a single comparable string. The
// encoding carries the dynamic type of every value, so key matching follows the same
// type-sensitive rules as Equal.
//
// # JSON
//
// Tables marshal as {"columns": [...], "rows": [{...}, ...]}. Decoding keeps the
// integer/float distinction of the source document.
package table
