// Package schema coerces table columns to fixed logical types so that snapshots
// compare on values rather than on representation.
//
// Supported types use the dtype names found in existing schema files:
//
//	Int64           nullable 64-bit integer
//	boolean         nullable boolean
//	datetime64[ns]  nullable timestamp
//	string          nullable text ("str" is accepted as an alias)
//
// Values that cannot be represented in the target type become null. Enforcement
// fails only for structural problems: a column named in the schema is missing
// (ErrMissingColumn) or a type is not supported (ErrUnknownType).
package schema
