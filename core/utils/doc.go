// Package utils provides the value conversions shared by the schema enforcer and
// the file readers. Every converter reports whether the input had a usable
// representation instead of silently returning a zero value.
package utils
