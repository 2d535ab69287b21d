package lakehouse

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lakehouse-utils/core/schema"
	"lakehouse-utils/core/table"
)

// Mode selects how a write treats existing data.
type Mode string

const (
	// ModeAppend adds rows next to the existing ones.
	ModeAppend Mode = "append"
	// ModeOverwrite replaces the existing rows.
	ModeOverwrite Mode = "overwrite"
)

// ErrInvalidMode is returned for write modes other than append and overwrite.
var ErrInvalidMode = errors.New("invalid write mode")

// ParseMode parses a write mode name. An empty name means append.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeAppend:
		return ModeAppend, nil
	case ModeOverwrite:
		return ModeOverwrite, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// Writer persists a table.
type Writer interface {
	Write(ctx context.Context, t *table.Table, mode Mode) error
}

// AppendFunc adapts a Writer to the append callback used by jobstatus.TableSink.
func AppendFunc(w Writer) func(ctx context.Context, t *table.Table) error {
	return func(ctx context.Context, t *table.Table) error {
		return w.Write(ctx, t, ModeAppend)
	}
}

// prepare validates the mode and applies the schema. A nil schema passes the table through.
func prepare(t *table.Table, s schema.Schema, mode Mode) (*table.Table, error) {
	if mode != ModeAppend && mode != ModeOverwrite {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	if t == nil {
		return nil, errors.New("no table to write")
	}
	if s == nil {
		return t, nil
	}
	return schema.Enforce(t, s)
}
