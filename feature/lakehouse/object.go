package lakehouse

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"slices"
	"strings"

	"lakehouse-utils/core/schema"
	"lakehouse-utils/core/storage"
	"lakehouse-utils/core/table"
	"lakehouse-utils/feature/export"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const partSuffix = ".csv"

// ObjectWriter stores a table as CSV part files under a prefix in an object store.
type ObjectWriter struct {
	client storage.Client
	bucket string
	prefix string
	schema schema.Schema
	logger *zap.Logger
	newID  func() string
}

// NewObjectWriter creates a writer for the table stored under prefix.
func NewObjectWriter(client storage.Client, bucket, prefix string, s schema.Schema, logger *zap.Logger) *ObjectWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ObjectWriter{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		schema: s,
		logger: logger,
		newID:  func() string { return uuid.New().String() },
	}
}

// Write enforces the schema and uploads the table as a new part file.
// Overwrite removes the parts that existed before the upload, once the new part is stored.
func (w *ObjectWriter) Write(ctx context.Context, t *table.Table, mode Mode) error {
	typed, err := prepare(t, w.schema, mode)
	if err != nil {
		return err
	}

	buf := &bytes.Buffer{}
	if err := export.WriteCSV(buf, typed, nil); err != nil {
		return err
	}

	var stale []string
	if mode == ModeOverwrite {
		if stale, err = w.Parts(ctx); err != nil {
			return err
		}
	}

	key := storage.Key(w.prefix, "part-"+w.newID()+partSuffix)
	if err := storage.Upload(ctx, w.client, w.bucket, key, buf.Bytes(), "text/csv"); err != nil {
		return err
	}

	stale = slices.DeleteFunc(stale, func(k string) bool { return k == key })
	if err := storage.RemoveKeys(ctx, w.client, w.bucket, stale); err != nil {
		return fmt.Errorf("failed to clear %s after writing %s: %w", w.prefix, key, err)
	}
	if len(stale) > 0 {
		w.logger.Debug("Removed previous parts", zap.String("prefix", w.prefix), zap.Int("parts", len(stale)))
	}

	w.logger.Info("Table written to object store",
		zap.String("bucket", w.bucket),
		zap.String("key", key),
		zap.String("mode", string(mode)),
		zap.Int("rows", typed.Len()),
	)
	return nil
}

// Parts lists the part files currently stored under the prefix, in key order.
func (w *ObjectWriter) Parts(ctx context.Context) ([]string, error) {
	keys, err := storage.ListKeys(ctx, w.client, w.bucket, w.prefix+"/")
	if err != nil {
		return nil, err
	}

	parts := keys[:0]
	for _, k := range keys {
		base := path.Base(k)
		if strings.HasPrefix(base, "part-") && strings.HasSuffix(base, partSuffix) {
			parts = append(parts, k)
		}
	}
	return parts, nil
}

// Read downloads every part and returns them as one table typed by the schema.
// A prefix without parts reads as an empty table with the schema's columns.
func (w *ObjectWriter) Read(ctx context.Context) (*table.Table, error) {
	parts, err := w.Parts(ctx)
	if err != nil {
		return nil, err
	}

	var out *table.Table
	for _, key := range parts {
		data, err := storage.Download(ctx, w.client, w.bucket, key)
		if err != nil {
			return nil, err
		}
		part, err := export.ReadCSV(bytes.NewReader(data), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", key, err)
		}

		if out == nil {
			out = table.New(part.Columns...)
		} else if missing := out.MissingColumns(part.Columns...); len(missing) > 0 || len(part.Columns) != len(out.Columns) {
			return nil, fmt.Errorf("part %s has columns %v, expected %v", key, part.Columns, out.Columns)
		}
		out.Rows = append(out.Rows, part.Rows...)
	}

	if out == nil {
		out = table.New(w.schema.Columns()...)
	}
	if w.schema == nil {
		return out, nil
	}
	return schema.Enforce(out, w.schema)
}
