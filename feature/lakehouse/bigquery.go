package lakehouse

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"lakehouse-utils/core/schema"
	"lakehouse-utils/core/table"
	"lakehouse-utils/feature/export"

	"cloud.google.com/go/bigquery"
	"go.uber.org/zap"
)

// TableLoader runs a CSV load job into one destination table.
type TableLoader interface {
	Load(ctx context.Context, r io.Reader, s bigquery.Schema, disposition bigquery.TableWriteDisposition) error
}

type bigQueryLoader struct {
	table *bigquery.Table
}

// Load submits a load job and waits for it to finish.
func (l *bigQueryLoader) Load(ctx context.Context, r io.Reader, s bigquery.Schema, disposition bigquery.TableWriteDisposition) error {
	rs := bigquery.NewReaderSource(r)
	rs.SourceFormat = bigquery.CSV
	rs.SkipLeadingRows = 1
	rs.Schema = s

	loader := l.table.LoaderFrom(rs)
	loader.CreateDisposition = bigquery.CreateIfNeeded
	loader.WriteDisposition = disposition

	job, err := loader.Run(ctx)
	if err != nil {
		return fmt.Errorf("failed to run bigquery load job: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("failed to wait for load job: %w", err)
	}

	if err := status.Err(); err != nil {
		return fmt.Errorf("failed to load csv: %w", err)
	}
	return nil
}

// BigQueryWriter loads tables into a BigQuery table.
type BigQueryWriter struct {
	loader TableLoader
	name   string
	schema schema.Schema
	logger *zap.Logger
	client *bigquery.Client
}

// NewBigQueryWriter connects to BigQuery and targets cfg.Dataset.tableName.
func NewBigQueryWriter(ctx context.Context, cfg Config, tableName string, s schema.Schema, logger *zap.Logger) (*BigQueryWriter, error) {
	client, err := bigquery.NewClient(ctx, cfg.Project)
	if err != nil {
		return nil, fmt.Errorf("failed to create bigquery client: %w", err)
	}

	tbl := client.Dataset(cfg.Dataset).Table(tableName)
	w := NewBigQueryWriterWithLoader(&bigQueryLoader{table: tbl}, cfg.Dataset+"."+tableName, s, logger)
	w.client = client
	return w, nil
}

// NewBigQueryWriterWithLoader builds a writer around an existing loader.
func NewBigQueryWriterWithLoader(l TableLoader, name string, s schema.Schema, logger *zap.Logger) *BigQueryWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BigQueryWriter{loader: l, name: name, schema: s, logger: logger}
}

// Write enforces the schema and loads the table. Overwrite truncates the destination.
func (w *BigQueryWriter) Write(ctx context.Context, t *table.Table, mode Mode) error {
	typed, err := prepare(t, w.schema, mode)
	if err != nil {
		return err
	}

	buf := &bytes.Buffer{}
	if err := export.WriteCSV(buf, typed, nil); err != nil {
		return err
	}

	disposition := bigquery.WriteAppend
	if mode == ModeOverwrite {
		disposition = bigquery.WriteTruncate
	}

	if err := w.loader.Load(ctx, buf, BigQuerySchema(typed.Columns, w.schema), disposition); err != nil {
		return fmt.Errorf("failed to write %s: %w", w.name, err)
	}

	w.logger.Info("Table loaded into BigQuery",
		zap.String("table", w.name),
		zap.String("mode", string(mode)),
		zap.Int("rows", typed.Len()),
	)
	return nil
}

// Close releases the BigQuery client, if the writer owns one.
func (w *BigQueryWriter) Close() error {
	if w.client == nil {
		return nil
	}
	return w.client.Close()
}

// BigQuerySchema maps column types onto BigQuery fields. Columns the schema does not
// name are loaded as STRING.
func BigQuerySchema(columns []string, s schema.Schema) bigquery.Schema {
	out := make(bigquery.Schema, len(columns))
	for i, c := range columns {
		ft := bigquery.StringFieldType
		typ, _ := schema.ParseType(string(s[c]))
		switch typ {
		case schema.Int64:
			ft = bigquery.IntegerFieldType
		case schema.Boolean:
			ft = bigquery.BooleanFieldType
		case schema.Datetime:
			ft = bigquery.TimestampFieldType
		}
		out[i] = &bigquery.FieldSchema{Name: c, Type: ft}
	}
	return out
}
