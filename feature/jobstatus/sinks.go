package jobstatus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lakehouse-utils/core/schema"
	"lakehouse-utils/core/table"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StatusRow is the SQL representation of a Record.
type StatusRow struct {
	JobID            string    `gorm:"column:job_id;size:32;index"`
	JobName          string    `gorm:"column:job_name;size:255"`
	StartTime        time.Time `gorm:"column:start_time"`
	EndTime          time.Time `gorm:"column:end_time"`
	JobDate          string    `gorm:"column:job_date;size:10"`
	Status           string    `gorm:"column:status;size:16"`
	RecordsProcessed int64     `gorm:"column:records_processed"`
	RecordsCreated   int64     `gorm:"column:records_created"`
	RecordsUpdated   int64     `gorm:"column:records_updated"`
	RecordsDeleted   int64     `gorm:"column:records_deleted"`
	RecordsKept      int64     `gorm:"column:records_kept"`
	RecordsSkipped   int64     `gorm:"column:records_skipped"`
	ErrorMessage     string    `gorm:"column:error_message;type:text"`
}

func toRow(rec Record) StatusRow {
	return StatusRow{
		JobID:            rec.JobID,
		JobName:          rec.JobName,
		StartTime:        rec.StartTime,
		EndTime:          rec.EndTime,
		JobDate:          rec.JobDate,
		Status:           string(rec.Status),
		RecordsProcessed: int64(rec.Metrics.Processed),
		RecordsCreated:   int64(rec.Metrics.Created),
		RecordsUpdated:   int64(rec.Metrics.Updated),
		RecordsDeleted:   int64(rec.Metrics.Deleted),
		RecordsKept:      int64(rec.Metrics.Kept),
		RecordsSkipped:   int64(rec.Metrics.Skipped),
		ErrorMessage:     rec.ErrorMessage,
	}
}

// GormSink appends records to a SQL table.
type GormSink struct {
	db    *gorm.DB
	table string
}

// NewGormSink creates a sink writing to tableName. With migrate set the table is
// created when missing.
func NewGormSink(db *gorm.DB, tableName string, migrate bool) (*GormSink, error) {
	if db == nil {
		return nil, errors.New("database connection not configured")
	}
	if migrate {
		if err := db.Table(tableName).AutoMigrate(&StatusRow{}); err != nil {
			return nil, fmt.Errorf("failed to migrate %s: %w", tableName, err)
		}
	}
	return &GormSink{db: db, table: tableName}, nil
}

// Write appends one row.
func (s *GormSink) Write(ctx context.Context, rec Record) error {
	row := toRow(rec)
	if err := s.db.WithContext(ctx).Table(s.table).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert into %s: %w", s.table, err)
	}
	return nil
}

// LogSink writes records to a zap logger.
type LogSink struct {
	Logger *zap.Logger
}

// Write logs the record.
func (s LogSink) Write(_ context.Context, rec Record) error {
	if s.Logger == nil {
		return nil
	}
	s.Logger.Info("Job status",
		zap.String("job_id", rec.JobID),
		zap.String("job_name", rec.JobName),
		zap.String("job_date", rec.JobDate),
		zap.String("status", string(rec.Status)),
		zap.Time("start_time", rec.StartTime),
		zap.Time("end_time", rec.EndTime),
		zap.Any("metrics", rec.Metrics),
		zap.String("error_message", rec.ErrorMessage),
	)
	return nil
}

// MultiSink writes to every sink and joins their errors.
type MultiSink []Sink

// Write forwards the record to all sinks, even after a failure.
func (m MultiSink) Write(ctx context.Context, rec Record) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// StatusSchema is the column typing of the status table.
var StatusSchema = schema.Schema{
	"job_id":            schema.String,
	"job_name":          schema.String,
	"start_time":        schema.Datetime,
	"end_time":          schema.Datetime,
	"job_date":          schema.String,
	"status":            schema.String,
	"records_processed": schema.Int64,
	"records_created":   schema.Int64,
	"records_updated":   schema.Int64,
	"records_deleted":   schema.Int64,
	"records_kept":      schema.Int64,
	"records_skipped":   schema.Int64,
	"error_message":     schema.String,
}

// statusColumns is the column order of status tables.
var statusColumns = []string{
	"job_id", "job_name", "start_time", "end_time", "job_date", "status",
	"records_processed", "records_created", "records_updated", "records_deleted",
	"records_kept", "records_skipped", "error_message",
}

// Table renders the record as a one-row table typed by StatusSchema.
func (r Record) Table() *table.Table {
	t := table.New(statusColumns...)
	t.Append(
		r.JobID, r.JobName, r.StartTime, r.EndTime, r.JobDate, string(r.Status),
		int64(r.Metrics.Processed), int64(r.Metrics.Created), int64(r.Metrics.Updated),
		int64(r.Metrics.Deleted), int64(r.Metrics.Kept), int64(r.Metrics.Skipped),
		r.ErrorMessage,
	)
	return t
}

// TableSink appends records through any table writer, such as a lakehouse writer.
type TableSink struct {
	Append func(ctx context.Context, t *table.Table) error
}

// Write appends the record as a one-row table.
func (s TableSink) Write(ctx context.Context, rec Record) error {
	if s.Append == nil {
		return errors.New("table sink has no writer")
	}
	return s.Append(ctx, rec.Table())
}
