package jobstatus

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"testing"
	"time"

	"lakehouse-utils/core/reconcile"
	"lakehouse-utils/core/schema"
	"lakehouse-utils/core/table"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type memorySink struct {
	records []Record
	err     error
}

func (m *memorySink) Write(_ context.Context, rec Record) error {
	m.records = append(m.records, rec)
	return m.err
}

func fixedClock(times ...time.Time) func() time.Time {
	i := 0
	return func() time.Time {
		t := times[i]
		if i < len(times)-1 {
			i++
		}
		return t
	}
}

func testRunner(sink Sink) *Runner {
	r := NewRunner(sink, zap.NewNop())
	r.now = fixedClock(
		time.Date(2026, 3, 4, 23, 59, 0, 0, time.UTC),
		time.Date(2026, 3, 5, 0, 1, 0, 0, time.UTC),
	)
	return r
}

func TestRun_Success(t *testing.T) {
	sink := &memorySink{}
	job := Job{ID: "7", Name: "hr_sync"}

	got, err := testRunner(sink).Run(context.Background(), job, func(context.Context) (*Metrics, error) {
		return &Metrics{Processed: 10, Created: 2, Updated: 3, Kept: 5}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 10, got.Processed)

	require.Len(t, sink.records, 1)
	rec := sink.records[0]
	assert.Equal(t, StatusSuccess, rec.Status)
	assert.Equal(t, "7", rec.JobID)
	assert.Equal(t, "hr_sync", rec.JobName)
	assert.Equal(t, "2026-03-04", rec.JobDate)
	assert.Equal(t, 2*time.Minute, rec.Duration())
	assert.Equal(t, Metrics{Processed: 10, Created: 2, Updated: 3, Kept: 5}, rec.Metrics)
	assert.Empty(t, rec.ErrorMessage)
}

func TestRun_Partial(t *testing.T) {
	sink := &memorySink{}

	got, err := testRunner(sink).Run(context.Background(), Job{ID: "1", Name: "export"}, func(context.Context) (*Metrics, error) {
		return nil, nil
	})
	require.NoError(t, err)
	assert.Nil(t, got)

	require.Len(t, sink.records, 1)
	assert.Equal(t, StatusPartial, sink.records[0].Status)
	assert.Contains(t, sink.records[0].ErrorMessage, "export")
	assert.Equal(t, Metrics{}, sink.records[0].Metrics)
}

func TestRun_FailureReturnsWorkError(t *testing.T) {
	sink := &memorySink{}
	boom := errors.New("source unreachable")

	_, err := testRunner(sink).Run(context.Background(), Job{ID: "1", Name: "x"}, func(context.Context) (*Metrics, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	require.Len(t, sink.records, 1)
	assert.Equal(t, StatusFailure, sink.records[0].Status)
	assert.Equal(t, "source unreachable", sink.records[0].ErrorMessage)
}

func TestRun_PanicIsRecordedAndReraised(t *testing.T) {
	sink := &memorySink{}

	assert.PanicsWithValue(t, "kaput", func() {
		_, _ = testRunner(sink).Run(context.Background(), Job{ID: "1", Name: "x"}, func(context.Context) (*Metrics, error) {
			panic("kaput")
		})
	})

	require.Len(t, sink.records, 1)
	assert.Equal(t, StatusFailure, sink.records[0].Status)
	assert.Equal(t, "panic: kaput", sink.records[0].ErrorMessage)
}

func TestRun_SinkFailure(t *testing.T) {
	sink := &memorySink{err: errors.New("table locked")}

	got, err := testRunner(sink).Run(context.Background(), Job{ID: "1", Name: "x"}, func(context.Context) (*Metrics, error) {
		return &Metrics{Processed: 1}, nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table locked")
	assert.Equal(t, 1, got.Processed)

	// the work error wins over the sink error
	boom := errors.New("boom")
	_, err = testRunner(sink).Run(context.Background(), Job{ID: "2", Name: "x"}, func(context.Context) (*Metrics, error) {
		return nil, boom
	})
	assert.Equal(t, boom, err)
}

func TestRun_LogsWithJobFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	_, err := Run(context.Background(), Job{ID: "99", Name: "hr"}, nil, zap.New(core), func(context.Context) (*Metrics, error) {
		return &Metrics{}, nil
	})
	require.NoError(t, err)

	finished := logs.FilterMessage("Job finished").All()
	require.Len(t, finished, 1)
	fields := finished[0].ContextMap()
	assert.Equal(t, "99", fields["job_id"])
	assert.Equal(t, "SUCCESS", fields["status"])
}

func TestNewJobID(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewJobID()
		n, err := strconv.ParseUint(id, 10, 64)
		require.NoError(t, err)
		assert.Less(t, n, uint64(1_000_000_000_000_000_000))
		assert.False(t, seen[id])
		seen[id] = true
	}

	a, b := NewJob("x"), NewJob("x")
	assert.NotEqual(t, a.ID, b.ID)
}

func TestMetricsFromSummary(t *testing.T) {
	m := MetricsFromSummary(reconcile.Summary{Processed: 9, Created: 1, Updated: 2, Deleted: 3, Kept: 3})
	assert.Equal(t, &Metrics{Processed: 9, Created: 1, Updated: 2, Deleted: 3, Kept: 3}, m)
}

func TestMultiSink(t *testing.T) {
	a := &memorySink{err: errors.New("a failed")}
	b := &memorySink{}

	err := MultiSink{a, b, LogSink{}}.Write(context.Background(), Record{JobID: "1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a failed")
	assert.Len(t, b.records, 1)
}

func TestRecordTable_MatchesStatusSchema(t *testing.T) {
	rec := Record{
		JobID:     "1",
		JobName:   "x",
		StartTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC),
		JobDate:   "2026-01-01",
		Status:    StatusSuccess,
		Metrics:   Metrics{Processed: 4},
	}

	tbl := rec.Table()
	assert.Empty(t, tbl.MissingColumns(StatusSchema.Columns()...))

	enforced, err := schema.Enforce(tbl, StatusSchema)
	require.NoError(t, err)
	assert.Equal(t, tbl.Records(), enforced.Records())
}

func TestTableSink(t *testing.T) {
	var got *table.Table
	sink := TableSink{Append: func(_ context.Context, t *table.Table) error {
		got = t
		return nil
	}}

	require.NoError(t, sink.Write(context.Background(), Record{JobID: "5", Status: StatusPartial}))
	assert.Equal(t, "5", got.Value(0, "job_id"))
	assert.Equal(t, "PARTIAL", got.Value(0, "status"))

	assert.Error(t, TableSink{}.Write(context.Background(), Record{}))
}

func TestGormSink(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `etl_job_status`")).
		WithArgs("42", "hr", sqlmock.AnyArg(), sqlmock.AnyArg(), "2026-01-01", "FAILURE",
			int64(0), int64(0), int64(0), int64(0), int64(0), int64(0), "boom").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	sink, err := NewGormSink(db, "etl_job_status", false)
	require.NoError(t, err)

	err = sink.Write(context.Background(), Record{
		JobID:        "42",
		JobName:      "hr",
		JobDate:      "2026-01-01",
		Status:       StatusFailure,
		ErrorMessage: "boom",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())

	_, err = NewGormSink(nil, "x", false)
	assert.Error(t, err)
}
