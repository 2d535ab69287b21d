package jobstatus

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"lakehouse-utils/core/logger"
	"lakehouse-utils/core/reconcile"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Status is the outcome of a job run.
type Status string

const (
	// StatusSuccess means the work returned metrics.
	StatusSuccess Status = "SUCCESS"
	// StatusPartial means the work finished without error but returned no metrics.
	StatusPartial Status = "PARTIAL"
	// StatusFailure means the work returned an error or panicked.
	StatusFailure Status = "FAILURE"
)

// Job identifies one run of a named job.
type Job struct {
	ID   string
	Name string
}

// NewJob returns a Job with a fresh ID. Call it once per run.
func NewJob(name string) Job {
	return Job{ID: NewJobID(), Name: name}
}

var jobIDModulus = big.NewInt(1_000_000_000_000_000_000)

// NewJobID returns a random decimal identifier below 10^18.
func NewJobID() string {
	id := uuid.New()
	n := new(big.Int).SetBytes(id[:])
	return n.Mod(n, jobIDModulus).String()
}

// Metrics are the counters a unit of work reports.
type Metrics struct {
	Processed int `json:"records_processed"`
	Created   int `json:"records_created"`
	Updated   int `json:"records_updated"`
	Deleted   int `json:"records_deleted"`
	Kept      int `json:"records_kept"`
	Skipped   int `json:"records_skipped"`
}

// MetricsFromSummary maps a reconciliation summary onto job metrics.
func MetricsFromSummary(s reconcile.Summary) *Metrics {
	return &Metrics{
		Processed: s.Processed,
		Created:   s.Created,
		Updated:   s.Updated,
		Deleted:   s.Deleted,
		Kept:      s.Kept,
	}
}

// Record is the status row written for every run.
type Record struct {
	JobID        string    `json:"job_id"`
	JobName      string    `json:"job_name"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	JobDate      string    `json:"job_date"`
	Status       Status    `json:"status"`
	Metrics      Metrics   `json:"metrics"`
	ErrorMessage string    `json:"error_message"`
}

// Duration returns the wall time of the run.
func (r Record) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// Work is a unit of work whose outcome is tracked. Returning nil metrics without an
// error marks the run PARTIAL.
type Work func(ctx context.Context) (*Metrics, error)

// Sink persists status records.
type Sink interface {
	Write(ctx context.Context, rec Record) error
}

// Runner wraps units of work with status tracking.
type Runner struct {
	sink   Sink
	logger *zap.Logger
	now    func() time.Time
}

// NewRunner creates a Runner writing to sink.
func NewRunner(sink Sink, logger *zap.Logger) *Runner {
	return &Runner{sink: sink, logger: logger, now: time.Now}
}

// Run executes work and writes exactly one status record for it.
//
// The work's error is returned unchanged. A panic is recorded as FAILURE and then
// re-raised. When only the sink fails, the metrics are returned with the sink error.
func (r *Runner) Run(ctx context.Context, job Job, work Work) (metrics *Metrics, err error) {
	l := logger.WithJob(r.logger, job.ID, job.Name)
	start := r.now()
	l.Info("Job started")

	rec := Record{
		JobID:     job.ID,
		JobName:   job.Name,
		StartTime: start,
		JobDate:   start.Format("2006-01-02"),
		Status:    StatusFailure,
	}

	defer func() {
		p := recover()
		if p != nil {
			rec.Status = StatusFailure
			rec.ErrorMessage = fmt.Sprintf("panic: %v", p)
		}
		rec.EndTime = r.now()

		if r.sink != nil {
			if sinkErr := r.sink.Write(context.WithoutCancel(ctx), rec); sinkErr != nil {
				l.Error("Failed to record job status", zap.Error(sinkErr))
				if err == nil && p == nil {
					err = fmt.Errorf("failed to record job status: %w", sinkErr)
				}
			}
		}

		l.Info("Job finished",
			zap.String("status", string(rec.Status)),
			zap.Duration("duration", rec.Duration()),
			zap.Int("records_processed", rec.Metrics.Processed),
		)

		if p != nil {
			panic(p)
		}
	}()

	metrics, err = work(ctx)
	switch {
	case err != nil:
		rec.Status = StatusFailure
		rec.ErrorMessage = err.Error()
		l.Error("Job failed", zap.Error(err))
	case metrics == nil:
		rec.Status = StatusPartial
		rec.ErrorMessage = fmt.Sprintf("job %q succeeded but returned no metrics", job.Name)
	default:
		rec.Status = StatusSuccess
		rec.Metrics = *metrics
	}

	return metrics, err
}

// Run is a convenience wrapper around NewRunner(sink, logger).Run.
func Run(ctx context.Context, job Job, sink Sink, logger *zap.Logger, work Work) (*Metrics, error) {
	return NewRunner(sink, logger).Run(ctx, job, work)
}
