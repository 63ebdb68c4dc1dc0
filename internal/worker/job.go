package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"

	"github.com/policylens/survey-profiler/pkg/log"
)

// BatchRunner runs one invocation of the worker loop.
type BatchRunner interface {
	RunBatch(ctx context.Context) (*BatchResult, error)
}

// ProcessSubmissionsArgs is the periodic job that triggers one invocation.
type ProcessSubmissionsArgs struct{}

// Kind returns the unique identifier for this job type
func (ProcessSubmissionsArgs) Kind() string {
	return "process_submissions"
}

// InsertOpts disables retries: the next period picks up whatever is left in the queue.
func (ProcessSubmissionsArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{MaxAttempts: 1}
}

type BatchJobWorker struct {
	river.WorkerDefaults[ProcessSubmissionsArgs]
	runner  BatchRunner
	timeout time.Duration
}

func NewBatchJobWorker(runner BatchRunner, timeout time.Duration) *BatchJobWorker {
	return &BatchJobWorker{runner: runner, timeout: timeout}
}

func (w *BatchJobWorker) Work(ctx context.Context, job *river.Job[ProcessSubmissionsArgs]) error {
	logger := log.NewDebugLogger("batch_job").
		WithContext(ctx).
		Operation("process_submissions").
		WithInt64("job_id", job.ID).
		Build()

	result, err := w.runner.RunBatch(ctx)
	if err != nil {
		logger.Error(err).Log()
		return fmt.Errorf("batch invocation failed: %w", err)
	}

	entry := logger.Success().WithInt("processed", result.Processed).WithInt("succeeded", result.Succeeded())
	if result.ClaimErr != nil {
		entry = entry.WithString("claim_error", result.ClaimErr.Error())
	}
	entry.Log()
	return nil
}

// Timeout returns the maximum duration a job can run before being interrupted
func (w *BatchJobWorker) Timeout(job *river.Job[ProcessSubmissionsArgs]) time.Duration {
	return w.timeout
}

// BatchTimeout bounds a whole invocation: every item may use its model timeout plus one claim window.
func (p *Processor) BatchTimeout() time.Duration {
	return time.Duration(p.batchLimit) * (p.modelTimeout + p.vt + cleanupTimeout)
}

// NewRiverClient registers the batch worker and schedules it every interval.
func NewRiverClient(pool *pgxpool.Pool, p *Processor, interval time.Duration) (*river.Client[pgx.Tx], error) {
	workers := river.NewWorkers()
	river.AddWorker(workers, NewBatchJobWorker(p, p.BatchTimeout()))

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 1},
		},
		Workers: workers,
		PeriodicJobs: []*river.PeriodicJob{
			river.NewPeriodicJob(
				river.PeriodicInterval(interval),
				func() (river.JobArgs, *river.InsertOpts) {
					return ProcessSubmissionsArgs{}, nil
				},
				&river.PeriodicJobOpts{RunOnStart: true},
			),
		},

		CancelledJobRetentionPeriod: 24 * time.Hour,
		CompletedJobRetentionPeriod: 24 * time.Hour,
		DiscardedJobRetentionPeriod: 7 * 24 * time.Hour,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create river client: %w", err)
	}
	return client, nil
}
