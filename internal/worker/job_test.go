package worker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"

	"github.com/policylens/survey-profiler/internal/worker"
)

type countingRunner struct {
	calls atomic.Int32
	err   error
}

func (c *countingRunner) RunBatch(ctx context.Context) (*worker.BatchResult, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return &worker.BatchResult{}, nil
}

var _ = Describe("scheduling", func() {
	Context("river job", func() {
		job := &river.Job[worker.ProcessSubmissionsArgs]{JobRow: &rivertype.JobRow{ID: 42}}

		It("runs one batch per job", func() {
			runner := &countingRunner{}
			w := worker.NewBatchJobWorker(runner, time.Minute)

			Expect(w.Work(context.TODO(), job)).To(Succeed())
			Expect(runner.calls.Load()).To(Equal(int32(1)))
			Expect(w.Timeout(job)).To(Equal(time.Minute))
		})

		It("fails the job when the invocation fails", func() {
			runner := &countingRunner{err: worker.ErrEmptyCatalog}
			w := worker.NewBatchJobWorker(runner, time.Minute)

			err := w.Work(context.TODO(), job)
			Expect(errors.Is(err, worker.ErrEmptyCatalog)).To(BeTrue())
		})

		It("is not retried", func() {
			args := worker.ProcessSubmissionsArgs{}
			Expect(args.Kind()).To(Equal("process_submissions"))
			Expect(args.InsertOpts().MaxAttempts).To(Equal(1))
		})

		It("bounds the job by the batch size", func() {
			p := worker.NewProcessor(nil, nil, nil,
				worker.WithBatchLimit(2),
				worker.WithModelTimeout(10*time.Second),
				worker.WithVisibilityTimeout(5*time.Second))
			Expect(p.BatchTimeout()).To(Equal(2 * (10*time.Second + 5*time.Second + 10*time.Second)))
		})
	})

	Context("ticker", func() {
		It("runs batches until the context is cancelled", func() {
			runner := &countingRunner{}
			ctx, cancel := context.WithCancel(context.Background())

			done := make(chan struct{})
			go func() {
				defer close(done)
				worker.NewTicker(runner, 20*time.Millisecond).Run(ctx)
			}()

			Eventually(runner.calls.Load).WithTimeout(2 * time.Second).Should(BeNumerically(">=", 2))
			cancel()
			Eventually(done).WithTimeout(time.Second).Should(BeClosed())
		})

		It("keeps going after a failed invocation", func() {
			runner := &countingRunner{err: errors.New("store down")}
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			go worker.NewTicker(runner, 20*time.Millisecond).Run(ctx)
			Eventually(runner.calls.Load).WithTimeout(2 * time.Second).Should(BeNumerically(">=", 2))
		})
	})
})
