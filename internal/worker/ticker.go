package worker

import (
	"context"
	"time"

	"github.com/lthibault/jitterbug/v2"
	"go.uber.org/zap"
)

// Ticker runs the worker loop on a jittered interval. It is used when river is not available.
type Ticker struct {
	runner   BatchRunner
	interval time.Duration
}

func NewTicker(runner BatchRunner, interval time.Duration) *Ticker {
	return &Ticker{runner: runner, interval: interval}
}

// Run blocks until ctx is done. Invocations never overlap.
func (t *Ticker) Run(ctx context.Context) {
	logger := zap.S().Named("worker_ticker")
	ticker := jitterbug.New(t.interval, &jitterbug.Norm{Stdev: t.interval / 10, Mean: 0})
	defer ticker.Stop()

	logger.Infow("scheduler started", "interval", t.interval)
	for {
		select {
		case <-ctx.Done():
			logger.Info("scheduler stopped")
			return
		case <-ticker.C:
		}

		result, err := t.runner.RunBatch(ctx)
		if err != nil {
			logger.Errorw("batch invocation failed", "error", err)
			continue
		}
		if result.ClaimErr != nil {
			logger.Warnw("batch stopped early", "error", result.ClaimErr)
		}
	}
}
