package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/policylens/survey-profiler/internal/config"
	"github.com/policylens/survey-profiler/internal/events"
	"github.com/policylens/survey-profiler/internal/llm"
	"github.com/policylens/survey-profiler/internal/queue"
	"github.com/policylens/survey-profiler/internal/store"
	"github.com/policylens/survey-profiler/internal/worker"
)

type pipeline struct {
	queue     queue.Queue
	producer  *events.EventProducer
	processor *worker.Processor
}

func (p *pipeline) Close() {
	if p.producer != nil {
		_ = p.producer.Close()
	}
}

// newPipeline wires the queue backend, the model client and the event producer into a processor.
func newPipeline(ctx context.Context, cfg *config.Config, s store.Store, pool *pgxpool.Pool) (*pipeline, error) {
	q, err := queue.New(cfg, s, pool)
	if err != nil {
		return nil, err
	}
	if pq, ok := q.(*queue.PgmqQueue); ok {
		if err := pq.EnsureQueue(ctx); err != nil {
			return nil, fmt.Errorf("creating pgmq queue: %w", err)
		}
	}

	completer, err := llm.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating model client: %w", err)
	}
	if llm.IsDisabled(completer) {
		zap.S().Named("pipeline").Warn("GEMINI_API_KEY is not set: submissions are accepted but batches will not run")
	}

	writer, err := events.NewWriter(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating event writer: %w", err)
	}
	producer := events.NewEventProducer(writer, events.WithOutputTopic(cfg.Service.Kafka.Topic))

	processor := worker.NewProcessor(s, q, completer,
		worker.WithConfig(cfg),
		worker.WithEventProducer(producer),
	)

	return &pipeline{queue: q, producer: producer, processor: processor}, nil
}
