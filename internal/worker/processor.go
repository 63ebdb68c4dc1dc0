// Package worker drains the submissions queue: every claimed item is scored, summarized by the
// language model and committed to a terminal status before the item is deleted.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/policylens/survey-profiler/internal/config"
	"github.com/policylens/survey-profiler/internal/events"
	"github.com/policylens/survey-profiler/internal/llm"
	"github.com/policylens/survey-profiler/internal/prompt"
	"github.com/policylens/survey-profiler/internal/queue"
	"github.com/policylens/survey-profiler/internal/scoring"
	"github.com/policylens/survey-profiler/internal/store"
	"github.com/policylens/survey-profiler/internal/store/model"
	"github.com/policylens/survey-profiler/pkg/log"
	"github.com/policylens/survey-profiler/pkg/metrics"
)

const (
	DefaultBatchLimit        = 5
	DefaultVisibilityTimeout = 30 * time.Second
	DefaultModelTimeout      = 60 * time.Second

	cleanupTimeout = 10 * time.Second
)

// Processor runs one invocation of the worker loop at a time per call to RunBatch.
// Concurrent calls are safe: exclusivity comes from queue visibility and the store status guard.
type Processor struct {
	store        store.Store
	queue        queue.Queue
	completer    llm.Completer
	events       *events.EventProducer
	engine       *scoring.Engine
	batchLimit   int
	vt           time.Duration
	modelTimeout time.Duration
	now          func() time.Time
}

type Option func(p *Processor)

func WithBatchLimit(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.batchLimit = n
		}
	}
}

func WithVisibilityTimeout(vt time.Duration) Option {
	return func(p *Processor) {
		if vt > 0 {
			p.vt = vt
		}
	}
}

func WithModelTimeout(d time.Duration) Option {
	return func(p *Processor) {
		if d > 0 {
			p.modelTimeout = d
		}
	}
}

func WithScale(scale scoring.Scale) Option {
	return func(p *Processor) {
		p.engine = scoring.NewEngine(scale)
	}
}

func WithEventProducer(ep *events.EventProducer) Option {
	return func(p *Processor) {
		p.events = ep
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Processor) {
		p.now = now
	}
}

// WithConfig applies the worker and queue sections of the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(p *Processor) {
		WithBatchLimit(cfg.Worker.BatchLimit)(p)
		WithVisibilityTimeout(cfg.Queue.VisibilityTimeout)(p)
		WithModelTimeout(cfg.Worker.ModelTimeout)(p)
		if cfg.Worker.RatingMax > cfg.Worker.RatingMin {
			WithScale(scoring.Scale{Min: cfg.Worker.RatingMin, Max: cfg.Worker.RatingMax})(p)
		}
	}
}

func NewProcessor(s store.Store, q queue.Queue, c llm.Completer, opts ...Option) *Processor {
	p := &Processor{
		store:        s,
		queue:        q,
		completer:    c,
		engine:       scoring.NewEngine(scoring.DefaultScale),
		batchLimit:   DefaultBatchLimit,
		vt:           DefaultVisibilityTimeout,
		modelTimeout: DefaultModelTimeout,
		now:          func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// catalog is loaded on the first valid item and reused for the rest of the batch.
type catalog struct {
	questions  model.QuestionList
	categories []string
}

// RunBatch claims and processes up to the batch limit of items, one at a time.
// Item failures are reported in the result; an error is returned only when the invocation
// cannot run at all, e.g. the question catalog is unreachable.
func (p *Processor) RunBatch(ctx context.Context) (*BatchResult, error) {
	if p.store == nil || p.queue == nil || p.completer == nil {
		return nil, ErrNotConfigured
	}
	if llm.IsDisabled(p.completer) {
		return nil, fmt.Errorf("%w: %v", ErrNotConfigured, llm.ErrModelDisabled)
	}

	started := time.Now()
	result := &BatchResult{Outcomes: []Outcome{}}
	defer func() {
		metrics.ObserveBatch(time.Since(started), result.Processed)
	}()

	var cat *catalog

	for i := 0; i < p.batchLimit; i++ {
		if err := ctx.Err(); err != nil {
			break
		}

		items, err := p.queue.Claim(ctx, 1, p.vt)
		if err != nil {
			result.ClaimErr = NewErrQueueClaim(err)
			zap.S().Named("worker").Warnw("stopping batch early", "error", result.ClaimErr)
			break
		}
		if len(items) == 0 {
			break
		}
		item := items[0]

		payload, err := item.Decode()
		if err != nil {
			p.discard(ctx, item, err)
			result.Discarded++
			continue
		}

		if cat == nil {
			cat, err = p.loadCatalog(ctx)
			if err != nil {
				return result, err
			}
		}

		outcome, counted := p.process(ctx, cat, item, payload)
		if !counted {
			result.Skipped++
			continue
		}
		result.add(outcome)
	}

	zap.S().Named("worker").Infow("batch finished",
		"processed", result.Processed,
		"succeeded", result.Succeeded(),
		"discarded", result.Discarded,
		"skipped", result.Skipped)

	return result, nil
}

func (p *Processor) loadCatalog(ctx context.Context) (*catalog, error) {
	questions, err := p.store.Question().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read question catalog: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrEmptyCatalog
	}
	return &catalog{questions: questions, categories: scoring.Categories(questions)}, nil
}

func (p *Processor) discard(ctx context.Context, item queue.Item, cause error) {
	logger := zap.S().Named("worker")
	logger.Warnw("discarding malformed queue item", "msg_id", item.MessageID, "error", cause)
	metrics.IncreaseItemsTotalMetric(metrics.OutcomeDiscarded)

	if err := p.queue.Delete(ctx, item.MessageID); err != nil {
		logger.Errorw("failed to delete malformed queue item", "msg_id", item.MessageID, "error", err)
	}
}

// process drives one item to a terminal state. counted is false when the item was a redelivery
// of a submission that is already terminal.
func (p *Processor) process(ctx context.Context, cat *catalog, item queue.Item, payload *queue.Payload) (Outcome, bool) {
	logger := log.NewDebugLogger("worker").
		WithContext(ctx).
		Operation("process_submission").
		WithUUID("submission_id", payload.SubmissionID).
		WithInt64("msg_id", item.MessageID).
		WithInt("read_ct", item.ReadCount).
		Build()

	outcome := Outcome{MessageID: item.MessageID, SubmissionID: payload.SubmissionID}

	err := p.store.Submission().UpdateStatus(ctx, payload.SubmissionID, store.SubmissionUpdate{
		Status:      model.SubmissionStatusProcessing,
		AllowedFrom: []model.SubmissionStatus{model.SubmissionStatusPending, model.SubmissionStatusProcessing},
	})
	if err != nil {
		var conflict *store.ErrStatusConflict
		if errors.As(err, &conflict) && conflict.Current.IsTerminal() {
			logger.Step("already_terminal").WithString("status", string(conflict.Current)).Log()
			p.skip(ctx, item)
			return outcome, false
		}
		return p.fail(ctx, logger, outcome, NewErrStoreWrite(payload.SubmissionID, string(model.SubmissionStatusProcessing), err)), true
	}
	logger.Step("marked_processing").Log()

	scores := p.engine.ComputeScores(cat.questions, payload.Responses)
	rendered := prompt.Render(prompt.FormatResponses(cat.questions, payload.Responses), cat.categories, scores)
	logger.Step("prompt_rendered").WithInt("categories", len(scores)).WithInt("prompt_size", len(rendered)).Log()

	// keep the item hidden for as long as the model may take
	if err := p.queue.SetVisibility(ctx, item.MessageID, p.modelTimeout+p.vt); err != nil {
		logger.Step("extend_visibility_failed").WithString("error", err.Error()).Log()
	}

	reply, err := p.complete(ctx, rendered)
	if err != nil {
		return p.fail(ctx, logger, outcome, NewErrModelCall(err)), true
	}
	logger.Step("model_replied").WithInt("reply_size", len(reply)).Log()

	scorecard, summary, err := prompt.Parse(reply, cat.categories)
	if err != nil {
		return p.fail(ctx, logger, outcome, err), true
	}
	scorecard.MergeScores(scores)

	encoded, err := scorecard.MarshalJSON()
	if err != nil {
		return p.fail(ctx, logger, outcome, err), true
	}

	processedAt := p.now()
	err = p.store.Submission().UpdateStatus(ctx, payload.SubmissionID, store.SubmissionUpdate{
		Status:      model.SubmissionStatusProcessed,
		AllowedFrom: []model.SubmissionStatus{model.SubmissionStatusProcessing},
		ProcessedAt: &processedAt,
		Summary:     &summary,
		Scores:      encoded,
	})
	if err != nil {
		var conflict *store.ErrStatusConflict
		if !errors.As(err, &conflict) || conflict.Current != model.SubmissionStatusProcessed {
			return p.fail(ctx, logger, outcome, NewErrStoreWrite(payload.SubmissionID, string(model.SubmissionStatusProcessed), err)), true
		}
		// a concurrent claim finished first; its result stands
		logger.Step("already_processed").Log()
	} else {
		logger.Step("persisted").Log()
	}

	if err := p.queue.Delete(ctx, item.MessageID); err != nil {
		outcome.Status = OutcomeFailed
		outcome.Err = NewErrQueueDelete(item.MessageID, err)
		logger.Error(outcome.Err).WithString("step", "delete_item").Log()
		metrics.IncreaseItemsTotalMetric(metrics.OutcomeFailed)
		return outcome, true
	}

	outcome.Status = OutcomeSuccess
	metrics.IncreaseItemsTotalMetric(metrics.OutcomeSuccess)
	p.publish(ctx, events.ProcessedMessageKind, events.SubmissionEvent{
		SubmissionID: payload.SubmissionID,
		Status:       string(model.SubmissionStatusProcessed),
		ProcessedAt:  processedAt,
		Scores:       scores,
	})
	logger.Success().Log()
	return outcome, true
}

func (p *Processor) complete(ctx context.Context, rendered string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.modelTimeout)
	defer cancel()

	started := time.Now()
	reply, err := p.completer.Complete(ctx, rendered)
	metrics.ObserveModelCall(time.Since(started))
	return reply, err
}

// fail marks the submission failed and deletes the item. Both steps are attempted even when
// the other one fails, and both run even if ctx was cancelled.
func (p *Processor) fail(ctx context.Context, logger *log.DebugLogger, outcome Outcome, cause error) Outcome {
	logger.Error(cause).Log()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	cleanup := &Cleanup{}
	message := cause.Error()
	processedAt := p.now()

	cleanup.StatusErr = p.store.Submission().UpdateStatus(ctx, outcome.SubmissionID, store.SubmissionUpdate{
		Status: model.SubmissionStatusFailed,
		AllowedFrom: []model.SubmissionStatus{
			model.SubmissionStatusPending,
			model.SubmissionStatusProcessing,
			model.SubmissionStatusFailed,
		},
		ProcessedAt:  &processedAt,
		ErrorMessage: &message,
	})
	if cleanup.StatusErr != nil {
		logger.Error(cleanup.StatusErr).WithString("step", "mark_failed").Log()
	}

	cleanup.DeleteErr = p.queue.Delete(ctx, outcome.MessageID)
	if cleanup.DeleteErr != nil {
		logger.Error(cleanup.DeleteErr).WithString("step", "delete_item").Log()
	}

	outcome.Status = OutcomeFailed
	outcome.Err = cause
	outcome.Cleanup = cleanup

	metrics.IncreaseItemsTotalMetric(metrics.OutcomeFailed)
	if cleanup.StatusErr == nil {
		p.publish(ctx, events.FailedMessageKind, events.SubmissionEvent{
			SubmissionID: outcome.SubmissionID,
			Status:       string(model.SubmissionStatusFailed),
			ProcessedAt:  processedAt,
			Error:        message,
		})
	}
	return outcome
}

func (p *Processor) skip(ctx context.Context, item queue.Item) {
	metrics.IncreaseItemsTotalMetric(metrics.OutcomeSkipped)
	if err := p.queue.Delete(ctx, item.MessageID); err != nil {
		zap.S().Named("worker").Errorw("failed to delete redelivered queue item", "msg_id", item.MessageID, "error", err)
	}
}

func (p *Processor) publish(ctx context.Context, kind string, ev events.SubmissionEvent) {
	if p.events == nil {
		return
	}
	if err := p.events.WriteSubmissionEvent(ctx, kind, ev); err != nil {
		zap.S().Named("worker").Warnw("failed to publish submission event", "kind", kind, "submission_id", ev.SubmissionID, "error", err)
	}
}
