package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/policylens/survey-profiler/internal/queue"
	"github.com/policylens/survey-profiler/internal/store"
	"github.com/policylens/survey-profiler/internal/store/model"
	"github.com/policylens/survey-profiler/internal/worker"
)

type SubmissionService struct {
	store  store.Store
	queue  queue.Queue
	runner worker.BatchRunner
}

func NewSubmissionService(s store.Store, q queue.Queue, runner worker.BatchRunner) *SubmissionService {
	return &SubmissionService{store: s, queue: q, runner: runner}
}

// CreateSubmission stores a pending submission and enqueues it for the worker.
// With the table queue both writes share one transaction.
func (s *SubmissionService) CreateSubmission(ctx context.Context, responses model.Responses) (*model.Submission, error) {
	if len(responses) == 0 {
		return nil, NewErrEmptySubmission()
	}

	if err := s.checkQuestions(ctx, responses); err != nil {
		return nil, err
	}

	var (
		submission *model.Submission
		msgID      int64
	)
	err := store.WithTransaction(ctx, s.store, func(ctx context.Context) error {
		var err error
		submission, err = s.store.Submission().Create(ctx, model.Submission{
			ID:          uuid.New(),
			Status:      model.SubmissionStatusPending,
			SubmittedAt: time.Now().UTC(),
			Responses:   model.MakeJSONField(responses),
		})
		if err != nil {
			return err
		}

		msgID, err = s.queue.Send(ctx, queue.Payload{
			SubmissionID: submission.ID,
			Responses:    responses,
			SubmittedAt:  submission.SubmittedAt,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	zap.S().Named("submission_service").Infow("submission queued", "submission_id", submission.ID, "msg_id", msgID)
	return submission, nil
}

func (s *SubmissionService) checkQuestions(ctx context.Context, responses model.Responses) error {
	questions, err := s.store.Question().List(ctx)
	if err != nil {
		return err
	}

	known := make(map[int64]struct{}, len(questions))
	for _, q := range questions {
		known[q.ID] = struct{}{}
	}

	var unknown []int64
	for id := range responses {
		if _, ok := known[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })
		return NewErrUnknownQuestion(unknown)
	}
	return nil
}

func (s *SubmissionService) GetSubmission(ctx context.Context, id uuid.UUID) (*model.Submission, error) {
	submission, err := s.store.Submission().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrSubmissionNotFound(id)
		}
		return nil, err
	}
	return submission, nil
}

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

func (s *SubmissionService) ListSubmissions(ctx context.Context, status string, limit, offset int) (model.SubmissionList, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)
	offset = max(offset, 0)

	filter := store.NewSubmissionQueryFilter()
	if status != "" {
		filter = filter.ByStatus(model.SubmissionStatus(status))
	}
	opts := store.NewSubmissionQueryOptions().WithLimit(limit).WithOffset(offset)
	return s.store.Submission().List(ctx, filter, opts)
}

// ProcessBatch runs one worker invocation in the caller's goroutine.
func (s *SubmissionService) ProcessBatch(ctx context.Context) (*worker.BatchResult, error) {
	if s.runner == nil {
		return nil, worker.ErrNotConfigured
	}
	return s.runner.RunBatch(ctx)
}
