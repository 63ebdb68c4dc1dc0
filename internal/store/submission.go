package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/policylens/survey-profiler/internal/store/model"
)

type Submission interface {
	Create(ctx context.Context, submission model.Submission) (*model.Submission, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Submission, error)
	List(ctx context.Context, filter *SubmissionQueryFilter, opts *SubmissionQueryOptions) (model.SubmissionList, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, update SubmissionUpdate) error
}

// SubmissionUpdate describes a status transition and the terminal fields written with it.
// When AllowedFrom is not empty the update only applies if the current status is one of them,
// otherwise ErrStatusConflict is returned.
type SubmissionUpdate struct {
	Status       model.SubmissionStatus
	AllowedFrom  []model.SubmissionStatus
	ProcessedAt  *time.Time
	Summary      *string
	Scores       []byte
	ErrorMessage *string
}

type SubmissionStore struct {
	db *gorm.DB
}

// Make sure we conform to Submission interface
var _ Submission = (*SubmissionStore)(nil)

func NewSubmissionStore(db *gorm.DB) Submission {
	return &SubmissionStore{db: db}
}

func (s *SubmissionStore) Create(ctx context.Context, submission model.Submission) (*model.Submission, error) {
	if submission.Status == "" {
		submission.Status = model.SubmissionStatusPending
	}
	if submission.SubmittedAt.IsZero() {
		submission.SubmittedAt = time.Now().UTC()
	}

	result := s.getDB(ctx).Clauses(clause.Returning{}).Create(&submission)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateKey
		}
		return nil, result.Error
	}
	return &submission, nil
}

func (s *SubmissionStore) Get(ctx context.Context, id uuid.UUID) (*model.Submission, error) {
	var submission model.Submission
	result := s.getDB(ctx).First(&submission, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &submission, nil
}

func (s *SubmissionStore) List(ctx context.Context, filter *SubmissionQueryFilter, opts *SubmissionQueryOptions) (model.SubmissionList, error) {
	var submissions model.SubmissionList
	tx := s.getDB(ctx).Model(&submissions).Order("submitted_at DESC")

	if filter != nil {
		for _, fn := range filter.QueryFn {
			tx = fn(tx)
		}
	}
	if opts != nil {
		for _, fn := range opts.QueryFn {
			tx = fn(tx)
		}
	}

	result := tx.Find(&submissions)
	if result.Error != nil {
		return nil, result.Error
	}
	return submissions, nil
}

func (s *SubmissionStore) UpdateStatus(ctx context.Context, id uuid.UUID, update SubmissionUpdate) error {
	values := map[string]any{
		"status":     update.Status,
		"updated_at": time.Now().UTC(),
	}
	if update.ProcessedAt != nil {
		values["processed_at"] = update.ProcessedAt.UTC()
	}
	if update.Summary != nil {
		values["summary"] = *update.Summary
	}
	if update.Scores != nil {
		values["scores"] = update.Scores
	}
	if update.ErrorMessage != nil {
		values["error_message"] = *update.ErrorMessage
	}

	tx := s.getDB(ctx).Model(&model.Submission{}).Where("id = ?", id)
	if len(update.AllowedFrom) > 0 {
		tx = tx.Where("status IN ?", update.AllowedFrom)
	}

	result := tx.Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return &ErrStatusConflict{ID: id, Current: current.Status, Target: update.Status}
}

func (s *SubmissionStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return s.db.WithContext(ctx)
}
