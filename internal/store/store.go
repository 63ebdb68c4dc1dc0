package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/policylens/survey-profiler/internal/store/model"
)

type Store interface {
	NewTransactionContext(ctx context.Context) (context.Context, error)
	Submission() Submission
	Question() Question
	QueueMessage() QueueMessage
	InitialMigration(ctx context.Context) error
	Seed(ctx context.Context, questions model.QuestionList) error
	Statistics(ctx context.Context) (model.SubmissionStats, error)
	Close() error
}

type DataStore struct {
	db           *gorm.DB
	submission   Submission
	question     Question
	queueMessage QueueMessage
}

func NewStore(db *gorm.DB) Store {
	return &DataStore{
		submission:   NewSubmissionStore(db),
		question:     NewQuestionStore(db),
		queueMessage: NewQueueMessageStore(db),
		db:           db,
	}
}

func (s *DataStore) NewTransactionContext(ctx context.Context) (context.Context, error) {
	return newTransactionContext(ctx, s.db)
}

func (s *DataStore) Submission() Submission {
	return s.submission
}

func (s *DataStore) Question() Question {
	return s.question
}

func (s *DataStore) QueueMessage() QueueMessage {
	return s.queueMessage
}

// InitialMigration creates the schema with gorm's AutoMigrate. Postgres deployments use the
// goose migrations in pkg/migrations instead.
func (s *DataStore) InitialMigration(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(
		&model.Question{},
		&model.Submission{},
		&model.QueueMessage{},
	)
}

// Seed upserts the question catalog.
func (s *DataStore) Seed(ctx context.Context, questions model.QuestionList) error {
	if len(questions) == 0 {
		return nil
	}

	tx, err := newTransaction(s.db.WithContext(ctx))
	if err != nil {
		return err
	}

	if err := tx.tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"category", "prompt", "forward", "weight"}),
	}).Create(&questions).Error; err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (s *DataStore) Statistics(ctx context.Context) (model.SubmissionStats, error) {
	var rows []struct {
		Status model.SubmissionStatus
		Count  int64
	}
	if err := s.db.WithContext(ctx).
		Model(&model.Submission{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return model.SubmissionStats{}, err
	}

	stats := model.SubmissionStats{ByStatus: make(map[model.SubmissionStatus]int64, len(rows))}
	for _, r := range rows {
		stats.ByStatus[r.Status] = r.Count
		stats.Total += r.Count
	}
	return stats, nil
}

func (s *DataStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
