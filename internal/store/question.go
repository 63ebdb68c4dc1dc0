package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/policylens/survey-profiler/internal/store/model"
)

type Question interface {
	// List returns the catalog ordered by id ascending.
	List(ctx context.Context) (model.QuestionList, error)
}

type QuestionStore struct {
	db *gorm.DB
}

// Make sure we conform to Question interface
var _ Question = (*QuestionStore)(nil)

func NewQuestionStore(db *gorm.DB) Question {
	return &QuestionStore{db: db}
}

func (q *QuestionStore) List(ctx context.Context) (model.QuestionList, error) {
	var questions model.QuestionList
	if err := q.getDB(ctx).Order("id ASC").Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (q *QuestionStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return q.db.WithContext(ctx)
}
