package store

import (
	"github.com/policylens/survey-profiler/internal/store/model"
	"gorm.io/gorm"
)

type BaseQuerier struct {
	QueryFn []func(tx *gorm.DB) *gorm.DB
}

type SubmissionQueryFilter BaseQuerier

func NewSubmissionQueryFilter() *SubmissionQueryFilter {
	return &SubmissionQueryFilter{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (f *SubmissionQueryFilter) ByStatus(statuses ...model.SubmissionStatus) *SubmissionQueryFilter {
	f.QueryFn = append(f.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("status IN ?", statuses)
	})
	return f
}

type SubmissionQueryOptions BaseQuerier

func NewSubmissionQueryOptions() *SubmissionQueryOptions {
	return &SubmissionQueryOptions{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

// Limit results
func (o *SubmissionQueryOptions) WithLimit(limit int) *SubmissionQueryOptions {
	o.QueryFn = append(o.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Limit(limit)
	})
	return o
}

// Offset results
func (o *SubmissionQueryOptions) WithOffset(offset int) *SubmissionQueryOptions {
	o.QueryFn = append(o.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Offset(offset)
	})
	return o
}
