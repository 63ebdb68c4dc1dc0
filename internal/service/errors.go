package service

import (
	"fmt"

	"github.com/google/uuid"
)

type ErrResourceNotFound struct {
	error
}

func NewErrResourceNotFound(id uuid.UUID, resourceType string) *ErrResourceNotFound {
	return &ErrResourceNotFound{fmt.Errorf("%s %s not found", resourceType, id)}
}

func NewErrSubmissionNotFound(id uuid.UUID) *ErrResourceNotFound {
	return NewErrResourceNotFound(id, "submission")
}

type ErrEmptySubmission struct {
	error
}

func NewErrEmptySubmission() *ErrEmptySubmission {
	return &ErrEmptySubmission{fmt.Errorf("bad request: submission has no responses")}
}

type ErrUnknownQuestion struct {
	error
}

func NewErrUnknownQuestion(ids []int64) *ErrUnknownQuestion {
	return &ErrUnknownQuestion{fmt.Errorf("bad request: unknown question ids %v", ids)}
}
