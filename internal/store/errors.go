package store

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/policylens/survey-profiler/internal/store/model"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateKey   = errors.New("already exists")
)

// ErrStatusConflict is returned when a status update is refused because the submission is
// not in one of the allowed source statuses.
type ErrStatusConflict struct {
	ID      uuid.UUID
	Current model.SubmissionStatus
	Target  model.SubmissionStatus
}

func (e *ErrStatusConflict) Error() string {
	return fmt.Sprintf("submission %s cannot move from %q to %q", e.ID, e.Current, e.Target)
}
