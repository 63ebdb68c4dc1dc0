package worker

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNotConfigured = errors.New("worker is not configured")
	ErrEmptyCatalog  = errors.New("question catalog is empty")
)

// ErrQueueClaim stops the batch early. It is reported in the batch result, not returned.
type ErrQueueClaim struct {
	error
}

func NewErrQueueClaim(err error) *ErrQueueClaim {
	return &ErrQueueClaim{fmt.Errorf("failed to claim queue item: %w", err)}
}

func (e *ErrQueueClaim) Unwrap() error { return errors.Unwrap(e.error) }

type ErrStoreWrite struct {
	error
}

func NewErrStoreWrite(id uuid.UUID, status string, err error) *ErrStoreWrite {
	return &ErrStoreWrite{fmt.Errorf("failed to mark submission %s %s: %w", id, status, err)}
}

func (e *ErrStoreWrite) Unwrap() error { return errors.Unwrap(e.error) }

type ErrModelCall struct {
	error
}

func NewErrModelCall(err error) *ErrModelCall {
	return &ErrModelCall{fmt.Errorf("model call failed: %w", err)}
}

func (e *ErrModelCall) Unwrap() error { return errors.Unwrap(e.error) }

// ErrQueueDelete is reported when the item could not be removed after its submission was finalized.
type ErrQueueDelete struct {
	error
}

func NewErrQueueDelete(msgID int64, err error) *ErrQueueDelete {
	return &ErrQueueDelete{fmt.Errorf("failed to delete queue item %d: %w", msgID, err)}
}

func (e *ErrQueueDelete) Unwrap() error { return errors.Unwrap(e.error) }
