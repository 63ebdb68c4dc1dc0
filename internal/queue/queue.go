// Package queue is the adapter over the named channel of pending submissions. Items are
// claimed with a visibility timeout and must be deleted to finalize them.
package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/policylens/survey-profiler/internal/store/model"
)

const DefaultName = "submissions"

var ErrMalformedItem = errors.New("malformed queue item")

// Payload is what intake enqueues for every accepted submission.
type Payload struct {
	SubmissionID uuid.UUID       `json:"submission_id"`
	Responses    model.Responses `json:"responses"`
	SubmittedAt  time.Time       `json:"submitted_at"`
}

// Item is a claimed message.
type Item struct {
	MessageID  int64
	ReadCount  int
	EnqueuedAt time.Time
	Body       json.RawMessage
}

// Decode validates the item shape. Both submission_id and responses must be present.
func (i Item) Decode() (*Payload, error) {
	var raw struct {
		SubmissionID *uuid.UUID       `json:"submission_id"`
		Responses    *model.Responses `json:"responses"`
		SubmittedAt  *time.Time       `json:"submitted_at"`
	}
	if len(bytes.TrimSpace(i.Body)) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedItem)
	}
	if err := json.Unmarshal(i.Body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedItem, err)
	}
	if raw.SubmissionID == nil || *raw.SubmissionID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing submission_id", ErrMalformedItem)
	}
	if raw.Responses == nil {
		return nil, fmt.Errorf("%w: missing responses", ErrMalformedItem)
	}

	p := &Payload{SubmissionID: *raw.SubmissionID, Responses: *raw.Responses}
	if raw.SubmittedAt != nil {
		p.SubmittedAt = *raw.SubmittedAt
	}
	return p, nil
}

type Queue interface {
	// Claim returns up to n visible items and hides them for vt. An empty queue is not an error.
	Claim(ctx context.Context, n int, vt time.Duration) ([]Item, error)
	// Delete finalizes an item. Deleting an item that is already gone succeeds.
	Delete(ctx context.Context, msgID int64) error
	// SetVisibility hides a claimed item for vt from now on.
	SetVisibility(ctx context.Context, msgID int64, vt time.Duration) error
	Send(ctx context.Context, payload Payload) (int64, error)
}
