package worker

import (
	"encoding/json"

	"github.com/google/uuid"
)

type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeFailed  OutcomeStatus = "failed"
)

// Cleanup reports the two best-effort steps of the failure handler separately.
// A nil field means the step succeeded.
type Cleanup struct {
	StatusErr error
	DeleteErr error
}

// Outcome is the result of one counted queue item.
type Outcome struct {
	MessageID    int64
	SubmissionID uuid.UUID
	Status       OutcomeStatus
	Err          error
	// Cleanup is set only when the failure handler ran.
	Cleanup *Cleanup
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	out := struct {
		SubmissionID uuid.UUID     `json:"submission_id"`
		Status       OutcomeStatus `json:"status"`
		Error        string        `json:"error,omitempty"`
	}{
		SubmissionID: o.SubmissionID,
		Status:       o.Status,
	}
	if o.Err != nil {
		out.Error = o.Err.Error()
	}
	return json.Marshal(out)
}

// BatchResult is what one invocation returns.
type BatchResult struct {
	// Processed counts success and failed outcomes.
	Processed int       `json:"processed"`
	Outcomes  []Outcome `json:"outcomes"`
	// Discarded counts malformed items that were deleted.
	Discarded int `json:"discarded"`
	// Skipped counts redelivered items whose submission was already terminal.
	Skipped  int   `json:"skipped"`
	ClaimErr error `json:"-"`
}

func (r *BatchResult) add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	r.Processed++
}

func (r *BatchResult) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == OutcomeSuccess {
			n++
		}
	}
	return n
}
