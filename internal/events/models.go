package events

import (
	"time"

	"github.com/google/uuid"
)

// SubmissionEvent is published once a submission reaches a terminal status.
type SubmissionEvent struct {
	SubmissionID uuid.UUID          `json:"submission_id"`
	Status       string             `json:"status"`
	ProcessedAt  time.Time          `json:"processed_at"`
	Scores       map[string]float64 `json:"scores,omitempty"`
	Error        string             `json:"error,omitempty"`
}
