package v1alpha1

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Error is the body of every non-2xx response.
type Error struct {
	Message   string  `json:"message"`
	RequestId *string `json:"requestId,omitempty"`
}

type SubmissionCreate struct {
	Responses map[string]Response `json:"responses"`
}

type Response struct {
	Rating      *int    `json:"rating"`
	Explanation *string `json:"explanation,omitempty"`
}

type SubmissionAccepted struct {
	Id     uuid.UUID        `json:"id"`
	Status SubmissionStatus `json:"status"`
}

type Submission struct {
	Id           uuid.UUID        `json:"id"`
	Status       SubmissionStatus `json:"status"`
	SubmittedAt  time.Time        `json:"submittedAt"`
	ProcessedAt  *time.Time       `json:"processedAt,omitempty"`
	Summary      *string          `json:"summary,omitempty"`
	Scores       json.RawMessage  `json:"scores,omitempty"`
	ErrorMessage *string          `json:"errorMessage,omitempty"`
}

type SubmissionList []Submission

type ItemOutcome struct {
	SubmissionId uuid.UUID `json:"submission_id"`
	Status       string    `json:"status"`
	Error        *string   `json:"error,omitempty"`
}

type BatchResult struct {
	Processed int           `json:"processed"`
	Outcomes  []ItemOutcome `json:"outcomes"`
}
