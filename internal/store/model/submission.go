package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type SubmissionStatus string

const (
	SubmissionStatusPending    SubmissionStatus = "pending"
	SubmissionStatusProcessing SubmissionStatus = "processing"
	SubmissionStatusProcessed  SubmissionStatus = "processed"
	SubmissionStatusFailed     SubmissionStatus = "failed"
)

func (s SubmissionStatus) IsTerminal() bool {
	return s == SubmissionStatusProcessed || s == SubmissionStatusFailed
}

// RawResponse is the answer to a single question.
type RawResponse struct {
	Rating      int     `json:"rating"`
	Explanation *string `json:"explanation,omitempty"`
}

// Responses maps question ids to answers.
type Responses map[int64]RawResponse

type Submission struct {
	ID           uuid.UUID             `gorm:"primaryKey;column:id;type:VARCHAR(255);"`
	Status       SubmissionStatus      `gorm:"not null;type:VARCHAR(20);index:submissions_status_idx"`
	SubmittedAt  time.Time             `gorm:"not null"`
	ProcessedAt  *time.Time
	UpdatedAt    time.Time
	Responses    *JSONField[Responses] `gorm:"type:jsonb;not null"`
	Summary      *string               `gorm:"type:TEXT"`
	Scores       []byte                `gorm:"type:jsonb"`
	ErrorMessage *string               `gorm:"type:TEXT"`
}

type SubmissionList []Submission

func (s Submission) String() string {
	val, _ := json.Marshal(s)
	return string(val)
}

// SubmissionStats is used by the metrics collector.
type SubmissionStats struct {
	Total    int64
	ByStatus map[SubmissionStatus]int64
}
