package validator

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/policylens/survey-profiler/internal/store/model"
)

// SubmissionForm is the intake request body. Keys are question ids.
type SubmissionForm struct {
	Responses map[string]ResponseForm `json:"responses" validate:"required,min=1,dive,keys,question_id,endkeys"`
}

type ResponseForm struct {
	Rating      *int    `json:"rating" validate:"required,rating"`
	Explanation *string `json:"explanation,omitempty" validate:"omitempty,max=4000"`
}

// ToResponses converts a validated form.
func (f SubmissionForm) ToResponses() model.Responses {
	responses := make(model.Responses, len(f.Responses))
	for key, r := range f.Responses {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil || r.Rating == nil {
			continue
		}
		responses[id] = model.RawResponse{Rating: *r.Rating, Explanation: r.Explanation}
	}
	return responses
}

// SubmissionRef validates a submission id taken from the URL.
type SubmissionRef struct {
	ID uuid.UUID `validate:"submission_id"`
}
