package mappers

import (
	api "github.com/policylens/survey-profiler/api/v1alpha1"
	"github.com/policylens/survey-profiler/internal/handlers/validator"
)

func SubmissionFormFromApi(body api.SubmissionCreate) validator.SubmissionForm {
	form := validator.SubmissionForm{}
	if body.Responses == nil {
		return form
	}
	form.Responses = make(map[string]validator.ResponseForm, len(body.Responses))
	for id, r := range body.Responses {
		form.Responses[id] = validator.ResponseForm{Rating: r.Rating, Explanation: r.Explanation}
	}
	return form
}
