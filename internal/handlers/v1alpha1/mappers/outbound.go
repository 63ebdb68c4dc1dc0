package mappers

import (
	api "github.com/policylens/survey-profiler/api/v1alpha1"
	"github.com/policylens/survey-profiler/internal/store/model"
	"github.com/policylens/survey-profiler/internal/worker"
)

func SubmissionToApi(s model.Submission) api.Submission {
	sub := api.Submission{
		Id:           s.ID,
		Status:       api.SubmissionStatus(s.Status),
		SubmittedAt:  s.SubmittedAt,
		ProcessedAt:  s.ProcessedAt,
		Summary:      s.Summary,
		ErrorMessage: s.ErrorMessage,
	}
	if len(s.Scores) > 0 {
		sub.Scores = s.Scores
	}
	return sub
}

func SubmissionListToApi(submissions model.SubmissionList) api.SubmissionList {
	list := make(api.SubmissionList, 0, len(submissions))
	for _, s := range submissions {
		list = append(list, SubmissionToApi(s))
	}
	return list
}

func BatchResultToApi(r *worker.BatchResult) api.BatchResult {
	result := api.BatchResult{Processed: r.Processed, Outcomes: make([]api.ItemOutcome, 0, len(r.Outcomes))}
	for _, o := range r.Outcomes {
		item := api.ItemOutcome{SubmissionId: o.SubmissionID, Status: string(o.Status)}
		if o.Err != nil {
			msg := o.Err.Error()
			item.Error = &msg
		}
		result.Outcomes = append(result.Outcomes, item)
	}
	return result
}
