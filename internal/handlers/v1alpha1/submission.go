package v1alpha1

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	api "github.com/policylens/survey-profiler/api/v1alpha1"
	"github.com/policylens/survey-profiler/internal/handlers/v1alpha1/mappers"
	"github.com/policylens/survey-profiler/internal/handlers/validator"
	"github.com/policylens/survey-profiler/internal/service"
	"github.com/policylens/survey-profiler/pkg/log"
)

// (POST /api/v1/submissions)
func (h *ServiceHandler) CreateSubmission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.NewDebugLogger("submission_handler").
		WithContext(ctx).
		Operation("create_submission").
		Build()

	var body api.SubmissionCreate
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		logger.Error(err).WithString("step", "decode_body").Log()
		respondError(w, r, http.StatusBadRequest, fmt.Sprintf("invalid body: %v", err))
		return
	}

	form := mappers.SubmissionFormFromApi(body)
	if err := h.validator.Struct(form); err != nil {
		logger.Error(err).WithString("step", "validate").Log()
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	logger.Step("validated").WithInt("responses", len(form.Responses)).Log()

	submission, err := h.submissionSrv.CreateSubmission(ctx, form.ToResponses())
	if err != nil {
		logger.Error(err).Log()
		var emptyErr *service.ErrEmptySubmission
		var unknownErr *service.ErrUnknownQuestion
		switch {
		case errors.As(err, &emptyErr), errors.As(err, &unknownErr):
			respondError(w, r, http.StatusBadRequest, err.Error())
		default:
			respondError(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to create submission: %v", err))
		}
		return
	}

	logger.Success().WithUUID("submission_id", submission.ID).Log()
	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, api.SubmissionAccepted{Id: submission.ID, Status: api.SubmissionStatus(submission.Status)})
}

// (GET /api/v1/submissions/{id})
func (h *ServiceHandler) GetSubmission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.NewDebugLogger("submission_handler").
		WithContext(ctx).
		Operation("get_submission").
		WithString("id", chi.URLParam(r, "id")).
		Build()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err == nil {
		err = h.validator.Struct(validator.SubmissionRef{ID: id})
	}
	if err != nil {
		logger.Error(err).WithString("step", "parse_id").Log()
		respondError(w, r, http.StatusBadRequest, "invalid submission id")
		return
	}

	submission, err := h.submissionSrv.GetSubmission(ctx, id)
	if err != nil {
		var notFound *service.ErrResourceNotFound
		if errors.As(err, &notFound) {
			respondError(w, r, http.StatusNotFound, err.Error())
			return
		}
		logger.Error(err).Log()
		respondError(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to get submission: %v", err))
		return
	}

	logger.Success().WithString("status", string(submission.Status)).Log()
	render.JSON(w, r, mappers.SubmissionToApi(*submission))
}

// (GET /api/v1/submissions)
func (h *ServiceHandler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.NewDebugLogger("submission_handler").
		WithContext(ctx).
		Operation("list_submissions").
		Build()

	query := r.URL.Query()
	status := query.Get("status")
	if status != "" {
		if _, ok := api.StringToSubmissionStatus(status); !ok {
			respondError(w, r, http.StatusBadRequest, fmt.Sprintf("unknown status %q", status))
			return
		}
	}

	limit, err := intParam(query.Get("limit"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid limit")
		return
	}
	offset, err := intParam(query.Get("offset"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid offset")
		return
	}

	submissions, err := h.submissionSrv.ListSubmissions(ctx, status, limit, offset)
	if err != nil {
		logger.Error(err).Log()
		respondError(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to list submissions: %v", err))
		return
	}

	logger.Success().WithInt("count", len(submissions)).Log()
	render.JSON(w, r, mappers.SubmissionListToApi(submissions))
}

// (POST /api/v1/submissions/process)
func (h *ServiceHandler) ProcessSubmissions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.NewDebugLogger("submission_handler").
		WithContext(ctx).
		Operation("process_submissions").
		Build()

	result, err := h.submissionSrv.ProcessBatch(ctx)
	if err != nil {
		logger.Error(err).Log()
		respondError(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to process submissions: %v", err))
		return
	}

	logger.Success().WithInt("processed", result.Processed).Log()
	render.JSON(w, r, mappers.BatchResultToApi(result))
}

func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
