package v1alpha1

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	api "github.com/policylens/survey-profiler/api/v1alpha1"
	"github.com/policylens/survey-profiler/internal/handlers/validator"
	"github.com/policylens/survey-profiler/internal/service"
	"github.com/policylens/survey-profiler/pkg/requestid"
)

type ServiceHandler struct {
	submissionSrv *service.SubmissionService
	validator     *validator.Validator
}

func NewServiceHandler(submissionService *service.SubmissionService, ratingMin, ratingMax int) *ServiceHandler {
	v := validator.NewValidator()
	v.Register(validator.NewSubmissionValidationRules(ratingMin, ratingMax)...)

	return &ServiceHandler{
		submissionSrv: submissionService,
		validator:     v,
	}
}

// HandlerFromMux mounts the v1 routes on r.
func HandlerFromMux(h *ServiceHandler, r chi.Router) {
	r.Get("/health", h.Health)
	r.Route("/api/v1/submissions", func(r chi.Router) {
		r.Post("/", h.CreateSubmission)
		r.Get("/", h.ListSubmissions)
		r.Post("/process", h.ProcessSubmissions)
		r.Get("/{id}", h.GetSubmission)
	})
}

func respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, api.Error{Message: message, RequestId: requestid.FromContextPtr(r.Context())})
}
