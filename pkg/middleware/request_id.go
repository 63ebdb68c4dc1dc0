package middleware

import (
	"net/http"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/policylens/survey-profiler/pkg/requestid"
)

// RequestID takes the id from the X-Request-Id header, then from chi's own middleware, and
// generates one otherwise. The id is stored with requestid.ToContext and echoed on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestid.Header)
		if !requestid.Valid(id) {
			id = chiMiddleware.GetReqID(r.Context())
		}
		if !requestid.Valid(id) {
			id = requestid.Generate()
		}

		w.Header().Set(requestid.Header, id)
		next.ServeHTTP(w, r.WithContext(requestid.ToContext(r.Context(), id)))
	})
}
