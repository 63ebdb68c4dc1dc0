package log

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/policylens/survey-profiler/pkg/requestid"
)

// Logger logs one line per request once the handler returns. 5xx log at error, 4xx at warn,
// probes of /health and /metrics at debug and everything else at info.
func Logger(l *zap.Logger, name string) func(next http.Handler) http.Handler {
	if l == nil {
		panic("log.Logger received a nil *zap.Logger")
	}

	logger := l.Named(name)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				status := ww.Status()
				ce := logger.Check(requestLevel(r, status), "http request completed")
				if ce == nil {
					return
				}

				ce.Write(
					zap.String("request_id", requestID(r)),
					zap.String("http_method", r.Method),
					zap.String("http_path", r.URL.Path),
					zap.String("http_route", routePattern(r)),
					zap.Int("http_status_code", status),
					zap.String("http_status_text", http.StatusText(status)),
					zap.Int("response_bytes", ww.BytesWritten()),
					zap.Duration("latency", time.Since(start)),
					zap.String("remote_addr", r.RemoteAddr),
					zap.String("user_agent", r.UserAgent()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// ConditionalLogger returns Logger only when logLevel is debug or trace, a pass-through otherwise.
func ConditionalLogger(logLevel string, l *zap.Logger, name string) func(next http.Handler) http.Handler {
	if l == nil {
		panic("log.ConditionalLogger received a nil *zap.Logger")
	}

	switch strings.ToLower(logLevel) {
	case "debug", "trace":
		l.Named(name).Info("HTTP request logging enabled")
		return Logger(l, name)
	default:
		l.Named(name).Info("HTTP request logging disabled")
		return func(next http.Handler) http.Handler { return next }
	}
}

func requestLevel(r *http.Request, status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	case isHealthCheck(r.Method, r.URL.Path):
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

func requestID(r *http.Request) string {
	if id := requestid.FromRequest(r); id != "" {
		return id
	}
	return middleware.GetReqID(r.Context())
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}

func isHealthCheck(method string, path string) bool {
	return method == http.MethodGet && (path == "/health" || path == "/metrics")
}
