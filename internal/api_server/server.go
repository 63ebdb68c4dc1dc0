package apiserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/policylens/survey-profiler/internal/config"
	handlers "github.com/policylens/survey-profiler/internal/handlers/v1alpha1"
	"github.com/policylens/survey-profiler/internal/service"
	"github.com/policylens/survey-profiler/pkg/log"
	"github.com/policylens/survey-profiler/pkg/metrics"
	"github.com/policylens/survey-profiler/pkg/middleware"
)

const (
	gracefulShutdownTimeout = 5 * time.Second
)

type Server struct {
	cfg               *config.Config
	submissionService *service.SubmissionService
	listener          net.Listener
}

// New returns a new instance of the survey profiler api server.
func New(
	cfg *config.Config,
	submissionService *service.SubmissionService,
	listener net.Listener,
) *Server {
	return &Server{
		cfg:               cfg,
		submissionService: submissionService,
		listener:          listener,
	}
}

// NewRouter wires the middleware chain and the v1 routes. Metric collectors of the
// request middleware are registered by Run, not here.
func NewRouter(cfg *config.Config, submissionService *service.SubmissionService, metricMiddleware *metrics.Middleware) chi.Router {
	router := chi.NewRouter()

	if metricMiddleware != nil {
		router.Use(metricMiddleware.Handler)
	}
	router.Use(
		cors.Handler(cors.Options{
			AllowedOrigins: cfg.Service.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "HEAD", "OPTIONS"},
			AllowedHeaders: []string{"*"},
			MaxAge:         300,
		}),
		middleware.RequestID,
		log.ConditionalLogger(cfg.Service.LogLevel, zap.L(), "router_api"),
		chiMiddleware.Recoverer,
	)

	h := handlers.NewServiceHandler(submissionService, cfg.Worker.RatingMin, cfg.Worker.RatingMax)
	handlers.HandlerFromMux(h, router)
	router.Handle("/metrics", metrics.NewPrometheusMetricsHandler())

	return router
}

func (s *Server) Run(ctx context.Context) error {
	zap.S().Named("api_server").Info("Initializing API server")

	metricMiddleware := metrics.NewMiddleware("api_server")
	metricMiddleware.MustRegisterDefault()

	router := NewRouter(s.cfg, s.submissionService, metricMiddleware)
	srv := http.Server{Addr: s.cfg.Service.Address, Handler: router}

	go func() {
		<-ctx.Done()
		zap.S().Named("api_server").Infof("Shutdown signal received: %s", ctx.Err())
		ctxTimeout, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()

		srv.SetKeepAlivesEnabled(false)
		_ = srv.Shutdown(ctxTimeout)
		zap.S().Named("api_server").Info("api server terminated")
	}()

	zap.S().Named("api_server").Infof("Listening on %s...", s.listener.Addr().String())
	if err := srv.Serve(s.listener); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}

	return nil
}
