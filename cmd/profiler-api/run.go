package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	apiserver "github.com/policylens/survey-profiler/internal/api_server"
	"github.com/policylens/survey-profiler/internal/service"
	"github.com/policylens/survey-profiler/internal/worker"
	"github.com/policylens/survey-profiler/pkg/metrics"
)

const (
	schedulerRiver  = "river"
	schedulerTicker = "ticker"
	schedulerNone   = "none"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the profiler api and the submission worker",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, done, err := setup()
		if err != nil {
			return err
		}
		defer done()

		zap.S().Info("Starting API service")
		defer zap.S().Info("API service stopped")

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
		defer cancel()

		s, _, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		if cfg.Database.Type != "pgsql" {
			if err := s.InitialMigration(ctx); err != nil {
				return fmt.Errorf("running initial migration: %w", err)
			}
			if questions, err := loadQuestions(cfg.Service.QuestionsFile); err == nil {
				if err := s.Seed(ctx, questions); err != nil {
					return fmt.Errorf("seeding questions: %w", err)
				}
			} else if !errors.Is(err, os.ErrNotExist) {
				return err
			}
		}

		pool, err := newPgxPool(ctx, cfg)
		if err != nil {
			return err
		}
		if pool != nil {
			defer pool.Close()
		}

		p, err := newPipeline(ctx, cfg, s, pool)
		if err != nil {
			return err
		}
		defer p.Close()

		if err := metrics.RegisterSubmissionCollector(s); err != nil {
			return fmt.Errorf("registering submission collector: %w", err)
		}

		g, gctx := errgroup.WithContext(ctx)

		scheduler := cfg.Worker.Scheduler
		if scheduler == schedulerRiver && pool == nil {
			zap.S().Warn("river needs postgres, falling back to the ticker scheduler")
			scheduler = schedulerTicker
		}

		switch scheduler {
		case schedulerRiver:
			riverClient, err := worker.NewRiverClient(pool, p.processor, cfg.Worker.Interval)
			if err != nil {
				return err
			}
			if err := riverClient.Start(gctx); err != nil {
				return fmt.Errorf("failed to start river: %w", err)
			}
			defer func() {
				stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer stopCancel()
				if err := riverClient.Stop(stopCtx); err != nil {
					zap.S().Warnw("failed to stop river client", "error", err)
				}
			}()
			zap.S().Info("River periodic job scheduled")
		case schedulerTicker:
			ticker := worker.NewTicker(p.processor, cfg.Worker.Interval)
			g.Go(func() error {
				ticker.Run(gctx)
				return nil
			})
		case schedulerNone:
			zap.S().Info("no scheduler, batches run on demand only")
		default:
			return fmt.Errorf("unknown scheduler %q", cfg.Worker.Scheduler)
		}

		listener, err := newListener(cfg.Service.Address)
		if err != nil {
			return fmt.Errorf("creating listener: %w", err)
		}
		srv := service.NewSubmissionService(s, p.queue, p.processor)
		server := apiserver.New(cfg, srv, listener)
		g.Go(func() error {
			return server.Run(gctx)
		})

		if cfg.Service.MetricsAddress != "" {
			metricsListener, err := newListener(cfg.Service.MetricsAddress)
			if err != nil {
				return fmt.Errorf("creating metrics listener: %w", err)
			}
			metricServer := apiserver.NewMetricServer(cfg.Service.MetricsAddress, metricsListener)
			g.Go(func() error {
				return metricServer.Run(gctx)
			})
		}

		return g.Wait()
	},
}
