package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/policylens/survey-profiler/internal/handlers/v1alpha1/mappers"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Run one batch of submission processing and print the result",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, done, err := setup()
		if err != nil {
			return err
		}
		defer done()

		ctx := context.Background()

		s, _, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

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

		result, err := p.processor.RunBatch(ctx)
		if err != nil {
			return err
		}
		if result.ClaimErr != nil {
			zap.S().Warnw("batch stopped early", "error", result.ClaimErr)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(mappers.BatchResultToApi(result))
	},
}
