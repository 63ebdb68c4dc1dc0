package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/policylens/survey-profiler/pkg/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the db",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, done, err := setup()
		if err != nil {
			return err
		}
		defer done()
		defer zap.S().Info("Db migrated")

		ctx := context.Background()

		s, db, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		if cfg.Database.Type != "pgsql" || cfg.Service.MigrationFolder == "" {
			zap.S().Info("running initial migration")
			return s.InitialMigration(ctx)
		}

		pool, err := newPgxPool(ctx, cfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		return migrations.MigrateStore(ctx, db, cfg.Service.MigrationFolder, pool)
	},
}
