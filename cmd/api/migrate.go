package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"smart-tasks-backend/internal/config"
	"smart-tasks-backend/internal/db"
	"smart-tasks-backend/internal/logging"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx := cmd.Context()
			database, err := db.Connect(ctx, cfg.DBDriver, cfg.DSN())
			if err != nil {
				return fmt.Errorf("connect %s: %w", cfg.DBDriver, err)
			}
			defer database.Close()

			if err := db.Migrate(ctx, database, cfg.DBDriver); err != nil {
				return err
			}
			logger.Info("schema migrated", zap.String("driver", cfg.DBDriver))
			return nil
		},
	}
}
