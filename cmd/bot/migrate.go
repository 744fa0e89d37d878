package main

import (
	"github.com/spf13/cobra"

	"github.com/Spok95/paintstock-bot/internal/config"
	"github.com/Spok95/paintstock-bot/internal/infra/logger"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Применить миграции схемы и выйти",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadStorage(cfgFile)
			if err != nil {
				return err
			}
			log := logger.New(cfg.App.Env, cfg.App.LogFormat)

			sqlDB, err := openStorage(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			log.Info("migrations applied", "driver", cfg.Database.Driver)
			return sqlDB.Close()
		},
	}
}
