package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Spok95/paintstock-bot/internal/config"
	"github.com/Spok95/paintstock-bot/internal/domain/inventory"
	"github.com/Spok95/paintstock-bot/internal/infra/logger"
	"github.com/Spok95/paintstock-bot/internal/pkg/clock"
	"github.com/Spok95/paintstock-bot/internal/report"
)

func exportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Выгрузить остатки склада в .xlsx",
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
			defer func() { _ = sqlDB.Close() }()

			clk := clock.NewReal()
			paints, err := inventory.NewRepo(sqlDB, clk).ListAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("list stock: %w", err)
			}
			data, err := report.StockWorkbook(paints)
			if err != nil {
				return err
			}

			if out == "" {
				out = report.StockFileName(clk.Now())
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			log.Info("stock exported", "file", out, "paints", len(paints))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stock_YYYYMMDD_HHMMSS.xlsx)")
	return cmd
}
