package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Spok95/paintstock-bot/internal/bot"
	"github.com/Spok95/paintstock-bot/internal/config"
	"github.com/Spok95/paintstock-bot/internal/dialog"
	"github.com/Spok95/paintstock-bot/internal/domain/inventory"
	"github.com/Spok95/paintstock-bot/internal/infra/db"
	httpx "github.com/Spok95/paintstock-bot/internal/infra/http"
	"github.com/Spok95/paintstock-bot/internal/infra/logger"
	"github.com/Spok95/paintstock-bot/internal/infra/metrics"
	"github.com/Spok95/paintstock-bot/internal/pkg/clock"
)

var cfgFile string

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "paintbot",
		Short:         "🎨 Telegram-бот учета порошковой краски",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runBot,
	}
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "config/config.yaml", "config file (missing file is ignored)")

	cmd.AddCommand(migrateCmd())
	cmd.AddCommand(exportCmd())
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openStorage открывает БД и накатывает миграции.
func openStorage(ctx context.Context, cfg config.Config, log *slog.Logger) (*sql.DB, error) {
	sqlDB, err := db.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(ctx, sqlDB, cfg.Database.Driver, log); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return sqlDB, nil
}

func runBot(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if errors.Is(err, config.ErrNoToken) {
		return errors.New("❌ BOT_TOKEN не установлен")
	}
	if err != nil {
		return err
	}

	log := logger.New(cfg.App.Env, cfg.App.LogFormat)
	ctx := cmd.Context()

	sqlDB, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Error("storage init failed", "err", err)
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	log.Info("db ready", "driver", cfg.Database.Driver)

	clk := clock.NewReal()
	states := dialog.NewStore(cfg.Dialog.TTL, clk)
	b := bot.New(nil, log, inventory.NewRepo(sqlDB, clk), states, clk)

	connect := func(context.Context) (bot.API, error) {
		api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
		if err != nil {
			return nil, err
		}
		log.Info("authorized", "username", api.Self.UserName)
		return api, nil
	}

	srv := httpx.New(cfg.HTTPAddr(), cfg.Metrics.Enabled)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("HTTP server started", "addr", cfg.HTTPAddr(), "metrics", cfg.Metrics.Enabled)
		return srv.Start()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		pollTimeout := int(cfg.Telegram.PollTimeout / time.Second)
		return b.RunForever(gctx, connect, pollTimeout, cfg.Telegram.RestartBackoff)
	})
	if cfg.Dialog.SweepInterval > 0 {
		g.Go(func() error {
			return states.RunJanitor(gctx, cfg.Dialog.SweepInterval, func(active int) {
				metrics.DialogSessions.Set(float64(active))
			})
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("bot stopped with error", "err", err)
		return err
	}
	log.Info("graceful shutdown complete")
	return nil
}
