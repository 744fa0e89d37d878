package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/paintstock-bot/internal/dialog"
	"github.com/Spok95/paintstock-bot/internal/domain/inventory"
	"github.com/Spok95/paintstock-bot/internal/infra/metrics"
	"github.com/Spok95/paintstock-bot/internal/pkg/clock"
)

// API: методы tgbotapi.BotAPI, которые использует бот.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Connector создаёт новое подключение к Telegram. Вызывается на каждый перезапуск polling:
// остановленный BotAPI повторно не запускается.
type Connector func(ctx context.Context) (API, error)

var errUpdatesClosed = errors.New("updates channel closed")

type Bot struct {
	api       API
	log       *slog.Logger
	inventory *inventory.Repo
	states    *dialog.Store
	clock     clock.Clock
}

func New(api API, log *slog.Logger, inventoryRepo *inventory.Repo, states *dialog.Store, clk clock.Clock) *Bot {
	if clk == nil {
		clk = clock.NewReal()
	}
	return &Bot{api: api, log: log, inventory: inventoryRepo, states: states, clock: clk}
}

// Run снимает webhook и обрабатывает апдейты по одному до отмены ctx.
func (b *Bot) Run(ctx context.Context, timeoutSec int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("polling panic: %v", r)
		}
	}()

	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeoutSec
	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	b.log.Info("polling started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case upd, ok := <-updates:
			if !ok {
				return errUpdatesClosed
			}
			b.HandleUpdate(ctx, upd)
		}
	}
}

// RunForever переподключается и перезапускает polling после любой ошибки,
// выжидая backoff. Возвращается только при отмене ctx.
func (b *Bot) RunForever(ctx context.Context, connect Connector, timeoutSec int, backoff time.Duration) error {
	for {
		api, err := connect(ctx)
		if err == nil {
			b.api = api
			err = b.Run(ctx, timeoutSec)
		}
		if ctx.Err() != nil {
			return nil
		}

		metrics.PollRestarts.Inc()
		b.log.Error("polling failed, restarting", "err", err, "backoff", backoff)

		t := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
		}
	}
}

// HandleUpdate обрабатывает один апдейт. Паника в обработчике не роняет цикл:
// пользователь получает общее сообщение об ошибке.
func (b *Bot) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			metrics.HandlerPanics.Inc()
			b.log.Error("handler panic", "panic", r, "stack", string(debug.Stack()))
			if chatID := updateChatID(upd); chatID != 0 {
				b.states.Reset(chatID)
				b.replyMenu(chatID, msgInternalError)
			}
		}
	}()

	switch {
	case upd.Message != nil:
		metrics.Updates.WithLabelValues("message").Inc()
		b.onMessage(ctx, upd.Message)
	case upd.CallbackQuery != nil:
		metrics.Updates.WithLabelValues("callback").Inc()
		b.onCallback(upd.CallbackQuery)
	}
}

func updateChatID(upd tgbotapi.Update) int64 {
	switch {
	case upd.Message != nil && upd.Message.Chat != nil:
		return upd.Message.Chat.ID
	case upd.CallbackQuery != nil && upd.CallbackQuery.Message != nil && upd.CallbackQuery.Message.Chat != nil:
		return upd.CallbackQuery.Message.Chat.ID
	}
	return 0
}
