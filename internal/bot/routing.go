package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/paintstock-bot/internal/dialog"
	"github.com/Spok95/paintstock-bot/internal/domain/inventory"
)

func (b *Bot) onMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat == nil {
		return
	}
	if msg.IsCommand() {
		b.dispatch(ctx, msg.Chat.ID, msg.Command(), strings.TrimSpace(msg.CommandArguments()))
		return
	}
	// кнопки панели работают из любого шага и сбрасывают начатый диалог
	if cmd, ok := menuCommands[strings.TrimSpace(msg.Text)]; ok {
		b.dispatch(ctx, msg.Chat.ID, cmd, "")
		return
	}
	b.handleStateMessage(ctx, msg)
}

// dispatch: общая точка для /команд и кнопок панели.
func (b *Bot) dispatch(ctx context.Context, chatID int64, cmd, args string) {
	b.resetSession(chatID)

	switch cmd {
	case "start":
		b.replyMenu(chatID, msgWelcome)
	case "add":
		if args != "" {
			b.addFromLine(ctx, chatID, args)
			return
		}
		b.startAdd(chatID)
	case "use":
		if args != "" {
			b.useFromLine(ctx, chatID, args)
			return
		}
		b.startUse(chatID)
	case "search":
		if args != "" {
			b.search(ctx, chatID, args)
			return
		}
		b.startSearch(chatID)
	case "list":
		b.showList(ctx, chatID)
	case "stats":
		b.showStats(ctx, chatID)
	case "export":
		b.exportStock(ctx, chatID)
	case "help":
		b.replyMenu(chatID, msgHelp)
	case "cancel":
		b.replyMenu(chatID, "Операция отменена.")
	default:
		b.replyMenu(chatID, "Не знаю такую команду. Наберите /help")
	}
}

// handleStateMessage обрабатывает текст вне команд как продолжение начатого диалога.
func (b *Bot) handleStateMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	st := b.states.Get(chatID)

	switch st.State {
	case dialog.StateAwaitCode:
		b.addStepCode(st, msg.Text)

	case dialog.StateAwaitEffect:
		// обычно эффект выбирают кнопкой, но название, набранное текстом, тоже принимаем
		e, ok := inventory.ParseEffect(msg.Text)
		if !ok {
			b.prompt(chatID, "❌ Неверный эффект. Выберите эффект кнопкой:", effectKeyboard())
			return
		}
		b.addStepEffect(st, e, 0)

	case dialog.StateAwaitWeight:
		b.addStepWeight(ctx, st, msg.Text)

	case dialog.StateAwaitSearch:
		b.resetSession(chatID)
		b.search(ctx, chatID, msg.Text)

	case dialog.StateAwaitUse:
		b.resetSession(chatID)
		b.useFromLine(ctx, chatID, msg.Text)

	default:
		// число без активного шага: вес из уже закрытого диалога
		if _, err := parseWeight(msg.Text); err == nil {
			b.replyMenu(chatID, msgSessionExpired)
			return
		}
		b.replyMenu(chatID, "Используйте кнопки меню для навигации 📱")
	}
}

func (b *Bot) onCallback(cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil || cb.Message.Chat == nil {
		b.answerCallback(cb, "")
		return
	}
	chatID := cb.Message.Chat.ID

	switch {
	case cb.Data == cbCancel:
		b.states.Reset(chatID)
		b.editTextAndClear(chatID, cb.Message.MessageID, "Операция отменена.")
		b.answerCallback(cb, "Отменено")

	case strings.HasPrefix(cb.Data, cbEffectPrefix):
		st := b.states.Get(chatID)
		if st.State != dialog.StateAwaitEffect {
			b.answerCallback(cb, msgSessionExpired)
			return
		}
		e, ok := inventory.EffectByKey(strings.TrimPrefix(cb.Data, cbEffectPrefix))
		if !ok {
			b.answerCallback(cb, "❌ Неверный эффект")
			return
		}
		b.addStepEffect(st, e, cb.Message.MessageID)
		b.answerCallback(cb, "Выбран: "+e.Display())

	default:
		b.log.Warn("unknown callback", "data", cb.Data, "chat_id", chatID)
		b.answerCallback(cb, "")
	}
}
