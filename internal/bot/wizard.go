package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/Spok95/paintstock-bot/internal/dialog"
	"github.com/Spok95/paintstock-bot/internal/domain/inventory"
	"github.com/Spok95/paintstock-bot/internal/infra/metrics"
)

// Мастер добавления: код → эффект → вес → AddStock.

func (b *Bot) startAdd(chatID int64) {
	mid := b.prompt(chatID,
		"🎨 <b>Введите код или название краски:</b>\n\nПримеры:\n• 3005\n• прозрачный\n• черный матовый",
		navKeyboard())
	b.states.Set(dialog.Session{ChatID: chatID, State: dialog.StateAwaitCode, PromptMID: mid})
}

func (b *Bot) addStepCode(st dialog.Session, text string) {
	b.clearPrompt(st)
	code := strings.TrimSpace(text)
	if code == "" {
		b.states.Reset(st.ChatID)
		b.replyMenu(st.ChatID, "❌ Код не может быть пустым!")
		return
	}

	mid := b.prompt(st.ChatID,
		fmt.Sprintf("🎨 Код: <b>%s</b>\n\nВыберите эффект:", html.EscapeString(code)),
		effectKeyboard())
	b.states.Set(dialog.Session{
		ChatID:    st.ChatID,
		State:     dialog.StateAwaitEffect,
		Code:      code,
		PromptMID: mid,
	})
}

// addStepEffect фиксирует эффект. editMID: сообщение с кнопками эффектов,
// если выбор пришёл callback'ом.
func (b *Bot) addStepEffect(st dialog.Session, e inventory.Effect, editMID int) {
	summary := fmt.Sprintf("🎨 Код: <b>%s</b>\n✅ Эффект: %s", html.EscapeString(st.Code), e.Display())
	if editMID != 0 {
		b.editTextAndClear(st.ChatID, editMID, summary)
	} else {
		b.clearPrompt(st)
	}

	mid := b.prompt(st.ChatID, "⚖️ <b>Введите вес в кг:</b>\n\nПример: 5.0, 10.5, 25", navKeyboard())
	b.states.Set(dialog.Session{
		ChatID:    st.ChatID,
		State:     dialog.StateAwaitWeight,
		Code:      st.Code,
		Effect:    e,
		PromptMID: mid,
	})
}

// addStepWeight: последний шаг. Сессия закрывается при любом исходе: одна попытка на запуск мастера.
func (b *Bot) addStepWeight(ctx context.Context, st dialog.Session, text string) {
	b.clearPrompt(st)
	b.states.Reset(st.ChatID)

	weight, err := parseWeight(text)
	switch {
	case errors.Is(err, errNonPositive):
		b.replyMenu(st.ChatID, "❌ Вес должен быть положительным!")
		return
	case err != nil:
		b.replyMenu(st.ChatID, "❌ Неверный формат веса!")
		return
	}
	b.applyAdd(ctx, st.ChatID, st.Code, st.Effect, weight)
}

// addFromLine: «/add КОД эффект вес» одним сообщением.
func (b *Bot) addFromLine(ctx context.Context, chatID int64, text string) {
	line, err := parseStockLine(text)
	if err != nil {
		b.replyMenu(chatID, lineErrorText(err, "/add 3005 глянец 5"))
		return
	}
	b.applyAdd(ctx, chatID, line.Code, line.Effect, line.Amount)
}

func (b *Bot) applyAdd(ctx context.Context, chatID int64, code string, effect inventory.Effect, weight float64) {
	res, err := b.inventory.AddStock(ctx, code, effect, weight)
	if err != nil {
		if errors.Is(err, inventory.ErrInvalidAmount) || errors.Is(err, inventory.ErrEmptyCode) || errors.Is(err, inventory.ErrInvalidEffect) {
			metrics.StockOps.WithLabelValues(string(inventory.MoveAdd), metrics.ResultRejected).Inc()
			b.replyMenu(chatID, "❌ Неверные данные: "+html.EscapeString(err.Error()))
			return
		}
		metrics.StockOps.WithLabelValues(string(inventory.MoveAdd), metrics.ResultError).Inc()
		b.log.Error("add stock failed", "chat_id", chatID, "code", code, "effect", effect, "err", err)
		b.replyMenu(chatID, "❌ Ошибка при сохранении")
		return
	}

	metrics.StockOps.WithLabelValues(string(inventory.MoveAdd), metrics.ResultOK).Inc()
	metrics.StockKg.WithLabelValues(string(inventory.MoveAdd)).Add(weight)
	b.log.Info("stock added", "chat_id", chatID, "code", res.Paint.ColorCode, "effect", effect,
		"amount", weight, "quantity", res.Paint.Quantity, "created", res.Created)

	action := "обновлена"
	if res.Created {
		action = "добавлена"
	}
	b.replyMenu(chatID, fmt.Sprintf(
		"✅ Краска <b>%s!</b>\n\n🎨 Код: <b>%s</b>\n✨ Эффект: <b>%s</b>\n📦 Вес: <b>%s кг</b>\n📊 Теперь: <b>%s кг</b>",
		action, html.EscapeString(res.Paint.ColorCode), effect, formatKg(weight), formatKg(res.Paint.Quantity)))
}

func lineErrorText(err error, example string) string {
	hint := fmt.Sprintf("\n\nФормат: <code>КОД эффект количество</code>\nПример: <code>%s</code>", example)
	switch {
	case errors.Is(err, errNoEffect):
		return "❌ Не найден эффект" + hint + "\n\nЭффекты: " + effectNames()
	case errors.Is(err, errNoCode):
		return "❌ Не указан код" + hint
	case errors.Is(err, errBadNumber):
		return "❌ Неверный формат количества" + hint
	case errors.Is(err, errNonPositive):
		return "❌ Количество должно быть положительным!"
	default:
		return "❌ Неверный формат" + hint
	}
}

func effectNames() string {
	names := make([]string, 0, len(inventory.Effects))
	for _, e := range inventory.Effects {
		names = append(names, strings.ToLower(string(e)))
	}
	return strings.Join(names, ", ")
}
