package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/paintstock-bot/internal/dialog"
	"github.com/Spok95/paintstock-bot/internal/domain/inventory"
	"github.com/Spok95/paintstock-bot/internal/infra/metrics"
	"github.com/Spok95/paintstock-bot/internal/report"
)

const (
	msgSessionExpired = "❌ Сессия устарела"
	msgInternalError  = "❌ Произошла ошибка"
)

const msgWelcome = `🎨 <b>Добро пожаловать в PaintStock Bot!</b>

Простой и удобный учет порошковой краски и лаков.

<b>Возможности:</b>
• Учет по кодам (RAL, цифровые, буквенные)
• 5 видов эффектов
• Учет веса в кг
• Поиск и статистика

Выберите действие:`

const msgHelp = `🎨 <b>PaintStock Bot - помощь</b>

<b>Доступные эффекты:</b>
• 🟢 Матовый
• 🔵 Глянец
• 🟣 Муар
• 🟠 Шагрень
• ⚪ Лак

<b>Использование:</b>
1. 🎨 Добавить краску - ввести код, выбрать эффект, ввести вес
2. 📋 Список - посмотреть весь склад
3. 📤 Списать - указать код, эффект и количество
4. 🔍 Поиск - найти краску по коду
5. 📊 Статистика - общая информация
6. 📥 Выгрузка - остатки файлом Excel

<b>Команды:</b>
/add, /list, /use, /search, /stats, /export, /help
/add 3005 глянец 5 — добавить одной строкой
/use 3005 глянец 1.5 — списать одной строкой
/search 3005 — найти по коду
/cancel — прервать ввод

<b>Примеры кодов:</b>
• 3005 (RAL)
• прозрачный
• черный матовый
• металлик серебро`

/*** USE ***/

func (b *Bot) startUse(chatID int64) {
	mid := b.prompt(chatID,
		"📤 <b>Введите данные для списания:</b>\n\nФормат: <code>КОД эффект количество</code>\n\nПример:\n<code>3005 глянец 1.5</code>\n<code>прозрачный лак 2.0</code>",
		navKeyboard())
	b.states.Set(dialog.Session{ChatID: chatID, State: dialog.StateAwaitUse, PromptMID: mid})
}

func (b *Bot) useFromLine(ctx context.Context, chatID int64, text string) {
	line, err := parseStockLine(text)
	if err != nil {
		b.replyMenu(chatID, lineErrorText(err, "3005 глянец 1.5"))
		return
	}

	p, err := b.inventory.UseStock(ctx, line.Code, line.Effect, line.Amount)
	var short *inventory.InsufficientError
	switch {
	case errors.Is(err, inventory.ErrPaintNotFound):
		metrics.StockOps.WithLabelValues(string(inventory.MoveUse), metrics.ResultRejected).Inc()
		b.replyMenu(chatID, fmt.Sprintf("❌ Краска не найдена\n\n🎨 Код: <b>%s</b>\n✨ Эффект: <b>%s</b>",
			html.EscapeString(line.Code), line.Effect))
		return
	case errors.As(err, &short):
		metrics.StockOps.WithLabelValues(string(inventory.MoveUse), metrics.ResultRejected).Inc()
		b.replyMenu(chatID, fmt.Sprintf("❌ Недостаточно краски!\n\nДоступно: <b>%s кг</b>", formatKg(short.Available)))
		return
	case err != nil:
		metrics.StockOps.WithLabelValues(string(inventory.MoveUse), metrics.ResultError).Inc()
		b.log.Error("use stock failed", "chat_id", chatID, "code", line.Code, "effect", line.Effect, "err", err)
		b.replyMenu(chatID, "❌ Ошибка при списании")
		return
	}

	metrics.StockOps.WithLabelValues(string(inventory.MoveUse), metrics.ResultOK).Inc()
	metrics.StockKg.WithLabelValues(string(inventory.MoveUse)).Add(line.Amount)
	b.log.Info("stock used", "chat_id", chatID, "code", p.ColorCode, "effect", p.Effect,
		"amount", line.Amount, "quantity", p.Quantity)

	b.replyMenu(chatID, fmt.Sprintf(
		"✅ <b>Списано %s кг</b>\n\n🎨 Код: <b>%s</b>\n✨ Эффект: <b>%s</b>\n📊 Остаток: <b>%s кг</b>",
		formatKg(line.Amount), html.EscapeString(p.ColorCode), p.Effect, formatKg(p.Quantity)))
}

/*** SEARCH ***/

func (b *Bot) startSearch(chatID int64) {
	mid := b.prompt(chatID, "🔍 <b>Введите код для поиска:</b>", navKeyboard())
	b.states.Set(dialog.Session{ChatID: chatID, State: dialog.StateAwaitSearch, PromptMID: mid})
}

func (b *Bot) search(ctx context.Context, chatID int64, code string) {
	res, err := b.inventory.SearchByCode(ctx, code)
	if errors.Is(err, inventory.ErrEmptyCode) {
		b.replyMenu(chatID, "❌ Код не может быть пустым!")
		return
	}
	if err != nil {
		b.log.Error("search failed", "chat_id", chatID, "code", code, "err", err)
		b.replyMenu(chatID, "❌ Ошибка при поиске")
		return
	}

	codeHTML := html.EscapeString(res.Code)
	if len(res.Items) == 0 {
		b.replyMenu(chatID, fmt.Sprintf("❌ Код '<b>%s</b>' не найден", codeHTML))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🔍 <b>Найдено по коду '%s':</b>\n\n", codeHTML))
	for _, p := range res.Items {
		sb.WriteString(fmt.Sprintf("• %s: %s кг\n", p.Effect, formatKg(p.Quantity)))
		moves, err := b.inventory.Movements(ctx, p.ID)
		if err != nil {
			b.log.Warn("search: movements failed", "paint_id", p.ID, "err", err)
			continue
		}
		if len(moves) > 0 {
			last := moves[len(moves)-1]
			sb.WriteString(fmt.Sprintf("   └ %s %s %s кг\n",
				last.Date.Format("02.01.2006 15:04"), moveSign(last.Type), formatKg(last.Amount)))
		}
	}
	sb.WriteString(fmt.Sprintf("\n📦 <b>Итого: %s кг</b>", formatKg(res.Total)))
	b.replyMenu(chatID, sb.String())
}

/*** LIST / STATS ***/

func (b *Bot) showList(ctx context.Context, chatID int64) {
	paints, err := b.inventory.ListAll(ctx)
	if err != nil {
		b.log.Error("list failed", "chat_id", chatID, "err", err)
		b.replyMenu(chatID, "❌ Ошибка при загрузке списка")
		return
	}
	if len(paints) == 0 {
		b.replyMenu(chatID, "📭 <b>Склад пуст</b>\n\nДобавьте первую краску!")
		return
	}

	var sb strings.Builder
	sb.WriteString("🎨 <b>Склад порошковой краски:</b>\n")
	current := ""
	for i, p := range paints {
		if i == 0 || p.ColorCode != current {
			current = p.ColorCode
			sb.WriteString(fmt.Sprintf("\n🔸 <b>%s:</b>\n", html.EscapeString(current)))
		}
		sb.WriteString(fmt.Sprintf("   • %s: %s кг\n", p.Effect, formatKg(p.Quantity)))
	}
	b.replyMenu(chatID, sb.String())
}

func (b *Bot) showStats(ctx context.Context, chatID int64) {
	st, err := b.inventory.Stats(ctx)
	if err != nil {
		b.log.Error("stats failed", "chat_id", chatID, "err", err)
		b.replyMenu(chatID, "❌ Ошибка при загрузке статистики")
		return
	}

	var sb strings.Builder
	sb.WriteString("📊 <b>Статистика склада:</b>\n\n")
	sb.WriteString(fmt.Sprintf("• 🎨 Всего позиций: <b>%d</b>\n", st.Count))
	sb.WriteString(fmt.Sprintf("• ⚖️ Общий вес: <b>%s кг</b>\n\n", formatKg(st.Total)))

	if len(st.Recent) == 0 {
		sb.WriteString("📝 Операций пока нет")
		b.replyMenu(chatID, sb.String())
		return
	}
	sb.WriteString("<b>Последние операции:</b>\n")
	for _, m := range st.Recent {
		sb.WriteString(fmt.Sprintf("• %s %s (%s): %s кг\n",
			moveSign(m.Type), html.EscapeString(m.ColorCode), m.Effect, formatKg(m.Amount)))
	}
	b.replyMenu(chatID, sb.String())
}

func moveSign(t inventory.MoveType) string {
	if t == inventory.MoveUse {
		return "➖"
	}
	return "➕"
}

/*** EXPORT ***/

// exportStock отправляет остатки файлом .xlsx.
func (b *Bot) exportStock(ctx context.Context, chatID int64) {
	paints, err := b.inventory.ListAll(ctx)
	if err != nil {
		b.log.Error("export: list failed", "chat_id", chatID, "err", err)
		b.replyMenu(chatID, "❌ Ошибка при выгрузке")
		return
	}
	if len(paints) == 0 {
		b.replyMenu(chatID, "📭 <b>Склад пуст</b>\n\nВыгружать нечего.")
		return
	}

	data, err := report.StockWorkbook(paints)
	if err != nil {
		b.log.Error("export: workbook failed", "chat_id", chatID, "err", err)
		b.replyMenu(chatID, "❌ Ошибка формирования файла")
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  report.StockFileName(b.clock.Now()),
		Bytes: data,
	})
	doc.Caption = fmt.Sprintf("Остатки склада: %d позиций.", len(paints))
	doc.ReplyMarkup = mainKeyboard()
	if _, ok := b.send(doc); !ok {
		b.replyMenu(chatID, "❌ Не удалось отправить файл")
	}
}
