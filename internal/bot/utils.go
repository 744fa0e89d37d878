package bot

import (
	"strconv"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/paintstock-bot/internal/dialog"
	"github.com/Spok95/paintstock-bot/internal/domain/inventory"
)

/*** HELPERS ***/

// лимит Telegram: 4096 символов, оставляем запас под разметку
const maxMessageLen = 3500

func (b *Bot) send(msg tgbotapi.Chattable) (tgbotapi.Message, bool) {
	m, err := b.api.Send(msg)
	if err != nil {
		b.log.Error("send failed", "err", err)
		return m, false
	}
	return m, true
}

// replyMenu отправляет итоговый ответ в HTML с главным меню.
func (b *Bot) replyMenu(chatID int64, text string) {
	for _, part := range splitMessage(text, maxMessageLen) {
		m := tgbotapi.NewMessage(chatID, part)
		m.ParseMode = tgbotapi.ModeHTML
		m.ReplyMarkup = mainKeyboard()
		b.send(m)
	}
}

// prompt: вопрос шага диалога с inline-кнопками. Возвращает id сообщения.
func (b *Bot) prompt(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) int {
	m := tgbotapi.NewMessage(chatID, text)
	m.ParseMode = tgbotapi.ModeHTML
	m.ReplyMarkup = kb
	sent, _ := b.send(m)
	return sent.MessageID
}

func (b *Bot) answerCallback(cb *tgbotapi.CallbackQuery, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, text)); err != nil {
		b.log.Error("answer callback failed", "err", err)
	}
}

func (b *Bot) editTextAndClear(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(
		chatID, messageID, text,
		tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}},
	)
	edit.ParseMode = tgbotapi.ModeHTML
	b.send(edit)
}

// clearPrompt убирает inline-кнопки у вопроса прошлого шага, если он был.
func (b *Bot) clearPrompt(sess dialog.Session) {
	if sess.PromptMID == 0 {
		return
	}
	rm := tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
	b.send(tgbotapi.NewEditMessageReplyMarkup(sess.ChatID, sess.PromptMID, rm))
}

// resetSession завершает текущий диалог чата.
func (b *Bot) resetSession(chatID int64) {
	b.clearPrompt(b.states.Get(chatID))
	b.states.Reset(chatID)
}

// formatKg печатает вес без хвостов float: 7.5, 5, 0.333.
func formatKg(v float64) string {
	r := inventory.RoundKg(v)
	if r == 0 {
		return "0"
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// splitMessage режет длинный текст по строкам. Строка длиннее limit режется
// по границе символа.
func splitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}
	var parts []string
	var sb strings.Builder
	flush := func() {
		if sb.Len() > 0 {
			parts = append(parts, sb.String())
			sb.Reset()
		}
	}
	for _, line := range strings.SplitAfter(text, "\n") {
		if sb.Len() > 0 && sb.Len()+len(line) > limit {
			flush()
		}
		for len(line) > limit {
			cut := runeCut(line, limit)
			parts = append(parts, line[:cut])
			line = line[cut:]
		}
		sb.WriteString(line)
	}
	flush()
	return parts
}

// runeCut: наибольший префикс s не длиннее limit байт, не разрывающий руну.
func runeCut(s string, limit int) int {
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	if cut == 0 {
		_, size := utf8.DecodeRuneInString(s)
		return size
	}
	return cut
}
