package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/paintstock-bot/internal/domain/inventory"
)

// Кнопки нижней панели
const (
	btnAdd    = "🎨 Добавить краску"
	btnList   = "📋 Список красок"
	btnUse    = "📤 Списать краску"
	btnSearch = "🔍 Поиск по коду"
	btnStats  = "📊 Статистика"
	btnHelp   = "ℹ️ Помощь"
	btnExport = "📥 Выгрузка в Excel"
)

// callback_data
const (
	cbCancel       = "nav:cancel"
	cbEffectPrefix = "effect:"
)

// menuCommands: кнопки панели как синонимы команд.
var menuCommands = map[string]string{
	btnAdd:    "add",
	btnList:   "list",
	btnUse:    "use",
	btnSearch: "search",
	btnStats:  "stats",
	btnHelp:   "help",
	btnExport: "export",
}

func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.ReplyKeyboardMarkup{
		ResizeKeyboard: true,
		Keyboard: [][]tgbotapi.KeyboardButton{
			{tgbotapi.NewKeyboardButton(btnAdd), tgbotapi.NewKeyboardButton(btnList)},
			{tgbotapi.NewKeyboardButton(btnUse), tgbotapi.NewKeyboardButton(btnSearch)},
			{tgbotapi.NewKeyboardButton(btnStats), tgbotapi.NewKeyboardButton(btnHelp)},
			{tgbotapi.NewKeyboardButton(btnExport)},
		},
	}
}

func navKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✖️ Отменить", cbCancel),
		),
	)
}

// effectKeyboard: пять эффектов по два в ряд + отмена.
func effectKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, e := range inventory.Effects {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(e.Display(), cbEffectPrefix+e.Key()))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, navKeyboard().InlineKeyboard[0])
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
