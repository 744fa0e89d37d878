package dialog

import (
	"time"

	"github.com/Spok95/paintstock-bot/internal/domain/inventory"
)

type State string

const (
	StateIdle State = "idle"

	// Мастер добавления краски
	StateAwaitCode   State = "waiting_code"
	StateAwaitEffect State = "waiting_effect"
	StateAwaitWeight State = "waiting_weight"

	// Одношаговые запросы
	StateAwaitSearch State = "waiting_search" // следующий текст: код для поиска
	StateAwaitUse    State = "waiting_use"    // следующий текст: «КОД эффект количество»
)

// Session: состояние диалога одного чата. Code заполнен начиная с StateAwaitEffect,
// Effect начиная с StateAwaitWeight.
type Session struct {
	ChatID    int64
	State     State
	Code      string
	Effect    inventory.Effect
	PromptMID int // сообщение с inline-кнопками текущего шага
	UpdatedAt time.Time
}

func (s Session) Idle() bool { return s.State == "" || s.State == StateIdle }
