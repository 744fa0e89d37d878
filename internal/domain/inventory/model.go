package inventory

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

type MoveType string

const (
	MoveAdd MoveType = "add"
	MoveUse MoveType = "use"
)

// Effect: тип покрытия краски. Значение совпадает с тем, что хранится в paints.effect.
type Effect string

const (
	EffectMatte   Effect = "Матовый"
	EffectGloss   Effect = "Глянец"
	EffectMoire   Effect = "Муар"
	EffectTexture Effect = "Шагрень"
	EffectVarnish Effect = "Лак"
)

// Effects в порядке показа на клавиатуре.
var Effects = []Effect{EffectMatte, EffectGloss, EffectMoire, EffectTexture, EffectVarnish}

var effectKeys = map[Effect]string{
	EffectMatte:   "matt",
	EffectGloss:   "gloss",
	EffectMoire:   "moire",
	EffectTexture: "texture",
	EffectVarnish: "varnish",
}

var effectBadges = map[Effect]string{
	EffectMatte:   "🟢",
	EffectGloss:   "🔵",
	EffectMoire:   "🟣",
	EffectTexture: "🟠",
	EffectVarnish: "⚪",
}

func (e Effect) Valid() bool {
	_, ok := effectKeys[e]
	return ok
}

// Key: короткий идентификатор для callback_data.
func (e Effect) Key() string { return effectKeys[e] }

// Display возвращает подпись кнопки: бейдж и название.
func (e Effect) Display() string {
	if b, ok := effectBadges[e]; ok {
		return b + " " + string(e)
	}
	return string(e)
}

func EffectByKey(key string) (Effect, bool) {
	for e, k := range effectKeys {
		if k == key {
			return e, true
		}
	}
	return "", false
}

// ParseEffect сопоставляет слово с названием эффекта без учёта регистра.
func ParseEffect(word string) (Effect, bool) {
	w := strings.ToLower(strings.TrimSpace(word))
	for _, e := range Effects {
		if strings.ToLower(string(e)) == w {
			return e, true
		}
	}
	return "", false
}

type Paint struct {
	ID          int64
	ColorCode   string
	Effect      Effect
	Quantity    float64
	Unit        string
	LastUpdated time.Time
}

type Movement struct {
	ID      int64
	PaintID int64
	Type    MoveType
	Amount  float64
	Date    time.Time
}

// RecentMovement: движение вместе с кодом и эффектом краски (для статистики).
type RecentMovement struct {
	Movement
	ColorCode string
	Effect    Effect
}

// AddResult: итог прихода.
type AddResult struct {
	Paint   Paint
	Created bool
}

type SearchResult struct {
	Code  string
	Items []Paint
	Total float64
}

type Stats struct {
	Count  int
	Total  float64
	Recent []RecentMovement
}

const RecentLimit = 5

var (
	ErrEmptyCode         = errors.New("color code cannot be empty")
	ErrInvalidEffect     = errors.New("unknown effect")
	ErrInvalidAmount     = errors.New("amount must be > 0")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrPaintNotFound     = fmt.Errorf("%w: paint not found", ErrInsufficientStock)
)

// InsufficientError: списание больше остатка. Available: остаток на момент проверки.
type InsufficientError struct {
	Available float64
}

func (e *InsufficientError) Error() string {
	return fmt.Sprintf("insufficient stock: available %g", e.Available)
}

func (e *InsufficientError) Unwrap() error { return ErrInsufficientStock }

// RoundKg округляет вес до грамма. Остатки хранятся и сравниваются с этой точностью.
func RoundKg(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func validate(code string, effect Effect, amount float64) (string, float64, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", 0, ErrEmptyCode
	}
	if !effect.Valid() {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidEffect, string(effect))
	}
	if math.IsInf(amount, 1) {
		return "", 0, ErrInvalidAmount
	}
	// меньше грамма после округления считается нулём
	amount = RoundKg(amount)
	if !(amount > 0) {
		return "", 0, ErrInvalidAmount
	}
	return code, amount, nil
}
