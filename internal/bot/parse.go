package bot

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/Spok95/paintstock-bot/internal/domain/inventory"
)

var (
	errLineFormat  = errors.New("expected: CODE effect amount")
	errNoEffect    = errors.New("effect not found")
	errNoCode      = errors.New("code is empty")
	errBadNumber   = errors.New("not a number")
	errNonPositive = errors.New("must be > 0")
)

type stockLine struct {
	Code   string
	Effect inventory.Effect
	Amount float64
}

// parseStockLine разбирает «КОД эффект количество», например «RAL 7016 шагрень 1.5».
// Код: все слова до первого слова-эффекта. Количество: последнее слово.
// Если слово кода само совпадает с названием эффекта («черный матовый глянец 1»),
// строка отклоняется: между эффектом и количеством не должно быть слов.
func parseStockLine(s string) (stockLine, error) {
	words := strings.Fields(s)
	if len(words) < 3 {
		return stockLine{}, errLineFormat
	}

	idx := -1
	var effect inventory.Effect
	for i, w := range words[:len(words)-1] {
		if e, ok := inventory.ParseEffect(w); ok {
			idx, effect = i, e
			break
		}
	}
	switch {
	case idx < 0:
		return stockLine{}, errNoEffect
	case idx == 0:
		return stockLine{}, errNoCode
	case idx != len(words)-2:
		return stockLine{}, errLineFormat
	}

	amount, err := parseWeight(words[len(words)-1])
	if err != nil {
		return stockLine{}, err
	}
	return stockLine{
		Code:   strings.Join(words[:idx], " "),
		Effect: effect,
		Amount: amount,
	}, nil
}

// parseWeight читает положительное число, допускается запятая («2,5»).
func parseWeight(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errBadNumber
	}
	if v <= 0 {
		return 0, errNonPositive
	}
	return v, nil
}
