package bot

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/paintstock-bot/internal/domain/inventory"
)

func TestParseStockLine(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want stockLine
		err  error
	}{
		{
			name: "simple",
			in:   "3005 глянец 1.5",
			want: stockLine{Code: "3005", Effect: inventory.EffectGloss, Amount: 1.5},
		},
		{
			name: "multi-word code",
			in:   "металлик серебро лак 2,0",
			want: stockLine{Code: "металлик серебро", Effect: inventory.EffectVarnish, Amount: 2},
		},
		{
			name: "effect in any case",
			in:   "  RAL 7016   Шагрень  3 ",
			want: stockLine{Code: "RAL 7016", Effect: inventory.EffectTexture, Amount: 3},
		},
		{name: "too few words", in: "3005 1.5", err: errLineFormat},
		{name: "no effect", in: "3005 металлик 1.5", err: errNoEffect},
		{name: "no code", in: "глянец 3005 1.5", err: errNoCode},
		{name: "bad amount", in: "3005 глянец много", err: errBadNumber},
		{name: "zero amount", in: "3005 глянец 0", err: errNonPositive},
		{name: "words after effect", in: "3005 глянец ещё 2", err: errLineFormat},
		// слово кода совпадает с названием эффекта
		{name: "ambiguous code", in: "черный матовый глянец 1", err: errLineFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseStockLine(tt.in)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseWeight(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		err  error
	}{
		{"5", 5, nil},
		{" 10.5 ", 10.5, nil},
		{"2,25", 2.25, nil},
		{"abc", 0, errBadNumber},
		{"", 0, errBadNumber},
		{"NaN", 0, errBadNumber},
		{"inf", 0, errBadNumber},
		{"0", 0, errNonPositive},
		{"-3", 0, errNonPositive},
	}
	for _, tt := range tests {
		got, err := parseWeight(tt.in)
		if tt.err != nil {
			assert.ErrorIs(t, err, tt.err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestFormatKg(t *testing.T) {
	assert.Equal(t, "7.5", formatKg(7.5))
	assert.Equal(t, "5", formatKg(5))
	assert.Equal(t, "0.3", formatKg(0.1+0.2))
	assert.Equal(t, "0", formatKg(0))
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"short"}, splitMessage("short", 10))

	parts := splitMessage("aaaa\nbbbb\ncccc\n", 10)
	assert.Equal(t, []string{"aaaa\nbbbb\n", "cccc\n"}, parts)
}

func TestSplitMessage_LongLine(t *testing.T) {
	long := strings.Repeat("ж", 9) // 18 байт
	parts := splitMessage("ok\n"+long+"\nend", 7)

	for _, p := range parts {
		assert.LessOrEqual(t, len(p), 7)
		assert.True(t, utf8.ValidString(p), p)
	}
	assert.Equal(t, "ok\n"+long+"\nend", strings.Join(parts, ""))
}

func TestSplitMessage_ReplyFitsTelegramLimit(t *testing.T) {
	code := strings.Repeat("Ф", 3000)
	text := "🔍 <b>Найдено по коду '" + code + "':</b>\n\n• Глянец: 5 кг\n"

	parts := splitMessage(text, maxMessageLen)
	require.Greater(t, len(parts), 1)
	for _, p := range parts {
		assert.LessOrEqual(t, len(p), maxMessageLen)
		assert.True(t, utf8.ValidString(p))
	}
	assert.Equal(t, text, strings.Join(parts, ""))
}
