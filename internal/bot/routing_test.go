package bot

import (
	"bytes"
	"context"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Spok95/paintstock-bot/internal/dialog"
	"github.com/Spok95/paintstock-bot/internal/domain/inventory"
	"github.com/Spok95/paintstock-bot/internal/infra/metrics"
)

func TestAddWizard_CreateThenUpdate(t *testing.T) {
	env := newTestEnv(t)

	env.send(t, btnAdd)
	assert.Equal(t, dialog.StateAwaitCode, env.states.Get(testChat).State)

	env.send(t, "3005")
	st := env.states.Get(testChat)
	assert.Equal(t, dialog.StateAwaitEffect, st.State)
	assert.Equal(t, "3005", st.Code)

	env.press(t, cbEffectPrefix+"gloss")
	assert.Equal(t, dialog.StateAwaitWeight, env.states.Get(testChat).State)
	assert.Equal(t, []string{"Выбран: 🔵 Глянец"}, env.api.callbackAnswers())

	env.send(t, "5")
	assert.True(t, env.states.Get(testChat).Idle())
	assert.Contains(t, env.api.lastText(), "добавлена")

	env.send(t, "/add")
	env.send(t, "3005")
	env.press(t, cbEffectPrefix+"gloss")
	env.send(t, "2,5")
	assert.Contains(t, env.api.lastText(), "обновлена")
	assert.Contains(t, env.api.lastText(), "Теперь: <b>7.5 кг</b>")

	q, ok := env.quantity(t, "3005", inventory.EffectGloss)
	require.True(t, ok)
	assert.Equal(t, 7.5, q)
}

func TestAddWizard_BadWeightEndsSession(t *testing.T) {
	env := newTestEnv(t)

	env.send(t, btnAdd)
	env.send(t, "3005")
	env.press(t, cbEffectPrefix+"gloss")

	env.send(t, "abc")
	assert.Equal(t, "❌ Неверный формат веса!", env.api.lastText())
	assert.True(t, env.states.Get(testChat).Idle())

	// повторная попытка уже вне диалога
	env.send(t, "5")
	assert.Equal(t, msgSessionExpired, env.api.lastText())

	_, ok := env.quantity(t, "3005", inventory.EffectGloss)
	assert.False(t, ok)
}

func TestAddWizard_NonPositiveWeight(t *testing.T) {
	env := newTestEnv(t)

	env.send(t, btnAdd)
	env.send(t, "3005")
	env.press(t, cbEffectPrefix+"matt")
	env.send(t, "-1")

	assert.Equal(t, "❌ Вес должен быть положительным!", env.api.lastText())
	assert.True(t, env.states.Get(testChat).Idle())
}

func TestAddWizard_EmptyCode(t *testing.T) {
	env := newTestEnv(t)

	env.send(t, btnAdd)
	env.send(t, "   ")

	assert.Equal(t, "❌ Код не может быть пустым!", env.api.lastText())
	assert.True(t, env.states.Get(testChat).Idle())
}

func TestAddWizard_TypedEffect(t *testing.T) {
	env := newTestEnv(t)

	env.send(t, btnAdd)
	env.send(t, "RAL 7016")

	env.send(t, "блеск")
	assert.Equal(t, dialog.StateAwaitEffect, env.states.Get(testChat).State)
	assert.Contains(t, env.api.lastText(), "Неверный эффект")

	env.send(t, "шагрень")
	st := env.states.Get(testChat)
	assert.Equal(t, dialog.StateAwaitWeight, st.State)
	assert.Equal(t, inventory.EffectTexture, st.Effect)

	env.send(t, "3")
	q, ok := env.quantity(t, "RAL 7016", inventory.EffectTexture)
	require.True(t, ok)
	assert.Equal(t, 3.0, q)
}

func TestEffectCallback_WithoutSession(t *testing.T) {
	env := newTestEnv(t)

	env.bot.HandleUpdate(context.Background(), callbackUpdate(testChat, 7, cbEffectPrefix+"gloss"))

	assert.Equal(t, []string{msgSessionExpired}, env.api.callbackAnswers())
	assert.True(t, env.states.Get(testChat).Idle())
}

func TestEffectCallback_UnknownKey(t *testing.T) {
	env := newTestEnv(t)

	env.send(t, btnAdd)
	env.send(t, "3005")
	env.press(t, cbEffectPrefix+"chrome")

	assert.Equal(t, []string{"❌ Неверный эффект"}, env.api.callbackAnswers())
	assert.Equal(t, dialog.StateAwaitEffect, env.states.Get(testChat).State)
}

func TestCancel(t *testing.T) {
	t.Run("inline button", func(t *testing.T) {
		env := newTestEnv(t)
		env.send(t, btnAdd)
		env.send(t, "3005")
		mid := env.states.Get(testChat).PromptMID

		env.press(t, cbCancel)

		assert.True(t, env.states.Get(testChat).Idle())
		assert.Equal(t, []string{"Отменено"}, env.api.callbackAnswers())
		last := env.api.sent[len(env.api.sent)-1]
		edit, ok := last.(tgbotapi.EditMessageTextConfig)
		require.True(t, ok)
		assert.Equal(t, mid, edit.MessageID)
		assert.Equal(t, "Операция отменена.", edit.Text)
	})

	t.Run("command", func(t *testing.T) {
		env := newTestEnv(t)
		env.send(t, btnUse)
		env.send(t, "/cancel")

		assert.True(t, env.states.Get(testChat).Idle())
		assert.Equal(t, "Операция отменена.", env.api.lastText())
	})
}

func TestMenuButtonResetsSession(t *testing.T) {
	env := newTestEnv(t)

	env.send(t, btnAdd)
	env.send(t, "3005")
	require.Equal(t, dialog.StateAwaitEffect, env.states.Get(testChat).State)

	env.send(t, btnList)
	assert.True(t, env.states.Get(testChat).Idle())
	assert.Contains(t, env.api.lastText(), "Склад пуст")
}

func TestCommandsAndButtonsAgree(t *testing.T) {
	pairs := map[string]string{
		"/list":  btnList,
		"/stats": btnStats,
		"/help":  btnHelp,
	}
	for cmd, btn := range pairs {
		t.Run(cmd, func(t *testing.T) {
			env := newTestEnv(t)
			env.send(t, cmd)
			viaCmd := env.api.lastText()
			env.send(t, btn)
			assert.Equal(t, viaCmd, env.api.lastText())
		})
	}
}

func TestUnknownInput(t *testing.T) {
	env := newTestEnv(t)

	env.send(t, "/whatever")
	assert.Contains(t, env.api.lastText(), "/help")

	env.send(t, "привет")
	assert.Equal(t, "Используйте кнопки меню для навигации 📱", env.api.lastText())
}

func TestUse(t *testing.T) {
	env := newTestEnv(t)
	env.send(t, "/add 3005 глянец 7.5")
	q, ok := env.quantity(t, "3005", inventory.EffectGloss)
	require.True(t, ok)
	require.Equal(t, 7.5, q)

	t.Run("insufficient", func(t *testing.T) {
		rejected := testutil.ToFloat64(metrics.StockOps.WithLabelValues("use", metrics.ResultRejected))

		env.send(t, btnUse)
		assert.Equal(t, dialog.StateAwaitUse, env.states.Get(testChat).State)
		env.send(t, "3005 глянец 10")

		assert.Contains(t, env.api.lastText(), "Недостаточно краски")
		assert.Contains(t, env.api.lastText(), "Доступно: <b>7.5 кг</b>")
		assert.True(t, env.states.Get(testChat).Idle())
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StockOps.WithLabelValues("use", metrics.ResultRejected))-rejected)

		q, _ := env.quantity(t, "3005", inventory.EffectGloss)
		assert.Equal(t, 7.5, q)
	})

	t.Run("missing lot", func(t *testing.T) {
		env.send(t, "/use 3005 муар 1")
		assert.Contains(t, env.api.lastText(), "Краска не найдена")
	})

	t.Run("bad line", func(t *testing.T) {
		env.send(t, "/use 3005 1")
		assert.Contains(t, env.api.lastText(), "Неверный формат")
	})

	t.Run("partial", func(t *testing.T) {
		env.send(t, btnUse)
		env.send(t, "3005 Глянец 2,5")

		assert.Contains(t, env.api.lastText(), "Списано 2.5 кг")
		assert.Contains(t, env.api.lastText(), "Остаток: <b>5 кг</b>")
		q, _ := env.quantity(t, "3005", inventory.EffectGloss)
		assert.Equal(t, 5.0, q)
	})
}

func TestSearch(t *testing.T) {
	env := newTestEnv(t)
	env.send(t, "/add 3005 глянец 5")
	env.send(t, "/add 3005 матовый 2")

	env.send(t, btnSearch)
	assert.Equal(t, dialog.StateAwaitSearch, env.states.Get(testChat).State)
	env.send(t, " 3005 ")

	out := env.api.lastText()
	assert.Contains(t, out, "Глянец: 5 кг")
	assert.Contains(t, out, "Матовый: 2 кг")
	assert.Contains(t, out, "Итого: 7 кг")
	assert.Contains(t, out, "• Глянец: 5 кг\n   └ 01.03.2025 09:00 ➕ 5 кг\n")
	assert.True(t, env.states.Get(testChat).Idle())

	env.send(t, "/search 9999")
	assert.Equal(t, "❌ Код '<b>9999</b>' не найден", env.api.lastText())
}

func TestList_GroupsByCode(t *testing.T) {
	env := newTestEnv(t)
	env.send(t, "/add 7016 шагрень 1")
	env.send(t, "/add 3005 матовый 2")
	env.send(t, "/add 3005 глянец 5")

	env.send(t, "/list")
	want := "🎨 <b>Склад порошковой краски:</b>\n" +
		"\n🔸 <b>3005:</b>\n   • Глянец: 5 кг\n   • Матовый: 2 кг\n" +
		"\n🔸 <b>7016:</b>\n   • Шагрень: 1 кг\n"
	assert.Equal(t, want, env.api.lastText())
}

func TestStats(t *testing.T) {
	env := newTestEnv(t)

	env.send(t, "/stats")
	assert.Contains(t, env.api.lastText(), "Операций пока нет")

	env.send(t, "/add 3005 глянец 5")
	env.clock.Advance(time.Minute)
	env.send(t, "/use 3005 глянец 1")

	env.send(t, "/stats")
	out := env.api.lastText()
	assert.Contains(t, out, "Всего позиций: <b>1</b>")
	assert.Contains(t, out, "Общий вес: <b>4 кг</b>")
	assert.Contains(t, out, "• ➖ 3005 (Глянец): 1 кг\n• ➕ 3005 (Глянец): 5 кг")
}

func TestExport(t *testing.T) {
	env := newTestEnv(t)

	env.send(t, btnExport)
	assert.Contains(t, env.api.lastText(), "Выгружать нечего")

	env.send(t, "/add 3005 глянец 5")
	env.api.reset()
	env.send(t, "/export")

	require.Len(t, env.api.sent, 1)
	doc, ok := env.api.sent[0].(tgbotapi.DocumentConfig)
	require.True(t, ok)
	file, ok := doc.File.(tgbotapi.FileBytes)
	require.True(t, ok)
	assert.Equal(t, "stock_20250301_090000.xlsx", file.Name)

	f, err := excelize.OpenReader(bytes.NewReader(file.Bytes))
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue("Склад", "A2")
	require.NoError(t, err)
	assert.Equal(t, "3005", v)
}
