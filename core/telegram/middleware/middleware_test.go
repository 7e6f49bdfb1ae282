package middleware

import (
	"errors"
	"testing"
	"time"

	coreconfig "github.com/m3rciful/intakebot/core/config"
	tghelpers "github.com/m3rciful/intakebot/core/telegram/helpers"
	"github.com/m3rciful/intakebot/core/telegram/telegramtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

func messageCtx(t *testing.T, bot *tele.Bot, userID int64) tele.Context {
	t.Helper()
	return bot.NewContext(tele.Update{ID: 3, Message: &tele.Message{
		Text:   "hi",
		Sender: &tele.User{ID: userID},
		Chat:   &tele.Chat{ID: userID},
	}})
}

func TestRecoverConvertsPanic(t *testing.T) {
	bot := telegramtest.NewServer(t).Bot(t)
	h := Recover(func(tele.Context) error { panic("boom") })
	err := h(messageCtx(t, bot, 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	want := errors.New("plain")
	assert.Equal(t, want, Recover(func(tele.Context) error { return want })(messageCtx(t, bot, 1)))
}

func TestRateLimit(t *testing.T) {
	bot := telegramtest.NewServer(t).Bot(t)
	var passed, limited int
	h := RateLimit(RateLimitOptions{
		Interval:  time.Hour,
		OnLimited: func(tele.Context) error { limited++; return nil },
	})(func(tele.Context) error { passed++; return nil })

	require.NoError(t, h(messageCtx(t, bot, 1)))
	require.NoError(t, h(messageCtx(t, bot, 1)))
	require.NoError(t, h(messageCtx(t, bot, 2)))
	assert.Equal(t, 2, passed)
	assert.Equal(t, 1, limited)
}

func TestRateLimitExclude(t *testing.T) {
	bot := telegramtest.NewServer(t).Bot(t)
	var passed int
	h := RateLimit(RateLimitOptions{
		Interval: time.Hour,
		Exclude:  map[string]struct{}{coreconfig.UpdateMessage: {}},
	})(func(tele.Context) error { passed++; return nil })

	for i := 0; i < 3; i++ {
		require.NoError(t, h(messageCtx(t, bot, 1)))
	}
	assert.Equal(t, 3, passed)
}

func TestAdminOnly(t *testing.T) {
	bot := telegramtest.NewServer(t).Bot(t)
	var ran, rejected int
	h := AdminOnly(AdminOptions{
		AdminID:  7,
		OnReject: func(tele.Context) error { rejected++; return nil },
	})(func(tele.Context) error { ran++; return nil })

	require.NoError(t, h(messageCtx(t, bot, 7)))
	require.NoError(t, h(messageCtx(t, bot, 8)))
	assert.Equal(t, 1, ran)
	assert.Equal(t, 1, rejected)

	none := AdminOnly(AdminOptions{})(func(tele.Context) error { ran++; return nil })
	require.NoError(t, none(messageCtx(t, bot, 7)))
	assert.Equal(t, 1, ran)
}

func TestUpdateLoggerStoresContext(t *testing.T) {
	bot := telegramtest.NewServer(t).Bot(t)
	c := messageCtx(t, bot, 5)
	h := UpdateLogger(MessageMetrics(func(c tele.Context) error {
		_, ok := tghelpers.ContextFrom(c)
		assert.True(t, ok)
		n, kb := tghelpers.Counters(c)
		assert.Zero(t, n)
		assert.False(t, kb)
		return nil
	}))
	require.NoError(t, h(c))
	_, ok := c.Get(tghelpers.UpdateStartKey).(time.Time)
	assert.True(t, ok)
}
