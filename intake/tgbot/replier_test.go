package tgbot

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/m3rciful/intakebot/core/logger"
	"github.com/m3rciful/intakebot/core/telegram/telegramtest"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v4"
)

func TestSentMessageIDWarnsWhenMissing(t *testing.T) {
	buf := &bytes.Buffer{}
	prev := logger.L
	logger.L = slog.New(slog.NewTextHandler(buf, nil))
	t.Cleanup(func() { logger.L = prev })

	bot := telegramtest.NewServer(t).Bot(t)
	c := bot.NewContext(message(10, func(m *tele.Message) { m.Text = "1500" }))

	assert.Equal(t, 501, sentMessageID(c, &tele.Message{ID: 501}))
	assert.Empty(t, buf.String())

	assert.Zero(t, sentMessageID(c, nil))
	assert.Contains(t, buf.String(), "send.photo.no_message_id")
	assert.Contains(t, buf.String(), "level=WARN")
}
