package telegramtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

func TestSendPhotoReturnsStoredPhoto(t *testing.T) {
	srv := NewServer(t)
	bot := srv.Bot(t)

	photo := &tele.Photo{File: tele.File{FileID: "p1"}, Caption: "check"}
	msg, err := bot.Send(&tele.Chat{ID: 42}, photo)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.NotZero(t, msg.ID)
	require.NotNil(t, msg.Photo)
	assert.Equal(t, "p1", msg.Photo.FileID)
	assert.Equal(t, "check", msg.Caption)

	calls := srv.Calls("sendPhoto")
	require.Len(t, calls, 1)
	assert.Equal(t, "42", calls[0].Str("chat_id"))
}

func TestFailReturnsAPIError(t *testing.T) {
	srv := NewServer(t)
	srv.Fail("sendMessage", 400, "Bad Request: chat not found")

	_, err := srv.Bot(t).Send(&tele.Chat{ID: 1}, "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}
