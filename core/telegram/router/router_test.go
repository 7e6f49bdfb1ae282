package router

import (
	"errors"
	"testing"

	tg "github.com/m3rciful/intakebot/core/telegram"
	"github.com/m3rciful/intakebot/core/telegram/commands"
	"github.com/m3rciful/intakebot/core/telegram/telegramtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

type fakeConversation struct {
	active map[int64]bool
	seen   []string
}

func (f *fakeConversation) InProgress(userID int64) bool { return f.active[userID] }

func (f *fakeConversation) HandleMessage(c tele.Context) error {
	switch msg := c.Message(); {
	case msg.Photo != nil:
		f.seen = append(f.seen, "photo")
	case msg.Document != nil:
		f.seen = append(f.seen, "document")
	case msg.Text == "":
		f.seen = append(f.seen, "media")
	default:
		f.seen = append(f.seen, msg.Text)
	}
	return nil
}

func textUpdate(text string) tele.Update {
	user := &tele.User{ID: 10, FirstName: "Ann"}
	return tele.Update{ID: 1, Message: &tele.Message{
		ID:     5,
		Text:   text,
		Sender: user,
		Chat:   &tele.Chat{ID: 10, Type: tele.ChatPrivate},
	}}
}

func routeFor(routes []tg.Route, endpoint any) tele.HandlerFunc {
	for _, r := range routes {
		if r.Endpoint == endpoint {
			return r.Handler
		}
	}
	return nil
}

func TestMessageRoutesDispatch(t *testing.T) {
	srv := telegramtest.NewServer(t)
	bot := srv.Bot(t)

	var started int
	reg := tg.NewRegistry()
	require.NoError(t, reg.RegisterCommand("/start", commands.Command{
		Handler: func(tele.Context) error { started++; return nil },
	}))

	conv := &fakeConversation{active: map[int64]bool{10: true}}
	routes := MessageRoutes(conv, reg)
	onText := routeFor(routes, tele.OnText)
	require.NotNil(t, onText)

	require.NoError(t, onText(bot.NewContext(textUpdate("TestServer"))))
	require.NoError(t, onText(bot.NewContext(textUpdate("/start@test_bot"))))
	require.NoError(t, onText(bot.NewContext(textUpdate("/nope"))))

	photo := textUpdate("")
	photo.Message.Photo = &tele.Photo{File: tele.File{FileID: "p1"}}
	require.NoError(t, routeFor(routes, tele.OnPhoto)(bot.NewContext(photo)))

	doc := textUpdate("")
	doc.Message.Document = &tele.Document{File: tele.File{FileID: "d1"}}
	require.NoError(t, routeFor(routes, tele.OnDocument)(bot.NewContext(doc)))

	assert.Equal(t, []string{"TestServer", "photo", "document"}, conv.seen)
	assert.Equal(t, 1, started)
}

func TestMessageRoutesCoverNonImageMedia(t *testing.T) {
	srv := telegramtest.NewServer(t)
	bot := srv.Bot(t)
	conv := &fakeConversation{active: map[int64]bool{10: true}}
	routes := MessageRoutes(conv, tg.NewRegistry())

	media := map[string]func(*tele.Message){
		tele.OnSticker:   func(m *tele.Message) { m.Sticker = &tele.Sticker{} },
		tele.OnVideo:     func(m *tele.Message) { m.Video = &tele.Video{} },
		tele.OnVoice:     func(m *tele.Message) { m.Voice = &tele.Voice{} },
		tele.OnAudio:     func(m *tele.Message) { m.Audio = &tele.Audio{} },
		tele.OnAnimation: func(m *tele.Message) { m.Animation = &tele.Animation{} },
		tele.OnVideoNote: func(m *tele.Message) { m.VideoNote = &tele.VideoNote{} },
	}
	for endpoint, fill := range media {
		handler := routeFor(routes, endpoint)
		require.NotNil(t, handler, "no route for %q", endpoint)
		upd := textUpdate("")
		fill(upd.Message)
		require.NoError(t, handler(bot.NewContext(upd)))
	}
	assert.Len(t, conv.seen, len(media))
	for _, kind := range conv.seen {
		assert.Equal(t, "media", kind)
	}
}

func TestCallbackRoute(t *testing.T) {
	srv := telegramtest.NewServer(t)
	bot := srv.Bot(t)

	var got []string
	reg := tg.NewRegistry()
	require.NoError(t, reg.RegisterCallback("confirm_submit", func(c tele.Context) error {
		got = append(got, c.Callback().ID)
		return nil
	}))
	route := CallbackRoute(reg)
	assert.Equal(t, tele.OnCallback, route.Endpoint)

	cb := func(data string) tele.Context {
		return bot.NewContext(tele.Update{ID: 2, Callback: &tele.Callback{
			ID:      "cb1",
			Data:    data,
			Sender:  &tele.User{ID: 10},
			Message: &tele.Message{ID: 101, Chat: &tele.Chat{ID: 10}},
		}})
	}
	require.NoError(t, route.Handler(cb("\fconfirm_submit")))
	require.NoError(t, route.Handler(cb("\funknown")))

	assert.Equal(t, []string{"cb1"}, got)
	assert.Len(t, srv.Calls("answerCallbackQuery"), 2)
}

func TestCommandRoutesAdminOnly(t *testing.T) {
	srv := telegramtest.NewServer(t)
	bot := srv.Bot(t)

	var ran int
	reg := tg.NewRegistry()
	require.NoError(t, reg.RegisterCommand("/stats", commands.Command{
		Handler:   func(tele.Context) error { ran++; return nil },
		AdminOnly: true,
		Hidden:    true,
	}))
	require.NoError(t, reg.RegisterCommand("/cancel", commands.Command{
		Handler: func(tele.Context) error { return errors.New("boom") },
		Aliases: []string{"stop"},
	}))

	routes := CommandRoutes(reg, CommandOptions{AdminID: 99})
	require.Len(t, routes, 3)

	stats := routeFor(routes, "/stats")
	require.NoError(t, stats(bot.NewContext(textUpdate("/stats"))))
	assert.Zero(t, ran)

	admin := textUpdate("/stats")
	admin.Message.Sender = &tele.User{ID: 99}
	require.NoError(t, stats(bot.NewContext(admin)))
	assert.Equal(t, 1, ran)

	assert.EqualError(t, routeFor(routes, "/stop")(bot.NewContext(textUpdate("/stop"))), "boom")
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "FLOODERROR", errorCode(tele.FloodError{}))
	assert.Equal(t, "ERRORSTRING", errorCode(errors.New("x")))
	assert.Equal(t, "cmd.start", handlerName("cmd.", "/Start"))
	assert.Equal(t, "callback.unknown", handlerName("callback.", ""))
}
