package router

import (
	"strings"

	tg "github.com/m3rciful/intakebot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// Conversation is a per-user dialog that consumes free-form messages.
type Conversation interface {
	InProgress(userID int64) bool
	HandleMessage(c tele.Context) error
}

// MessageRoutes sends text, photo and other media messages to conv. Text
// that looks like a command is routed to the registry instead, and
// unknown commands are dropped.
func MessageRoutes(conv Conversation, reg *tg.Registry) []tg.Route {
	toConversation := func(kind string) tele.HandlerFunc {
		return func(c tele.Context) error {
			prefix := "idle."
			if user := c.Sender(); user != nil && conv.InProgress(user.ID) {
				prefix = "fsm."
			}
			return handleWithSummary(c, prefix+kind, func() error { return conv.HandleMessage(c) })
		}
	}

	text := toConversation("text")
	onText := func(c tele.Context) error {
		if word, ok := commandWord(c.Text()); ok {
			if key, cmd, found := reg.LookupCommand(word); found {
				name := handlerName("cmd.", key)
				return handleWithSummary(c, name, func() error { return cmd.Handler(c) })
			}
			logHandlerSummary(c, "cmd.unknown", outcomeSkip, nil)
			return nil
		}
		return text(c)
	}

	routes := []tg.Route{
		{Endpoint: tele.OnText, Handler: onText},
		{Endpoint: tele.OnPhoto, Handler: toConversation("photo")},
	}
	for _, m := range mediaEndpoints {
		routes = append(routes, tg.Route{Endpoint: m.endpoint, Handler: toConversation(m.kind)})
	}
	return routes
}

// mediaEndpoints are the non-image attachments a conversation may answer.
var mediaEndpoints = []struct {
	endpoint string
	kind     string
}{
	{tele.OnDocument, "document"},
	{tele.OnSticker, "sticker"},
	{tele.OnVideo, "video"},
	{tele.OnVoice, "voice"},
	{tele.OnAudio, "audio"},
	{tele.OnAnimation, "animation"},
	{tele.OnVideoNote, "video_note"},
}

// commandWord extracts "/name" from "/name@bot args".
func commandWord(text string) (string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	word, _, _ := strings.Cut(text, " ")
	word, _, _ = strings.Cut(word, "@")
	return word, len(word) > 1
}
