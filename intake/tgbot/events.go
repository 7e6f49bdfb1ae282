package tgbot

import (
	"github.com/m3rciful/intakebot/core/telegram/callbacks"
	"github.com/m3rciful/intakebot/core/telegram/format"
	"github.com/m3rciful/intakebot/intake"

	tele "gopkg.in/telebot.v4"
)

func userFrom(c tele.Context) (intake.User, bool) {
	sender := c.Sender()
	if sender == nil {
		return intake.User{}, false
	}
	name := format.FullName(sender.FirstName, sender.LastName)
	if name == "" {
		name = sender.Username
	}
	return intake.User{ID: sender.ID, Name: name}, true
}

// messageEvent classifies an incoming message. Photos win over captions;
// any other media is an attachment.
func messageEvent(c tele.Context) (intake.Event, bool) {
	u, ok := userFrom(c)
	msg := c.Message()
	if !ok || msg == nil {
		return intake.Event{}, false
	}
	switch {
	case msg.Photo != nil:
		return intake.Photo(u, msg.Photo.FileID), true
	case msg.Document != nil, msg.Video != nil, msg.Audio != nil, msg.Voice != nil,
		msg.Sticker != nil, msg.Animation != nil, msg.VideoNote != nil:
		return intake.Attachment(u), true
	case msg.Text != "":
		return intake.Text(u, msg.Text), true
	}
	return intake.Event{}, false
}

func choiceEvent(c tele.Context) (intake.Event, bool) {
	u, ok := userFrom(c)
	cb := c.Callback()
	if !ok || cb == nil {
		return intake.Event{}, false
	}
	return intake.Choice(u, callbacks.Key(cb), callbacks.MessageID(cb)), true
}
