package tgbot

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync/atomic"

	"github.com/m3rciful/intakebot/core/logger"
	"github.com/m3rciful/intakebot/core/telegram/helpers"
	"github.com/m3rciful/intakebot/core/telegram/keyboard"
	"github.com/m3rciful/intakebot/intake"

	tele "gopkg.in/telebot.v4"
)

// replier sends engine output to the chat of one update.
type replier struct {
	c    tele.Context
	main *tele.ReplyMarkup
}

func (r replier) Send(_ context.Context, rep intake.Reply) error {
	opts := &tele.SendOptions{}
	switch rep.Markup {
	case intake.MarkupMain:
		opts.ReplyMarkup = r.main
	case intake.MarkupRemove:
		opts.ReplyMarkup = keyboard.RemoveKeyboard()
	}
	if rep.HTML {
		opts.ParseMode = tele.ModeHTML
	}
	return helpers.Send(r.c, rep.Text, opts)
}

func (r replier) SendPhoto(_ context.Context, fileID, caption string, options []intake.Option) (int, error) {
	buttons := make([]keyboard.InlineBtn, 0, len(options))
	for _, o := range options {
		buttons = append(buttons, keyboard.InlineBtn{Text: o.Label, Unique: o.Token})
	}
	photo := &tele.Photo{File: tele.File{FileID: fileID}, Caption: caption}
	msg, err := helpers.SendSync(r.c, photo, &tele.SendOptions{ReplyMarkup: keyboard.Stacked(buttons...)})
	if err != nil {
		return 0, err
	}
	return sentMessageID(r.c, msg), nil
}

// sentMessageID returns 0 when Telegram gave no message back; presses on
// that confirmation then cannot be matched to it.
func sentMessageID(c tele.Context, msg *tele.Message) int {
	if msg == nil || msg.ID == 0 {
		logger.Warn(helpers.BuildContext(c), "tg", "send.photo.no_message_id",
			slog.String("reason", "confirmation id unknown"),
		)
		return 0
	}
	return msg.ID
}

// EditCaption sends no reply_markup, which drops the inline buttons.
func (r replier) EditCaption(_ context.Context, messageID int, caption string) error {
	chat := r.c.Chat()
	if chat == nil {
		return errors.New("tgbot: edit caption without chat")
	}
	msg := tele.StoredMessage{MessageID: strconv.Itoa(messageID), ChatID: chat.ID}
	return helpers.EditCaption(r.c, msg, caption, nil)
}

// botFiles resolves file paths with getFile once the bot is running.
type botFiles struct {
	api atomic.Pointer[tele.API]
}

func (f *botFiles) bind(api tele.API) {
	f.api.Store(&api)
}

func (f *botFiles) ResolvePath(_ context.Context, fileID string) (string, error) {
	api := f.api.Load()
	if api == nil {
		return "", errors.New("tgbot: bot not started")
	}
	file, err := (*api).FileByID(fileID)
	if err != nil {
		return "", err
	}
	return file.FilePath, nil
}
