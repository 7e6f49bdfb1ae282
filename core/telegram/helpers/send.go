package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/intakebot/core/logger"
	"github.com/m3rciful/intakebot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the ordered sender used by the helpers. With no
// dispatcher set the helpers call the Bot API inline.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

// Send queues a message to the update's chat and returns once it is
// accepted. what is anything tele.Bot.Send accepts.
func Send(c tele.Context, what any, opts *tele.SendOptions) error {
	countReply(c, opts)
	return enqueue(c, "send."+kindOf(what), "send"+endpointOf(what), func() error {
		_, err := c.Bot().Send(c.Recipient(), what, withOptions(opts)...)
		return err
	})
}

// SendSync sends a message and waits for Telegram to return it, keeping
// order with anything queued before.
func SendSync(c tele.Context, what any, opts *tele.SendOptions) (*tele.Message, error) {
	countReply(c, opts)
	var msg *tele.Message
	run := func() error {
		m, err := c.Bot().Send(c.Recipient(), what, withOptions(opts)...)
		msg = m
		return err
	}
	disp := globalDispatcher.Load()
	if disp == nil {
		return msg, run()
	}
	err := disp.Do(BuildContext(c), "send."+kindOf(what), "send"+endpointOf(what), run)
	if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
		logFallback(c, "send."+kindOf(what), err)
		err = run()
	}
	return msg, err
}

// EditCaption queues a caption edit of a message sent earlier.
func EditCaption(c tele.Context, msg tele.Editable, caption string, opts *tele.SendOptions) error {
	countReply(c, opts)
	return enqueue(c, "edit.caption", "editMessageCaption", func() error {
		_, err := c.Bot().EditCaption(msg, caption, withOptions(opts)...)
		return err
	})
}

func enqueue(c tele.Context, action, endpoint string, run func() error) error {
	disp := globalDispatcher.Load()
	if disp == nil {
		return run()
	}
	err := disp.Enqueue(BuildContext(c), action, endpoint, run)
	if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
		logFallback(c, action, err)
		return run()
	}
	return err
}

func logFallback(c tele.Context, action string, err error) {
	logger.Warn(BuildContext(c), "tg.sender", "queue.fallback",
		slog.String("action", action),
		slog.String("err", err.Error()),
	)
}

func withOptions(opts *tele.SendOptions) []any {
	if opts == nil {
		return nil
	}
	return []any{opts}
}

func kindOf(what any) string {
	switch what.(type) {
	case *tele.Photo:
		return "photo"
	case string:
		return "text"
	}
	return "other"
}

func endpointOf(what any) string {
	switch what.(type) {
	case *tele.Photo:
		return "Photo"
	case string:
		return "Message"
	}
	return ""
}
