package middleware

import (
	"log/slog"
	"time"

	"github.com/m3rciful/intakebot/core/logger"
	"github.com/m3rciful/intakebot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/intakebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// UpdateLogger attaches the request context (rid and update metadata) to
// the update and writes one sampled debug line on receipt.
func UpdateLogger(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		c.Set(tghelpers.UpdateStartKey, time.Now())
		ctx := tghelpers.BuildContext(c)

		if logger.ShouldSampleDebug() {
			attrs := []slog.Attr{
				slog.String("status", "ok"),
				slog.Int("update_id", c.Update().ID),
			}
			if chat := c.Chat(); chat != nil {
				attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
			}
			if user := c.Sender(); user != nil && user.Username != "" {
				attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
			}
			attrs = append(attrs, updateKindAttrs(c)...)
			logger.LogEvent(ctx, logger.TG, slog.LevelDebug, "update.received", attrs...)
		}
		return next(c)
	}
}

func updateKindAttrs(c tele.Context) []slog.Attr {
	upd := c.Update()
	switch {
	case upd.Callback != nil:
		key, payload := callbacks.ParseCallbackData(upd.Callback)
		attrs := []slog.Attr{slog.String("kind", "callback"), slog.String("cb_key", logger.SanitizeLimit(key, 128))}
		if payload != "" {
			attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(payload, 256)))
		}
		return attrs
	case upd.Message != nil && upd.Message.Photo != nil:
		return []slog.Attr{slog.String("kind", "photo")}
	case upd.Message != nil && upd.Message.Document != nil:
		return []slog.Attr{slog.String("kind", "document")}
	case upd.Message != nil:
		return []slog.Attr{
			slog.String("kind", "message"),
			slog.String("payload", logger.SanitizeLimit(upd.Message.Text, 256)),
		}
	}
	return []slog.Attr{slog.String("kind", "other")}
}
