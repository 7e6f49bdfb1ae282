package middleware

import (
	"log/slog"

	"github.com/m3rciful/intakebot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// AdminOptions defines how admin-only checks behave.
type AdminOptions struct {
	AdminID int64
	// OnReject runs for non-admin senders; nil drops the update silently.
	OnReject tele.HandlerFunc
}

// AdminOnly lets only the configured admin reach next. With no admin
// configured every sender is rejected.
func AdminOnly(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if sender := c.Sender(); opts.AdminID != 0 && sender != nil && sender.ID == opts.AdminID {
				return next(c)
			}
			var userID int64
			if sender := c.Sender(); sender != nil {
				userID = sender.ID
			}
			logger.TG.Warn("admin only",
				slog.String("event", "tg.access.denied"),
				slog.Int64("user_id", userID),
			)
			if opts.OnReject != nil {
				return opts.OnReject(c)
			}
			return nil
		}
	}
}
