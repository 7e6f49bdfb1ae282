package middleware

import (
	tghelpers "github.com/m3rciful/intakebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// MessageMetrics resets the reply counters read by the handler summary.
func MessageMetrics(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		tghelpers.ResetCounters(c)
		return next(c)
	}
}
