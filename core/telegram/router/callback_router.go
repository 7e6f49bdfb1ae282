package router

import (
	"log/slog"

	tg "github.com/m3rciful/intakebot/core/telegram"
	"github.com/m3rciful/intakebot/core/telegram/callbacks"

	tele "gopkg.in/telebot.v4"
)

// CallbackRoute answers every callback query and routes it by its unique
// through the registry. Unknown keys go to the registry's not-found
// handler, or are dropped.
func CallbackRoute(reg *tg.Registry) tg.Route {
	handler := func(c tele.Context) error {
		cb := c.Callback()
		if cb == nil {
			return nil
		}
		// stops the client's loading spinner
		_ = c.Respond()

		key := callbacks.Key(cb)
		name := handlerName("callback.", key)
		extras := []slog.Attr{slog.String("cb_key", key)}

		if h, ok := reg.Callback(key); ok {
			return handleWithSummary(c, name, func() error { return h(c) }, extras...)
		}
		extras = append(extras, slog.String("reason", "not_found"))
		if fallback := reg.CallbackNotFound(); fallback != nil {
			return handleWithSummary(c, name, func() error { return fallback(c) }, extras...)
		}
		logHandlerSummary(c, name, outcomeSkip, nil, extras...)
		return nil
	}
	return tg.Route{Endpoint: tele.OnCallback, Handler: handler}
}
