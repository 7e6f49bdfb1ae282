// Package router binds registry entries and conversation handlers to
// telebot endpoints, logging one summary line per handled update.
package router

import (
	"log/slog"
	"sort"

	"github.com/m3rciful/intakebot/core/logger"
	tg "github.com/m3rciful/intakebot/core/telegram"
	"github.com/m3rciful/intakebot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandOptions configures admin checks for admin-only commands.
type CommandOptions struct {
	AdminID       int64
	OnAdminReject tele.HandlerFunc
}

// CommandRoutes turns every registered command and alias into a route.
func CommandRoutes(reg *tg.Registry, opts CommandOptions) []tg.Route {
	if reg == nil {
		return nil
	}
	adminOnly := middleware.AdminOnly(middleware.AdminOptions{
		AdminID:  opts.AdminID,
		OnReject: opts.OnAdminReject,
	})

	cmds := reg.Commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)

	var routes []tg.Route
	for _, name := range names {
		def := cmds[name]
		summary := handlerName("cmd.", name)
		h := func(c tele.Context) error {
			return handleWithSummary(c, summary, func() error { return def.Handler(c) })
		}
		if def.AdminOnly {
			h = adminOnly(h)
		}
		routes = append(routes, tg.Route{Endpoint: name, Handler: h})
		for _, alias := range def.AliasRoutes() {
			routes = append(routes, tg.Route{Endpoint: alias, Handler: h})
		}
	}

	logger.TWire.Info("commands wired",
		slog.String("event", "tg.wire"),
		slog.Int("commands", len(cmds)),
		slog.Int("routes", len(routes)),
	)
	return routes
}
