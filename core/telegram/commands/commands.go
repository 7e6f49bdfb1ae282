// Package commands describes slash commands exposed by a bot.
package commands

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Command is a slash command handler with its menu metadata.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	AdminOnly   bool
	Hidden      bool
	// Aliases are extra names routed to the same handler, with or without
	// the leading slash.
	Aliases []string
}

// InMenu reports whether the command belongs in the Telegram command menu.
// Hidden, admin-only and undescribed commands stay out of it.
func (c Command) InMenu() bool {
	return !c.Hidden && !c.AdminOnly && strings.TrimSpace(c.Description) != ""
}

// AliasRoutes returns the aliases as "/name" endpoints.
func (c Command) AliasRoutes() []string {
	out := make([]string, 0, len(c.Aliases))
	for _, alias := range c.Aliases {
		if name := strings.TrimLeft(strings.TrimSpace(alias), "/"); name != "" {
			out = append(out, "/"+name)
		}
	}
	return out
}

// HasAlias reports whether name ("/stop" or "stop") is one of the aliases.
func (c Command) HasAlias(name string) bool {
	name = "/" + strings.TrimLeft(name, "/")
	for _, route := range c.AliasRoutes() {
		if route == name {
			return true
		}
	}
	return false
}
