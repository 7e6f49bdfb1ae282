// Package helpers carries per-update context and queued reply helpers
// shared by handlers.
package helpers

import (
	"context"

	"github.com/m3rciful/intakebot/core/logger"

	tele "gopkg.in/telebot.v4"
)

const (
	contextKey = "request_ctx"
	ridKey     = "rid"
	// UpdateStartKey holds the time.Time the update entered the middleware chain.
	UpdateStartKey = "update_start"
)

// ContextFrom returns the context stored on c by BuildContext.
func ContextFrom(c tele.Context) (context.Context, bool) {
	if c == nil {
		return nil, false
	}
	ctx, ok := c.Get(contextKey).(context.Context)
	return ctx, ok && ctx != nil
}

// BuildContext returns the request context for the update, creating it on
// first use. The context carries rid plus update, user and chat ids.
func BuildContext(c tele.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if cached, ok := ContextFrom(c); ok {
		return cached
	}

	var chatID, userID int64
	if chat := c.Chat(); chat != nil {
		chatID = chat.ID
	}
	if user := c.Sender(); user != nil {
		userID = user.ID
	}
	updateID := c.Update().ID

	rid, _ := c.Get(ridKey).(string)
	if rid == "" {
		rid = logger.BuildRID(updateID, chatID, userID)
		c.Set(ridKey, rid)
	}

	ctx := logger.WithRID(context.Background(), rid)
	ctx = logger.WithUpdateMeta(ctx, updateID, userID, chatID)
	ctx = logger.WithLogger(ctx, logger.TG)
	c.Set(contextKey, ctx)
	return ctx
}

// WithHandler tags the stored context with the handler name.
func WithHandler(c tele.Context, handler string) context.Context {
	ctx := BuildContext(c)
	if handler == "" || logger.HandlerFrom(ctx) == handler {
		return ctx
	}
	ctx = logger.WithHandler(ctx, handler)
	c.Set(contextKey, ctx)
	return ctx
}
