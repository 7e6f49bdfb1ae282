// Package telegram composes a telebot bot from routes, middleware and the
// ordered outbound dispatcher, and runs it until its context ends.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	coreconfig "github.com/m3rciful/intakebot/core/config"
	"github.com/m3rciful/intakebot/core/logger"
	tghelpers "github.com/m3rciful/intakebot/core/telegram/helpers"
	tgsender "github.com/m3rciful/intakebot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

// Middleware is a global middleware registered with bot.Use.
type Middleware struct {
	Name string
	Use  tele.MiddlewareFunc
}

// Route binds a handler to a telebot endpoint (command, tele.OnText, ...).
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// RunOptions controls RunTelegram.
type RunOptions struct {
	Config   *coreconfig.Config
	Registry *Registry
	Client   ClientOptions

	// Dispatcher is created from DispatcherOptions when nil. RunTelegram
	// closes it on exit either way.
	Dispatcher        *tgsender.Dispatcher
	DispatcherOptions tgsender.Options

	Middlewares []Middleware
	Routes      []Route

	// KeepWebhook skips removing a stale webhook in long-poll mode.
	KeepWebhook bool
	// Offline skips the getMe call on start; used by tests.
	Offline bool

	OnStart func(ctx context.Context, rt Runtime) error
	OnStop  func(ctx context.Context, rt Runtime) error
}

// Runtime exposes live components to lifecycle hooks.
type Runtime struct {
	Bot        *tele.Bot
	Dispatcher *tgsender.Dispatcher
	Registry   *Registry
}

// RunTelegram builds the bot and serves updates until ctx is done. A
// cancelled context is a clean shutdown and returns nil.
func RunTelegram(ctx context.Context, opts RunOptions) error {
	if opts.Config == nil {
		return errors.New("telegram: nil config provided")
	}
	cfg := opts.Config
	reg := opts.Registry
	if reg == nil {
		reg = NewRegistry()
	}

	start := time.Now()
	bot, err := tele.NewBot(tele.Settings{
		Token:   cfg.Telegram.Token,
		Poller:  BuildPoller(cfg),
		Client:  NewHTTPClient(opts.Client),
		Offline: opts.Offline,
		OnError: logUpdateError,
	})
	if err != nil {
		return fmt.Errorf("telegram: bot initialization failed: %w", err)
	}
	logMode(ctx, cfg, bot, time.Since(start))

	if cfg.Telegram.RunMode == coreconfig.RunModeLongpoll && !opts.KeepWebhook && !opts.Offline {
		if err := bot.RemoveWebhook(false); err != nil {
			logger.TG.Warn("failed to delete webhook",
				slog.String("event", "delete_webhook"),
				slog.String("err", err.Error()),
			)
		}
	}

	dispatcher := opts.Dispatcher
	if dispatcher == nil {
		dispatcher = tgsender.NewDispatcher(opts.DispatcherOptions)
	}
	tghelpers.SetDispatcher(dispatcher)
	defer func() {
		tghelpers.SetDispatcher(nil)
		dispatcher.Close()
	}()

	for _, mw := range opts.Middlewares {
		if mw.Use != nil {
			bot.Use(mw.Use)
		}
	}
	for _, route := range opts.Routes {
		if route.Endpoint != nil && route.Handler != nil {
			bot.Handle(route.Endpoint, route.Handler)
		}
	}
	if !opts.Offline {
		PublishCommands(bot, reg)
	}

	rt := Runtime{Bot: bot, Dispatcher: dispatcher, Registry: reg}
	if opts.OnStart != nil {
		if err := opts.OnStart(ctx, rt); err != nil {
			return err
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		bot.Start()
	}()

	select {
	case <-ctx.Done():
		bot.Stop()
		<-done
	case <-done:
	}

	if opts.OnStop != nil {
		// the run context is already cancelled here
		if err := opts.OnStop(context.WithoutCancel(ctx), rt); err != nil {
			return err
		}
	}
	return nil
}

func logMode(ctx context.Context, cfg *coreconfig.Config, bot *tele.Bot, took time.Duration) {
	attrs := []slog.Attr{
		slog.String("event", "mode"),
		slog.String("mode", cfg.Telegram.RunMode),
		slog.Duration("duration", logger.RoundMS(took)),
	}
	switch p := bot.Poller.(type) {
	case *tele.Webhook:
		attrs = append(attrs,
			slog.String("listen", p.Listen),
			slog.String("public_url", p.Endpoint.PublicURL),
		)
	case *tele.LongPoller:
		attrs = append(attrs, slog.Duration("timeout", p.Timeout))
	}
	logger.TG.LogAttrs(ctx, slog.LevelInfo, "telegram mode", attrs...)
}

// logUpdateError receives errors returned by handlers and from the poller.
func logUpdateError(err error, c tele.Context) {
	if c == nil {
		logger.TG.Error("telegram error",
			slog.String("event", "tg.error"),
			slog.String("err", err.Error()),
		)
		return
	}
	logger.Error(tghelpers.BuildContext(c), "tg", "tg.error",
		slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
	)
}
