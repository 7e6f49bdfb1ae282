// Package tgbot connects the intake engine to Telegram: it turns updates
// into engine events and engine replies into Bot API calls.
package tgbot

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	tg "github.com/m3rciful/intakebot/core/telegram"
	"github.com/m3rciful/intakebot/core/telegram/commands"
	"github.com/m3rciful/intakebot/core/telegram/helpers"
	"github.com/m3rciful/intakebot/core/telegram/keyboard"
	"github.com/m3rciful/intakebot/core/telegram/router"
	tgsender "github.com/m3rciful/intakebot/core/telegram/sender"
	"github.com/m3rciful/intakebot/intake"
	"github.com/m3rciful/intakebot/intake/journal"

	tele "gopkg.in/telebot.v4"
)

// Options wires an App. Journal defaults to a no-op journal.
type Options struct {
	Config  *intake.Config
	Relay   intake.Submitter
	Journal journal.Journal
	Store   intake.Store
}

// App is the Telegram front end of the intake engine.
type App struct {
	cfg        *intake.Config
	engine     *intake.Engine
	journal    journal.Journal
	files      *botFiles
	registry   *tg.Registry
	main       *tele.ReplyMarkup
	dispatcher atomic.Pointer[tgsender.Dispatcher]
}

// New builds the App and registers its commands and callbacks.
func New(opts Options) (*App, error) {
	if opts.Config == nil {
		return nil, errors.New("tgbot: nil config provided")
	}
	if opts.Relay == nil {
		return nil, errors.New("tgbot: relay is required")
	}
	jr := opts.Journal
	if jr == nil {
		jr = journal.Noop{}
	}

	a := &App{
		cfg:      opts.Config,
		journal:  jr,
		files:    &botFiles{},
		registry: tg.NewRegistry(),
		main:     keyboard.Persistent([]string{intake.TriggerPhrase}),
	}
	a.engine = intake.NewEngine(intake.Options{
		Store:   opts.Store,
		Files:   a.files,
		Relay:   opts.Relay,
		Journal: jr,
	})
	if err := a.register(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *App) register() error {
	// unknown tokens still reach the engine, which ignores them
	a.registry.SetCallbackNotFound(a.choice)
	return errors.Join(
		a.registry.RegisterCommand("/start", commands.Command{
			Handler:     a.command("start"),
			Description: "Начать",
		}),
		a.registry.RegisterCommand("/cancel", commands.Command{
			Handler:     a.command("cancel"),
			Description: "Отменить заявку",
		}),
		a.registry.RegisterCommand("/stats", commands.Command{
			Handler:   a.stats,
			AdminOnly: true,
			Hidden:    true,
		}),
		a.registry.RegisterCallback(intake.TokenConfirm, a.choice),
		a.registry.RegisterCallback(intake.TokenRestart, a.choice),
	)
}

// Engine exposes the conversation engine.
func (a *App) Engine() *intake.Engine { return a.engine }

// Registry exposes the registered commands and callbacks.
func (a *App) Registry() *tg.Registry { return a.registry }

// InProgress reports whether the user is in the middle of a submission.
func (a *App) InProgress(userID int64) bool {
	return a.engine.InProgress(userID)
}

// HandleMessage feeds a text, photo or document message to the engine.
func (a *App) HandleMessage(c tele.Context) error {
	ev, ok := messageEvent(c)
	if !ok {
		return nil
	}
	return a.handle(c, ev)
}

func (a *App) command(name string) tele.HandlerFunc {
	return func(c tele.Context) error {
		u, ok := userFrom(c)
		if !ok {
			return nil
		}
		return a.handle(c, intake.Command(u, name))
	}
}

func (a *App) choice(c tele.Context) error {
	ev, ok := choiceEvent(c)
	if !ok {
		return nil
	}
	return a.handle(c, ev)
}

func (a *App) handle(c tele.Context, ev intake.Event) error {
	return a.engine.Handle(helpers.BuildContext(c), ev, replier{c: c, main: a.main})
}

func (a *App) stats(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	var sendErrors uint64
	if d := a.dispatcher.Load(); d != nil {
		sendErrors = d.ErrorCount()
	}
	text := fmt.Sprintf("Активных заявок: %d\nОшибок отправки: %d", a.engine.ActiveSessions(), sendErrors)
	if st, err := a.journal.Stats(ctx); err == nil {
		text += fmt.Sprintf("\nПринято: %d\nОтклонено: %d", st.Accepted, st.Rejected)
	}
	return helpers.Send(c, text, nil)
}

// TelegramRunOptions assembles routes, middleware and lifecycle hooks.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	core := a.cfg.CoreConfig()
	dispatcher := tgsender.NewDispatcher(tgsender.Options{})
	a.dispatcher.Store(dispatcher)

	routes := router.CommandRoutes(a.registry, router.CommandOptions{AdminID: core.Telegram.AdminID})
	routes = append(routes, router.CallbackRoute(a.registry))
	routes = append(routes, router.MessageRoutes(a, a.registry)...)

	return tg.RunOptions{
		Config:      core,
		Registry:    a.registry,
		Dispatcher:  dispatcher,
		Middlewares: tg.DefaultMiddlewares(core, nil),
		Routes:      routes,
		OnStart: func(_ context.Context, rt tg.Runtime) error {
			a.files.bind(rt.Bot)
			return nil
		},
	}, nil
}
