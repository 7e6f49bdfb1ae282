package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/m3rciful/intakebot/core/logger"
	"github.com/m3rciful/intakebot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

// ErrDuplicate is returned when a command or callback key is registered twice.
var ErrDuplicate = errors.New("telegram: already registered")

// Registry holds bot commands and callback handlers keyed by their unique.
type Registry struct {
	mu               sync.RWMutex
	commands         map[string]commands.Command
	callbacks        map[string]tele.HandlerFunc
	callbackNotFound tele.HandlerFunc
}

// NewRegistry creates an empty Registry. Unknown callbacks are ignored
// unless SetCallbackNotFound installs a handler.
func NewRegistry() *Registry {
	return &Registry{
		commands:  make(map[string]commands.Command),
		callbacks: make(map[string]tele.HandlerFunc),
	}
}

// RegisterCommand adds a command. Names must start with a slash.
func (r *Registry) RegisterCommand(name string, cmd commands.Command) error {
	switch {
	case cmd.Handler == nil:
		return r.reject("register.command.skip", name, fmt.Errorf("telegram: command %q has no handler", name))
	case !strings.HasPrefix(name, "/") || len(name) < 2:
		return r.reject("register.command.skip", name, fmt.Errorf("telegram: command %q must start with '/'", name))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.commands[name]; exists {
		return r.reject("register.command.duplicate", name, fmt.Errorf("%w: command %s", ErrDuplicate, name))
	}
	r.commands[name] = cmd
	return nil
}

// RegisterCallback maps an inline button unique to its handler.
func (r *Registry) RegisterCallback(key string, handler tele.HandlerFunc) error {
	if key == "" || handler == nil {
		return r.reject("register.callback.skip", key, errors.New("telegram: invalid callback registration"))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.callbacks[key]; exists {
		return r.reject("register.callback.duplicate", key, fmt.Errorf("%w: callback %s", ErrDuplicate, key))
	}
	r.callbacks[key] = handler
	return nil
}

func (r *Registry) reject(event, name string, err error) error {
	logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, event,
		slog.String("name", name),
		slog.String("err", err.Error()),
	)
	return err
}

// Commands returns a copy of the registered commands.
func (r *Registry) Commands() map[string]commands.Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]commands.Command, len(r.commands))
	for k, v := range r.commands {
		out[k] = v
	}
	return out
}

// LookupCommand finds a command by name or alias and returns its canonical key.
func (r *Registry) LookupCommand(name string) (string, commands.Command, bool) {
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if cmd, ok := r.commands[name]; ok {
		return name, cmd, true
	}
	for key, cmd := range r.commands {
		if cmd.HasAlias(name) {
			return key, cmd, true
		}
	}
	return "", commands.Command{}, false
}

// MenuCommands lists commands for the Telegram menu, skipping hidden and
// admin-only ones.
func (r *Registry) MenuCommands() []tele.Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []tele.Command
	for name, meta := range r.commands {
		if !meta.InMenu() {
			continue
		}
		list = append(list, tele.Command{Text: strings.TrimPrefix(name, "/"), Description: meta.Description})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Text < list[j].Text })
	return list
}

// Callback returns the handler registered for key.
func (r *Registry) Callback(key string) (tele.HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.callbacks[key]
	return h, ok
}

// CallbackKeys returns the sorted callback keys.
func (r *Registry) CallbackKeys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.callbacks))
	for k := range r.callbacks {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetCallbackNotFound installs the handler for callbacks with unknown keys.
func (r *Registry) SetCallbackNotFound(h tele.HandlerFunc) {
	r.mu.Lock()
	r.callbackNotFound = h
	r.mu.Unlock()
}

// CallbackNotFound returns the fallback for unknown callbacks, possibly nil.
func (r *Registry) CallbackNotFound() tele.HandlerFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.callbackNotFound
}

// PublishCommands sets the command menu shown by Telegram clients.
func PublishCommands(bot *tele.Bot, reg *Registry) {
	list := reg.MenuCommands()
	if len(list) == 0 {
		return
	}
	if err := bot.SetCommands(list); err != nil {
		logger.TWire.LogAttrs(context.Background(), slog.LevelError, "register.commands.set_failed",
			slog.String("err", err.Error()),
		)
		return
	}
	logger.TWire.LogAttrs(context.Background(), slog.LevelDebug, "register.commands.set",
		slog.Int("commands", len(list)),
	)
}
