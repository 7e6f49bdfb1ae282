package router

import (
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/m3rciful/intakebot/core/logger"
	tghelpers "github.com/m3rciful/intakebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// outcome labels accepted by the log schema.
const (
	outcomeOK   = "ok"
	outcomeFail = "fail"
	outcomeSkip = "skip"
)

// handleWithSummary runs fn and writes one handler.handled line for it.
func handleWithSummary(c tele.Context, name string, fn func() error, extras ...slog.Attr) error {
	tghelpers.WithHandler(c, name)
	err := fn()
	outcome := outcomeOK
	if err != nil {
		outcome = outcomeFail
	}
	logHandlerSummary(c, name, outcome, err, extras...)
	return err
}

func logHandlerSummary(c tele.Context, name, outcome string, err error, extras ...slog.Attr) {
	ctx := tghelpers.WithHandler(c, name)
	msgs, kb := tghelpers.Counters(c)

	status := "ok"
	if err != nil {
		status = "fail"
	}
	attrs := []slog.Attr{
		slog.String("status", status),
		slog.String("handler", name),
		slog.String("outcome", outcome),
		slog.Int("messages", msgs),
		slog.Bool("kb", kb),
	}
	if start, ok := c.Get(tghelpers.UpdateStartKey).(time.Time); ok {
		attrs = append(attrs, slog.Duration("duration", logger.RoundMS(time.Since(start))))
	}
	if err != nil {
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.String("err_code", errorCode(err)),
		)
	}
	attrs = append(attrs, extras...)

	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelError
	}
	logger.LogEvent(ctx, logger.TG, level, "handler.handled", attrs...)
}

func handlerName(prefix, name string) string {
	name = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "/"))
	if name == "" {
		name = "unknown"
	}
	return prefix + strings.ReplaceAll(name, " ", "_")
}

// errorCode names the innermost error type, e.g. FLOODERROR or ERROR.
func errorCode(err error) string {
	for inner := errors.Unwrap(err); inner != nil; inner = errors.Unwrap(err) {
		err = inner
	}
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Name() == "" {
		return "UNKNOWN_ERROR"
	}
	return strings.ToUpper(t.Name())
}
