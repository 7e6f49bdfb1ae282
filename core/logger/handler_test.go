package logger

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(buf *bytes.Buffer, format logFormat) (*structuredHandler, *asyncWriter) {
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	return newStructuredHandler(handlerConfig{
		level:    slog.LevelInfo,
		writer:   aw,
		format:   format,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	}), aw
}

func TestStructuredHandlerKVOrder(t *testing.T) {
	buf := &bytes.Buffer{}
	handler, aw := newTestHandler(buf, formatKV)
	ctx := WithRID(Background(), "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)

	log := slog.New(handler).With("component", "intake")
	LogEvent(ctx, log, slog.LevelInfo, "transition",
		slog.String("status", "ok"),
		slog.String("cause", "unit"),
	)
	require.NoError(t, aw.Close())

	tokens := strings.Split(strings.TrimSpace(buf.String()), " ")
	expected := []string{"ts=", "level=INFO", "component=intake", "event=transition", "status=ok", "rid=rid-123"}
	require.GreaterOrEqual(t, len(tokens), len(expected))
	for i, prefix := range expected {
		assert.Truef(t, strings.HasPrefix(tokens[i], prefix), "token %d = %s, expected prefix %s", i, tokens[i], prefix)
	}
}

func TestStructuredHandlerJSONOrder(t *testing.T) {
	buf := &bytes.Buffer{}
	handler, aw := newTestHandler(buf, formatJSON)
	ctx := WithRID(Background(), "rid-json")
	ctx = WithUpdateMeta(ctx, 11, 22, 33)

	log := slog.New(handler).With("component", "relay")
	LogEvent(ctx, log, slog.LevelError, "submit",
		slog.String("status", "fail"),
		slog.String("err", "boom"),
	)
	require.NoError(t, aw.Close())

	line := strings.TrimSpace(buf.String())
	require.True(t, strings.HasPrefix(line, "{"), line)
	pos := -1
	for _, pref := range []string{`{"ts":`, `"level":"ERROR"`, `"component":"relay"`, `"event":"submit"`, `"status":"fail"`, `"rid":"rid-json"`, `"user_id":22`} {
		idx := strings.Index(line, pref)
		require.Truef(t, idx > pos, "prefix %s not found in order within %s", pref, line)
		pos = idx
	}
}

func TestStructuredHandlerCompactRID(t *testing.T) {
	buf := &bytes.Buffer{}
	handler, aw := newTestHandler(buf, formatKV)
	rawRID := "123:456:789"
	LogEvent(WithRID(Background(), rawRID), slog.New(handler), slog.LevelInfo, "rid.test")
	require.NoError(t, aw.Close())

	line := buf.String()
	assert.Contains(t, line, "rid="+CompactRID(rawRID))
	assert.NotContains(t, line, "rid_full=")
	assert.Contains(t, line, "component=app")
}

func TestStructuredHandlerCompactRIDJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	handler, aw := newTestHandler(buf, formatJSON)
	rawRID := "12:34:56"
	LogEvent(WithRID(Background(), rawRID), slog.New(handler), slog.LevelInfo, "rid.test")
	require.NoError(t, aw.Close())

	line := buf.String()
	assert.Contains(t, line, `"rid":"`+CompactRID(rawRID)+`"`)
	assert.Contains(t, line, `"rid_full":"`+rawRID+`"`)
	assert.Contains(t, line, `"ts_unix_nano"`)
}

func TestStructuredHandlerDurationsAndGroups(t *testing.T) {
	buf := &bytes.Buffer{}
	handler, aw := newTestHandler(buf, formatKV)
	log := slog.New(handler).WithGroup("http")
	log.LogAttrs(Background(), slog.LevelInfo, "call",
		slog.Duration("duration", 1500*time.Millisecond),
		slog.String("empty", ""),
	)
	require.NoError(t, aw.Close())

	line := buf.String()
	assert.Contains(t, line, "http.duration_ms=1500")
	assert.NotContains(t, line, "http.empty")
	assert.Contains(t, line, "event=call")
}

func TestStructuredHandlerDropsBelowLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	handler, aw := newTestHandler(buf, formatKV)
	slog.New(handler).Debug("hidden")
	require.NoError(t, aw.Close())
	assert.Empty(t, buf.String())
}

func TestRatioSampler(t *testing.T) {
	s := newRatioSampler(1, 3)
	got := []bool{s.Allow(), s.Allow(), s.Allow(), s.Allow()}
	assert.Equal(t, []bool{true, false, false, true}, got)

	s.Set(0, 0)
	assert.True(t, s.Allow())

	num, den := parseRatioSpec("2/5")
	assert.Equal(t, [2]int{2, 5}, [2]int{num, den})
	num, den = parseRatioSpec("10")
	assert.Equal(t, [2]int{1, 10}, [2]int{num, den})
}

func TestSanitizeLimit(t *testing.T) {
	assert.Equal(t, "ab\tc", Sanitize("a\x00b\tc\u200b"))
	assert.Equal(t, "При", SanitizeLimit("Привет", 3))
	assert.Equal(t, "", SanitizeLimit("x", 0))
}

func TestStructuredHandlerWithAttrsDoesNotAlias(t *testing.T) {
	buf := &bytes.Buffer{}
	handler, aw := newTestHandler(buf, formatKV)
	base := slog.New(handler).With("component", "tg")
	relayLog := base.With("status", "ok")
	intakeLog := base.With("status", "fail")

	LogEvent(Background(), relayLog, slog.LevelInfo, "first")
	LogEvent(Background(), intakeLog, slog.LevelInfo, "second")
	require.NoError(t, aw.Close())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "status=ok")
	assert.NotContains(t, lines[0], "status=fail")
	assert.Contains(t, lines[1], "status=fail")
	assert.NotContains(t, lines[1], "status=ok")
}

func TestComponentAndTook(t *testing.T) {
	prev := L
	buf := &bytes.Buffer{}
	handler, aw := newTestHandler(buf, formatKV)
	L = slog.New(handler)
	t.Cleanup(func() { L = prev })

	Component(" relay ").Info("", slog.String("event", "submit"))
	Component("").Info("", slog.String("event", "bare"))
	require.NoError(t, aw.Close())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "component=relay")
	assert.NotContains(t, lines[1], "component=")

	assert.Zero(t, Took(time.Now().Add(time.Hour)))
	assert.GreaterOrEqual(t, Took(time.Now().Add(-1500*time.Microsecond)), time.Millisecond)
}
