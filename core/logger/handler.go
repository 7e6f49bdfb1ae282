package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

type logFormat string

const (
	formatJSON logFormat = "json"
	formatKV   logFormat = "kv"

	timeFormatMillis = "2006-01-02T15:04:05.000Z07:00"
)

type handlerConfig struct {
	level    slog.Leveler
	writer   *asyncWriter
	format   logFormat
	keyOrder []string
}

// structuredHandler renders records as flat key sets: dotted keys for groups,
// durations in milliseconds, a fixed leading key order.
type structuredHandler struct {
	cfg    handlerConfig
	attrs  []slog.Attr
	groups []string
}

// fields is one rendered log line before encoding.
type fields map[string]any

func newStructuredHandler(cfg handlerConfig) *structuredHandler {
	if cfg.level == nil {
		cfg.level = slog.LevelInfo
	}
	if cfg.keyOrder == nil {
		cfg.keyOrder = append([]string(nil), defaultKeyOrder...)
	}
	return &structuredHandler{cfg: cfg}
}

// Enabled reports whether the handler allows processing the provided level.
func (h *structuredHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.cfg.level.Level()
}

// Handle formats the slog.Record and writes it using the configured writer.
func (h *structuredHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.cfg.writer == nil {
		return fmt.Errorf("logger: writer not initialized")
	}

	f := make(fields, 16)
	ts := r.Time.UTC()
	f["ts"] = ts.Truncate(time.Millisecond).Format(timeFormatMillis)
	f["level"] = normalizeLevel(r.Level.String())
	if h.cfg.format == formatJSON {
		f["ts_unix_nano"] = ts.UnixNano()
	}

	prefix := strings.Join(h.groups, ".")
	for _, a := range h.attrs {
		f.add(prefix, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		f.add(prefix, a)
		return true
	})
	f.fillFromContext(ctx)
	f.compactRID(h.cfg.format == formatJSON)

	if f.str("event") == "" {
		f["event"] = r.Message
		if r.Message == "" {
			f["event"] = "unknown"
		}
	}
	if f.str("component") == "" {
		f["component"] = "app"
	}
	f.sanitizeEnums()
	f.prune()

	var line []byte
	if h.cfg.format == formatJSON {
		var err error
		if line, err = f.json(h.cfg.keyOrder); err != nil {
			return err
		}
	} else {
		line = f.kv(h.cfg.keyOrder)
	}
	return h.cfg.writer.Write(append(line, '\n'))
}

// WithAttrs returns a shallow copy of the handler enriched with attrs.
func (h *structuredHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

// WithGroup returns a shallow copy of the handler with an additional group prefix.
func (h *structuredHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}

func (f fields) add(prefix string, a slog.Attr) {
	key := a.Key
	switch {
	case key == "":
		key = prefix
	case prefix != "":
		key = prefix + "." + key
	}
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		for _, child := range v.Group() {
			f.add(key, child)
		}
		return
	}
	if key == "" {
		return
	}
	if k, val, ok := normalizeValue(key, v); ok {
		f[k] = val
	}
}

func normalizeValue(key string, v slog.Value) (string, any, bool) {
	switch v.Kind() {
	case slog.KindString:
		return key, strings.TrimSpace(v.String()), true
	case slog.KindBool:
		return key, v.Bool(), true
	case slog.KindInt64:
		return key, v.Int64(), true
	case slog.KindUint64:
		if u := v.Uint64(); u <= math.MaxInt64 {
			return key, int64(u), true
		}
		return key, v.Uint64(), true
	case slog.KindFloat64:
		return key, v.Float64(), true
	case slog.KindDuration:
		return msKey(key), RoundMS(v.Duration()).Milliseconds(), true
	case slog.KindTime:
		return key, v.Time().UTC().Format(time.RFC3339Nano), true
	}

	switch x := v.Any().(type) {
	case nil:
		return key, nil, false
	case error:
		return key, x.Error(), true
	case string:
		return key, strings.TrimSpace(x), true
	case time.Duration:
		return msKey(key), RoundMS(x).Milliseconds(), true
	case fmt.Stringer:
		return key, x.String(), true
	default:
		return key, fmt.Sprint(x), true
	}
}

// msKey renames duration keys so the unit is visible: duration -> duration_ms.
func msKey(key string) string {
	switch {
	case key == "duration":
		return "duration_ms"
	case strings.HasSuffix(key, "_ms"):
		return key
	default:
		return key + "_ms"
	}
}

func (f fields) str(key string) string {
	v, ok := f[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func (f fields) setIfAbsent(key string, v any) {
	if _, ok := f[key]; !ok {
		f[key] = v
	}
}

func (f fields) fillFromContext(ctx context.Context) {
	if ctx == nil {
		return
	}
	if rid := RIDFrom(ctx); rid != "" {
		f.setIfAbsent("rid", rid)
	}
	if uid := UserIDFrom(ctx); uid != 0 {
		f.setIfAbsent("user_id", uid)
	}
	if updateID := UpdateIDFrom(ctx); updateID != 0 {
		f.setIfAbsent("update_id", updateID)
	}
	if cid := ChatIDFrom(ctx); cid != 0 {
		f.setIfAbsent("chat_id", cid)
	}
	if handler := HandlerFrom(ctx); handler != "" {
		f.setIfAbsent("handler", handler)
	}
}

// compactRID shortens the rid; JSON output keeps the raw value as rid_full.
func (f fields) compactRID(keepFull bool) {
	rid := f.str("rid")
	compact := CompactRID(rid)
	if compact == "" || compact == rid {
		return
	}
	if keepFull {
		f.setIfAbsent("rid_full", rid)
	}
	f["rid"] = compact
}

func (f fields) sanitizeEnums() {
	if s := f.str("status"); s != "" {
		f["status"], _ = normalizeStatus(s)
	}
	if o := f.str("outcome"); o != "" {
		if normalized, ok := normalizeOutcome(o); ok {
			f["outcome"] = normalized
		} else {
			delete(f, "outcome")
		}
	}
}

func (f fields) prune() {
	for k, v := range f {
		if v == nil {
			delete(f, k)
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			delete(f, k)
		}
	}
}

// orderedKeys lists keys from order first, then the rest alphabetically.
func (f fields) orderedKeys(order []string) []string {
	keys := make([]string, 0, len(f))
	seen := make(map[string]struct{}, len(f))
	for _, k := range order {
		if _, ok := f[k]; ok {
			if _, dup := seen[k]; !dup {
				keys = append(keys, k)
				seen[k] = struct{}{}
			}
		}
	}
	rest := make([]string, 0, len(f)-len(keys))
	for k := range f {
		if _, ok := seen[k]; !ok {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

func (f fields) json(order []string) ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range f.orderedKeys(order) {
		data, err := json.Marshal(f[k])
		if err != nil {
			return nil, err
		}
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(k))
		b.WriteByte(':')
		b.Write(data)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

func (f fields) kv(order []string) []byte {
	var b strings.Builder
	for i, k := range f.orderedKeys(order) {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(kvValue(f[k]))
	}
	return []byte(b.String())
}

func kvValue(v any) string {
	s := fmt.Sprint(v)
	if strings.IndexFunc(s, needsQuote) >= 0 {
		return strconv.Quote(s)
	}
	return s
}

func needsQuote(r rune) bool {
	return r <= 32 || r == '=' || r == '"'
}
