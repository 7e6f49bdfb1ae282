package logger

import "strings"

var levelNames = map[string]string{
	"debug":   "DEBUG",
	"info":    "INFO",
	"warn":    "WARN",
	"warning": "WARN",
	"error":   "ERROR",
}

var allowedStatus = map[string]struct{}{
	"ok":           {},
	"fail":         {},
	"skip":         {},
	"rate_limited": {},
	"cancelled":    {},
}

var allowedOutcome = map[string]struct{}{
	"ok":           {},
	"fail":         {},
	"skip":         {},
	"ignored":      {},
	"cancelled":    {},
	"rate_limited": {},
	"accepted":     {},
	"rejected":     {},
}

func normalizeLevel(level string) string {
	if level == "" {
		return "INFO"
	}
	if mapped, ok := levelNames[strings.ToLower(level)]; ok {
		return mapped
	}
	return strings.ToUpper(level)
}

// normalizeStatus lowercases status; the bool reports a known value.
func normalizeStatus(status string) (string, bool) {
	status = strings.ToLower(strings.TrimSpace(status))
	_, ok := allowedStatus[status]
	return status, ok
}

func normalizeOutcome(outcome string) (string, bool) {
	outcome = strings.ToLower(strings.TrimSpace(outcome))
	_, ok := allowedOutcome[outcome]
	return outcome, ok
}

var defaultKeyOrder = []string{
	"ts",
	"level",
	"component",
	"event",
	"status",
	"rid",
	"rid_full",
	"ts_unix_nano",
	"update_id",
	"user_id",
	"chat_id",
	"chat_type",
	"handler",
	"cb_key",
	"from_state",
	"to_state",
	"outcome",
	"duration_ms",
	"messages",
	"kb",
	"payload",
	"lang",
	"username",
	"mode",
	"listen",
	"public_url",
	"url",
	"request_id",
	"http_code",
	"db",
	"host",
	"port",
	"err",
	"err_kind",
	"cause",
	"attempts",
}
