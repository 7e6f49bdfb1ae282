// Package callbacks decodes inline button callback data.
package callbacks

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// ParseCallbackData splits telebot's "\f<unique>|<payload>" encoding into
// the unique key and the optional payload.
func ParseCallbackData(cb *tele.Callback) (string, string) {
	if cb == nil {
		return "", ""
	}
	raw := strings.TrimPrefix(cb.Data, "\f")
	unique, payload, _ := strings.Cut(raw, "|")
	return strings.TrimSpace(unique), payload
}

// Key returns the callback unique, preferring the one telebot already parsed.
func Key(cb *tele.Callback) string {
	if cb == nil {
		return ""
	}
	if cb.Unique != "" {
		return cb.Unique
	}
	key, _ := ParseCallbackData(cb)
	return key
}

// MessageID returns the id of the message the pressed button belongs to,
// or 0 for inline-mode callbacks that carry no message.
func MessageID(cb *tele.Callback) int {
	if cb == nil || cb.Message == nil {
		return 0
	}
	return cb.Message.ID
}
