// Package format renders text for Telegram's HTML parse mode.
package format

import (
	"html"
	"strconv"
	"strings"
)

// EscapeHTML escapes the characters Telegram's HTML mode treats as markup.
func EscapeHTML(text string) string {
	return html.EscapeString(text)
}

// Mention links a user by id, so the name is clickable even without a
// username. An empty name falls back to the id.
func Mention(userID int64, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = strconv.FormatInt(userID, 10)
	}
	return `<a href="tg://user?id=` + strconv.FormatInt(userID, 10) + `">` + EscapeHTML(name) + `</a>`
}

// FullName joins first and last name the way Telegram clients display them.
func FullName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}
