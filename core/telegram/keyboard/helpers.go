// Package keyboard builds reply and inline markups.
package keyboard

import tele "gopkg.in/telebot.v4"

// InlineBtn describes one inline button. Unique is the callback key the
// registry routes on.
type InlineBtn struct {
	Text   string
	Unique string
	Data   string
}

// RemoveKeyboard hides the reply keyboard.
func RemoveKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}

// Persistent builds a resized reply keyboard that stays open, one row per
// slice of labels.
func Persistent(rows ...[]string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true, OneTimeKeyboard: false}
	keyboard := make([]tele.Row, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tele.Btn, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, markup.Text(label))
		}
		keyboard = append(keyboard, markup.Row(buttons...))
	}
	markup.Reply(keyboard...)
	return markup
}

// Stacked builds an inline keyboard with each button on its own row.
func Stacked(buttons ...InlineBtn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, markup.Row(markup.Data(b.Text, b.Unique, b.Data)))
	}
	markup.Inline(rows...)
	return markup
}
