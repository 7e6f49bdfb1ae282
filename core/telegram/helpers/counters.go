package helpers

import tele "gopkg.in/telebot.v4"

const (
	messagesKey = "messages"
	keyboardKey = "kb"
)

// ResetCounters zeroes the per-update reply counters.
func ResetCounters(c tele.Context) {
	c.Set(messagesKey, 0)
	c.Set(keyboardKey, false)
}

// Counters reports how many replies the update produced and whether any
// of them carried a keyboard.
func Counters(c tele.Context) (int, bool) {
	n, _ := c.Get(messagesKey).(int)
	kb, _ := c.Get(keyboardKey).(bool)
	return n, kb
}

func countReply(c tele.Context, opts *tele.SendOptions) {
	n, _ := c.Get(messagesKey).(int)
	c.Set(messagesKey, n+1)
	if opts != nil && opts.ReplyMarkup != nil {
		c.Set(keyboardKey, true)
	}
}
