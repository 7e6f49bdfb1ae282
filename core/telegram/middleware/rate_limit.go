package middleware

import (
	"log/slog"
	"sync"
	"time"

	coreconfig "github.com/m3rciful/intakebot/core/config"
	"github.com/m3rciful/intakebot/core/logger"
	tghelpers "github.com/m3rciful/intakebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// RateLimitOptions configures the per-user rate limiter.
type RateLimitOptions struct {
	Interval time.Duration
	// Exclude lists update kinds (coreconfig.UpdateCallback, UpdateMessage)
	// that bypass the limiter.
	Exclude   map[string]struct{}
	OnLimited tele.HandlerFunc
}

// RateLimit drops updates that arrive from the same user faster than
// Interval. Entries older than Interval are swept as the map grows.
func RateLimit(opts RateLimitOptions) tele.MiddlewareFunc {
	var (
		mu       sync.Mutex
		lastSeen = make(map[int64]time.Time)
		sweepAt  = 1024
	)
	allow := func(userID int64, now time.Time) bool {
		mu.Lock()
		defer mu.Unlock()
		if last, ok := lastSeen[userID]; ok && now.Sub(last) < opts.Interval {
			return false
		}
		lastSeen[userID] = now
		if len(lastSeen) >= sweepAt {
			for id, ts := range lastSeen {
				if now.Sub(ts) >= opts.Interval {
					delete(lastSeen, id)
				}
			}
			sweepAt = 2*len(lastSeen) + 1024
		}
		return true
	}

	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || opts.Interval <= 0 {
				return next(c)
			}
			if _, skip := opts.Exclude[updateKind(c.Update())]; skip {
				return next(c)
			}
			if allow(user.ID, time.Now()) {
				return next(c)
			}

			logger.Warn(tghelpers.BuildContext(c), "tg", "tg.rate_limit",
				slog.Duration("interval", opts.Interval),
			)
			if opts.OnLimited != nil {
				return opts.OnLimited(c)
			}
			return nil
		}
	}
}

func updateKind(upd tele.Update) string {
	switch {
	case upd.Callback != nil:
		return coreconfig.UpdateCallback
	case upd.Message != nil:
		return coreconfig.UpdateMessage
	}
	return "other"
}
