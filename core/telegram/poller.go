package telegram

import (
	"net"
	"strconv"
	"time"

	coreconfig "github.com/m3rciful/intakebot/core/config"

	tele "gopkg.in/telebot.v4"
)

const defaultLongPollTimeout = 10 * time.Second

// BuildPoller picks the update source for the configured run mode. The
// config is expected to be normalized already.
func BuildPoller(cfg *coreconfig.Config) tele.Poller {
	if cfg.Telegram.RunMode == coreconfig.RunModeWebhook {
		return &tele.Webhook{
			Listen:         net.JoinHostPort(cfg.Webhook.Listen, strconv.Itoa(cfg.Webhook.Port)),
			Endpoint:       &tele.WebhookEndpoint{PublicURL: cfg.Webhook.URL},
			AllowedUpdates: []string{"message", "callback_query"},
		}
	}
	return &tele.LongPoller{
		Timeout:        longPollTimeout(cfg),
		AllowedUpdates: []string{"message", "callback_query"},
	}
}

func longPollTimeout(cfg *coreconfig.Config) time.Duration {
	if s := cfg.Telegram.LongPollTimeoutSeconds; s > 0 {
		return time.Duration(s) * time.Second
	}
	return defaultLongPollTimeout
}
