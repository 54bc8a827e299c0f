package daemon

import (
	"io"

	"github.com/manav03panchal/nudge/internal/config"
	"github.com/manav03panchal/nudge/internal/logging"
	"github.com/manav03panchal/nudge/internal/notify"
)

// Backends is the set of delivery channels built from config.yaml.
type Backends struct {
	Hub      *notify.Hub
	Webhooks *notify.WebhookBackend // nil when webhooks are off
	Queue    *notify.RetryQueue     // nil when webhooks are off
	Telegram *notify.Telegram       // nil when not configured
}

// NewBackends builds every enabled backend. console is where the console
// backend writes. A Telegram bot that cannot be reached is logged and
// skipped so the other channels still work.
func NewBackends(file *config.File, source notify.WebhookSource, console io.Writer) *Backends {
	b := &Backends{}
	var list []notify.Backend

	if file.ConsoleEnabled && console != nil {
		list = append(list, notify.NewConsole(console, file.ConsoleBell))
	}

	if file.TelegramEnabled() {
		tg, err := notify.NewTelegram(file.TelegramToken, file.TelegramChatID)
		if err != nil {
			logging.Warn("telegram disabled", logging.KeyBackend, "telegram",
				"token", logging.MaskToken(file.TelegramToken), logging.KeyError, err)
		} else {
			b.Telegram = tg
			list = append(list, tg)
		}
	}

	if file.WebhooksEnabled && source != nil {
		client := notify.NewHTTPClient()
		b.Queue = notify.NewRetryQueue(client, source)
		b.Webhooks = notify.NewWebhookBackend(source, client, b.Queue)
		list = append(list, b.Webhooks)
	}

	b.Hub = notify.NewHub(list...)
	return b
}
