// Package notify delivers reminder notifications to the console, Telegram
// and chat webhooks.
package notify

import (
	"sort"
	"strings"

	"github.com/manav03panchal/nudge/internal/model"
)

// Formatter formats notifications for a specific webhook type.
type Formatter interface {
	// Format converts a notification into the webhook-specific payload.
	Format(n *model.Notification) ([]byte, error)

	// ContentType returns the HTTP Content-Type for the payload.
	ContentType() string
}

// GetFormatter returns the formatter for a webhook type.
func GetFormatter(webhookType string) Formatter {
	switch webhookType {
	case model.WebhookTypeDiscord:
		return &DiscordFormatter{}
	case model.WebhookTypeSlack:
		return &SlackFormatter{}
	case model.WebhookTypeTeams:
		return &TeamsFormatter{}
	default:
		return &GenericFormatter{}
	}
}

// footer is the signature line shown under chat messages.
const footer = "nudge"

type field struct {
	Name  string
	Value string
}

// sortedFields returns the notification fields in a stable order.
func sortedFields(n *model.Notification) []field {
	keys := make([]string, 0, len(n.Fields))
	for k := range n.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]field, 0, len(keys))
	for _, k := range keys {
		out = append(out, field{Name: k, Value: n.Fields[k]})
	}
	return out
}

// actionHint lists the available actions. Webhooks cannot route buttons back,
// so they point at the CLI instead.
func actionHint(n *model.Notification) string {
	if len(n.Actions) == 0 {
		return ""
	}
	labels := make([]string, 0, len(n.Actions))
	for _, a := range n.Actions {
		labels = append(labels, a.Label())
	}
	return strings.Join(labels, " · ") + " (nudge action)"
}

// colorOf falls back to the category color.
func colorOf(n *model.Notification) int {
	if n.Color != 0 {
		return n.Color
	}
	return model.ColorForCategory(n.Category)
}
