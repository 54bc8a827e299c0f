package model

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"
)

// PrefixWebhook is the database key prefix for webhooks.
const PrefixWebhook = "webhook"

// Webhook type constants.
const (
	WebhookTypeDiscord = "discord"
	WebhookTypeSlack   = "slack"
	WebhookTypeTeams   = "teams"
	WebhookTypeGeneric = "generic"
)

// Webhook is a chat or HTTP endpoint that mirrors reminders.
type Webhook struct {
	Key        string     `json:"key"`
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	URL        string     `json:"url"`
	Enabled    bool       `json:"enabled"`
	Categories []Category `json:"categories,omitempty"` // empty means all
	CreatedAt  time.Time  `json:"created_at"`
	LastUsed   time.Time  `json:"last_used,omitempty"`
	LastError  string     `json:"last_error,omitempty"`
}

// SetKey sets the database key for this webhook.
func (w *Webhook) SetKey(key string) {
	w.Key = key
}

// GetKey returns the database key for this webhook.
func (w *Webhook) GetKey() string {
	return w.Key
}

// IsEnabled returns true if the webhook is enabled.
func (w *Webhook) IsEnabled() bool {
	return w.Enabled
}

// Accepts reports whether the webhook wants notifications for n.
// Test notifications go everywhere.
func (w *Webhook) Accepts(n *Notification) bool {
	if n.Type == NotifyTest || len(w.Categories) == 0 {
		return true
	}
	return slices.Contains(w.Categories, n.Category)
}

// MaskedURL hides the token part of the URL.
func (w *Webhook) MaskedURL() string {
	if len(w.URL) > 40 {
		return w.URL[:30] + "***"
	}
	return w.URL
}

// GenerateWebhookKey generates a database key for a webhook.
func GenerateWebhookKey(name string) string {
	return fmt.Sprintf("%s:%s", PrefixWebhook, name)
}

// NewWebhook creates a new enabled webhook.
func NewWebhook(name, webhookType, url string) *Webhook {
	return &Webhook{
		Key:       GenerateWebhookKey(name),
		Name:      name,
		Type:      webhookType,
		URL:       url,
		Enabled:   true,
		CreatedAt: time.Now(),
	}
}

// ValidWebhookTypes returns the list of valid webhook types.
func ValidWebhookTypes() []string {
	return []string{WebhookTypeDiscord, WebhookTypeSlack, WebhookTypeTeams, WebhookTypeGeneric}
}

// IsValidWebhookType checks if a type is valid.
func IsValidWebhookType(t string) bool {
	return slices.Contains(ValidWebhookTypes(), t)
}

var webhookNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

// IsValidWebhookName checks if a webhook name is valid.
func IsValidWebhookName(name string) bool {
	if len(name) == 0 || len(name) > 50 {
		return false
	}
	return webhookNameRegex.MatchString(name)
}

// DetectWebhookType guesses the webhook type from its URL.
func DetectWebhookType(url string) string {
	u := strings.ToLower(url)

	switch {
	case strings.Contains(u, "discord.com/api/webhooks"):
		return WebhookTypeDiscord
	case strings.Contains(u, "hooks.slack.com"):
		return WebhookTypeSlack
	case strings.Contains(u, "outlook.office.com/webhook"), strings.Contains(u, "webhook.office.com"):
		return WebhookTypeTeams
	default:
		return WebhookTypeGeneric
	}
}
