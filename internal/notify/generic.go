package notify

import (
	"encoding/json"
	"time"

	"github.com/manav03panchal/nudge/internal/model"
)

// GenericFormatter posts the notification as plain JSON.
type GenericFormatter struct{}

type genericPayload struct {
	Type      string            `json:"type"`
	Category  string            `json:"category,omitempty"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Sound     bool              `json:"sound"`
	Actions   []string          `json:"actions,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	Timestamp string            `json:"timestamp"`
	Color     int               `json:"color,omitempty"`
}

// Format converts a notification to the generic payload.
func (f *GenericFormatter) Format(n *model.Notification) ([]byte, error) {
	payload := genericPayload{
		Type:      string(n.Type),
		Category:  string(n.Category),
		Title:     n.Title,
		Message:   n.Message,
		Sound:     n.Sound,
		Fields:    n.Fields,
		Timestamp: n.Timestamp.UTC().Format(time.RFC3339),
		Color:     colorOf(n),
	}
	for _, a := range n.Actions {
		payload.Actions = append(payload.Actions, string(a))
	}
	return json.Marshal(payload)
}

// ContentType returns the content type for generic webhooks.
func (f *GenericFormatter) ContentType() string {
	return "application/json"
}
