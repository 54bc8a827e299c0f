// Package model defines the domain models for nudge.
package model

// Model is the interface that all keyed database models must implement.
type Model interface {
	// SetKey sets the database key for this model.
	SetKey(key string)
	// GetKey returns the database key for this model.
	GetKey() string
}

// Database keys.
const (
	// KeyPreferences holds the single versioned preferences blob.
	KeyPreferences = "health_reminder_preferences_v1"
)
