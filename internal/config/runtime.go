// Package config provides centralized configuration for nudge runtime values
// and the daemon's sender configuration file.
package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment override, e.g. NUDGE_ENGINE_DEBOUNCE.
const EnvPrefix = "nudge"

// RuntimeConfig holds tunables that are not user preferences.
type RuntimeConfig struct {
	Engine     EngineConfig
	Overlay    OverlayConfig
	Daemon     DaemonConfig
	HTTP       HTTPConfig
	RetryQueue RetryQueueConfig `split_words:"true"`
	Power      PowerConfig
	Inbox      InboxConfig
	Telegram   TelegramConfig
}

// EngineConfig holds reminder engine configuration.
type EngineConfig struct {
	// Debounce coalesces bursts of preference edits before recalculating.
	// Default: 150ms
	Debounce time.Duration

	// MailboxSize is the buffer of the engine's event queue.
	// Default: 64
	MailboxSize int `split_words:"true"`
}

// OverlayConfig holds forced break durations.
type OverlayConfig struct {
	StandMin    time.Duration `split_words:"true"` // Default: 2m
	StandMax    time.Duration `split_words:"true"` // Default: 5m
	StandSnooze time.Duration `split_words:"true"` // Default: 10m
	EyesMin     time.Duration `split_words:"true"` // Default: 20s
	EyesMax     time.Duration `split_words:"true"` // Default: 5m
}

// DaemonConfig holds daemon-related configuration.
type DaemonConfig struct {
	// StartupWait is the time to wait for the daemon to start before checking status.
	// Default: 500ms
	StartupWait time.Duration `split_words:"true"`

	// KillTimeout is the timeout for graceful shutdown before force kill.
	// Default: 5s
	KillTimeout time.Duration `split_words:"true"`
}

// HTTPConfig holds webhook HTTP client configuration.
type HTTPConfig struct {
	// Default: 30s
	Timeout time.Duration

	// Default: 3
	MaxRetries int `split_words:"true"`

	// Default: [0s, 5s, 30s]
	RetryDelays []time.Duration `split_words:"true"`
}

// RetryQueueConfig holds retry queue configuration.
type RetryQueueConfig struct {
	// CheckInterval is how often the queue checks for ready notifications.
	// Default: 30s
	CheckInterval time.Duration `split_words:"true"`

	// BackoffSchedule is the backoff schedule for failed notifications.
	// Default: [5s, 30s, 2m, 5m, 15m]
	BackoffSchedule []time.Duration `split_words:"true"`
}

// PowerConfig holds sleep/wake detection configuration.
type PowerConfig struct {
	// Heartbeat is the cron spec of the wall-clock probe.
	// Default: @every 30s
	Heartbeat string

	// SleepThreshold is the heartbeat gap treated as a suspend and resume.
	// Default: 2m
	SleepThreshold time.Duration `split_words:"true"`
}

// InboxConfig holds the CLI to daemon spool configuration.
type InboxConfig struct {
	// PollInterval drains the spool even if no file event arrives.
	// Default: 10s
	PollInterval time.Duration `split_words:"true"`
}

// TelegramConfig holds bot polling configuration.
type TelegramConfig struct {
	// PollTimeout is the long-poll timeout in seconds.
	// Default: 30
	PollTimeout int `split_words:"true"`
}

// DefaultRuntimeConfig returns the default runtime configuration.
func DefaultRuntimeConfig() *RuntimeConfig {
	return &RuntimeConfig{
		Engine: EngineConfig{
			Debounce:    150 * time.Millisecond,
			MailboxSize: 64,
		},
		Overlay: OverlayConfig{
			StandMin:    120 * time.Second,
			StandMax:    300 * time.Second,
			StandSnooze: 10 * time.Minute,
			EyesMin:     20 * time.Second,
			EyesMax:     300 * time.Second,
		},
		Daemon: DaemonConfig{
			StartupWait: 500 * time.Millisecond,
			KillTimeout: 5 * time.Second,
		},
		HTTP: HTTPConfig{
			Timeout:    30 * time.Second,
			MaxRetries: 3,
			RetryDelays: []time.Duration{
				0,
				5 * time.Second,
				30 * time.Second,
			},
		},
		RetryQueue: RetryQueueConfig{
			CheckInterval: 30 * time.Second,
			BackoffSchedule: []time.Duration{
				5 * time.Second,
				30 * time.Second,
				2 * time.Minute,
				5 * time.Minute,
				15 * time.Minute,
			},
		},
		Power: PowerConfig{
			Heartbeat:      "@every 30s",
			SleepThreshold: 2 * time.Minute,
		},
		Inbox: InboxConfig{
			PollInterval: 10 * time.Second,
		},
		Telegram: TelegramConfig{
			PollTimeout: 30,
		},
	}
}

// Global holds the global runtime configuration instance.
// It is initialized with defaults and then overridden from the environment.
var Global = initGlobal()

func initGlobal() *RuntimeConfig {
	cfg := DefaultRuntimeConfig()
	_ = cfg.loadFromEnv()
	return cfg
}

// loadFromEnv applies NUDGE_* overrides. Unset variables keep their value.
func (c *RuntimeConfig) loadFromEnv() error {
	return envconfig.Process(EnvPrefix, c)
}

// ReloadFromEnv reloads configuration from environment variables.
func (c *RuntimeConfig) ReloadFromEnv() error {
	return c.loadFromEnv()
}

// Reset resets the configuration to defaults.
func (c *RuntimeConfig) Reset() {
	*c = *DefaultRuntimeConfig()
}
