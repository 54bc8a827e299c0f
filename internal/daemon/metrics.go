package daemon

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/manav03panchal/nudge/internal/model"
	"github.com/manav03panchal/nudge/internal/notify"
)

// Metrics tracks what the daemon has done since it started.
type Metrics struct {
	deliveriesOK     atomic.Int64
	deliveriesFailed atomic.Int64
	overlaysShown    atomic.Int64
	actionsHandled   atomic.Int64
	inboxMessages    atomic.Int64

	mu          sync.RWMutex
	fired       map[model.Category]int64
	lastFiredAt time.Time
	lastError   string
	lastErrorAt time.Time
}

// NewMetrics creates an empty tracker.
func NewMetrics() *Metrics {
	return &Metrics{fired: make(map[model.Category]int64)}
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	RemindersFired   map[model.Category]int64 `json:"reminders_fired"`
	DeliveriesOK     int64                    `json:"deliveries_ok"`
	DeliveriesFailed int64                    `json:"deliveries_failed"`
	OverlaysShown    int64                    `json:"overlays_shown"`
	ActionsHandled   int64                    `json:"actions_handled"`
	InboxMessages    int64                    `json:"inbox_messages"`
	LastFiredAt      *time.Time               `json:"last_fired_at,omitempty"`
	LastError        string                   `json:"last_error,omitempty"`
	LastErrorAt      *time.Time               `json:"last_error_at,omitempty"`
}

// Snapshot returns a copy of the current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := MetricsSnapshot{
		RemindersFired:   make(map[model.Category]int64, len(m.fired)),
		DeliveriesOK:     m.deliveriesOK.Load(),
		DeliveriesFailed: m.deliveriesFailed.Load(),
		OverlaysShown:    m.overlaysShown.Load(),
		ActionsHandled:   m.actionsHandled.Load(),
		InboxMessages:    m.inboxMessages.Load(),
		LastError:        m.lastError,
	}
	for c, n := range m.fired {
		snap.RemindersFired[c] = n
	}
	if !m.lastFiredAt.IsZero() {
		t := m.lastFiredAt
		snap.LastFiredAt = &t
	}
	if !m.lastErrorAt.IsZero() {
		t := m.lastErrorAt
		snap.LastErrorAt = &t
	}
	return snap
}

// RecordReminder counts one reminder handed to the hub.
func (m *Metrics) RecordReminder(c model.Category) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fired[c]++
	m.lastFiredAt = time.Now()
}

// RecordDelivery counts backend results. It has the shape of a hub
// observer.
func (m *Metrics) RecordDelivery(_ *model.Notification, results []notify.BackendResult) {
	for _, r := range results {
		if r.Error == nil {
			m.deliveriesOK.Add(1)
			continue
		}
		m.deliveriesFailed.Add(1)
		m.RecordError(r.Error)
	}
}

// RecordOverlay counts one overlay request.
func (m *Metrics) RecordOverlay() {
	m.overlaysShown.Add(1)
}

// RecordAction counts one handled user action.
func (m *Metrics) RecordAction() {
	m.actionsHandled.Add(1)
}

// RecordInbox counts one drained inbox message.
func (m *Metrics) RecordInbox() {
	m.inboxMessages.Add(1)
}

// RecordError remembers the most recent error.
func (m *Metrics) RecordError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastError = err.Error()
	m.lastErrorAt = time.Now()
}
