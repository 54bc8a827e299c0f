// Package power detects system sleep and wake and tells the reminder
// engine to stand down or re-arm.
package power

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/manav03panchal/nudge/internal/clock"
	"github.com/manav03panchal/nudge/internal/config"
	"github.com/manav03panchal/nudge/internal/logging"
)

// Target is the engine side of sleep and wake handling.
type Target interface {
	Stop()
	Recalculate()
}

// Monitor runs a wall-clock heartbeat. A gap larger than the threshold
// between beats means the machine was suspended.
type Monitor struct {
	target    Target
	clock     clock.Clock
	heartbeat string
	threshold time.Duration

	cron *cron.Cron

	mu       sync.Mutex
	last     time.Time
	sleeping bool
	wakes    int

	stopSignals func()
}

// New creates a monitor using config.Global.Power.
func New(target Target, clk clock.Clock) *Monitor {
	if clk == nil {
		clk = clock.System{}
	}
	return &Monitor{
		target:    target,
		clock:     clk,
		heartbeat: config.Global.Power.Heartbeat,
		threshold: config.Global.Power.SleepThreshold,
	}
}

// wallNow drops the monotonic reading, which does not advance while the
// machine is suspended.
func (m *Monitor) wallNow() time.Time {
	return m.clock.Now().Round(0)
}

// Start schedules the heartbeat and listens for sleep/wake signals.
func (m *Monitor) Start() error {
	m.mu.Lock()
	m.last = m.wallNow()
	m.mu.Unlock()

	m.cron = cron.New()
	if _, err := m.cron.AddFunc(m.heartbeat, func() { m.Tick() }); err != nil {
		return fmt.Errorf("failed to add heartbeat %q: %w", m.heartbeat, err)
	}
	m.cron.Start()
	m.stopSignals = m.watchSignals()

	logging.DebugLog("power monitor started", "heartbeat", m.heartbeat, "threshold", m.threshold.String())
	return nil
}

// Stop halts the heartbeat and signal listener.
func (m *Monitor) Stop() {
	if m.cron != nil {
		<-m.cron.Stop().Done()
	}
	if m.stopSignals != nil {
		m.stopSignals()
	}
}

// Tick records a heartbeat and reports whether it detected a wake.
// A clock that moved backwards also triggers a recalculation.
func (m *Monitor) Tick() bool {
	now := m.wallNow()

	m.mu.Lock()
	gap := now.Sub(m.last)
	m.last = now
	sleeping := m.sleeping
	m.mu.Unlock()

	if sleeping {
		return false
	}

	switch {
	case gap > m.threshold:
		logging.Info("wake detected", "gap", gap.Round(time.Second).String())
		m.target.Stop()
		m.resume()
		return true
	case gap < 0:
		logging.Info("wall clock moved backwards", "gap", gap.Round(time.Second).String())
		m.target.Recalculate()
	}
	return false
}

// Sleep cancels pending reminders until Wake.
func (m *Monitor) Sleep() {
	m.mu.Lock()
	m.sleeping = true
	m.mu.Unlock()

	logging.Info("system going to sleep")
	m.target.Stop()
}

// Wake re-arms reminders after a sleep.
func (m *Monitor) Wake() {
	m.mu.Lock()
	m.sleeping = false
	m.last = m.wallNow()
	m.mu.Unlock()

	logging.Info("system woke")
	m.resume()
}

func (m *Monitor) resume() {
	m.mu.Lock()
	m.wakes++
	m.mu.Unlock()
	m.target.Recalculate()
}

// Wakes returns how many wakes were handled.
func (m *Monitor) Wakes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.wakes
}
