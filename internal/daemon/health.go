package daemon

import (
	"runtime"
	"sort"
	"sync"
	"time"
)

// Health states.
const (
	Healthy   = "healthy"
	Unhealthy = "unhealthy"
)

// HealthStatus is the daemon's self-assessment, written to the state file.
type HealthStatus struct {
	Status        string        `json:"status"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	MemoryMB      float64       `json:"memory_mb"`
	Goroutines    int           `json:"goroutines"`
	Checks        []CheckResult `json:"checks,omitempty"`
	LastCheck     time.Time     `json:"last_check"`
}

// CheckResult is the outcome of one named check.
type CheckResult struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// HealthChecker runs named checks on demand.
type HealthChecker struct {
	mu        sync.RWMutex
	startTime time.Time
	checks    map[string]func() error
	now       func() time.Time
}

// NewHealthChecker creates a checker whose uptime starts now.
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		startTime: time.Now(),
		checks:    make(map[string]func() error),
		now:       time.Now,
	}
}

// AddCheck registers a check. A non-nil error marks the daemon unhealthy.
func (h *HealthChecker) AddCheck(name string, check func() error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// Check runs every check, sorted by name.
func (h *HealthChecker) Check() *HealthStatus {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	now := h.now()
	status := &HealthStatus{
		Status:        Healthy,
		UptimeSeconds: int64(now.Sub(h.startTime).Seconds()),
		MemoryMB:      float64(mem.Alloc) / 1024 / 1024,
		Goroutines:    runtime.NumGoroutine(),
		LastCheck:     now,
	}

	h.mu.RLock()
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		result := CheckResult{Name: name, Healthy: true}
		if err := h.checks[name](); err != nil {
			result.Healthy = false
			result.Error = err.Error()
			status.Status = Unhealthy
		}
		status.Checks = append(status.Checks, result)
	}
	h.mu.RUnlock()

	return status
}

// Uptime returns how long the daemon has been running.
func (h *HealthChecker) Uptime() time.Duration {
	return h.now().Sub(h.startTime)
}
