package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"

	"github.com/manav03panchal/nudge/internal/clock"
	"github.com/manav03panchal/nudge/internal/config"
	"github.com/manav03panchal/nudge/internal/dispatch"
	"github.com/manav03panchal/nudge/internal/engine"
	"github.com/manav03panchal/nudge/internal/errors"
	"github.com/manav03panchal/nudge/internal/inbox"
	"github.com/manav03panchal/nudge/internal/logging"
	"github.com/manav03panchal/nudge/internal/model"
	"github.com/manav03panchal/nudge/internal/notify"
	"github.com/manav03panchal/nudge/internal/overlay"
	"github.com/manav03panchal/nudge/internal/power"
	"github.com/manav03panchal/nudge/internal/prefs"
	"github.com/manav03panchal/nudge/internal/storage"
)

// Daemon owns the database and runs the engine with every backend.
type Daemon struct {
	pidFile   *PIDFile
	db        *storage.DB
	file      *config.File
	statePath string
	inboxDir  string
	console   io.Writer
	presenter engine.Presenter
	debug     bool

	metrics   *Metrics
	health    *HealthChecker
	startedAt time.Time

	stateMu sync.Mutex
}

// Status represents the daemon status.
type Status struct {
	Running   bool      `json:"running"`
	PID       int       `json:"pid,omitempty"`
	StartedAt time.Time `json:"started_at,omitzero"`
	Uptime    string    `json:"uptime,omitempty"`
	Backends  []string  `json:"backends,omitempty"`
}

// NewDaemon creates a daemon manager. db may be nil for commands that only
// inspect or stop a running daemon.
func NewDaemon(db *storage.DB, file *config.File) *Daemon {
	if file == nil {
		file = &config.File{ConsoleEnabled: true, OverlayMode: config.OverlayAuto, WebhooksEnabled: true}
	}
	return &Daemon{
		pidFile:   NewPIDFile(),
		db:        db,
		file:      file,
		statePath: GetStatePath(),
		inboxDir:  inbox.DefaultDir(),
		console:   os.Stdout,
		metrics:   NewMetrics(),
	}
}

// SetDebug enables debug mode.
func (d *Daemon) SetDebug(debug bool) {
	d.debug = debug
}

// GetStatus returns the current daemon status.
func (d *Daemon) GetStatus() *Status {
	status := &Status{}

	pid := d.pidFile.GetRunningPID()
	if pid == 0 {
		return status
	}
	status.Running = true
	status.PID = pid
	if state, err := ReadStateFrom(d.statePath); err == nil {
		status.StartedAt = state.StartedAt
		status.Uptime = formatUptime(time.Since(state.StartedAt))
		status.Backends = state.Backends
	}
	return status
}

// IsRunning returns true if the daemon is running.
func (d *Daemon) IsRunning() bool {
	return d.pidFile.IsRunning()
}

func (d *Daemon) breakDurations() engine.BreakDurations {
	o := config.Global.Overlay
	return engine.BreakDurations{
		StandMin:    o.StandMin,
		StandMax:    o.StandMax,
		StandSnooze: o.StandSnooze,
		EyesMin:     o.EyesMin,
		EyesMax:     o.EyesMax,
	}
}

// Start runs the daemon in the foreground until ctx is done or a shutdown
// signal arrives.
func (d *Daemon) Start(ctx context.Context) error {
	if d.IsRunning() {
		return ErrAlreadyRunning
	}
	if d.db == nil {
		return fmt.Errorf("daemon: no database")
	}

	if err := d.pidFile.Write(); err != nil {
		return err
	}
	defer d.pidFile.Remove()

	d.startedAt = time.Now()
	d.health = NewHealthChecker()
	log := logging.Component("daemon")

	store, err := prefs.Open(storage.NewPreferencesRepo(d.db))
	if err != nil {
		return err
	}
	webhooks := storage.NewWebhookRepo(d.db)
	backends := NewBackends(d.file, webhooks, d.console)
	backends.Hub.Observe(d.metrics.RecordDelivery)

	presenter := d.presenter
	if presenter == nil {
		presenter = overlay.NewPresenter(d.file.OverlayMode)
	}

	clk := clock.System{}
	eng := engine.New(engine.Options{
		Clock:       clk,
		Prefs:       store,
		Sender:      &meteredSender{next: backends.Hub, metrics: d.metrics},
		Presenter:   &meteredPresenter{next: presenter, metrics: d.metrics},
		Breaks:      d.breakDurations(),
		Debounce:    config.Global.Engine.Debounce,
		MailboxSize: config.Global.Engine.MailboxSize,
	})
	disp := dispatch.New(eng, settingsHint{})

	spool, err := inbox.Open(d.inboxDir)
	if err != nil {
		return err
	}
	monitor := power.New(eng, clk)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sendTest := func() { backends.Hub.SendTest(ctx) }
	router := inbox.NewRouter(inbox.Routes{Dispatcher: disp, Engine: eng, Prefs: store, Test: sendTest})

	refresh := func() {
		d.writeSnapshot(store.Get(), eng.Schedule(), backends)
	}
	eng.OnSchedule(func(engine.Schedule) { refresh() })
	unsubscribe := store.Subscribe(func(*model.Preferences) { refresh() })
	defer unsubscribe()

	d.health.AddCheck("backends", func() error {
		if len(backends.Hub.Backends()) == 0 {
			return fmt.Errorf("no notification backends enabled")
		}
		return nil
	})
	d.health.AddCheck("inbox", func() error {
		if n := spool.Pending(); n > 100 {
			return fmt.Errorf("%d inbox messages waiting", n)
		}
		return nil
	})
	if backends.Queue != nil {
		d.health.AddCheck("retry_queue", func() error {
			if n := backends.Queue.Pending(); n > 50 {
				return fmt.Errorf("%d webhook deliveries waiting", n)
			}
			return nil
		})
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := eng.Run(ctx); err != nil {
			log.Error("engine stopped", logging.KeyError, err)
		}
	}()

	backends.Hub.Start(ctx)
	if backends.Queue != nil {
		backends.Queue.Start()
	}
	if err := monitor.Start(); err != nil {
		log.Warn("sleep detection disabled", logging.KeyError, err)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		err := spool.Watch(ctx, func(m inbox.Message) {
			d.metrics.RecordInbox()
			router.Handle(m)
			refresh()
		})
		if err != nil {
			log.Error("inbox watcher stopped", logging.KeyError, err)
		}
	}()

	if backends.Telegram != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			backends.Telegram.Listen(ctx, func(id model.ActionID, c model.Category) {
				if disp.Dispatch(dispatch.Action{ID: id, Category: c}).Handled {
					d.metrics.RecordAction()
				}
				refresh()
			})
		}()
	}

	log.Info("daemon started",
		"pid", os.Getpid(),
		"backends", backends.Hub.Backends(),
		"config", d.file.Path)

	sigHandler := NewSignalHandler()
	sigHandler.Setup()
	defer sigHandler.Cleanup()

	sig := sigHandler.Wait(ctx, func() {
		log.Info("reload requested")
		eng.Recalculate()
	})
	if sig != nil {
		log.Info("received signal", "signal", sig.String())
	}

	cancel()
	monitor.Stop()
	if backends.Queue != nil {
		backends.Queue.Stop()
	}
	backends.Hub.Stop()
	wg.Wait()
	if closer, ok := presenter.(interface{ Close() }); ok {
		closer.Close()
	}
	d.removeState()

	log.Info("daemon stopped")
	return nil
}

// StartBackground re-executes the binary as a detached foreground daemon
// and waits for it to write its PID file.
func (d *Daemon) StartBackground() (int, error) {
	if pid := d.pidFile.GetRunningPID(); pid > 0 {
		return pid, ErrAlreadyRunning
	}

	executable, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("failed to get executable path: %w", err)
	}

	args := []string{"daemon", "start", "--foreground"}
	if d.debug {
		args = append(args, "--debug")
	}
	cmd := exec.Command(executable, args...)
	cmd.Stdin = nil

	logPath := GetLogPath()
	if logFile, err := OpenLogFile(logPath, MaxLogSize); err == nil {
		defer logFile.Close()
		cmd.Stdout = logFile
		cmd.Stderr = logFile
	}

	if err := cmd.Start(); err != nil {
		return 0, errors.NewSystemErrorWithOp("start", "failed to start daemon", err)
	}

	time.Sleep(config.Global.Daemon.StartupWait)

	if !d.pidFile.IsRunning() {
		if msg := lastLogError(logPath); msg != "" {
			return 0, fmt.Errorf("daemon failed to start: %s", msg)
		}
		return 0, fmt.Errorf("daemon failed to start (check logs: %s)", logPath)
	}
	return cmd.Process.Pid, nil
}

// Stop interrupts the running daemon and kills it after the configured
// timeout.
func (d *Daemon) Stop() error {
	pid := d.pidFile.GetRunningPID()
	if pid == 0 {
		return ErrNotRunning
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process: %w", err)
	}
	if err := process.Signal(os.Interrupt); err != nil {
		if err := process.Kill(); err != nil {
			return errors.NewSystemErrorWithOp("stop", "failed to stop daemon", err)
		}
	}

	deadline := time.Now().Add(config.Global.Daemon.KillTimeout)
	for IsProcessRunning(pid) && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	if IsProcessRunning(pid) {
		_ = process.Kill()
	}

	d.pidFile.Remove()
	d.removeState()
	return nil
}

// Reload asks the running daemon to recalculate its schedule.
func (d *Daemon) Reload() error {
	pid := d.pidFile.GetRunningPID()
	if pid == 0 {
		return ErrNotRunning
	}
	return signalReload(pid)
}

// meteredSender counts reminders on their way to the hub.
type meteredSender struct {
	next    engine.Sender
	metrics *Metrics
}

func (s *meteredSender) Send(n *model.Notification) {
	if n.Category.Valid() {
		s.metrics.RecordReminder(n.Category)
	}
	s.next.Send(n)
}

type meteredPresenter struct {
	next    engine.Presenter
	metrics *Metrics
}

func (p *meteredPresenter) PresentStand(minDur, maxDur time.Duration, onSnooze func()) {
	p.metrics.RecordOverlay()
	p.next.PresentStand(minDur, maxDur, onSnooze)
}

func (p *meteredPresenter) PresentEyes(minDur, maxDur time.Duration) {
	p.metrics.RecordOverlay()
	p.next.PresentEyes(minDur, maxDur)
}

// settingsHint answers the open_settings action. A daemon has no settings
// window, so it points at the CLI.
type settingsHint struct{}

func (settingsHint) OpenSettings() {
	logging.Info("settings are edited with 'nudge config set <key> <value>'")
}

// DaemonState is the snapshot the daemon mirrors to disk for the CLI.
type DaemonState struct {
	PID         int                `json:"pid"`
	StartedAt   time.Time          `json:"started_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	Backends    []string           `json:"backends,omitempty"`
	Schedule    engine.Schedule    `json:"schedule"`
	Preferences *model.Preferences `json:"preferences,omitempty"`
	Health      *HealthStatus      `json:"health,omitempty"`
	Metrics     *MetricsSnapshot   `json:"metrics,omitempty"`
	RetryQueue  *notify.QueueStats `json:"retry_queue,omitempty"`
}

func (d *Daemon) writeSnapshot(p *model.Preferences, s engine.Schedule, b *Backends) {
	state := &DaemonState{
		PID:         os.Getpid(),
		StartedAt:   d.startedAt,
		UpdatedAt:   time.Now(),
		Backends:    b.Hub.Backends(),
		Schedule:    s,
		Preferences: p,
	}
	if d.health != nil {
		state.Health = d.health.Check()
	}
	m := d.metrics.Snapshot()
	state.Metrics = &m
	if b.Queue != nil {
		qs := b.Queue.Stats()
		state.RetryQueue = &qs
	}
	if err := d.writeState(state); err != nil {
		logging.Warn("failed to write daemon state", logging.KeyError, err)
	}
}

// GetStatePath returns the path to the state file.
func GetStatePath() string {
	return filepath.Join(xdg.StateHome, AppName, "daemon.json")
}

// writeState replaces the state file atomically.
func (d *Daemon) writeState(state *DaemonState) error {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()

	if err := os.MkdirAll(filepath.Dir(d.statePath), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	tmp := d.statePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, d.statePath)
}

// ReadState reads the state file of the running daemon.
func ReadState() (*DaemonState, error) {
	return ReadStateFrom(GetStatePath())
}

// ReadStateFrom reads a state file at path.
func ReadStateFrom(path string) (*DaemonState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var state DaemonState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (d *Daemon) removeState() {
	if err := os.Remove(d.statePath); err != nil && !os.IsNotExist(err) {
		logging.Warn("failed to remove daemon state file", logging.KeyError, err, "path", d.statePath)
	}
}

// formatUptime formats a duration as uptime.
func formatUptime(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		hours := int(d.Hours())
		if minutes := int(d.Minutes()) % 60; minutes > 0 {
			return fmt.Sprintf("%dh %dm", hours, minutes)
		}
		return fmt.Sprintf("%dh", hours)
	}

	days := int(d.Hours() / 24)
	if hours := int(d.Hours()) % 24; hours > 0 {
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	return fmt.Sprintf("%dd", days)
}
