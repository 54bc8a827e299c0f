package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/manav03panchal/nudge/internal/config"
	"github.com/manav03panchal/nudge/internal/daemon"
	"github.com/manav03panchal/nudge/internal/errors"
	"github.com/manav03panchal/nudge/internal/inbox"
	"github.com/manav03panchal/nudge/internal/output"
	"github.com/manav03panchal/nudge/internal/runtime"
	"github.com/manav03panchal/nudge/internal/storage"
	"github.com/manav03panchal/nudge/internal/validate"
)

// Daemon command flags.
var (
	daemonStartFlagForeground bool
	daemonLogsFlagTail        int
	daemonLogsFlagFollow      bool
	daemonInstallFlagForce    bool
)

var skipRuntime = map[string]string{noRuntime: "true"}

// daemonCmd represents the daemon command.
var daemonCmd = &cobra.Command{
	Use:     "daemon [command]",
	Aliases: []string{"d", "bg", "service"},
	Short:   "Manage the background daemon",
	Long: `Manage the nudge daemon. It owns the reminder timers, shows break
overlays and delivers notifications to the console, Telegram and webhooks.

Examples:
  nudge daemon start
  nudge daemon status
  nudge daemon stop
  nudge daemon logs --tail 20`,
	Annotations: skipRuntime,
	RunE:        runDaemonStatus,
}

// daemonStartCmd starts the daemon.
var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the background daemon",
	Long: `Start the nudge daemon.

Examples:
  nudge daemon start                # Start in background
  nudge daemon start --foreground   # Stay attached, overlays use this terminal`,
	Annotations: skipRuntime,
	RunE:        runDaemonStart,
}

// daemonStopCmd stops the daemon.
var daemonStopCmd = &cobra.Command{
	Use:         "stop",
	Short:       "Stop the background daemon",
	Annotations: skipRuntime,
	RunE:        runDaemonStop,
}

// daemonStatusCmd shows daemon status.
var daemonStatusCmd = &cobra.Command{
	Use:         "status",
	Short:       "Show daemon status",
	Annotations: skipRuntime,
	RunE:        runDaemonStatus,
}

// daemonReloadCmd asks the daemon to recalculate.
var daemonReloadCmd = &cobra.Command{
	Use:         "reload",
	Short:       "Recalculate the schedule of the running daemon",
	Annotations: skipRuntime,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := daemon.NewDaemon(nil, nil).Reload(); err != nil {
			return err
		}
		fmt.Println("Reload requested")
		return nil
	},
}

// daemonLogsCmd shows daemon logs.
var daemonLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View daemon logs",
	Long: `View the daemon log file.

Examples:
  nudge daemon logs
  nudge daemon logs --tail 50
  nudge daemon logs --follow`,
	Annotations: skipRuntime,
	RunE:        runDaemonLogs,
}

// daemonInstallCmd installs the daemon as a login service.
var daemonInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Start the daemon automatically at login",
	Long: `Install the nudge daemon as a per-user service that starts on login.

On macOS, this creates a launchd agent in ~/Library/LaunchAgents.
On Linux, this creates a systemd user service in ~/.config/systemd/user.

Examples:
  nudge daemon install
  nudge daemon install --force   # Reinstall if already installed`,
	RunE: runDaemonInstall,
}

// daemonUninstallCmd removes the login service.
var daemonUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Stop starting the daemon at login",
	RunE:  runDaemonUninstall,
}

func init() {
	daemonStartCmd.Flags().BoolVar(&daemonStartFlagForeground, "foreground", false,
		"Run in foreground (don't daemonize)")

	daemonLogsCmd.Flags().IntVarP(&daemonLogsFlagTail, "tail", "n", 20,
		"Number of lines to show")
	daemonLogsCmd.Flags().BoolVar(&daemonLogsFlagFollow, "follow", false,
		"Follow log output (like tail -f)")

	daemonInstallCmd.Flags().BoolVar(&daemonInstallFlagForce, "force", false,
		"Force reinstall if already installed")

	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	daemonCmd.AddCommand(daemonStatusCmd)
	daemonCmd.AddCommand(daemonReloadCmd)
	daemonCmd.AddCommand(daemonLogsCmd)
	daemonCmd.AddCommand(daemonInstallCmd)
	daemonCmd.AddCommand(daemonUninstallCmd)

	rootCmd.AddCommand(daemonCmd)
}

func runDaemonStart(cmd *cobra.Command, args []string) error {
	if !daemonStartFlagForeground {
		// Background mode spawns a child without holding the database lock.
		d := daemon.NewDaemon(nil, nil)
		d.SetDebug(flagDebug)

		pid, err := d.StartBackground()
		if err != nil {
			if errors.Is(err, daemon.ErrAlreadyRunning) {
				return fmt.Errorf("daemon is already running (PID: %d)", pid)
			}
			return err
		}
		fmt.Printf("Daemon started (PID: %d)\n", pid)
		return nil
	}

	file, err := config.LoadFile()
	if err != nil {
		return errors.NewSystemError("failed to read config.yaml", err)
	}

	dbPath := storage.DefaultPath()
	if env := os.Getenv(runtime.EnvDatabase); env != "" {
		dbPath = env
	}
	db, err := storage.Open(storage.Options{Path: dbPath, InMemory: dbPath == ":memory:"})
	if err != nil {
		if storage.IsLockedError(err) {
			return daemon.ErrAlreadyRunning
		}
		return fmt.Errorf("cannot access database: %w", err)
	}
	defer db.Close()

	d := daemon.NewDaemon(db, file)
	d.SetDebug(flagDebug)
	fmt.Println("Starting nudge daemon (foreground mode)...")
	return d.Start(cmd.Context())
}

func runDaemonStop(cmd *cobra.Command, args []string) error {
	d := daemon.NewDaemon(nil, nil)
	status := d.GetStatus()
	if !status.Running {
		fmt.Println("Daemon is not running")
		return nil
	}

	fmt.Println("Stopping nudge daemon...")
	if err := d.Stop(); err != nil {
		return err
	}
	fmt.Printf("Daemon stopped (was PID: %d)\n", status.PID)
	return nil
}

// daemonStatusOutput is `nudge daemon status --format json`.
type daemonStatusOutput struct {
	*daemon.Status
	State *daemon.DaemonState `json:"state,omitempty"`
}

func runDaemonStatus(cmd *cobra.Command, args []string) error {
	d := daemon.NewDaemon(nil, nil)
	status := d.GetStatus()
	var state *daemon.DaemonState
	if status.Running {
		state, _ = daemon.ReadState()
	}

	f := output.NewFormatter()
	f.Format = output.ParseFormat(flagFormat)
	f.ColorMode = parseColorMode(flagColor)
	if f.IsJSON() {
		return f.JSON(daemonStatusOutput{Status: status, State: state})
	}

	cli := output.NewCLIFormatter(f)
	cli.Title("nudge daemon")
	if !status.Running {
		f.Printf("  Status:    stopped\n\n")
		cli.Muted("Start with: nudge daemon start")
		return nil
	}

	f.Printf("  Status:    running\n")
	f.Printf("  PID:       %d\n", status.PID)
	if status.Uptime != "" {
		f.Printf("  Uptime:    %s\n", status.Uptime)
	}
	f.Printf("  Backends:  %s\n", joinOrNone(status.Backends))
	if state == nil {
		return nil
	}

	if state.Health != nil {
		f.Printf("  Health:    %s\n", state.Health.Status)
		for _, c := range state.Health.Checks {
			if !c.Healthy {
				cli.Warning(c.Name + ": " + c.Error)
			}
		}
	}
	if m := state.Metrics; m != nil {
		f.Printf("  Fired:     water %d, stand %d, eyes %d\n",
			m.RemindersFired["water"], m.RemindersFired["stand"], m.RemindersFired["eyes"])
		f.Printf("  Delivered: %d ok, %d failed\n", m.DeliveriesOK, m.DeliveriesFailed)
		if m.LastError != "" {
			f.Printf("  Last error: %s\n", m.LastError)
		}
	}
	if q := state.RetryQueue; q != nil && q.QueueSize > 0 {
		f.Printf("  Retrying:  %d webhook deliveries\n", q.QueueSize)
	}
	return nil
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

func runDaemonLogs(cmd *cobra.Command, args []string) error {
	logPath := daemon.GetLogPath()

	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		fmt.Println("No log file found.")
		fmt.Printf("Log path: %s\n", logPath)
		return nil
	}

	lines, err := daemon.TailLog(logPath, daemonLogsFlagTail)
	if err != nil {
		return err
	}
	for _, line := range lines {
		fmt.Println(line)
	}

	if daemonLogsFlagFollow {
		return followLogs(cmd.Context(), logPath, os.Stdout)
	}
	return nil
}

// followLogs prints lines appended to path until ctx is done.
func followLogs(ctx context.Context, path string, w io.Writer) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(path); err != nil {
		return err
	}

	reader := bufio.NewReader(file)
	flush := func() {
		for {
			line, err := reader.ReadString('\n')
			if line != "" {
				fmt.Fprint(w, line)
			}
			if err != nil {
				return
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Write != 0 {
				flush()
			}
			if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				// Rotated on the next daemon start.
				return nil
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}

func runDaemonInstall(cmd *cobra.Command, args []string) error {
	mgr, err := daemon.NewServiceManager()
	if err != nil {
		return err
	}

	if mgr.IsInstalled() && !daemonInstallFlagForce {
		if ctx.IsJSON() {
			return ctx.Formatter.JSON(output.ActionResponse{Status: "already_installed", Message: mgr.ServicePath()})
		}
		ctx.Formatter.Println("Service is already installed.")
		ctx.Formatter.Println("Use --force to reinstall.")
		return nil
	}
	if mgr.IsInstalled() {
		if err := mgr.Uninstall(); err != nil {
			return fmt.Errorf("failed to remove existing service: %w", err)
		}
	}

	if _, err := ctx.Submit(inbox.Setting(launchAtLoginKey, "on")); err != nil {
		return err
	}
	// The service starts the daemon, which needs the database lock.
	ctx.Close()
	if err := mgr.Install(); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(output.ActionResponse{Status: "installed", Message: mgr.ServicePath()})
	}
	cli := ctx.CLIFormatter()
	cli.Success("Service installed")
	ctx.Formatter.Println("")
	ctx.Formatter.Println("The daemon will now start automatically when you log in.")
	ctx.Formatter.Println("To remove: nudge daemon uninstall")
	return nil
}

func runDaemonUninstall(cmd *cobra.Command, args []string) error {
	mgr, err := daemon.NewServiceManager()
	if err != nil {
		return err
	}

	if _, err := ctx.Submit(inbox.Setting(launchAtLoginKey, "off")); err != nil {
		return err
	}
	if !mgr.IsInstalled() {
		if ctx.IsJSON() {
			return ctx.Formatter.JSON(output.ActionResponse{Status: "not_installed"})
		}
		ctx.Formatter.Println("Service is not installed.")
		return nil
	}

	if err := mgr.Uninstall(); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(output.ActionResponse{Status: "uninstalled"})
	}
	ctx.CLIFormatter().Success("Service uninstalled")
	ctx.Formatter.Println("The daemon will no longer start automatically.")
	return nil
}

// syncLaunchAtLogin installs or removes the login service to match a
// launch_at_login change.
func syncLaunchAtLogin(value string) error {
	on, err := validate.Bool(launchAtLoginKey, value)
	if err != nil {
		return err
	}
	mgr, err := daemon.NewServiceManager()
	if err != nil {
		return err
	}
	switch {
	case on && !mgr.IsInstalled():
		ctx.Close()
		return mgr.Install()
	case !on && mgr.IsInstalled():
		return mgr.Uninstall()
	}
	return nil
}
