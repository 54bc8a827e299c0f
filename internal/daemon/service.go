package daemon

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"text/template"

	"github.com/adrg/xdg"

	"github.com/manav03panchal/nudge/internal/logging"
)

const (
	launchdLabel = "com.nudge.daemon"
	systemdUnit  = "nudge.service"
)

// ServiceManager installs the daemon as a per-user login service.
type ServiceManager struct {
	executablePath string
	goos           string
	run            func(name string, args ...string) error
}

// NewServiceManager creates a manager for the running executable.
func NewServiceManager() (*ServiceManager, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}
	return &ServiceManager{
		executablePath: execPath,
		goos:           runtime.GOOS,
		run:            runCommand,
	}, nil
}

func runCommand(name string, args ...string) error {
	out, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, out)
	}
	return nil
}

// Install writes the service definition and starts it.
func (m *ServiceManager) Install() error {
	switch m.goos {
	case "darwin":
		return m.installLaunchd()
	case "linux":
		return m.installSystemd()
	default:
		return fmt.Errorf("launch at login is not supported on %s", m.goos)
	}
}

// Uninstall stops the service and removes its definition.
func (m *ServiceManager) Uninstall() error {
	switch m.goos {
	case "darwin":
		return m.uninstallLaunchd()
	case "linux":
		return m.uninstallSystemd()
	default:
		return fmt.Errorf("launch at login is not supported on %s", m.goos)
	}
}

// IsInstalled reports whether a service definition exists.
func (m *ServiceManager) IsInstalled() bool {
	path := m.ServicePath()
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// ServicePath returns where the definition lives on this platform.
func (m *ServiceManager) ServicePath() string {
	switch m.goos {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "LaunchAgents", launchdLabel+".plist")
	case "linux":
		return filepath.Join(xdg.ConfigHome, "systemd", "user", systemdUnit)
	default:
		return ""
	}
}

var launchdTemplate = template.Must(template.New("plist").Parse(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
    <key>Label</key>
    <string>{{.Label}}</string>
    <key>ProgramArguments</key>
    <array>
        <string>{{.ExecutablePath}}</string>
        <string>daemon</string>
        <string>start</string>
        <string>--foreground</string>
    </array>
    <key>RunAtLoad</key>
    <true/>
    <key>KeepAlive</key>
    <dict>
        <key>SuccessfulExit</key>
        <false/>
    </dict>
    <key>StandardOutPath</key>
    <string>{{.LogPath}}</string>
    <key>StandardErrorPath</key>
    <string>{{.LogPath}}</string>
</dict>
</plist>
`))

var systemdTemplate = template.Must(template.New("unit").Parse(`[Unit]
Description=nudge wellness reminders
After=graphical-session.target

[Service]
Type=simple
ExecStart={{.ExecutablePath}} daemon start --foreground
Restart=on-failure
RestartSec=5
StandardOutput=append:{{.LogPath}}
StandardError=append:{{.LogPath}}
Environment="XDG_CONFIG_HOME={{.ConfigHome}}"
Environment="XDG_DATA_HOME={{.DataHome}}"
Environment="XDG_STATE_HOME={{.StateHome}}"

[Install]
WantedBy=default.target
`))

type serviceData struct {
	Label          string
	ExecutablePath string
	LogPath        string
	ConfigHome     string
	DataHome       string
	StateHome      string
}

func (m *ServiceManager) data() serviceData {
	return serviceData{
		Label:          launchdLabel,
		ExecutablePath: m.executablePath,
		LogPath:        GetLogPath(),
		ConfigHome:     xdg.ConfigHome,
		DataHome:       xdg.DataHome,
		StateHome:      xdg.StateHome,
	}
}

// Render writes the service definition for this platform to w.
func (m *ServiceManager) Render(w io.Writer) error {
	switch m.goos {
	case "darwin":
		return launchdTemplate.Execute(w, m.data())
	case "linux":
		return systemdTemplate.Execute(w, m.data())
	default:
		return fmt.Errorf("launch at login is not supported on %s", m.goos)
	}
}

func (m *ServiceManager) writeDefinition() (string, error) {
	path := m.ServicePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create service directory: %w", err)
	}
	if err := os.MkdirAll(GetLogDir(), 0o755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create service file: %w", err)
	}
	defer f.Close()

	if err := m.Render(f); err != nil {
		return "", fmt.Errorf("failed to write service file: %w", err)
	}
	return path, nil
}

func (m *ServiceManager) installLaunchd() error {
	path, err := m.writeDefinition()
	if err != nil {
		return err
	}
	if err := m.run("launchctl", "load", path); err != nil {
		return fmt.Errorf("failed to load service: %w", err)
	}
	logging.DebugLog("installed launchd agent", "path", path)
	return nil
}

func (m *ServiceManager) uninstallLaunchd() error {
	path := m.ServicePath()
	_ = m.run("launchctl", "unload", path)

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove plist file: %w", err)
	}
	logging.DebugLog("removed launchd agent", "path", path)
	return nil
}

func (m *ServiceManager) installSystemd() error {
	path, err := m.writeDefinition()
	if err != nil {
		return err
	}
	for _, args := range [][]string{
		{"--user", "daemon-reload"},
		{"--user", "enable", systemdUnit},
		{"--user", "start", systemdUnit},
	} {
		if err := m.run("systemctl", args...); err != nil {
			return err
		}
	}
	logging.DebugLog("installed systemd user unit", "path", path)
	return nil
}

func (m *ServiceManager) uninstallSystemd() error {
	path := m.ServicePath()
	_ = m.run("systemctl", "--user", "stop", systemdUnit)
	_ = m.run("systemctl", "--user", "disable", systemdUnit)

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove unit file: %w", err)
	}
	_ = m.run("systemctl", "--user", "daemon-reload")
	logging.DebugLog("removed systemd user unit", "path", path)
	return nil
}
