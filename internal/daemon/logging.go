package daemon

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// MaxLogSize is the size past which the log is rotated on the next start.
const MaxLogSize = 5 << 20

// GetLogDir returns the directory containing log files.
func GetLogDir() string {
	return filepath.Join(xdg.StateHome, AppName)
}

// GetLogPath returns the path to the daemon log file.
func GetLogPath() string {
	return filepath.Join(GetLogDir(), "daemon.log")
}

// OpenLogFile opens path for appending, first moving it to path.old when
// it has grown past maxSize.
func OpenLogFile(path string, maxSize int64) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	if err := RotateLog(path, maxSize); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// RotateLog renames path to path.old when it is at least maxSize bytes.
func RotateLog(path string, maxSize int64) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.Size() < maxSize {
		return nil
	}

	backup := path + ".old"
	_ = os.Remove(backup)
	return os.Rename(path, backup)
}

// TailLog returns the last n lines of the log at path.
func TailLog(path string, n int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if n > 0 && len(lines) > n {
			lines = lines[1:]
		}
	}
	return lines, scanner.Err()
}

// lastLogError scans the tail of the log for a line that looks like a
// startup failure.
func lastLogError(path string) string {
	lines, err := TailLog(path, 10)
	if err != nil {
		return ""
	}
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		lower := strings.ToLower(line)
		if strings.Contains(lower, "level=error") ||
			strings.Contains(lower, "error:") ||
			strings.Contains(lower, "cannot access database") ||
			strings.Contains(lower, "failed to") {
			return line
		}
	}
	return ""
}
