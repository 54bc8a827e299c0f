package runtime

import (
	stderrors "errors"
	"fmt"
	"strings"
	"syscall"

	"github.com/manav03panchal/nudge/internal/errors"
)

// ErrDiskFull marks a write that failed for lack of space.
var ErrDiskFull = stderrors.New("disk full: unable to write to database")

// Suggestions provides helpful suggestions for common errors.
var Suggestions = map[error]string{
	errors.ErrInvalidCategory:  "Categories are water, stand and eyes.",
	errors.ErrInvalidAction:    "Actions are water_done, start_stand, start_eyes, snooze_10 and open_settings.",
	errors.ErrDaemonNotRunning: "Start it with 'nudge daemon start'.",
	errors.ErrDaemonRunning:    "Use 'nudge daemon status' to see it, or 'nudge daemon stop' to stop it.",
	errors.ErrUnknownSetting:   "Run 'nudge config show' to list settings.",
	errors.ErrInvalidDuration:  "Try '30m', '1h', '1h30m' or a number of minutes.",
	errors.ErrInvalidTime:      "Try '9am', '17:30', 'tomorrow 9am' or '+2h'.",
	errors.ErrWebhookNotFound:  "Use 'nudge webhook list' to see configured webhooks.",
	errors.ErrInvalidURL:       "Webhook URLs must be public http or https addresses.",
	errors.ErrWaterCooldown:    "Check 'nudge water status' for when the next tap counts.",
	ErrDiskFull:                "Free up disk space and try again.",
}

// GetSuggestion returns a suggestion for an error, if available. A
// UserError's own suggestion wins.
func GetSuggestion(err error) string {
	if ue, ok := errors.AsUserError(err); ok && ue.Suggestion != "" {
		return ue.Suggestion
	}
	for knownErr, suggestion := range Suggestions {
		if stderrors.Is(err, knownErr) {
			return suggestion
		}
	}
	return ""
}

// FormatError formats an error with optional suggestion.
func FormatError(err error) string {
	msg := err.Error()
	if suggestion := GetSuggestion(err); suggestion != "" {
		msg += "\n" + suggestion
	} else if errors.IsSystemError(err) {
		msg += "\nRun with --debug for details, or check 'nudge daemon logs'."
	}
	return msg
}

// DiskFullError represents a disk full condition with additional context.
type DiskFullError struct {
	Op      string
	Path    string
	wrapped error
}

func (e *DiskFullError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("disk full during %s on %s: %v", e.Op, e.Path, e.wrapped)
	}
	return fmt.Sprintf("disk full during %s: %v", e.Op, e.wrapped)
}

func (e *DiskFullError) Unwrap() error {
	return ErrDiskFull
}

// IsDiskFullError reports whether err means the disk is full, by errno or
// by message.
func IsDiskFullError(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, ErrDiskFull) {
		return true
	}
	var errno syscall.Errno
	if stderrors.As(err, &errno) && errno == syscall.ENOSPC {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{"no space left on device", "disk full", "enospc", "not enough space"} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// WrapDiskFullError wraps err as a DiskFullError when it indicates a full
// disk, and returns it unchanged otherwise.
func WrapDiskFullError(err error, op, path string) error {
	if IsDiskFullError(err) {
		return &DiskFullError{Op: op, Path: path, wrapped: err}
	}
	return err
}
