// Package runtime provides the per-invocation context for nudge commands.
package runtime

import (
	"os"
	"time"

	"github.com/manav03panchal/nudge/internal/config"
	"github.com/manav03panchal/nudge/internal/daemon"
	"github.com/manav03panchal/nudge/internal/engine"
	"github.com/manav03panchal/nudge/internal/errors"
	"github.com/manav03panchal/nudge/internal/inbox"
	"github.com/manav03panchal/nudge/internal/logging"
	"github.com/manav03panchal/nudge/internal/model"
	"github.com/manav03panchal/nudge/internal/output"
	"github.com/manav03panchal/nudge/internal/prefs"
	"github.com/manav03panchal/nudge/internal/storage"
)

// EnvDatabase overrides the database directory. ":memory:" opens a
// throwaway in-memory database.
const EnvDatabase = "NUDGE_DATABASE"

// Context holds the application runtime context.
type Context struct {
	DB        *storage.DB
	Formatter *output.Formatter
	File      *config.File
	Inbox     *inbox.Spool

	// Prefs and Webhooks are nil when DaemonOwned.
	Prefs    *prefs.Store
	Webhooks *storage.WebhookRepo

	// DaemonOwned is set when a running daemon holds the database. Changes
	// then travel through the inbox and reads come from its state file.
	DaemonOwned bool

	Debug bool

	statePath string
	local     *Local
	now       func() time.Time
}

// Options configures the runtime context.
type Options struct {
	DBPath     string
	InMemory   bool
	InboxDir   string
	StatePath  string
	ConfigDirs []string
	Format     output.Format
	ColorMode  output.ColorMode
	Debug      bool
}

// DefaultOptions returns default runtime options.
func DefaultOptions() Options {
	return Options{
		DBPath:    storage.DefaultPath(),
		InboxDir:  inbox.DefaultDir(),
		StatePath: daemon.GetStatePath(),
		Format:    output.FormatCLI,
		ColorMode: output.ColorAuto,
	}
}

// New creates a new runtime context. A database locked by the daemon is
// not an error; the context switches to DaemonOwned instead.
func New(opts Options) (*Context, error) {
	if envPath := os.Getenv(EnvDatabase); envPath != "" {
		if envPath == ":memory:" {
			opts.InMemory = true
		} else {
			opts.DBPath = envPath
		}
	}
	if opts.InboxDir == "" {
		opts.InboxDir = inbox.DefaultDir()
	}
	if opts.StatePath == "" {
		opts.StatePath = daemon.GetStatePath()
	}

	file, err := config.LoadFile(opts.ConfigDirs...)
	if err != nil {
		return nil, errors.NewSystemError("failed to read config.yaml", err)
	}

	spool, err := inbox.Open(opts.InboxDir)
	if err != nil {
		return nil, errors.NewSystemError("failed to open inbox", err)
	}

	formatter := output.NewFormatter()
	formatter.Format = opts.Format
	formatter.ColorMode = opts.ColorMode

	ctx := &Context{
		Formatter: formatter,
		File:      file,
		Inbox:     spool,
		Debug:     opts.Debug,
		statePath: opts.StatePath,
		now:       time.Now,
	}

	db, err := storage.Open(storage.Options{Path: opts.DBPath, InMemory: opts.InMemory})
	if err != nil {
		if !storage.IsLockedError(err) {
			return nil, errors.NewSystemError("cannot access database", err)
		}
		logging.DebugLog("database held by daemon, using inbox", "path", opts.DBPath)
		ctx.DaemonOwned = true
		return ctx, nil
	}

	store, err := prefs.Open(storage.NewPreferencesRepo(db))
	if err != nil {
		db.Close()
		return nil, errors.NewSystemError("failed to load preferences", err)
	}

	ctx.DB = db
	ctx.Prefs = store
	ctx.Webhooks = storage.NewWebhookRepo(db)
	ctx.local = NewLocal(store, time.Now)
	return ctx, nil
}

// Close closes the runtime context. It is safe to call more than once.
func (c *Context) Close() error {
	if c.DB == nil {
		return nil
	}
	err := c.DB.Close()
	c.DB = nil
	return err
}

// CLIFormatter returns a CLI formatter.
func (c *Context) CLIFormatter() *output.CLIFormatter {
	return output.NewCLIFormatter(c.Formatter)
}

// IsJSON returns true if output format is JSON.
func (c *Context) IsJSON() bool {
	return c.Formatter.IsJSON()
}

// Now returns the current time.
func (c *Context) Now() time.Time {
	return c.now()
}

// Local returns the in-process controller, nil when DaemonOwned.
func (c *Context) Local() *Local {
	return c.local
}

// RequireDB fails with a hint to stop the daemon when it owns the
// database. Webhook management needs direct access.
func (c *Context) RequireDB() error {
	if !c.DaemonOwned {
		return nil
	}
	return &errors.UserError{
		Message:    "the daemon is using the database",
		Suggestion: "Stop it with 'nudge daemon stop', run this command, then start it again",
		Cause:      errors.ErrDaemonRunning,
	}
}

// State reads the daemon's state file.
func (c *Context) State() (*daemon.DaemonState, error) {
	return daemon.ReadStateFrom(c.statePath)
}

// Preferences returns the current preferences, from the database or from
// the daemon's latest snapshot.
func (c *Context) Preferences() (*model.Preferences, error) {
	if c.Prefs != nil {
		return c.Prefs.Get(), nil
	}
	state, err := c.State()
	if err != nil || state.Preferences == nil {
		return nil, &errors.UserError{
			Message:    "the daemon has not published its state yet",
			Suggestion: "Try again in a moment, or check 'nudge daemon logs'",
			Cause:      errors.ErrDaemonNotRunning,
		}
	}
	state.Preferences.Normalize()
	return state.Preferences, nil
}

// Schedule returns the live schedule of the daemon, or the plan the engine
// would arm for the stored preferences.
func (c *Context) Schedule(p *model.Preferences) engine.Schedule {
	if c.DaemonOwned {
		if state, err := c.State(); err == nil {
			return state.Schedule
		}
	}
	now := c.now()
	plan := engine.BuildPlan(p, now)
	return engine.Schedule{Next: plan.Next, PausedUntil: plan.ResumeAt, UpdatedAt: now}
}

// Submit hands m to the daemon through the inbox, or applies it here when
// no daemon holds the database. queued reports which happened.
func (c *Context) Submit(m inbox.Message) (queued bool, err error) {
	if c.DaemonOwned {
		id, err := c.Inbox.Post(m)
		if err != nil {
			return false, errors.NewSystemError("failed to queue message for daemon", err)
		}
		logging.DebugLog("queued for daemon", "id", id, "message", m.String())
		return true, nil
	}
	return false, c.local.Router().Route(m)
}
