package inbox

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/adrg/xdg"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/peterbourgon/diskv/v3"

	"github.com/manav03panchal/nudge/internal/config"
	"github.com/manav03panchal/nudge/internal/errors"
	"github.com/manav03panchal/nudge/internal/logging"
)

// DefaultDir returns the spool directory under the XDG state home.
func DefaultDir() string {
	return filepath.Join(xdg.StateHome, "nudge", "inbox")
}

// Spool is a directory of pending messages, one file each.
type Spool struct {
	d   *diskv.Diskv
	dir string
	now func() time.Time
	log *slog.Logger
}

// Open creates the spool at dir. Files are staged in a sibling directory
// and renamed into place, so a reader never sees a partial message.
func Open(dir string) (*Spool, error) {
	tmp := dir + ".tmp"
	for _, p := range []string{dir, tmp} {
		if err := os.MkdirAll(p, 0o755); err != nil {
			return nil, errors.Wrapf(err, "inbox: create %s", p)
		}
	}
	return &Spool{
		d: diskv.New(diskv.Options{
			BasePath: dir,
			TempDir:  tmp,
		}),
		dir: dir,
		now: time.Now,
		log: logging.Component("inbox"),
	}, nil
}

// Dir returns the watched directory.
func (s *Spool) Dir() string {
	return s.dir
}

// key sorts by creation time; the uuid suffix breaks ties.
func (s *Spool) key(t time.Time) string {
	return fmt.Sprintf("%020d-%s", t.UnixNano(), uuid.NewString()[:8])
}

// Post writes m to the spool and returns its id.
func (s *Spool) Post(m Message) (string, error) {
	now := s.now()
	m.ID = s.key(now)
	m.CreatedAt = now

	data, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	if err := s.d.Write(m.ID, data); err != nil {
		return "", errors.Wrapf(err, "inbox: write %s", m.ID)
	}
	return m.ID, nil
}

func (s *Spool) keys() []string {
	var keys []string
	for k := range s.d.Keys(nil) {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Pending returns the number of undrained messages.
func (s *Spool) Pending() int {
	return len(s.keys())
}

// Drain removes and returns every message in arrival order. Entries that
// cannot be decoded are dropped with a warning.
func (s *Spool) Drain() []Message {
	var out []Message
	for _, k := range s.keys() {
		data, err := s.d.Read(k)
		if err != nil {
			continue
		}
		if err := s.d.Erase(k); err != nil {
			s.log.Warn("failed to erase inbox entry", "key", k, logging.KeyError, err)
			continue
		}

		var m Message
		if err := json.Unmarshal(data, &m); err != nil {
			s.log.Warn("dropping malformed inbox entry", "key", k, logging.KeyError, err)
			continue
		}
		m.ID = k
		out = append(out, m)
	}
	return out
}

// Watch drains the spool whenever a file lands in it and on a fixed poll
// interval, calling handle for each message. It blocks until ctx is done.
func (s *Spool) Watch(ctx context.Context, handle func(Message)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "inbox: create watcher")
	}
	defer watcher.Close()

	if err := watcher.Add(s.dir); err != nil {
		return errors.Wrapf(err, "inbox: watch %s", s.dir)
	}

	interval := config.Global.Inbox.PollInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	drain := func() {
		for _, m := range s.Drain() {
			handle(m)
		}
	}
	drain()

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if evt.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				drain()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("inbox watcher error", logging.KeyError, err)
			drain()
		case <-ticker.C:
			drain()
		}
	}
}
