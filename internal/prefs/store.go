// Package prefs owns the live Preferences value. Every mutation is persisted
// immediately and announced to subscribers.
package prefs

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/manav03panchal/nudge/internal/logging"
	"github.com/manav03panchal/nudge/internal/model"
	"github.com/manav03panchal/nudge/internal/storage"
)

// Repository persists the preferences blob.
type Repository interface {
	Load() (*model.Preferences, error)
	Save(*model.Preferences) error
}

// Store is the single source of truth for preferences within a process.
type Store struct {
	mu     sync.Mutex
	repo   Repository
	prefs  *model.Preferences
	subs   map[int]func(*model.Preferences)
	nextID int
	log    *slog.Logger
}

// Open loads preferences from repo. An unreadable blob is logged and
// replaced by defaults rather than failing.
func Open(repo Repository) (*Store, error) {
	log := logging.Component("prefs")

	p, err := repo.Load()
	if err != nil {
		if !errors.Is(err, storage.ErrCorruptPreferences) {
			return nil, err
		}
		log.Warn("stored preferences unreadable, using defaults", logging.KeyError, err)
	}

	return &Store{
		repo:  repo,
		prefs: p,
		subs:  make(map[int]func(*model.Preferences)),
		log:   log,
	}, nil
}

// Get returns a copy of the current preferences.
func (s *Store) Get() *model.Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs.Clone()
}

// Update applies fn, persists, and notifies subscribers.
func (s *Store) Update(fn func(p *model.Preferences)) *model.Preferences {
	snapshot := s.apply(fn)
	s.notify(snapshot)
	return snapshot
}

// Apply applies fn and persists without notifying subscribers. The engine
// uses it for its own bookkeeping, after which it recalculates anyway.
func (s *Store) Apply(fn func(p *model.Preferences)) *model.Preferences {
	return s.apply(fn)
}

// Reset restores every field to its default and notifies subscribers.
func (s *Store) Reset() *model.Preferences {
	return s.Update(func(p *model.Preferences) { p.ResetToDefaults() })
}

// TryLogWater records one dose atomically. On rejection it returns the
// cooldown still to wait.
func (s *Store) TryLogWater(now time.Time) (dose int, ok bool, remaining time.Duration) {
	s.apply(func(p *model.Preferences) {
		dose, ok = p.TryLogWater(now)
		if !ok {
			remaining = p.WaterTapRemaining(now)
		}
	})
	return dose, ok, remaining
}

// Subscribe registers fn to receive a copy after every Update. The returned
// function removes the subscription.
func (s *Store) Subscribe(fn func(p *model.Preferences)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) apply(fn func(p *model.Preferences)) *model.Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(s.prefs)
	if err := s.repo.Save(s.prefs); err != nil {
		// The in-memory value stays authoritative.
		s.log.Warn("failed to persist preferences", logging.KeyError, err)
	}
	return s.prefs.Clone()
}

func (s *Store) notify(snapshot *model.Preferences) {
	s.mu.Lock()
	subs := make([]func(*model.Preferences), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot.Clone())
	}
}
