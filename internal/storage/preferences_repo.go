package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/manav03panchal/nudge/internal/model"
)

// ErrCorruptPreferences is returned alongside defaults when the stored blob
// cannot be parsed at all.
var ErrCorruptPreferences = errors.New("stored preferences are unreadable")

// PreferencesRepo reads and writes the preferences blob.
type PreferencesRepo struct {
	db *DB
}

// NewPreferencesRepo creates a new preferences repository.
func NewPreferencesRepo(db *DB) *PreferencesRepo {
	return &PreferencesRepo{db: db}
}

// Load returns the stored preferences. A missing blob yields defaults and a
// nil error. An unreadable blob yields defaults and ErrCorruptPreferences.
func (r *PreferencesRepo) Load() (*model.Preferences, error) {
	data, err := r.db.GetBytes(model.KeyPreferences)
	if IsErrKeyNotFound(err) {
		return model.DefaultPreferences(), nil
	}
	if err != nil {
		return nil, err
	}

	prefs := &model.Preferences{}
	if err := json.Unmarshal(data, prefs); err != nil {
		return model.DefaultPreferences(), fmt.Errorf("%w: %v", ErrCorruptPreferences, err)
	}
	return prefs, nil
}

// Save writes the whole blob.
func (r *PreferencesRepo) Save(prefs *model.Preferences) error {
	prefs.Version = model.PreferencesVersion
	data, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	return r.db.SetBytes(model.KeyPreferences, data)
}

// Reset removes the blob so the next Load returns defaults.
func (r *PreferencesRepo) Reset() error {
	return r.db.Delete(model.KeyPreferences)
}
