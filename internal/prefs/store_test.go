package prefs

import (
	"errors"
	"testing"
	"time"

	"github.com/manav03panchal/nudge/internal/model"
	"github.com/manav03panchal/nudge/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	stored  *model.Preferences
	loadErr error
	saveErr error
	saves   int
}

func (r *memRepo) Load() (*model.Preferences, error) {
	if r.loadErr != nil {
		return model.DefaultPreferences(), r.loadErr
	}
	if r.stored == nil {
		return model.DefaultPreferences(), nil
	}
	return r.stored.Clone(), nil
}

func (r *memRepo) Save(p *model.Preferences) error {
	r.saves++
	if r.saveErr != nil {
		return r.saveErr
	}
	r.stored = p.Clone()
	return nil
}

func TestOpenWithBadger(t *testing.T) {
	db, err := storage.Open(storage.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s, err := Open(storage.NewPreferencesRepo(db))
	require.NoError(t, err)

	s.Update(func(p *model.Preferences) { p.EyesIntervalMinutes = 15 })

	reopened, err := Open(storage.NewPreferencesRepo(db))
	require.NoError(t, err)
	assert.Equal(t, 15, reopened.Get().EyesIntervalMinutes)
}

func TestOpenCorruptFallsBackToDefaults(t *testing.T) {
	s, err := Open(&memRepo{loadErr: storage.ErrCorruptPreferences})
	require.NoError(t, err)
	assert.Equal(t, model.DefaultPreferences(), s.Get())
}

func TestOpenOtherErrorFails(t *testing.T) {
	_, err := Open(&memRepo{loadErr: errors.New("io")})
	assert.Error(t, err)
}

func TestGetReturnsCopy(t *testing.T) {
	s, err := Open(&memRepo{})
	require.NoError(t, err)

	p := s.Get()
	p.WaterEnabled = false
	assert.True(t, s.Get().WaterEnabled)
}

func TestUpdatePersistsAndNotifies(t *testing.T) {
	repo := &memRepo{}
	s, err := Open(repo)
	require.NoError(t, err)

	var seen []*model.Preferences
	unsubscribe := s.Subscribe(func(p *model.Preferences) { seen = append(seen, p) })

	s.Update(func(p *model.Preferences) { p.SoundEnabled = false })
	require.Len(t, seen, 1)
	assert.False(t, seen[0].SoundEnabled)
	assert.False(t, repo.stored.SoundEnabled)

	s.Apply(func(p *model.Preferences) { p.SoundEnabled = true })
	assert.Len(t, seen, 1, "Apply must not notify")
	assert.True(t, repo.stored.SoundEnabled)

	unsubscribe()
	s.Update(func(p *model.Preferences) { p.LaunchAtLogin = true })
	assert.Len(t, seen, 1)
	assert.Equal(t, 3, repo.saves)
}

func TestSaveFailureKeepsMemoryState(t *testing.T) {
	repo := &memRepo{saveErr: errors.New("disk full")}
	s, err := Open(repo)
	require.NoError(t, err)

	s.Update(func(p *model.Preferences) { p.StandEnabled = false })
	assert.False(t, s.Get().StandEnabled)
}

func TestTryLogWater(t *testing.T) {
	s, err := Open(&memRepo{})
	require.NoError(t, err)
	now := time.Date(2026, 5, 14, 10, 0, 0, 0, time.Local)

	dose, ok, remaining := s.TryLogWater(now)
	assert.True(t, ok)
	assert.Equal(t, 200, dose)
	assert.Zero(t, remaining)

	dose, ok, remaining = s.TryLogWater(now.Add(20 * time.Second))
	assert.False(t, ok)
	assert.Zero(t, dose)
	assert.Equal(t, 100*time.Second, remaining)
	assert.Equal(t, 200, s.Get().WaterConsumedTodayMl)
}

func TestReset(t *testing.T) {
	s, err := Open(&memRepo{})
	require.NoError(t, err)

	s.Update(func(p *model.Preferences) {
		p.WaterIntervalMinutes = 90
		p.PauseUntil = time.Now().Add(time.Hour)
	})
	p := s.Reset()
	assert.Equal(t, 60, p.WaterIntervalMinutes)
	assert.True(t, p.PauseUntil.IsZero())
}
