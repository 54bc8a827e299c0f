package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, 5, 14, hour, minute, 0, 0, time.Local)
}

// =============================================================================
// Active Window Tests
// =============================================================================

func TestActiveWindowContainsMinute(t *testing.T) {
	day := ActiveWindow{StartMinutes: 540, EndMinutes: 1260}
	assert.True(t, day.ContainsMinute(600))
	assert.False(t, day.ContainsMinute(1300))
	assert.True(t, day.ContainsMinute(540))
	assert.False(t, day.ContainsMinute(1260))

	night := ActiveWindow{StartMinutes: 1320, EndMinutes: 360}
	assert.True(t, night.ContainsMinute(1380))
	assert.False(t, night.ContainsMinute(420))
	assert.True(t, night.ContainsMinute(100))

	allDay := ActiveWindow{StartMinutes: 480, EndMinutes: 480}
	for _, m := range []int{0, 479, 480, 1439} {
		assert.True(t, allDay.ContainsMinute(m), "minute %d", m)
	}
}

func TestActiveWindowNextStart(t *testing.T) {
	w := ActiveWindow{StartMinutes: 540, EndMinutes: 1260}

	t.Run("inside_returns_now", func(t *testing.T) {
		now := at(10, 15)
		assert.Equal(t, now, w.NextStart(now))
	})

	t.Run("before_start_returns_today", func(t *testing.T) {
		assert.Equal(t, at(9, 0), w.NextStart(at(7, 30)))
	})

	t.Run("after_end_returns_tomorrow", func(t *testing.T) {
		assert.Equal(t, at(9, 0).AddDate(0, 0, 1), w.NextStart(at(21, 30)))
	})

	t.Run("overnight_window_just_closed", func(t *testing.T) {
		night := ActiveWindow{StartMinutes: 1320, EndMinutes: 360}
		assert.Equal(t, at(22, 0), night.NextStart(at(7, 0)))
	})
}

func TestActiveWindowDuration(t *testing.T) {
	assert.Equal(t, 720, ActiveWindow{540, 1260}.DurationMinutes())
	assert.Equal(t, 480, ActiveWindow{1320, 360}.DurationMinutes())
	assert.Equal(t, MinutesPerDay, ActiveWindow{0, 0}.DurationMinutes())
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "09:00", FormatClock(540))
	assert.Equal(t, "23:59", FormatClock(1439))
	assert.Equal(t, "00:00", FormatClock(1440))
	assert.Equal(t, "09:00-21:00", ActiveWindow{540, 1260}.String())
	assert.Equal(t, "all day", ActiveWindow{60, 60}.String())
}

// =============================================================================
// Water Tests
// =============================================================================

func TestCanLogWaterNowCooldown(t *testing.T) {
	p := DefaultPreferences()
	p.WaterTapCooldownSeconds = 120
	tap := at(10, 0)
	p.LastWaterTapAt = tap

	assert.False(t, p.CanLogWaterNow(tap.Add(119*time.Second)))
	assert.True(t, p.CanLogWaterNow(tap.Add(120*time.Second)))
}

func TestCooldownFloor(t *testing.T) {
	p := DefaultPreferences()
	p.WaterTapCooldownSeconds = 1
	tap := at(10, 0)
	p.LastWaterTapAt = tap

	assert.False(t, p.CanLogWaterNow(tap.Add(14*time.Second)))
	assert.True(t, p.CanLogWaterNow(tap.Add(15*time.Second)))
}

func TestWaterTapRemaining(t *testing.T) {
	p := DefaultPreferences()
	tap := at(10, 0)
	p.LastWaterTapAt = tap

	assert.Equal(t, 120*time.Second, p.WaterTapRemaining(tap))
	assert.Equal(t, 61*time.Second, p.WaterTapRemaining(tap.Add(59500*time.Millisecond)))
	assert.Equal(t, time.Duration(0), p.WaterTapRemaining(tap.Add(5*time.Minute)))

	p.LastWaterTapAt = time.Time{}
	assert.Equal(t, time.Duration(0), p.WaterTapRemaining(tap))
}

func TestRefreshDailyIfNeeded(t *testing.T) {
	today := at(8, 0)
	p := DefaultPreferences()
	p.WaterConsumedTodayMl = 1800
	p.DailyStamp = DailyStampKey(today.AddDate(0, 0, -1))
	p.LastWaterTapAt = today.Add(-10 * time.Hour)

	assert.True(t, p.RefreshDailyIfNeeded(today))
	assert.Equal(t, 0, p.WaterConsumedTodayMl)
	assert.True(t, p.LastWaterTapAt.IsZero())
	assert.Equal(t, DailyStampKey(today), p.DailyStamp)

	p.WaterConsumedTodayMl = 400
	assert.False(t, p.RefreshDailyIfNeeded(today.Add(time.Hour)))
	assert.Equal(t, 400, p.WaterConsumedTodayMl)
}

func TestTryLogWater(t *testing.T) {
	now := at(11, 0)

	t.Run("clamps_to_goal", func(t *testing.T) {
		p := DefaultPreferences()
		p.DailyStamp = DailyStampKey(now)
		p.WaterDosePerTapMl = 500
		p.DailyWaterGoalMl = 2000
		p.WaterConsumedTodayMl = 1900

		dose, ok := p.TryLogWater(now)
		require.True(t, ok)
		assert.Equal(t, 100, dose)
		assert.Equal(t, 2000, p.WaterConsumedTodayMl)
		assert.Equal(t, now, p.LastWaterTapAt)
	})

	t.Run("dose_floor", func(t *testing.T) {
		p := DefaultPreferences()
		p.WaterDosePerTapMl = 10

		dose, ok := p.TryLogWater(now)
		require.True(t, ok)
		assert.Equal(t, MinWaterDoseMl, dose)
	})

	t.Run("rejected_during_cooldown", func(t *testing.T) {
		p := DefaultPreferences()
		_, ok := p.TryLogWater(now)
		require.True(t, ok)

		dose, ok := p.TryLogWater(now.Add(30 * time.Second))
		assert.False(t, ok)
		assert.Equal(t, 0, dose)
		assert.Equal(t, 200, p.WaterConsumedTodayMl)
		assert.Equal(t, now, p.LastWaterTapAt)
	})

	t.Run("rollover_before_tap", func(t *testing.T) {
		p := DefaultPreferences()
		p.DailyStamp = "2000-01-01"
		p.WaterConsumedTodayMl = 2000
		p.LastWaterTapAt = now.Add(-time.Second)

		dose, ok := p.TryLogWater(now)
		require.True(t, ok)
		assert.Equal(t, 200, dose)
		assert.Equal(t, 200, p.WaterConsumedTodayMl)
	})
}

func TestSuggestedDoseMl(t *testing.T) {
	p := DefaultPreferences()
	// 720 minutes / 60 = 12 reminders, 2000/12 = 166.67
	assert.Equal(t, 167, p.SuggestedDoseMl())

	p.WaterIntervalMinutes = 180
	// 720 / 180 = 4, 2000/4 = 500 -> 350
	assert.Equal(t, 350, p.SuggestedDoseMl())

	p.WaterIntervalMinutes = 15
	// 720 / 15 = 48, 2000/48 = 41.7 -> 120
	assert.Equal(t, 120, p.SuggestedDoseMl())
}

// =============================================================================
// Preferences Tests
// =============================================================================

func TestDefaultPreferences(t *testing.T) {
	p := DefaultPreferences()

	for _, c := range Categories() {
		assert.True(t, p.Enabled(c))
	}
	assert.Equal(t, 60, p.IntervalMinutes(Water))
	assert.Equal(t, 30, p.IntervalMinutes(Stand))
	assert.Equal(t, 20, p.IntervalMinutes(Eyes))
	assert.Equal(t, ActiveWindow{540, 1260}, p.Window())
	assert.Equal(t, 2000, p.WaterGoalMl())
	assert.Equal(t, 200, p.WaterDoseMl())
	assert.Equal(t, 2*time.Minute, p.WaterCooldown())
	assert.True(t, p.SoundEnabled)
	assert.True(t, p.ForceOverlay(Stand))
	assert.True(t, p.ForceOverlay(Eyes))
	assert.False(t, p.ForceOverlay(Water))
	assert.False(t, p.LaunchAtLogin)
	assert.True(t, p.PauseUntil.IsZero())
	assert.Empty(t, p.SnoozeUntil)
}

func TestIntervalClampedOnRead(t *testing.T) {
	p := DefaultPreferences()
	p.WaterIntervalMinutes = 0
	p.StandIntervalMinutes = -5
	p.EyesIntervalMinutes = 1000

	assert.Equal(t, 15, p.IntervalMinutes(Water))
	assert.Equal(t, 20, p.IntervalMinutes(Stand))
	assert.Equal(t, 60, p.IntervalMinutes(Eyes))
	assert.Equal(t, 15*time.Minute, p.Interval(Water))
}

func TestSnoozeAndPause(t *testing.T) {
	now := at(12, 0)
	p := DefaultPreferences()

	p.Snooze(Stand, now.Add(10*time.Minute))
	assert.True(t, p.IsSnoozed(Stand, now))
	assert.False(t, p.IsSnoozed(Stand, now.Add(10*time.Minute)))
	assert.False(t, p.IsSnoozed(Water, now))

	p.ClearSnooze(Stand)
	assert.True(t, p.SnoozeDeadline(Stand).IsZero())

	assert.False(t, p.IsPaused(now))
	p.PauseUntil = now.Add(time.Hour)
	assert.True(t, p.IsPaused(now))
}

func TestAnyEnabled(t *testing.T) {
	p := DefaultPreferences()
	for _, c := range Categories() {
		p.SetEnabled(c, false)
	}
	assert.False(t, p.AnyEnabled())
	p.SetEnabled(Eyes, true)
	assert.True(t, p.AnyEnabled())
}

func TestNormalize(t *testing.T) {
	p := DefaultPreferences()
	p.DailyWaterGoalMl = 9000
	p.WaterDosePerTapMl = 5
	p.WaterTapCooldownSeconds = 0
	p.WaterConsumedTodayMl = 99999
	p.ActiveEndMinutes = 1500
	p.SnoozeUntil = nil

	p.Normalize()

	assert.Equal(t, MaxWaterGoalMl, p.DailyWaterGoalMl)
	assert.Equal(t, MinWaterDoseMl, p.WaterDosePerTapMl)
	assert.Equal(t, MinWaterCooldownSec, p.WaterTapCooldownSeconds)
	assert.Equal(t, MaxWaterGoalMl, p.WaterConsumedTodayMl)
	assert.Equal(t, 60, p.ActiveEndMinutes)
	assert.NotNil(t, p.SnoozeUntil)
}

func TestPreferencesCloneIsDeep(t *testing.T) {
	p := DefaultPreferences()
	p.Snooze(Water, at(13, 0))

	c := p.Clone()
	c.Snooze(Water, at(14, 0))

	assert.Equal(t, at(13, 0), p.SnoozeDeadline(Water))
}

func TestPreferencesJSONRoundTrip(t *testing.T) {
	p := DefaultPreferences()
	p.StandEnabled = false
	p.Snooze(Eyes, time.Date(2026, 5, 14, 15, 0, 0, 0, time.UTC))
	p.PauseUntil = time.Date(2026, 5, 14, 16, 0, 0, 0, time.UTC)

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"version":1`)

	var back Preferences
	require.NoError(t, json.Unmarshal(data, &back))
	assert.False(t, back.StandEnabled)
	assert.True(t, back.PauseUntil.Equal(p.PauseUntil))
	assert.True(t, back.SnoozeDeadline(Eyes).Equal(p.SnoozeDeadline(Eyes)))
}

func TestPreferencesTolerantDecode(t *testing.T) {
	blob := `{
		"version": 1,
		"waterIntervalMinutes": "ninety",
		"standIntervalMinutes": 45,
		"eyesEnabled": false,
		"activeStartMinutes": null,
		"snoozeUntil": {"stand": "2026-05-14T10:00:00Z", "coffee": "2026-05-14T10:00:00Z", "eyes": 7},
		"someFutureField": [1, 2, 3]
	}`

	var p Preferences
	require.NoError(t, json.Unmarshal([]byte(blob), &p))

	assert.Equal(t, 60, p.WaterIntervalMinutes)
	assert.Equal(t, 45, p.StandIntervalMinutes)
	assert.False(t, p.EyesEnabled)
	assert.Equal(t, 540, p.ActiveStartMinutes)
	assert.Equal(t, 2000, p.DailyWaterGoalMl)
	assert.Len(t, p.SnoozeUntil, 1)
	assert.False(t, p.SnoozeDeadline(Stand).IsZero())
}

func TestPreferencesUnreadableBlob(t *testing.T) {
	var p Preferences
	assert.Error(t, json.Unmarshal([]byte(`[not json`), &p))
}

// =============================================================================
// Category / Action / Notification Tests
// =============================================================================

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
		ok   bool
	}{
		{"water", Water, true},
		{"Stand", Stand, true},
		{" EYES ", Eyes, true},
		{"eye", Eyes, true},
		{"coffee", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseCategory(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestReminderNotificationCopy(t *testing.T) {
	n := NewReminderNotification(Water, 250, true)
	assert.Equal(t, NotifyReminder, n.Type)
	assert.Contains(t, n.Message, "250 ml")
	assert.True(t, n.Sound)
	assert.Equal(t, []ActionID{ActionWaterDone, ActionSnooze10}, n.Actions)
	assert.Equal(t, "Water Reminder", n.TypeLabel())

	b := NewBreakNotification(Eyes, false)
	assert.Equal(t, NotifyBreak, b.Type)
	assert.False(t, b.Sound)
	assert.Equal(t, "eyes", b.Icon())
}

// =============================================================================
// Webhook Tests
// =============================================================================

func TestWebhookAccepts(t *testing.T) {
	wh := NewWebhook("team", WebhookTypeSlack, "https://hooks.slack.com/services/x")
	assert.True(t, wh.Accepts(NewReminderNotification(Eyes, 0, false)))

	wh.Categories = []Category{Water}
	assert.True(t, wh.Accepts(NewReminderNotification(Water, 200, false)))
	assert.False(t, wh.Accepts(NewReminderNotification(Eyes, 0, false)))
	assert.True(t, wh.Accepts(NewTestNotification()))
}

func TestDetectWebhookType(t *testing.T) {
	assert.Equal(t, WebhookTypeDiscord, DetectWebhookType("https://discord.com/api/webhooks/1/abc"))
	assert.Equal(t, WebhookTypeSlack, DetectWebhookType("https://hooks.slack.com/services/T/B/X"))
	assert.Equal(t, WebhookTypeTeams, DetectWebhookType("https://acme.webhook.office.com/x"))
	assert.Equal(t, WebhookTypeGeneric, DetectWebhookType("https://example.com/hook"))
}

func TestIsValidWebhookName(t *testing.T) {
	assert.True(t, IsValidWebhookName("team-chat_1"))
	assert.False(t, IsValidWebhookName("-bad"))
	assert.False(t, IsValidWebhookName(""))
}
