package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeAdvanceFiresInOrder(t *testing.T) {
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	c := NewFake(start)

	var fired []string
	c.AfterFunc(2*time.Minute, func() { fired = append(fired, "b") })
	c.AfterFunc(time.Minute, func() { fired = append(fired, "a") })
	c.AfterFunc(10*time.Minute, func() { fired = append(fired, "c") })

	c.Advance(5 * time.Minute)

	assert.Equal(t, []string{"a", "b"}, fired)
	assert.Equal(t, start.Add(5*time.Minute), c.Now())
	assert.Equal(t, 1, c.Pending())
}

func TestFakeStop(t *testing.T) {
	c := NewFake(time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))

	called := false
	timer := c.AfterFunc(time.Second, func() { called = true })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())

	c.Advance(time.Minute)
	assert.False(t, called)
	assert.Equal(t, 0, c.Pending())
}

func TestFakeTimerSeesDeadlineAsNow(t *testing.T) {
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	c := NewFake(start)

	var seen time.Time
	c.AfterFunc(90*time.Second, func() { seen = c.Now() })
	c.Advance(time.Hour)

	assert.Equal(t, start.Add(90*time.Second), seen)
}

func TestFakeCallbackMayArmTimers(t *testing.T) {
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	c := NewFake(start)

	count := 0
	var rearm func()
	rearm = func() {
		count++
		c.AfterFunc(time.Minute, rearm)
	}
	c.AfterFunc(time.Minute, rearm)

	c.Advance(5 * time.Minute)
	assert.Equal(t, 5, count)
	assert.Equal(t, []time.Time{start.Add(6 * time.Minute)}, c.Deadlines())
}
