package validate

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/nudge/internal/errors"
	"github.com/manav03panchal/nudge/internal/model"
)

func TestCategory(t *testing.T) {
	c, err := Category("Drink")
	require.NoError(t, err)
	assert.Equal(t, model.Water, c)

	_, err = Category("sleep")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrInvalidCategory))
}

func TestAction(t *testing.T) {
	a, err := Action(" WATER_DONE ")
	require.NoError(t, err)
	assert.Equal(t, model.ActionWaterDone, a)

	_, err = Action("dance")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrInvalidAction))
	ue, ok := errors.AsUserError(err)
	require.True(t, ok)
	assert.Contains(t, ue.Suggestion, "snooze_10")
}

func TestBool(t *testing.T) {
	tests := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{"on", true, false},
		{"TRUE", true, false},
		{"1", true, false},
		{"off", false, false},
		{"no", false, false},
		{"maybe", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Bool("sound", tt.in)
			if tt.wantErr {
				assert.True(t, stderrors.Is(err, errors.ErrInvalidValue))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIntRange(t *testing.T) {
	n, err := IntRange("dose", " 250 ", 80, 400)
	require.NoError(t, err)
	assert.Equal(t, 250, n)

	for _, bad := range []string{"79", "401", "two", ""} {
		_, err := IntRange("dose", bad, 80, 400)
		assert.Error(t, err, bad)
	}
}

func TestWebhookName(t *testing.T) {
	assert.NoError(t, WebhookName("team-slack"))
	assert.Error(t, WebhookName("-bad"))
	assert.Error(t, WebhookName(strings.Repeat("a", 51)))
}

func TestURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"https", "https://hooks.slack.com/services/T000/B000/XXX", false},
		{"http_localhost", "http://localhost:8080/hook", false},
		{"empty", "", true},
		{"no_scheme", "hooks.slack.com/services", true},
		{"ftp", "ftp://example.com/hook", true},
		{"http_external", "http://example.com/hook", true},
		{"private_ip", "https://192.168.1.10/hook", true},
		{"link_local", "https://169.254.169.254/latest", true},
		{"too_long", "https://example.com/" + strings.Repeat("a", MaxURLLength), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := URL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSanitizeValue(t *testing.T) {
	assert.Equal(t, "hello", SanitizeValue("  hel\x00lo\x07 "))
	assert.Len(t, SanitizeValue(strings.Repeat("x", 1000)), MaxValueLength)
	assert.Equal(t, "ab...", TruncateString("abcdefgh", 5))
	assert.Equal(t, "a\nb", StripControlChars("a\nb\x1b"))
}
