package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitText(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: slog.LevelInfo, Output: &buf})
	t.Cleanup(func() { Init(DefaultConfig()) })

	Info("reminder fired", KeyCategory, "stand")
	DebugLog("hidden")

	out := buf.String()
	assert.Contains(t, out, "reminder fired")
	assert.Contains(t, out, "category=stand")
	assert.NotContains(t, out, "hidden")
	assert.False(t, Debug)
}

func TestInitDebugJSON(t *testing.T) {
	var buf bytes.Buffer
	cfg := DebugConfig()
	cfg.Output = &buf
	Init(cfg)
	t.Cleanup(func() { Init(DefaultConfig()) })

	DebugLog("armed", KeyNextFire, "10:00")

	assert.True(t, Debug)
	assert.Contains(t, buf.String(), `"msg":"armed"`)
	assert.Contains(t, buf.String(), `"source"`)
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: slog.LevelInfo, Output: &buf})
	t.Cleanup(func() { Init(DefaultConfig()) })

	Component("engine").Warn("stale fire")
	assert.Contains(t, buf.String(), "component=engine")
}

func TestDeliveryID(t *testing.T) {
	assert.Equal(t, "", DeliveryIDFromContext(context.Background()))

	id := NewDeliveryID()
	assert.Len(t, id, 8)

	ctx := WithDeliveryID(context.Background(), id)
	assert.Equal(t, id, DeliveryIDFromContext(ctx))

	var buf bytes.Buffer
	Init(Config{Level: slog.LevelInfo, Output: &buf})
	t.Cleanup(func() { Init(DefaultConfig()) })

	WarnContext(ctx, "webhook failed")
	assert.Contains(t, buf.String(), "delivery_id="+id)
}

func TestMaskURL(t *testing.T) {
	assert.Equal(t, "https://example.com", MaskURL("https://example.com"))
	masked := MaskURL("https://hooks.slack.com/services/T000/B000/XXXXXXXX")
	assert.Equal(t, "https://hooks.slack.com/servic***", masked)
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "", MaskToken(""))
	assert.Equal(t, "123456:********", MaskToken("123456:ABC-DEF"))
	assert.Equal(t, "********", MaskToken("opaque"))
}
