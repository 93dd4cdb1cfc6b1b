package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	conf, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)

	assert.Equal(t, "error", conf.LogLevel)
	assert.Equal(t, "assets_diceroller_final", conf.Assets.Dir)
	assert.Equal(t, "roll.wav", conf.Assets.SoundFile)
	assert.Equal(t, "dice{face}.png", conf.Assets.ImagePattern)
	assert.True(t, conf.Sound.Enabled)
	assert.Equal(t, time.Second, conf.Sound.Pause)
	assert.Equal(t, DisplayAuto, conf.Display.Mode)
	assert.Equal(t, 2*time.Second, conf.Display.Duration)
	assert.False(t, conf.Telemetry.Enabled)
	assert.Equal(t, "dice-roller", conf.Telemetry.ServiceName)
}

func TestLoadOverrides(t *testing.T) {
	conf, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"LOG_LEVEL":                   "debug",
		"ASSETS_DIR":                  "/srv/dice",
		"SOUND_ENABLED":               "false",
		"SOUND_PAUSE":                 "250ms",
		"DISPLAY_MODE":                "ascii",
		"DISPLAY_DURATION":            "0s",
		"OTEL_ENABLED":                "true",
		"OTEL_EXPORTER_OTLP_ENDPOINT": "localhost:4317",
	}))
	require.NoError(t, err)

	assert.Equal(t, "debug", conf.LogLevel)
	assert.Equal(t, "/srv/dice", conf.Assets.Dir)
	assert.False(t, conf.Sound.Enabled)
	assert.Equal(t, 250*time.Millisecond, conf.Sound.Pause)
	assert.Equal(t, DisplayASCII, conf.Display.Mode)
	assert.Zero(t, conf.Display.Duration)
	assert.True(t, conf.Telemetry.Enabled)
	assert.Equal(t, "localhost:4317", conf.Telemetry.ExporterEndpoint)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string]map[string]string{
		"unknown display mode": {"DISPLAY_MODE": "hologram"},
		"negative pause":       {"SOUND_PAUSE": "-1s"},
		"negative duration":    {"DISPLAY_DURATION": "-2s"},
		"unparsable duration":  {"DISPLAY_DURATION": "soon"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadWith(context.Background(), envconfig.MapLookuper(env))
			assert.Error(t, err)
		})
	}
}
