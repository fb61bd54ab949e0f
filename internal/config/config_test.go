package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[server]
name = "Test"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Test", cfg.Server.Name)
	assert.Equal(t, 50*time.Millisecond, cfg.Simulation.TickRate)
	assert.Equal(t, 30*time.Second, cfg.Universe.RespawnMin)
	assert.Equal(t, 90*time.Second, cfg.Universe.RespawnMax)
	assert.Equal(t, 0.1, cfg.Universe.HysteresisMargin)
	assert.Equal(t, 0.1, cfg.Rates.DeathPenalty)
	assert.Equal(t, "0.0.0.0:8087", cfg.Telemetry.BindAddress)
	assert.NotZero(t, cfg.Server.StartTime)
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
[simulation]
tick_rate = "100ms"

[universe]
seed = 99
hysteresis_margin = 0.25
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 100*time.Millisecond, cfg.Simulation.TickRate)
	assert.Equal(t, int64(99), cfg.Universe.Seed)
	assert.Equal(t, 0.25, cfg.Universe.HysteresisMargin)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{
			name: "respawn window inverted",
			body: "[universe]\nrespawn_min = \"2m\"\nrespawn_max = \"1m\"\n",
		},
		{
			name: "hysteresis out of range",
			body: "[universe]\nhysteresis_margin = 1.5\n",
		},
		{
			name: "negative tick rate",
			body: "[simulation]\ntick_rate = \"-50ms\"\n",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
