package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tracker.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadWithoutFileReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http", cfg.Telemetry.Source)
	assert.Equal(t, 2500*time.Millisecond, cfg.Telemetry.PollInterval.Std())
	assert.Equal(t, 1.0, cfg.Scene.EarthRadius)
	assert.Equal(t, "orbit", cfg.Camera.Mode)
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverlaysFileOnDefaults(t *testing.T) {
	path := writeConfig(t, `
[telemetry]
poll_interval = "5s"
endpoint = "http://localhost:8099/iss"

[camera]
mode = "follow"
follow_blend = 0.25

[scene]
earth_radius = 6371.0
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Telemetry.PollInterval.Std())
	assert.Equal(t, "http://localhost:8099/iss", cfg.Telemetry.Endpoint)
	assert.Equal(t, "follow", cfg.Camera.Mode)
	assert.Equal(t, 0.25, cfg.Camera.FollowBlend)
	assert.Equal(t, 6371.0, cfg.Scene.EarthRadius)

	// Untouched fields keep their defaults.
	assert.Equal(t, 2*time.Second, cfg.Telemetry.FetchTimeout.Std())
	assert.Equal(t, 3.0, cfg.Camera.OrbitRadius)
	assert.Equal(t, ":9464", cfg.Metrics.Addr)
}

func TestLoadRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"malformed toml", "[telemetry\n"},
		{"bad duration", "[telemetry]\npoll_interval = \"fast\"\n"},
		{"unknown source", "[telemetry]\nsource = \"carrier-pigeon\"\n"},
		{"sgp4 without tle", "[telemetry]\nsource = \"sgp4\"\n"},
		{"zero earth radius", "[scene]\nearth_radius = 0.0\n"},
		{"blend out of range", "[camera]\nfollow_blend = 1.5\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}
