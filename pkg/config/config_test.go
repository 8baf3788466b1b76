package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := defaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 10.0, cfg.Office.RadiusMeters)
	assert.Equal(t, 5.0, cfg.Office.BufferMeters)
	assert.Equal(t, []string{"admin", "supervisor"}, cfg.Auth.ObserverRoles)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		shouldErr bool
	}{
		{"port 0 invalid", func(c *Config) { c.Server.Port = 0 }, true},
		{"port 65536 invalid", func(c *Config) { c.Server.Port = 65536 }, true},
		{"ops port equal to server port", func(c *Config) { c.Server.OpsPort = c.Server.Port }, true},
		{"ops port disabled", func(c *Config) { c.Server.OpsPort = 0 }, false},
		{"unknown db type", func(c *Config) { c.Database.Type = "mysql" }, true},
		{"sqlite needs path", func(c *Config) { c.Database.Type = "sqlite"; c.Database.Path = "" }, true},
		{"sqlite with path", func(c *Config) { c.Database.Type = "sqlite" }, false},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, true},
		{"empty secret", func(c *Config) { c.Auth.SecretKey = "" }, true},
		{"latitude out of range", func(c *Config) { c.Office.Latitude = 91 }, true},
		{"zero radius", func(c *Config) { c.Office.RadiusMeters = 0 }, true},
		{"negative buffer", func(c *Config) { c.Office.BufferMeters = -1 }, true},
		{"zero buffer allowed", func(c *Config) { c.Office.BufferMeters = 0 }, false},
		{"unknown timezone", func(c *Config) { c.Office.Timezone = "Mars/Olympus" }, true},
		{"zero store timeout", func(c *Config) { c.Attendance.StoreTimeout = 0 }, true},
		{"pong wait shorter than ping", func(c *Config) { c.WebSocket.PongWait = time.Second }, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(cfg)

			err := cfg.Validate()
			if tc.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 8181
office:
  radius_meters: 25
  timezone: UTC
attendance:
  store_timeout: 2s
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	t.Setenv("GEOATTEND_CONFIG", path)
	t.Setenv("OFFICE_BUFFER_RADIUS", "7.5")
	t.Setenv("OBSERVER_ROLES", "admin, hr ,")
	t.Setenv("PORT", "8282")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8282, cfg.Server.Port, "env overrides file")
	assert.Equal(t, 25.0, cfg.Office.RadiusMeters)
	assert.Equal(t, 7.5, cfg.Office.BufferMeters)
	assert.Equal(t, 2*time.Second, cfg.Attendance.StoreTimeout)
	assert.Equal(t, []string{"admin", "hr"}, cfg.Auth.ObserverRoles)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestLoad_InvalidEnvValueIgnored(t *testing.T) {
	t.Setenv("GEOATTEND_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("OFFICE_RADIUS", "ten")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10.0, cfg.Office.RadiusMeters)
}
