package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "memory", cfg.Cache.Driver)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "PPK1", cfg.Cameras.PPK1Tab)
	assert.Equal(t, "Expansion", cfg.Doors.TabExpansion)
	assert.Equal(t, "info", cfg.Observability.LogLevel)
	require.NoError(t, cfg.Validate())
}

func TestLoad_YAMLFile(t *testing.T) {
	content := `
staff:
  csv_path: /data/tracker.csv
doors:
  sheet_id: sheet-doors
observability:
  log_level: debug
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/tracker.csv", cfg.Staff.CSVPath)
	assert.Equal(t, "sheet-doors", cfg.Doors.SheetID)
	assert.Equal(t, "debug", cfg.Observability.LogLevel)
	assert.Equal(t, "PPK1", cfg.Doors.TabPPK1, "unset fields keep defaults")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	content := "staff:\n  csv_path: /data/from-file.csv\n"
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("STAFF_TRACKER_CSV", "/data/from-env.csv")
	t.Setenv("CAM_PPK1_SHEET_ID", "cam-sheet-1")
	t.Setenv("CACHE_TTL", "90s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/from-env.csv", cfg.Staff.CSVPath)
	assert.Equal(t, "cam-sheet-1", cfg.Cameras.PPK1SheetID)
	assert.Equal(t, 90*time.Second, cfg.Cache.TTL)
}

func TestLoad_RedisAddrSelectsRedisDriver(t *testing.T) {
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.Cache.Driver)
	assert.Equal(t, "redis:6379", cfg.Cache.Redis.Addr)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"bad driver", func(c *Config) { c.Cache.Driver = "memcached" }, true},
		{"zero ttl", func(c *Config) { c.Cache.TTL = 0 }, true},
		{"redis driver", func(c *Config) { c.Cache.Driver = "redis" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSourceHelpers_MissingValues(t *testing.T) {
	cfg := &Config{}

	_, err := cfg.StaffSource()
	assert.ErrorIs(t, err, ErrMissingValue)
	assert.ErrorIs(t, cfg.CamerasSource(), ErrMissingValue)
	assert.ErrorIs(t, cfg.DoorsSource(), ErrMissingValue)
	_, err = cfg.CredentialsFile()
	assert.ErrorIs(t, err, ErrMissingValue)
}

func TestSourceHelpers_Configured(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cameras.PPK1SheetID = "abc"
	cfg.Doors.SheetID = "def"
	cfg.Google.CredentialsFile = "/etc/creds.json"

	path, err := cfg.StaffSource()
	require.NoError(t, err)
	assert.Equal(t, "data/Staff Tracker.csv", path)
	assert.NoError(t, cfg.CamerasSource())
	assert.NoError(t, cfg.DoorsSource())
	creds, err := cfg.CredentialsFile()
	require.NoError(t, err)
	assert.Equal(t, "/etc/creds.json", creds)
}
