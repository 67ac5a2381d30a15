// Package config provides unified configuration loading for AutoAgent.
// Supports YAML files, .env files, environment variables, and programmatic overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrMissingValue indicates a required configuration value is absent.
// Missing source descriptors are fatal configuration errors, never a
// silent empty table.
var ErrMissingValue = errors.New("missing configuration value")

// Config holds all configuration for AutoAgent.
type Config struct {
	Staff         StaffConfig         `yaml:"staff"`
	Cameras       CamerasConfig       `yaml:"cameras"`
	Doors         DoorsConfig         `yaml:"doors"`
	Google        GoogleConfig        `yaml:"google"`
	Cache         CacheConfig         `yaml:"cache"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// StaffConfig holds the staff directory source settings.
type StaffConfig struct {
	CSVPath string `yaml:"csv_path"`
}

// CamerasConfig holds the camera sheet source settings. The PPK2 sheet
// is optional; PPK1 is required to use the camera engine.
type CamerasConfig struct {
	PPK1SheetID string `yaml:"ppk1_sheet_id"`
	PPK1Tab     string `yaml:"ppk1_tab"`
	PPK2SheetID string `yaml:"ppk2_sheet_id"`
	PPK2Tab     string `yaml:"ppk2_tab"`
}

// DoorsConfig holds the doors sheet source settings. All three tabs live
// under one sheet ID.
type DoorsConfig struct {
	SheetID      string `yaml:"sheet_id"`
	TabPPK1      string `yaml:"tab_ppk1"`
	TabPPK2      string `yaml:"tab_ppk2"`
	TabExpansion string `yaml:"tab_expansion"`
}

// GoogleConfig holds Google Sheets credentials settings.
type GoogleConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
}

// CacheConfig holds table cache settings.
type CacheConfig struct {
	Driver string        `yaml:"driver"` // memory or redis
	TTL    time.Duration `yaml:"ttl"`
	Redis  RedisConfig   `yaml:"redis"`
}

// RedisConfig holds Redis-specific settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Load reads configuration from an optional YAML file and applies
// environment overrides. A .env file in the working directory is loaded
// first so the tool works without exported variables.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Staff: StaffConfig{
			CSVPath: "data/Staff Tracker.csv",
		},
		Cameras: CamerasConfig{
			PPK1Tab: "PPK1",
			PPK2Tab: "PPK2",
		},
		Doors: DoorsConfig{
			TabPPK1:      "PPK1",
			TabPPK2:      "PPK2",
			TabExpansion: "Expansion",
		},
		Cache: CacheConfig{
			Driver: "memory",
			TTL:    5 * time.Minute,
			Redis: RedisConfig{
				Addr:     "localhost:6379",
				PoolSize: 10,
			},
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "console",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Cache.Driver != "memory" && c.Cache.Driver != "redis" {
		return fmt.Errorf("invalid cache driver: %s", c.Cache.Driver)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache ttl must be positive: %s", c.Cache.TTL)
	}
	return nil
}

// StaffSource returns the staff CSV path, failing hard when unset.
func (c *Config) StaffSource() (string, error) {
	if c.Staff.CSVPath == "" {
		return "", fmt.Errorf("staff csv_path (STAFF_TRACKER_CSV): %w", ErrMissingValue)
	}
	return c.Staff.CSVPath, nil
}

// CamerasSource validates the camera sheet descriptor.
func (c *Config) CamerasSource() error {
	if c.Cameras.PPK1SheetID == "" {
		return fmt.Errorf("cameras ppk1_sheet_id (CAM_PPK1_SHEET_ID): %w", ErrMissingValue)
	}
	return nil
}

// DoorsSource validates the doors sheet descriptor.
func (c *Config) DoorsSource() error {
	if c.Doors.SheetID == "" {
		return fmt.Errorf("doors sheet_id (DOORS_SHEET_ID): %w", ErrMissingValue)
	}
	return nil
}

// CredentialsFile returns the Google credentials path, failing hard when unset.
func (c *Config) CredentialsFile() (string, error) {
	if c.Google.CredentialsFile == "" {
		return "", fmt.Errorf("google credentials_file (GOOGLE_APPLICATION_CREDENTIALS): %w", ErrMissingValue)
	}
	return c.Google.CredentialsFile, nil
}

// applyEnvOverrides applies environment variable overrides to config.
// The variable names match the original deployment's .env layout.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("STAFF_TRACKER_CSV"); v != "" {
		cfg.Staff.CSVPath = v
	}

	if v := os.Getenv("CAM_PPK1_SHEET_ID"); v != "" {
		cfg.Cameras.PPK1SheetID = v
	}
	if v := os.Getenv("CAM_PPK1_SHEET_TAB"); v != "" {
		cfg.Cameras.PPK1Tab = v
	}
	if v := os.Getenv("CAM_PPK2_SHEET_ID"); v != "" {
		cfg.Cameras.PPK2SheetID = v
	}
	if v := os.Getenv("CAM_PPK2_SHEET_TAB"); v != "" {
		cfg.Cameras.PPK2Tab = v
	}

	if v := os.Getenv("DOORS_SHEET_ID"); v != "" {
		cfg.Doors.SheetID = v
	}
	if v := os.Getenv("DOORS_TAB_PPK1"); v != "" {
		cfg.Doors.TabPPK1 = v
	}
	if v := os.Getenv("DOORS_TAB_PPK2"); v != "" {
		cfg.Doors.TabPPK2 = v
	}
	if v := os.Getenv("DOORS_TAB_EXPANSION"); v != "" {
		cfg.Doors.TabExpansion = v
	}

	if v := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); v != "" {
		cfg.Google.CredentialsFile = v
	}

	if v := os.Getenv("CACHE_DRIVER"); v != "" {
		cfg.Cache.Driver = v
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.TTL = d
		}
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.Driver = "redis"
		cfg.Cache.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Cache.Redis.Password = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
}
