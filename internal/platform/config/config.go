// Package config loads application configuration from environment variables.
// All variables use the RECORDS_ prefix.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/p-n-ai/pai-records/internal/grading"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Grading  GradingConfig
	Schedule ScheduleConfig
	Seed     SeedConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
	Host string
}

// DatabaseConfig holds PostgreSQL connection settings. An empty URL disables the
// database-backed source.
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// CacheConfig holds Dragonfly/Redis connection settings. An empty URL keeps week
// navigation state in memory.
type CacheConfig struct {
	URL        string
	NavTTLDays int
}

// GradingConfig selects the grading policy.
type GradingConfig struct {
	PolicyPath string
	// ApprovalThreshold overrides the policy threshold when set. Zero is a valid
	// override; nil keeps the policy value.
	ApprovalThreshold *float64
}

// ScheduleConfig holds week-view settings.
type ScheduleConfig struct {
	// Location is the IANA zone used for "today" and week boundaries.
	Location string
}

// TimeLocation resolves Location.
func (c ScheduleConfig) TimeLocation() (*time.Location, error) {
	return time.LoadLocation(c.Location)
}

// SeedConfig points at a directory of seed files used when no database is configured.
type SeedConfig struct {
	Dir string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level     string
	Format    string
	AddSource bool
}

// SlogLevel parses Level. Unknown values fall back to info; Validate rejects them.
func (c LogConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Load reads configuration from environment variables with RECORDS_ prefix.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("RECORDS_SERVER_PORT", 8080),
			Host: envStr("RECORDS_SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			URL:      envStr("RECORDS_DATABASE_URL", ""),
			MaxConns: envInt("RECORDS_DATABASE_MAX_CONNS", 10),
			MinConns: envInt("RECORDS_DATABASE_MIN_CONNS", 2),
		},
		Cache: CacheConfig{
			URL:        envStr("RECORDS_CACHE_URL", ""),
			NavTTLDays: envInt("RECORDS_CACHE_NAV_TTL_DAYS", 7),
		},
		Grading: GradingConfig{
			PolicyPath:        envStr("RECORDS_POLICY_PATH", ""),
			ApprovalThreshold: envOptFloat("RECORDS_APPROVAL_THRESHOLD"),
		},
		Schedule: ScheduleConfig{
			Location: envStr("RECORDS_SCHEDULE_LOCATION", "Local"),
		},
		Seed: SeedConfig{
			Dir: envStr("RECORDS_SEED_DIR", ""),
		},
		Log: LogConfig{
			Level:     envStr("RECORDS_LOG_LEVEL", "info"),
			Format:    envStr("RECORDS_LOG_FORMAT", "json"),
			AddSource: envBool("RECORDS_LOG_ADD_SOURCE", false),
		},
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("RECORDS_SERVER_PORT must be a valid port, got %d", c.Server.Port)
	}

	if c.Database.URL != "" && c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("RECORDS_DATABASE_MIN_CONNS (%d) exceeds RECORDS_DATABASE_MAX_CONNS (%d)",
			c.Database.MinConns, c.Database.MaxConns)
	}

	if t := c.Grading.ApprovalThreshold; t != nil && (*t < grading.MinScore || *t > grading.MaxScore) {
		return fmt.Errorf("RECORDS_APPROVAL_THRESHOLD must be within [%v, %v], got %v",
			grading.MinScore, grading.MaxScore, *t)
	}

	if _, err := c.Schedule.TimeLocation(); err != nil {
		return fmt.Errorf("RECORDS_SCHEDULE_LOCATION: %w", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return fmt.Errorf("RECORDS_LOG_LEVEL: %w", err)
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("RECORDS_LOG_FORMAT must be 'json' or 'text', got %q", c.Log.Format)
	}

	return nil
}

// Policy resolves the grading policy: the policy file when configured, then the
// threshold override.
func (c *Config) Policy() (grading.Policy, error) {
	policy := grading.DefaultPolicy()
	if c.Grading.PolicyPath != "" {
		p, err := grading.LoadPolicy(c.Grading.PolicyPath)
		if err != nil {
			return grading.Policy{}, err
		}
		policy = p
	}
	if c.Grading.ApprovalThreshold != nil {
		policy.ApprovalThreshold = *c.Grading.ApprovalThreshold
	}
	return policy, policy.Validate()
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

// envOptFloat returns nil when key is unset or not a number.
func envOptFloat(key string) *float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return &f
		}
	}
	return nil
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}
