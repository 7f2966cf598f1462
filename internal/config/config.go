// Package config defines the top-level configuration for the arbitrage
// finder and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by ARBFINDER_* environment variables.
type Config struct {
	OddsAPI  OddsAPIConfig  `toml:"oddsapi"`
	Postgres PostgresConfig `toml:"postgres"`
	Redis    RedisConfig    `toml:"redis"`
	S3       S3Config       `toml:"s3"`
	Scan     ScanConfig     `toml:"scan"`
	Server   ServerConfig   `toml:"server"`
	Notify   NotifyConfig   `toml:"notify"`
	Mode     string         `toml:"mode"`
	LogLevel string         `toml:"log_level"`
}

// OddsAPIConfig holds The Odds API endpoint and credentials.
type OddsAPIConfig struct {
	BaseURL string `toml:"base_url"`
	// ApiKey may be empty here; a key stored via the settings API takes
	// precedence at scan time.
	ApiKey     string `toml:"api_key"`
	Regions    string `toml:"regions"`
	Markets    string `toml:"markets"`
	OddsFormat string `toml:"odds_format"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// ScanConfig holds aggregation and detection parameters.
type ScanConfig struct {
	// EventType filters scanned games: "all", "live" or "pregame".
	EventType string `toml:"event_type"`
	// Sort orders the opportunity list: "profit", "sport" or "time".
	Sort string `toml:"sort"`
	// PaceDelay is the pause between per-sport provider requests when the
	// Redis limiter is unavailable. Zero disables pacing.
	PaceDelay duration `toml:"pace_delay"`
	// PaceLimit/PaceWindow bound provider requests via the distributed
	// limiter.
	PaceLimit  int      `toml:"pace_limit"`
	PaceWindow duration `toml:"pace_window"`
	// CacheTTL is how long fetched per-sport odds stay valid in Redis.
	CacheTTL duration `toml:"cache_ttl"`
	// Interval is the watch-mode rescan period.
	Interval duration `toml:"interval"`
	// HistoryLimit caps opportunity history returned by the API.
	HistoryLimit int `toml:"history_limit"`
	// ArchiveRetentionDays is how long opportunity history stays in
	// Postgres before being shipped to S3.
	ArchiveRetentionDays int `toml:"archive_retention_days"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	// ApiToken, when set, requires Bearer auth on mutating endpoints.
	ApiToken string `toml:"api_token"`
	// RateLimit/RateWindow bound requests per client IP. Zero disables.
	RateLimit  int      `toml:"rate_limit"`
	RateWindow duration `toml:"rate_window"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
	// MinProfitPct suppresses alerts for opportunities below this margin.
	MinProfitPct float64 `toml:"min_profit_pct"`
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		OddsAPI: OddsAPIConfig{
			BaseURL:    "https://api.the-odds-api.com/v4",
			Regions:    "us",
			Markets:    "h2h,spreads,totals",
			OddsFormat: "american",
		},
		Postgres: PostgresConfig{
			DSN:           "",
			Host:          "localhost",
			Port:          5432,
			Database:      "arbfinder",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		S3: S3Config{
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "arbfinder-data",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		Scan: ScanConfig{
			EventType:            "all",
			Sort:                 "profit",
			PaceDelay:            duration{50 * time.Millisecond},
			PaceLimit:            20,
			PaceWindow:           duration{time.Second},
			CacheTTL:             duration{30 * time.Second},
			Interval:             duration{5 * time.Minute},
			HistoryLimit:         200,
			ArchiveRetentionDays: 90,
		},
		Server: ServerConfig{
			Enabled:     true,
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
			RateLimit:   60,
			RateWindow:  duration{time.Minute},
		},
		Notify: NotifyConfig{
			Events:       []string{"opportunity_found", "scan_failed"},
			MinProfitPct: 1.0,
		},
		Mode:     "server",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"scan":   true,
	"server": true,
	"watch":  true,
	"full":   true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	// Mode
	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: scan, server, watch, full)", c.Mode))
	}

	// LogLevel
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Odds API — an empty key is allowed at startup (it can be stored via
	// the settings API later), but the endpoint must be present.
	if c.OddsAPI.BaseURL == "" {
		errs = append(errs, "oddsapi: base_url must not be empty")
	}
	if c.OddsAPI.Regions == "" {
		errs = append(errs, "oddsapi: regions must not be empty")
	}
	if c.OddsAPI.Markets == "" {
		errs = append(errs, "oddsapi: markets must not be empty")
	}

	// Postgres
	if strings.TrimSpace(c.Postgres.DSN) == "" {
		if c.Postgres.Host == "" {
			errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
		}
		if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
			errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
		}
		if c.Postgres.Database == "" {
			errs = append(errs, "postgres: database must not be empty")
		}
	}
	if c.Postgres.PoolMaxConns < 1 {
		errs = append(errs, "postgres: pool_max_conns must be >= 1")
	}
	if c.Postgres.PoolMinConns < 0 {
		errs = append(errs, "postgres: pool_min_conns must be >= 0")
	}
	if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
		errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
	}

	// Redis
	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}
	if c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	// S3 is optional, but endpoint and bucket must come together.
	if (c.S3.Endpoint == "") != (c.S3.Bucket == "") {
		errs = append(errs, "s3: endpoint and bucket must both be set (or both empty to disable archival)")
	}

	// Scan
	if _, err := parseEventTypeString(c.Scan.EventType); err != nil {
		errs = append(errs, "scan: "+err.Error())
	}
	switch strings.ToLower(c.Scan.Sort) {
	case "profit", "sport", "time":
	default:
		errs = append(errs, fmt.Sprintf("scan: unknown sort %q (valid: profit, sport, time)", c.Scan.Sort))
	}
	if c.Scan.PaceDelay.Duration < 0 {
		errs = append(errs, "scan: pace_delay must not be negative")
	}
	if c.Scan.PaceLimit > 0 && c.Scan.PaceWindow.Duration <= 0 {
		errs = append(errs, "scan: pace_window must be > 0 when pace_limit is set")
	}
	if c.Scan.Interval.Duration <= 0 {
		errs = append(errs, "scan: interval must be > 0")
	}
	if c.Scan.HistoryLimit < 1 {
		errs = append(errs, "scan: history_limit must be >= 1")
	}
	if c.Scan.ArchiveRetentionDays < 1 {
		errs = append(errs, "scan: archive_retention_days must be >= 1")
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
		if c.Server.RateLimit > 0 && c.Server.RateWindow.Duration <= 0 {
			errs = append(errs, "server: rate_window must be > 0 when rate_limit is set")
		}
	}

	// Notify
	if c.Notify.MinProfitPct < 0 {
		errs = append(errs, "notify: min_profit_pct must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// parseEventTypeString validates the scan.event_type value without pulling
// the domain package into config.
func parseEventTypeString(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return "all", nil
	case "live":
		return "live", nil
	case "pregame":
		return "pregame", nil
	}
	return "", fmt.Errorf("unknown event_type %q (valid: all, live, pregame)", s)
}
