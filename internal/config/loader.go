package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies ARBFINDER_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known ARBFINDER_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Odds API ──
	setStr(&cfg.OddsAPI.BaseURL, "ARBFINDER_ODDSAPI_BASE_URL")
	setStr(&cfg.OddsAPI.ApiKey, "ARBFINDER_ODDSAPI_API_KEY")
	setStr(&cfg.OddsAPI.ApiKey, "ODDS_API_KEY") // compatibility alias
	setStr(&cfg.OddsAPI.Regions, "ARBFINDER_ODDSAPI_REGIONS")
	setStr(&cfg.OddsAPI.Markets, "ARBFINDER_ODDSAPI_MARKETS")
	setStr(&cfg.OddsAPI.OddsFormat, "ARBFINDER_ODDSAPI_ODDS_FORMAT")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "ARBFINDER_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "ARBFINDER_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "ARBFINDER_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "ARBFINDER_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "ARBFINDER_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "ARBFINDER_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "ARBFINDER_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "ARBFINDER_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "ARBFINDER_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "ARBFINDER_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "ARBFINDER_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "ARBFINDER_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "ARBFINDER_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "ARBFINDER_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "ARBFINDER_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "ARBFINDER_REDIS_TLS_ENABLED")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "ARBFINDER_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "ARBFINDER_S3_REGION")
	setStr(&cfg.S3.Bucket, "ARBFINDER_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "ARBFINDER_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "ARBFINDER_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "ARBFINDER_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "ARBFINDER_S3_FORCE_PATH_STYLE")

	// ── Scan ──
	setStr(&cfg.Scan.EventType, "ARBFINDER_SCAN_EVENT_TYPE")
	setStr(&cfg.Scan.Sort, "ARBFINDER_SCAN_SORT")
	setDuration(&cfg.Scan.PaceDelay, "ARBFINDER_SCAN_PACE_DELAY")
	setInt(&cfg.Scan.PaceLimit, "ARBFINDER_SCAN_PACE_LIMIT")
	setDuration(&cfg.Scan.PaceWindow, "ARBFINDER_SCAN_PACE_WINDOW")
	setDuration(&cfg.Scan.CacheTTL, "ARBFINDER_SCAN_CACHE_TTL")
	setDuration(&cfg.Scan.Interval, "ARBFINDER_SCAN_INTERVAL")
	setInt(&cfg.Scan.HistoryLimit, "ARBFINDER_SCAN_HISTORY_LIMIT")
	setInt(&cfg.Scan.ArchiveRetentionDays, "ARBFINDER_SCAN_ARCHIVE_RETENTION_DAYS")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "ARBFINDER_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "ARBFINDER_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "ARBFINDER_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.ApiToken, "ARBFINDER_SERVER_API_TOKEN")
	setInt(&cfg.Server.RateLimit, "ARBFINDER_SERVER_RATE_LIMIT")
	setDuration(&cfg.Server.RateWindow, "ARBFINDER_SERVER_RATE_WINDOW")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "ARBFINDER_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "ARBFINDER_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "ARBFINDER_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "ARBFINDER_NOTIFY_EVENTS")
	setFloat64(&cfg.Notify.MinProfitPct, "ARBFINDER_NOTIFY_MIN_PROFIT_PCT")

	// ── Top-level ──
	setStr(&cfg.Mode, "ARBFINDER_MODE")
	setStr(&cfg.LogLevel, "ARBFINDER_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
