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
// built-in defaults, applies OCOBOT_* environment variable overrides, and
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
	cfg.normalize()

	return &cfg, nil
}

// normalize lowercases the enumerated settings so that later lookups match
// what Validate accepts.
func (c *Config) normalize() {
	lower := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

	c.Mode = lower(c.Mode)
	c.LogLevel = lower(c.LogLevel)
	c.Binance.Account = lower(c.Binance.Account)
	c.Limits.ExpirationAction = lower(c.Limits.ExpirationAction)
	for i, s := range c.Trade.Strategies {
		c.Trade.Strategies[i] = lower(s)
	}
}

// applyEnvOverrides reads well-known OCOBOT_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Binance ──
	setStr(&cfg.Binance.APIKey, "OCOBOT_BINANCE_API_KEY")
	setStr(&cfg.Binance.APISecret, "OCOBOT_BINANCE_API_SECRET")
	setStr(&cfg.Binance.EncryptedSecretPath, "OCOBOT_BINANCE_ENCRYPTED_SECRET_PATH")
	setStr(&cfg.Binance.SecretPassword, "OCOBOT_BINANCE_SECRET_PASSWORD")
	setStr(&cfg.Binance.BaseURL, "OCOBOT_BINANCE_BASE_URL")
	setStr(&cfg.Binance.Account, "OCOBOT_BINANCE_ACCOUNT")
	setDuration(&cfg.Binance.RecvWindow, "OCOBOT_BINANCE_RECV_WINDOW")
	setDuration(&cfg.Binance.Timeout, "OCOBOT_BINANCE_TIMEOUT")

	// ── Trade ──
	setStr(&cfg.Trade.Symbol, "OCOBOT_TRADE_SYMBOL")
	setDecimal(&cfg.Trade.SellRaise, "OCOBOT_TRADE_SELL_RAISE")
	setDecimal(&cfg.Trade.SellDecrease, "OCOBOT_TRADE_SELL_DECREASE")
	setDecimal(&cfg.Trade.BuyRaise, "OCOBOT_TRADE_BUY_RAISE")
	setDecimal(&cfg.Trade.BuyDecrease, "OCOBOT_TRADE_BUY_DECREASE")
	setInt(&cfg.Trade.PriceDigits, "OCOBOT_TRADE_PRICE_DIGITS")
	setDuration(&cfg.Trade.PollInterval, "OCOBOT_TRADE_POLL_INTERVAL")
	setInt(&cfg.Trade.PollMaxAttempts, "OCOBOT_TRADE_POLL_MAX_ATTEMPTS")
	setDecimal(&cfg.Trade.InitialQuantity, "OCOBOT_TRADE_INITIAL_QUANTITY")
	setStringSlice(&cfg.Trade.Strategies, "OCOBOT_TRADE_STRATEGIES")

	// ── Limits ──
	setInt(&cfg.Limits.StrategyChanges, "OCOBOT_LIMITS_STRATEGY_CHANGES")
	setDuration(&cfg.Limits.Cooldown, "OCOBOT_LIMITS_COOLDOWN")
	setInt(&cfg.Limits.Expirations, "OCOBOT_LIMITS_EXPIRATIONS")
	setStr(&cfg.Limits.ExpirationAction, "OCOBOT_LIMITS_EXPIRATION_ACTION")
	setDuration(&cfg.Limits.ExpirationSleep, "OCOBOT_LIMITS_EXPIRATION_SLEEP")

	// ── Supabase ──
	setBool(&cfg.Supabase.Enabled, "OCOBOT_SUPABASE_ENABLED")
	setStr(&cfg.Supabase.DSN, "OCOBOT_SUPABASE_DSN")
	setStr(&cfg.Supabase.DSN, "OCOBOT_SUPABASE_URL") // compatibility alias
	setStr(&cfg.Supabase.Host, "OCOBOT_SUPABASE_HOST")
	setInt(&cfg.Supabase.Port, "OCOBOT_SUPABASE_PORT")
	setStr(&cfg.Supabase.Database, "OCOBOT_SUPABASE_DATABASE")
	setStr(&cfg.Supabase.User, "OCOBOT_SUPABASE_USER")
	setStr(&cfg.Supabase.Password, "OCOBOT_SUPABASE_PASSWORD")
	setStr(&cfg.Supabase.SSLMode, "OCOBOT_SUPABASE_SSL_MODE")
	setInt(&cfg.Supabase.PoolMaxConns, "OCOBOT_SUPABASE_POOL_MAX_CONNS")
	setInt(&cfg.Supabase.PoolMinConns, "OCOBOT_SUPABASE_POOL_MIN_CONNS")
	setBool(&cfg.Supabase.RunMigrations, "OCOBOT_SUPABASE_RUN_MIGRATIONS")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "OCOBOT_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "OCOBOT_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "OCOBOT_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "OCOBOT_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "OCOBOT_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "OCOBOT_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "OCOBOT_REDIS_TLS_ENABLED")
	setDuration(&cfg.Redis.LockTTL, "OCOBOT_REDIS_LOCK_TTL")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "OCOBOT_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "OCOBOT_S3_REGION")
	setStr(&cfg.S3.Bucket, "OCOBOT_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "OCOBOT_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "OCOBOT_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "OCOBOT_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "OCOBOT_S3_FORCE_PATH_STYLE")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "OCOBOT_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "OCOBOT_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "OCOBOT_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "OCOBOT_SERVER_API_KEY")
	setInt(&cfg.Server.RateLimit, "OCOBOT_SERVER_RATE_LIMIT")
	setDuration(&cfg.Server.RateWindow, "OCOBOT_SERVER_RATE_WINDOW")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "OCOBOT_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "OCOBOT_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "OCOBOT_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "OCOBOT_NOTIFY_EVENTS")

	// ── Archive ──
	setInt(&cfg.Archive.RetentionDays, "OCOBOT_ARCHIVE_RETENTION_DAYS")

	// ── Top-level ──
	setStr(&cfg.Mode, "OCOBOT_MODE")
	setStr(&cfg.LogLevel, "OCOBOT_LOG_LEVEL")
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

func setDecimal(dst *decimalValue, key string) {
	if v := os.Getenv(key); v != "" {
		var d decimalValue
		if err := d.UnmarshalText([]byte(v)); err == nil {
			*dst = d
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
