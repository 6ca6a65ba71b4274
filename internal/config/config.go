// Package config defines the configuration of the OCO trading bot and the
// validation applied before anything is wired.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by OCOBOT_* environment variables.
type Config struct {
	Binance  BinanceConfig  `toml:"binance"`
	Trade    TradeConfig    `toml:"trade"`
	Limits   LimitsConfig   `toml:"limits"`
	Supabase SupabaseConfig `toml:"supabase"`
	Redis    RedisConfig    `toml:"redis"`
	S3       S3Config       `toml:"s3"`
	Server   ServerConfig   `toml:"server"`
	Notify   NotifyConfig   `toml:"notify"`
	Archive  ArchiveConfig  `toml:"archive"`
	Mode     string         `toml:"mode"`
	LogLevel string         `toml:"log_level"`
}

// BinanceConfig holds exchange credentials and transport settings. The API
// secret comes either in clear from api_secret or from an encrypted file.
type BinanceConfig struct {
	APIKey              string   `toml:"api_key"`
	APISecret           string   `toml:"api_secret"`
	EncryptedSecretPath string   `toml:"encrypted_secret_path"`
	SecretPassword      string   `toml:"secret_password"`
	BaseURL             string   `toml:"base_url"`
	Account             string   `toml:"account"` // spot | margin
	RecvWindow          duration `toml:"recv_window"`
	Timeout             duration `toml:"timeout"`
}

// TradeConfig holds the pricing and polling parameters of the trade cycle.
type TradeConfig struct {
	Symbol string `toml:"symbol"`

	// OCO leg prices are the market fill price times these coefficients.
	SellRaise    decimalValue `toml:"sell_raise"`
	SellDecrease decimalValue `toml:"sell_decrease"`
	BuyRaise     decimalValue `toml:"buy_raise"`
	BuyDecrease  decimalValue `toml:"buy_decrease"`

	PriceDigits     int          `toml:"price_digits"`
	PollInterval    duration     `toml:"poll_interval"`
	PollMaxAttempts int          `toml:"poll_max_attempts"` // 0 polls until the order settles
	InitialQuantity decimalValue `toml:"initial_quantity"`
	Strategies      []string     `toml:"strategies"`
}

// LimitsConfig holds the thresholds of the two breakers in the loop.
type LimitsConfig struct {
	StrategyChanges  int      `toml:"strategy_changes"`
	Cooldown         duration `toml:"cooldown"`
	Expirations      int      `toml:"expirations"`
	ExpirationAction string   `toml:"expiration_action"` // exit | sleep | noop
	ExpirationSleep  duration `toml:"expiration_sleep"`
}

// SupabaseConfig holds PostgreSQL / Supabase connection parameters.
type SupabaseConfig struct {
	Enabled       bool   `toml:"enabled"`
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
	Enabled    bool     `toml:"enabled"`
	Addr       string   `toml:"addr"`
	Password   string   `toml:"password"`
	DB         int      `toml:"db"`
	PoolSize   int      `toml:"pool_size"`
	MaxRetries int      `toml:"max_retries"`
	TLSEnabled bool     `toml:"tls_enabled"`
	LockTTL    duration `toml:"lock_ttl"`
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

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	APIKey      string   `toml:"api_key"`
	RateLimit   int      `toml:"rate_limit"` // requests per client per window, 0 disables
	RateWindow  duration `toml:"rate_window"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// ArchiveConfig controls the cold-storage export of old history.
type ArchiveConfig struct {
	RetentionDays int `toml:"retention_days"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
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

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Binance: BinanceConfig{
			BaseURL:    "https://api.binance.com",
			Account:    "spot",
			RecvWindow: duration{5 * time.Second},
			Timeout:    duration{10 * time.Second},
		},
		Trade: TradeConfig{
			Symbol:          "BTCUSDT",
			SellRaise:       mustDecimal("1.0005"),
			SellDecrease:    mustDecimal("0.9995"),
			BuyRaise:        mustDecimal("1.0005"),
			BuyDecrease:     mustDecimal("0.9995"),
			PriceDigits:     2,
			PollInterval:    duration{2 * time.Second},
			PollMaxAttempts: 0,
			InitialQuantity: mustDecimal("0.00088"),
			Strategies:      []string{"buy", "sell"},
		},
		Limits: LimitsConfig{
			StrategyChanges:  5,
			Cooldown:         duration{10 * time.Minute},
			Expirations:      1,
			ExpirationAction: "exit",
			ExpirationSleep:  duration{10 * time.Minute},
		},
		Supabase: SupabaseConfig{
			Enabled:       false,
			Host:          "localhost",
			Port:          5432,
			Database:      "postgres",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  5,
			PoolMinConns:  1,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			PoolSize:   10,
			MaxRetries: 3,
			LockTTL:    duration{30 * time.Second},
		},
		S3: S3Config{
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "ocobot-archive",
			ForcePathStyle: true,
		},
		Server: ServerConfig{
			Enabled:     true,
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000"},
			RateLimit:   120,
			RateWindow:  duration{time.Minute},
		},
		Notify: NotifyConfig{
			Events: []string{"bot_exit", "bot_fatal", "cooldown"},
		},
		Archive: ArchiveConfig{
			RetentionDays: 90,
		},
		Mode:     "trade",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"trade":   true,
	"archive": true,
	"server":  true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validAccounts = map[string]bool{"spot": true, "margin": true}

var validExpirationActions = map[string]bool{"exit": true, "sleep": true, "noop": true}

var validStrategies = map[string]bool{"buy": true, "sell": true}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	mode := strings.ToLower(c.Mode)
	if !validModes[mode] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: trade, archive, server)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if mode == "trade" {
		errs = append(errs, c.validateTrading()...)
	}

	// Postgres backs the archive and the history endpoints.
	if c.Supabase.Enabled || mode == "archive" {
		errs = append(errs, c.validateSupabase()...)
	}
	if mode == "archive" {
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty")
		}
		if c.Archive.RetentionDays < 1 {
			errs = append(errs, "archive: retention_days must be >= 1")
		}
	}

	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
		if c.Redis.LockTTL.Duration < time.Second {
			errs = append(errs, "redis: lock_ttl must be at least 1s")
		}
	}

	if c.Server.Enabled || mode == "server" {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
		if c.Server.RateLimit < 0 {
			errs = append(errs, "server: rate_limit must be >= 0")
		}
		if c.Server.RateLimit > 0 && c.Server.RateWindow.Duration <= 0 {
			errs = append(errs, "server: rate_window must be positive when rate_limit is set")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func (c *Config) validateTrading() []string {
	var errs []string

	b := c.Binance
	if b.APIKey == "" {
		errs = append(errs, "binance: api_key must be set for mode trade")
	}
	if b.APISecret == "" && b.EncryptedSecretPath == "" {
		errs = append(errs, "binance: either api_secret or encrypted_secret_path must be set for mode trade")
	}
	if b.EncryptedSecretPath != "" && b.SecretPassword == "" {
		errs = append(errs, "binance: secret_password is required when encrypted_secret_path is set")
	}
	if !validAccounts[strings.ToLower(b.Account)] {
		errs = append(errs, fmt.Sprintf("binance: unknown account %q (valid: spot, margin)", b.Account))
	}
	if b.Timeout.Duration <= 0 {
		errs = append(errs, "binance: timeout must be > 0")
	}

	t := c.Trade
	if t.Symbol == "" {
		errs = append(errs, "trade: symbol must not be empty")
	}
	for name, v := range map[string]decimalValue{
		"sell_raise":    t.SellRaise,
		"sell_decrease": t.SellDecrease,
		"buy_raise":     t.BuyRaise,
		"buy_decrease":  t.BuyDecrease,
	} {
		if !v.IsPositive() {
			errs = append(errs, fmt.Sprintf("trade: %s must be > 0", name))
		}
	}
	// A protective pair needs one leg above and one below the fill.
	if t.SellRaise.LessThanOrEqual(t.SellDecrease.Decimal) {
		errs = append(errs, "trade: sell_raise must be greater than sell_decrease")
	}
	if t.BuyRaise.LessThanOrEqual(t.BuyDecrease.Decimal) {
		errs = append(errs, "trade: buy_raise must be greater than buy_decrease")
	}
	if t.PriceDigits < 0 || t.PriceDigits > 8 {
		errs = append(errs, fmt.Sprintf("trade: price_digits must be 0-8, got %d", t.PriceDigits))
	}
	if t.PollInterval.Duration <= 0 {
		errs = append(errs, "trade: poll_interval must be > 0")
	}
	if t.PollMaxAttempts < 0 {
		errs = append(errs, "trade: poll_max_attempts must be >= 0")
	}
	if !t.InitialQuantity.IsPositive() {
		errs = append(errs, "trade: initial_quantity must be > 0")
	}
	if len(t.Strategies) == 0 {
		errs = append(errs, "trade: strategies must list at least one of buy, sell")
	}
	for _, s := range t.Strategies {
		if !validStrategies[s] {
			errs = append(errs, fmt.Sprintf("trade: unknown strategy %q (valid: buy, sell)", s))
		}
	}

	l := c.Limits
	if l.StrategyChanges < 1 {
		errs = append(errs, "limits: strategy_changes must be >= 1")
	}
	if l.Cooldown.Duration < 0 {
		errs = append(errs, "limits: cooldown must not be negative")
	}
	if l.Expirations < 1 {
		errs = append(errs, "limits: expirations must be >= 1")
	}
	if !validExpirationActions[strings.ToLower(l.ExpirationAction)] {
		errs = append(errs, fmt.Sprintf("limits: unknown expiration_action %q (valid: exit, sleep, noop)", l.ExpirationAction))
	}
	return errs
}

func (c *Config) validateSupabase() []string {
	var errs []string
	if strings.TrimSpace(c.Supabase.DSN) == "" {
		if c.Supabase.Host == "" {
			errs = append(errs, "supabase: host must not be empty (or set supabase.dsn)")
		}
		if c.Supabase.Port <= 0 || c.Supabase.Port > 65535 {
			errs = append(errs, fmt.Sprintf("supabase: port must be 1-65535, got %d", c.Supabase.Port))
		}
		if c.Supabase.Database == "" {
			errs = append(errs, "supabase: database must not be empty")
		}
	}
	if c.Supabase.PoolMaxConns < 1 {
		errs = append(errs, "supabase: pool_max_conns must be >= 1")
	}
	if c.Supabase.PoolMinConns < 0 || c.Supabase.PoolMinConns > c.Supabase.PoolMaxConns {
		errs = append(errs, "supabase: pool_min_conns must be between 0 and pool_max_conns")
	}
	return errs
}
