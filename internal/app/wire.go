package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	s3blob "github.com/alanyoungcy/ocobot/internal/blob/s3"
	"github.com/alanyoungcy/ocobot/internal/cache/redis"
	"github.com/alanyoungcy/ocobot/internal/config"
	"github.com/alanyoungcy/ocobot/internal/domain"
	"github.com/alanyoungcy/ocobot/internal/notify"
	"github.com/alanyoungcy/ocobot/internal/store/postgres"
)

// Dependencies bundles the optional infrastructure the modes use. A nil field
// means the backing service is not configured.
type Dependencies struct {
	// Stores
	RunStore   domain.RunStore
	OrderStore domain.OrderStore
	AuditStore domain.AuditStore

	// Caches
	StateCache  domain.StateCache
	LockManager domain.LockManager
	SignalBus   domain.SignalBus
	RateLimiter domain.RateLimiter

	// Blob storage
	Archiver domain.Archiver

	// Notifications
	Notifier *notify.Notifier
}

// needsPostgres reports whether mode requires a database even when the
// supabase section is disabled.
func needsPostgres(mode string) bool {
	return mode == "archive"
}

// needsS3 reports whether mode requires object storage.
func needsS3(mode string) bool {
	return mode == "archive"
}

// Wire constructs the concrete dependencies enabled by cfg and returns them
// together with a cleanup function releasing them in reverse order.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	mode := strings.ToLower(cfg.Mode)
	deps := &Dependencies{}

	// --- PostgreSQL ---
	if cfg.Supabase.Enabled || needsPostgres(mode) {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Supabase.DSN,
			Host:     cfg.Supabase.Host,
			Port:     cfg.Supabase.Port,
			Database: cfg.Supabase.Database,
			User:     cfg.Supabase.User,
			Password: cfg.Supabase.Password,
			SSLMode:  cfg.Supabase.SSLMode,
			MaxConns: cfg.Supabase.PoolMaxConns,
			MinConns: cfg.Supabase.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Supabase.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		deps.RunStore = pgClient.Runs()
		deps.OrderStore = pgClient.Orders()
		deps.AuditStore = pgClient.Audit()
	}

	// --- Redis ---
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.StateCache = redis.NewStateCache(redisClient)
		deps.LockManager = redis.NewLockManager(redisClient, logger)
		deps.SignalBus = redis.NewSignalBus(redisClient)
		deps.RateLimiter = redis.NewRateLimiter(redisClient)
	}

	// --- S3 blob storage ---
	if needsS3(mode) {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}

		deps.Archiver = s3blob.NewArchiver(
			s3blob.NewWriter(s3Client),
			s3blob.NewReader(s3Client),
			deps.RunStore,
			deps.OrderStore,
			deps.AuditStore,
		)
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	return deps, cleanup, nil
}
