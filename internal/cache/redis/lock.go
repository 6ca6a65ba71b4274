package redis

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/ocobot/internal/domain"
)

// unlockLua deletes a lock key only if its value matches the caller's token,
// so one holder never releases another holder's lock.
const unlockLua = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
end
return 0
`

// refreshLua extends the TTL of a lock key only while the caller still owns it.
const refreshLua = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return 0
`

// LockManager implements domain.LockManager using SETNX with a TTL. A held
// lock is refreshed every third of its TTL until it is released, so a bot
// that runs for days keeps its lock while a crashed one loses it quickly.
type LockManager struct {
	rdb       *redis.Client
	unlockSc  *redis.Script
	refreshSc *redis.Script
	logger    *slog.Logger
}

// NewLockManager creates a LockManager backed by the given Client.
func NewLockManager(c *Client, logger *slog.Logger) *LockManager {
	return &LockManager{
		rdb:       c.rdb,
		unlockSc:  redis.NewScript(unlockLua),
		refreshSc: redis.NewScript(refreshLua),
		logger:    logger.With(slog.String("component", "redis_lock")),
	}
}

func lockKey(key string) string {
	return "lock:" + key
}

// Acquire obtains the lock for key. The returned unlock function stops the
// refresher and releases the lock; it is safe to call more than once. The
// lost channel is closed if the lock is taken over or cannot be refreshed
// for a full TTL.
//
// It returns domain.ErrLockHeld if another holder owns the lock.
func (lm *LockManager) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), <-chan struct{}, error) {
	token := uuid.NewString()
	lk := lockKey(key)

	ok, err := lm.rdb.SetNX(ctx, lk, token, ttl).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("redis: acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, nil, fmt.Errorf("redis: acquire lock %s: %w", key, domain.ErrLockHeld)
	}

	refresh := func(ctx context.Context) (bool, error) {
		n, err := lm.refreshSc.Run(ctx, lm.rdb, []string{lk}, token, ttl.Milliseconds()).Int64()
		return n == 1, err
	}

	refreshCtx, stop := context.WithCancel(context.Background())
	done := make(chan struct{})
	lost := make(chan struct{})
	go func() {
		defer close(done)
		if keepAlive(refreshCtx, refresh, ttl, lm.logger.With(slog.String("key", key))) {
			close(lost)
		}
	}()

	var once sync.Once
	unlock := func() {
		once.Do(func() {
			stop()
			<-done

			// The caller's context may already be cancelled at shutdown.
			unlockCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = lm.unlockSc.Run(unlockCtx, lm.rdb, []string{lk}, token).Err()
		})
	}
	return unlock, lost, nil
}

// keepAlive calls refresh every ttl/3 until ctx is done. It reports true when
// the lock is gone: refresh says another holder owns it, or refreshes have
// failed for at least ttl so the key has expired.
func keepAlive(ctx context.Context, refresh func(context.Context) (bool, error), ttl time.Duration, logger *slog.Logger) bool {
	interval := ttl / 3
	if interval <= 0 {
		return false
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastRefresh := time.Now()
	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			held, err := refresh(ctx)
			switch {
			case err != nil:
				if ctx.Err() != nil {
					return false
				}
				logger.WarnContext(ctx, "lock refresh failed", slog.String("error", err.Error()))
				if time.Since(lastRefresh) >= ttl {
					logger.ErrorContext(ctx, "lock expired while refresh kept failing")
					return true
				}
			case !held:
				logger.ErrorContext(ctx, "lock lost to another holder")
				return true
			default:
				lastRefresh = time.Now()
			}
		}
	}
}

// Compile-time interface check.
var _ domain.LockManager = (*LockManager)(nil)
