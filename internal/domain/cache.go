package domain

import (
	"context"
	"time"
)

// StateCache keeps the latest bot snapshot for readers outside the loop.
type StateCache interface {
	SetState(ctx context.Context, state BotState) error
	GetState(ctx context.Context, symbol string) (BotState, error)
}

// LockManager provides distributed locking. The lost channel is closed when
// the holder can no longer keep the lock alive.
type LockManager interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (unlock func(), lost <-chan struct{}, err error)
}

// SignalBus provides pub/sub between the bot and its observers.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}

// RateLimiter decides whether a keyed request fits in a sliding window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
