package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/ocobot/internal/domain"
)

// StateCache implements domain.StateCache by storing the bot snapshot as JSON
// at key "bot:state:{symbol}". The snapshot never expires; it describes the
// last run even after the bot stops.
type StateCache struct {
	rdb *redis.Client
}

// NewStateCache creates a StateCache backed by the given Client.
func NewStateCache(c *Client) *StateCache {
	return &StateCache{rdb: c.rdb}
}

func stateKey(symbol string) string {
	return "bot:state:" + symbol
}

// SetState replaces the snapshot for state.Symbol.
func (sc *StateCache) SetState(ctx context.Context, state domain.BotState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("redis: marshal state %s: %w", state.Symbol, err)
	}
	if err := sc.rdb.Set(ctx, stateKey(state.Symbol), data, 0).Err(); err != nil {
		return fmt.Errorf("redis: set state %s: %w", state.Symbol, err)
	}
	return nil
}

// GetState returns the snapshot for symbol, or domain.ErrNotFound when the bot
// has not completed a run yet.
func (sc *StateCache) GetState(ctx context.Context, symbol string) (domain.BotState, error) {
	data, err := sc.rdb.Get(ctx, stateKey(symbol)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.BotState{}, domain.ErrNotFound
		}
		return domain.BotState{}, fmt.Errorf("redis: get state %s: %w", symbol, err)
	}

	var state domain.BotState
	if err := json.Unmarshal(data, &state); err != nil {
		return domain.BotState{}, fmt.Errorf("redis: unmarshal state %s: %w", symbol, err)
	}
	return state, nil
}

// Compile-time interface check.
var _ domain.StateCache = (*StateCache)(nil)
