// Package bot runs the trade loop: it executes the current strategy, reacts
// to the settled status of its protective order, and decides the strategy
// and quantity of the next run.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/ocobot/internal/action"
	"github.com/alanyoungcy/ocobot/internal/domain"
	"github.com/alanyoungcy/ocobot/internal/strategy"
)

// Bot is the trade loop. It is not safe for concurrent use; Start owns all
// counters while it runs.
type Bot struct {
	supplier        strategy.Supplier
	strategyChanges *action.Limit
	expiration      *action.Limit
	observer        Observer
	logger          *slog.Logger

	runs    *action.Counter
	filled  *action.Counter
	expired *action.Counter
	streak  *action.Counter

	now   func() time.Time
	newID func() string
}

// New creates a Bot. strategyChanges fires, with reset, once the number of
// consecutive strategy changes reaches its limit; expiration fires once the
// lifetime number of expired runs reaches its limit. A nil observer is
// replaced with NopObserver.
func New(supplier strategy.Supplier, strategyChanges, expiration *action.Limit, observer Observer, logger *slog.Logger) *Bot {
	if observer == nil {
		observer = NopObserver{}
	}
	return &Bot{
		supplier:        supplier,
		strategyChanges: strategyChanges,
		expiration:      expiration,
		observer:        observer,
		logger:          logger.With(slog.String("component", "bot")),
		runs:            action.NewCounter(1),
		filled:          action.NewCounter(0),
		expired:         action.NewCounter(0),
		streak:          action.NewCounter(0),
		now:             time.Now,
		newID:           uuid.NewString,
	}
}

// Start runs the loop until an action returns an error (action.ErrExit for
// the breaker), a strategy fails, a run ends in a status other than FILLED
// or EXPIRED, or ctx is cancelled.
func (b *Bot) Start(ctx context.Context, quantity *Quantity) (err error) {
	defer func() { b.observer.OnStop(ctx, err) }()

	current := b.supplier.NextStrategy()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		b.logger.DebugContext(ctx, "run",
			slog.String("run", b.runs.String()),
			slog.String("strategy", current.String()),
		)
		b.logger.DebugContext(ctx, "orders",
			slog.String("filled", b.filled.String()),
			slog.String("expired", b.expired.String()),
		)

		started := b.now()
		qty := quantity.Value()
		status, err := current.Run(ctx, qty)
		if err != nil {
			return fmt.Errorf("bot: run %d: %w", b.runs.Value(), err)
		}
		number := b.runs.Value()
		b.runs.Inc()

		switch status {
		case domain.StatusFilled:
			b.filled.Inc()
			b.streak.Reset()
			quantity.Reset()
			b.report(ctx, number, current, qty, status, started)

		case domain.StatusExpired:
			b.expired.Inc()
			b.report(ctx, number, current, qty, status, started)
			if err := b.expiration.Run(ctx, b.expired); err != nil {
				return err
			}
			next := b.supplier.NextStrategy()
			if next.Kind() != current.Kind() {
				b.streak.Inc()
				if b.strategyChanges.IsReached(b.streak) {
					b.observer.OnCooldown(ctx, b.streak.Value())
				}
				if err := b.strategyChanges.ResetAndRun(ctx, b.streak); err != nil {
					return err
				}
			}
			current = next
			quantity.Double()

		default:
			b.logger.ErrorContext(ctx, "unknown order status, stopping",
				slog.Int64("run", number),
				slog.String("status", status),
			)
			return fmt.Errorf("bot: run %d: %w: %s", number, domain.ErrUnknownStatus, status)
		}
	}
}

func (b *Bot) report(ctx context.Context, number int64, s strategy.Strategy, qty decimal.Decimal, status string, started time.Time) {
	b.observer.OnRun(ctx, RunResult{
		ID:         b.newID(),
		Number:     number,
		Strategy:   s.Kind(),
		Quantity:   qty,
		Status:     status,
		Filled:     b.filled.Value(),
		Expired:    b.expired.Value(),
		Streak:     b.streak.Value(),
		StartedAt:  started,
		FinishedAt: b.now(),
	})
}
