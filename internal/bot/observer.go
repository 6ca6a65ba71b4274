package bot

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/ocobot/internal/strategy"
)

// RunResult describes one finished run of the loop.
type RunResult struct {
	ID         string
	Number     int64
	Strategy   strategy.Kind
	Quantity   decimal.Decimal
	Status     string
	Filled     int64
	Expired    int64
	Streak     int64
	StartedAt  time.Time
	FinishedAt time.Time
}

// Observer is told about the progress of the loop. Implementations handle
// their own failures; nothing they do changes the loop.
type Observer interface {
	OnRun(ctx context.Context, result RunResult)
	OnCooldown(ctx context.Context, streak int64)
	OnStop(ctx context.Context, err error)
}

// MultiObserver fans events out to several observers in order.
type MultiObserver []Observer

func (m MultiObserver) OnRun(ctx context.Context, result RunResult) {
	for _, o := range m {
		o.OnRun(ctx, result)
	}
}

func (m MultiObserver) OnCooldown(ctx context.Context, streak int64) {
	for _, o := range m {
		o.OnCooldown(ctx, streak)
	}
}

func (m MultiObserver) OnStop(ctx context.Context, err error) {
	for _, o := range m {
		o.OnStop(ctx, err)
	}
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) OnRun(context.Context, RunResult) {}

func (NopObserver) OnCooldown(context.Context, int64) {}

func (NopObserver) OnStop(context.Context, error) {}
