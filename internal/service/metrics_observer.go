package service

import (
	"context"

	"github.com/alanyoungcy/ocobot/internal/action"
	"github.com/alanyoungcy/ocobot/internal/bot"
	"github.com/alanyoungcy/ocobot/internal/metrics"
)

// MetricsObserver mirrors loop progress into the Prometheus collectors.
// Selections, when set, is the counter a strategy.CountingSupplier advances.
type MetricsObserver struct {
	Selections *action.Counter
}

var _ bot.Observer = MetricsObserver{}

func (o MetricsObserver) OnRun(_ context.Context, r bot.RunResult) {
	metrics.IncRun(string(r.Strategy), r.Status)
	metrics.SetTotals(r.Filled, r.Expired, r.Streak)
	metrics.SetQuantity(r.Quantity.InexactFloat64())
	if o.Selections != nil {
		metrics.SetSelections(o.Selections.Value())
	}
}

func (MetricsObserver) OnCooldown(context.Context, int64) { metrics.IncCooldown() }

func (MetricsObserver) OnStop(context.Context, error) {}
