package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/alanyoungcy/ocobot/internal/action"
	"github.com/alanyoungcy/ocobot/internal/bot"
	"github.com/alanyoungcy/ocobot/internal/notify"
)

// Alerts tells operators when the breaker trips, the loop dies or a
// cool-down starts.
type Alerts struct {
	symbol   string
	notifier *notify.Notifier
	logger   *slog.Logger
}

var _ bot.Observer = (*Alerts)(nil)

func NewAlerts(symbol string, notifier *notify.Notifier, logger *slog.Logger) *Alerts {
	return &Alerts{
		symbol:   symbol,
		notifier: notifier,
		logger:   logger.With(slog.String("component", "alerts")),
	}
}

func (a *Alerts) OnRun(context.Context, bot.RunResult) {}

func (a *Alerts) OnCooldown(ctx context.Context, streak int64) {
	a.send(ctx, notify.Alert{
		Event:   notify.EventCooldown,
		Title:   "ocobot cool-down",
		Message: "strategy changed too often, pausing",
		Fields:  map[string]string{"symbol": a.symbol, "streak": strconv.FormatInt(streak, 10)},
	})
}

// OnStop alerts on the breaker and on fatal errors. Cancellation is an
// operator shutdown and stays quiet.
func (a *Alerts) OnStop(ctx context.Context, err error) {
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	ctx = context.WithoutCancel(ctx)
	if errors.Is(err, action.ErrExit) {
		a.send(ctx, notify.Alert{
			Event:   notify.EventBotExit,
			Title:   "ocobot stopped",
			Message: "expiration limit reached",
			Fields:  map[string]string{"symbol": a.symbol},
		})
		return
	}
	a.send(ctx, notify.Alert{
		Event:   notify.EventBotFatal,
		Title:   "ocobot failed",
		Message: err.Error(),
		Fields:  map[string]string{"symbol": a.symbol},
	})
}

func (a *Alerts) send(ctx context.Context, alert notify.Alert) {
	if err := a.notifier.Notify(ctx, alert); err != nil {
		a.logger.WarnContext(ctx, "alert delivery failed",
			slog.String("event", alert.Event),
			slog.String("error", err.Error()),
		)
	}
}
