// Package service holds the observers that carry bot progress out of the
// trade loop: persistence, live state, alerts and metrics.
package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/alanyoungcy/ocobot/internal/bot"
	"github.com/alanyoungcy/ocobot/internal/domain"
)

// ChannelRuns is the signal bus channel carrying run events.
const ChannelRuns = "ch:run"

// RunEvent is the JSON payload published on ChannelRuns.
type RunEvent struct {
	Event     string    `json:"event"`
	Symbol    string    `json:"symbol"`
	RunID     string    `json:"run_id,omitempty"`
	Run       int64     `json:"run,omitempty"`
	Strategy  string    `json:"strategy,omitempty"`
	Quantity  string    `json:"quantity,omitempty"`
	Status    string    `json:"status,omitempty"`
	Filled    int64     `json:"filled"`
	Expired   int64     `json:"expired"`
	Streak    int64     `json:"streak"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Journal persists finished runs, keeps the live state snapshot current and
// publishes run events. Every dependency is optional; failures are logged.
type Journal struct {
	symbol string
	runs   domain.RunStore
	state  domain.StateCache
	bus    domain.SignalBus
	audit  domain.AuditStore
	logger *slog.Logger
	now    func() time.Time

	last domain.BotState
}

var _ bot.Observer = (*Journal)(nil)

// NewJournal creates a Journal for symbol. Pass nil for any store the
// deployment does not run.
func NewJournal(symbol string, runs domain.RunStore, state domain.StateCache, bus domain.SignalBus, audit domain.AuditStore, logger *slog.Logger) *Journal {
	return &Journal{
		symbol: symbol,
		runs:   runs,
		state:  state,
		bus:    bus,
		audit:  audit,
		logger: logger.With(slog.String("component", "journal")),
		now:    time.Now,
		last:   domain.BotState{Symbol: symbol},
	}
}

func (j *Journal) OnRun(ctx context.Context, r bot.RunResult) {
	if j.runs != nil {
		run := domain.Run{
			ID:         r.ID,
			Number:     r.Number,
			Strategy:   string(r.Strategy),
			Symbol:     j.symbol,
			Quantity:   r.Quantity.String(),
			Status:     r.Status,
			Filled:     r.Filled,
			Expired:    r.Expired,
			StartedAt:  r.StartedAt.UTC(),
			FinishedAt: r.FinishedAt.UTC(),
		}
		if err := j.runs.Insert(ctx, run); err != nil {
			j.warn(ctx, "insert run failed", err)
		}
	}

	j.last = domain.BotState{
		Symbol:         j.symbol,
		Run:            r.Number,
		Strategy:       string(r.Strategy),
		Quantity:       r.Quantity.String(),
		Filled:         r.Filled,
		Expired:        r.Expired,
		StrategyStreak: r.Streak,
		LastStatus:     r.Status,
		UpdatedAt:      r.FinishedAt.UTC(),
	}
	j.saveState(ctx)

	j.publish(ctx, RunEvent{
		Event:     "run_finished",
		Symbol:    j.symbol,
		RunID:     r.ID,
		Run:       r.Number,
		Strategy:  string(r.Strategy),
		Quantity:  r.Quantity.String(),
		Status:    r.Status,
		Filled:    r.Filled,
		Expired:   r.Expired,
		Streak:    r.Streak,
		Timestamp: r.FinishedAt.UTC(),
	})
}

func (j *Journal) OnCooldown(ctx context.Context, streak int64) {
	j.auditLog(ctx, "bot.cooldown", map[string]any{"symbol": j.symbol, "streak": streak})
	j.publish(ctx, RunEvent{
		Event:     "cooldown",
		Symbol:    j.symbol,
		Filled:    j.last.Filled,
		Expired:   j.last.Expired,
		Streak:    streak,
		Timestamp: j.now().UTC(),
	})
}

func (j *Journal) OnStop(ctx context.Context, err error) {
	// The loop context may already be cancelled; the final writes still
	// need to land.
	ctx = context.WithoutCancel(ctx)

	evt := RunEvent{
		Event:     "bot_stopped",
		Symbol:    j.symbol,
		Filled:    j.last.Filled,
		Expired:   j.last.Expired,
		Streak:    j.last.StrategyStreak,
		Timestamp: j.now().UTC(),
	}
	detail := map[string]any{"symbol": j.symbol, "filled": j.last.Filled, "expired": j.last.Expired}
	if err != nil {
		evt.Error = err.Error()
		detail["error"] = err.Error()
	}
	j.auditLog(ctx, "bot.stop", detail)
	j.publish(ctx, evt)
}

func (j *Journal) saveState(ctx context.Context) {
	if j.state == nil {
		return
	}
	if err := j.state.SetState(ctx, j.last); err != nil {
		j.warn(ctx, "save state failed", err)
	}
}

func (j *Journal) publish(ctx context.Context, evt RunEvent) {
	if j.bus == nil {
		return
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		j.warn(ctx, "marshal run event failed", err)
		return
	}
	if err := j.bus.Publish(ctx, ChannelRuns, payload); err != nil {
		j.warn(ctx, "publish run event failed", err)
	}
}

func (j *Journal) auditLog(ctx context.Context, event string, detail map[string]any) {
	if j.audit == nil {
		return
	}
	if err := j.audit.Log(ctx, event, detail); err != nil {
		j.warn(ctx, "audit log failed", err)
	}
}

func (j *Journal) warn(ctx context.Context, msg string, err error) {
	j.logger.WarnContext(ctx, msg, slog.String("error", err.Error()))
}
