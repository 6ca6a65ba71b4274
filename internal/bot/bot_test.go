package bot

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"slices"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/ocobot/internal/action"
	"github.com/alanyoungcy/ocobot/internal/domain"
	"github.com/alanyoungcy/ocobot/internal/strategy"
)

var errScriptDone = errors.New("script done")

// script hands out statuses to the strategies in run order and records what
// each run saw.
type script struct {
	statuses   []string
	kinds      []strategy.Kind
	quantities []string
}

type scriptedStrategy struct {
	kind strategy.Kind
	s    *script
}

func (s *scriptedStrategy) Kind() strategy.Kind { return s.kind }

func (s *scriptedStrategy) String() string { return string(s.kind) + " strategy" }

func (s *scriptedStrategy) Run(_ context.Context, quantity decimal.Decimal) (string, error) {
	if len(s.s.statuses) == 0 {
		return "", errScriptDone
	}
	s.s.kinds = append(s.s.kinds, s.kind)
	s.s.quantities = append(s.s.quantities, quantity.String())
	status := s.s.statuses[0]
	s.s.statuses = s.s.statuses[1:]
	return status, nil
}

// countingAction counts its runs and returns err.
type countingAction struct {
	runs int
	err  error
}

func (a *countingAction) Run(context.Context) error {
	a.runs++
	return a.err
}

func (a *countingAction) String() string { return "counting" }

type recordingObserver struct {
	results   []RunResult
	cooldowns []int64
	stopErr   error
	stopped   bool
}

func (o *recordingObserver) OnRun(_ context.Context, r RunResult) { o.results = append(o.results, r) }

func (o *recordingObserver) OnCooldown(_ context.Context, streak int64) {
	o.cooldowns = append(o.cooldowns, streak)
}

func (o *recordingObserver) OnStop(_ context.Context, err error) {
	o.stopped = true
	o.stopErr = err
}

type fixture struct {
	script     *script
	bot        *Bot
	cooldown   *countingAction
	expiration *countingAction
	observer   *recordingObserver
	quantity   *Quantity
}

func newFixture(t *testing.T, statuses []string, changeLimit, expirationLimit int64, kinds ...strategy.Kind) *fixture {
	t.Helper()
	sc := &script{statuses: statuses}
	if len(kinds) == 0 {
		kinds = []strategy.Kind{strategy.KindBuy, strategy.KindSell}
	}
	strategies := make([]strategy.Strategy, 0, len(kinds))
	for _, k := range kinds {
		strategies = append(strategies, &scriptedStrategy{kind: k, s: sc})
	}
	supplier, err := strategy.NewCycleSupplier(strategies...)
	if err != nil {
		t.Fatal(err)
	}
	f := &fixture{
		script:     sc,
		cooldown:   &countingAction{},
		expiration: &countingAction{},
		observer:   &recordingObserver{},
		quantity:   NewQuantity(decimal.RequireFromString("0.001")),
	}
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelDebug}))
	f.bot = New(supplier,
		action.NewLimit(changeLimit, f.cooldown),
		action.NewLimit(expirationLimit, f.expiration),
		f.observer,
		logger,
	)
	ids := 0
	f.bot.newID = func() string {
		ids++
		return "run-" + string(rune('0'+ids))
	}
	return f
}

func TestFillKeepsStrategyAndResetsQuantity(t *testing.T) {
	f := newFixture(t, []string{domain.StatusExpired, domain.StatusFilled, domain.StatusFilled}, 10, 10)

	err := f.bot.Start(context.Background(), f.quantity)
	if !errors.Is(err, errScriptDone) {
		t.Fatalf("err = %v", err)
	}

	wantKinds := []strategy.Kind{strategy.KindBuy, strategy.KindSell, strategy.KindSell}
	if !slices.Equal(f.script.kinds, wantKinds) {
		t.Errorf("kinds = %v, want %v", f.script.kinds, wantKinds)
	}
	wantQty := []string{"0.001", "0.002", "0.001"}
	if !slices.Equal(f.script.quantities, wantQty) {
		t.Errorf("quantities = %v, want %v", f.script.quantities, wantQty)
	}
	if f.bot.filled.Value() != 2 || f.bot.expired.Value() != 1 {
		t.Errorf("filled/expired = %d/%d", f.bot.filled.Value(), f.bot.expired.Value())
	}
	if f.bot.streak.Value() != 0 {
		t.Errorf("streak = %d, want 0 after a fill", f.bot.streak.Value())
	}
	if f.bot.runs.Value() != 4 {
		t.Errorf("run counter = %d, want 4", f.bot.runs.Value())
	}
}

func TestExpiriesDoubleQuantityAndAlternate(t *testing.T) {
	f := newFixture(t, []string{domain.StatusExpired, domain.StatusExpired, domain.StatusExpired}, 10, 10)

	_ = f.bot.Start(context.Background(), f.quantity)

	wantKinds := []strategy.Kind{strategy.KindBuy, strategy.KindSell, strategy.KindBuy}
	if !slices.Equal(f.script.kinds, wantKinds) {
		t.Errorf("kinds = %v, want %v", f.script.kinds, wantKinds)
	}
	wantQty := []string{"0.001", "0.002", "0.004"}
	if !slices.Equal(f.script.quantities, wantQty) {
		t.Errorf("quantities = %v, want %v", f.script.quantities, wantQty)
	}
	if f.bot.streak.Value() != 3 {
		t.Errorf("streak = %d, want 3", f.bot.streak.Value())
	}
	if f.quantity.String() != "0.008" {
		t.Errorf("quantity = %s, want 0.008", f.quantity)
	}
}

func TestStrategyChangeLimitCoolsDownAndResetsStreak(t *testing.T) {
	f := newFixture(t, []string{domain.StatusExpired, domain.StatusExpired, domain.StatusExpired}, 2, 10)

	_ = f.bot.Start(context.Background(), f.quantity)

	if f.cooldown.runs != 1 {
		t.Errorf("cooldown runs = %d, want 1", f.cooldown.runs)
	}
	if !slices.Equal(f.observer.cooldowns, []int64{2}) {
		t.Errorf("cooldown events = %v", f.observer.cooldowns)
	}
	if f.bot.streak.Value() != 1 {
		t.Errorf("streak = %d, want 1 (reset at 2, then one more change)", f.bot.streak.Value())
	}
}

func TestSameStrategyDoesNotCountAsChange(t *testing.T) {
	f := newFixture(t, []string{domain.StatusExpired, domain.StatusExpired}, 1, 10, strategy.KindBuy)

	_ = f.bot.Start(context.Background(), f.quantity)

	if f.bot.streak.Value() != 0 || f.cooldown.runs != 0 {
		t.Errorf("streak = %d, cooldowns = %d", f.bot.streak.Value(), f.cooldown.runs)
	}
	if !slices.Equal(f.script.quantities, []string{"0.001", "0.002"}) {
		t.Errorf("quantities = %v", f.script.quantities)
	}
}

func TestExpirationLimitExits(t *testing.T) {
	f := newFixture(t, []string{domain.StatusFilled, domain.StatusExpired, domain.StatusExpired, domain.StatusFilled}, 10, 2)
	f.expiration.err = action.ErrExit

	err := f.bot.Start(context.Background(), f.quantity)
	if !errors.Is(err, action.ErrExit) {
		t.Fatalf("err = %v, want ErrExit", err)
	}
	if len(f.script.kinds) != 3 {
		t.Errorf("runs = %d, want 3", len(f.script.kinds))
	}
	if f.expiration.runs != 1 {
		t.Errorf("expiration action runs = %d, want 1", f.expiration.runs)
	}
	if !f.observer.stopped || !errors.Is(f.observer.stopErr, action.ErrExit) {
		t.Errorf("observer stop = %v, %v", f.observer.stopped, f.observer.stopErr)
	}
	if len(f.observer.results) != 3 {
		t.Errorf("observed runs = %d, want 3", len(f.observer.results))
	}
}

func TestExpirationCounterIsLifetime(t *testing.T) {
	f := newFixture(t, []string{domain.StatusExpired, domain.StatusFilled, domain.StatusExpired}, 10, 2)

	_ = f.bot.Start(context.Background(), f.quantity)

	if f.expiration.runs != 1 {
		t.Errorf("expiration action runs = %d, want 1 (fills do not reset the expired count)", f.expiration.runs)
	}
}

func TestUnknownStatusIsFatal(t *testing.T) {
	f := newFixture(t, []string{domain.StatusFilled, domain.StatusCanceled, domain.StatusFilled}, 10, 10)

	err := f.bot.Start(context.Background(), f.quantity)
	if !errors.Is(err, domain.ErrUnknownStatus) {
		t.Fatalf("err = %v, want ErrUnknownStatus", err)
	}
	if len(f.script.statuses) != 1 {
		t.Errorf("loop continued after an unknown status")
	}
}

func TestStrategyErrorStopsLoop(t *testing.T) {
	f := newFixture(t, nil, 10, 10)
	err := f.bot.Start(context.Background(), f.quantity)
	if !errors.Is(err, errScriptDone) {
		t.Fatalf("err = %v", err)
	}
	if !errors.Is(f.observer.stopErr, errScriptDone) {
		t.Errorf("observer stop err = %v", f.observer.stopErr)
	}
}

func TestCancelledContextStopsLoop(t *testing.T) {
	f := newFixture(t, []string{domain.StatusFilled}, 10, 10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.bot.Start(ctx, f.quantity)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(f.script.kinds) != 0 {
		t.Errorf("ran %d strategies after cancel", len(f.script.kinds))
	}
}

func TestRunResults(t *testing.T) {
	f := newFixture(t, []string{domain.StatusExpired, domain.StatusFilled}, 10, 10)

	_ = f.bot.Start(context.Background(), f.quantity)

	if len(f.observer.results) != 2 {
		t.Fatalf("results = %d, want 2", len(f.observer.results))
	}
	first, second := f.observer.results[0], f.observer.results[1]
	if first.Number != 1 || first.Strategy != strategy.KindBuy || first.Status != domain.StatusExpired || first.Expired != 1 {
		t.Errorf("first = %+v", first)
	}
	if first.Quantity.String() != "0.001" || first.ID != "run-1" {
		t.Errorf("first = %+v", first)
	}
	if second.Number != 2 || second.Strategy != strategy.KindSell || second.Filled != 1 || second.Quantity.String() != "0.002" {
		t.Errorf("second = %+v", second)
	}
}

func TestMultiObserver(t *testing.T) {
	a, b := &recordingObserver{}, &recordingObserver{}
	m := MultiObserver{a, b, NopObserver{}}
	m.OnRun(context.Background(), RunResult{Number: 1})
	m.OnCooldown(context.Background(), 5)
	m.OnStop(context.Background(), action.ErrExit)

	for i, o := range []*recordingObserver{a, b} {
		if len(o.results) != 1 || len(o.cooldowns) != 1 || !o.stopped {
			t.Errorf("observer %d = %+v", i, o)
		}
	}
}
