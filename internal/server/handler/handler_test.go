package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alanyoungcy/ocobot/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeRuns struct {
	runs []domain.Run
	opts domain.ListOpts
	err  error
}

func (f *fakeRuns) Insert(context.Context, domain.Run) error { return nil }

func (f *fakeRuns) ListRecent(_ context.Context, opts domain.ListOpts) ([]domain.Run, error) {
	f.opts = opts
	return f.runs, f.err
}

func (f *fakeRuns) ListBefore(context.Context, time.Time) ([]domain.Run, error) { return nil, nil }

type fakeOrders struct {
	orders []domain.OrderRecord
	opts   domain.ListOpts
	err    error
}

func (f *fakeOrders) Create(context.Context, domain.OrderRecord) error  { return nil }
func (f *fakeOrders) UpdateStatus(context.Context, int64, string) error { return nil }
func (f *fakeOrders) ListBefore(context.Context, time.Time) ([]domain.OrderRecord, error) {
	return nil, nil
}

func (f *fakeOrders) ListRecent(_ context.Context, opts domain.ListOpts) ([]domain.OrderRecord, error) {
	f.opts = opts
	return f.orders, f.err
}

type fakeState struct {
	state domain.BotState
	err   error
}

func (f fakeState) SetState(context.Context, domain.BotState) error { return nil }

func (f fakeState) GetState(context.Context, string) (domain.BotState, error) {
	return f.state, f.err
}

func serve(t *testing.T, h http.HandlerFunc, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestParseListOpts(t *testing.T) {
	tests := []struct {
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"", 50, 0},
		{"?limit=10&offset=20", 10, 20},
		{"?limit=9000", 500, 0},
		{"?limit=-1&offset=-5", 50, 0},
		{"?limit=abc", 50, 0},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/api/runs"+tt.query, nil)
		opts := parseListOpts(r)
		if opts.Limit != tt.wantLimit || opts.Offset != tt.wantOffset {
			t.Errorf("%q: got limit=%d offset=%d", tt.query, opts.Limit, opts.Offset)
		}
	}
}

func TestHealthCheck(t *testing.T) {
	h := NewHealthHandler()
	h.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }

	rec := serve(t, h.HealthCheck, "/api/health")
	body := decode[map[string]string](t, rec)
	if rec.Code != http.StatusOK || body["status"] != "ok" || body["timestamp"] != "2025-03-01T12:00:00Z" {
		t.Fatalf("code=%d body=%v", rec.Code, body)
	}
}

func TestGetStatus(t *testing.T) {
	tests := []struct {
		name     string
		state    domain.StateCache
		wantCode int
		wantBot  bool
	}{
		{name: "no cache", state: nil, wantCode: http.StatusOK},
		{name: "no snapshot yet", state: fakeState{err: domain.ErrNotFound}, wantCode: http.StatusOK},
		{name: "snapshot", state: fakeState{state: domain.BotState{Symbol: "BTCUSDT", Run: 7}}, wantCode: http.StatusOK, wantBot: true},
		{name: "cache failure", state: fakeState{err: errors.New("boom")}, wantCode: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewStatusHandler("trade", "BTCUSDT", tt.state, discardLogger())
			rec := serve(t, h.GetStatus, "/api/status")
			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d", rec.Code, tt.wantCode)
			}
			if rec.Code != http.StatusOK {
				return
			}
			resp := decode[statusResponse](t, rec)
			if resp.Mode != "trade" || resp.Symbol != "BTCUSDT" {
				t.Fatalf("resp = %+v", resp)
			}
			if (resp.Bot != nil) != tt.wantBot {
				t.Fatalf("bot = %+v, want present=%v", resp.Bot, tt.wantBot)
			}
			if tt.wantBot && resp.Bot.Run != 7 {
				t.Fatalf("bot run = %d", resp.Bot.Run)
			}
		})
	}
}

func TestListRuns(t *testing.T) {
	store := &fakeRuns{runs: []domain.Run{{ID: "r1", Number: 4, Strategy: "sell", Status: "EXPIRED"}}}
	h := NewRunHandler(store, discardLogger())

	rec := serve(t, h.ListRuns, "/api/runs?limit=5&offset=10")
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	if store.opts.Limit != 5 || store.opts.Offset != 10 {
		t.Fatalf("opts = %+v", store.opts)
	}
	resp := decode[listRunsResponse](t, rec)
	if len(resp.Runs) != 1 || resp.Runs[0].Number != 4 || resp.Runs[0].Status != "EXPIRED" {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestListRuns_EmptyIsArray(t *testing.T) {
	h := NewRunHandler(&fakeRuns{}, discardLogger())
	rec := serve(t, h.ListRuns, "/api/runs")
	if got := rec.Body.String(); got != `{"runs":[],"limit":50,"offset":0}` {
		t.Fatalf("body = %s", got)
	}
}

func TestListRuns_StoreError(t *testing.T) {
	h := NewRunHandler(&fakeRuns{err: errors.New("db down")}, discardLogger())
	rec := serve(t, h.ListRuns, "/api/runs")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("code = %d", rec.Code)
	}
}

func TestListOrders(t *testing.T) {
	store := &fakeOrders{orders: []domain.OrderRecord{
		{OrderID: 12, Kind: domain.OrderKindMarket, Side: domain.OrderSideBuy, Quantity: "0.00088", Price: "21482.89", Status: "FILLED"},
		{OrderID: 13, Kind: domain.OrderKindLimitMaker, Side: domain.OrderSideSell, Quantity: "0.00088", Status: "NEW"},
	}}
	h := NewOrderHandler(store, discardLogger())

	rec := serve(t, h.ListOrders, "/api/orders")
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	resp := decode[listOrdersResponse](t, rec)
	if len(resp.Orders) != 2 {
		t.Fatalf("orders = %+v", resp.Orders)
	}
	if resp.Orders[0].Kind != "market" || resp.Orders[0].Price != "21482.89" {
		t.Fatalf("first = %+v", resp.Orders[0])
	}
	if resp.Orders[1].Side != "SELL" || resp.Orders[1].Price != "" {
		t.Fatalf("second = %+v", resp.Orders[1])
	}
}

func TestListOrders_StoreError(t *testing.T) {
	h := NewOrderHandler(&fakeOrders{err: errors.New("db down")}, discardLogger())
	rec := serve(t, h.ListOrders, "/api/orders")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("code = %d", rec.Code)
	}
	if decode[map[string]string](t, rec)["error"] != "failed to list orders" {
		t.Fatalf("body = %s", rec.Body.String())
	}
}
