package trade

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/ocobot/internal/domain"
	"github.com/alanyoungcy/ocobot/internal/exchange"
)

// stubExchange answers with the canned responses of a filled BTCUSDT market
// buy and an executing OCO pair. GetOrder walks through statuses.
type stubExchange struct {
	orderResp exchange.OrderResponse
	ocoResp   exchange.OCOResponse
	ocoErr    error
	statuses  []string
	getErr    error

	orderReqs []exchange.OrderRequest
	ocoReqs   []exchange.OCORequest
	getReqs   []exchange.GetOrderRequest
}

func newStubExchange() *stubExchange {
	return &stubExchange{
		orderResp: exchange.OrderResponse{
			Symbol:      "BTCUSDT",
			OrderID:     19744496177,
			OrderListID: -1,
			Status:      domain.StatusFilled,
			Type:        "MARKET",
			Side:        "BUY",
			Fills: []exchange.Fill{
				{Price: "21472.15000000", Qty: "0.00088000", Commission: "0.00000000", CommissionAsset: "BNB", TradeID: 2903179679},
			},
		},
		ocoResp: exchange.OCOResponse{
			OrderListID:     84639529,
			ContingencyType: "OCO",
			ListStatusType:  "EXEC_STARTED",
			ListOrderStatus: domain.ListStatusExecuting,
			Symbol:          "BTCUSDT",
			OrderReports: []exchange.OrderReport{
				{Symbol: "BTCUSDT", OrderID: 19747264210, Type: "STOP_LOSS_LIMIT", Side: "SELL", Status: "NEW"},
				{Symbol: "BTCUSDT", OrderID: 19747264211, Type: "LIMIT_MAKER", Side: "SELL", Status: "NEW"},
			},
		},
		statuses: []string{domain.StatusFilled},
	}
}

func (s *stubExchange) CreateOrder(_ context.Context, req exchange.OrderRequest) (exchange.OrderResponse, error) {
	s.orderReqs = append(s.orderReqs, req)
	return s.orderResp, nil
}

func (s *stubExchange) CreateOCOOrder(_ context.Context, req exchange.OCORequest) (exchange.OCOResponse, error) {
	s.ocoReqs = append(s.ocoReqs, req)
	if s.ocoErr != nil {
		return exchange.OCOResponse{}, s.ocoErr
	}
	return s.ocoResp, nil
}

func (s *stubExchange) GetOrder(_ context.Context, req exchange.GetOrderRequest) (exchange.OrderResponse, error) {
	s.getReqs = append(s.getReqs, req)
	if s.getErr != nil {
		return exchange.OrderResponse{}, s.getErr
	}
	i := len(s.getReqs) - 1
	if i >= len(s.statuses) {
		i = len(s.statuses) - 1
	}
	return exchange.OrderResponse{Symbol: req.Symbol, OrderID: req.OrderID, Status: s.statuses[i]}, nil
}

// fakeClient is a scripted trade.Client that records the calls it receives.
type fakeClient struct {
	calls   []string
	ocoErr  error
	status  string
	pollErr error
}

func (f *fakeClient) BuyMarketOrder(_ context.Context, _ decimal.Decimal) (domain.MarketOrder, error) {
	f.calls = append(f.calls, "BuyMarketOrder")
	return domain.NewMarketOrder(1, domain.StatusFilled, "100.00")
}

func (f *fakeClient) SellMarketOrder(_ context.Context, _ decimal.Decimal) (domain.MarketOrder, error) {
	f.calls = append(f.calls, "SellMarketOrder")
	return domain.NewMarketOrder(2, domain.StatusFilled, "101.00")
}

func (f *fakeClient) SellOcoOrder(_ context.Context, _ decimal.Decimal, _ string) (domain.Order, error) {
	f.calls = append(f.calls, "SellOcoOrder")
	if f.ocoErr != nil {
		return nil, f.ocoErr
	}
	return domain.NewLimitMakerOrder(3), nil
}

func (f *fakeClient) BuyOcoOrder(_ context.Context, _ decimal.Decimal, _ string) (domain.Order, error) {
	f.calls = append(f.calls, "BuyOcoOrder")
	if f.ocoErr != nil {
		return nil, f.ocoErr
	}
	return domain.NewLimitMakerOrder(4), nil
}

func (f *fakeClient) PollTerminalOrderStatus(_ context.Context, _ int64) (string, error) {
	f.calls = append(f.calls, "PollTerminalOrderStatus")
	return f.status, f.pollErr
}

// memOrderStore is an in-memory domain.OrderStore.
type memOrderStore struct {
	records   []domain.OrderRecord
	updates   map[int64]string
	createErr error
}

func (m *memOrderStore) Create(_ context.Context, rec domain.OrderRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *memOrderStore) UpdateStatus(_ context.Context, orderID int64, status string) error {
	if m.updates == nil {
		m.updates = map[int64]string{}
	}
	m.updates[orderID] = status
	return nil
}

func (m *memOrderStore) ListRecent(context.Context, domain.ListOpts) ([]domain.OrderRecord, error) {
	return m.records, nil
}

func (m *memOrderStore) ListBefore(context.Context, time.Time) ([]domain.OrderRecord, error) {
	return nil, errors.New("not implemented")
}
