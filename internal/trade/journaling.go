package trade

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/ocobot/internal/domain"
)

// JournalingClient records every placed order and its settled status in an
// order store. Store failures are logged and never fail the trade.
type JournalingClient struct {
	client Client
	store  domain.OrderStore
	symbol string
	logger *slog.Logger
	now    func() time.Time
}

// NewJournalingClient wraps client.
func NewJournalingClient(client Client, store domain.OrderStore, symbol string, logger *slog.Logger) *JournalingClient {
	return &JournalingClient{
		client: client,
		store:  store,
		symbol: symbol,
		logger: logger.With(slog.String("component", "order_journal")),
		now:    time.Now,
	}
}

func (c *JournalingClient) BuyMarketOrder(ctx context.Context, quantity decimal.Decimal) (domain.MarketOrder, error) {
	order, err := c.client.BuyMarketOrder(ctx, quantity)
	if err == nil {
		c.record(ctx, order, domain.OrderSideBuy, quantity)
	}
	return order, err
}

func (c *JournalingClient) SellMarketOrder(ctx context.Context, quantity decimal.Decimal) (domain.MarketOrder, error) {
	order, err := c.client.SellMarketOrder(ctx, quantity)
	if err == nil {
		c.record(ctx, order, domain.OrderSideSell, quantity)
	}
	return order, err
}

func (c *JournalingClient) SellOcoOrder(ctx context.Context, quantity decimal.Decimal, marketPrice string) (domain.Order, error) {
	order, err := c.client.SellOcoOrder(ctx, quantity, marketPrice)
	if err == nil {
		c.record(ctx, order, domain.OrderSideSell, quantity)
	}
	return order, err
}

func (c *JournalingClient) BuyOcoOrder(ctx context.Context, quantity decimal.Decimal, marketPrice string) (domain.Order, error) {
	order, err := c.client.BuyOcoOrder(ctx, quantity, marketPrice)
	if err == nil {
		c.record(ctx, order, domain.OrderSideBuy, quantity)
	}
	return order, err
}

func (c *JournalingClient) PollTerminalOrderStatus(ctx context.Context, orderID int64) (string, error) {
	status, err := c.client.PollTerminalOrderStatus(ctx, orderID)
	if err != nil {
		return status, err
	}
	if serr := c.store.UpdateStatus(ctx, orderID, status); serr != nil {
		c.logger.WarnContext(ctx, "failed to update order status",
			slog.Int64("order_id", orderID),
			slog.String("error", serr.Error()),
		)
	}
	return status, nil
}

func (c *JournalingClient) record(ctx context.Context, order domain.Order, side domain.OrderSide, quantity decimal.Decimal) {
	rec := domain.OrderRecord{
		OrderID:   order.ID(),
		Symbol:    c.symbol,
		Kind:      domain.OrderKindLimitMaker,
		Side:      side,
		Quantity:  quantity.String(),
		Status:    domain.StatusNew,
		CreatedAt: c.now().UTC(),
	}
	if mkt, ok := order.(domain.MarketOrder); ok {
		rec.Kind = domain.OrderKindMarket
		rec.Price = mkt.Price()
		rec.Status = domain.StatusFilled
	}
	if err := c.store.Create(ctx, rec); err != nil {
		c.logger.WarnContext(ctx, "failed to journal order",
			slog.Int64("order_id", rec.OrderID),
			slog.String("kind", string(rec.Kind)),
			slog.String("error", err.Error()),
		)
	}
}
