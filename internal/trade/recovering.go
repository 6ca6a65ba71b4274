package trade

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/ocobot/internal/domain"
	"github.com/alanyoungcy/ocobot/internal/metrics"
)

// RecoveringClient replaces an OCO rejected for its price relationship with
// a market order on the same side, so the position is still closed.
type RecoveringClient struct {
	client Client
}

// NewRecoveringClient wraps client.
func NewRecoveringClient(client Client) *RecoveringClient {
	return &RecoveringClient{client: client}
}

func (c *RecoveringClient) BuyMarketOrder(ctx context.Context, quantity decimal.Decimal) (domain.MarketOrder, error) {
	return c.client.BuyMarketOrder(ctx, quantity)
}

func (c *RecoveringClient) SellMarketOrder(ctx context.Context, quantity decimal.Decimal) (domain.MarketOrder, error) {
	return c.client.SellMarketOrder(ctx, quantity)
}

func (c *RecoveringClient) SellOcoOrder(ctx context.Context, quantity decimal.Decimal, marketPrice string) (domain.Order, error) {
	order, err := c.client.SellOcoOrder(ctx, quantity, marketPrice)
	if errors.Is(err, domain.ErrOcoPriceRelation) {
		metrics.IncRecovery(string(domain.OrderSideSell))
		return c.client.SellMarketOrder(ctx, quantity)
	}
	return order, err
}

func (c *RecoveringClient) BuyOcoOrder(ctx context.Context, quantity decimal.Decimal, marketPrice string) (domain.Order, error) {
	order, err := c.client.BuyOcoOrder(ctx, quantity, marketPrice)
	if errors.Is(err, domain.ErrOcoPriceRelation) {
		metrics.IncRecovery(string(domain.OrderSideBuy))
		return c.client.BuyMarketOrder(ctx, quantity)
	}
	return order, err
}

func (c *RecoveringClient) PollTerminalOrderStatus(ctx context.Context, orderID int64) (string, error) {
	return c.client.PollTerminalOrderStatus(ctx, orderID)
}
