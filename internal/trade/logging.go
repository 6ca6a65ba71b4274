package trade

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/ocobot/internal/domain"
)

// LoggingClient logs every order the wrapped client returns and the outcome
// of status polling.
type LoggingClient struct {
	client Client
	logger *slog.Logger
}

// NewLoggingClient wraps client.
func NewLoggingClient(client Client, logger *slog.Logger) *LoggingClient {
	return &LoggingClient{
		client: client,
		logger: logger.With(slog.String("component", "trade_client")),
	}
}

func (c *LoggingClient) BuyMarketOrder(ctx context.Context, quantity decimal.Decimal) (domain.MarketOrder, error) {
	order, err := c.client.BuyMarketOrder(ctx, quantity)
	if err != nil {
		return order, err
	}
	c.logOrder(ctx, order)
	return order, nil
}

func (c *LoggingClient) SellMarketOrder(ctx context.Context, quantity decimal.Decimal) (domain.MarketOrder, error) {
	order, err := c.client.SellMarketOrder(ctx, quantity)
	if err != nil {
		return order, err
	}
	c.logOrder(ctx, order)
	return order, nil
}

func (c *LoggingClient) SellOcoOrder(ctx context.Context, quantity decimal.Decimal, marketPrice string) (domain.Order, error) {
	order, err := c.client.SellOcoOrder(ctx, quantity, marketPrice)
	if err != nil {
		return nil, err
	}
	c.logOrder(ctx, order)
	return order, nil
}

func (c *LoggingClient) BuyOcoOrder(ctx context.Context, quantity decimal.Decimal, marketPrice string) (domain.Order, error) {
	order, err := c.client.BuyOcoOrder(ctx, quantity, marketPrice)
	if err != nil {
		return nil, err
	}
	c.logOrder(ctx, order)
	return order, nil
}

func (c *LoggingClient) PollTerminalOrderStatus(ctx context.Context, orderID int64) (string, error) {
	c.logger.DebugContext(ctx, "start polling order status", slog.Int64("order_id", orderID))
	status, err := c.client.PollTerminalOrderStatus(ctx, orderID)
	if err != nil {
		return status, err
	}
	c.logger.DebugContext(ctx, "order status",
		slog.Int64("order_id", orderID),
		slog.String("status", status),
	)
	return status, nil
}

func (c *LoggingClient) logOrder(ctx context.Context, order domain.Order) {
	c.logger.DebugContext(ctx, order.String(), slog.Int64("order_id", order.ID()))
}
