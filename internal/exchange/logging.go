package exchange

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alanyoungcy/ocobot/internal/domain"
)

// priceRelationCode and priceRelationMessage identify the OCO rejection the
// trade client knows how to recover from.
const (
	priceRelationCode    = -2010
	priceRelationMessage = "The relationship of the prices for the orders is not correct"
)

// LoggingClient logs every request and maps failures onto the domain error
// classes.
type LoggingClient struct {
	client Client
	logger *slog.Logger
}

// NewLoggingClient wraps client.
func NewLoggingClient(client Client, logger *slog.Logger) *LoggingClient {
	return &LoggingClient{
		client: client,
		logger: logger.With(slog.String("component", "exchange_client")),
	}
}

func (c *LoggingClient) CreateOrder(ctx context.Context, req OrderRequest) (OrderResponse, error) {
	c.logger.DebugContext(ctx, "making the order",
		slog.String("symbol", req.Symbol),
		slog.String("side", string(req.Side)),
		slog.String("type", string(req.Type)),
		slog.String("quantity", req.Quantity),
	)
	resp, err := c.client.CreateOrder(ctx, req)
	if err != nil {
		return OrderResponse{}, fmt.Errorf("%w: %w", domain.ErrOrder, err)
	}
	return resp, nil
}

func (c *LoggingClient) CreateOCOOrder(ctx context.Context, req OCORequest) (OCOResponse, error) {
	c.logger.DebugContext(ctx, "making the OCO order",
		slog.String("symbol", req.Symbol),
		slog.String("side", string(req.Side)),
		slog.String("quantity", req.Quantity),
		slog.String("price", req.Price),
		slog.String("stop_price", req.StopPrice),
		slog.String("stop_limit_price", req.StopLimitPrice),
		slog.String("stop_limit_time_in_force", req.StopLimitTimeInForce),
	)
	resp, err := c.client.CreateOCOOrder(ctx, req)
	if err != nil {
		if isPriceRelation(err) {
			return OCOResponse{}, fmt.Errorf("%w: %w: %w", domain.ErrOcoOrder, domain.ErrOcoPriceRelation, err)
		}
		return OCOResponse{}, fmt.Errorf("%w: %w", domain.ErrOcoOrder, err)
	}
	return resp, nil
}

func (c *LoggingClient) GetOrder(ctx context.Context, req GetOrderRequest) (OrderResponse, error) {
	c.logger.DebugContext(ctx, "getting the order",
		slog.String("symbol", req.Symbol),
		slog.Int64("order_id", req.OrderID),
	)
	resp, err := c.client.GetOrder(ctx, req)
	if err != nil {
		return OrderResponse{}, fmt.Errorf("%w: %w", domain.ErrGetOrder, err)
	}
	return resp, nil
}

func isPriceRelation(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == priceRelationCode && strings.Contains(apiErr.Message, priceRelationMessage)
}
