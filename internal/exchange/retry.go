package exchange

import (
	"context"
	"fmt"

	"github.com/alanyoungcy/ocobot/internal/action"
	"github.com/alanyoungcy/ocobot/internal/domain"
	"github.com/alanyoungcy/ocobot/internal/metrics"
)

// DefaultRetryLimit is the number of GetOrder attempts made on read timeouts.
const DefaultRetryLimit = 3

// RetryClient retries GetOrder on read timeouts. Placement calls are never
// retried: a timed out placement may still have reached the exchange.
type RetryClient struct {
	client     Client
	retryLimit int64
}

// NewRetryClient wraps client with DefaultRetryLimit attempts.
func NewRetryClient(client Client) *RetryClient {
	return &RetryClient{client: client, retryLimit: DefaultRetryLimit}
}

func (c *RetryClient) CreateOrder(ctx context.Context, req OrderRequest) (OrderResponse, error) {
	return c.client.CreateOrder(ctx, req)
}

func (c *RetryClient) CreateOCOOrder(ctx context.Context, req OCORequest) (OCOResponse, error) {
	return c.client.CreateOCOOrder(ctx, req)
}

func (c *RetryClient) GetOrder(ctx context.Context, req GetOrderRequest) (OrderResponse, error) {
	attempt := action.NewCounter(1)
	for attempt.IsLessOrEqual(c.retryLimit) {
		resp, err := c.client.GetOrder(ctx, req)
		if err == nil {
			return resp, nil
		}
		if !IsReadTimeout(err) || ctx.Err() != nil {
			return OrderResponse{}, err
		}
		metrics.IncGetOrderRetry()
		attempt.Inc()
	}
	return OrderResponse{}, fmt.Errorf("%w: %w", domain.ErrGetOrder, domain.ErrRetryLimitExceeded)
}
