// Package trade turns exchange calls into the order operations a strategy
// needs: market orders, protective OCO pairs priced off the market fill, and
// polling of the maker leg until it settles.
package trade

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/ocobot/internal/action"
	"github.com/alanyoungcy/ocobot/internal/domain"
	"github.com/alanyoungcy/ocobot/internal/exchange"
	"github.com/alanyoungcy/ocobot/internal/metrics"
)

// Client is the set of order operations a strategy runs.
type Client interface {
	BuyMarketOrder(ctx context.Context, quantity decimal.Decimal) (domain.MarketOrder, error)
	SellMarketOrder(ctx context.Context, quantity decimal.Decimal) (domain.MarketOrder, error)
	// SellOcoOrder places a sell OCO priced off marketPrice. It returns the
	// limit maker leg, or a market order when a recovering client had to
	// fall back.
	SellOcoOrder(ctx context.Context, quantity decimal.Decimal, marketPrice string) (domain.Order, error)
	BuyOcoOrder(ctx context.Context, quantity decimal.Decimal, marketPrice string) (domain.Order, error)
	PollTerminalOrderStatus(ctx context.Context, orderID int64) (string, error)
}

// PollConfig controls status polling. MaxAttempts of zero polls until the
// order settles or the context ends.
type PollConfig struct {
	Interval    time.Duration
	MaxAttempts int64
}

// DefaultPollInterval is the pause between status lookups.
const DefaultPollInterval = 2 * time.Second

// Coefficients scale the market fill price into the OCO leg prices.
type Coefficients struct {
	SellRaise    decimal.Decimal
	SellDecrease decimal.Decimal
	BuyRaise     decimal.Decimal
	BuyDecrease  decimal.Decimal
}

// Config configures a BasicClient.
type Config struct {
	Symbol       string
	Coefficients Coefficients
	PriceDigits  int32
	Poll         PollConfig
}

// BasicClient implements Client directly on top of an exchange client.
type BasicClient struct {
	client exchange.Client
	cfg    Config
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewBasicClient creates a BasicClient. A zero poll interval falls back to
// DefaultPollInterval.
func NewBasicClient(client exchange.Client, cfg Config) *BasicClient {
	if cfg.Poll.Interval <= 0 {
		cfg.Poll.Interval = DefaultPollInterval
	}
	return &BasicClient{
		client: client,
		cfg:    cfg,
		sleep: func(ctx context.Context, d time.Duration) error {
			return action.NewSleep(d).Run(ctx)
		},
	}
}

func (c *BasicClient) BuyMarketOrder(ctx context.Context, quantity decimal.Decimal) (domain.MarketOrder, error) {
	return c.marketOrder(ctx, quantity, domain.OrderSideBuy)
}

func (c *BasicClient) SellMarketOrder(ctx context.Context, quantity decimal.Decimal) (domain.MarketOrder, error) {
	return c.marketOrder(ctx, quantity, domain.OrderSideSell)
}

func (c *BasicClient) marketOrder(ctx context.Context, quantity decimal.Decimal, side domain.OrderSide) (domain.MarketOrder, error) {
	resp, err := c.client.CreateOrder(ctx, exchange.OrderRequest{
		Symbol:   c.cfg.Symbol,
		Side:     side,
		Type:     domain.OrderTypeMarket,
		Quantity: quantity.String(),
	})
	if err != nil {
		return domain.MarketOrder{}, fmt.Errorf("trade: market order: %w", err)
	}
	metrics.IncOrder("market", string(side))

	if resp.Status != domain.StatusFilled {
		return domain.MarketOrder{}, fmt.Errorf("trade: market order %d: %w: %s", resp.OrderID, domain.ErrUnexpectedOrderStatus, resp.Status)
	}
	if len(resp.Fills) == 0 {
		return domain.MarketOrder{}, fmt.Errorf("trade: market order %d: %w", resp.OrderID, domain.ErrMissingFillPrice)
	}
	return domain.NewMarketOrder(resp.OrderID, resp.Status, resp.Fills[0].Price)
}

// SellOcoOrder sells above the market with the limit leg and below it with
// the stop leg.
func (c *BasicClient) SellOcoOrder(ctx context.Context, quantity decimal.Decimal, marketPrice string) (domain.Order, error) {
	coef := c.cfg.Coefficients
	limitPrice, err := c.scale(marketPrice, coef.SellRaise)
	if err != nil {
		return nil, err
	}
	stopPrice, err := c.scale(marketPrice, coef.SellDecrease)
	if err != nil {
		return nil, err
	}
	return c.ocoOrder(ctx, quantity, domain.OrderSideSell, limitPrice, stopPrice)
}

// BuyOcoOrder buys below the market with the limit leg and above it with the
// stop leg.
func (c *BasicClient) BuyOcoOrder(ctx context.Context, quantity decimal.Decimal, marketPrice string) (domain.Order, error) {
	coef := c.cfg.Coefficients
	limitPrice, err := c.scale(marketPrice, coef.BuyDecrease)
	if err != nil {
		return nil, err
	}
	stopPrice, err := c.scale(marketPrice, coef.BuyRaise)
	if err != nil {
		return nil, err
	}
	return c.ocoOrder(ctx, quantity, domain.OrderSideBuy, limitPrice, stopPrice)
}

// scale multiplies the market price by coefficient and rounds half to even
// at the configured number of digits.
func (c *BasicClient) scale(marketPrice string, coefficient decimal.Decimal) (string, error) {
	price, err := decimal.NewFromString(marketPrice)
	if err != nil {
		return "", fmt.Errorf("trade: parse market price %q: %w", marketPrice, err)
	}
	return price.Mul(coefficient).StringFixedBank(c.cfg.PriceDigits), nil
}

func (c *BasicClient) ocoOrder(ctx context.Context, quantity decimal.Decimal, side domain.OrderSide, limitPrice, stopPrice string) (domain.Order, error) {
	resp, err := c.client.CreateOCOOrder(ctx, exchange.OCORequest{
		Symbol:               c.cfg.Symbol,
		Side:                 side,
		Quantity:             quantity.String(),
		Price:                limitPrice,
		StopPrice:            stopPrice,
		StopLimitPrice:       stopPrice,
		StopLimitTimeInForce: "GTC",
	})
	if err != nil {
		return nil, fmt.Errorf("trade: oco order: %w", err)
	}
	metrics.IncOrder("oco", string(side))
	return limitMakerOrder(resp)
}

// limitMakerOrder picks the maker leg out of an OCO response. The second
// report is checked first.
func limitMakerOrder(resp exchange.OCOResponse) (domain.Order, error) {
	if resp.ListOrderStatus != domain.ListStatusExecuting && resp.ListOrderStatus != domain.ListStatusAllDone {
		return nil, fmt.Errorf("trade: oco order %d: %w: %s", resp.OrderListID, domain.ErrUnexpectedOrderStatus, resp.ListOrderStatus)
	}
	if len(resp.OrderReports) != 2 {
		return nil, fmt.Errorf("trade: oco order %d: %w: %d order reports", resp.OrderListID, domain.ErrMalformedOcoResponse, len(resp.OrderReports))
	}

	maker := string(domain.OrderTypeLimitMaker)
	first, second := resp.OrderReports[0], resp.OrderReports[1]
	if second.Type == maker {
		return domain.NewLimitMakerOrder(second.OrderID), nil
	}
	if first.Type == maker {
		return domain.NewLimitMakerOrder(first.OrderID), nil
	}
	return nil, fmt.Errorf("trade: oco order %d: %w: no limit maker leg", resp.OrderListID, domain.ErrMalformedOcoResponse)
}

// PollTerminalOrderStatus looks the order up until its status is neither NEW
// nor PARTIALLY_FILLED, sleeping Poll.Interval between lookups.
func (c *BasicClient) PollTerminalOrderStatus(ctx context.Context, orderID int64) (string, error) {
	lookups := action.NewCounter(1)
	status, err := c.orderStatus(ctx, orderID)
	for err == nil && !domain.IsTerminalStatus(status) {
		if c.cfg.Poll.MaxAttempts > 0 && lookups.IsGreaterOrEqual(c.cfg.Poll.MaxAttempts) {
			return status, fmt.Errorf("trade: poll order %d after %d lookups: %w", orderID, lookups.Value(), domain.ErrPollTimeout)
		}
		if err := c.sleep(ctx, c.cfg.Poll.Interval); err != nil {
			return status, fmt.Errorf("trade: poll order %d: %w", orderID, err)
		}
		lookups.Inc()
		status, err = c.orderStatus(ctx, orderID)
	}
	if err != nil {
		return "", err
	}
	return status, nil
}

func (c *BasicClient) orderStatus(ctx context.Context, orderID int64) (string, error) {
	metrics.IncStatusPoll()
	resp, err := c.client.GetOrder(ctx, exchange.GetOrderRequest{Symbol: c.cfg.Symbol, OrderID: orderID})
	if err != nil {
		return "", fmt.Errorf("trade: get order %d: %w", orderID, err)
	}
	return resp.Status, nil
}
