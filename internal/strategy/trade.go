package strategy

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/ocobot/internal/trade"
)

// Buy buys at market and protects the position with a sell OCO.
type Buy struct {
	client trade.Client
}

// NewBuy returns a Buy strategy trading through client.
func NewBuy(client trade.Client) *Buy {
	return &Buy{client: client}
}

func (s *Buy) Kind() Kind { return KindBuy }

func (s *Buy) Run(ctx context.Context, quantity decimal.Decimal) (string, error) {
	market, err := s.client.BuyMarketOrder(ctx, quantity)
	if err != nil {
		return "", fmt.Errorf("strategy: buy: %w", err)
	}
	order, err := s.client.SellOcoOrder(ctx, quantity, market.Price())
	if err != nil {
		return "", fmt.Errorf("strategy: buy: %w", err)
	}
	return order.Status(ctx, s.client)
}

func (s *Buy) String() string { return "Buy strategy" }

// Sell sells at market and protects the position with a buy OCO.
type Sell struct {
	client trade.Client
}

// NewSell returns a Sell strategy trading through client.
func NewSell(client trade.Client) *Sell {
	return &Sell{client: client}
}

func (s *Sell) Kind() Kind { return KindSell }

func (s *Sell) Run(ctx context.Context, quantity decimal.Decimal) (string, error) {
	market, err := s.client.SellMarketOrder(ctx, quantity)
	if err != nil {
		return "", fmt.Errorf("strategy: sell: %w", err)
	}
	order, err := s.client.BuyOcoOrder(ctx, quantity, market.Price())
	if err != nil {
		return "", fmt.Errorf("strategy: sell: %w", err)
	}
	return order.Status(ctx, s.client)
}

func (s *Sell) String() string { return "Sell strategy" }
