package domain

import (
	"context"
	"fmt"
	"time"
)

// OrderSide indicates whether this is a buy or sell.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

// OrderType is the exchange order type.
type OrderType string

const (
	OrderTypeMarket        OrderType = "MARKET"
	OrderTypeLimitMaker    OrderType = "LIMIT_MAKER"
	OrderTypeStopLossLimit OrderType = "STOP_LOSS_LIMIT"
)

// Order statuses as reported by the exchange.
const (
	StatusNew             = "NEW"
	StatusPartiallyFilled = "PARTIALLY_FILLED"
	StatusFilled          = "FILLED"
	StatusCanceled        = "CANCELED"
	StatusPendingCancel   = "PENDING_CANCEL"
	StatusRejected        = "REJECTED"
	StatusExpired         = "EXPIRED"
)

// OCO list statuses accepted right after placement.
const (
	ListStatusExecuting = "EXECUTING"
	ListStatusAllDone   = "ALL_DONE"
)

// IsTerminalStatus reports whether no further transition is expected for
// an order in the given status.
func IsTerminalStatus(status string) bool {
	return status != StatusNew && status != StatusPartiallyFilled
}

// StatusPoller resolves an order id to its terminal status.
type StatusPoller interface {
	PollTerminalOrderStatus(ctx context.Context, orderID int64) (string, error)
}

// Order is an exchange order that can be resolved to a terminal status.
type Order interface {
	ID() int64
	Status(ctx context.Context, poller StatusPoller) (string, error)
	String() string
}

// MarketOrder is a market order. It is terminal when constructed.
type MarketOrder struct {
	id     int64
	status string
	price  string
}

// NewMarketOrder builds a MarketOrder. Only FILLED market orders exist in this
// system, so any other status is rejected.
func NewMarketOrder(id int64, status, price string) (MarketOrder, error) {
	if status != StatusFilled {
		return MarketOrder{}, fmt.Errorf("%w: %s", ErrUnexpectedOrderStatus, status)
	}
	return MarketOrder{id: id, status: status, price: price}, nil
}

func (o MarketOrder) ID() int64 { return o.id }

// Price returns the fill price as reported by the exchange.
func (o MarketOrder) Price() string { return o.price }

// Status returns the status captured at placement; the poller is not used.
func (o MarketOrder) Status(_ context.Context, _ StatusPoller) (string, error) {
	return o.status, nil
}

func (o MarketOrder) String() string {
	return fmt.Sprintf("Market order %d, price %s", o.id, o.price)
}

// LimitMakerOrder is the maker leg of an OCO pair. Its status is unknown
// until polled.
type LimitMakerOrder struct {
	id int64
}

// NewLimitMakerOrder builds a LimitMakerOrder for the given exchange id.
func NewLimitMakerOrder(id int64) LimitMakerOrder {
	return LimitMakerOrder{id: id}
}

func (o LimitMakerOrder) ID() int64 { return o.id }

// Status polls the order until it leaves NEW/PARTIALLY_FILLED.
func (o LimitMakerOrder) Status(ctx context.Context, poller StatusPoller) (string, error) {
	return poller.PollTerminalOrderStatus(ctx, o.id)
}

func (o LimitMakerOrder) String() string {
	return fmt.Sprintf("Limit maker order %d", o.id)
}

// OrderKind distinguishes journaled orders.
type OrderKind string

const (
	OrderKindMarket     OrderKind = "market"
	OrderKindLimitMaker OrderKind = "limit_maker"
)

// OrderRecord is a journal row for an order placed by the bot.
type OrderRecord struct {
	OrderID   int64
	Symbol    string
	Kind      OrderKind
	Side      OrderSide
	Quantity  string
	Price     string
	Status    string
	CreatedAt time.Time
}
