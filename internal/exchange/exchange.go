// Package exchange defines the narrow boundary between the trade client and
// a spot exchange, plus the decorators that shape its failures: request
// logging with error classification, and bounded retries of status lookups.
package exchange

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/alanyoungcy/ocobot/internal/domain"
)

// OrderRequest places a market order.
type OrderRequest struct {
	Symbol   string
	Side     domain.OrderSide
	Type     domain.OrderType
	Quantity string
}

// OCORequest places a one-cancels-the-other pair.
type OCORequest struct {
	Symbol               string
	Side                 domain.OrderSide
	Quantity             string
	Price                string
	StopPrice            string
	StopLimitPrice       string
	StopLimitTimeInForce string
}

// GetOrderRequest looks up a single order.
type GetOrderRequest struct {
	Symbol  string
	OrderID int64
}

// Fill is one execution of a market order.
type Fill struct {
	Price           string `json:"price"`
	Qty             string `json:"qty"`
	Commission      string `json:"commission"`
	CommissionAsset string `json:"commissionAsset"`
	TradeID         int64  `json:"tradeId"`
}

// OrderResponse is the exchange view of a single order.
type OrderResponse struct {
	Symbol        string `json:"symbol"`
	OrderID       int64  `json:"orderId"`
	OrderListID   int64  `json:"orderListId"`
	ClientOrderID string `json:"clientOrderId"`
	Price         string `json:"price"`
	OrigQty       string `json:"origQty"`
	ExecutedQty   string `json:"executedQty"`
	Status        string `json:"status"`
	TimeInForce   string `json:"timeInForce"`
	Type          string `json:"type"`
	Side          string `json:"side"`
	StopPrice     string `json:"stopPrice"`
	Fills         []Fill `json:"fills"`
}

// OrderReport is one leg of an OCO placement response.
type OrderReport struct {
	Symbol        string `json:"symbol"`
	OrderID       int64  `json:"orderId"`
	OrderListID   int64  `json:"orderListId"`
	ClientOrderID string `json:"clientOrderId"`
	Price         string `json:"price"`
	OrigQty       string `json:"origQty"`
	Status        string `json:"status"`
	TimeInForce   string `json:"timeInForce"`
	Type          string `json:"type"`
	Side          string `json:"side"`
	StopPrice     string `json:"stopPrice"`
}

// OCOResponse is the exchange response to an OCO placement.
type OCOResponse struct {
	OrderListID       int64         `json:"orderListId"`
	ContingencyType   string        `json:"contingencyType"`
	ListStatusType    string        `json:"listStatusType"`
	ListOrderStatus   string        `json:"listOrderStatus"`
	ListClientOrderID string        `json:"listClientOrderId"`
	Symbol            string        `json:"symbol"`
	OrderReports      []OrderReport `json:"orderReports"`
}

// Client is the exchange capability the trade client needs.
type Client interface {
	CreateOrder(ctx context.Context, req OrderRequest) (OrderResponse, error)
	CreateOCOOrder(ctx context.Context, req OCORequest) (OCOResponse, error)
	GetOrder(ctx context.Context, req GetOrderRequest) (OrderResponse, error)
}

// APIError is a rejection reported by the exchange API.
type APIError struct {
	HTTPStatus int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("exchange: api error (HTTP %d): code=%d, msg=%s", e.HTTPStatus, e.Code, e.Message)
}

// IsReadTimeout reports whether err is a transport timeout.
func IsReadTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
