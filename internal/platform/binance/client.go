// Package binance is the REST client for the Binance spot and cross-margin
// order endpoints. It implements exchange.Client.
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alanyoungcy/ocobot/internal/crypto"
	"github.com/alanyoungcy/ocobot/internal/domain"
	"github.com/alanyoungcy/ocobot/internal/exchange"
)

// DefaultBaseURL is the production REST root.
const DefaultBaseURL = "https://api.binance.com"

// Account selects the endpoint family orders are routed to.
type Account string

const (
	AccountSpot   Account = "spot"
	AccountMargin Account = "margin"
)

// endpoints groups the paths of one account type.
type endpoints struct {
	order    string
	ocoOrder string
}

var accountEndpoints = map[Account]endpoints{
	AccountSpot:   {order: "/api/v3/order", ocoOrder: "/api/v3/order/oco"},
	AccountMargin: {order: "/sapi/v1/margin/order", ocoOrder: "/sapi/v1/margin/order/oco"},
}

// Config configures a Client.
type Config struct {
	BaseURL    string
	Account    Account
	RecvWindow time.Duration
	Timeout    time.Duration
}

// Client places and queries orders. The HTTP client timeout bounds each
// request; a timed out lookup surfaces as a net.Error with Timeout() true.
type Client struct {
	baseURL    string
	paths      endpoints
	recvWindow time.Duration
	httpClient *http.Client
	auth       *crypto.HMACAuth
	newID      func() string
}

var _ exchange.Client = (*Client)(nil)

// NewClient creates a client for the given account type.
func NewClient(cfg Config, auth *crypto.HMACAuth) (*Client, error) {
	account := cfg.Account
	if account == "" {
		account = AccountSpot
	}
	paths, ok := accountEndpoints[account]
	if !ok {
		return nil, fmt.Errorf("binance: unknown account type %q", cfg.Account)
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		paths:      paths,
		recvWindow: cfg.RecvWindow,
		httpClient: &http.Client{Timeout: timeout},
		auth:       auth,
		newID:      uuid.NewString,
	}, nil
}

// CreateOrder places a market order and asks for the full response so the
// fills are included.
func (c *Client) CreateOrder(ctx context.Context, req exchange.OrderRequest) (exchange.OrderResponse, error) {
	params := url.Values{}
	params.Set("symbol", req.Symbol)
	params.Set("side", string(req.Side))
	params.Set("type", string(req.Type))
	params.Set("quantity", req.Quantity)
	params.Set("newClientOrderId", c.clientOrderID())
	params.Set("newOrderRespType", "FULL")

	var out exchange.OrderResponse
	if err := c.doSigned(ctx, http.MethodPost, c.paths.order, params, &out); err != nil {
		return exchange.OrderResponse{}, fmt.Errorf("binance: create order: %w", err)
	}
	return out, nil
}

// CreateOCOOrder places a limit maker plus stop-loss-limit pair.
func (c *Client) CreateOCOOrder(ctx context.Context, req exchange.OCORequest) (exchange.OCOResponse, error) {
	params := url.Values{}
	params.Set("symbol", req.Symbol)
	params.Set("side", string(req.Side))
	params.Set("quantity", req.Quantity)
	params.Set("price", req.Price)
	params.Set("stopPrice", req.StopPrice)
	params.Set("stopLimitPrice", req.StopLimitPrice)
	params.Set("stopLimitTimeInForce", req.StopLimitTimeInForce)
	params.Set("listClientOrderId", c.clientOrderID())
	params.Set("newOrderRespType", "FULL")

	var out exchange.OCOResponse
	if err := c.doSigned(ctx, http.MethodPost, c.paths.ocoOrder, params, &out); err != nil {
		return exchange.OCOResponse{}, fmt.Errorf("binance: create oco order: %w", err)
	}
	return out, nil
}

// GetOrder queries a single order by exchange id.
func (c *Client) GetOrder(ctx context.Context, req exchange.GetOrderRequest) (exchange.OrderResponse, error) {
	params := url.Values{}
	params.Set("symbol", req.Symbol)
	params.Set("orderId", strconv.FormatInt(req.OrderID, 10))

	var out exchange.OrderResponse
	if err := c.doSigned(ctx, http.MethodGet, c.paths.order, params, &out); err != nil {
		return exchange.OrderResponse{}, fmt.Errorf("binance: get order %d: %w", req.OrderID, err)
	}
	return out, nil
}

// clientOrderID returns a fresh id within the 36 character limit.
func (c *Client) clientOrderID() string {
	return strings.ReplaceAll(c.newID(), "-", "")
}

// doSigned signs params, sends them as the query string (GET) or the form
// body (POST), and decodes a successful response into out.
func (c *Client) doSigned(ctx context.Context, method, path string, params url.Values, out any) error {
	signed := c.auth.SignParams(params, c.recvWindow)

	var (
		target = c.baseURL + path
		body   io.Reader
	)
	if method == http.MethodGet {
		target += "?" + signed
	} else {
		body = strings.NewReader(signed)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, v := range c.auth.Headers() {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if err := checkHTTPStatus(resp.StatusCode, respBody); err != nil {
		return err
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// apiErrorBody is the error payload of the REST API.
type apiErrorBody struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	apiErr := &exchange.APIError{HTTPStatus: statusCode, Message: string(body)}
	var payload apiErrorBody
	if err := json.Unmarshal(body, &payload); err == nil && payload.Msg != "" {
		apiErr.Code = payload.Code
		apiErr.Message = payload.Msg
	}

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %w", domain.ErrUnauthorized, apiErr)
	case http.StatusTooManyRequests, http.StatusTeapot:
		return fmt.Errorf("%w: %w", domain.ErrRateLimited, apiErr)
	default:
		return apiErr
	}
}
