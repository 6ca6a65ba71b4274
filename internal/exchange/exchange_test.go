package exchange

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/alanyoungcy/ocobot/internal/domain"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "read timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

// scriptedClient returns queued GetOrder results in order and fixed results
// for the placement calls.
type scriptedClient struct {
	getResults []error
	getCalls   int
	orderErr   error
	ocoErr     error
	orderCalls int
	ocoCalls   int
}

func (c *scriptedClient) CreateOrder(_ context.Context, req OrderRequest) (OrderResponse, error) {
	c.orderCalls++
	if c.orderErr != nil {
		return OrderResponse{}, c.orderErr
	}
	return OrderResponse{Symbol: req.Symbol, OrderID: 1, Status: domain.StatusFilled}, nil
}

func (c *scriptedClient) CreateOCOOrder(_ context.Context, req OCORequest) (OCOResponse, error) {
	c.ocoCalls++
	if c.ocoErr != nil {
		return OCOResponse{}, c.ocoErr
	}
	return OCOResponse{Symbol: req.Symbol, ListOrderStatus: domain.ListStatusExecuting}, nil
}

func (c *scriptedClient) GetOrder(_ context.Context, req GetOrderRequest) (OrderResponse, error) {
	i := c.getCalls
	c.getCalls++
	if i < len(c.getResults) && c.getResults[i] != nil {
		return OrderResponse{}, c.getResults[i]
	}
	return OrderResponse{Symbol: req.Symbol, OrderID: req.OrderID, Status: domain.StatusFilled}, nil
}

func TestIsReadTimeout(t *testing.T) {
	if !IsReadTimeout(timeoutError{}) {
		t.Error("timeoutError not classified as timeout")
	}
	if !IsReadTimeout(fmt.Errorf("wrapped: %w", timeoutError{})) {
		t.Error("wrapped timeoutError not classified as timeout")
	}
	if IsReadTimeout(errors.New("connection refused")) {
		t.Error("plain error classified as timeout")
	}
}

func TestRetryClientGetOrder(t *testing.T) {
	other := errors.New("boom")
	tests := []struct {
		name      string
		results   []error
		wantCalls int
		wantErr   error
	}{
		{name: "first attempt succeeds", results: nil, wantCalls: 1},
		{name: "two timeouts then success", results: []error{timeoutError{}, timeoutError{}}, wantCalls: 3},
		{name: "three timeouts", results: []error{timeoutError{}, timeoutError{}, timeoutError{}}, wantCalls: 3, wantErr: domain.ErrRetryLimitExceeded},
		{name: "other error is not retried", results: []error{other}, wantCalls: 1, wantErr: other},
		{name: "timeout then other error", results: []error{timeoutError{}, other}, wantCalls: 2, wantErr: other},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &scriptedClient{getResults: tt.results}
			c := NewRetryClient(fake)
			resp, err := c.GetOrder(context.Background(), GetOrderRequest{Symbol: "BTCUSDT", OrderID: 7})
			if fake.getCalls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", fake.getCalls, tt.wantCalls)
			}
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.OrderID != 7 || resp.Status != domain.StatusFilled {
				t.Errorf("resp = %+v", resp)
			}
		})
	}
}

func TestRetryClientRetryLimitIsGetOrderError(t *testing.T) {
	fake := &scriptedClient{getResults: []error{timeoutError{}, timeoutError{}, timeoutError{}}}
	_, err := NewRetryClient(fake).GetOrder(context.Background(), GetOrderRequest{OrderID: 1})
	if !errors.Is(err, domain.ErrGetOrder) {
		t.Fatalf("err = %v, want ErrGetOrder", err)
	}
}

func TestRetryClientDoesNotRetryPlacements(t *testing.T) {
	fake := &scriptedClient{orderErr: timeoutError{}, ocoErr: timeoutError{}}
	c := NewRetryClient(fake)
	if _, err := c.CreateOrder(context.Background(), OrderRequest{}); err == nil {
		t.Error("CreateOrder: expected error")
	}
	if _, err := c.CreateOCOOrder(context.Background(), OCORequest{}); err == nil {
		t.Error("CreateOCOOrder: expected error")
	}
	if fake.orderCalls != 1 || fake.ocoCalls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", fake.orderCalls, fake.ocoCalls)
	}
}

func TestLoggingClientClassifiesErrors(t *testing.T) {
	priceErr := &APIError{HTTPStatus: 400, Code: -2010, Message: "The relationship of the prices for the orders is not correct."}
	otherAPIErr := &APIError{HTTPStatus: 400, Code: -2010, Message: "Account has insufficient balance for requested action."}

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	t.Run("market order", func(t *testing.T) {
		c := NewLoggingClient(&scriptedClient{orderErr: errors.New("boom")}, logger)
		_, err := c.CreateOrder(context.Background(), OrderRequest{})
		if !errors.Is(err, domain.ErrOrder) {
			t.Fatalf("err = %v, want ErrOrder", err)
		}
	})

	t.Run("oco price relationship", func(t *testing.T) {
		c := NewLoggingClient(&scriptedClient{ocoErr: priceErr}, logger)
		_, err := c.CreateOCOOrder(context.Background(), OCORequest{})
		if !errors.Is(err, domain.ErrOcoPriceRelation) {
			t.Fatalf("err = %v, want ErrOcoPriceRelation", err)
		}
		if !errors.Is(err, domain.ErrOcoOrder) {
			t.Fatalf("err = %v, want ErrOcoOrder", err)
		}
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.Code != -2010 {
			t.Fatalf("api error not preserved: %v", err)
		}
	})

	t.Run("oco other rejection", func(t *testing.T) {
		c := NewLoggingClient(&scriptedClient{ocoErr: otherAPIErr}, logger)
		_, err := c.CreateOCOOrder(context.Background(), OCORequest{})
		if !errors.Is(err, domain.ErrOcoOrder) {
			t.Fatalf("err = %v, want ErrOcoOrder", err)
		}
		if errors.Is(err, domain.ErrOcoPriceRelation) {
			t.Fatalf("err = %v, must not be ErrOcoPriceRelation", err)
		}
	})

	t.Run("get order", func(t *testing.T) {
		c := NewLoggingClient(&scriptedClient{getResults: []error{errors.New("boom")}}, logger)
		_, err := c.GetOrder(context.Background(), GetOrderRequest{})
		if !errors.Is(err, domain.ErrGetOrder) {
			t.Fatalf("err = %v, want ErrGetOrder", err)
		}
	})
}

func TestLoggingClientLogsRequests(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c := NewLoggingClient(&scriptedClient{}, logger)

	_, err := c.CreateOCOOrder(context.Background(), OCORequest{
		Symbol:   "BTCUSDT",
		Side:     domain.OrderSideSell,
		Quantity: "0.001",
		Price:    "21482.89",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"making the OCO order", "symbol=BTCUSDT", "side=SELL", "price=21482.89", "component=exchange_client"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}
}
