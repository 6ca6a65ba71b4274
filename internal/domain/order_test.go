package domain

import (
	"context"
	"errors"
	"testing"
)

type fixedPoller struct {
	status string
	calls  []int64
}

func (p *fixedPoller) PollTerminalOrderStatus(_ context.Context, orderID int64) (string, error) {
	p.calls = append(p.calls, orderID)
	return p.status, nil
}

func TestNewMarketOrder(t *testing.T) {
	o, err := NewMarketOrder(19744496177, StatusFilled, "21472.15000000")
	if err != nil {
		t.Fatalf("NewMarketOrder: %v", err)
	}
	if o.ID() != 19744496177 || o.Price() != "21472.15000000" {
		t.Fatalf("unexpected order %v", o)
	}
	want, _ := NewMarketOrder(19744496177, StatusFilled, "21472.15000000")
	if o != want {
		t.Errorf("orders with equal fields should be equal")
	}
}

func TestNewMarketOrder_RejectsNonFilled(t *testing.T) {
	for _, status := range []string{StatusNew, StatusExpired, StatusCanceled, ""} {
		if _, err := NewMarketOrder(1, status, "1.00"); !errors.Is(err, ErrUnexpectedOrderStatus) {
			t.Errorf("status %q: err = %v, want ErrUnexpectedOrderStatus", status, err)
		}
	}
}

func TestOrderStatus(t *testing.T) {
	p := &fixedPoller{status: StatusExpired}

	market, _ := NewMarketOrder(7, StatusFilled, "10.00")
	got, err := market.Status(context.Background(), p)
	if err != nil || got != StatusFilled {
		t.Fatalf("market status = %q, %v", got, err)
	}
	if len(p.calls) != 0 {
		t.Errorf("market order must not poll, got %d calls", len(p.calls))
	}

	maker := NewLimitMakerOrder(19747264211)
	got, err = maker.Status(context.Background(), p)
	if err != nil || got != StatusExpired {
		t.Fatalf("limit maker status = %q, %v", got, err)
	}
	if len(p.calls) != 1 || p.calls[0] != 19747264211 {
		t.Errorf("poll calls = %v", p.calls)
	}
}

func TestIsTerminalStatus(t *testing.T) {
	cases := map[string]bool{
		StatusNew:             false,
		StatusPartiallyFilled: false,
		StatusFilled:          true,
		StatusExpired:         true,
		StatusCanceled:        true,
		StatusRejected:        true,
	}
	for status, want := range cases {
		if got := IsTerminalStatus(status); got != want {
			t.Errorf("IsTerminalStatus(%q) = %v, want %v", status, got, want)
		}
	}
}
