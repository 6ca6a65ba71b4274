// Package strategy holds the buy and sell trade cycles and the suppliers
// that decide which one runs next.
package strategy

import (
	"context"

	"github.com/shopspring/decimal"
)

// Kind is the stable discriminant of a strategy. Two strategies are the same
// strategy when their kinds are equal.
type Kind string

const (
	KindBuy  Kind = "buy"
	KindSell Kind = "sell"
)

// Strategy runs one trade cycle and returns the terminal status of its
// protective order.
type Strategy interface {
	Kind() Kind
	Run(ctx context.Context, quantity decimal.Decimal) (string, error)
	String() string
}

// Supplier hands out the strategy for the next run.
type Supplier interface {
	NextStrategy() Strategy
}
