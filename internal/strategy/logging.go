package strategy

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"
)

// Logging records each run of the wrapped strategy.
type Logging struct {
	strategy Strategy
	logger   *slog.Logger
}

// NewLogging wraps strategy.
func NewLogging(strategy Strategy, logger *slog.Logger) *Logging {
	return &Logging{strategy: strategy, logger: logger}
}

func (l *Logging) Kind() Kind { return l.strategy.Kind() }

func (l *Logging) Run(ctx context.Context, quantity decimal.Decimal) (string, error) {
	l.logger.DebugContext(ctx, "run strategy",
		slog.String("strategy", l.strategy.String()),
		slog.String("quantity", quantity.String()),
	)
	return l.strategy.Run(ctx, quantity)
}

func (l *Logging) String() string { return l.strategy.String() }
