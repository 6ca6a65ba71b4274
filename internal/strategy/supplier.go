package strategy

import (
	"errors"
	"log/slog"

	"github.com/alanyoungcy/ocobot/internal/action"
)

// CycleSupplier returns its strategies in order, wrapping back to the first
// after the last.
type CycleSupplier struct {
	strategies []Strategy
	next       int
}

// NewCycleSupplier returns a supplier cycling over strategies.
func NewCycleSupplier(strategies ...Strategy) (*CycleSupplier, error) {
	if len(strategies) == 0 {
		return nil, errors.New("strategy: cycle needs at least one strategy")
	}
	return &CycleSupplier{strategies: strategies}, nil
}

func (s *CycleSupplier) NextStrategy() Strategy {
	st := s.strategies[s.next]
	s.next = (s.next + 1) % len(s.strategies)
	return st
}

// CountingSupplier increments a counter on every call.
type CountingSupplier struct {
	supplier Supplier
	counter  *action.Counter
}

func NewCountingSupplier(supplier Supplier, counter *action.Counter) *CountingSupplier {
	return &CountingSupplier{supplier: supplier, counter: counter}
}

func (s *CountingSupplier) NextStrategy() Strategy {
	st := s.supplier.NextStrategy()
	s.counter.Inc()
	return st
}

// LoggingSupplier records every strategy handed out.
type LoggingSupplier struct {
	supplier Supplier
	logger   *slog.Logger
}

func NewLoggingSupplier(supplier Supplier, logger *slog.Logger) *LoggingSupplier {
	return &LoggingSupplier{
		supplier: supplier,
		logger:   logger.With(slog.String("component", "strategy_supplier")),
	}
}

func (s *LoggingSupplier) NextStrategy() Strategy {
	st := s.supplier.NextStrategy()
	s.logger.Debug("next strategy", slog.String("strategy", st.String()))
	return st
}
