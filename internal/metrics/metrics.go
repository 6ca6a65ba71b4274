// Package metrics holds the Prometheus collectors the bot updates while it
// trades. They are registered on the default registry in init and served by
// the HTTP server at /metrics.
//
//   - ocobot_orders_total{kind,side}        orders placed (kind: market|oco)
//   - ocobot_runs_total{strategy,status}    finished strategy runs
//   - ocobot_recoveries_total{side}         market orders placed after an OCO price rejection
//   - ocobot_get_order_retries_total        status lookups retried after a read timeout
//   - ocobot_status_polls_total             status lookups made while polling
//   - ocobot_cooldowns_total                strategy-change cool-downs taken
//   - ocobot_quantity                       quantity the next run will trade
//   - ocobot_filled / ocobot_expired        filled and expired run totals
//   - ocobot_strategy_streak                consecutive runs with the same strategy
//   - ocobot_strategy_selections            strategies handed out by the supplier
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	orders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ocobot_orders_total",
			Help: "Orders placed",
		},
		[]string{"kind", "side"},
	)

	runs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ocobot_runs_total",
			Help: "Strategy runs by strategy and terminal status",
		},
		[]string{"strategy", "status"},
	)

	recoveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ocobot_recoveries_total",
			Help: "Market orders placed after an OCO price relationship rejection",
		},
		[]string{"side"},
	)

	getOrderRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ocobot_get_order_retries_total",
			Help: "Order lookups retried after a read timeout",
		},
	)

	statusPolls = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ocobot_status_polls_total",
			Help: "Order lookups made while polling for a terminal status",
		},
	)

	cooldowns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ocobot_cooldowns_total",
			Help: "Cool-downs taken after the strategy streak limit was reached",
		},
	)

	quantity = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ocobot_quantity",
			Help: "Quantity the next strategy run will trade",
		},
	)

	filled = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ocobot_filled",
			Help: "Runs whose protective order filled",
		},
	)

	expired = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ocobot_expired",
			Help: "Runs whose protective order expired",
		},
	)

	streak = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ocobot_strategy_streak",
			Help: "Consecutive runs of the same strategy",
		},
	)

	selections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ocobot_strategy_selections",
			Help: "Strategies handed out by the supplier since start",
		},
	)
)

func init() {
	prometheus.MustRegister(orders, runs, recoveries, getOrderRetries, statusPolls)
	prometheus.MustRegister(cooldowns, quantity, filled, expired, streak, selections)
}

// IncOrder counts an order placement.
func IncOrder(kind, side string) { orders.WithLabelValues(kind, side).Inc() }

// IncRun counts a finished run.
func IncRun(strategy, status string) { runs.WithLabelValues(strategy, status).Inc() }

// IncRecovery counts a recovery market order.
func IncRecovery(side string) { recoveries.WithLabelValues(side).Inc() }

func IncGetOrderRetry() { getOrderRetries.Inc() }

func IncStatusPoll() { statusPolls.Inc() }

func IncCooldown() { cooldowns.Inc() }

// SetQuantity records the quantity of the next run.
func SetQuantity(v float64) { quantity.Set(v) }

// SetTotals records the filled/expired counters and the strategy streak.
func SetTotals(filledRuns, expiredRuns, strategyStreak int64) {
	filled.Set(float64(filledRuns))
	expired.Set(float64(expiredRuns))
	streak.Set(float64(strategyStreak))
}

// SetSelections records how many strategies the supplier has handed out.
func SetSelections(n int64) { selections.Set(float64(n)) }
