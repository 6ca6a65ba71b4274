package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/alanyoungcy/ocobot/internal/domain"
)

// OrderHandler serves the order journal.
type OrderHandler struct {
	orders domain.OrderStore
	logger *slog.Logger
}

// NewOrderHandler creates an OrderHandler backed by the given store.
func NewOrderHandler(orders domain.OrderStore, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logHandler(logger, "orders")}
}

type orderJSON struct {
	OrderID   int64     `json:"order_id"`
	Symbol    string    `json:"symbol"`
	Kind      string    `json:"kind"`
	Side      string    `json:"side"`
	Quantity  string    `json:"quantity"`
	Price     string    `json:"price,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type listOrdersResponse struct {
	Orders []orderJSON `json:"orders"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

// ListOrders returns journaled orders newest first.
// GET /api/orders?limit=50&offset=0
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	opts := parseListOpts(r)

	orders, err := h.orders.ListRecent(r.Context(), opts)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list orders failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	resp := listOrdersResponse{Orders: make([]orderJSON, 0, len(orders)), Limit: opts.Limit, Offset: opts.Offset}
	for _, o := range orders {
		resp.Orders = append(resp.Orders, orderJSON{
			OrderID:   o.OrderID,
			Symbol:    o.Symbol,
			Kind:      string(o.Kind),
			Side:      string(o.Side),
			Quantity:  o.Quantity,
			Price:     o.Price,
			Status:    o.Status,
			CreatedAt: o.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
