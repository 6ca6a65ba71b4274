package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/ocobot/internal/domain"
)

// OrderStore implements domain.OrderStore using PostgreSQL.
type OrderStore struct {
	pool *pgxpool.Pool
}

// NewOrderStore creates a new OrderStore backed by the given connection pool.
func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

// Create inserts a journal row. The price is NULL for maker legs whose fill
// price is not known yet.
func (s *OrderStore) Create(ctx context.Context, o domain.OrderRecord) error {
	var price *string
	if o.Price != "" {
		price = &o.Price
	}

	const query = `
		INSERT INTO orders (
			order_id, symbol, kind, side, quantity, price, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (order_id) DO UPDATE SET status = EXCLUDED.status, updated_at = NOW()`

	_, err := s.pool.Exec(ctx, query,
		o.OrderID, o.Symbol, string(o.Kind), string(o.Side),
		o.Quantity, price, o.Status, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: create order %d: %w", o.OrderID, err)
	}
	return nil
}

// UpdateStatus changes the status of a journaled order.
func (s *OrderStore) UpdateStatus(ctx context.Context, orderID int64, status string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE orders SET status = $1, updated_at = NOW() WHERE order_id = $2`, status, orderID)
	if err != nil {
		return fmt.Errorf("postgres: update order status %d: %w", orderID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

const orderSelectCols = `order_id, symbol, kind, side, quantity::text,
	COALESCE(price::text, ''), status, created_at`

func scanOrderRows(rows pgx.Rows) ([]domain.OrderRecord, error) {
	var orders []domain.OrderRecord
	for rows.Next() {
		var o domain.OrderRecord
		var kind, side string
		if err := rows.Scan(
			&o.OrderID, &o.Symbol, &kind, &side, &o.Quantity,
			&o.Price, &o.Status, &o.CreatedAt,
		); err != nil {
			return nil, err
		}
		o.Kind = domain.OrderKind(kind)
		o.Side = domain.OrderSide(side)
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// ListRecent returns journaled orders newest first.
func (s *OrderStore) ListRecent(ctx context.Context, opts domain.ListOpts) ([]domain.OrderRecord, error) {
	query, args := appendListOpts(`SELECT `+orderSelectCols+` FROM orders WHERE 1=1`, nil, "created_at", opts)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list orders: %w", err)
	}
	defer rows.Close()

	orders, err := scanOrderRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan orders: %w", err)
	}
	return orders, nil
}

// ListBefore returns all orders created strictly before the given time,
// oldest first (for archiving).
func (s *OrderStore) ListBefore(ctx context.Context, before time.Time) ([]domain.OrderRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+orderSelectCols+` FROM orders WHERE created_at < $1 ORDER BY created_at ASC`, before)
	if err != nil {
		return nil, fmt.Errorf("postgres: list orders before: %w", err)
	}
	defer rows.Close()
	return scanOrderRows(rows)
}
