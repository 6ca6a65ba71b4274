package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/ocobot/internal/domain"
)

// RunStore implements domain.RunStore using PostgreSQL.
type RunStore struct {
	pool *pgxpool.Pool
}

// NewRunStore creates a new RunStore backed by the given connection pool.
func NewRunStore(pool *pgxpool.Pool) *RunStore {
	return &RunStore{pool: pool}
}

// Insert records a finished run. Inserting the same run id twice is a no-op.
func (s *RunStore) Insert(ctx context.Context, r domain.Run) error {
	const query = `
		INSERT INTO runs (
			id, number, strategy, symbol, quantity, status,
			filled, expired, started_at, finished_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING`

	_, err := s.pool.Exec(ctx, query,
		r.ID, r.Number, r.Strategy, r.Symbol, r.Quantity, r.Status,
		r.Filled, r.Expired, r.StartedAt, r.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert run %d: %w", r.Number, err)
	}
	return nil
}

const runSelectCols = `id, number, strategy, symbol, quantity::text, status,
	filled, expired, started_at, finished_at`

func scanRunRows(rows pgx.Rows) ([]domain.Run, error) {
	var runs []domain.Run
	for rows.Next() {
		var r domain.Run
		if err := rows.Scan(
			&r.ID, &r.Number, &r.Strategy, &r.Symbol, &r.Quantity, &r.Status,
			&r.Filled, &r.Expired, &r.StartedAt, &r.FinishedAt,
		); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// ListRecent returns runs newest first.
func (s *RunStore) ListRecent(ctx context.Context, opts domain.ListOpts) ([]domain.Run, error) {
	query, args := appendListOpts(`SELECT `+runSelectCols+` FROM runs WHERE 1=1`, nil, "finished_at", opts)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list runs: %w", err)
	}
	defer rows.Close()

	runs, err := scanRunRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan runs: %w", err)
	}
	return runs, nil
}

// ListBefore returns all runs finished strictly before the given time, oldest
// first (for archiving).
func (s *RunStore) ListBefore(ctx context.Context, before time.Time) ([]domain.Run, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+runSelectCols+` FROM runs WHERE finished_at < $1 ORDER BY finished_at ASC`, before)
	if err != nil {
		return nil, fmt.Errorf("postgres: list runs before: %w", err)
	}
	defer rows.Close()
	return scanRunRows(rows)
}
