package domain

import (
	"context"
	"time"
)

// ListOpts provides pagination and filtering for list queries.
type ListOpts struct {
	Limit  int
	Offset int
	Since  *time.Time
	Until  *time.Time
}

// RunStore persists the history of bot runs.
type RunStore interface {
	Insert(ctx context.Context, run Run) error
	ListRecent(ctx context.Context, opts ListOpts) ([]Run, error)
	ListBefore(ctx context.Context, before time.Time) ([]Run, error)
}

// OrderStore persists the journal of orders placed by the bot.
type OrderStore interface {
	Create(ctx context.Context, order OrderRecord) error
	UpdateStatus(ctx context.Context, orderID int64, status string) error
	ListRecent(ctx context.Context, opts ListOpts) ([]OrderRecord, error)
	ListBefore(ctx context.Context, before time.Time) ([]OrderRecord, error)
}

// AuditEntry is a single audit log row.
type AuditEntry struct {
	ID        int64
	Event     string
	Detail    map[string]any
	CreatedAt time.Time
}

// AuditStore persists an append-only audit log.
type AuditStore interface {
	Log(ctx context.Context, event string, detail map[string]any) error
	List(ctx context.Context, opts ListOpts) ([]AuditEntry, error)
}
