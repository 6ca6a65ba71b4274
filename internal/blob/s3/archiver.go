package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alanyoungcy/ocobot/internal/domain"
)

// multipartThreshold is the payload size above which archives are uploaded
// with the multipart manager instead of a single PutObject.
const multipartThreshold = 16 * 1024 * 1024

// RunArchiveStore provides read access to runs for archival purposes.
type RunArchiveStore interface {
	ListBefore(ctx context.Context, before time.Time) ([]domain.Run, error)
}

// OrderArchiveStore provides read access to the order journal for archival
// purposes.
type OrderArchiveStore interface {
	ListBefore(ctx context.Context, before time.Time) ([]domain.OrderRecord, error)
}

// SizeReader reports the stored size of an uploaded object.
type SizeReader interface {
	Size(ctx context.Context, path string) (int64, error)
}

// Archiver implements domain.Archiver by serializing old records to JSONL and
// uploading them. Records are copied, not deleted: pruning the primary store
// is a separate step once the archive has been checked.
type Archiver struct {
	writer domain.BlobWriter
	reader SizeReader
	runs   RunArchiveStore
	orders OrderArchiveStore
	audit  domain.AuditStore
}

// NewArchiver creates an Archiver. reader may be nil, in which case uploads
// are not verified.
func NewArchiver(
	writer domain.BlobWriter,
	reader SizeReader,
	runs RunArchiveStore,
	orders OrderArchiveStore,
	audit domain.AuditStore,
) *Archiver {
	return &Archiver{
		writer: writer,
		reader: reader,
		runs:   runs,
		orders: orders,
		audit:  audit,
	}
}

type runLine struct {
	ID         string    `json:"id"`
	Number     int64     `json:"number"`
	Strategy   string    `json:"strategy"`
	Symbol     string    `json:"symbol"`
	Quantity   string    `json:"quantity"`
	Status     string    `json:"status"`
	Filled     int64     `json:"filled"`
	Expired    int64     `json:"expired"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

type orderLine struct {
	OrderID   int64     `json:"order_id"`
	Symbol    string    `json:"symbol"`
	Kind      string    `json:"kind"`
	Side      string    `json:"side"`
	Quantity  string    `json:"quantity"`
	Price     string    `json:"price,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ArchiveRuns uploads every run finished before the cutoff to
// archive/runs/YYYY-MM/YYYY-MM-DD.jsonl and returns how many were archived.
func (a *Archiver) ArchiveRuns(ctx context.Context, before time.Time) (int64, error) {
	runs, err := a.runs.ListBefore(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive runs query: %w", err)
	}
	lines := make([]runLine, len(runs))
	for i, r := range runs {
		lines[i] = runLine(r)
	}
	return archive(ctx, a, "runs", before, lines)
}

// ArchiveOrders uploads every journaled order created before the cutoff to
// archive/orders/YYYY-MM/YYYY-MM-DD.jsonl and returns how many were archived.
func (a *Archiver) ArchiveOrders(ctx context.Context, before time.Time) (int64, error) {
	orders, err := a.orders.ListBefore(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive orders query: %w", err)
	}
	lines := make([]orderLine, len(orders))
	for i, o := range orders {
		lines[i] = orderLine{
			OrderID:   o.OrderID,
			Symbol:    o.Symbol,
			Kind:      string(o.Kind),
			Side:      string(o.Side),
			Quantity:  o.Quantity,
			Price:     o.Price,
			Status:    o.Status,
			CreatedAt: o.CreatedAt,
		}
	}
	return archive(ctx, a, "orders", before, lines)
}

func archive[T any](ctx context.Context, a *Archiver, kind string, before time.Time, records []T) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	buf, err := marshalJSONL(records)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive %s marshal: %w", kind, err)
	}

	path := archivePath(kind, before)
	if len(buf) > multipartThreshold {
		err = a.writer.PutMultipart(ctx, path, bytes.NewReader(buf), minPartSize)
	} else {
		err = a.writer.Put(ctx, path, bytes.NewReader(buf), "application/x-ndjson")
	}
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive %s upload: %w", kind, err)
	}

	if a.reader != nil {
		size, err := a.reader.Size(ctx, path)
		if err != nil {
			return 0, fmt.Errorf("s3blob: archive %s verify: %w", kind, err)
		}
		if size != int64(len(buf)) {
			return 0, fmt.Errorf("s3blob: archive %s verify: stored %d bytes, uploaded %d", kind, size, len(buf))
		}
	}

	count := int64(len(records))
	if a.audit != nil {
		if err := a.audit.Log(ctx, "archive."+kind, map[string]any{
			"path":   path,
			"count":  count,
			"bytes":  len(buf),
			"before": before.Format(time.RFC3339),
		}); err != nil {
			return count, fmt.Errorf("s3blob: archive %s audit log: %w", kind, err)
		}
	}
	return count, nil
}

// archivePath builds the object key for an archive file, partitioned by the
// month of the cutoff time.
//
//	archive/runs/2025-01/2025-01-15.jsonl
//	archive/orders/2025-01/2025-01-15.jsonl
func archivePath(kind string, before time.Time) string {
	before = before.UTC()
	return fmt.Sprintf("archive/%s/%s/%s.jsonl", kind, before.Format("2006-01"), before.Format("2006-01-02"))
}

// marshalJSONL serialises records as newline-delimited JSON.
func marshalJSONL[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("jsonl encode record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

// Compile-time interface check.
var _ domain.Archiver = (*Archiver)(nil)
