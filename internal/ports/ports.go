package ports

import (
	"context"
	"time"

	"BatchIngest/internal/domain"
)

// RecordSource opens a lazy, finite sequence of raw payloads from a file.
type RecordSource interface {
	Open(ctx context.Context, path string) (RecordIterator, error)
}

// RecordIterator yields payloads in file order and io.EOF when the
// sequence is exhausted. A malformed line is returned as a payload with
// ParseErr set, never as an iterator error.
type RecordIterator interface {
	Next(ctx context.Context) (domain.RawPayload, error)
	Close() error
}

// Store wraps the relational service: append-only raw archiving,
// idempotent-by-key upserts, and error logging. Each call is a
// single-record transaction.
type Store interface {
	ArchiveRaw(ctx context.Context, raw domain.RawRecord) error
	UpsertProduct(ctx context.Context, product domain.Product) error
	UpsertOrder(ctx context.Context, order domain.Order) error
	LogError(ctx context.Context, record domain.ErrorRecord) error
	Close() error
}

// Scheduler controls when ingest runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
