package repository

import (
	"context"
	"time"

	"MyPay/internal/domain/models"
)

// Journal receives every exported prediction record.
type Journal interface {
	Record(ctx context.Context, r models.ExportRecord) error
	Close() error
}

// RecordStore keeps export records for download.
type RecordStore interface {
	Save(ctx context.Context, r models.ExportRecord) error
	Get(ctx context.Context, id string) (models.ExportRecord, error)
}

// HistoryStore persists records and answers range queries.
type HistoryStore interface {
	Store(ctx context.Context, r models.ExportRecord) error
	StoreBatch(ctx context.Context, rs []models.ExportRecord) error
	Query(ctx context.Context, from, to time.Time, limit int) ([]models.ExportRecord, error)
	Health(ctx context.Context) error
	Close() error
}

// Publisher ships records to a message broker.
type Publisher interface {
	Publish(ctx context.Context, r models.ExportRecord) error
	Close() error
}

type Metrics interface {
	RecordPrediction(outcome string)
	RecordRateLookup(source string)
	RecordModelLoad(result string)
	RecordJournal(backend, result string)
	RecordLatency(op string, seconds float64)
}
