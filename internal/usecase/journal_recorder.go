package usecase

import (
	"context"
	"fmt"
	"time"

	"MyPay/internal/domain/models"
	drepo "MyPay/internal/domain/repository"
)

// Journal backends.
const (
	JournalNone       = "none"
	JournalKafka      = "kafka"
	JournalClickHouse = "clickhouse"
)

// JournalRecorder routes exported records to the configured backend.
type JournalRecorder struct {
	pub     drepo.Publisher
	store   drepo.HistoryStore
	metrics drepo.Metrics
	backend string
}

// NewJournalRecorder creates a recorder; pub and store may be nil when their
// backend is not selected.
func NewJournalRecorder(pub drepo.Publisher, store drepo.HistoryStore, metrics drepo.Metrics, backend string) *JournalRecorder {
	return &JournalRecorder{
		pub:     pub,
		store:   store,
		metrics: metrics,
		backend: backend,
	}
}

// Record sends r to the backend.
func (j *JournalRecorder) Record(ctx context.Context, r models.ExportRecord) error {
	start := time.Now()
	var err error

	switch j.backend {
	case JournalNone, "":
		return nil
	case JournalKafka:
		err = j.pub.Publish(ctx, r)
	case JournalClickHouse:
		err = j.store.Store(ctx, r)
	default:
		err = fmt.Errorf("unknown backend: %s", j.backend)
	}

	if err != nil {
		j.metrics.RecordJournal(j.backend, "error")
		return fmt.Errorf("journal record: %w", err)
	}

	j.metrics.RecordJournal(j.backend, "ok")
	j.metrics.RecordLatency("journal_"+j.backend, time.Since(start).Seconds())
	return nil
}

// Close closes underlying resources if available.
func (j *JournalRecorder) Close() error {
	if j.pub != nil {
		if err := j.pub.Close(); err != nil {
			return err
		}
	}
	if j.store != nil {
		return j.store.Close()
	}
	return nil
}

var _ drepo.Journal = (*JournalRecorder)(nil)
