package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"MyPay/internal/domain/models"
	domrepo "MyPay/internal/domain/repository"
	pkgkafka "MyPay/pkg/kafka"
)

// KafkaJournalHandler consumes journaled records and writes them to storage.
type KafkaJournalHandler struct {
	topic   string
	storage domrepo.HistoryStore
	metrics domrepo.Metrics
}

func NewKafkaJournalHandler(topic string, storage domrepo.HistoryStore, metrics domrepo.Metrics) *KafkaJournalHandler {
	return &KafkaJournalHandler{topic: topic, storage: storage, metrics: metrics}
}

func (h *KafkaJournalHandler) Topic() string { return h.topic }

// Handle stores one JSON-encoded ExportRecord.
func (h *KafkaJournalHandler) Handle(ctx context.Context, b []byte) error {
	var r models.ExportRecord
	if err := json.Unmarshal(b, &r); err != nil {
		h.metrics.RecordJournal("ingest", "unmarshal_error")
		return fmt.Errorf("decode record: %w", err)
	}
	if r.ID == "" || r.PredictedAt.IsZero() {
		h.metrics.RecordJournal("ingest", "invalid")
		return fmt.Errorf("record missing id or timestamp")
	}
	// E2E latency from prediction time to now (approx)
	h.metrics.RecordLatency("ingest_e2e", time.Since(r.PredictedAt).Seconds())

	start := time.Now()
	err := h.storage.Store(ctx, r)
	h.metrics.RecordLatency("ch_insert", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordJournal("ingest", "store_error")
		return err
	}
	h.metrics.RecordJournal("ingest", "ok")
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaJournalHandler)(nil)
