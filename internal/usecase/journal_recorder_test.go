package usecase

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"MyPay/internal/domain/models"
)

func sampleRecord() models.ExportRecord {
	return models.ExportRecord{
		ID:           "rec-1",
		Years:        5,
		JobRate:      3.5,
		SalaryUSD:    50000,
		SalaryINR:    4150000,
		MonthlyINR:   345833.33,
		ExchangeRate: 83,
		PredictedAt:  time.Date(2024, 5, 1, 9, 30, 15, 0, time.UTC),
	}
}

func TestJournalRecorderBackends(t *testing.T) {
	ctx := context.Background()

	pub := &fakePublisher{}
	m := newFakeMetrics()
	if err := NewJournalRecorder(pub, nil, m, JournalKafka).Record(ctx, sampleRecord()); err != nil {
		t.Fatalf("kafka: %v", err)
	}
	if len(pub.published) != 1 || m.journal["kafka:ok"] != 1 {
		t.Fatalf("expected publish, got %v %v", pub.published, m.journal)
	}

	store := &fakeHistory{}
	if err := NewJournalRecorder(nil, store, m, JournalClickHouse).Record(ctx, sampleRecord()); err != nil {
		t.Fatalf("clickhouse: %v", err)
	}
	if len(store.stored) != 1 {
		t.Fatalf("expected store")
	}

	if err := NewJournalRecorder(nil, nil, m, JournalNone).Record(ctx, sampleRecord()); err != nil {
		t.Fatalf("none: %v", err)
	}

	if err := NewJournalRecorder(nil, nil, m, "s3").Record(ctx, sampleRecord()); err == nil {
		t.Fatalf("expected unknown backend error")
	}
}

func TestJournalRecorderError(t *testing.T) {
	m := newFakeMetrics()
	err := NewJournalRecorder(&fakePublisher{err: errBoom}, nil, m, JournalKafka).Record(context.Background(), sampleRecord())
	if err == nil {
		t.Fatalf("expected error")
	}
	if m.journal["kafka:error"] != 1 {
		t.Fatalf("expected error metric, got %v", m.journal)
	}
}

func TestKafkaJournalHandler(t *testing.T) {
	store := &fakeHistory{}
	m := newFakeMetrics()
	h := NewKafkaJournalHandler("mypay.predictions", store, m)

	b, err := json.Marshal(sampleRecord())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := h.Handle(context.Background(), b); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(store.stored) != 1 || store.stored[0].ID != "rec-1" || !store.stored[0].PredictedAt.Equal(sampleRecord().PredictedAt) {
		t.Fatalf("unexpected stored %+v", store.stored)
	}

	if err := h.Handle(context.Background(), []byte("{")); err == nil {
		t.Fatalf("expected decode error")
	}
	if err := h.Handle(context.Background(), []byte(`{"years":1}`)); err == nil {
		t.Fatalf("expected invalid record error")
	}
	if m.journal["ingest:ok"] != 1 || m.journal["ingest:invalid"] != 1 {
		t.Fatalf("unexpected metrics %v", m.journal)
	}
}
