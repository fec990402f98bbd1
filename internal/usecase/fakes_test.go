package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"MyPay/internal/domain/models"
	"MyPay/internal/domain/service"
)

type fakeMetrics struct {
	mu          sync.Mutex
	predictions map[string]int
	journal     map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{predictions: map[string]int{}, journal: map[string]int{}}
}

func (m *fakeMetrics) RecordPrediction(o string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictions[o]++
}

func (m *fakeMetrics) RecordJournal(b, r string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.journal[b+":"+r]++
}

func (m *fakeMetrics) RecordRateLookup(string) {}
func (m *fakeMetrics) RecordModelLoad(string) {}
func (m *fakeMetrics) RecordLatency(string, float64) {}

// fakeModel predicts fn(years, jobRate) and counts calls.
type fakeModel struct {
	calls int
	fn    func(years, jobRate float64) (float64, error)
}

func (m *fakeModel) Predict(_ context.Context, years, jobRate float64) (float64, error) {
	m.calls++
	return m.fn(years, jobRate)
}

type fakeLoader struct {
	model service.SalaryModel
	err   error
}

func (l fakeLoader) Load(context.Context) (service.SalaryModel, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.model, nil
}

type fixedRate float64

func (r fixedRate) Rate(context.Context) models.ExchangeRate {
	return models.ExchangeRate{Base: "USD", Quote: "INR", Value: float64(r), Source: models.RateSourceLive}
}

type memRecords struct {
	m map[string]models.ExportRecord
}

func (s *memRecords) Save(_ context.Context, r models.ExportRecord) error {
	if s.m == nil {
		s.m = map[string]models.ExportRecord{}
	}
	s.m[r.ID] = r
	return nil
}

func (s *memRecords) Get(_ context.Context, id string) (models.ExportRecord, error) {
	r, ok := s.m[id]
	if !ok {
		return models.ExportRecord{}, models.ErrRecordNotFound
	}
	return r, nil
}

type fakeJournal struct {
	records []models.ExportRecord
	err     error
}

func (j *fakeJournal) Record(_ context.Context, r models.ExportRecord) error {
	j.records = append(j.records, r)
	return j.err
}

func (j *fakeJournal) Close() error { return nil }

type fakePublisher struct {
	published []models.ExportRecord
	err       error
}

func (p *fakePublisher) Publish(_ context.Context, r models.ExportRecord) error {
	p.published = append(p.published, r)
	return p.err
}

func (p *fakePublisher) Close() error { return nil }

type fakeHistory struct {
	stored []models.ExportRecord
	err    error
}

func (s *fakeHistory) Store(_ context.Context, r models.ExportRecord) error {
	if s.err != nil {
		return s.err
	}
	s.stored = append(s.stored, r)
	return nil
}

func (s *fakeHistory) StoreBatch(ctx context.Context, rs []models.ExportRecord) error {
	for _, r := range rs {
		if err := s.Store(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (s *fakeHistory) Query(context.Context, time.Time, time.Time, int) ([]models.ExportRecord, error) {
	return s.stored, s.err
}

func (s *fakeHistory) Health(context.Context) error { return nil }
func (s *fakeHistory) Close() error { return nil }

var errBoom = errors.New("boom")
