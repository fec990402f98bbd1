package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"MyPay/internal/domain/models"
	"MyPay/internal/domain/repository"
	"MyPay/pkg/cache"
)

// CacheRecordStore keeps export records in the cache service until ttl elapses.
type CacheRecordStore struct {
	cache cache.Service
	ttl   time.Duration
}

func NewCacheRecordStore(c cache.Service, ttl time.Duration) repository.RecordStore {
	return &CacheRecordStore{cache: c, ttl: ttl}
}

func (s *CacheRecordStore) Save(ctx context.Context, r models.ExportRecord) error {
	if err := s.cache.Set(ctx, recordKey(r.ID), r, s.ttl); err != nil {
		return fmt.Errorf("save record %s: %w", r.ID, err)
	}
	return nil
}

func (s *CacheRecordStore) Get(ctx context.Context, id string) (models.ExportRecord, error) {
	var r models.ExportRecord
	if err := s.cache.Get(ctx, recordKey(id), &r); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return models.ExportRecord{}, fmt.Errorf("%w: %s", models.ErrRecordNotFound, id)
		}
		return models.ExportRecord{}, fmt.Errorf("get record %s: %w", id, err)
	}
	return r, nil
}

func recordKey(id string) string {
	return cache.GenerateKey("export", id)
}
