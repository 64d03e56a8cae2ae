package store

import (
	"context"
	"time"

	"github.com/contentiq/contentiq/internal/domain/providers"
	"github.com/contentiq/contentiq/internal/infrastructure/observability"
)

// InstrumentedStore decorates an AnalyticsStore with operation metrics.
type InstrumentedStore struct {
	inner   providers.AnalyticsStore
	backend string
	metrics *observability.Metrics
}

// NewInstrumentedStore wraps a store with per-operation metrics. The
// backend label distinguishes redis from memory in dashboards.
func NewInstrumentedStore(inner providers.AnalyticsStore, backend string, metrics *observability.Metrics) providers.AnalyticsStore {
	return &InstrumentedStore{inner: inner, backend: backend, metrics: metrics}
}

func (s *InstrumentedStore) record(ctx context.Context, op string, start time.Time, err error) {
	observability.RecordStoreMetric(ctx, s.metrics, s.backend, op, time.Since(start), err)
}

func (s *InstrumentedStore) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	val, err := s.inner.Get(ctx, key)
	s.record(ctx, "get", start, err)
	return val, err
}

func (s *InstrumentedStore) SetWithExpiry(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	start := time.Now()
	err := s.inner.SetWithExpiry(ctx, key, value, ttl)
	s.record(ctx, "set", start, err)
	return err
}

func (s *InstrumentedStore) Increment(ctx context.Context, key string) (int64, error) {
	start := time.Now()
	val, err := s.inner.Increment(ctx, key)
	s.record(ctx, "incr", start, err)
	return val, err
}

func (s *InstrumentedStore) SetExpiry(ctx context.Context, key string, ttl time.Duration) error {
	start := time.Now()
	err := s.inner.SetExpiry(ctx, key, ttl)
	s.record(ctx, "expire", start, err)
	return err
}

func (s *InstrumentedStore) ListPushFront(ctx context.Context, key string, value string) error {
	start := time.Now()
	err := s.inner.ListPushFront(ctx, key, value)
	s.record(ctx, "lpush", start, err)
	return err
}

func (s *InstrumentedStore) ListTrim(ctx context.Context, key string, start, stop int64) error {
	begin := time.Now()
	err := s.inner.ListTrim(ctx, key, start, stop)
	s.record(ctx, "ltrim", begin, err)
	return err
}

func (s *InstrumentedStore) ListRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	begin := time.Now()
	vals, err := s.inner.ListRange(ctx, key, start, stop)
	s.record(ctx, "lrange", begin, err)
	return vals, err
}

func (s *InstrumentedStore) KeysByPrefix(ctx context.Context, prefix string) ([]string, error) {
	start := time.Now()
	keys, err := s.inner.KeysByPrefix(ctx, prefix)
	s.record(ctx, "scan", start, err)
	return keys, err
}
