package exchange

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"MyPay/internal/domain/models"
	"MyPay/internal/domain/repository"
	"MyPay/internal/domain/service"
	"MyPay/pkg/cache"
	xhttp "MyPay/pkg/http"
	applogger "MyPay/pkg/logger"
)

const (
	DefaultURL          = "https://api.exchangerate-api.com/v4/latest/USD"
	DefaultFallbackRate = 83.0
	DefaultTTL          = time.Hour
)

// Option configures Fetcher.
type Option func(*Fetcher)

// Fetcher resolves the conversion rate from a public API. Any failure yields
// the fallback rate; the resolved value is cached for ttl either way.
type Fetcher struct {
	client   *xhttp.Client
	cache    cache.Service
	metrics  repository.Metrics
	l        *applogger.Logger
	url      string
	base     string
	quote    string
	fallback float64
	ttl      time.Duration
	now      func() time.Time

	// serializes refreshes so one window costs at most one outbound call
	mu sync.Mutex
}

// NewFetcher creates a rate fetcher backed by c.
func NewFetcher(c cache.Service, metrics repository.Metrics, opts ...Option) *Fetcher {
	f := &Fetcher{
		cache:    c,
		metrics:  metrics,
		l:        applogger.Nop(),
		url:      DefaultURL,
		base:     "USD",
		quote:    "INR",
		fallback: DefaultFallbackRate,
		ttl:      DefaultTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = xhttp.NewClient(xhttp.WithTimeout(10 * time.Second))
	}
	return f
}

// Rate returns the cached rate, refreshing it when the window has passed.
func (f *Fetcher) Rate(ctx context.Context) models.ExchangeRate {
	if r, ok := f.cached(ctx); ok {
		f.metrics.RecordRateLookup("cache")
		return r
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	// another caller may have refreshed while we waited
	if r, ok := f.cached(ctx); ok {
		f.metrics.RecordRateLookup("cache")
		return r
	}

	// Detached from the caller: the result is cached for everyone. The
	// client timeout still bounds the call.
	fetchCtx := context.WithoutCancel(ctx)

	start := time.Now()
	r := f.fetch(fetchCtx)
	f.metrics.RecordLatency("rate_fetch", time.Since(start).Seconds())
	f.metrics.RecordRateLookup(string(r.Source))

	if err := f.cache.Set(fetchCtx, f.key(), r, f.ttl); err != nil {
		f.l.Warn("cache exchange rate", applogger.Error(err))
	}
	return r
}

func (f *Fetcher) cached(ctx context.Context) (models.ExchangeRate, bool) {
	var r models.ExchangeRate
	err := f.cache.Get(ctx, f.key(), &r)
	if err == nil && r.Value > 0 {
		return r, true
	}
	if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		f.l.Warn("read cached exchange rate", applogger.Error(err))
	}
	return models.ExchangeRate{}, false
}

func (f *Fetcher) fetch(ctx context.Context) models.ExchangeRate {
	r := models.ExchangeRate{
		Base:      f.base,
		Quote:     f.quote,
		FetchedAt: f.now(),
	}

	v, err := f.fetchLive(ctx)
	if err != nil {
		f.l.Warn("exchange rate unavailable, using fallback",
			applogger.String("url", f.url),
			applogger.Float64("fallback", f.fallback),
			applogger.Error(err),
		)
		r.Value = f.fallback
		r.Source = models.RateSourceFallback
		return r
	}

	r.Value = v
	r.Source = models.RateSourceLive
	f.l.Debug("exchange rate refreshed",
		applogger.String("pair", f.base+"/"+f.quote),
		applogger.Float64("rate", v),
	)
	return r
}

func (f *Fetcher) fetchLive(ctx context.Context) (float64, error) {
	var body struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := f.client.GetJSON(ctx, f.url, &body); err != nil {
		return 0, err
	}
	v, ok := body.Rates[f.quote]
	if !ok {
		return 0, fmt.Errorf("rate %s missing from response", f.quote)
	}
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("rate %s is not a positive number: %v", f.quote, v)
	}
	return v, nil
}

func (f *Fetcher) key() string {
	return cache.GenerateKeyWithParams("rate", f.base, f.quote)
}

// WithURL sets the rate endpoint.
func WithURL(url string) Option {
	return func(f *Fetcher) {
		if url != "" {
			f.url = url
		}
	}
}

// WithPair sets the base and quote currencies.
func WithPair(base, quote string) Option {
	return func(f *Fetcher) {
		f.base = base
		f.quote = quote
	}
}

// WithFallback sets the rate used when the endpoint fails.
func WithFallback(rate float64) Option {
	return func(f *Fetcher) {
		if rate > 0 {
			f.fallback = rate
		}
	}
}

// WithTTL sets how long a resolved rate is reused.
func WithTTL(ttl time.Duration) Option {
	return func(f *Fetcher) {
		if ttl > 0 {
			f.ttl = ttl
		}
	}
}

// WithClient sets the HTTP client.
func WithClient(c *xhttp.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithLogger sets the logger.
func WithLogger(l *applogger.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.l = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) {
		f.now = now
	}
}

var _ service.RateProvider = (*Fetcher)(nil)
