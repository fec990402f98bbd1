package exchange

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"MyPay/internal/domain/models"
	"MyPay/pkg/cache"
	xhttp "MyPay/pkg/http"
)

type nopMetrics struct{}

func (nopMetrics) RecordPrediction(string) {}
func (nopMetrics) RecordRateLookup(string) {}
func (nopMetrics) RecordModelLoad(string) {}
func (nopMetrics) RecordJournal(string, string) {}
func (nopMetrics) RecordLatency(string, float64) {}

func newFetcher(t *testing.T, url string, opts ...Option) *Fetcher {
	t.Helper()
	mc := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })
	opts = append([]Option{
		WithURL(url),
		WithClient(xhttp.NewClient(xhttp.WithTimeout(2 * time.Second))),
	}, opts...)
	return NewFetcher(mc, nopMetrics{}, opts...)
}

func TestRateLive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"base":"USD","rates":{"INR":84.25,"EUR":0.92}}`))
	}))
	defer srv.Close()

	r := newFetcher(t, srv.URL).Rate(context.Background())
	if r.Value != 84.25 || r.Source != models.RateSourceLive {
		t.Fatalf("unexpected rate %+v", r)
	}
	if r.Base != "USD" || r.Quote != "INR" {
		t.Fatalf("unexpected pair %s/%s", r.Base, r.Quote)
	}
}

func TestRateFallback(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}},
		{"missing key", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"rates":{"EUR":0.92}}`))
		}},
		{"non-positive", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"rates":{"INR":0}}`))
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			r := newFetcher(t, srv.URL).Rate(context.Background())
			if r.Value != DefaultFallbackRate || r.Source != models.RateSourceFallback {
				t.Fatalf("expected fallback, got %+v", r)
			}
		})
	}
}

func TestRateUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	r := newFetcher(t, url).Rate(context.Background())
	if r.Value != 83.0 {
		t.Fatalf("expected 83.0, got %v", r.Value)
	}
}

func TestRateCached(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte(`{"rates":{"INR":82.5}}`))
	}))
	defer srv.Close()

	f := newFetcher(t, srv.URL)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r := f.Rate(context.Background()); r.Value != 82.5 {
				t.Errorf("unexpected rate %v", r.Value)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("expected one upstream call, got %d", got)
	}
}

func TestFallbackIsCached(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	f := newFetcher(t, srv.URL, WithFallback(80))
	for i := 0; i < 3; i++ {
		if r := f.Rate(context.Background()); r.Value != 80 {
			t.Fatalf("unexpected rate %v", r.Value)
		}
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("expected one upstream call, got %d", got)
	}
}

func TestRateIgnoresCallerCancel(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte(`{"rates":{"INR":87.5}}`))
	}))
	defer srv.Close()

	f := newFetcher(t, srv.URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if r := f.Rate(ctx); r.Value != 87.5 || r.Source != models.RateSourceLive {
		t.Fatalf("expected live rate for a cancelled caller, got %+v", r)
	}
	if r := f.Rate(context.Background()); r.Value != 87.5 {
		t.Fatalf("expected cached live rate, got %+v", r)
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("expected one upstream call, got %d", got)
	}
}
