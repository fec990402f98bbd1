package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	predictions *prometheus.CounterVec
	rateLookups *prometheus.CounterVec
	modelLoads  *prometheus.CounterVec
	journal     *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// New creates a Prometheus metrics recorder registered on reg.
// A nil reg falls back to the default registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		predictions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mypay_predictions_total",
				Help: "Total number of salary predictions by outcome",
			},
			[]string{"outcome"},
		),
		rateLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mypay_rate_lookups_total",
				Help: "Exchange rate resolutions by source",
			},
			[]string{"source"},
		),
		modelLoads: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mypay_model_loads_total",
				Help: "Model load attempts by result",
			},
			[]string{"result"},
		),
		journal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mypay_journal_records_total",
				Help: "Prediction records handed to the journal",
			},
			[]string{"backend", "result"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mypay_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordPrediction counts a pipeline run: ok, invalid, model_unavailable, failed.
func (r *Recorder) RecordPrediction(outcome string) {
	r.predictions.WithLabelValues(outcome).Inc()
}

// RecordRateLookup counts where a rate came from: live, fallback, cache.
func (r *Recorder) RecordRateLookup(source string) {
	r.rateLookups.WithLabelValues(source).Inc()
}

// RecordModelLoad counts model loads: ok, missing, error.
func (r *Recorder) RecordModelLoad(result string) {
	r.modelLoads.WithLabelValues(result).Inc()
}

// RecordJournal counts journal writes per backend.
func (r *Recorder) RecordJournal(backend, result string) {
	r.journal.WithLabelValues(backend, result).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
