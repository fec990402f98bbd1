package models

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Input bounds enforced before any model call.
const (
	MinYears   = 0
	MaxYears   = 50
	MinJobRate = 0.0
	MaxJobRate = 10.0
)

var (
	// ErrInvalidInput marks a request outside the accepted ranges.
	ErrInvalidInput = errors.New("invalid prediction input")
	// ErrModelUnavailable is returned when the model cannot be loaded; no inference is attempted.
	ErrModelUnavailable = errors.New("prediction model unavailable")
	// ErrPredictionFailed wraps any failure raised while invoking the model.
	ErrPredictionFailed = errors.New("prediction failed")
	// ErrRecordNotFound is returned when an export record has expired or never existed.
	ErrRecordNotFound = errors.New("prediction record not found")
)

// PredictionRequest is one form submission.
type PredictionRequest struct {
	years   int
	jobRate float64
}

// NewPredictionRequest checks the ranges accepted by the input form.
func NewPredictionRequest(years int, jobRate float64) (PredictionRequest, error) {
	if years < MinYears || years > MaxYears {
		return PredictionRequest{}, fmt.Errorf("%w: years must be between %d and %d, got %d", ErrInvalidInput, MinYears, MaxYears, years)
	}
	if math.IsNaN(jobRate) || math.IsInf(jobRate, 0) || jobRate < MinJobRate || jobRate > MaxJobRate {
		return PredictionRequest{}, fmt.Errorf("%w: job rate must be between %.0f and %.0f, got %v", ErrInvalidInput, MinJobRate, MaxJobRate, jobRate)
	}
	return PredictionRequest{years: years, jobRate: jobRate}, nil
}

func (r PredictionRequest) Years() int { return r.years }
func (r PredictionRequest) JobRate() float64 { return r.jobRate }

// PredictionOptions selects the optional sweeps.
type PredictionOptions struct {
	Comparison     bool
	MarketAnalysis bool
}

// PredictionResult is the converted output of one model call.
type PredictionResult struct {
	USD          float64
	INR          float64
	MonthlyINR   float64
	ExchangeRate float64
}

// NewPredictionResult derives the INR and monthly figures from a USD prediction.
func NewPredictionResult(usd, rate float64) PredictionResult {
	inr := usd * rate
	return PredictionResult{
		USD:          usd,
		INR:          inr,
		MonthlyINR:   inr / 12,
		ExchangeRate: rate,
	}
}

// GrowthUSD is the 10% growth hint shown next to the USD figure.
func (r PredictionResult) GrowthUSD() float64 { return r.USD * 0.1 }

// GrowthINR is the 10% growth hint shown next to the INR figure.
func (r PredictionResult) GrowthINR() float64 { return r.INR * 0.1 }

// SweepPoint is one model call in a sweep; X is the varied input.
type SweepPoint struct {
	X   float64
	USD float64
	INR float64
}

// Prediction bundles everything rendered for one submission.
type Prediction struct {
	Request    PredictionRequest
	Result     PredictionResult
	Rate       ExchangeRate
	Experience []SweepPoint // nil unless comparison was requested
	Market     []SweepPoint // nil unless market analysis was requested
	Record     ExportRecord
}

// ExchangeRate is a resolved conversion factor.
type ExchangeRate struct {
	Base      string
	Quote     string
	Value     float64
	Source    RateSource
	FetchedAt time.Time
}

type RateSource string

const (
	RateSourceLive     RateSource = "live"
	RateSourceFallback RateSource = "fallback"
)

// ModelLoadError carries the message shown to users when the model cannot be
// loaded. It matches ErrModelUnavailable and its cause.
type ModelLoadError struct {
	Message string
	Err     error
}

func (e *ModelLoadError) Error() string { return e.Message }

func (e *ModelLoadError) Unwrap() []error { return []error{ErrModelUnavailable, e.Err} }
