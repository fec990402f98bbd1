package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"MyPay/internal/domain/models"
	"MyPay/internal/domain/repository"
	"MyPay/internal/domain/service"
	applogger "MyPay/pkg/logger"
	"MyPay/pkg/util"

	"github.com/google/uuid"
)

// Sweep bounds.
const (
	SweepMaxYears   = 20
	SweepHalfWindow = 5
	MarketMinRate   = 1
	MarketMaxRate   = 10
)

// PredictionPipeline turns a request into a converted prediction, optional
// sweeps and a stored export record.
type PredictionPipeline struct {
	loader  service.ModelLoader
	rates   service.RateProvider
	records repository.RecordStore
	journal repository.Journal
	metrics repository.Metrics
	l       *applogger.Logger
	now     func() time.Time
	newID   func() string
}

// PipelineOption configures PredictionPipeline.
type PipelineOption func(*PredictionPipeline)

// WithJournal hands every record to j after it is stored.
func WithJournal(j repository.Journal) PipelineOption {
	return func(p *PredictionPipeline) { p.journal = j }
}

// WithPipelineLogger sets the logger.
func WithPipelineLogger(l *applogger.Logger) PipelineOption {
	return func(p *PredictionPipeline) {
		if l != nil {
			p.l = l
		}
	}
}

// WithPipelineClock overrides the time source and id generator.
func WithPipelineClock(now func() time.Time, newID func() string) PipelineOption {
	return func(p *PredictionPipeline) {
		p.now = now
		p.newID = newID
	}
}

func NewPredictionPipeline(
	loader service.ModelLoader,
	rates service.RateProvider,
	records repository.RecordStore,
	metrics repository.Metrics,
	opts ...PipelineOption,
) *PredictionPipeline {
	p := &PredictionPipeline{
		loader:  loader,
		rates:   rates,
		records: records,
		metrics: metrics,
		l:       applogger.Nop(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Predict runs one submission. A model that cannot be loaded is never invoked;
// any model failure aborts the whole run without partial output.
func (p *PredictionPipeline) Predict(ctx context.Context, req models.PredictionRequest, opts models.PredictionOptions) (*models.Prediction, error) {
	start := time.Now()
	pred, err := p.predict(ctx, req, opts)
	p.metrics.RecordLatency("predict", time.Since(start).Seconds())

	switch {
	case err == nil:
		p.metrics.RecordPrediction("ok")
	case errors.Is(err, models.ErrModelUnavailable):
		p.metrics.RecordPrediction("model_unavailable")
	default:
		p.metrics.RecordPrediction("failed")
	}
	return pred, err
}

// Analyze runs the model and the requested sweeps without recording anything.
func (p *PredictionPipeline) Analyze(ctx context.Context, req models.PredictionRequest, opts models.PredictionOptions) (*models.Prediction, error) {
	model, err := p.loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	rate := p.rates.Rate(ctx)

	usd, err := model.Predict(ctx, float64(req.Years()), req.JobRate())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrPredictionFailed, err)
	}

	pred := &models.Prediction{
		Request: req,
		Result:  models.NewPredictionResult(usd, rate.Value),
		Rate:    rate,
	}

	if opts.Comparison {
		lo, hi := ExperienceWindow(req.Years())
		pred.Experience, err = p.sweep(ctx, model, rate.Value, lo, hi, func(x int) (float64, float64) {
			return float64(x), req.JobRate()
		})
		if err != nil {
			return nil, err
		}
	}

	if opts.MarketAnalysis {
		pred.Market, err = p.sweep(ctx, model, rate.Value, MarketMinRate, MarketMaxRate, func(x int) (float64, float64) {
			return float64(req.Years()), float64(x)
		})
		if err != nil {
			return nil, err
		}
	}
	return pred, nil
}

func (p *PredictionPipeline) predict(ctx context.Context, req models.PredictionRequest, opts models.PredictionOptions) (*models.Prediction, error) {
	pred, err := p.Analyze(ctx, req, opts)
	if err != nil {
		return nil, err
	}

	pred.Record = models.ExportRecord{
		ID:           p.newID(),
		Years:        req.Years(),
		JobRate:      req.JobRate(),
		SalaryUSD:    pred.Result.USD,
		SalaryINR:    pred.Result.INR,
		MonthlyINR:   pred.Result.MonthlyINR,
		ExchangeRate: pred.Rate.Value,
		PredictedAt:  p.now(),
	}
	if err := p.records.Save(ctx, pred.Record); err != nil {
		p.l.Warn("store export record", applogger.String("id", pred.Record.ID), applogger.Error(err))
	}
	if p.journal != nil {
		if err := p.journal.Record(ctx, pred.Record); err != nil {
			p.l.Warn("journal prediction", applogger.String("id", pred.Record.ID), applogger.Error(err))
		}
	}

	p.l.Info("salary predicted",
		applogger.String("id", pred.Record.ID),
		applogger.Int("years", req.Years()),
		applogger.Float64("job_rate", req.JobRate()),
		applogger.Float64("usd", pred.Result.USD),
		applogger.String("rate_source", string(pred.Rate.Source)),
	)
	return pred, nil
}

// sweep calls the model once per integer x in [lo, hi]; args maps x to (years, jobRate).
func (p *PredictionPipeline) sweep(ctx context.Context, model service.SalaryModel, rate float64, lo, hi int, args func(x int) (float64, float64)) ([]models.SweepPoint, error) {
	if hi < lo {
		return []models.SweepPoint{}, nil
	}
	points := make([]models.SweepPoint, 0, hi-lo+1)
	for x := lo; x <= hi; x++ {
		years, jobRate := args(x)
		usd, err := model.Predict(ctx, years, jobRate)
		if err != nil {
			return nil, fmt.Errorf("%w: sweep at %d: %w", models.ErrPredictionFailed, x, err)
		}
		points = append(points, models.SweepPoint{X: float64(x), USD: usd, INR: usd * rate})
	}
	return points, nil
}

// Record returns a stored export record.
func (p *PredictionPipeline) Record(ctx context.Context, id string) (models.ExportRecord, error) {
	return p.records.Get(ctx, id)
}

// Rate exposes the current conversion rate.
func (p *PredictionPipeline) Rate(ctx context.Context) models.ExchangeRate {
	return p.rates.Rate(ctx)
}

// ExperienceWindow is the inclusive experience sweep range: five years either
// side of years, cut to [0, SweepMaxYears]. It is empty (hi < lo) once years
// exceeds SweepMaxYears+SweepHalfWindow.
func ExperienceWindow(years int) (int, int) {
	lo := util.ClampInt(years-SweepHalfWindow, 0, years)
	hi := years + SweepHalfWindow
	if hi > SweepMaxYears {
		hi = SweepMaxYears
	}
	return lo, hi
}
