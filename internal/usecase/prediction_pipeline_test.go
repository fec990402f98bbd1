package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"math"
	"strconv"
	"strings"
	"testing"
	"time"

	"MyPay/internal/domain/models"
)

var fixedNow = time.Date(2024, 5, 1, 9, 30, 15, 0, time.UTC)

func newPipeline(model *fakeModel, loaderErr error, rate float64, opts ...PipelineOption) (*PredictionPipeline, *memRecords, *fakeMetrics) {
	records := &memRecords{}
	metrics := newFakeMetrics()
	opts = append([]PipelineOption{
		WithPipelineClock(func() time.Time { return fixedNow }, func() string { return "rec-1" }),
	}, opts...)
	p := NewPredictionPipeline(fakeLoader{model: model, err: loaderErr}, fixedRate(rate), records, metrics, opts...)
	return p, records, metrics
}

func mustRequest(t *testing.T, years int, jobRate float64) models.PredictionRequest {
	t.Helper()
	req, err := models.NewPredictionRequest(years, jobRate)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	return req
}

func TestPredictConvertsCurrency(t *testing.T) {
	model := &fakeModel{fn: func(float64, float64) (float64, error) { return 50000, nil }}
	p, records, metrics := newPipeline(model, nil, 83.0)

	pred, err := p.Predict(context.Background(), mustRequest(t, 5, 3.5), models.PredictionOptions{})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if pred.Result.INR != 4150000 {
		t.Fatalf("expected inr 4150000, got %v", pred.Result.INR)
	}
	if pred.Result.MonthlyINR != pred.Result.INR/12 {
		t.Fatalf("monthly must equal inr/12")
	}
	if got := math.Round(pred.Result.MonthlyINR*100) / 100; got != 345833.33 {
		t.Fatalf("expected monthly 345833.33, got %v", got)
	}
	if model.calls != 1 {
		t.Fatalf("expected a single model call without sweeps, got %d", model.calls)
	}
	if pred.Experience != nil || pred.Market != nil {
		t.Fatalf("sweeps must be empty when not requested")
	}
	if _, ok := records.m["rec-1"]; !ok {
		t.Fatalf("record not stored")
	}
	if metrics.predictions["ok"] != 1 {
		t.Fatalf("expected ok outcome, got %v", metrics.predictions)
	}
}

func TestPredictModelUnavailable(t *testing.T) {
	model := &fakeModel{fn: func(float64, float64) (float64, error) { return 1, nil }}
	loadErr := &models.ModelLoadError{Message: "Model file 'final.json' not found.", Err: errBoom}
	p, records, metrics := newPipeline(model, loadErr, 83.0)

	_, err := p.Predict(context.Background(), mustRequest(t, 5, 3.5), models.PredictionOptions{Comparison: true, MarketAnalysis: true})
	if !errors.Is(err, models.ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
	if model.calls != 0 {
		t.Fatalf("model must not be invoked, got %d calls", model.calls)
	}
	if len(records.m) != 0 {
		t.Fatalf("no record expected")
	}
	if metrics.predictions["model_unavailable"] != 1 {
		t.Fatalf("unexpected outcomes %v", metrics.predictions)
	}
}

func TestPredictFailureHasNoPartialOutput(t *testing.T) {
	model := &fakeModel{fn: func(years, _ float64) (float64, error) {
		if years == 7 {
			return 0, errBoom
		}
		return 1000, nil
	}}
	journal := &fakeJournal{}
	p, records, _ := newPipeline(model, nil, 83.0, WithJournal(journal))

	pred, err := p.Predict(context.Background(), mustRequest(t, 5, 3.5), models.PredictionOptions{Comparison: true})
	if !errors.Is(err, models.ErrPredictionFailed) || !errors.Is(err, errBoom) {
		t.Fatalf("expected wrapped prediction failure, got %v", err)
	}
	if pred != nil || len(records.m) != 0 || len(journal.records) != 0 {
		t.Fatalf("expected no partial output")
	}
}

func TestExperienceSweep(t *testing.T) {
	model := &fakeModel{fn: func(years, _ float64) (float64, error) { return 1000 * years, nil }}
	cases := []struct {
		years  int
		lo, hi int
	}{
		{0, 0, 5},
		{3, 0, 8},
		{10, 5, 15},
		{18, 13, 20},
		{20, 15, 20},
		{22, 17, 20},
		{25, 20, 20},
	}
	for _, tc := range cases {
		p, _, _ := newPipeline(model, nil, 2)
		pred, err := p.Predict(context.Background(), mustRequest(t, tc.years, 4), models.PredictionOptions{Comparison: true})
		if err != nil {
			t.Fatalf("years=%d: %v", tc.years, err)
		}
		pts := pred.Experience
		if len(pts) != tc.hi-tc.lo+1 || int(pts[0].X) != tc.lo || int(pts[len(pts)-1].X) != tc.hi {
			t.Fatalf("years=%d: unexpected window %v..%v (%d points)", tc.years, pts[0].X, pts[len(pts)-1].X, len(pts))
		}
		found := false
		for _, pt := range pts {
			if pt.X < 0 || pt.X > 20 {
				t.Fatalf("years=%d: point %v outside [0,20]", tc.years, pt.X)
			}
			if pt.INR != pt.USD*2 {
				t.Fatalf("years=%d: inr must be usd*rate", tc.years)
			}
			if int(pt.X) == tc.years {
				found = true
			}
		}
		if tc.years <= 20 && !found {
			t.Fatalf("years=%d: sweep must include the submitted years", tc.years)
		}
	}
}

func TestExperienceSweepEmptyPastWindow(t *testing.T) {
	model := &fakeModel{fn: func(float64, float64) (float64, error) { return 1, nil }}
	p, _, _ := newPipeline(model, nil, 83)

	pred, err := p.Predict(context.Background(), mustRequest(t, 35, 4), models.PredictionOptions{Comparison: true})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if pred.Experience == nil || len(pred.Experience) != 0 {
		t.Fatalf("expected an empty, non-nil sweep, got %v", pred.Experience)
	}
	if model.calls != 1 {
		t.Fatalf("expected only the main call, got %d", model.calls)
	}
}

func TestAnalyzeDoesNotRecord(t *testing.T) {
	model := &fakeModel{fn: func(float64, float64) (float64, error) { return 1, nil }}
	journal := &fakeJournal{}
	p, records, metrics := newPipeline(model, nil, 83, WithJournal(journal))

	pred, err := p.Analyze(context.Background(), mustRequest(t, 3, 4), models.PredictionOptions{Comparison: true, MarketAnalysis: true})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(pred.Experience) != 9 || len(pred.Market) != 10 {
		t.Fatalf("unexpected sweeps %d/%d", len(pred.Experience), len(pred.Market))
	}
	if pred.Record.ID != "" || len(records.m) != 0 || len(journal.records) != 0 || len(metrics.predictions) != 0 {
		t.Fatalf("analyze must not record anything")
	}
}

func TestMarketSweep(t *testing.T) {
	var seenYears []float64
	model := &fakeModel{fn: func(years, jobRate float64) (float64, error) {
		seenYears = append(seenYears, years)
		return jobRate * 100, nil
	}}
	p, _, _ := newPipeline(model, nil, 83)

	pred, err := p.Predict(context.Background(), mustRequest(t, 12, 6.5), models.PredictionOptions{MarketAnalysis: true})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if len(pred.Market) != 10 {
		t.Fatalf("expected 10 points, got %d", len(pred.Market))
	}
	for i, pt := range pred.Market {
		if pt.X != float64(i+1) {
			t.Fatalf("point %d has x=%v", i, pt.X)
		}
	}
	for _, y := range seenYears {
		if y != 12 {
			t.Fatalf("years must stay fixed, saw %v", y)
		}
	}
}

func TestJournalFailureDoesNotFailPrediction(t *testing.T) {
	model := &fakeModel{fn: func(float64, float64) (float64, error) { return 10, nil }}
	journal := &fakeJournal{err: errBoom}
	p, _, _ := newPipeline(model, nil, 83, WithJournal(journal))

	if _, err := p.Predict(context.Background(), mustRequest(t, 1, 1), models.PredictionOptions{}); err != nil {
		t.Fatalf("journal errors must not surface: %v", err)
	}
	if len(journal.records) != 1 {
		t.Fatalf("expected journal call")
	}
}

func TestExportMatchesStoredRecord(t *testing.T) {
	model := &fakeModel{fn: func(float64, float64) (float64, error) { return 50000, nil }}
	p, _, _ := newPipeline(model, nil, 83.0)

	pred, err := p.Predict(context.Background(), mustRequest(t, 5, 3.5), models.PredictionOptions{})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	rec, err := p.Record(context.Background(), pred.Record.ID)
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, rec); err != nil {
		t.Fatalf("csv: %v", err)
	}
	want := "Years_of_Experience,Job_Rate,Predicted_Salary_USD,Predicted_Salary_INR,Monthly_Salary_INR,Exchange_Rate,Prediction_Date\n" +
		"5,3.5,50000,4150000,345833.3333333333,83,2024-05-01 09:30:15\n"
	if buf.String() != want {
		t.Fatalf("unexpected csv:\n%s", buf.String())
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil || len(rows) != 2 {
		t.Fatalf("read back: %v %v", rows, err)
	}
	usd, _ := strconv.ParseFloat(rows[1][2], 64)
	inr, _ := strconv.ParseFloat(rows[1][3], 64)
	monthly, _ := strconv.ParseFloat(rows[1][4], 64)
	rate, _ := strconv.ParseFloat(rows[1][5], 64)
	if inr != usd*rate || monthly != inr/12 {
		t.Fatalf("exported figures drifted: usd=%v inr=%v monthly=%v rate=%v", usd, inr, monthly, rate)
	}
	if monthly != pred.Result.MonthlyINR {
		t.Fatalf("exported monthly %v differs from computed %v", monthly, pred.Result.MonthlyINR)
	}
	if rec.FileName() != "salary_prediction_20240501_093015.csv" {
		t.Fatalf("unexpected file name %s", rec.FileName())
	}
}

func TestSampleTrends(t *testing.T) {
	series := SampleTrends(83)
	if len(series) != 3 {
		t.Fatalf("expected 3 series, got %d", len(series))
	}
	for i, jr := range []int{3, 5, 7} {
		s := series[i]
		if s.JobRate != jr || len(s.Years) != 21 || len(s.INR) != 21 {
			t.Fatalf("unexpected series %+v", s)
		}
		if want := (10*5000.0 + float64(jr)*10000) * 83; s.INR[10] != want {
			t.Fatalf("job rate %d year 10: got %v want %v", jr, s.INR[10], want)
		}
	}
	if !strings.HasPrefix(models.ExportHeader[0], "Years") {
		t.Fatalf("header changed")
	}
}
