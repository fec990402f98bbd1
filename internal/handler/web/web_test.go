package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"MyPay/internal/domain/models"
	xlogger "MyPay/pkg/logger"

	"github.com/labstack/echo/v4"
)

type stubPredictor struct {
	loadErr  error
	lastOpts models.PredictionOptions
	records  map[string]models.ExportRecord
}

func (s *stubPredictor) Analyze(_ context.Context, req models.PredictionRequest, opts models.PredictionOptions) (*models.Prediction, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	s.lastOpts = opts
	p := &models.Prediction{Request: req, Result: models.NewPredictionResult(50000, 83), Rate: s.Rate(context.Background())}
	if opts.Comparison {
		for y := 0; y <= 10; y++ {
			p.Experience = append(p.Experience, models.SweepPoint{X: float64(y), USD: 1000, INR: 83000})
		}
	}
	if opts.MarketAnalysis {
		for r := 1; r <= 10; r++ {
			p.Market = append(p.Market, models.SweepPoint{X: float64(r), USD: 1000, INR: 83000})
		}
	}
	return p, nil
}

func (s *stubPredictor) Predict(ctx context.Context, req models.PredictionRequest, opts models.PredictionOptions) (*models.Prediction, error) {
	p, err := s.Analyze(ctx, req, opts)
	if err != nil {
		return nil, err
	}
	p.Record = models.ExportRecord{
		ID:           "rec-1",
		Years:        req.Years(),
		JobRate:      req.JobRate(),
		SalaryUSD:    p.Result.USD,
		SalaryINR:    p.Result.INR,
		MonthlyINR:   p.Result.MonthlyINR,
		ExchangeRate: 83,
		PredictedAt:  time.Date(2024, 5, 1, 9, 30, 15, 0, time.UTC),
	}
	if s.records == nil {
		s.records = map[string]models.ExportRecord{}
	}
	s.records[p.Record.ID] = p.Record
	return p, nil
}

func (s *stubPredictor) Record(_ context.Context, id string) (models.ExportRecord, error) {
	r, ok := s.records[id]
	if !ok {
		return models.ExportRecord{}, models.ErrRecordNotFound
	}
	return r, nil
}

func (s *stubPredictor) Rate(context.Context) models.ExchangeRate {
	return models.ExchangeRate{Base: "USD", Quote: "INR", Value: 83, Source: models.RateSourceLive}
}

func newServer(t *testing.T, stub *stubPredictor) *echo.Echo {
	t.Helper()
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	e := echo.New()
	e.Renderer = r
	NewHandler(xlogger.Nop(), stub).RegisterRoutes(e)
	return e
}

func do(e *echo.Echo, method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestIndex(t *testing.T) {
	rec := do(newServer(t, &stubPredictor{}), http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Please enter your details above", "83.00", `value="3.5"`, "/charts/trends"} {
		if !strings.Contains(body, want) {
			t.Fatalf("index missing %q", want)
		}
	}
}

func TestSubmitRendersResult(t *testing.T) {
	stub := &stubPredictor{}
	form := url.Values{
		"years":                {"5"},
		"job_rate":             {"3.5"},
		"show_comparison":      {"true", "false"},
		"show_market_analysis": {"true", "false"},
	}
	rec := do(newServer(t, stub), http.MethodPost, "/predict", form)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{"4,150,000.00", "345,833.33", "50,000.00", "415,000.00", "/export/rec-1", "Market Analysis", "srcdoc="} {
		if !strings.Contains(body, want) {
			t.Fatalf("result page missing %q", want)
		}
	}
	if !stub.lastOpts.Comparison || !stub.lastOpts.MarketAnalysis {
		t.Fatalf("expected both options, got %+v", stub.lastOpts)
	}
}

func TestSubmitUncheckedBoxes(t *testing.T) {
	stub := &stubPredictor{}
	form := url.Values{
		"years":                {"5"},
		"job_rate":             {"3.5"},
		"show_comparison":      {"false"},
		"show_market_analysis": {"false"},
	}
	rec := do(newServer(t, stub), http.MethodPost, "/predict", form)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if stub.lastOpts.Comparison || stub.lastOpts.MarketAnalysis {
		t.Fatalf("expected no options, got %+v", stub.lastOpts)
	}
	if strings.Contains(rec.Body.String(), "srcdoc=") {
		t.Fatalf("no charts expected")
	}
}

func TestSubmitValidation(t *testing.T) {
	form := url.Values{"years": {"60"}, "job_rate": {"3.5"}}
	rec := do(newServer(t, &stubPredictor{}), http.MethodPost, "/predict", form)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "years must be less than or equal to 50") {
		t.Fatalf("missing inline error: %s", rec.Body.String())
	}
}

func TestSubmitModelMissing(t *testing.T) {
	stub := &stubPredictor{loadErr: &models.ModelLoadError{
		Message: "Model file 'final.json' not found. Please ensure the model file is in the correct directory.",
		Err:     context.Canceled,
	}}
	form := url.Values{"years": {"5"}, "job_rate": {"3.5"}}
	rec := do(newServer(t, stub), http.MethodPost, "/predict", form)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "not found. Please ensure the model file is in the correct directory.") ||
		!strings.Contains(body, "Unable to load the prediction model.") {
		t.Fatalf("missing model error: %s", body)
	}
}

func TestExportCSV(t *testing.T) {
	stub := &stubPredictor{}
	e := newServer(t, stub)
	do(e, http.MethodPost, "/predict", url.Values{"years": {"5"}, "job_rate": {"3.5"}})

	rec := do(e, http.MethodGet, "/export/rec-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if cd := rec.Header().Get(echo.HeaderContentDisposition); !strings.Contains(cd, "salary_prediction_20240501_093015.csv") {
		t.Fatalf("unexpected disposition %q", cd)
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "Years_of_Experience,Job_Rate,") {
		t.Fatalf("unexpected csv %q", rec.Body.String())
	}
	if lines[1] != "5,3.5,50000,4150000,345833.3333333333,83,2024-05-01 09:30:15" {
		t.Fatalf("unexpected row %q", lines[1])
	}

	if rec := do(e, http.MethodGet, "/export/nope", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestChartPages(t *testing.T) {
	e := newServer(t, &stubPredictor{})
	cases := map[string]string{
		"/charts/market?years=5&job_rate=3.5":     "Salary by Job Rate (Experience: 5 years)",
		"/charts/experience?years=5&job_rate=3.5": "Salary vs Experience (Current Job Rate)",
		"/charts/trends":                          "Sample Salary Trends by Experience and Job Rate",
	}
	for target, want := range cases {
		rec := do(e, http.MethodGet, target, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", target, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), want) {
			t.Fatalf("%s: missing %q", target, want)
		}
	}
	if rec := do(e, http.MethodGet, "/charts/market?years=99", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestFormatMoney(t *testing.T) {
	cases := map[float64]string{
		0:                 "0.00",
		999.5:             "999.50",
		4150000:           "4,150,000.00",
		345833.3333333333: "345,833.33",
		-1234.567:         "-1,234.57",
	}
	for in, want := range cases {
		if got := FormatMoney(in); got != want {
			t.Fatalf("FormatMoney(%v) = %q, want %q", in, got, want)
		}
	}
}
