package models

// PredictionForm is bound from the HTML form. Every field is always posted,
// so no defaults are applied.
type PredictionForm struct {
	Years          int     `form:"years" validate:"gte=0,lte=50"`
	JobRate        float64 `form:"job_rate" validate:"gte=0,lte=10"`
	ShowComparison bool    `form:"show_comparison"`
	ShowMarket     bool    `form:"show_market_analysis"`
}

// PredictRequest is the JSON body of POST /api/predict.
type PredictRequest struct {
	Years          *int     `json:"years" default:"1" validate:"gte=0,lte=50"`
	JobRate        *float64 `json:"job_rate" default:"3.5" validate:"gte=0,lte=10"`
	ShowComparison *bool    `json:"show_comparison" default:"true"`
	ShowMarket     *bool    `json:"show_market_analysis" default:"true"`
}

// ChartRequest carries the query of the chart pages.
type ChartRequest struct {
	Years   int     `query:"years" validate:"gte=0,lte=50"`
	JobRate float64 `query:"job_rate" validate:"gte=0,lte=10"`
}

// HistoryRequest carries the query of GET /api/predictions.
type HistoryRequest struct {
	From  string `query:"from"`
	To    string `query:"to"`
	Limit int    `query:"limit" default:"50" validate:"gte=1,lte=1000"`
}

type PredictionResponse struct {
	ID           string          `json:"id"`
	Years        int             `json:"years"`
	JobRate      float64         `json:"job_rate"`
	SalaryUSD    float64         `json:"salary_usd"`
	SalaryINR    float64         `json:"salary_inr"`
	MonthlyINR   float64         `json:"monthly_inr"`
	GrowthUSD    float64         `json:"growth_usd"`
	GrowthINR    float64         `json:"growth_inr"`
	ExchangeRate RateResponse    `json:"exchange_rate"`
	Experience   []SweepResponse `json:"experience_sweep,omitempty"`
	Market       []SweepResponse `json:"market_sweep,omitempty"`
	ExportURL    string          `json:"export_url"`
	PredictedAt  string          `json:"predicted_at"`
}

type SweepResponse struct {
	X   float64 `json:"x"`
	USD float64 `json:"usd"`
	INR float64 `json:"inr"`
}

type RateResponse struct {
	Base      string  `json:"base"`
	Quote     string  `json:"quote"`
	Rate      float64 `json:"rate"`
	Source    string  `json:"source"`
	FetchedAt string  `json:"fetched_at"`
}

type TrendSeries struct {
	JobRate int       `json:"job_rate"`
	Years   []int     `json:"years"`
	INR     []float64 `json:"inr"`
}
