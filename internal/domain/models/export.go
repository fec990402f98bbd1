package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExportHeader is the fixed CSV header of a prediction export.
var ExportHeader = []string{
	"Years_of_Experience",
	"Job_Rate",
	"Predicted_Salary_USD",
	"Predicted_Salary_INR",
	"Monthly_Salary_INR",
	"Exchange_Rate",
	"Prediction_Date",
}

// PredictionDateLayout formats Prediction_Date.
const PredictionDateLayout = "2006-01-02 15:04:05"

// ExportRecord is the single row offered for download after a prediction.
type ExportRecord struct {
	ID           string    `json:"id"`
	Years        int       `json:"years"`
	JobRate      float64   `json:"job_rate"`
	SalaryUSD    float64   `json:"salary_usd"`
	SalaryINR    float64   `json:"salary_inr"`
	MonthlyINR   float64   `json:"monthly_inr"`
	ExchangeRate float64   `json:"exchange_rate"`
	PredictedAt  time.Time `json:"predicted_at"`
}

// Row renders the record in ExportHeader order. Values keep their full
// precision; rounding is a display concern.
func (r ExportRecord) Row() []string {
	return []string{
		decimal.NewFromInt(int64(r.Years)).String(),
		decimal.NewFromFloat(r.JobRate).String(),
		decimal.NewFromFloat(r.SalaryUSD).String(),
		decimal.NewFromFloat(r.SalaryINR).String(),
		decimal.NewFromFloat(r.MonthlyINR).String(),
		decimal.NewFromFloat(r.ExchangeRate).String(),
		r.PredictedAt.Format(PredictionDateLayout),
	}
}

// FileName is the download name, stamped with the prediction time.
func (r ExportRecord) FileName() string {
	return "salary_prediction_" + r.PredictedAt.Format("20060102_150405") + ".csv"
}
