package service

import (
	"context"

	"MyPay/internal/domain/models"
)

// SalaryModel maps (years, job rate) to a predicted yearly salary in USD.
type SalaryModel interface {
	Predict(ctx context.Context, years, jobRate float64) (float64, error)
}

// ModelLoader resolves the salary model; a nil model is never returned without an error.
type ModelLoader interface {
	Load(ctx context.Context) (SalaryModel, error)
}

// RateProvider resolves the USD→INR rate. It never fails: fallbacks are applied internally.
type RateProvider interface {
	Rate(ctx context.Context) models.ExchangeRate
}
