package salary

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"MyPay/internal/domain/service"
)

// KindLinearRegression is the only artifact kind understood by ParseArtifact.
const KindLinearRegression = "linear_regression"

// Artifact is the on-disk form of a trained model.
type Artifact struct {
	Kind         string    `json:"kind"`
	Features     []string  `json:"features"`
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

// LinearModel predicts intercept + c0*years + c1*jobRate.
type LinearModel struct {
	intercept float64
	years     float64
	jobRate   float64
}

func NewLinearModel(intercept, years, jobRate float64) *LinearModel {
	return &LinearModel{intercept: intercept, years: years, jobRate: jobRate}
}

// ParseArtifact decodes and checks a linear regression artifact over [years, job_rate].
func ParseArtifact(b []byte) (*LinearModel, error) {
	var a Artifact
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	if a.Kind != KindLinearRegression {
		return nil, fmt.Errorf("unsupported model kind %q", a.Kind)
	}
	if len(a.Coefficients) != 2 {
		return nil, fmt.Errorf("expected 2 coefficients, got %d", len(a.Coefficients))
	}
	if len(a.Features) != 0 && len(a.Features) != len(a.Coefficients) {
		return nil, fmt.Errorf("features and coefficients differ in length")
	}
	for _, v := range append([]float64{a.Intercept}, a.Coefficients...) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("artifact holds a non-finite parameter")
		}
	}
	return NewLinearModel(a.Intercept, a.Coefficients[0], a.Coefficients[1]), nil
}

func (m *LinearModel) Predict(_ context.Context, years, jobRate float64) (float64, error) {
	return m.intercept + m.years*years + m.jobRate*jobRate, nil
}

var _ service.SalaryModel = (*LinearModel)(nil)
