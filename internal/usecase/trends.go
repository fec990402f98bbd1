package usecase

import "MyPay/internal/domain/models"

// Illustrative curve parameters.
const (
	trendYearStep = 5000.0
	trendRateStep = 10000.0
	trendMaxYears = 20
)

var trendJobRates = []int{3, 5, 7}

// SampleTrends builds the illustrative (year*5000 + rate*10000) * rate curves
// shown before any submission. No model is involved.
func SampleTrends(exchangeRate float64) []models.TrendSeries {
	out := make([]models.TrendSeries, 0, len(trendJobRates))
	for _, jr := range trendJobRates {
		s := models.TrendSeries{
			JobRate: jr,
			Years:   make([]int, 0, trendMaxYears+1),
			INR:     make([]float64, 0, trendMaxYears+1),
		}
		for y := 0; y <= trendMaxYears; y++ {
			s.Years = append(s.Years, y)
			s.INR = append(s.INR, (float64(y)*trendYearStep+float64(jr)*trendRateStep)*exchangeRate)
		}
		out = append(out, s)
	}
	return out
}
