package web

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatMoney renders v with two decimals and thousands separators.
func FormatMoney(v float64) string {
	s := decimal.NewFromFloat(v).StringFixed(2)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "." + frac
}

// FormatRate renders a conversion rate with two decimals.
func FormatRate(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
