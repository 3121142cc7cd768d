package service

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyFormatter renders amounts as "$1,234.50" using Symbol.
type MoneyFormatter struct {
	Symbol string
}

func (f MoneyFormatter) Format(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	fixed := d.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + f.Symbol + b.String() + "." + frac
}
