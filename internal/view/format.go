package view

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var indian = message.NewPrinter(language.MustParse("en-IN"))

// FormatCurrency renders v as whole rupees with Indian digit grouping.
func FormatCurrency(v float64) string {
	return "₹ " + indian.Sprintf("%v", number.Decimal(math.Round(v), number.MaxFractionDigits(0)))
}

// FormatCurrencyDecimal is FormatCurrency for decimal amounts.
func FormatCurrencyDecimal(d decimal.Decimal) string {
	return FormatCurrency(d.Round(0).InexactFloat64())
}

// FormatThousands renders an axis tick in thousands, e.g. 12500 as "13K".
func FormatThousands(v float64) string {
	return fmt.Sprintf("%.0fK", v/1000)
}

// FormatPercent renders a share already expressed in percent.
func FormatPercent(d decimal.Decimal) string {
	return d.StringFixed(2) + "%"
}
