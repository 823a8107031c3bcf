package output

import (
	"github.com/shopspring/decimal"

	pkgdecimal "github.com/retiresim/portfolio-calculator/pkg/decimal"
)

// FormatCurrency formats a decimal as USD currency with 2 decimals.
// Kept here so it can be reused by multiple formatters and unit tested in
// isolation.
func FormatCurrency(amount decimal.Decimal) string {
	return pkgdecimal.NewMoneyFromDecimal(amount).Round().Format()
}

// FormatPercent renders a fraction (0.568) as a percentage ("56.8%").
func FormatPercent(fraction decimal.Decimal) string {
	return fraction.Mul(decimal.NewFromInt(100)).StringFixed(1) + "%"
}
