// Package decimal provides small money helpers over shopspring/decimal.
package decimal

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary amount with proper financial precision.
type Money struct {
	decimal.Decimal
}

// NewMoney creates a new Money instance from a float64.
func NewMoney(value float64) Money {
	return Money{decimal.NewFromFloat(value)}
}

// NewMoneyFromDecimal creates a new Money instance from a decimal.Decimal.
func NewMoneyFromDecimal(d decimal.Decimal) Money {
	return Money{d}
}

// Round rounds the money amount to whole cents.
func (m Money) Round() Money {
	return Money{m.Decimal.Round(2)}
}

// Annual converts a monthly amount to annual.
func (m Money) Annual() Money {
	return Money{m.Decimal.Mul(decimal.NewFromInt(12))}
}

// Monthly converts an annual amount to monthly.
func (m Money) Monthly() Money {
	return Money{m.Decimal.Div(decimal.NewFromInt(12))}
}

// Zero returns a zero Money amount.
func Zero() Money {
	return Money{decimal.Zero}
}

// String returns the string representation with two decimal places.
func (m Money) String() string {
	return m.Decimal.StringFixed(2)
}

// Format formats the money amount as currency.
func (m Money) Format() string {
	return "$" + m.String()
}
