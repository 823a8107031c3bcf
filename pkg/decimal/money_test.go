package decimal

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewMoney(t *testing.T) {
	m := NewMoney(1234.56)
	assert.Equal(t, "1234.56", m.String())

	m = NewMoneyFromDecimal(decimal.NewFromInt(42))
	assert.Equal(t, "42.00", m.String())
}

func TestMoneyRound(t *testing.T) {
	assert.Equal(t, "10.13", NewMoney(10.128).Round().String())
	assert.Equal(t, "10.12", NewMoney(10.121).Round().String())
	assert.Equal(t, "-10.13", NewMoney(-10.128).Round().String())
}

func TestMoneyAnnualMonthly(t *testing.T) {
	monthly := NewMoney(1000)
	annual := monthly.Annual()
	assert.Equal(t, "12000.00", annual.String())
	assert.Equal(t, "1000.00", annual.Monthly().String())
}

func TestMoneyFormat(t *testing.T) {
	assert.Equal(t, "$99.90", NewMoney(99.9).Format())
	assert.Equal(t, "$0.00", Zero().Format())
}
