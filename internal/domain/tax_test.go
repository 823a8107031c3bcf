package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTaxRules(t *testing.T) {
	rules := DefaultTaxRules()
	require.NoError(t, rules.Validate())

	assert.Equal(t, 2024, rules.Year)
	assert.Equal(t, "single", rules.FilingStatus)
	assert.Len(t, rules.Brackets, 7)
	assert.True(t, rules.StateRate.Equal(decimal.NewFromFloat(0.0475)))
	assert.False(t, rules.StateTaxesSocialSecurity)
	assert.True(t, rules.SSLowerThreshold.Equal(decimal.NewFromInt(25000)))
	assert.True(t, rules.SSUpperThreshold.Equal(decimal.NewFromInt(34000)))

	// First bracket starts at zero, top bracket is effectively unbounded.
	assert.True(t, rules.Brackets[0].Min.IsZero())
	assert.True(t, rules.Brackets[6].Max.GreaterThan(decimal.NewFromInt(100000000)))
}

func TestTaxRulesValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*TaxRules)
	}{
		{"no brackets", func(r *TaxRules) { r.Brackets = nil }},
		{"first bracket not at zero", func(r *TaxRules) { r.Brackets[0].Min = decimal.NewFromInt(100) }},
		{"non-increasing bracket", func(r *TaxRules) { r.Brackets[2].Max = r.Brackets[2].Min }},
		{"bracket gap", func(r *TaxRules) { r.Brackets[3].Min = r.Brackets[3].Min.Add(decimal.NewFromInt(1)) }},
		{"negative rate", func(r *TaxRules) { r.Brackets[1].Rate = decimal.NewFromFloat(-0.1) }},
		{"rate above one", func(r *TaxRules) { r.Brackets[1].Rate = decimal.NewFromFloat(1.5) }},
		{"negative state rate", func(r *TaxRules) { r.StateRate = decimal.NewFromFloat(-0.01) }},
		{"state rate above one", func(r *TaxRules) { r.StateRate = decimal.NewFromInt(2) }},
		{"negative ss lower threshold", func(r *TaxRules) { r.SSLowerThreshold = decimal.NewFromInt(-1) }},
		{"inverted ss thresholds", func(r *TaxRules) { r.SSUpperThreshold = decimal.NewFromInt(10000) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := DefaultTaxRules()
			tt.mutate(&rules)
			err := rules.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidParameter))
		})
	}
}
