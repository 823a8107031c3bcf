package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// TAX MODEL ASSUMPTIONS:
//
// 1. Federal brackets: 2024 single-filer table, applied marginally to
//    ordinary income plus the taxable portion of Social Security. No
//    standard deduction and no inflation indexing of thresholds.
//
// 2. State tax: flat rate on ordinary income (North Carolina 4.75% by
//    default). Whether the state also taxes Social Security is a policy
//    flag so other jurisdictions can be modeled as a data change.
//
// 3. Social Security taxability: provisional-income threshold test
//    (other income + half of benefits) deciding the 0% / 50% / 85%
//    taxable fraction. Single-filer thresholds $25,000 / $34,000.

// TaxBracket is one marginal federal bracket. Min is where the bracket
// starts, Max is its ceiling; income between them is taxed at Rate.
type TaxBracket struct {
	Min  decimal.Decimal `json:"min" yaml:"min"`
	Max  decimal.Decimal `json:"max" yaml:"max"`
	Rate decimal.Decimal `json:"rate" yaml:"rate"`
}

// TaxRules is the injected, versioned tax configuration: federal bracket
// table, flat state rate, and the Social Security taxability rule. Loaded
// once, never mutated.
type TaxRules struct {
	Year         int    `json:"year" yaml:"year"`
	FilingStatus string `json:"filing_status" yaml:"filing_status"`

	Brackets []TaxBracket `json:"brackets" yaml:"brackets"`

	StateRate                decimal.Decimal `json:"state_rate" yaml:"state_rate"`
	StateTaxesSocialSecurity bool            `json:"state_taxes_social_security" yaml:"state_taxes_social_security"`

	// Provisional-income thresholds for the SS taxability test.
	SSLowerThreshold decimal.Decimal `json:"ss_lower_threshold" yaml:"ss_lower_threshold"`
	SSUpperThreshold decimal.Decimal `json:"ss_upper_threshold" yaml:"ss_upper_threshold"`
}

// bracketCeiling stands in for an unbounded top bracket.
var bracketCeiling = decimal.NewFromInt(999999999)

// DefaultTaxRules returns the reference tax year tables: 2024 federal
// single-filer brackets, North Carolina 4.75% flat state tax with Social
// Security exempt, single-filer SS taxability thresholds.
func DefaultTaxRules() TaxRules {
	return TaxRules{
		Year:         2024,
		FilingStatus: "single",
		Brackets: []TaxBracket{
			{decimal.Zero, decimal.NewFromInt(11600), decimal.NewFromFloat(0.10)},
			{decimal.NewFromInt(11600), decimal.NewFromInt(47150), decimal.NewFromFloat(0.12)},
			{decimal.NewFromInt(47150), decimal.NewFromInt(100525), decimal.NewFromFloat(0.22)},
			{decimal.NewFromInt(100525), decimal.NewFromInt(191950), decimal.NewFromFloat(0.24)},
			{decimal.NewFromInt(191950), decimal.NewFromInt(243725), decimal.NewFromFloat(0.32)},
			{decimal.NewFromInt(243725), decimal.NewFromInt(609350), decimal.NewFromFloat(0.35)},
			{decimal.NewFromInt(609350), bracketCeiling, decimal.NewFromFloat(0.37)},
		},
		StateRate:                decimal.NewFromFloat(0.0475),
		StateTaxesSocialSecurity: false,
		SSLowerThreshold:         decimal.NewFromInt(25000),
		SSUpperThreshold:         decimal.NewFromInt(34000),
	}
}

// Validate checks the bracket table and rates. Thresholds must be strictly
// increasing and contiguous from zero; rates must lie in [0,1].
func (tr TaxRules) Validate() error {
	if len(tr.Brackets) == 0 {
		return fmt.Errorf("%w: tax rules need at least one federal bracket", ErrInvalidParameter)
	}
	if !tr.Brackets[0].Min.IsZero() {
		return fmt.Errorf("%w: first federal bracket must start at zero (got %s)", ErrInvalidParameter, tr.Brackets[0].Min)
	}
	for i, b := range tr.Brackets {
		if b.Max.LessThanOrEqual(b.Min) {
			return fmt.Errorf("%w: federal bracket %d has non-increasing bounds (%s..%s)", ErrInvalidParameter, i, b.Min, b.Max)
		}
		if b.Rate.IsNegative() || b.Rate.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("%w: federal bracket %d rate must be in [0,1] (got %s)", ErrInvalidParameter, i, b.Rate)
		}
		if i > 0 && !b.Min.Equal(tr.Brackets[i-1].Max) {
			return fmt.Errorf("%w: federal bracket %d does not start where bracket %d ends", ErrInvalidParameter, i, i-1)
		}
	}
	if tr.StateRate.IsNegative() || tr.StateRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: state rate must be in [0,1] (got %s)", ErrInvalidParameter, tr.StateRate)
	}
	if tr.SSLowerThreshold.IsNegative() {
		return fmt.Errorf("%w: SS lower threshold cannot be negative (got %s)", ErrInvalidParameter, tr.SSLowerThreshold)
	}
	if tr.SSUpperThreshold.LessThan(tr.SSLowerThreshold) {
		return fmt.Errorf("%w: SS upper threshold cannot be below the lower threshold", ErrInvalidParameter)
	}
	return nil
}
