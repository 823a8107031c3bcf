package calculation

import (
	"fmt"

	"github.com/retiresim/portfolio-calculator/internal/domain"
	"github.com/shopspring/decimal"
)

// TaxCalculator maps gross income streams to net income using an injected
// rule set. All methods are deterministic and side-effect free.
type TaxCalculator struct {
	Rules domain.TaxRules
}

// NewTaxCalculator validates the rule set and returns a calculator bound to it.
func NewTaxCalculator(rules domain.TaxRules) (*TaxCalculator, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return &TaxCalculator{Rules: rules}, nil
}

// ProvisionalIncome is the figure used by the SS taxability rule: non-SS
// income plus half of the Social Security benefit.
func (tc *TaxCalculator) ProvisionalIncome(otherIncome, ssBenefit decimal.Decimal) decimal.Decimal {
	return otherIncome.Add(ssBenefit.Mul(decimal.NewFromFloat(0.5)))
}

// TaxableSocialSecurity determines the federally taxable portion of the
// annual Social Security benefit via the provisional-income threshold test:
// 0% below the lower threshold, up to 50% between the thresholds, up to 85%
// above the upper threshold.
func (tc *TaxCalculator) TaxableSocialSecurity(ssBenefit, otherIncome decimal.Decimal) decimal.Decimal {
	if ssBenefit.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	half := decimal.NewFromFloat(0.5)
	provisional := tc.ProvisionalIncome(otherIncome, ssBenefit)

	if provisional.LessThanOrEqual(tc.Rules.SSLowerThreshold) {
		return decimal.Zero
	}
	if provisional.LessThanOrEqual(tc.Rules.SSUpperThreshold) {
		return decimal.Min(
			ssBenefit.Mul(half),
			provisional.Sub(tc.Rules.SSLowerThreshold).Mul(half),
		)
	}
	base := decimal.Min(
		ssBenefit.Mul(half),
		tc.Rules.SSUpperThreshold.Sub(tc.Rules.SSLowerThreshold).Mul(half),
	)
	pct85 := decimal.NewFromFloat(0.85)
	additional := decimal.Min(
		ssBenefit.Mul(pct85).Sub(base),
		provisional.Sub(tc.Rules.SSUpperThreshold).Mul(pct85),
	)
	return base.Add(additional)
}

// FederalTax applies the marginal bracket table to taxable income. There is
// no standard deduction in this model; income below the first bracket
// ceiling is taxed at the first bracket's rate only.
func (tc *TaxCalculator) FederalTax(taxableIncome decimal.Decimal) decimal.Decimal {
	var tax decimal.Decimal
	for _, bracket := range tc.Rules.Brackets {
		if taxableIncome.LessThanOrEqual(bracket.Min) {
			break
		}
		inBracket := decimal.Min(taxableIncome, bracket.Max).Sub(bracket.Min)
		if inBracket.GreaterThan(decimal.Zero) {
			tax = tax.Add(inBracket.Mul(bracket.Rate))
		}
	}
	return tax
}

// StateTax applies the flat state rate to ordinary income. Social Security
// is included only when the jurisdiction's policy flag says it is taxed.
func (tc *TaxCalculator) StateTax(ordinaryIncome, ssBenefit decimal.Decimal) decimal.Decimal {
	taxable := ordinaryIncome
	if tc.Rules.StateTaxesSocialSecurity {
		taxable = taxable.Add(ssBenefit)
	}
	return taxable.Mul(tc.Rules.StateRate)
}

// NetIncomeDetail converts gross ordinary income and a gross annual Social
// Security benefit into net income, also reporting the federal tax, state
// tax, and taxable SS portion. Negative inputs are contract violations.
func (tc *TaxCalculator) NetIncomeDetail(ordinaryIncome, ssBenefit decimal.Decimal) (net, federal, state, taxableSS decimal.Decimal, err error) {
	if ordinaryIncome.IsNegative() {
		return decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero,
			fmt.Errorf("%w: ordinary income cannot be negative (got %s)", domain.ErrInvalidParameter, ordinaryIncome)
	}
	if ssBenefit.IsNegative() {
		return decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero,
			fmt.Errorf("%w: social security benefit cannot be negative (got %s)", domain.ErrInvalidParameter, ssBenefit)
	}

	taxableSS = tc.TaxableSocialSecurity(ssBenefit, ordinaryIncome)
	federal = tc.FederalTax(ordinaryIncome.Add(taxableSS))
	state = tc.StateTax(ordinaryIncome, ssBenefit)
	net = ordinaryIncome.Add(ssBenefit).Sub(federal).Sub(state)
	return net, federal, state, taxableSS, nil
}

// NetIncome is NetIncomeDetail without the breakdown.
func (tc *TaxCalculator) NetIncome(ordinaryIncome, ssBenefit decimal.Decimal) (decimal.Decimal, error) {
	net, _, _, _, err := tc.NetIncomeDetail(ordinaryIncome, ssBenefit)
	return net, err
}
