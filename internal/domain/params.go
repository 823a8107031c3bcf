package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidParameter marks any input outside its documented domain. All
// validation failures wrap it so callers can test with errors.Is.
var ErrInvalidParameter = errors.New("invalid parameter")

// DefaultTrialCount is used when the caller leaves TrialCount unset.
const DefaultTrialCount = 1000

// SimulationParameters is the immutable input to the portfolio simulator.
// Rates are fractions (0.07 = 7%), amounts are dollars, ages are whole years.
type SimulationParameters struct {
	StartingBalance decimal.Decimal `json:"starting_balance" yaml:"starting_balance"`
	MeanReturn      decimal.Decimal `json:"mean_return" yaml:"mean_return"`
	Volatility      decimal.Decimal `json:"volatility" yaml:"volatility"`
	InflationRate   decimal.Decimal `json:"inflation_rate" yaml:"inflation_rate"`

	StartAge   int `json:"start_age" yaml:"start_age"`
	SSStartAge int `json:"ss_start_age" yaml:"ss_start_age"`
	EndAge     int `json:"end_age" yaml:"end_age"`

	TargetMonthlyTakehome decimal.Decimal `json:"target_monthly_takehome" yaml:"target_monthly_takehome"`
	MonthlySSBenefit      decimal.Decimal `json:"monthly_ss_benefit" yaml:"monthly_ss_benefit"`

	TrialCount int `json:"trial_count" yaml:"trial_count"`
}

// ApplyDefaults fills unset optional fields and returns the result.
func (p SimulationParameters) ApplyDefaults() SimulationParameters {
	if p.TrialCount == 0 {
		p.TrialCount = DefaultTrialCount
	}
	return p
}

// Validate rejects out-of-contract parameter sets before any simulation work
// begins. Every failure wraps ErrInvalidParameter.
func (p SimulationParameters) Validate() error {
	if p.StartingBalance.IsNegative() {
		return fmt.Errorf("%w: starting balance cannot be negative (got %s)", ErrInvalidParameter, p.StartingBalance)
	}
	if p.Volatility.IsNegative() {
		return fmt.Errorf("%w: volatility cannot be negative (got %s)", ErrInvalidParameter, p.Volatility)
	}
	if p.InflationRate.IsNegative() {
		return fmt.Errorf("%w: inflation rate cannot be negative (got %s)", ErrInvalidParameter, p.InflationRate)
	}
	if p.MeanReturn.LessThanOrEqual(decimal.NewFromInt(-1)) {
		return fmt.Errorf("%w: mean return must be greater than -100%% (got %s)", ErrInvalidParameter, p.MeanReturn)
	}
	if p.EndAge <= p.StartAge {
		return fmt.Errorf("%w: end age must exceed start age (start %d, end %d)", ErrInvalidParameter, p.StartAge, p.EndAge)
	}
	if p.SSStartAge < 62 || p.SSStartAge > 70 {
		return fmt.Errorf("%w: social security start age must be between 62 and 70 (got %d)", ErrInvalidParameter, p.SSStartAge)
	}
	if p.SSStartAge < p.StartAge {
		return fmt.Errorf("%w: social security start age cannot precede start age (start %d, ss start %d)", ErrInvalidParameter, p.StartAge, p.SSStartAge)
	}
	if p.TargetMonthlyTakehome.IsNegative() {
		return fmt.Errorf("%w: target monthly take-home cannot be negative (got %s)", ErrInvalidParameter, p.TargetMonthlyTakehome)
	}
	if p.MonthlySSBenefit.IsNegative() {
		return fmt.Errorf("%w: monthly social security benefit cannot be negative (got %s)", ErrInvalidParameter, p.MonthlySSBenefit)
	}
	if p.TrialCount <= 0 {
		return fmt.Errorf("%w: trial count must be positive (got %d)", ErrInvalidParameter, p.TrialCount)
	}
	return nil
}

// ProjectionYears is the number of simulated years, ages StartAge through
// EndAge inclusive.
func (p SimulationParameters) ProjectionYears() int {
	return p.EndAge - p.StartAge + 1
}
