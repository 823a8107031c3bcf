package domain

import "github.com/shopspring/decimal"

// YearRecord is one simulated year of one trial. Records are never mutated
// after creation; aggregation only reads them.
type YearRecord struct {
	Age             int             `json:"age"`
	StartingBalance decimal.Decimal `json:"starting_balance"`
	GrossWithdrawal decimal.Decimal `json:"gross_withdrawal"`
	TaxPaid         decimal.Decimal `json:"tax_paid"`
	NetWithdrawal   decimal.Decimal `json:"net_withdrawal"`
	SSIncome        decimal.Decimal `json:"ss_income"`
	EndingBalance   decimal.Decimal `json:"ending_balance"`
}

// TrialOutcome is the full record of a single simulated lifetime.
type TrialOutcome struct {
	Years        []YearRecord    `json:"years"`
	FinalBalance decimal.Decimal `json:"final_balance"`
	Success      bool            `json:"success"`
}

// PercentileRanges holds balance percentiles across the trial population.
type PercentileRanges struct {
	P10 decimal.Decimal `json:"p10"`
	P25 decimal.Decimal `json:"p25"`
	P50 decimal.Decimal `json:"p50"`
	P75 decimal.Decimal `json:"p75"`
	P90 decimal.Decimal `json:"p90"`
}

// YearPercentiles is the per-age balance distribution across all trials.
type YearPercentiles struct {
	Age int `json:"age"`
	PercentileRanges
}

// SimulationResult aggregates all trials of one run. It is derived data,
// recomputed fresh on every parameter change.
type SimulationResult struct {
	TrialCount int   `json:"trial_count"`
	Seed       int64 `json:"seed"`

	SuccessRate decimal.Decimal `json:"success_rate"`

	MedianEndingBalance      decimal.Decimal  `json:"median_ending_balance"`
	EndingBalancePercentiles PercentileRanges `json:"ending_balance_percentiles"`

	YearlyPercentiles []YearPercentiles `json:"yearly_percentiles"`

	// RepresentativeTrace is the trial whose final balance sits closest to
	// the median, used for the year-by-year display.
	RepresentativeTrace []YearRecord `json:"representative_trace"`

	// Base-price gross withdrawals needed to hit the take-home target
	// before and after Social Security onset.
	RequiredWithdrawalPreSS  decimal.Decimal `json:"required_withdrawal_pre_ss"`
	RequiredWithdrawalPostSS decimal.Decimal `json:"required_withdrawal_post_ss"`
}
