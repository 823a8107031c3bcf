package calculation

import (
	"fmt"

	"github.com/retiresim/portfolio-calculator/internal/domain"
	"github.com/shopspring/decimal"
)

// TakehomeSolverConfig controls the sustainable take-home search.
type TakehomeSolverConfig struct {
	// TargetSuccessRate is the desired survival probability, as a fraction.
	TargetSuccessRate decimal.Decimal
	// LowMonthly and HighMonthly bound the search. Defaults: $500-$20,000.
	LowMonthly  decimal.Decimal
	HighMonthly decimal.Decimal
	// Precision is the monthly-dollar resolution to stop at. Default $50.
	Precision decimal.Decimal
}

// TakehomeSolution is the outcome of the sustainable take-home search.
type TakehomeSolution struct {
	MonthlyTakehome     decimal.Decimal          `json:"monthly_takehome"`
	AchievedSuccessRate decimal.Decimal          `json:"achieved_success_rate"`
	Result              *domain.SimulationResult `json:"result"`
}

// solver iteration cap; the bracket halves each pass.
const maxSolverIterations = 32

// rateTolerance: a success rate within one percentage point of the target
// ends the search early.
var rateTolerance = decimal.NewFromFloat(0.01)

// SolveSustainableTakehome finds the largest monthly take-home whose
// simulated success rate still meets the target. Success rate decreases
// monotonically in take-home (up to simulation noise), so a bisection on
// the monthly amount converges; every probe is a full simulation run with
// the simulator's fixed seed, keeping the search deterministic.
func (ps *PortfolioSimulator) SolveSustainableTakehome(params domain.SimulationParameters, cfg TakehomeSolverConfig) (*TakehomeSolution, error) {
	if cfg.TargetSuccessRate.LessThanOrEqual(decimal.Zero) || cfg.TargetSuccessRate.GreaterThan(one) {
		return nil, fmt.Errorf("%w: target success rate must be in (0,1] (got %s)",
			domain.ErrInvalidParameter, cfg.TargetSuccessRate)
	}
	lo := cfg.LowMonthly
	if lo.LessThanOrEqual(decimal.Zero) {
		lo = decimal.NewFromInt(500)
	}
	hi := cfg.HighMonthly
	if hi.LessThanOrEqual(lo) {
		hi = decimal.NewFromInt(20000)
	}
	precision := cfg.Precision
	if precision.LessThanOrEqual(decimal.Zero) {
		precision = decimal.NewFromInt(50)
	}

	var best *TakehomeSolution
	two := decimal.NewFromInt(2)
	for i := 0; i < maxSolverIterations && hi.Sub(lo).GreaterThan(precision); i++ {
		mid := lo.Add(hi).Div(two)
		probe := params
		probe.TargetMonthlyTakehome = mid

		result, err := ps.RunSimulation(probe)
		if err != nil {
			return nil, err
		}
		ps.Logger.Debugf("takehome probe $%s/month -> success rate %s",
			mid.StringFixed(2), result.SuccessRate.StringFixed(3))

		if result.SuccessRate.Sub(cfg.TargetSuccessRate).Abs().LessThan(rateTolerance) {
			return &TakehomeSolution{MonthlyTakehome: mid, AchievedSuccessRate: result.SuccessRate, Result: result}, nil
		}
		if result.SuccessRate.GreaterThanOrEqual(cfg.TargetSuccessRate) {
			if best == nil || mid.GreaterThan(best.MonthlyTakehome) {
				best = &TakehomeSolution{MonthlyTakehome: mid, AchievedSuccessRate: result.SuccessRate, Result: result}
			}
			lo = mid
		} else {
			hi = mid
		}
	}

	if best == nil {
		return nil, fmt.Errorf("no monthly take-home in [$%s, $%s] reaches a %s success rate",
			lo.StringFixed(0), hi.StringFixed(0), cfg.TargetSuccessRate.StringFixed(2))
	}
	return best, nil
}
