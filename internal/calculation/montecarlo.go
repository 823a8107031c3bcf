package calculation

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/retiresim/portfolio-calculator/internal/domain"
	"github.com/shopspring/decimal"
)

// seedFunc supplies a root seed when the caller does not fix one.
// Overridable in tests.
var seedFunc = func() int64 { return time.Now().UnixNano() }

// defaultMaxWorkers bounds concurrent trial goroutines.
const defaultMaxWorkers = 10

var (
	one    = decimal.NewFromInt(1)
	twelve = decimal.NewFromInt(12)
)

// PortfolioSimulator runs independent Monte Carlo trials of a retirement
// drawdown. Trials share only the immutable parameters and tax tables; each
// trial derives its own random substream from the root seed plus its index,
// so a fixed seed yields bit-identical results regardless of scheduling.
type PortfolioSimulator struct {
	TaxCalc    *TaxCalculator
	Seed       int64
	MaxWorkers int
	Logger     Logger
}

// NewPortfolioSimulator creates a simulator bound to a tax calculator.
// A zero seed picks a time-based one.
func NewPortfolioSimulator(taxCalc *TaxCalculator, seed int64) *PortfolioSimulator {
	if seed == 0 {
		seed = seedFunc()
	}
	return &PortfolioSimulator{
		TaxCalc:    taxCalc,
		Seed:       seed,
		MaxWorkers: defaultMaxWorkers,
		Logger:     NopLogger{},
	}
}

// RunSimulation executes all trials and aggregates them. Parameters are
// validated up front; nothing is partially computed on rejection.
func (ps *PortfolioSimulator) RunSimulation(params domain.SimulationParameters) (*domain.SimulationResult, error) {
	params = params.ApplyDefaults()
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if ps.TaxCalc == nil {
		return nil, fmt.Errorf("portfolio simulator has no tax calculator configured")
	}

	ps.Logger.Debugf("running %d trials over ages %d-%d (seed %d)",
		params.TrialCount, params.StartAge, params.EndAge, ps.Seed)

	trials := make([]domain.TrialOutcome, params.TrialCount)
	errs := make([]error, params.TrialCount)

	workers := ps.MaxWorkers
	if workers <= 0 {
		workers = defaultMaxWorkers
	}
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, workers)

	for i := 0; i < params.TrialCount; i++ {
		wg.Add(1)
		go func(trialIndex int) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			rng := rand.New(rand.NewSource(ps.Seed + int64(trialIndex)))
			trials[trialIndex], errs[trialIndex] = ps.runTrial(params, rng)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return ps.aggregate(params, trials)
}

// runTrial walks one simulated lifetime year by year. Once the balance is
// depleted the trial is failed for good, but the loop keeps advancing age
// so every year contributes a defined-zero balance to the percentile
// population.
func (ps *PortfolioSimulator) runTrial(params domain.SimulationParameters, rng *rand.Rand) (domain.TrialOutcome, error) {
	inflationStep := one.Add(params.InflationRate)
	inflationFactor := one

	balance := params.StartingBalance
	failed := false
	years := make([]domain.YearRecord, 0, params.ProjectionYears())

	for age := params.StartAge; age <= params.EndAge; age++ {
		// One independent normal draw per year; no autocorrelation, no
		// historical bootstrapping.
		z := rng.NormFloat64()
		annualReturn := params.MeanReturn.Add(decimal.NewFromFloat(z).Mul(params.Volatility))

		ssIncome := decimal.Zero
		if age >= params.SSStartAge {
			ssIncome = params.MonthlySSBenefit.Mul(twelve).Mul(inflationFactor)
		}

		if failed {
			years = append(years, domain.YearRecord{Age: age, SSIncome: ssIncome})
			inflationFactor = inflationFactor.Mul(inflationStep)
			continue
		}

		targetNet := params.TargetMonthlyTakehome.Mul(twelve).Mul(inflationFactor)
		gross, tax, err := ps.TaxCalc.GrossUpWithdrawal(targetNet, ssIncome)
		if err != nil {
			return domain.TrialOutcome{}, err
		}

		startBalance := balance
		balance = balance.Sub(gross)
		if balance.IsNegative() {
			balance = decimal.Zero
			failed = true
		}
		if !failed {
			balance = balance.Mul(one.Add(annualReturn))
			if balance.IsNegative() {
				// A draw below -100% wipes the account.
				balance = decimal.Zero
				failed = true
			}
		}

		years = append(years, domain.YearRecord{
			Age:             age,
			StartingBalance: startBalance,
			GrossWithdrawal: gross,
			TaxPaid:         tax,
			NetWithdrawal:   gross.Sub(tax),
			SSIncome:        ssIncome,
			EndingBalance:   balance,
		})
		inflationFactor = inflationFactor.Mul(inflationStep)
	}

	return domain.TrialOutcome{
		Years:        years,
		FinalBalance: balance,
		Success:      !failed,
	}, nil
}

// aggregate folds the trial population into the result summary.
func (ps *PortfolioSimulator) aggregate(params domain.SimulationParameters, trials []domain.TrialOutcome) (*domain.SimulationResult, error) {
	n := len(trials)
	successes := 0
	finals := make([]decimal.Decimal, n)
	for i, tr := range trials {
		if tr.Success {
			successes++
		}
		finals[i] = tr.FinalBalance
	}
	successRate := decimal.NewFromInt(int64(successes)).Div(decimal.NewFromInt(int64(n)))

	projectionYears := params.ProjectionYears()
	yearly := make([]domain.YearPercentiles, projectionYears)
	balances := make([]decimal.Decimal, n)
	for y := 0; y < projectionYears; y++ {
		for i, tr := range trials {
			balances[i] = tr.Years[y].EndingBalance
		}
		sortDecimals(balances)
		yearly[y] = domain.YearPercentiles{
			Age:              params.StartAge + y,
			PercentileRanges: percentileRanges(balances),
		}
	}

	sortedFinals := append([]decimal.Decimal(nil), finals...)
	sortDecimals(sortedFinals)
	median := sortedFinals[len(sortedFinals)/2]

	// Representative trace: the trial whose final balance sits closest to
	// the median. Ties resolve to the lowest trial index for determinism.
	repIndex := 0
	best := finals[0].Sub(median).Abs()
	for i := 1; i < n; i++ {
		if d := finals[i].Sub(median).Abs(); d.LessThan(best) {
			best = d
			repIndex = i
		}
	}

	baseTarget := params.TargetMonthlyTakehome.Mul(twelve)
	preSS, _, err := ps.TaxCalc.GrossUpWithdrawal(baseTarget, decimal.Zero)
	if err != nil {
		return nil, err
	}
	postSS, _, err := ps.TaxCalc.GrossUpWithdrawal(baseTarget, params.MonthlySSBenefit.Mul(twelve))
	if err != nil {
		return nil, err
	}

	return &domain.SimulationResult{
		TrialCount:               n,
		Seed:                     ps.Seed,
		SuccessRate:              successRate,
		MedianEndingBalance:      median,
		EndingBalancePercentiles: percentileRanges(sortedFinals),
		YearlyPercentiles:        yearly,
		RepresentativeTrace:      trials[repIndex].Years,
		RequiredWithdrawalPreSS:  preSS,
		RequiredWithdrawalPostSS: postSS,
	}, nil
}

func percentileRanges(sorted []decimal.Decimal) domain.PercentileRanges {
	return domain.PercentileRanges{
		P10: percentile(sorted, 10),
		P25: percentile(sorted, 25),
		P50: percentile(sorted, 50),
		P75: percentile(sorted, 75),
		P90: percentile(sorted, 90),
	}
}

func percentile(sorted []decimal.Decimal, p int) decimal.Decimal {
	idx := p * len(sorted) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func sortDecimals(d []decimal.Decimal) {
	sort.Slice(d, func(i, j int) bool { return d[i].LessThan(d[j]) })
}
