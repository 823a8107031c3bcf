package calculation

import (
	"errors"
	"fmt"

	"github.com/retiresim/portfolio-calculator/internal/domain"
	"github.com/shopspring/decimal"
)

// ErrTaxInversionNoConvergence reports that the withdrawal gross-up solve
// failed to reach the target net income within the iteration budget.
var ErrTaxInversionNoConvergence = errors.New("tax inversion did not converge")

const (
	// maxInversionIterations bounds the bisection; the interval halves each
	// step, so dollar precision is reached long before the cap.
	maxInversionIterations = 100
	maxBoundExpansions     = 64
)

// grossUpTolerance is how close the achieved net must be to the target ($1).
var grossUpTolerance = decimal.NewFromInt(1)

// GrossUpWithdrawal solves for the gross portfolio withdrawal whose
// after-tax value, combined with the given annual Social Security income,
// meets the target net income. The tax function is monotonic, so a bounded
// bisection is sufficient; there is no closed form once progressive
// brackets are involved.
func (tc *TaxCalculator) GrossUpWithdrawal(targetNet, ssIncome decimal.Decimal) (gross, tax decimal.Decimal, err error) {
	if targetNet.IsNegative() {
		return decimal.Zero, decimal.Zero,
			fmt.Errorf("%w: target net income cannot be negative (got %s)", domain.ErrInvalidParameter, targetNet)
	}

	// Social Security alone may already cover the target; SS cannot create
	// a negative withdrawal requirement.
	netAtZero, federal, state, _, err := tc.NetIncomeDetail(decimal.Zero, ssIncome)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	if netAtZero.GreaterThanOrEqual(targetNet) {
		return decimal.Zero, federal.Add(state), nil
	}

	lo := decimal.Zero
	hi := decimal.Max(targetNet, decimal.NewFromInt(1000))
	expanded := false
	for i := 0; i < maxBoundExpansions; i++ {
		net, nerr := tc.NetIncome(hi, ssIncome)
		if nerr != nil {
			return decimal.Zero, decimal.Zero, nerr
		}
		if net.GreaterThanOrEqual(targetNet) {
			expanded = true
			break
		}
		hi = hi.Mul(decimal.NewFromInt(2))
	}
	if !expanded {
		return decimal.Zero, decimal.Zero,
			fmt.Errorf("%w: no upper bound found for target net %s", ErrTaxInversionNoConvergence, targetNet)
	}

	two := decimal.NewFromInt(2)
	for i := 0; i < maxInversionIterations; i++ {
		mid := lo.Add(hi).Div(two)
		net, federal, state, _, nerr := tc.NetIncomeDetail(mid, ssIncome)
		if nerr != nil {
			return decimal.Zero, decimal.Zero, nerr
		}
		if net.Sub(targetNet).Abs().LessThanOrEqual(grossUpTolerance) {
			return mid, federal.Add(state), nil
		}
		if net.LessThan(targetNet) {
			lo = mid
		} else {
			hi = mid
		}
	}

	return decimal.Zero, decimal.Zero,
		fmt.Errorf("%w: target net %s not reached within %d iterations", ErrTaxInversionNoConvergence, targetNet, maxInversionIterations)
}
