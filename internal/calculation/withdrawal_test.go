package calculation

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retiresim/portfolio-calculator/internal/domain"
)

func TestGrossUpWithdrawalRoundTrip(t *testing.T) {
	tc := newTestTaxCalculator(t)

	tests := []struct {
		name      string
		targetNet int64
		ssIncome  int64
	}{
		{"modest target no ss", 20000, 0},
		{"mid target no ss", 54390, 0},
		{"large target no ss", 150000, 0},
		{"mid target with ss", 54390, 30000},
		{"large target with ss", 150000, 30000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := decimal.NewFromInt(tt.targetNet)
			ss := decimal.NewFromInt(tt.ssIncome)

			gross, tax, err := tc.GrossUpWithdrawal(target, ss)
			require.NoError(t, err)
			assert.True(t, gross.GreaterThanOrEqual(decimal.Zero))
			assert.True(t, tax.GreaterThanOrEqual(decimal.Zero))

			net, err := tc.NetIncome(gross, ss)
			require.NoError(t, err)
			diff := net.Sub(target).Abs()
			assert.True(t, diff.LessThanOrEqual(decimal.NewFromInt(1)),
				"round trip off by %s (gross %s, net %s)", diff, gross, net)
		})
	}
}

// The reference case: a $54,390.75 annual net with no Social Security needs
// roughly a $67,500 gross withdrawal under the default tables.
func TestGrossUpWithdrawalReferenceCase(t *testing.T) {
	tc := newTestTaxCalculator(t)

	gross, tax, err := tc.GrossUpWithdrawal(decimal.RequireFromString("54390.75"), decimal.Zero)
	require.NoError(t, err)

	grossF, _ := gross.Float64()
	assert.InDelta(t, 67500, grossF, 5.0)

	taxF, _ := tax.Float64()
	assert.InDelta(t, 9903+3206.25, taxF, 5.0)
}

func TestGrossUpWithdrawalSSCoversTarget(t *testing.T) {
	tc := newTestTaxCalculator(t)

	// $30,000 of SS with no other income is entirely non-taxable and already
	// exceeds the $10,000 target, so nothing is withdrawn.
	gross, tax, err := tc.GrossUpWithdrawal(decimal.NewFromInt(10000), decimal.NewFromInt(30000))
	require.NoError(t, err)
	assert.True(t, gross.IsZero(), "gross = %s, want 0", gross)
	assert.True(t, tax.IsZero(), "tax = %s, want 0", tax)
}

func TestGrossUpWithdrawalZeroTarget(t *testing.T) {
	tc := newTestTaxCalculator(t)

	gross, tax, err := tc.GrossUpWithdrawal(decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, gross.IsZero())
	assert.True(t, tax.IsZero())
}

func TestGrossUpWithdrawalNegativeTarget(t *testing.T) {
	tc := newTestTaxCalculator(t)

	_, _, err := tc.GrossUpWithdrawal(decimal.NewFromInt(-100), decimal.Zero)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidParameter))
}

func TestGrossUpWithdrawalAlwaysAtLeastTarget(t *testing.T) {
	tc := newTestTaxCalculator(t)

	// Taxes only take; the gross can never be below the net it funds.
	for _, target := range []int64{1000, 25000, 80000, 300000} {
		gross, _, err := tc.GrossUpWithdrawal(decimal.NewFromInt(target), decimal.Zero)
		require.NoError(t, err)
		assert.True(t, gross.GreaterThanOrEqual(decimal.NewFromInt(target).Sub(decimal.NewFromInt(1))),
			"gross %s below target %d", gross, target)
	}
}
