package calculation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateStateCreditFederalMethod(t *testing.T) {
	engine := newTestEngine(t)
	result, err := engine.CalculateStateCredit("CA", StateCreditInput{
		TaxYear:           2024,
		StateQRE:          decimal.NewFromInt(800000),
		FederalBaseAmount: decimal.NewFromInt(500000),
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, "California", result.StateName)
	assert.True(t, result.BaseAmount.Equal(decimal.NewFromInt(500000)))
	assert.True(t, result.ExcessQRE.Equal(decimal.NewFromInt(300000)))
	assert.True(t, result.FinalCredit.Equal(decimal.NewFromInt(45000)), "final = %s", result.FinalCredit)
	assert.False(t, result.IsEstimate)
	assert.Equal(t, -1, result.CarryforwardYears, "CA carryforward is indefinite")
}

func TestCalculateStateCreditNonIncremental(t *testing.T) {
	engine := newTestEngine(t)
	result, err := engine.CalculateStateCredit("CT", StateCreditInput{
		TaxYear:  2024,
		StateQRE: decimal.NewFromInt(100000),
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.BaseAmount.IsZero(), "non-incremental credit has no base")
	assert.True(t, result.FinalCredit.Equal(decimal.NewFromInt(6000)), "final = %s", result.FinalCredit)
}

func TestCalculateStateCreditFixedPercentage(t *testing.T) {
	engine := newTestEngine(t)
	result, err := engine.CalculateStateCredit("AZ", StateCreditInput{
		TaxYear:  2024,
		StateQRE: decimal.NewFromInt(100000),
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.BaseAmount.Equal(decimal.NewFromInt(50000)))
	assert.True(t, result.ExcessQRE.Equal(decimal.NewFromInt(50000)))
	assert.True(t, result.FinalCredit.Equal(decimal.NewFromInt(12000)), "final = %s", result.FinalCredit)
	assert.True(t, result.Refundable)
}

func TestCalculateStateCreditPennsylvania(t *testing.T) {
	engine := newTestEngine(t)

	t.Run("no prior history falls back to half of current", func(t *testing.T) {
		result, err := engine.CalculateStateCredit("PA", StateCreditInput{
			TaxYear:  2024,
			StateQRE: decimal.NewFromInt(1000000),
		})
		require.NoError(t, err)
		require.NotNil(t, result)

		assert.True(t, result.BaseAmount.Equal(decimal.NewFromInt(500000)), "base = %s", result.BaseAmount)
		assert.True(t, result.TentativeCredit.Equal(decimal.NewFromInt(50000)), "tentative = %s", result.TentativeCredit)
		// 0.65 estimated program proration applied as the final step.
		assert.True(t, result.FinalCredit.Equal(decimal.NewFromInt(32500)), "final = %s", result.FinalCredit)
		assert.True(t, result.ProrationApplied)
		assert.True(t, result.IsEstimate, "prorated PA credit must be labeled an estimate")

		last := result.Steps[len(result.Steps)-1]
		assert.Contains(t, last.Notes, "ESTIMATE")
	})

	t.Run("prior-four-year average beats half of current", func(t *testing.T) {
		result, err := engine.CalculateStateCredit("PA", StateCreditInput{
			TaxYear:  2024,
			StateQRE: decimal.NewFromInt(1000000),
			PriorYearStateQREs: map[int]decimal.Decimal{
				2023: decimal.NewFromInt(800000),
				2022: decimal.NewFromInt(800000),
				2021: decimal.NewFromInt(800000),
				2020: decimal.NewFromInt(800000),
			},
		})
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.True(t, result.BaseAmount.Equal(decimal.NewFromInt(800000)), "base = %s", result.BaseAmount)
	})
}

func TestCalculateStateCreditAnnualCap(t *testing.T) {
	engine := newTestEngine(t)
	result, err := engine.CalculateStateCredit("MA", StateCreditInput{
		TaxYear:           2024,
		StateQRE:          decimal.NewFromInt(300000000),
		FederalBaseAmount: decimal.Zero,
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.CapApplied)
	assert.True(t, result.FinalCredit.Equal(decimal.NewFromInt(25000000)), "final = %s", result.FinalCredit)
}

func TestCalculateStateCreditNoCreditStates(t *testing.T) {
	engine := newTestEngine(t)

	tests := []struct {
		name string
		code string
	}{
		{"expired credit", "WA"},
		{"no corporate income tax", "NV"},
		{"unknown code", "ZZ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := engine.CalculateStateCredit(tt.code, StateCreditInput{
				TaxYear:  2024,
				StateQRE: decimal.NewFromInt(100000),
			})
			assert.NoError(t, err, "no credit is a valid outcome, not an error")
			assert.Nil(t, result)
		})
	}
}

func TestCalculateStateCreditExcessFlooredAtZero(t *testing.T) {
	engine := newTestEngine(t)
	result, err := engine.CalculateStateCredit("NY", StateCreditInput{
		TaxYear:           2024,
		StateQRE:          decimal.NewFromInt(100000),
		FederalBaseAmount: decimal.NewFromInt(900000),
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.ExcessQRE.IsZero())
	assert.True(t, result.FinalCredit.IsZero())
}
