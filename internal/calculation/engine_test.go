package calculation

import (
	"testing"

	"github.com/rdtax/credit-calculator/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startupStudy() (domain.StudyInput, domain.QRESummary) {
	input := domain.StudyInput{
		StudyName:           "Acme Robotics 2024",
		TaxYear:             2024,
		States:              []string{"CT", "WA"},
		Section280CElection: true,
	}
	qre := domain.QRESummary{
		StudyName:    input.StudyName,
		TaxYear:      input.TaxYear,
		RulesVersion: "2024.1",
		WageQRE:      decimal.NewFromInt(1000000),
		TotalQRE:     decimal.NewFromInt(1000000),
	}
	return input, qre
}

func TestCalculateFullCredit(t *testing.T) {
	engine := newTestEngine(t)
	input, qre := startupStudy()

	result, err := engine.CalculateFullCredit(input, qre, nil)
	require.NoError(t, err)

	assert.NotEmpty(t, result.ID)
	assert.Equal(t, "2024.1", result.RulesVersion)
	assert.NotEmpty(t, result.RulesHash)
	assert.False(t, result.GeneratedAt.IsZero())

	assert.Equal(t, domain.MethodRegular, result.SelectedMethod)
	assert.True(t, result.RegularCredit.FinalCredit.Equal(decimal.NewFromInt(79000)), "regular = %s", result.RegularCredit.FinalCredit)
	assert.True(t, result.ASCCredit.FinalCredit.Equal(decimal.NewFromInt(47400)), "asc = %s", result.ASCCredit.FinalCredit)
	assert.True(t, result.FinalFederalCredit.Equal(decimal.NewFromInt(79000)))

	// CT computes on total QRE; WA has no credit and produces no row.
	require.Len(t, result.StateCredits, 1)
	assert.Equal(t, "CT", result.StateCredits[0].StateCode)
	assert.True(t, result.StateCredits[0].FinalCredit.Equal(decimal.NewFromInt(60000)), "CT = %s", result.StateCredits[0].FinalCredit)
	assert.True(t, result.TotalStateCredits.Equal(decimal.NewFromInt(60000)))

	// No per-state allocation was recorded, so the fallback is flagged.
	codes := flagCodes(result.RiskFlags)
	assert.Contains(t, codes, "state_allocation_missing")
}

func TestCalculateFullCreditUsesStateAllocation(t *testing.T) {
	engine := newTestEngine(t)
	input, qre := startupStudy()
	qre.StateAllocation = map[string]decimal.Decimal{
		"CT": decimal.NewFromInt(400000),
	}

	result, err := engine.CalculateFullCredit(input, qre, nil)
	require.NoError(t, err)

	require.Len(t, result.StateCredits, 1)
	assert.True(t, result.StateCredits[0].StateQRE.Equal(decimal.NewFromInt(400000)))
	assert.NotContains(t, flagCodes(result.RiskFlags), "state_allocation_missing")
}

func TestCalculateFullCreditFlagsEstimatedStateCredits(t *testing.T) {
	engine := newTestEngine(t)
	input, qre := startupStudy()
	input.States = []string{"PA"}

	result, err := engine.CalculateFullCredit(input, qre, nil)
	require.NoError(t, err)

	require.Len(t, result.StateCredits, 1)
	assert.True(t, result.StateCredits[0].IsEstimate)
	assert.Contains(t, flagCodes(result.RiskFlags), "state_credit_estimate")
}

func TestCalculateFullCreditCPAOverride(t *testing.T) {
	engine := newTestEngine(t)

	t.Run("override forces the asc method", func(t *testing.T) {
		input, qre := startupStudy()
		input.CPAMethodOverride = "asc"
		input.CPAMethodOverrideReason = "client prefers ASC substantiation burden"

		result, err := engine.CalculateFullCredit(input, qre, nil)
		require.NoError(t, err)

		assert.Equal(t, domain.MethodASC, result.SelectedMethod)
		assert.True(t, result.FinalFederalCredit.Equal(decimal.NewFromInt(47400)))
		assert.True(t, result.Comparison.CPAOverride)
		assert.Equal(t, "client prefers ASC substantiation burden", result.Comparison.OverrideReason)
	})

	t.Run("override without a reason is rejected", func(t *testing.T) {
		input, qre := startupStudy()
		input.CPAMethodOverride = "asc"

		_, err := engine.CalculateFullCredit(input, qre, nil)
		assert.Error(t, err)
	})

	t.Run("unknown method is rejected", func(t *testing.T) {
		input, qre := startupStudy()
		input.CPAMethodOverride = "hybrid"
		input.CPAMethodOverrideReason = "because"

		_, err := engine.CalculateFullCredit(input, qre, nil)
		assert.Error(t, err)
	})
}

func flagCodes(flags []domain.RiskFlag) []string {
	codes := make([]string, 0, len(flags))
	for _, f := range flags {
		codes = append(codes, f.Code)
	}
	return codes
}
