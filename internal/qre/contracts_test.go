package qre

import (
	"testing"

	"github.com/rdtax/credit-calculator/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// A $200,000 payment: 65% included for a standard contractor, 75% for a
// qualified research organization, and nothing when the work was performed
// outside the US.
func TestEvaluateContract(t *testing.T) {
	engine := newTestEngine(t)

	tests := []struct {
		name         string
		qualifiedOrg bool
		outsideUS    bool
		wantAmount   int64
		wantExcluded bool
	}{
		{"standard contractor", false, false, 130000, false},
		{"qualified research organization", true, false, 150000, false},
		{"performed outside the US", false, true, 0, true},
		{"qualified org outside the US still excluded", true, true, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contract := domain.ContractRecord{
				ID:                     "c-1",
				ContractorName:         "Vantage Labs",
				Amount:                 decimal.NewFromInt(200000),
				IsQualifiedResearchOrg: tt.qualifiedOrg,
				PerformedOutsideUS:     tt.outsideUS,
			}
			cq := engine.evaluateContract(contract, nil)

			assert.Equal(t, tt.wantExcluded, cq.Excluded)
			assert.True(t, cq.QualifiedAmount.Equal(decimal.NewFromInt(tt.wantAmount)),
				"amount = %s, want %d", cq.QualifiedAmount, tt.wantAmount)
			assert.NotEmpty(t, cq.Rationale)
			if tt.wantExcluded {
				assert.True(t, cq.AppliedRate.IsZero())
			}
		})
	}
}

func TestEvaluateContractUnqualifiedProjectExcluded(t *testing.T) {
	engine := newTestEngine(t)
	contract := domain.ContractRecord{
		ID:             "c-1",
		ContractorName: "Vantage Labs",
		Amount:         decimal.NewFromInt(200000),
		ProjectID:      "p-bad",
	}

	cq := engine.evaluateContract(contract, map[string]bool{"p-bad": false})
	assert.True(t, cq.Excluded)
	assert.True(t, cq.QualifiedAmount.IsZero())
	assert.True(t, cq.AppliedRate.IsZero())
	assert.Contains(t, cq.Rationale, "p-bad")

	// The same payment on a qualified project gets the normal 65% rate.
	passed := engine.evaluateContract(contract, map[string]bool{"p-bad": true})
	assert.False(t, passed.Excluded)
	assert.True(t, passed.QualifiedAmount.Equal(decimal.NewFromInt(130000)))
}
