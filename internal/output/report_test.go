package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rdtax/credit-calculator/internal/domain"
	"github.com/sebdah/goldie/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reportFixture builds a fully deterministic result: fixed ids, no
// timestamps in the rendered output, hand-set trails.
func reportFixture() *domain.FullCalculationResult {
	return &domain.FullCalculationResult{
		ID:           "result-fixture",
		StudyName:    "Acme Study",
		TaxYear:      2024,
		RulesVersion: "2024.1",
		RulesHash:    "sha256:abc123",
		QRE: domain.QRESummary{
			WageQRE:           decimal.NewFromInt(100000),
			SupplyQRE:         decimal.Zero,
			ContractQRE:       decimal.Zero,
			BasicResearchQRE:  decimal.Zero,
			TotalQRE:          decimal.NewFromInt(100000),
			OverallConfidence: decimal.NewFromFloat(0.9),
			EvidenceCoverage:  decimal.NewFromInt(1),
		},
		RegularCredit: domain.FederalCreditResult{
			Method:      domain.MethodRegular,
			FinalCredit: decimal.NewFromInt(5000),
			Steps: []domain.CalculationStep{
				{
					StepNumber:  1,
					Description: "Total qualified research expenses",
					Formula:     "wage_qre + supply_qre + contract_qre + basic_research_qre",
					Result:      decimal.NewFromInt(100000),
					Citation:    "IRC §41(b)",
				},
			},
		},
		ASCCredit: domain.FederalCreditResult{
			Method:      domain.MethodASC,
			FinalCredit: decimal.NewFromInt(4000),
			Steps: []domain.CalculationStep{
				{
					StepNumber:  1,
					Description: "Tentative credit",
					Formula:     "total_qre × 6%",
					Result:      decimal.NewFromInt(4000),
					Citation:    "IRC §41(c)(4)(B)",
					Notes:       "no QRE in any of the 3 preceding tax years",
				},
			},
		},
		Comparison: domain.MethodComparison{
			RegularCredit:  decimal.NewFromInt(5000),
			ASCCredit:      decimal.NewFromInt(4000),
			SelectedMethod: domain.MethodRegular,
			FactorsConsidered: []string{
				"regular credit 5000 vs ASC credit 4000",
				"regular method yields the larger credit",
			},
		},
		SelectedMethod:     domain.MethodRegular,
		FinalFederalCredit: decimal.NewFromInt(5000),
	}
}

func TestWriteConsoleReportGolden(t *testing.T) {
	var buf bytes.Buffer
	rg := NewReportGenerator()
	require.NoError(t, rg.WriteConsoleReport(&buf, reportFixture()))

	g := goldie.New(t)
	g.Assert(t, "console_report", buf.Bytes())
}

func TestGenerateReportDispatch(t *testing.T) {
	rg := NewReportGenerator()

	t.Run("console", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, rg.GenerateReport(&buf, reportFixture(), "console"))
		assert.Contains(t, buf.String(), "R&D TAX CREDIT CALCULATION")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, rg.GenerateReport(&buf, reportFixture(), "json"))

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, "Acme Study", decoded["study_name"])
		// Decimals cross the boundary as strings, never floats.
		assert.Equal(t, "5000", decoded["final_federal_credit"])
	})

	t.Run("unsupported", func(t *testing.T) {
		var buf bytes.Buffer
		assert.Error(t, rg.GenerateReport(&buf, reportFixture(), "xml"))
	})
}

func TestWriteConsoleReportSections(t *testing.T) {
	result := reportFixture()
	result.Qualification = []domain.ProjectQualificationResult{
		{
			ProjectName:    "Navigation",
			Status:         domain.StatusQualified,
			OverallScore:   decimal.NewFromInt(90),
			MinScore:       decimal.NewFromInt(82),
			AuditRiskScore: decimal.NewFromInt(20),
		},
	}
	result.StateCredits = []domain.StateCreditResult{
		{
			StateCode:   "PA",
			StateName:   "Pennsylvania",
			IsEstimate:  true,
			FinalCredit: decimal.NewFromInt(32500),
			Citation:    "72 P.S. §8702-B",
		},
	}
	result.TotalStateCredits = decimal.NewFromInt(32500)
	result.RiskFlags = []domain.RiskFlag{
		{Code: "state_credit_estimate", Severity: domain.RiskMedium, Message: "PA proration is estimated"},
		{Code: "excluded_activity", Severity: domain.RiskHigh, Message: "one project excluded"},
	}

	var buf bytes.Buffer
	rg := NewReportGenerator()
	require.NoError(t, rg.WriteConsoleReport(&buf, result))
	out := buf.String()

	assert.Contains(t, out, "PROJECT QUALIFICATION")
	assert.Contains(t, out, "STATE CREDITS")
	assert.Contains(t, out, "(ESTIMATE)")
	assert.Contains(t, out, "RISK FLAGS")

	// High-severity flags sort ahead of medium ones.
	high := strings.Index(out, "excluded_activity")
	medium := strings.Index(out, "state_credit_estimate")
	require.Positive(t, high)
	require.Positive(t, medium)
	assert.Less(t, high, medium)
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "$79000.00", FormatCurrency(decimal.NewFromInt(79000)))
	assert.Equal(t, "$0.50", FormatCurrency(decimal.NewFromFloat(0.5)))
	assert.Equal(t, "$0.00", FormatCurrency(decimal.Zero))
}
