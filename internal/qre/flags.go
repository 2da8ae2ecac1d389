package qre

import (
	"fmt"

	"github.com/rdtax/credit-calculator/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	highAllocationThreshold = decimal.NewFromInt(80)
	lowConfidenceThreshold  = decimal.NewFromFloat(0.60)
	estimateHeavyFraction   = decimal.NewFromFloat(0.50)
	supplyShareThreshold    = decimal.NewFromFloat(0.30)
)

// riskFlags generates the reviewer-facing warnings for a QRE summary:
// substantially-all usage to verify, low-confidence allocations,
// estimate-heavy studies, outsized supply share, and evidence gaps.
func (e *Engine) riskFlags(summary *domain.QRESummary) []domain.RiskFlag {
	var flags []domain.RiskFlag

	estimateCount := 0
	for _, a := range summary.WageAllocations {
		if a.QualifiedPercentage.GreaterThan(highAllocationThreshold) || a.SubstantiallyAll {
			flags = append(flags, domain.RiskFlag{
				Code:     "high_allocation",
				Severity: domain.RiskMedium,
				Message:  fmt.Sprintf("Employee %s allocated %s%% qualified time; verify substantially-all treatment against contemporaneous records", a.EmployeeID, a.QualifiedPercentage),
			})
		}
		if a.Confidence.LessThan(lowConfidenceThreshold) {
			flags = append(flags, domain.RiskFlag{
				Code:     "low_confidence_allocation",
				Severity: domain.RiskMedium,
				Message:  fmt.Sprintf("Employee %s wage allocation confidence %s is below %s", a.EmployeeID, a.Confidence, lowConfidenceThreshold),
			})
		}
		if len(a.EvidenceIDs) == 0 && a.Source != domain.TimeSourceTimesheet {
			flags = append(flags, domain.RiskFlag{
				Code:     "no_evidence",
				Severity: domain.RiskLow,
				Message:  fmt.Sprintf("Employee %s allocation has no supporting evidence ids", a.EmployeeID),
			})
		}
		if a.Source == domain.TimeSourceEstimate {
			estimateCount++
		}
	}

	if total := len(summary.WageAllocations); total > 0 {
		estimateFraction := decimal.NewFromInt(int64(estimateCount)).Div(decimal.NewFromInt(int64(total)))
		if estimateFraction.GreaterThan(estimateHeavyFraction) {
			flags = append(flags, domain.RiskFlag{
				Code:     "estimate_heavy",
				Severity: domain.RiskHigh,
				Message:  fmt.Sprintf("%d of %d employees rely on estimated time allocation; timesheet substantiation recommended", estimateCount, total),
			})
		}
	}

	if summary.TotalQRE.GreaterThan(decimal.Zero) {
		supplyShare := summary.SupplyQRE.Div(summary.TotalQRE)
		if supplyShare.GreaterThan(supplyShareThreshold) {
			flags = append(flags, domain.RiskFlag{
				Code:     "supply_share",
				Severity: domain.RiskMedium,
				Message:  fmt.Sprintf("Supply QRE is %s%% of total QRE, above the %s%% review threshold", supplyShare.Mul(decimal.NewFromInt(100)).Round(1), supplyShareThreshold.Mul(decimal.NewFromInt(100))),
			})
		}
	}

	return flags
}
