package qre

import (
	"github.com/rdtax/credit-calculator/internal/domain"
	"github.com/rdtax/credit-calculator/pkg/decutil"
	"github.com/shopspring/decimal"
)

// Source confidence baselines. Timesheet-derived allocations are the most
// reliable; stored estimates the least. Corroborating evidence ids add a
// small boost, capped below certainty.
var (
	confidenceTimesheet = decimal.NewFromFloat(0.90)
	confidenceEstimate  = decimal.NewFromFloat(0.60)
	confidenceInterview = decimal.NewFromFloat(0.70)
	corroborationBoost  = decimal.NewFromFloat(0.05)
	confidenceCeiling   = decimal.NewFromFloat(0.95)
)

// calculateWageAllocation derives an employee's qualified wage QRE.
// The allocation percentage comes from timesheet hours when present (ratio of
// hours on qualified projects to total hours), otherwise from the stored
// estimate or interview percentage. Wage basis is W-2 wages only; stock
// compensation never enters. The substantially-all rule applies: at or above
// the 80% threshold, the full W-2 amount counts, with no proration.
func (e *Engine) calculateWageAllocation(emp domain.EmployeeRecord, qualifiedProjects map[string]bool) domain.WageAllocation {
	alloc := domain.WageAllocation{
		EmployeeID:        emp.ID,
		EmployeeName:      emp.Name,
		W2Wages:           emp.W2Wages,
		EvidenceIDs:       emp.EvidenceIDs,
		StateCode:         emp.StateCode,
		ProjectAllocation: make(map[string]decimal.Decimal),
	}

	pct, source, projectHours := e.qualifiedPercentage(emp, qualifiedProjects)
	alloc.QualifiedPercentage = pct
	alloc.Source = source

	threshold := e.rules.FederalRules().SubstantiallyAllThreshold
	if pct.GreaterThanOrEqual(threshold) {
		alloc.SubstantiallyAll = true
		alloc.QualifiedWages = decutil.RoundMoney(emp.W2Wages)
	} else {
		alloc.QualifiedWages = decutil.RoundMoney(emp.W2Wages.Mul(decutil.Pct(pct)))
	}

	// Break qualified wages down by project in proportion to qualified hours;
	// without a timesheet the whole amount stays unallocated by project.
	totalQualifiedHours := decimal.Zero
	for _, hours := range projectHours {
		totalQualifiedHours = totalQualifiedHours.Add(hours)
	}
	if totalQualifiedHours.GreaterThan(decimal.Zero) {
		for projectID, hours := range projectHours {
			share := alloc.QualifiedWages.Mul(hours).Div(totalQualifiedHours)
			alloc.ProjectAllocation[projectID] = decutil.RoundMoney(share)
		}
	}

	confidence := sourceConfidence(source)
	if len(emp.EvidenceIDs) > 0 {
		confidence = confidence.Add(corroborationBoost)
	}
	alloc.Confidence = decutil.Clamp(confidence, decimal.Zero, confidenceCeiling)
	return alloc
}

// qualifiedPercentage returns the allocation percentage, its provenance, and
// the qualified hours per project when timesheet-derived.
func (e *Engine) qualifiedPercentage(emp domain.EmployeeRecord, qualifiedProjects map[string]bool) (decimal.Decimal, domain.TimeSource, map[string]decimal.Decimal) {
	if len(emp.Timesheet) > 0 {
		totalHours := decimal.Zero
		qualifiedHours := decimal.Zero
		projectHours := make(map[string]decimal.Decimal)
		for _, entry := range emp.Timesheet {
			totalHours = totalHours.Add(entry.Hours)
			if qualifiedProjects == nil || qualifiedProjects[entry.ProjectID] {
				qualifiedHours = qualifiedHours.Add(entry.Hours)
				projectHours[entry.ProjectID] = projectHours[entry.ProjectID].Add(entry.Hours)
			}
		}
		if totalHours.GreaterThan(decimal.Zero) {
			pct := qualifiedHours.Div(totalHours).Mul(decimal.NewFromInt(100)).Round(2)
			return pct, domain.TimeSourceTimesheet, projectHours
		}
	}

	source := emp.QualifiedTimeSource
	if source == "" {
		source = domain.TimeSourceEstimate
	}
	pct := decutil.Clamp(emp.QualifiedTimePercentage, decimal.Zero, decimal.NewFromInt(100))
	return pct, source, nil
}

func sourceConfidence(source domain.TimeSource) decimal.Decimal {
	switch source {
	case domain.TimeSourceTimesheet:
		return confidenceTimesheet
	case domain.TimeSourceInterview:
		return confidenceInterview
	default:
		return confidenceEstimate
	}
}
