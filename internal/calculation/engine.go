// Package calculation computes Federal Regular and Alternative Simplified
// R&D credits and per-state variants as deterministic, fully-traced step
// sequences. Engines are pure computations over in-memory inputs: no I/O, no
// shared mutable state, safe to call concurrently.
package calculation

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rdtax/credit-calculator/internal/domain"
	"github.com/rdtax/credit-calculator/internal/rules"
	"github.com/shopspring/decimal"
)

// Engine computes credits against one rules snapshot.
type Engine struct {
	rules *rules.Engine
}

// NewEngine creates a calculation engine over a rules snapshot.
func NewEngine(r *rules.Engine) *Engine {
	return &Engine{rules: r}
}

// CalculateFullCredit orchestrates both federal methods, the method
// comparison, and the requested state credits from a study's QRE summary and
// qualification results. The result is pinned to the rules version and hash;
// GeneratedAt is attached after the numeric work completes.
func (e *Engine) CalculateFullCredit(input domain.StudyInput, qre domain.QRESummary, qualification []domain.ProjectQualificationResult) (*domain.FullCalculationResult, error) {
	creditInput := CreditInput{
		TaxYear:                  input.TaxYear,
		WageQRE:                  qre.WageQRE,
		SupplyQRE:                qre.SupplyQRE,
		ContractQRE:              qre.ContractQRE,
		BasicResearchQRE:         qre.BasicResearchQRE,
		BasePeriod:               input.BasePeriod,
		PriorYearQREs:            input.PriorYearQREs,
		CurrentYearGrossReceipts: input.CurrentYearGrossReceipts,
		Section280CElection:      input.Section280CElection,
		AllocationPercentage:     input.ControlledGroupAllocationPc,
		IsShortYear:              input.IsShortYear,
		DaysInYear:               input.DaysInYear,
	}

	regular := e.CalculateRegularCredit(creditInput)
	asc := e.CalculateASCCredit(creditInput)

	comparison := compareMethods(regular, asc, len(input.BasePeriod) > 0)
	selected := comparison.SelectedMethod
	if input.CPAMethodOverride != "" {
		method := domain.CalculationMethod(input.CPAMethodOverride)
		if method != domain.MethodRegular && method != domain.MethodASC {
			return nil, fmt.Errorf("unknown cpa_method_override %q", input.CPAMethodOverride)
		}
		if input.CPAMethodOverrideReason == "" {
			return nil, fmt.Errorf("cpa_method_override requires cpa_method_override_reason")
		}
		comparison.CPAOverride = true
		comparison.OverrideReason = input.CPAMethodOverrideReason
		selected = method
		comparison.SelectedMethod = method
		comparison.FactorsConsidered = append(comparison.FactorsConsidered,
			fmt.Sprintf("CPA override selected %s: %s", method, input.CPAMethodOverrideReason))
	}

	result := &domain.FullCalculationResult{
		ID:             uuid.NewString(),
		StudyName:      input.StudyName,
		TaxYear:        input.TaxYear,
		RulesVersion:   e.rules.Version(),
		RulesHash:      e.rules.Hash(),
		Qualification:  qualification,
		QRE:            qre,
		RegularCredit:  regular,
		ASCCredit:      asc,
		Comparison:     comparison,
		SelectedMethod: selected,
		RiskFlags:      append([]domain.RiskFlag(nil), qre.RiskFlags...),
	}
	switch selected {
	case domain.MethodRegular:
		result.FinalFederalCredit = regular.FinalCredit
	case domain.MethodASC:
		result.FinalFederalCredit = asc.FinalCredit
	}

	for _, code := range input.States {
		stateQRE, flagged := e.stateQRE(qre, code)
		if flagged {
			result.RiskFlags = append(result.RiskFlags, domain.RiskFlag{
				Code:     "state_allocation_missing",
				Severity: domain.RiskMedium,
				Message:  fmt.Sprintf("no per-state QRE allocation recorded; total QRE used for %s", code),
			})
		}
		stateResult, err := e.CalculateStateCredit(code, StateCreditInput{
			TaxYear:           input.TaxYear,
			StateQRE:          stateQRE,
			FederalBaseAmount: regular.BaseAmount,
			// State-level history is not tracked separately in the study
			// input; the federal prior-year QREs stand in for states that
			// need a lookback.
			PriorYearStateQREs: input.PriorYearQREs,
		})
		if err != nil {
			return nil, fmt.Errorf("state credit for %s: %w", code, err)
		}
		if stateResult == nil {
			// No R&D credit in this state: a valid outcome, recorded as a
			// note rather than an error or an empty result row.
			continue
		}
		if stateResult.IsEstimate {
			result.RiskFlags = append(result.RiskFlags, domain.RiskFlag{
				Code:     "state_credit_estimate",
				Severity: domain.RiskMedium,
				Message:  fmt.Sprintf("%s credit depends on an estimated program proration factor", code),
			})
		}
		result.StateCredits = append(result.StateCredits, *stateResult)
		result.TotalStateCredits = result.TotalStateCredits.Add(stateResult.FinalCredit)
	}

	result.GeneratedAt = time.Now().UTC()
	return result, nil
}

// stateQRE resolves the QRE dollars attributable to one state. When the
// study carries no per-state provenance at all, total QRE is used and the
// caller records a risk flag.
func (e *Engine) stateQRE(qre domain.QRESummary, code string) (decimal.Decimal, bool) {
	if len(qre.StateAllocation) == 0 {
		return qre.TotalQRE, true
	}
	return qre.StateAllocation[code], false
}
