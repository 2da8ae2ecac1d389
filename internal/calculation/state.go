package calculation

import (
	"fmt"

	"github.com/rdtax/credit-calculator/internal/domain"
	"github.com/rdtax/credit-calculator/pkg/decutil"
	"github.com/shopspring/decimal"
)

// StateCreditInput carries the state-apportioned inputs for one state.
type StateCreditInput struct {
	TaxYear  int
	StateQRE decimal.Decimal

	// FederalBaseAmount feeds states whose base method piggybacks on the
	// federal computation.
	FederalBaseAmount decimal.Decimal

	// PriorYearStateQREs keys are tax years; used by state-specific base
	// methods (e.g. PA's average-of-prior-four).
	PriorYearStateQREs map[int]decimal.Decimal
}

// CalculateStateCredit computes one state's credit. A nil result with a nil
// error means the state has no R&D credit, an expected business outcome.
// An unknown base method is an engine defect and returns an error.
func (e *Engine) CalculateStateCredit(code string, input StateCreditInput) (*domain.StateCreditResult, error) {
	sr, ok := e.rules.StateRules(code)
	if !ok || !sr.HasCredit {
		return nil, nil
	}

	trail := newStepTrail()
	result := &domain.StateCreditResult{
		StateCode:         sr.Code,
		StateName:         sr.Name,
		BaseMeth:          sr.BaseMeth,
		RulesVersion:      e.rules.Version(),
		StateQRE:          input.StateQRE,
		Rate:              sr.Rate,
		Refundable:        sr.Refundable,
		CarryforwardYears: sr.CarryforwardYears,
		Citation:          sr.Citation,
		Notes:             append([]string(nil), sr.Notes...),
	}

	var base decimal.Decimal
	switch sr.BaseMeth {
	case domain.BaseMethodFederal:
		base = decutil.RoundMoney(input.FederalBaseAmount)
		trail.add(
			"Base amount (federal method)",
			"federal_base_amount",
			map[string]decimal.Decimal{"federal_base_amount": input.FederalBaseAmount},
			base,
			sr.Citation, "state conforms to the federal base computation")

	case domain.BaseMethodNonIncremental:
		base = decimal.Zero
		trail.add(
			"Base amount (non-incremental)",
			"0",
			nil,
			base,
			sr.Citation, "credit applies to total state QRE")

	case domain.BaseMethodFixedPercentage:
		base = decutil.RoundMoney(input.StateQRE.Mul(sr.FixedBasePercentage))
		trail.add(
			"Base amount (fixed percentage)",
			"state_qre × fixed_base_percentage",
			map[string]decimal.Decimal{"state_qre": input.StateQRE, "fixed_base_percentage": sr.FixedBasePercentage},
			base,
			sr.Citation, "")

	case domain.BaseMethodPASpecial:
		base = e.pennsylvaniaBase(input, trail, sr)

	default:
		return nil, fmt.Errorf("state %s: unknown base method %q", code, sr.BaseMeth)
	}
	result.BaseAmount = base

	excess := decimal.Max(input.StateQRE.Sub(base), decimal.Zero)
	trail.add(
		"Excess state QRE",
		"max(state_qre − base_amount, 0)",
		map[string]decimal.Decimal{"state_qre": input.StateQRE, "base_amount": base},
		excess,
		sr.Citation, "")
	result.ExcessQRE = excess

	tentative := trail.add(
		"Tentative state credit",
		"excess_state_qre × rate",
		map[string]decimal.Decimal{"excess_state_qre": excess, "rate": sr.Rate},
		decutil.RoundMoney(excess.Mul(sr.Rate)),
		sr.Citation, "")
	result.TentativeCredit = tentative

	final := tentative
	if sr.Cap.GreaterThan(decimal.Zero) && final.GreaterThan(sr.Cap) {
		result.CapApplied = true
		final = trail.add(
			"Annual credit cap",
			"min(tentative_credit, cap)",
			map[string]decimal.Decimal{"tentative_credit": tentative, "cap": sr.Cap},
			sr.Cap,
			sr.Citation, "")
	}

	// Program-pool proration is the final multiplicative step. The factor is
	// an estimate until the state publishes the actual award-year proration,
	// and the result is labeled accordingly.
	if sr.ProgramCap.GreaterThan(decimal.Zero) && sr.ProrationFactor.GreaterThan(decimal.Zero) {
		result.ProrationApplied = true
		result.IsEstimate = true
		final = trail.add(
			"Program-cap proration (estimate)",
			"credit × estimated_proration_factor",
			map[string]decimal.Decimal{"credit": final, "estimated_proration_factor": sr.ProrationFactor},
			decutil.RoundMoney(final.Mul(sr.ProrationFactor)),
			sr.Citation,
			"ESTIMATE: statewide program pool is prorated among all claimants; the actual factor is unknown until published by the state")
		result.Notes = append(result.Notes, "final credit is an estimate pending the state-published proration factor")
	}

	result.FinalCredit = final
	result.Steps = trail.list()
	return result, nil
}

// pennsylvaniaBase computes PA's base: the greater of 50% of current-year
// state QRE or the average of the prior four years' state QRE.
func (e *Engine) pennsylvaniaBase(input StateCreditInput, trail *stepTrail, sr domain.StateRules) decimal.Decimal {
	priorSum := decimal.Zero
	priorCount := 0
	inputs := map[string]decimal.Decimal{"state_qre": input.StateQRE}
	for i := 1; i <= 4; i++ {
		year := input.TaxYear - i
		if qre, ok := input.PriorYearStateQREs[year]; ok {
			priorSum = priorSum.Add(qre)
			priorCount++
			inputs[yearKey(year)] = qre
		}
	}
	avgPrior := decimal.Zero
	if priorCount > 0 {
		avgPrior = decutil.RoundMoney(priorSum.Div(decimal.NewFromInt(int64(priorCount))))
	}
	halfCurrent := decutil.RoundMoney(input.StateQRE.Mul(decimal.NewFromFloat(0.50)))
	inputs["avg_prior_4yr"] = avgPrior
	inputs["half_current"] = halfCurrent

	base := decimal.Max(halfCurrent, avgPrior)
	trail.add(
		"Base amount (PA method)",
		"max(0.50 × state_qre, avg(prior 4 years state QRE))",
		inputs,
		base,
		sr.Citation, "")
	return base
}
