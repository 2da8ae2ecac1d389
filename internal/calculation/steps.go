package calculation

import (
	"github.com/rdtax/credit-calculator/internal/domain"
	"github.com/shopspring/decimal"
)

// stepTrail builds an ordered, append-only audit trail. Every number a
// result reports must come out of a recorded step; each step stores the
// already-rounded result that subsequent steps consume.
type stepTrail struct {
	steps []domain.CalculationStep
}

func newStepTrail() *stepTrail {
	return &stepTrail{}
}

// add records the next step and returns its result for chaining.
func (t *stepTrail) add(description, formula string, inputs map[string]decimal.Decimal, result decimal.Decimal, citation, notes string) decimal.Decimal {
	t.steps = append(t.steps, domain.CalculationStep{
		StepNumber:  len(t.steps) + 1,
		Description: description,
		Formula:     formula,
		Inputs:      inputs,
		Result:      result,
		Citation:    citation,
		Notes:       notes,
	})
	return result
}

func (t *stepTrail) list() []domain.CalculationStep {
	return t.steps
}
