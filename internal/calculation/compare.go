package calculation

import (
	"fmt"

	"github.com/rdtax/credit-calculator/internal/domain"
	"github.com/shopspring/decimal"
)

var comparisonTieBand = decimal.NewFromFloat(0.10)

// compareMethods picks the federal method with the strictly larger final
// credit. Ties favor ASC for its simpler substantiation; so does a thin
// base-period history when the two credits land within 10% of each other.
// The selection is advisory; a CPA override supersedes it upstream.
func compareMethods(regular, asc domain.FederalCreditResult, hasBasePeriod bool) domain.MethodComparison {
	comparison := domain.MethodComparison{
		RegularCredit: regular.FinalCredit,
		ASCCredit:     asc.FinalCredit,
	}

	factors := []string{
		fmt.Sprintf("regular credit %s vs ASC credit %s", regular.FinalCredit, asc.FinalCredit),
	}

	switch {
	case regular.FinalCredit.GreaterThan(asc.FinalCredit):
		comparison.SelectedMethod = domain.MethodRegular
		factors = append(factors, "regular method yields the larger credit")
	case asc.FinalCredit.GreaterThan(regular.FinalCredit):
		comparison.SelectedMethod = domain.MethodASC
		factors = append(factors, "ASC yields the larger credit")
	default:
		comparison.SelectedMethod = domain.MethodASC
		factors = append(factors, "credits are equal; ASC selected for simplicity")
	}

	if !hasBasePeriod && comparison.SelectedMethod == domain.MethodRegular && withinBand(regular.FinalCredit, asc.FinalCredit) {
		comparison.SelectedMethod = domain.MethodASC
		factors = append(factors,
			"base-period history is absent and the credits are within 10%; ASC preferred to avoid fixed-base substantiation risk (flagged for CPA review)")
	}

	comparison.FactorsConsidered = factors
	return comparison
}

func withinBand(a, b decimal.Decimal) bool {
	larger := decimal.Max(a, b)
	if larger.IsZero() {
		return true
	}
	return a.Sub(b).Abs().Div(larger).LessThanOrEqual(comparisonTieBand)
}
