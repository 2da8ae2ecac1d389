package rules

import (
	"fmt"
	"strings"

	"github.com/rdtax/credit-calculator/internal/domain"
)

// EvaluateExcludedActivity screens an activity description and its asserted
// factors against the exclusion list. A factor set explicitly to true matches
// its exclusion outright; otherwise keyword matching over the description
// applies. Returns whether the activity is excluded, the matched exclusions,
// and a reviewer-facing explanation.
func (e *Engine) EvaluateExcludedActivity(description string, activityFactors map[string]bool) (bool, []domain.ExcludedActivity, string) {
	text := strings.ToLower(description)

	var matched []domain.ExcludedActivity
	var reasons []string
	for _, excl := range e.federal.ExcludedActivities {
		if activityFactors[excl.FactorKey] {
			matched = append(matched, excl)
			reasons = append(reasons, fmt.Sprintf("%s asserted by activity factors (%s)", excl.Code, excl.Citation))
			continue
		}
		for _, kw := range excl.Keywords {
			if strings.Contains(text, kw) {
				matched = append(matched, excl)
				reasons = append(reasons, fmt.Sprintf("%s matched %q in description (%s)", excl.Code, kw, excl.Citation))
				break
			}
		}
	}

	if len(matched) == 0 {
		return false, nil, ""
	}
	return true, matched, strings.Join(reasons, "; ")
}
