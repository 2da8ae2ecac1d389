package qre

import (
	"fmt"
	"strings"

	"github.com/rdtax/credit-calculator/internal/domain"
	"github.com/rdtax/credit-calculator/pkg/decutil"
	"github.com/shopspring/decimal"
)

// Supply screening patterns. An expense qualifies when its description,
// category, or GL account matches a supply indicator and nothing matches the
// exclusion list (capital property, overhead, and general administration are
// not supplies under IRC §41(b)(2)(C)).
var (
	supplyIndicators = []string{
		"prototype", "material", "supplies", "supply", "component",
		"testing", "test equipment consumable", "lab", "laboratory",
		"fabrication", "raw material", "chemical", "reagent", "wafer",
		"circuit board", "3d print", "filament",
	}
	supplyExclusions = []string{
		"capital", "equipment purchase", "depreciation", "depreciable",
		"land", "overhead", "admin", "administrative", "rent", "utility",
		"utilities", "travel", "meal", "software license", "subscription",
	}
)

// evaluateSupply screens one expense and computes its qualified amount:
// gross × qualified percentage, defaulting to 100% when the record does not
// carry a partial allocation. An expense tied to a project that failed the
// four-part test contributes nothing, same as wage hours on that project.
func (e *Engine) evaluateSupply(exp domain.ExpenseRecord, qualifiedProjects map[string]bool) domain.SupplyQRE {
	sq := domain.SupplyQRE{
		ExpenseID:   exp.ID,
		Description: exp.Description,
		GrossAmount: exp.Amount,
		ProjectID:   exp.ProjectID,
		EvidenceIDs: exp.EvidenceIDs,
		StateCode:   exp.StateCode,
	}

	if exp.ProjectID != "" && qualifiedProjects != nil && !qualifiedProjects[exp.ProjectID] {
		sq.Qualified = false
		sq.QualifiedPercentage = decimal.Zero
		sq.QualifiedAmount = decimal.Zero
		sq.Rationale = fmt.Sprintf("excluded: project %s did not qualify under the four-part test", exp.ProjectID)
		sq.Confidence = decimal.NewFromFloat(0.90)
		return sq
	}

	text := strings.ToLower(exp.Description + " " + exp.Category + " " + exp.GLAccount)

	for _, excl := range supplyExclusions {
		if strings.Contains(text, excl) {
			sq.Qualified = false
			sq.QualifiedPercentage = decimal.Zero
			sq.QualifiedAmount = decimal.Zero
			sq.Rationale = fmt.Sprintf("excluded: matched %q (capital/overhead items are not supplies under IRC §41(b)(2)(C))", excl)
			sq.Confidence = decimal.NewFromFloat(0.85)
			return sq
		}
	}

	matchedIndicator := ""
	for _, ind := range supplyIndicators {
		if strings.Contains(text, ind) {
			matchedIndicator = ind
			break
		}
	}
	if matchedIndicator == "" {
		sq.Qualified = false
		sq.QualifiedPercentage = decimal.Zero
		sq.QualifiedAmount = decimal.Zero
		sq.Rationale = "no supply indicator matched description, category, or GL account"
		sq.Confidence = decimal.NewFromFloat(0.60)
		return sq
	}

	pct := exp.QualifiedPercentage
	if pct.IsZero() {
		pct = decimal.NewFromInt(100)
	}
	pct = decutil.Clamp(pct, decimal.Zero, decimal.NewFromInt(100))

	sq.Qualified = true
	sq.QualifiedPercentage = pct
	sq.QualifiedAmount = decutil.RoundMoney(exp.Amount.Mul(decutil.Pct(pct)))
	sq.Rationale = fmt.Sprintf("qualified: matched supply indicator %q at %s%%", matchedIndicator, pct)

	confidence := decimal.NewFromFloat(0.70)
	if len(exp.EvidenceIDs) > 0 {
		confidence = confidence.Add(corroborationBoost)
	}
	sq.Confidence = decutil.Clamp(confidence, decimal.Zero, confidenceCeiling)
	return sq
}
