package qualification

import (
	"fmt"
	"strings"

	"github.com/rdtax/credit-calculator/internal/domain"
	"github.com/rdtax/credit-calculator/pkg/decutil"
	"github.com/shopspring/decimal"
)

// Confidence baselines keyed by evidence strength, adjusted for evidence
// count extremes and clamped to [0,1].
var strengthConfidence = map[domain.EvidenceStrength]decimal.Decimal{
	domain.EvidenceStrong:       decimal.NewFromFloat(0.90),
	domain.EvidenceModerate:     decimal.NewFromFloat(0.75),
	domain.EvidenceWeak:         decimal.NewFromFloat(0.55),
	domain.EvidenceInsufficient: decimal.NewFromFloat(0.30),
}

// scoreElement computes one element's score: a base score up to 70
// proportional to the fraction of the criterion's indicators found in the
// project text and evidence, plus 5 points per linked evidence item capped at
// 30, with the total capped at 100.
func (e *Engine) scoreElement(element domain.TestElement, project domain.Project, evidence []domain.EvidenceItem) domain.FourPartTestScore {
	criterion, ok := e.rules.Criterion(element)
	if !ok {
		// A snapshot missing a test element cannot pass validation, but a
		// partial record still yields a scored-zero element, not a crash.
		return domain.FourPartTestScore{
			Element:          element,
			EvidenceStrength: domain.EvidenceInsufficient,
			Confidence:       strengthConfidence[domain.EvidenceInsufficient],
			Analysis:         "No criterion defined for this element in the active rule set",
		}
	}

	relevant := relevantEvidence(element, evidence)
	text := projectText(project, relevant)

	matched := matchedIndicators(criterion.Indicators, text)
	baseScore := decimal.Zero
	if len(criterion.Indicators) > 0 {
		fraction := decimal.NewFromInt(int64(len(matched))).Div(decimal.NewFromInt(int64(len(criterion.Indicators))))
		baseScore = baseScoreCeiling.Mul(fraction).Round(2)
	}

	bonus := evidenceBonusPerItem.Mul(decimal.NewFromInt(int64(len(relevant))))
	if bonus.GreaterThan(evidenceBonusCeiling) {
		bonus = evidenceBonusCeiling
	}

	score := baseScore.Add(bonus)
	if score.GreaterThan(maxElementScore) {
		score = maxElementScore
	}

	indicatorBacked := indicatorBackedCount(criterion.Indicators, relevant)
	strength := evidenceStrength(len(relevant), indicatorBacked, len(matched))
	confidence := elementConfidence(strength, len(relevant))

	es := domain.FourPartTestScore{
		Element:          element,
		Score:            score,
		BaseScore:        baseScore,
		EvidenceBonus:    bonus,
		Confidence:       confidence,
		EvidenceStrength: strength,
		MatchedIndicator: matched,
		Citation:         criterion.Citation,
	}
	for _, item := range relevant {
		es.CitedEvidence = append(es.CitedEvidence, item.ID)
	}
	es.Analysis = fmt.Sprintf("%s: matched %d of %d indicators with %d supporting evidence item(s); evidence %s",
		criterion.Name, len(matched), len(criterion.Indicators), len(relevant), strength)

	if len(matched) == 0 {
		es.RiskFactors = append(es.RiskFactors, "no qualifying indicators found in project narrative or evidence")
	}
	if len(relevant) == 0 {
		es.RiskFactors = append(es.RiskFactors, "no documentary evidence linked to this element")
		es.Suggestions = append(es.Suggestions, fmt.Sprintf("attach %s", strings.Join(criterion.EvidenceTypes, ", ")))
	} else if bonus.LessThan(evidenceBonusCeiling) {
		es.Suggestions = append(es.Suggestions, "link additional contemporaneous documentation to strengthen this element")
	}
	return es
}

// relevantEvidence filters evidence flagged as relevant to the element.
func relevantEvidence(element domain.TestElement, evidence []domain.EvidenceItem) []domain.EvidenceItem {
	var out []domain.EvidenceItem
	for _, item := range evidence {
		if item.Relevance[element] {
			out = append(out, item)
		}
	}
	return out
}

// projectText concatenates the searchable text for indicator matching.
func projectText(project domain.Project, evidence []domain.EvidenceItem) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(project.Name))
	b.WriteString(" ")
	b.WriteString(strings.ToLower(project.Description))
	for _, item := range evidence {
		b.WriteString(" ")
		b.WriteString(strings.ToLower(item.Description))
		b.WriteString(" ")
		b.WriteString(strings.ToLower(item.SourceExcerpt))
	}
	return b.String()
}

func matchedIndicators(indicators []string, text string) []string {
	var matched []string
	for _, ind := range indicators {
		if strings.Contains(text, strings.ToLower(ind)) {
			matched = append(matched, ind)
		}
	}
	return matched
}

// indicatorBackedCount counts evidence items whose own text matches at least
// one indicator, i.e. documents that substantively speak to the element
// rather than merely being linked to it.
func indicatorBackedCount(indicators []string, evidence []domain.EvidenceItem) int {
	count := 0
	for _, item := range evidence {
		text := strings.ToLower(item.Description + " " + item.SourceExcerpt)
		for _, ind := range indicators {
			if strings.Contains(text, strings.ToLower(ind)) {
				count++
				break
			}
		}
	}
	return count
}

// evidenceStrength grades documentary support from evidence volume,
// indicator-backed overlap, and positive indicator matches.
func evidenceStrength(evidenceCount, indicatorBacked, matchedIndicators int) domain.EvidenceStrength {
	switch {
	case evidenceCount >= 5 && indicatorBacked >= 3:
		return domain.EvidenceStrong
	case evidenceCount >= 3 && indicatorBacked >= 2:
		return domain.EvidenceModerate
	case evidenceCount >= 1 || matchedIndicators >= 2:
		return domain.EvidenceWeak
	default:
		return domain.EvidenceInsufficient
	}
}

// elementConfidence looks up the strength baseline and nudges it for
// evidence-count extremes.
func elementConfidence(strength domain.EvidenceStrength, evidenceCount int) decimal.Decimal {
	confidence := strengthConfidence[strength]
	switch {
	case evidenceCount >= 10:
		confidence = confidence.Add(decimal.NewFromFloat(0.05))
	case evidenceCount == 0:
		confidence = confidence.Sub(decimal.NewFromFloat(0.15))
	case evidenceCount == 1:
		confidence = confidence.Sub(decimal.NewFromFloat(0.05))
	}
	return decutil.Clamp(confidence, decimal.Zero, decimal.NewFromInt(1))
}
