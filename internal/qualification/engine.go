// Package qualification evaluates research projects against the IRC §41(d)
// four-part test. Scoring is a deterministic indicator-matching heuristic
// over project text and linked evidence; no network or model calls.
package qualification

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rdtax/credit-calculator/internal/domain"
	"github.com/rdtax/credit-calculator/internal/rules"
	"github.com/rdtax/credit-calculator/pkg/decutil"
	"github.com/shopspring/decimal"
)

// Qualification thresholds. The gate runs on the minimum element score, not
// the mean: §41(d)(1)(B) joins the four tests with AND, so one failing
// element cannot be averaged away.
var (
	qualifiedMinScore    = decimal.NewFromInt(70)
	qualifiedMeanScore   = decimal.NewFromInt(75)
	partialMinScore      = decimal.NewFromInt(50)
	partialMeanScore     = decimal.NewFromInt(60)
	reviewMinScore       = decimal.NewFromInt(40)
	stateQualifiedScore  = decimal.NewFromInt(70)
	maxElementScore      = decimal.NewFromInt(100)
	baseScoreCeiling     = decimal.NewFromInt(70)
	evidenceBonusPerItem = decimal.NewFromInt(5)
	evidenceBonusCeiling = decimal.NewFromInt(30)
)

// Engine scores projects against one rules snapshot. It is stateless beyond
// the read-only snapshot and safe for concurrent use.
type Engine struct {
	rules *rules.Engine
}

// NewEngine creates a qualification engine over a rules snapshot.
func NewEngine(r *rules.Engine) *Engine {
	return &Engine{rules: r}
}

// EvaluateProject runs the exclusion gate, scores all four test elements,
// aggregates the qualification status, applies state overlays, and attaches
// the audit-risk signal. Missing or partial project data yields a low score,
// never an error, so batch evaluation is not aborted by one bad record.
func (e *Engine) EvaluateProject(project domain.Project, evidence []domain.EvidenceItem, states []string) domain.ProjectQualificationResult {
	result := domain.ProjectQualificationResult{
		ID:           uuid.NewString(),
		ProjectID:    project.ID,
		ProjectName:  project.Name,
		RulesVersion: e.rules.Version(),
	}

	// Exclusion gate runs before any scoring: excluded projects must never
	// receive a passing score.
	excluded, matches, explanation := e.rules.EvaluateExcludedActivity(
		project.Name+" "+project.Description, project.ActivityFactors)
	if excluded {
		result.Excluded = true
		result.ExclusionDetail = explanation
		for _, m := range matches {
			result.ExclusionCodes = append(result.ExclusionCodes, m.Code)
		}
		for _, element := range domain.TestElements() {
			criterion, _ := e.rules.Criterion(element)
			result.ElementScores = append(result.ElementScores, domain.FourPartTestScore{
				Element:          element,
				Score:            decimal.Zero,
				BaseScore:        decimal.Zero,
				EvidenceBonus:    decimal.Zero,
				Confidence:       decimal.NewFromFloat(0.95),
				EvidenceStrength: domain.EvidenceInsufficient,
				Analysis:         "Not scored: project is an excluded activity under IRC §41(d)(4)",
				Citation:         criterion.Citation,
			})
		}
		result.OverallScore = decimal.Zero
		result.MinScore = decimal.Zero
		result.Status = domain.StatusNotQualified
		result.RiskFlags = append(result.RiskFlags, domain.RiskFlag{
			Code:     "excluded_activity",
			Severity: domain.RiskHigh,
			Message:  fmt.Sprintf("Project %s is an excluded activity: %s", project.ID, explanation),
		})
		result.StateOverlays = e.stateOverlays(states, decimal.Zero)
		result.AuditRiskScore = decimal.NewFromInt(100)
		return result
	}

	var scores []decimal.Decimal
	weakElements := 0
	confidences := make([]decimal.Decimal, 0, 4)
	for _, element := range domain.TestElements() {
		es := e.scoreElement(element, project, evidence)
		result.ElementScores = append(result.ElementScores, es)
		scores = append(scores, es.Score)
		confidences = append(confidences, es.Confidence)
		if es.EvidenceStrength == domain.EvidenceWeak || es.EvidenceStrength == domain.EvidenceInsufficient {
			weakElements++
		}
	}

	minScore := scores[0]
	for _, s := range scores[1:] {
		if s.LessThan(minScore) {
			minScore = s
		}
	}
	overall := decutil.Mean(scores).Round(2)
	result.OverallScore = overall
	result.MinScore = minScore
	result.Status = aggregateStatus(minScore, overall, weakElements)

	result.RiskFlags = e.riskFlags(project, result.ElementScores, weakElements)
	result.StateOverlays = e.stateOverlays(states, overall)
	result.AuditRiskScore = auditRiskScore(overall, confidences, result.ElementScores, result.RiskFlags)
	return result
}

// aggregateStatus applies the min-score gate, then the weak-evidence
// downgrade: more than one weakly-evidenced element caps the outcome at
// needs_review even when the scores alone would qualify.
func aggregateStatus(minScore, overall decimal.Decimal, weakElements int) domain.QualificationStatus {
	var status domain.QualificationStatus
	switch {
	case minScore.GreaterThanOrEqual(qualifiedMinScore) && overall.GreaterThanOrEqual(qualifiedMeanScore):
		status = domain.StatusQualified
	case minScore.GreaterThanOrEqual(partialMinScore) && overall.GreaterThanOrEqual(partialMeanScore):
		status = domain.StatusPartiallyQualified
	case minScore.GreaterThanOrEqual(reviewMinScore):
		status = domain.StatusNeedsReview
	default:
		status = domain.StatusNotQualified
	}

	if weakElements > 1 && (status == domain.StatusQualified || status == domain.StatusPartiallyQualified) {
		status = domain.StatusNeedsReview
	}
	return status
}

// stateOverlays maps the federal outcome onto each requested state. States
// whose base method piggybacks on the federal definition qualify at an
// overall score of 70; state-specific requirements add notes but do not flip
// the qualification boolean here.
func (e *Engine) stateOverlays(states []string, overallScore decimal.Decimal) []domain.StateQualification {
	overlays := make([]domain.StateQualification, 0, len(states))
	for _, code := range states {
		sr, ok := e.rules.StateRules(code)
		if !ok {
			overlays = append(overlays, domain.StateQualification{
				StateCode: code,
				Notes:     []string{"state not configured in the active rule set"},
			})
			continue
		}
		overlay := domain.StateQualification{StateCode: code, HasCredit: sr.HasCredit}
		if !sr.HasCredit {
			overlay.Notes = append(overlay.Notes, fmt.Sprintf("%s has no R&D credit", sr.Name))
			overlays = append(overlays, overlay)
			continue
		}
		if sr.BaseMeth == domain.BaseMethodFederal {
			overlay.Qualified = overallScore.GreaterThanOrEqual(stateQualifiedScore)
		} else {
			overlay.Qualified = overallScore.GreaterThanOrEqual(stateQualifiedScore)
			overlay.Notes = append(overlay.Notes, fmt.Sprintf("%s uses %s base method; federal qualification applied", sr.Name, sr.BaseMeth))
		}
		if sr.WagesInStateRequired {
			overlay.Notes = append(overlay.Notes, "wage QRE must be for services performed in-state")
		}
		overlays = append(overlays, overlay)
	}
	return overlays
}

func (e *Engine) riskFlags(project domain.Project, elements []domain.FourPartTestScore, weakElements int) []domain.RiskFlag {
	var flags []domain.RiskFlag
	for _, es := range elements {
		if es.Score.LessThan(partialMinScore) {
			flags = append(flags, domain.RiskFlag{
				Code:     "low_element_score",
				Severity: domain.RiskMedium,
				Message:  fmt.Sprintf("Element %s scored %s for project %s", es.Element, es.Score, project.ID),
			})
		}
		if es.EvidenceStrength == domain.EvidenceInsufficient {
			flags = append(flags, domain.RiskFlag{
				Code:     "insufficient_evidence",
				Severity: domain.RiskMedium,
				Message:  fmt.Sprintf("No documentary evidence supports element %s for project %s", es.Element, project.ID),
			})
		}
	}
	if weakElements > 1 {
		flags = append(flags, domain.RiskFlag{
			Code:     "multiple_weak_elements",
			Severity: domain.RiskHigh,
			Message:  fmt.Sprintf("%d of 4 test elements have weak or insufficient evidence", weakElements),
		})
	}
	return flags
}

// auditRiskScore is a downstream prioritization signal. It never gates
// qualification.
func auditRiskScore(overall decimal.Decimal, confidences []decimal.Decimal, elements []domain.FourPartTestScore, flags []domain.RiskFlag) decimal.Decimal {
	risk := decimal.NewFromInt(100).Sub(overall)

	avgConfidence := decutil.Mean(confidences)
	confidencePenalty := decimal.NewFromInt(1).Sub(avgConfidence).Mul(decimal.NewFromInt(20))
	risk = risk.Add(confidencePenalty)

	for _, es := range elements {
		switch es.EvidenceStrength {
		case domain.EvidenceInsufficient:
			risk = risk.Add(decimal.NewFromInt(10))
		case domain.EvidenceWeak:
			risk = risk.Add(decimal.NewFromInt(5))
		}
	}

	risk = risk.Add(decimal.NewFromInt(int64(len(flags)) * 5))
	return decutil.Clamp(risk, decimal.Zero, decimal.NewFromInt(100)).Round(2)
}
