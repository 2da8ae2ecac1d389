package domain

import (
	"github.com/shopspring/decimal"
)

// EvidenceStrength grades the documentary support behind a test element score.
type EvidenceStrength string

const (
	EvidenceStrong       EvidenceStrength = "strong"
	EvidenceModerate     EvidenceStrength = "moderate"
	EvidenceWeak         EvidenceStrength = "weak"
	EvidenceInsufficient EvidenceStrength = "insufficient"
)

// QualificationStatus is the outcome of the four-part test for a project.
type QualificationStatus string

const (
	StatusQualified          QualificationStatus = "qualified"
	StatusPartiallyQualified QualificationStatus = "partially_qualified"
	StatusNeedsReview        QualificationStatus = "needs_review"
	StatusNotQualified       QualificationStatus = "not_qualified"
)

// RiskSeverity ranks a risk flag for review prioritization.
type RiskSeverity string

const (
	RiskHigh   RiskSeverity = "high"
	RiskMedium RiskSeverity = "medium"
	RiskLow    RiskSeverity = "low"
)

// RiskFlag is an explicit, reviewer-facing warning attached to a result.
// Flags surface estimates and weak spots; they never alter the numbers.
type RiskFlag struct {
	Code     string       `json:"code"`
	Severity RiskSeverity `json:"severity"`
	Message  string       `json:"message"`
}

// FourPartTestScore is the scored outcome of a single test element.
type FourPartTestScore struct {
	Element          TestElement      `json:"element"`
	Score            decimal.Decimal  `json:"score"`
	BaseScore        decimal.Decimal  `json:"base_score"`
	EvidenceBonus    decimal.Decimal  `json:"evidence_bonus"`
	Confidence       decimal.Decimal  `json:"confidence"`
	EvidenceStrength EvidenceStrength `json:"evidence_strength"`
	CitedEvidence    []string         `json:"cited_evidence"`
	MatchedIndicator []string         `json:"matched_indicators"`
	Analysis         string           `json:"analysis"`
	RiskFactors      []string         `json:"risk_factors"`
	Suggestions      []string         `json:"suggestions"`
	Citation         string           `json:"citation"`
}

// StateQualification is the per-state overlay on the federal outcome.
type StateQualification struct {
	StateCode string   `json:"state_code"`
	HasCredit bool     `json:"has_credit"`
	Qualified bool     `json:"qualified"`
	Notes     []string `json:"notes"`
}

// ProjectQualificationResult is the full, immutable qualification decision for
// one project. A re-evaluation produces a new result object.
type ProjectQualificationResult struct {
	ID           string `json:"id"`
	ProjectID    string `json:"project_id"`
	ProjectName  string `json:"project_name"`
	RulesVersion string `json:"rules_version"`

	Excluded        bool     `json:"excluded"`
	ExclusionCodes  []string `json:"exclusion_codes"`
	ExclusionDetail string   `json:"exclusion_detail"`

	ElementScores []FourPartTestScore `json:"element_scores"`
	OverallScore  decimal.Decimal     `json:"overall_score"`
	MinScore      decimal.Decimal     `json:"min_score"`
	Status        QualificationStatus `json:"status"`

	StateOverlays []StateQualification `json:"state_overlays"`

	AuditRiskScore decimal.Decimal `json:"audit_risk_score"`
	RiskFlags      []RiskFlag      `json:"risk_flags"`
}

// Score returns the recorded score for an element, or zero if absent.
func (r *ProjectQualificationResult) Score(element TestElement) decimal.Decimal {
	for _, es := range r.ElementScores {
		if es.Element == element {
			return es.Score
		}
	}
	return decimal.Zero
}
