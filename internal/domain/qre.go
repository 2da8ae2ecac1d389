package domain

import (
	"github.com/shopspring/decimal"
)

// WageAllocation is one employee's contribution to wage QRE.
type WageAllocation struct {
	EmployeeID   string          `json:"employee_id"`
	EmployeeName string          `json:"employee_name"`
	W2Wages      decimal.Decimal `json:"w2_wages"`

	QualifiedPercentage decimal.Decimal `json:"qualified_percentage"`
	QualifiedWages      decimal.Decimal `json:"qualified_wages"`

	// SubstantiallyAll records that the 80% rule promoted the allocation to
	// the full W-2 amount.
	SubstantiallyAll bool `json:"substantially_all"`

	// ProjectAllocation breaks qualified wages down by project id.
	ProjectAllocation map[string]decimal.Decimal `json:"project_allocation"`

	Source      TimeSource      `json:"source"`
	Confidence  decimal.Decimal `json:"confidence"`
	EvidenceIDs []string        `json:"evidence_ids"`
	StateCode   string          `json:"state_code"`
}

// SupplyQRE is a supply expense after the qualification screen.
type SupplyQRE struct {
	ExpenseID           string          `json:"expense_id"`
	Description         string          `json:"description"`
	ProjectID           string          `json:"project_id,omitempty"`
	GrossAmount         decimal.Decimal `json:"gross_amount"`
	QualifiedPercentage decimal.Decimal `json:"qualified_percentage"`
	QualifiedAmount     decimal.Decimal `json:"qualified_amount"`
	Qualified           bool            `json:"qualified"`
	Rationale           string          `json:"rationale"`
	Confidence          decimal.Decimal `json:"confidence"`
	EvidenceIDs         []string        `json:"evidence_ids"`
	StateCode           string          `json:"state_code"`
}

// ContractQRE is a contract research payment after rate application.
type ContractQRE struct {
	ContractID      string          `json:"contract_id"`
	ContractorName  string          `json:"contractor_name"`
	ProjectID       string          `json:"project_id,omitempty"`
	GrossAmount     decimal.Decimal `json:"gross_amount"`
	AppliedRate     decimal.Decimal `json:"applied_rate"`
	QualifiedAmount decimal.Decimal `json:"qualified_amount"`
	Excluded        bool            `json:"excluded"`
	Rationale       string          `json:"rationale"`
	Confidence      decimal.Decimal `json:"confidence"`
	EvidenceIDs     []string        `json:"evidence_ids"`
	StateCode       string          `json:"state_code"`
}

// BasicResearchQRE is a basic research payment carried into the summary. The
// amount arrives pre-qualified from the study workpapers, so qualification is
// not re-derived here, but the payment still participates in confidence and
// evidence-coverage weighting.
type BasicResearchQRE struct {
	RecordID         string          `json:"record_id"`
	OrganizationName string          `json:"organization_name"`
	Amount           decimal.Decimal `json:"amount"`
	Confidence       decimal.Decimal `json:"confidence"`
	EvidenceIDs      []string        `json:"evidence_ids"`
}

// QRESummary aggregates a study's qualified research expenses. It is created
// fresh per calculation and never mutated afterwards.
type QRESummary struct {
	ID           string `json:"id"`
	StudyName    string `json:"study_name"`
	TaxYear      int    `json:"tax_year"`
	RulesVersion string `json:"rules_version"`

	WageQRE          decimal.Decimal `json:"wage_qre"`
	SupplyQRE        decimal.Decimal `json:"supply_qre"`
	ContractQRE      decimal.Decimal `json:"contract_qre"`
	BasicResearchQRE decimal.Decimal `json:"basic_research_qre"`
	TotalQRE         decimal.Decimal `json:"total_qre"`

	WageAllocations []WageAllocation   `json:"wage_allocations"`
	Supplies        []SupplyQRE        `json:"supplies"`
	Contracts       []ContractQRE      `json:"contracts"`
	BasicResearch   []BasicResearchQRE `json:"basic_research"`

	// StateAllocation maps state code to the QRE dollars sourced there.
	StateAllocation map[string]decimal.Decimal `json:"state_allocation"`

	// OverallConfidence is dollar-weighted across every included item.
	OverallConfidence decimal.Decimal `json:"overall_confidence"`

	// EvidenceCoverage is the fraction of QRE dollars backed by evidence ids
	// or timesheet provenance, in [0,1].
	EvidenceCoverage decimal.Decimal `json:"evidence_coverage"`

	RiskFlags []RiskFlag `json:"risk_flags"`
}
