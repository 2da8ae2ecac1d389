package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CalculationMethod selects a federal credit computation.
type CalculationMethod string

const (
	MethodRegular CalculationMethod = "regular"
	MethodASC     CalculationMethod = "asc"
)

// CalculationStep is one ordered entry of the audit trail. Every number in a
// final credit result must be traceable to a step; steps are append-only and
// record the already-rounded result later steps consume.
type CalculationStep struct {
	StepNumber  int                        `json:"step_number"`
	Description string                     `json:"description"`
	Formula     string                     `json:"formula"`
	Inputs      map[string]decimal.Decimal `json:"inputs"`
	Result      decimal.Decimal            `json:"result"`
	Citation    string                     `json:"citation"`
	Notes       string                     `json:"notes,omitempty"`
}

// FederalCreditResult holds one federal method's inputs, intermediates, final
// credit, and step trail. Results are never mutated after creation.
type FederalCreditResult struct {
	Method       CalculationMethod `json:"method"`
	TaxYear      int               `json:"tax_year"`
	RulesVersion string            `json:"rules_version"`

	WageQRE          decimal.Decimal `json:"wage_qre"`
	SupplyQRE        decimal.Decimal `json:"supply_qre"`
	ContractQRE      decimal.Decimal `json:"contract_qre"`
	BasicResearchQRE decimal.Decimal `json:"basic_research_qre"`
	TotalQRE         decimal.Decimal `json:"total_qre"`

	FixedBasePercentage decimal.Decimal `json:"fixed_base_percentage"`
	AvgGrossReceipts    decimal.Decimal `json:"avg_gross_receipts"`
	AvgPriorQRE         decimal.Decimal `json:"avg_prior_qre"`
	BaseAmount          decimal.Decimal `json:"base_amount"`
	ExcessQRE           decimal.Decimal `json:"excess_qre"`
	AppliedRate         decimal.Decimal `json:"applied_rate"`
	TentativeCredit     decimal.Decimal `json:"tentative_credit"`

	Section280CElected   bool            `json:"section_280c_elected"`
	Section280CReduction decimal.Decimal `json:"section_280c_reduction"`
	CreditAfter280C      decimal.Decimal `json:"credit_after_280c"`

	AllocationPercentage decimal.Decimal `json:"allocation_percentage"`
	AllocatedCredit      decimal.Decimal `json:"allocated_credit"`

	IsShortYear bool            `json:"is_short_year"`
	FinalCredit decimal.Decimal `json:"final_credit"`

	Steps []CalculationStep `json:"steps"`
}

// StateCreditResult holds one state's credit computation and trail.
type StateCreditResult struct {
	StateCode    string     `json:"state_code"`
	StateName    string     `json:"state_name"`
	BaseMeth     BaseMethod `json:"base_method"`
	RulesVersion string     `json:"rules_version"`

	StateQRE        decimal.Decimal `json:"state_qre"`
	BaseAmount      decimal.Decimal `json:"base_amount"`
	ExcessQRE       decimal.Decimal `json:"excess_qre"`
	Rate            decimal.Decimal `json:"rate"`
	TentativeCredit decimal.Decimal `json:"tentative_credit"`

	CapApplied       bool            `json:"cap_applied"`
	ProrationApplied bool            `json:"proration_applied"`
	IsEstimate       bool            `json:"is_estimate"`
	FinalCredit      decimal.Decimal `json:"final_credit"`

	Refundable        bool `json:"refundable"`
	CarryforwardYears int  `json:"carryforward_years"`

	Citation string            `json:"citation"`
	Notes    []string          `json:"notes"`
	Steps    []CalculationStep `json:"steps"`
}

// MethodComparison records the advisory federal method selection.
type MethodComparison struct {
	RegularCredit     decimal.Decimal   `json:"regular_credit"`
	ASCCredit         decimal.Decimal   `json:"asc_credit"`
	SelectedMethod    CalculationMethod `json:"selected_method"`
	CPAOverride       bool              `json:"cpa_override"`
	OverrideReason    string            `json:"override_reason,omitempty"`
	FactorsConsidered []string          `json:"factors_considered"`
}

// FullCalculationResult is the complete output of a credit study run:
// qualification, QRE, both federal methods, state credits, and the method
// comparison, all pinned to an exact rules version and hash so the filing can
// be regenerated identically later. GeneratedAt is metadata attached after
// the numeric work completes and is never a calculation input.
type FullCalculationResult struct {
	ID           string    `json:"id"`
	StudyName    string    `json:"study_name"`
	TaxYear      int       `json:"tax_year"`
	RulesVersion string    `json:"rules_version"`
	RulesHash    string    `json:"rules_hash"`
	GeneratedAt  time.Time `json:"generated_at"`

	Qualification []ProjectQualificationResult `json:"qualification"`
	QRE           QRESummary                   `json:"qre"`

	RegularCredit FederalCreditResult `json:"regular_credit"`
	ASCCredit     FederalCreditResult `json:"asc_credit"`
	Comparison    MethodComparison    `json:"comparison"`

	SelectedMethod     CalculationMethod `json:"selected_method"`
	FinalFederalCredit decimal.Decimal   `json:"final_federal_credit"`

	StateCredits      []StateCreditResult `json:"state_credits"`
	TotalStateCredits decimal.Decimal     `json:"total_state_credits"`

	RiskFlags []RiskFlag `json:"risk_flags"`
}
