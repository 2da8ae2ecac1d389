package domain

import (
	"github.com/shopspring/decimal"
)

// TestElement identifies one prong of the IRC §41(d) four-part test.
type TestElement string

const (
	ElementPermittedPurpose         TestElement = "permitted_purpose"
	ElementTechnologicalNature      TestElement = "technological_nature"
	ElementEliminationOfUncertainty TestElement = "elimination_of_uncertainty"
	ElementProcessOfExperimentation TestElement = "process_of_experimentation"
)

// TestElements lists the four prongs in statutory order. Every qualification
// evaluation must cover all four; the order is also the display order.
func TestElements() []TestElement {
	return []TestElement{
		ElementPermittedPurpose,
		ElementTechnologicalNature,
		ElementEliminationOfUncertainty,
		ElementProcessOfExperimentation,
	}
}

// CreditType classifies how a state computes its R&D credit.
type CreditType string

const (
	CreditTypeIncremental    CreditType = "incremental"
	CreditTypeNonIncremental CreditType = "non_incremental"
	CreditTypeHybrid         CreditType = "hybrid"
)

// BaseMethod selects the base-amount algorithm for a state credit.
type BaseMethod string

const (
	BaseMethodFederal         BaseMethod = "federal"
	BaseMethodNonIncremental  BaseMethod = "non_incremental"
	BaseMethodFixedPercentage BaseMethod = "fixed_percentage"
	BaseMethodPASpecial       BaseMethod = "pa_special"
)

// FederalRules contains every Federal rate and threshold the engines consume.
// A loaded rule set is immutable for its lifetime; publishing changed values
// requires a new versioned snapshot (see rules.Registry).
type FederalRules struct {
	RegularCreditRate decimal.Decimal `yaml:"regular_credit_rate" json:"regular_credit_rate"`
	ASCRate           decimal.Decimal `yaml:"asc_rate" json:"asc_rate"`
	ASCReducedRate    decimal.Decimal `yaml:"asc_reduced_rate" json:"asc_reduced_rate"`

	// Base-period parameters for the Regular method.
	BasePeriodYears    int             `yaml:"base_period_years" json:"base_period_years"`
	FixedBaseFloor     decimal.Decimal `yaml:"fixed_base_floor" json:"fixed_base_floor"`
	FixedBaseCap       decimal.Decimal `yaml:"fixed_base_cap" json:"fixed_base_cap"`
	BaseAmountQREFloor decimal.Decimal `yaml:"base_amount_qre_floor" json:"base_amount_qre_floor"`

	// ASC lookback window (IRC §41(c)(4)).
	ASCLookbackYears int `yaml:"asc_lookback_years" json:"asc_lookback_years"`

	// Contract research inclusion rates (IRC §41(b)(3)).
	ContractResearchRate     decimal.Decimal `yaml:"contract_research_rate" json:"contract_research_rate"`
	QualifiedOrgContractRate decimal.Decimal `yaml:"qualified_org_contract_rate" json:"qualified_org_contract_rate"`

	// §280C(c) reduced-credit election rate.
	Section280CRate decimal.Decimal `yaml:"section_280c_rate" json:"section_280c_rate"`

	// Substantially-all threshold: at or above this qualified-time percentage
	// the employee's full W-2 wages count as QRE.
	SubstantiallyAllThreshold decimal.Decimal `yaml:"substantially_all_threshold" json:"substantially_all_threshold"`

	FourPartTest       []TestCriterion    `yaml:"four_part_test" json:"four_part_test"`
	ExcludedActivities []ExcludedActivity `yaml:"excluded_activities" json:"excluded_activities"`
}

// TestCriterion describes one element of the four-part test: its statutory
// citation, qualifying and non-qualifying factors, the evidence types that
// support it, and the text indicators the scoring heuristic matches against.
type TestCriterion struct {
	Element               TestElement `yaml:"element" json:"element"`
	Name                  string      `yaml:"name" json:"name"`
	Description           string      `yaml:"description" json:"description"`
	Citation              string      `yaml:"citation" json:"citation"`
	QualifyingCriteria    []string    `yaml:"qualifying_criteria" json:"qualifying_criteria"`
	NonQualifyingCriteria []string    `yaml:"non_qualifying_criteria" json:"non_qualifying_criteria"`
	EvidenceTypes         []string    `yaml:"evidence_types" json:"evidence_types"`
	Indicators            []string    `yaml:"indicators" json:"indicators"`
}

// ExcludedActivity is one entry of the IRC §41(d)(4) exclusion list.
// FactorKey names the boolean activity factor that asserts the exclusion
// directly; Keywords drive the text heuristic.
type ExcludedActivity struct {
	Code        string   `yaml:"code" json:"code"`
	Description string   `yaml:"description" json:"description"`
	Citation    string   `yaml:"citation" json:"citation"`
	FactorKey   string   `yaml:"factor_key" json:"factor_key"`
	Keywords    []string `yaml:"keywords" json:"keywords"`
}

// StateRules contains one state's R&D credit parameters. States without a
// credit are represented with HasCredit=false rather than being absent, so
// "no credit" stays a first-class, non-error outcome.
type StateRules struct {
	Code      string     `yaml:"code" json:"code"`
	Name      string     `yaml:"name" json:"name"`
	HasCredit bool       `yaml:"has_credit" json:"has_credit"`
	CreditTyp CreditType `yaml:"credit_type" json:"credit_type"`
	BaseMeth  BaseMethod `yaml:"base_method" json:"base_method"`

	Rate decimal.Decimal `yaml:"rate" json:"rate"`

	// FixedBasePercentage applies when BaseMeth is fixed_percentage.
	FixedBasePercentage decimal.Decimal `yaml:"fixed_base_percentage" json:"fixed_base_percentage"`

	// Cap is a per-taxpayer annual credit ceiling; zero means uncapped.
	Cap decimal.Decimal `yaml:"cap" json:"cap"`

	// ProgramCap and ProrationFactor model capped statewide pools (e.g. PA's
	// $60M program). ProrationFactor is an estimate until the state publishes
	// the actual factor; results derived from it are labeled as estimates.
	ProgramCap      decimal.Decimal `yaml:"program_cap" json:"program_cap"`
	ProrationFactor decimal.Decimal `yaml:"proration_factor" json:"proration_factor"`

	CarryforwardYears int  `yaml:"carryforward_years" json:"carryforward_years"`
	CarrybackYears    int  `yaml:"carryback_years" json:"carryback_years"`
	Refundable        bool `yaml:"refundable" json:"refundable"`

	// WagesInStateRequired restricts wage QRE to work performed in-state.
	WagesInStateRequired bool `yaml:"wages_in_state_required" json:"wages_in_state_required"`

	Citation string   `yaml:"citation" json:"citation"`
	Notes    []string `yaml:"notes" json:"notes"`
}
