package domain

import (
	"github.com/shopspring/decimal"
)

// TimeSource records how an employee's qualified-time percentage was obtained.
type TimeSource string

const (
	TimeSourceTimesheet TimeSource = "timesheet"
	TimeSourceEstimate  TimeSource = "estimate"
	TimeSourceInterview TimeSource = "interview"
)

// EmployeeRecord is one employee's payroll input to the wage QRE calculation.
// W2Wages is the Box 1 wage basis; stock compensation and fringe benefits are
// carried for reconciliation only and never enter the QRE math.
type EmployeeRecord struct {
	ID                string          `yaml:"id" json:"id"`
	Name              string          `yaml:"name" json:"name"`
	Title             string          `yaml:"title" json:"title"`
	W2Wages           decimal.Decimal `yaml:"w2_wages" json:"w2_wages"`
	StockCompensation decimal.Decimal `yaml:"stock_compensation" json:"stock_compensation"`
	StateCode         string          `yaml:"state_code" json:"state_code"`

	// Fallback allocation when no timesheet entries exist.
	QualifiedTimePercentage decimal.Decimal `yaml:"qualified_time_percentage" json:"qualified_time_percentage"`
	QualifiedTimeSource     TimeSource      `yaml:"qualified_time_source" json:"qualified_time_source"`

	Timesheet   []TimesheetEntry `yaml:"timesheet" json:"timesheet"`
	EvidenceIDs []string         `yaml:"evidence_ids" json:"evidence_ids"`
}

// TimesheetEntry is one project's share of an employee's recorded hours.
type TimesheetEntry struct {
	ProjectID string          `yaml:"project_id" json:"project_id"`
	Hours     decimal.Decimal `yaml:"hours" json:"hours"`
}

// ExpenseRecord is a supply expense candidate.
type ExpenseRecord struct {
	ID          string          `yaml:"id" json:"id"`
	Description string          `yaml:"description" json:"description"`
	Vendor      string          `yaml:"vendor" json:"vendor"`
	GLAccount   string          `yaml:"gl_account" json:"gl_account"`
	Category    string          `yaml:"category" json:"category"`
	Amount      decimal.Decimal `yaml:"amount" json:"amount"`
	ProjectID   string          `yaml:"project_id" json:"project_id"`
	StateCode   string          `yaml:"state_code" json:"state_code"`

	// QualifiedPercentage allows partial allocation; zero means fully
	// qualified (100%) when the expense passes the supply screen.
	QualifiedPercentage decimal.Decimal `yaml:"qualified_percentage" json:"qualified_percentage"`
	EvidenceIDs         []string        `yaml:"evidence_ids" json:"evidence_ids"`
}

// ContractRecord is a contract research payment.
type ContractRecord struct {
	ID                     string          `yaml:"id" json:"id"`
	ContractorName         string          `yaml:"contractor_name" json:"contractor_name"`
	Description            string          `yaml:"description" json:"description"`
	Amount                 decimal.Decimal `yaml:"amount" json:"amount"`
	IsQualifiedResearchOrg bool            `yaml:"is_qualified_research_org" json:"is_qualified_research_org"`
	PerformedOutsideUS     bool            `yaml:"performed_outside_us" json:"performed_outside_us"`
	ProjectID              string          `yaml:"project_id" json:"project_id"`
	StateCode              string          `yaml:"state_code" json:"state_code"`
	EvidenceIDs            []string        `yaml:"evidence_ids" json:"evidence_ids"`
}

// BasicResearchRecord is a basic research payment to a qualified organization
// under IRC §41(e); the amount arrives pre-qualified from the study workpapers.
type BasicResearchRecord struct {
	ID               string          `yaml:"id" json:"id"`
	OrganizationName string          `yaml:"organization_name" json:"organization_name"`
	Amount           decimal.Decimal `yaml:"amount" json:"amount"`
	EvidenceIDs      []string        `yaml:"evidence_ids" json:"evidence_ids"`
}

// Project is a research activity submitted for four-part-test qualification.
// ActivityFactors carries caller-asserted exclusion facts keyed by
// ExcludedActivity.FactorKey (e.g. "foreign_research": true).
type Project struct {
	ID              string          `yaml:"id" json:"id"`
	Name            string          `yaml:"name" json:"name"`
	Description     string          `yaml:"description" json:"description"`
	ActivityFactors map[string]bool `yaml:"activity_factors" json:"activity_factors"`
}

// EvidenceItem is a documentary evidence record produced by the upstream
// document-ingestion pipeline. Relevance flags which test elements the item
// supports, keyed by TestElement.
type EvidenceItem struct {
	ID               string               `yaml:"id" json:"id"`
	Title            string               `yaml:"title" json:"title"`
	Description      string               `yaml:"description" json:"description"`
	SourceExcerpt    string               `yaml:"source_excerpt" json:"source_excerpt"`
	Relevance        map[TestElement]bool `yaml:"relevance" json:"relevance"`
	AIRelevanceScore decimal.Decimal      `yaml:"ai_relevance_score" json:"ai_relevance_score"`
}

// BasePeriodYear is one historical year of the fixed-base computation.
type BasePeriodYear struct {
	QRE           decimal.Decimal `yaml:"qre" json:"qre"`
	GrossReceipts decimal.Decimal `yaml:"gross_receipts" json:"gross_receipts"`
}

// StudyInput aggregates everything a credit study needs: the entity profile,
// projects and evidence for qualification, expense records for QRE, and the
// historical data both federal methods draw on.
type StudyInput struct {
	StudyName string   `yaml:"study_name" json:"study_name"`
	TaxYear   int      `yaml:"tax_year" json:"tax_year"`
	States    []string `yaml:"states" json:"states"`

	Projects []Project      `yaml:"projects" json:"projects"`
	Evidence []EvidenceItem `yaml:"evidence" json:"evidence"`

	Employees     []EmployeeRecord      `yaml:"employees" json:"employees"`
	Supplies      []ExpenseRecord       `yaml:"supplies" json:"supplies"`
	Contracts     []ContractRecord      `yaml:"contracts" json:"contracts"`
	BasicResearch []BasicResearchRecord `yaml:"basic_research" json:"basic_research"`

	// BasePeriod keys are tax years (Regular method fixed-base data).
	BasePeriod map[int]BasePeriodYear `yaml:"base_period" json:"base_period"`

	// PriorYearQREs keys are tax years (ASC three-year lookback).
	PriorYearQREs map[int]decimal.Decimal `yaml:"prior_year_qres" json:"prior_year_qres"`

	CurrentYearGrossReceipts decimal.Decimal `yaml:"current_year_gross_receipts" json:"current_year_gross_receipts"`

	Section280CElection         bool            `yaml:"section_280c_election" json:"section_280c_election"`
	ControlledGroupAllocationPc decimal.Decimal `yaml:"controlled_group_allocation_percentage" json:"controlled_group_allocation_percentage"`
	IsShortYear                 bool            `yaml:"is_short_year" json:"is_short_year"`
	DaysInYear                  int             `yaml:"days_in_year" json:"days_in_year"`

	// CPAMethodOverride forces the federal method selection; it must come
	// with a reason so the override is auditable.
	CPAMethodOverride       string `yaml:"cpa_method_override" json:"cpa_method_override"`
	CPAMethodOverrideReason string `yaml:"cpa_method_override_reason" json:"cpa_method_override_reason"`
}

// EvidenceByID indexes the study's evidence items.
func (s *StudyInput) EvidenceByID() map[string]EvidenceItem {
	idx := make(map[string]EvidenceItem, len(s.Evidence))
	for _, item := range s.Evidence {
		idx[item.ID] = item
	}
	return idx
}
