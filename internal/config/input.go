package config

import (
	"fmt"
	"os"

	"github.com/rdtax/credit-calculator/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// InputParser handles parsing of study input files.
type InputParser struct{}

// NewInputParser creates a new input parser.
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads a study input from a YAML file.
func (ip *InputParser) LoadFromFile(filename string) (*domain.StudyInput, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var input domain.StudyInput
	if err := yaml.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ip.ValidateStudyInput(&input); err != nil {
		return nil, fmt.Errorf("study validation failed: %w", err)
	}

	return &input, nil
}

// ValidateStudyInput validates the loaded study. Structural problems (missing
// study name, an impossible tax year, duplicate ids) are errors; data-quality
// gaps in individual records are left for the engines to flag, so one thin
// record never blocks a whole-study run.
func (ip *InputParser) ValidateStudyInput(input *domain.StudyInput) error {
	if input.StudyName == "" {
		return fmt.Errorf("study_name is required")
	}
	if input.TaxYear < 1981 || input.TaxYear > 2100 {
		return fmt.Errorf("tax_year %d is outside the credible range (the credit first applied in 1981)", input.TaxYear)
	}
	if input.IsShortYear && (input.DaysInYear <= 0 || input.DaysInYear >= 365) {
		return fmt.Errorf("short-year study requires days_in_year in (0, 365), got %d", input.DaysInYear)
	}
	if !input.ControlledGroupAllocationPc.IsZero() {
		if input.ControlledGroupAllocationPc.LessThan(decimal.Zero) || input.ControlledGroupAllocationPc.GreaterThan(decimal.NewFromInt(100)) {
			return fmt.Errorf("controlled_group_allocation_percentage must be within [0, 100], got %s", input.ControlledGroupAllocationPc)
		}
	}

	if err := ip.validateProjects(input); err != nil {
		return err
	}
	if err := ip.validateEmployees(input); err != nil {
		return err
	}
	if err := ip.validateExpenses(input); err != nil {
		return err
	}
	if err := ip.validateEvidenceRefs(input); err != nil {
		return err
	}
	if err := ip.validateHistory(input); err != nil {
		return err
	}
	return nil
}

// validateEvidenceRefs checks that every evidence_ids entry points at an
// evidence item actually present in the study. A dangling reference is a
// workpaper assembly error, not a data-quality gap for the engines to flag.
func (ip *InputParser) validateEvidenceRefs(input *domain.StudyInput) error {
	known := input.EvidenceByID()
	check := func(owner string, ids []string) error {
		for _, id := range ids {
			if _, ok := known[id]; !ok {
				return fmt.Errorf("%s references unknown evidence id %s", owner, id)
			}
		}
		return nil
	}
	for _, emp := range input.Employees {
		if err := check("employee "+emp.ID, emp.EvidenceIDs); err != nil {
			return err
		}
	}
	for _, exp := range input.Supplies {
		if err := check("supply expense "+exp.ID, exp.EvidenceIDs); err != nil {
			return err
		}
	}
	for _, contract := range input.Contracts {
		if err := check("contract "+contract.ID, contract.EvidenceIDs); err != nil {
			return err
		}
	}
	for _, br := range input.BasicResearch {
		if err := check("basic research payment "+br.ID, br.EvidenceIDs); err != nil {
			return err
		}
	}
	return nil
}

func (ip *InputParser) validateProjects(input *domain.StudyInput) error {
	seen := make(map[string]bool, len(input.Projects))
	for i, p := range input.Projects {
		if p.ID == "" {
			return fmt.Errorf("project %d: id is required", i)
		}
		if seen[p.ID] {
			return fmt.Errorf("duplicate project id %s", p.ID)
		}
		seen[p.ID] = true
	}

	evidenceIDs := make(map[string]bool, len(input.Evidence))
	for i, item := range input.Evidence {
		if item.ID == "" {
			return fmt.Errorf("evidence %d: id is required", i)
		}
		if evidenceIDs[item.ID] {
			return fmt.Errorf("duplicate evidence id %s", item.ID)
		}
		evidenceIDs[item.ID] = true
	}
	return nil
}

func (ip *InputParser) validateEmployees(input *domain.StudyInput) error {
	seen := make(map[string]bool, len(input.Employees))
	for i, emp := range input.Employees {
		if emp.ID == "" {
			return fmt.Errorf("employee %d: id is required", i)
		}
		if seen[emp.ID] {
			return fmt.Errorf("duplicate employee id %s", emp.ID)
		}
		seen[emp.ID] = true
		if emp.W2Wages.LessThan(decimal.Zero) {
			return fmt.Errorf("employee %s: w2_wages cannot be negative", emp.ID)
		}
		if emp.QualifiedTimePercentage.LessThan(decimal.Zero) || emp.QualifiedTimePercentage.GreaterThan(decimal.NewFromInt(100)) {
			return fmt.Errorf("employee %s: qualified_time_percentage must be within [0, 100]", emp.ID)
		}
		for j, entry := range emp.Timesheet {
			if entry.Hours.LessThan(decimal.Zero) {
				return fmt.Errorf("employee %s: timesheet entry %d has negative hours", emp.ID, j)
			}
		}
	}
	return nil
}

func (ip *InputParser) validateExpenses(input *domain.StudyInput) error {
	for i, exp := range input.Supplies {
		if exp.ID == "" {
			return fmt.Errorf("supply expense %d: id is required", i)
		}
		if exp.Amount.LessThan(decimal.Zero) {
			return fmt.Errorf("supply expense %s: amount cannot be negative", exp.ID)
		}
		if exp.QualifiedPercentage.LessThan(decimal.Zero) || exp.QualifiedPercentage.GreaterThan(decimal.NewFromInt(100)) {
			return fmt.Errorf("supply expense %s: qualified_percentage must be within [0, 100]", exp.ID)
		}
	}
	for i, contract := range input.Contracts {
		if contract.ID == "" {
			return fmt.Errorf("contract %d: id is required", i)
		}
		if contract.Amount.LessThan(decimal.Zero) {
			return fmt.Errorf("contract %s: amount cannot be negative", contract.ID)
		}
	}
	for i, br := range input.BasicResearch {
		if br.ID == "" {
			return fmt.Errorf("basic research payment %d: id is required", i)
		}
		if br.Amount.LessThan(decimal.Zero) {
			return fmt.Errorf("basic research payment %s: amount cannot be negative", br.ID)
		}
	}
	return nil
}

func (ip *InputParser) validateHistory(input *domain.StudyInput) error {
	for year, data := range input.BasePeriod {
		if year >= input.TaxYear {
			return fmt.Errorf("base_period year %d is not before tax_year %d", year, input.TaxYear)
		}
		if data.QRE.LessThan(decimal.Zero) || data.GrossReceipts.LessThan(decimal.Zero) {
			return fmt.Errorf("base_period year %d: amounts cannot be negative", year)
		}
	}
	for year, qre := range input.PriorYearQREs {
		if year >= input.TaxYear {
			return fmt.Errorf("prior_year_qres year %d is not before tax_year %d", year, input.TaxYear)
		}
		if qre.LessThan(decimal.Zero) {
			return fmt.Errorf("prior_year_qres year %d: amount cannot be negative", year)
		}
	}
	return nil
}
