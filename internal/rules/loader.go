package rules

import (
	"fmt"
	"os"

	"github.com/rdtax/credit-calculator/internal/domain"
	"gopkg.in/yaml.v3"
)

// snapshotFile is the on-disk shape of a rules override file.
type snapshotFile struct {
	Version string                       `yaml:"version"`
	Federal *domain.FederalRules         `yaml:"federal"`
	States  map[string]domain.StateRules `yaml:"states"`
}

// LoadSnapshotFile reads a rules snapshot from a YAML file and returns a new
// engine for it. Federal content defaults to the built-in rules when the file
// overrides states only; state entries replace the built-in table per code.
// Loading never mutates any existing snapshot.
func LoadSnapshotFile(filename string) (*Engine, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file %s: %w", filename, err)
	}

	var file snapshotFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", filename, err)
	}
	if file.Version == "" {
		return nil, fmt.Errorf("rules file %s: version is required", filename)
	}
	if file.Version == DefaultVersion {
		return nil, fmt.Errorf("rules file %s: version %s is the built-in snapshot and cannot be overridden; publish a new version", filename, DefaultVersion)
	}

	federal := DefaultFederalRules()
	if file.Federal != nil {
		federal = *file.Federal
	}
	if err := validateFederal(federal); err != nil {
		return nil, fmt.Errorf("rules file %s: %w", filename, err)
	}

	states := DefaultStateRules()
	for code, sr := range file.States {
		if sr.Code == "" {
			sr.Code = code
		}
		if sr.Code != code {
			return nil, fmt.Errorf("rules file %s: state entry %s declares code %s", filename, code, sr.Code)
		}
		states[code] = sr
	}

	return NewEngineFromSnapshot(file.Version, federal, states)
}

func validateFederal(fr domain.FederalRules) error {
	if fr.RegularCreditRate.IsZero() || fr.ASCRate.IsZero() {
		return fmt.Errorf("federal credit rates are required")
	}
	if fr.FixedBaseFloor.GreaterThan(fr.FixedBaseCap) {
		return fmt.Errorf("fixed-base floor %s exceeds cap %s", fr.FixedBaseFloor, fr.FixedBaseCap)
	}
	if fr.ContractResearchRate.IsZero() || fr.QualifiedOrgContractRate.IsZero() {
		return fmt.Errorf("contract research rates are required")
	}
	if len(fr.FourPartTest) != 4 {
		return fmt.Errorf("four-part test requires exactly 4 criteria, got %d", len(fr.FourPartTest))
	}
	seen := make(map[domain.TestElement]bool, 4)
	for _, c := range fr.FourPartTest {
		if seen[c.Element] {
			return fmt.Errorf("duplicate four-part test element %s", c.Element)
		}
		seen[c.Element] = true
	}
	return nil
}
