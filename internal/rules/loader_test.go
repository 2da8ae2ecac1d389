package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRulesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSnapshotFileStateOverride(t *testing.T) {
	path := writeRulesFile(t, `
version: "2025.1"
states:
  NY:
    code: NY
    name: New York
    has_credit: true
    credit_type: incremental
    base_method: federal
    rate: "0.12"
    carryforward_years: 15
    citation: "NY Tax Law 210-B(9)"
`)

	engine, err := LoadSnapshotFile(path)
	require.NoError(t, err)

	assert.Equal(t, "2025.1", engine.Version())
	assert.NotEqual(t, NewEngine().Hash(), engine.Hash())

	ny, ok := engine.StateRules("NY")
	require.True(t, ok)
	assert.True(t, ny.Rate.Equal(decimal.NewFromFloat(0.12)), "rate = %s", ny.Rate)

	// Untouched states keep their built-in content; federal defaults apply.
	ca, ok := engine.StateRules("CA")
	require.True(t, ok)
	assert.True(t, ca.Rate.Equal(decimal.NewFromFloat(0.15)))
	assert.True(t, engine.FederalRules().RegularCreditRate.Equal(decimal.NewFromFloat(0.20)))
}

func TestLoadSnapshotFileRejections(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing version",
			content: "states: {}\n",
			wantErr: "version is required",
		},
		{
			name:    "built-in version cannot be overridden",
			content: "version: \"" + DefaultVersion + "\"\n",
			wantErr: "cannot be overridden",
		},
		{
			name: "state code mismatch",
			content: `
version: "2025.1"
states:
  NY:
    code: CA
    name: Mislabeled
`,
			wantErr: "declares code",
		},
		{
			name: "federal override missing the four-part test",
			content: `
version: "2025.1"
federal:
  regular_credit_rate: "0.20"
  asc_rate: "0.14"
  fixed_base_floor: "0.03"
  fixed_base_cap: "0.16"
  contract_research_rate: "0.65"
  qualified_org_contract_rate: "0.75"
`,
			wantErr: "four-part test",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSnapshotFile(writeRulesFile(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadSnapshotFileMissingFile(t *testing.T) {
	_, err := LoadSnapshotFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
