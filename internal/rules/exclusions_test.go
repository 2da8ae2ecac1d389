package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateExcludedActivity(t *testing.T) {
	engine := NewEngine()

	tests := []struct {
		name        string
		description string
		factors     map[string]bool
		excluded    bool
		codes       []string
	}{
		{
			name:        "clean research activity",
			description: "Developing a new battery chemistry through iterative prototype testing",
			excluded:    false,
		},
		{
			name:        "asserted funding factor",
			description: "Sensor platform development",
			factors:     map[string]bool{"funded_research": true},
			excluded:    true,
			codes:       []string{"funded_research"},
		},
		{
			name:        "keyword match in description",
			description: "Reverse engineer a competitor's controller board to duplicate its behavior",
			excluded:    true,
			codes:       []string{"duplication"},
		},
		{
			name:        "multiple exclusions stack",
			description: "Post-production support for the released product maintenance queue, fully funded by the customer",
			factors:     map[string]bool{"adaptation": true},
			excluded:    true,
			codes:       []string{"funded_research", "post_production", "adaptation"},
		},
		{
			name:        "false factor does not exclude",
			description: "Thermal management redesign",
			factors:     map[string]bool{"foreign_research": false},
			excluded:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			excluded, matched, reason := engine.EvaluateExcludedActivity(tt.description, tt.factors)
			assert.Equal(t, tt.excluded, excluded)

			if !tt.excluded {
				assert.Empty(t, matched)
				assert.Empty(t, reason)
				return
			}
			require.NotEmpty(t, reason)
			var codes []string
			for _, m := range matched {
				codes = append(codes, m.Code)
				assert.NotEmpty(t, m.Citation)
			}
			for _, want := range tt.codes {
				assert.Contains(t, codes, want)
			}
		})
	}
}
