package rules

import (
	"strings"
	"testing"

	"github.com/rdtax/credit-calculator/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngineDefaults(t *testing.T) {
	engine := NewEngine()

	assert.Equal(t, DefaultVersion, engine.Version())
	assert.True(t, strings.HasPrefix(engine.Hash(), "sha256:"))

	fr := engine.FederalRules()
	assert.True(t, fr.RegularCreditRate.Equal(decimal.NewFromFloat(0.20)))
	assert.True(t, fr.ASCRate.Equal(decimal.NewFromFloat(0.14)))
	assert.True(t, fr.ASCReducedRate.Equal(decimal.NewFromFloat(0.06)))
	assert.True(t, fr.SubstantiallyAllThreshold.Equal(decimal.NewFromInt(80)))
	assert.Len(t, fr.FourPartTest, 4)
	assert.NotEmpty(t, fr.ExcludedActivities)
}

func TestHashIsStableAcrossConstruction(t *testing.T) {
	first := NewEngine()
	second := NewEngine()
	assert.Equal(t, first.Hash(), second.Hash(), "identical content must yield an identical hash")
}

func TestHashChangesWithContent(t *testing.T) {
	base := NewEngine()

	federal := DefaultFederalRules()
	federal.RegularCreditRate = decimal.NewFromFloat(0.25)
	changed, err := NewEngineFromSnapshot(DefaultVersion, federal, DefaultStateRules())
	require.NoError(t, err)

	assert.NotEqual(t, base.Hash(), changed.Hash(), "any changed value must change the hash")
}

func TestNewEngineFromSnapshotRequiresVersion(t *testing.T) {
	_, err := NewEngineFromSnapshot("", DefaultFederalRules(), DefaultStateRules())
	assert.Error(t, err)
}

func TestStateRulesLookup(t *testing.T) {
	engine := NewEngine()

	tests := []struct {
		name      string
		code      string
		found     bool
		hasCredit bool
	}{
		{"configured state with credit", "CA", true, true},
		{"configured state without credit", "WA", true, false},
		{"no corporate income tax", "NV", true, false},
		{"unknown code", "ZZ", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sr, ok := engine.StateRules(tt.code)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.hasCredit, sr.HasCredit)
		})
	}
}

func TestStateCodesSorted(t *testing.T) {
	engine := NewEngine()
	codes := engine.StateCodes()
	require.NotEmpty(t, codes)
	for i := 1; i < len(codes); i++ {
		assert.Less(t, codes[i-1], codes[i])
	}
	assert.Contains(t, codes, "PA")
}

func TestCriterionCoversEveryElement(t *testing.T) {
	engine := NewEngine()
	for _, element := range domain.TestElements() {
		criterion, ok := engine.Criterion(element)
		require.True(t, ok, "missing criterion for %s", element)
		assert.Equal(t, element, criterion.Element)
		assert.NotEmpty(t, criterion.Citation)
		assert.NotEmpty(t, criterion.Indicators)
	}
}

func TestContractResearchPercentage(t *testing.T) {
	engine := NewEngine()
	assert.True(t, engine.ContractResearchPercentage(false).Equal(decimal.NewFromFloat(0.65)))
	assert.True(t, engine.ContractResearchPercentage(true).Equal(decimal.NewFromFloat(0.75)))
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()

	t.Run("seeded with the default snapshot", func(t *testing.T) {
		engine, ok := registry.Get(DefaultVersion)
		require.True(t, ok)
		assert.Equal(t, DefaultVersion, engine.Version())
		assert.Equal(t, DefaultVersion, registry.Latest().Version())
	})

	t.Run("re-registering identical content is a no-op", func(t *testing.T) {
		assert.NoError(t, registry.Register(NewEngine()))
	})

	t.Run("re-registering changed content is rejected", func(t *testing.T) {
		federal := DefaultFederalRules()
		federal.ASCRate = decimal.NewFromFloat(0.15)
		conflicting, err := NewEngineFromSnapshot(DefaultVersion, federal, DefaultStateRules())
		require.NoError(t, err)

		err = registry.Register(conflicting)
		require.Error(t, err, "a published version must never be silently mutated")
		assert.Contains(t, err.Error(), "different content")
	})

	t.Run("a new version becomes latest", func(t *testing.T) {
		next, err := NewEngineFromSnapshot("2025.1", DefaultFederalRules(), DefaultStateRules())
		require.NoError(t, err)
		require.NoError(t, registry.Register(next))

		assert.Equal(t, "2025.1", registry.Latest().Version())
		assert.Equal(t, []string{"2024.1", "2025.1"}, registry.Versions())
	})

	t.Run("version components compare numerically", func(t *testing.T) {
		for _, v := range []string{"2025.9", "2025.10"} {
			e, err := NewEngineFromSnapshot(v, DefaultFederalRules(), DefaultStateRules())
			require.NoError(t, err)
			require.NoError(t, registry.Register(e))
		}

		// "2025.10" sorts before "2025.9" as a string but is the newer release.
		assert.Equal(t, "2025.10", registry.Latest().Version())
		assert.Equal(t, []string{"2024.1", "2025.1", "2025.9", "2025.10"}, registry.Versions())
	})
}

func TestVersionLess(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"2024.1", "2024.2", true},
		{"2024.9", "2024.10", true},
		{"2024.10", "2024.9", false},
		{"2024.1", "2025.1", true},
		{"2024.1", "2024.1", false},
		{"2024.1", "2024.1.1", true},
		{"2024.rc1", "2024.rc2", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, versionLess(tt.a, tt.b), "%s < %s", tt.a, tt.b)
	}
}
