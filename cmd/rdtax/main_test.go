package main

import (
	"testing"

	"github.com/rdtax/credit-calculator/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestQualifiedProjectSet(t *testing.T) {
	results := []domain.ProjectQualificationResult{
		{ProjectID: "p-qualified", Status: domain.StatusQualified},
		{ProjectID: "p-partial", Status: domain.StatusPartiallyQualified},
		{ProjectID: "p-review", Status: domain.StatusNeedsReview},
		{ProjectID: "p-rejected", Status: domain.StatusNotQualified},
	}

	set := qualifiedProjectSet(results)

	assert.True(t, set["p-qualified"])
	assert.True(t, set["p-partial"], "partially qualified projects still contribute QRE")
	assert.False(t, set["p-review"])
	assert.False(t, set["p-rejected"])
}

func TestRootCommandWiring(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range []string{"qualify", "qre", "calculate", "rules", "version"} {
		names[c] = false
	}
	for _, cmd := range []string{
		qualifyCmd().Name(), qreCmd().Name(), calculateCmd().Name(), rulesCmd().Name(), versionCmd().Name(),
	} {
		if _, ok := names[cmd]; ok {
			names[cmd] = true
		}
	}
	for name, seen := range names {
		assert.True(t, seen, "command %s must be constructible", name)
	}
}
