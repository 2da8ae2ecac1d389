package qre

import (
	"fmt"

	"github.com/rdtax/credit-calculator/internal/domain"
	"github.com/rdtax/credit-calculator/pkg/decutil"
	"github.com/shopspring/decimal"
)

// evaluateContract applies the IRC §41(b)(3) inclusion rate to one contract
// research payment: 75% for qualified research organizations, 65% otherwise.
// Research performed outside the US is excluded entirely, not discounted, and
// a payment tied to a project that failed the four-part test is excluded the
// same way wage hours on that project are.
func (e *Engine) evaluateContract(contract domain.ContractRecord, qualifiedProjects map[string]bool) domain.ContractQRE {
	cq := domain.ContractQRE{
		ContractID:     contract.ID,
		ContractorName: contract.ContractorName,
		GrossAmount:    contract.Amount,
		ProjectID:      contract.ProjectID,
		EvidenceIDs:    contract.EvidenceIDs,
		StateCode:      contract.StateCode,
	}

	if contract.ProjectID != "" && qualifiedProjects != nil && !qualifiedProjects[contract.ProjectID] {
		cq.Excluded = true
		cq.AppliedRate = decimal.Zero
		cq.QualifiedAmount = decimal.Zero
		cq.Rationale = fmt.Sprintf("excluded: project %s did not qualify under the four-part test", contract.ProjectID)
		cq.Confidence = decimal.NewFromFloat(0.90)
		return cq
	}

	if contract.PerformedOutsideUS {
		cq.Excluded = true
		cq.AppliedRate = decimal.Zero
		cq.QualifiedAmount = decimal.Zero
		cq.Rationale = "excluded: research performed outside the United States (IRC §41(d)(4)(F))"
		cq.Confidence = decimal.NewFromFloat(0.95)
		return cq
	}

	rate := e.rules.ContractResearchPercentage(contract.IsQualifiedResearchOrg)
	cq.AppliedRate = rate
	cq.QualifiedAmount = decutil.RoundMoney(contract.Amount.Mul(rate))
	if contract.IsQualifiedResearchOrg {
		cq.Rationale = fmt.Sprintf("qualified research organization: %s of payment included (IRC §41(b)(3)(C))", rate.Mul(decimal.NewFromInt(100)).String()+"%")
	} else {
		cq.Rationale = fmt.Sprintf("standard contract research: %s of payment included (IRC §41(b)(3)(A))", rate.Mul(decimal.NewFromInt(100)).String()+"%")
	}

	confidence := decimal.NewFromFloat(0.80)
	if len(contract.EvidenceIDs) > 0 {
		confidence = confidence.Add(corroborationBoost)
	}
	cq.Confidence = decutil.Clamp(confidence, decimal.Zero, confidenceCeiling)
	return cq
}
