// Package qre computes qualified research expenses for wages, supplies, and
// contract research under IRC §41(b), with per-item provenance and
// confidence scoring.
package qre

import (
	"github.com/google/uuid"
	"github.com/rdtax/credit-calculator/internal/domain"
	"github.com/rdtax/credit-calculator/internal/rules"
	"github.com/rdtax/credit-calculator/pkg/decutil"
	"github.com/shopspring/decimal"
)

// Engine computes QRE against one rules snapshot. Stateless beyond the
// read-only snapshot; safe for concurrent use.
type Engine struct {
	rules *rules.Engine
}

// NewEngine creates a QRE engine over a rules snapshot.
func NewEngine(r *rules.Engine) *Engine {
	return &Engine{rules: r}
}

// CalculateStudyQREs computes the full QRE summary for a study.
// qualifiedProjects gates which project ids count as qualified: timesheet
// hours on unqualified projects are dropped, and supplies and contracts tied
// to an unqualified project are excluded outright. A nil map treats every
// project as qualified, which matches running the QRE pass before
// qualification for sizing purposes.
func (e *Engine) CalculateStudyQREs(input domain.StudyInput, qualifiedProjects map[string]bool) domain.QRESummary {
	summary := domain.QRESummary{
		ID:              uuid.NewString(),
		StudyName:       input.StudyName,
		TaxYear:         input.TaxYear,
		RulesVersion:    e.rules.Version(),
		StateAllocation: make(map[string]decimal.Decimal),
	}

	for _, emp := range input.Employees {
		alloc := e.calculateWageAllocation(emp, qualifiedProjects)
		summary.WageAllocations = append(summary.WageAllocations, alloc)
		summary.WageQRE = summary.WageQRE.Add(alloc.QualifiedWages)
		addStateAllocation(summary.StateAllocation, alloc.StateCode, alloc.QualifiedWages)
	}

	for _, exp := range input.Supplies {
		sq := e.evaluateSupply(exp, qualifiedProjects)
		summary.Supplies = append(summary.Supplies, sq)
		if sq.Qualified {
			summary.SupplyQRE = summary.SupplyQRE.Add(sq.QualifiedAmount)
			addStateAllocation(summary.StateAllocation, sq.StateCode, sq.QualifiedAmount)
		}
	}

	for _, contract := range input.Contracts {
		cq := e.evaluateContract(contract, qualifiedProjects)
		summary.Contracts = append(summary.Contracts, cq)
		if !cq.Excluded {
			summary.ContractQRE = summary.ContractQRE.Add(cq.QualifiedAmount)
			addStateAllocation(summary.StateAllocation, cq.StateCode, cq.QualifiedAmount)
		}
	}

	for _, br := range input.BasicResearch {
		item := domain.BasicResearchQRE{
			RecordID:         br.ID,
			OrganizationName: br.OrganizationName,
			Amount:           decutil.RoundMoney(br.Amount),
			EvidenceIDs:      br.EvidenceIDs,
		}
		confidence := decimal.NewFromFloat(0.80)
		if len(br.EvidenceIDs) > 0 {
			confidence = confidence.Add(corroborationBoost)
		}
		item.Confidence = decutil.Clamp(confidence, decimal.Zero, confidenceCeiling)
		summary.BasicResearch = append(summary.BasicResearch, item)
		summary.BasicResearchQRE = summary.BasicResearchQRE.Add(item.Amount)
	}
	summary.BasicResearchQRE = decutil.RoundMoney(summary.BasicResearchQRE)

	summary.WageQRE = decutil.RoundMoney(summary.WageQRE)
	summary.SupplyQRE = decutil.RoundMoney(summary.SupplyQRE)
	summary.ContractQRE = decutil.RoundMoney(summary.ContractQRE)
	summary.TotalQRE = summary.WageQRE.Add(summary.SupplyQRE).Add(summary.ContractQRE).Add(summary.BasicResearchQRE)

	summary.OverallConfidence = e.overallConfidence(&summary)
	summary.EvidenceCoverage = e.evidenceCoverage(&summary)
	summary.RiskFlags = e.riskFlags(&summary)
	return summary
}

func addStateAllocation(alloc map[string]decimal.Decimal, stateCode string, amount decimal.Decimal) {
	if stateCode == "" || amount.IsZero() {
		return
	}
	alloc[stateCode] = alloc[stateCode].Add(amount)
}

// overallConfidence is the dollar-weighted average confidence across every
// item that contributed QRE dollars.
func (e *Engine) overallConfidence(summary *domain.QRESummary) decimal.Decimal {
	weighted := decimal.Zero
	total := decimal.Zero
	for _, a := range summary.WageAllocations {
		weighted = weighted.Add(a.QualifiedWages.Mul(a.Confidence))
		total = total.Add(a.QualifiedWages)
	}
	for _, s := range summary.Supplies {
		if s.Qualified {
			weighted = weighted.Add(s.QualifiedAmount.Mul(s.Confidence))
			total = total.Add(s.QualifiedAmount)
		}
	}
	for _, c := range summary.Contracts {
		if !c.Excluded {
			weighted = weighted.Add(c.QualifiedAmount.Mul(c.Confidence))
			total = total.Add(c.QualifiedAmount)
		}
	}
	for _, b := range summary.BasicResearch {
		weighted = weighted.Add(b.Amount.Mul(b.Confidence))
		total = total.Add(b.Amount)
	}
	if total.IsZero() {
		return decimal.Zero
	}
	return weighted.Div(total).Round(4)
}

// evidenceCoverage is the fraction of QRE dollars backed by evidence ids or
// timesheet provenance.
func (e *Engine) evidenceCoverage(summary *domain.QRESummary) decimal.Decimal {
	covered := decimal.Zero
	total := decimal.Zero
	for _, a := range summary.WageAllocations {
		total = total.Add(a.QualifiedWages)
		if len(a.EvidenceIDs) > 0 || a.Source == domain.TimeSourceTimesheet {
			covered = covered.Add(a.QualifiedWages)
		}
	}
	for _, s := range summary.Supplies {
		if !s.Qualified {
			continue
		}
		total = total.Add(s.QualifiedAmount)
		if len(s.EvidenceIDs) > 0 {
			covered = covered.Add(s.QualifiedAmount)
		}
	}
	for _, c := range summary.Contracts {
		if c.Excluded {
			continue
		}
		total = total.Add(c.QualifiedAmount)
		if len(c.EvidenceIDs) > 0 {
			covered = covered.Add(c.QualifiedAmount)
		}
	}
	for _, b := range summary.BasicResearch {
		total = total.Add(b.Amount)
		if len(b.EvidenceIDs) > 0 {
			covered = covered.Add(b.Amount)
		}
	}
	if total.IsZero() {
		return decimal.Zero
	}
	return covered.Div(total).Round(4)
}
