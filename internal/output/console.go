package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/rdtax/credit-calculator/internal/domain"
)

// WriteConsoleReport writes a reviewer-facing report: qualification outcomes,
// the QRE summary, both federal audit trails, state credits, and every risk
// flag. Risk flags and estimates are rendered prominently, never suppressed.
func (rg *ReportGenerator) WriteConsoleReport(w io.Writer, result *domain.FullCalculationResult) error {
	fmt.Fprintln(w, strings.Repeat("=", 78))
	fmt.Fprintf(w, "R&D TAX CREDIT CALCULATION: %s (tax year %d)\n", result.StudyName, result.TaxYear)
	fmt.Fprintf(w, "Rules version %s (%s)\n", result.RulesVersion, result.RulesHash)
	fmt.Fprintln(w, strings.Repeat("=", 78))
	fmt.Fprintln(w)

	if len(result.Qualification) > 0 {
		fmt.Fprintln(w, "PROJECT QUALIFICATION")
		fmt.Fprintln(w, strings.Repeat("-", 78))
		for _, q := range result.Qualification {
			fmt.Fprintf(w, "%-28s %-20s overall %s  min %s  audit risk %s\n",
				q.ProjectName, q.Status, q.OverallScore.StringFixed(1), q.MinScore.StringFixed(1), q.AuditRiskScore.StringFixed(1))
			if q.Excluded {
				fmt.Fprintf(w, "  EXCLUDED: %s\n", q.ExclusionDetail)
			}
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "QUALIFIED RESEARCH EXPENSES")
	fmt.Fprintln(w, strings.Repeat("-", 78))
	fmt.Fprintf(w, "Wages:            %s\n", FormatCurrency(result.QRE.WageQRE))
	fmt.Fprintf(w, "Supplies:         %s\n", FormatCurrency(result.QRE.SupplyQRE))
	fmt.Fprintf(w, "Contract:         %s\n", FormatCurrency(result.QRE.ContractQRE))
	fmt.Fprintf(w, "Basic research:   %s\n", FormatCurrency(result.QRE.BasicResearchQRE))
	fmt.Fprintf(w, "Total QRE:        %s\n", FormatCurrency(result.QRE.TotalQRE))
	fmt.Fprintf(w, "Confidence:       %s   Evidence coverage: %s\n",
		result.QRE.OverallConfidence.StringFixed(4), result.QRE.EvidenceCoverage.StringFixed(4))
	fmt.Fprintln(w)

	writeFederalTrail(w, &result.RegularCredit, "FEDERAL REGULAR CREDIT (IRC §41(a)(1))")
	writeFederalTrail(w, &result.ASCCredit, "ALTERNATIVE SIMPLIFIED CREDIT (IRC §41(c)(4))")

	fmt.Fprintln(w, "METHOD COMPARISON")
	fmt.Fprintln(w, strings.Repeat("-", 78))
	for _, factor := range result.Comparison.FactorsConsidered {
		fmt.Fprintf(w, "  - %s\n", factor)
	}
	if result.Comparison.CPAOverride {
		fmt.Fprintf(w, "  CPA OVERRIDE: %s\n", result.Comparison.OverrideReason)
	}
	fmt.Fprintf(w, "Selected method: %s (final federal credit %s)\n",
		strings.ToUpper(string(result.SelectedMethod)), FormatCurrency(result.FinalFederalCredit))
	fmt.Fprintln(w)

	if len(result.StateCredits) > 0 {
		fmt.Fprintln(w, "STATE CREDITS")
		fmt.Fprintln(w, strings.Repeat("-", 78))
		for i := range result.StateCredits {
			writeStateTrail(w, &result.StateCredits[i])
		}
		fmt.Fprintf(w, "Total state credits: %s\n", FormatCurrency(result.TotalStateCredits))
		fmt.Fprintln(w)
	}

	if len(result.RiskFlags) > 0 {
		fmt.Fprintln(w, "RISK FLAGS")
		fmt.Fprintln(w, strings.Repeat("-", 78))
		for _, flag := range sortedFlags(result.RiskFlags) {
			fmt.Fprintf(w, "  [%-6s] %s: %s\n", strings.ToUpper(string(flag.Severity)), flag.Code, flag.Message)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func writeFederalTrail(w io.Writer, credit *domain.FederalCreditResult, title string) {
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("-", 78))
	writeSteps(w, credit.Steps)
	fmt.Fprintf(w, "Final credit: %s\n", FormatCurrency(credit.FinalCredit))
	fmt.Fprintln(w)
}

func writeStateTrail(w io.Writer, credit *domain.StateCreditResult) {
	estimate := ""
	if credit.IsEstimate {
		estimate = "  (ESTIMATE)"
	}
	fmt.Fprintf(w, "%s - %s%s\n", credit.StateCode, credit.StateName, estimate)
	writeSteps(w, credit.Steps)
	fmt.Fprintf(w, "  Final %s credit: %s  [%s]\n", credit.StateCode, FormatCurrency(credit.FinalCredit), credit.Citation)
	for _, note := range credit.Notes {
		fmt.Fprintf(w, "  note: %s\n", note)
	}
	fmt.Fprintln(w)
}

func writeSteps(w io.Writer, steps []domain.CalculationStep) {
	for _, step := range steps {
		fmt.Fprintf(w, "  %2d. %-46s %14s  %s\n", step.StepNumber, step.Description, step.Result.StringFixed(2), step.Citation)
		fmt.Fprintf(w, "      %s\n", step.Formula)
		if step.Notes != "" {
			fmt.Fprintf(w, "      note: %s\n", step.Notes)
		}
	}
}

// sortedFlags orders flags by severity then code for stable output.
func sortedFlags(flags []domain.RiskFlag) []domain.RiskFlag {
	rank := map[domain.RiskSeverity]int{domain.RiskHigh: 0, domain.RiskMedium: 1, domain.RiskLow: 2}
	out := append([]domain.RiskFlag(nil), flags...)
	sort.SliceStable(out, func(i, j int) bool {
		if rank[out[i].Severity] != rank[out[j].Severity] {
			return rank[out[i].Severity] < rank[out[j].Severity]
		}
		return out[i].Code < out[j].Code
	})
	return out
}
