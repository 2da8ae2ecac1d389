package calculation

import (
	"sort"

	"github.com/rdtax/credit-calculator/internal/domain"
	"github.com/rdtax/credit-calculator/pkg/decutil"
	"github.com/shopspring/decimal"
)

// CreditInput carries everything a federal credit computation needs. QRE
// totals normally come from a QRESummary; base-period and prior-year history
// come from the study workpapers.
type CreditInput struct {
	TaxYear int

	WageQRE          decimal.Decimal
	SupplyQRE        decimal.Decimal
	ContractQRE      decimal.Decimal
	BasicResearchQRE decimal.Decimal

	BasePeriod               map[int]domain.BasePeriodYear
	PriorYearQREs            map[int]decimal.Decimal
	CurrentYearGrossReceipts decimal.Decimal

	Section280CElection  bool
	AllocationPercentage decimal.Decimal // controlled group share; zero means 100
	IsShortYear          bool
	DaysInYear           int
}

// allocationPct normalizes the controlled-group percentage.
func (in CreditInput) allocationPct() decimal.Decimal {
	if in.AllocationPercentage.IsZero() {
		return decimal.NewFromInt(100)
	}
	return in.AllocationPercentage
}

// CalculateRegularCredit computes the IRC §41(a)(1) Regular Credit as the
// documented nine-step sequence. Each monetary step is rounded half-up to
// the penny before the next step consumes it.
func (e *Engine) CalculateRegularCredit(input CreditInput) domain.FederalCreditResult {
	fr := e.rules.FederalRules()
	trail := newStepTrail()

	result := domain.FederalCreditResult{
		Method:           domain.MethodRegular,
		TaxYear:          input.TaxYear,
		RulesVersion:     e.rules.Version(),
		WageQRE:          input.WageQRE,
		SupplyQRE:        input.SupplyQRE,
		ContractQRE:      input.ContractQRE,
		BasicResearchQRE: input.BasicResearchQRE,
	}

	totalQRE := trail.add(
		"Total qualified research expenses",
		"wage_qre + supply_qre + contract_qre + basic_research_qre",
		map[string]decimal.Decimal{
			"wage_qre":           input.WageQRE,
			"supply_qre":         input.SupplyQRE,
			"contract_qre":       input.ContractQRE,
			"basic_research_qre": input.BasicResearchQRE,
		},
		decutil.RoundMoney(input.WageQRE.Add(input.SupplyQRE).Add(input.ContractQRE).Add(input.BasicResearchQRE)),
		"IRC §41(b)", "")
	result.TotalQRE = totalQRE

	fbp, fbpNote := e.fixedBasePercentage(input, fr)
	trail.add(
		"Fixed-base percentage",
		"clamp(aggregate_base_qre / aggregate_base_gross_receipts, 3%, 16%)",
		map[string]decimal.Decimal{"floor": fr.FixedBaseFloor, "cap": fr.FixedBaseCap},
		fbp,
		"IRC §41(c)(3)", fbpNote)
	result.FixedBasePercentage = fbp

	avgGR, avgGRNote := e.averageGrossReceipts(input, fr)
	trail.add(
		"Average annual gross receipts",
		"mean(gross_receipts of up to 4 prior years)",
		nil,
		avgGR,
		"IRC §41(c)(1)(B)", avgGRNote)
	result.AvgGrossReceipts = avgGR

	// The 50%-of-current-QRE floor is mandatory and must never be skipped.
	computedBase := decutil.RoundMoney(fbp.Mul(avgGR))
	qreFloor := decutil.RoundMoney(fr.BaseAmountQREFloor.Mul(totalQRE))
	baseAmount := decimal.Max(computedBase, qreFloor)
	trail.add(
		"Base amount",
		"max(fixed_base_percentage × avg_gross_receipts, 0.50 × total_qre)",
		map[string]decimal.Decimal{
			"fixed_base_percentage": fbp,
			"avg_gross_receipts":    avgGR,
			"total_qre":             totalQRE,
			"qre_floor":             qreFloor,
		},
		baseAmount,
		"IRC §41(c)(1), §41(c)(2)", "")
	result.BaseAmount = baseAmount

	excess := decimal.Max(totalQRE.Sub(baseAmount), decimal.Zero)
	trail.add(
		"Excess QRE over base amount",
		"max(total_qre − base_amount, 0)",
		map[string]decimal.Decimal{"total_qre": totalQRE, "base_amount": baseAmount},
		excess,
		"IRC §41(a)(1)", "")
	result.ExcessQRE = excess

	result.AppliedRate = fr.RegularCreditRate
	tentative := trail.add(
		"Tentative credit",
		"excess_qre × 20%",
		map[string]decimal.Decimal{"excess_qre": excess, "rate": fr.RegularCreditRate},
		decutil.RoundMoney(excess.Mul(fr.RegularCreditRate)),
		"IRC §41(a)(1)", "")
	result.TentativeCredit = tentative

	e.applyCommonTail(&result, trail, input, fr, tentative)
	result.Steps = trail.list()
	return result
}

// CalculateASCCredit computes the IRC §41(c)(4) Alternative Simplified
// Credit. When the three prior years carry no QRE at all, the reduced 6%
// rate applies to total QRE rather than a division fallback.
func (e *Engine) CalculateASCCredit(input CreditInput) domain.FederalCreditResult {
	fr := e.rules.FederalRules()
	trail := newStepTrail()

	result := domain.FederalCreditResult{
		Method:           domain.MethodASC,
		TaxYear:          input.TaxYear,
		RulesVersion:     e.rules.Version(),
		WageQRE:          input.WageQRE,
		SupplyQRE:        input.SupplyQRE,
		ContractQRE:      input.ContractQRE,
		BasicResearchQRE: input.BasicResearchQRE,
	}

	totalQRE := trail.add(
		"Total qualified research expenses",
		"wage_qre + supply_qre + contract_qre + basic_research_qre",
		map[string]decimal.Decimal{
			"wage_qre":           input.WageQRE,
			"supply_qre":         input.SupplyQRE,
			"contract_qre":       input.ContractQRE,
			"basic_research_qre": input.BasicResearchQRE,
		},
		decutil.RoundMoney(input.WageQRE.Add(input.SupplyQRE).Add(input.ContractQRE).Add(input.BasicResearchQRE)),
		"IRC §41(b)", "")
	result.TotalQRE = totalQRE

	priorSum := decimal.Zero
	priorInputs := map[string]decimal.Decimal{}
	for i := 1; i <= fr.ASCLookbackYears; i++ {
		year := input.TaxYear - i
		qre := input.PriorYearQREs[year]
		priorSum = priorSum.Add(qre)
		priorInputs[yearKey(year)] = qre
	}
	avgPrior := decutil.RoundMoney(priorSum.Div(decimal.NewFromInt(int64(fr.ASCLookbackYears))))
	trail.add(
		"Average QRE of the 3 preceding tax years",
		"sum(prior_year_qres) / 3",
		priorInputs,
		avgPrior,
		"IRC §41(c)(4)(A)", "")
	result.AvgPriorQRE = avgPrior

	var tentative decimal.Decimal
	if avgPrior.IsZero() {
		// No QRE in any of the three prior years: 6% of total QRE.
		result.BaseAmount = decimal.Zero
		result.ExcessQRE = totalQRE
		result.AppliedRate = fr.ASCReducedRate
		trail.add(
			"Base amount",
			"no prior-year QRE: base amount is zero",
			nil,
			decimal.Zero,
			"IRC §41(c)(4)(B)", "reduced-rate rule applies")
		trail.add(
			"Excess QRE",
			"total_qre (reduced-rate rule applies the rate to total QRE)",
			map[string]decimal.Decimal{"total_qre": totalQRE},
			totalQRE,
			"IRC §41(c)(4)(B)", "")
		tentative = trail.add(
			"Tentative credit",
			"total_qre × 6%",
			map[string]decimal.Decimal{"total_qre": totalQRE, "rate": fr.ASCReducedRate},
			decutil.RoundMoney(totalQRE.Mul(fr.ASCReducedRate)),
			"IRC §41(c)(4)(B)", "no QRE in any of the 3 preceding tax years")
	} else {
		base := decutil.RoundMoney(fr.BaseAmountQREFloor.Mul(avgPrior))
		trail.add(
			"Base amount",
			"0.50 × avg_prior_qre",
			map[string]decimal.Decimal{"avg_prior_qre": avgPrior},
			base,
			"IRC §41(c)(4)(A)", "")
		result.BaseAmount = base

		excess := decimal.Max(totalQRE.Sub(base), decimal.Zero)
		trail.add(
			"Excess QRE over base amount",
			"max(total_qre − base_amount, 0)",
			map[string]decimal.Decimal{"total_qre": totalQRE, "base_amount": base},
			excess,
			"IRC §41(c)(4)(A)", "")
		result.ExcessQRE = excess

		result.AppliedRate = fr.ASCRate
		tentative = trail.add(
			"Tentative credit",
			"excess_qre × 14%",
			map[string]decimal.Decimal{"excess_qre": excess, "rate": fr.ASCRate},
			decutil.RoundMoney(excess.Mul(fr.ASCRate)),
			"IRC §41(c)(4)(A)", "")
	}
	result.TentativeCredit = tentative

	e.applyCommonTail(&result, trail, input, fr, tentative)
	result.Steps = trail.list()
	return result
}

// applyCommonTail records the §280C reduction, controlled-group allocation,
// and short-year adjustment, shared by both federal methods.
func (e *Engine) applyCommonTail(result *domain.FederalCreditResult, trail *stepTrail, input CreditInput, fr domain.FederalRules, tentative decimal.Decimal) {
	result.Section280CElected = input.Section280CElection
	reduction := decimal.Zero
	note := "no §280C(c) election; credit unchanged"
	if input.Section280CElection {
		reduction = decutil.RoundMoney(tentative.Mul(fr.Section280CRate))
		note = ""
	}
	trail.add(
		"§280C(c) reduction",
		"tentative_credit × 21% (if elected)",
		map[string]decimal.Decimal{"tentative_credit": tentative, "rate": fr.Section280CRate},
		reduction,
		"IRC §280C(c)(3)", note)
	result.Section280CReduction = reduction

	after280C := decutil.RoundMoney(tentative.Sub(reduction))
	result.CreditAfter280C = after280C

	allocPct := input.allocationPct()
	result.AllocationPercentage = allocPct
	allocated := trail.add(
		"Controlled-group allocation",
		"credit_after_280c × (allocation_percentage / 100)",
		map[string]decimal.Decimal{"credit_after_280c": after280C, "allocation_percentage": allocPct},
		decutil.RoundMoney(after280C.Mul(decutil.Pct(allocPct))),
		"IRC §41(f)(1)", "")
	result.AllocatedCredit = allocated

	result.IsShortYear = input.IsShortYear
	final := allocated
	shortNote := "full tax year; no adjustment"
	days := decimal.NewFromInt(365)
	if input.IsShortYear {
		days = decimal.NewFromInt(int64(input.DaysInYear))
		final = decutil.RoundMoney(allocated.Mul(days).Div(decimal.NewFromInt(365)))
		shortNote = ""
	}
	trail.add(
		"Short-year adjustment",
		"allocated_credit × (days_in_year / 365)",
		map[string]decimal.Decimal{"allocated_credit": allocated, "days_in_year": days},
		final,
		"IRC §41(f)(4)", shortNote)
	result.FinalCredit = final
}

// fixedBasePercentage aggregates up to BasePeriodYears of history and clamps
// the ratio to the statutory floor and cap. Absent history, the 3% floor is
// the start-up default.
func (e *Engine) fixedBasePercentage(input CreditInput, fr domain.FederalRules) (decimal.Decimal, string) {
	years := basePeriodYears(input.BasePeriod, fr.BasePeriodYears)
	if len(years) == 0 {
		return fr.FixedBaseFloor, "no base-period data; statutory 3% floor applied"
	}

	aggQRE := decimal.Zero
	aggGR := decimal.Zero
	for _, y := range years {
		aggQRE = aggQRE.Add(input.BasePeriod[y].QRE)
		aggGR = aggGR.Add(input.BasePeriod[y].GrossReceipts)
	}
	if aggGR.IsZero() {
		return fr.FixedBaseFloor, "base-period gross receipts are zero; statutory 3% floor applied"
	}

	ratio := aggQRE.Div(aggGR).Round(6)
	clamped := decutil.Clamp(ratio, fr.FixedBaseFloor, fr.FixedBaseCap)
	note := ""
	if !clamped.Equal(ratio) {
		note = "ratio " + ratio.String() + " clamped to statutory bounds"
	}
	return clamped, note
}

// averageGrossReceipts takes the mean over up to four prior years, falling
// back to current-year receipts when no history exists.
func (e *Engine) averageGrossReceipts(input CreditInput, fr domain.FederalRules) (decimal.Decimal, string) {
	years := basePeriodYears(input.BasePeriod, fr.BasePeriodYears)
	if len(years) == 0 {
		return decutil.RoundMoney(input.CurrentYearGrossReceipts), "no prior-year receipts; current-year gross receipts used"
	}
	values := make([]decimal.Decimal, 0, len(years))
	for _, y := range years {
		values = append(values, input.BasePeriod[y].GrossReceipts)
	}
	note := ""
	if len(years) < fr.BasePeriodYears {
		note = "incomplete history; fewer than 4 prior years available"
	}
	return decutil.RoundMoney(decutil.Mean(values)), note
}

// basePeriodYears returns the most recent base-period years, newest first,
// capped at the lookback window.
func basePeriodYears(basePeriod map[int]domain.BasePeriodYear, lookback int) []int {
	years := make([]int, 0, len(basePeriod))
	for y := range basePeriod {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	if len(years) > lookback {
		years = years[:lookback]
	}
	return years
}

func yearKey(year int) string {
	return "qre_" + decimal.NewFromInt(int64(year)).String()
}
