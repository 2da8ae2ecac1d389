package rules

import (
	"github.com/rdtax/credit-calculator/internal/domain"
	"github.com/shopspring/decimal"
)

// DefaultStateRules returns the built-in state rule table. States without an
// R&D credit are present with HasCredit=false so lookups distinguish "no
// credit" from "unknown code".
func DefaultStateRules() map[string]domain.StateRules {
	states := []domain.StateRules{
		{
			Code:              "CA",
			Name:              "California",
			HasCredit:         true,
			CreditTyp:         domain.CreditTypeIncremental,
			BaseMeth:          domain.BaseMethodFederal,
			Rate:              decimal.NewFromFloat(0.15),
			CarryforwardYears: -1, // indefinite
			Citation:          "Cal. Rev. & Tax. Code §23609",
			Notes: []string{
				"Credit applies to qualified research conducted in California",
				"Carryforward is indefinite",
			},
			WagesInStateRequired: true,
		},
		{
			Code:                 "NY",
			Name:                 "New York",
			HasCredit:            true,
			CreditTyp:            domain.CreditTypeIncremental,
			BaseMeth:             domain.BaseMethodFederal,
			Rate:                 decimal.NewFromFloat(0.09),
			CarryforwardYears:    15,
			Refundable:           false,
			Citation:             "NY Tax Law §210-B(9) (Excelsior R&D component modeled separately)",
			WagesInStateRequired: true,
		},
		{
			Code:              "NJ",
			Name:              "New Jersey",
			HasCredit:         true,
			CreditTyp:         domain.CreditTypeIncremental,
			BaseMeth:          domain.BaseMethodFederal,
			Rate:              decimal.NewFromFloat(0.10),
			CarryforwardYears: 7,
			Citation:          "N.J.S.A. 54:10A-5.24",
		},
		{
			Code:              "PA",
			Name:              "Pennsylvania",
			HasCredit:         true,
			CreditTyp:         domain.CreditTypeIncremental,
			BaseMeth:          domain.BaseMethodPASpecial,
			Rate:              decimal.NewFromFloat(0.10),
			CarryforwardYears: 15,
			ProgramCap:        decimal.NewFromInt(60000000),
			// Estimate until the Department of Revenue publishes the actual
			// program proration for the award year; see config overrides.
			ProrationFactor: decimal.NewFromFloat(0.65),
			Citation:        "72 P.S. §8702-B",
			Notes: []string{
				"Statewide $60M program pool is prorated among all claimants",
				"Proration factor is an estimate until published by the state",
			},
		},
		{
			Code:                "AZ",
			Name:                "Arizona",
			HasCredit:           true,
			CreditTyp:           domain.CreditTypeIncremental,
			BaseMeth:            domain.BaseMethodFixedPercentage,
			Rate:                decimal.NewFromFloat(0.24),
			FixedBasePercentage: decimal.NewFromFloat(0.50),
			CarryforwardYears:   10,
			Refundable:          true,
			Citation:            "A.R.S. §43-1168",
			Notes:               []string{"Partial refundability for qualifying small businesses"},
		},
		{
			Code:                "GA",
			Name:                "Georgia",
			HasCredit:           true,
			CreditTyp:           domain.CreditTypeIncremental,
			BaseMeth:            domain.BaseMethodFixedPercentage,
			Rate:                decimal.NewFromFloat(0.10),
			FixedBasePercentage: decimal.NewFromFloat(0.50),
			CarryforwardYears:   10,
			Citation:            "O.C.G.A. §48-7-40.12",
		},
		{
			Code:              "MA",
			Name:              "Massachusetts",
			HasCredit:         true,
			CreditTyp:         domain.CreditTypeHybrid,
			BaseMeth:          domain.BaseMethodFederal,
			Rate:              decimal.NewFromFloat(0.10),
			CarryforwardYears: 15,
			Cap:               decimal.NewFromInt(25000000),
			Citation:          "M.G.L. c.63 §38M",
		},
		{
			Code:              "CT",
			Name:              "Connecticut",
			HasCredit:         true,
			CreditTyp:         domain.CreditTypeNonIncremental,
			BaseMeth:          domain.BaseMethodNonIncremental,
			Rate:              decimal.NewFromFloat(0.06),
			CarryforwardYears: 15,
			Citation:          "Conn. Gen. Stat. §12-217n",
			Notes:             []string{"Non-incremental credit on total state QRE"},
		},
		{
			Code:      "WA",
			Name:      "Washington",
			HasCredit: false,
			Notes:     []string{"R&D B&O credit expired January 1, 2015"},
		},
		{
			Code:      "NV",
			Name:      "Nevada",
			HasCredit: false,
			Notes:     []string{"No corporate income tax; no R&D credit"},
		},
	}

	table := make(map[string]domain.StateRules, len(states))
	for _, sr := range states {
		table[sr.Code] = sr
	}
	return table
}
