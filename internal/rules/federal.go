package rules

import (
	"github.com/rdtax/credit-calculator/internal/domain"
	"github.com/shopspring/decimal"
)

// DefaultVersion identifies the built-in rule snapshot (tax year 2024 values).
const DefaultVersion = "2024.1"

// DefaultFederalRules returns the built-in federal rule content.
func DefaultFederalRules() domain.FederalRules {
	return domain.FederalRules{
		RegularCreditRate: decimal.NewFromFloat(0.20),
		ASCRate:           decimal.NewFromFloat(0.14),
		ASCReducedRate:    decimal.NewFromFloat(0.06),

		BasePeriodYears:    4,
		FixedBaseFloor:     decimal.NewFromFloat(0.03),
		FixedBaseCap:       decimal.NewFromFloat(0.16),
		BaseAmountQREFloor: decimal.NewFromFloat(0.50),

		ASCLookbackYears: 3,

		ContractResearchRate:     decimal.NewFromFloat(0.65),
		QualifiedOrgContractRate: decimal.NewFromFloat(0.75),

		Section280CRate: decimal.NewFromFloat(0.21),

		SubstantiallyAllThreshold: decimal.NewFromInt(80),

		FourPartTest:       defaultFourPartTest(),
		ExcludedActivities: defaultExcludedActivities(),
	}
}

func defaultFourPartTest() []domain.TestCriterion {
	return []domain.TestCriterion{
		{
			Element:     domain.ElementPermittedPurpose,
			Name:        "Permitted Purpose",
			Description: "The activity must be intended to develop a new or improved business component: function, performance, reliability, or quality.",
			Citation:    "IRC §41(d)(1)(B)(ii); Treas. Reg. §1.41-4(a)(3)",
			QualifyingCriteria: []string{
				"new product or process development",
				"improvement to function, performance, reliability, or quality",
				"development of new software features or architecture",
			},
			NonQualifyingCriteria: []string{
				"style, taste, cosmetic, or seasonal design changes",
				"market research and advertising",
				"routine maintenance",
			},
			EvidenceTypes: []string{"design documents", "product requirements", "sprint plans", "patent applications"},
			Indicators: []string{
				"new product", "new process", "improve", "performance",
				"reliability", "quality", "develop", "prototype", "redesign",
				"capability", "feature",
			},
		},
		{
			Element:     domain.ElementTechnologicalNature,
			Name:        "Technological in Nature",
			Description: "The activity must fundamentally rely on principles of the physical or biological sciences, engineering, or computer science.",
			Citation:    "IRC §41(d)(1)(B)(i); Treas. Reg. §1.41-4(a)(4)",
			QualifyingCriteria: []string{
				"relies on engineering principles",
				"relies on computer science",
				"relies on physical or biological sciences",
			},
			NonQualifyingCriteria: []string{
				"social sciences, arts, or humanities",
				"economics or business management",
			},
			EvidenceTypes: []string{"technical specifications", "engineering drawings", "architecture documents", "lab notebooks"},
			Indicators: []string{
				"engineering", "algorithm", "computer science", "software",
				"chemistry", "physics", "biology", "simulation", "architecture",
				"technical", "materials",
			},
		},
		{
			Element:     domain.ElementEliminationOfUncertainty,
			Name:        "Elimination of Uncertainty",
			Description: "The activity must be intended to discover information to eliminate uncertainty about capability, method, or appropriate design.",
			Citation:    "IRC §41(d)(1)(A); Treas. Reg. §1.41-4(a)(3)(ii)",
			QualifyingCriteria: []string{
				"capability uncertainty: can it be done",
				"methodology uncertainty: how to do it",
				"design uncertainty: what the appropriate design is",
			},
			NonQualifyingCriteria: []string{
				"uncertainty resolved by routine application of known methods",
				"purely economic or scheduling uncertainty",
			},
			EvidenceTypes: []string{"feasibility studies", "technical risk registers", "design alternatives analysis"},
			Indicators: []string{
				"uncertain", "unknown", "feasibility", "whether", "risk",
				"challenge", "constraint", "unclear", "investigate", "capability",
			},
		},
		{
			Element:     domain.ElementProcessOfExperimentation,
			Name:        "Process of Experimentation",
			Description: "Substantially all of the activity must constitute a process of experimentation: evaluating alternatives through modeling, simulation, or systematic trial and error.",
			Citation:    "IRC §41(d)(1)(C); Treas. Reg. §1.41-4(a)(5)",
			QualifyingCriteria: []string{
				"systematic evaluation of design alternatives",
				"modeling or simulation",
				"iterative testing with hypothesis refinement",
			},
			NonQualifyingCriteria: []string{
				"simple trial and error without systematic evaluation",
				"reverse engineering of an existing component",
			},
			EvidenceTypes: []string{"test plans", "experiment logs", "A/B test results", "simulation outputs", "iteration records"},
			Indicators: []string{
				"experiment", "test", "iterate", "evaluate", "alternative",
				"hypothesis", "simulation", "model", "trial", "prototype",
				"benchmark",
			},
		},
	}
}

func defaultExcludedActivities() []domain.ExcludedActivity {
	return []domain.ExcludedActivity{
		{
			Code:        "foreign_research",
			Description: "Research conducted outside the United States, Puerto Rico, or a US possession",
			Citation:    "IRC §41(d)(4)(F)",
			FactorKey:   "foreign_research",
			Keywords:    []string{"conducted overseas", "offshore research", "outside the united states", "foreign laboratory"},
		},
		{
			Code:        "funded_research",
			Description: "Research funded by a grant, contract, or another person or governmental entity",
			Citation:    "IRC §41(d)(4)(H)",
			FactorKey:   "funded_research",
			Keywords:    []string{"fully funded by", "customer-funded", "government grant", "reimbursed by client"},
		},
		{
			Code:        "post_production",
			Description: "Research after commercial production of the business component has begun",
			Citation:    "IRC §41(d)(4)(A)",
			FactorKey:   "post_production",
			Keywords:    []string{"after commercial production", "post-production", "production support", "released product maintenance"},
		},
		{
			Code:        "adaptation",
			Description: "Adaptation of an existing business component to a particular customer's requirement",
			Citation:    "IRC §41(d)(4)(B)",
			FactorKey:   "adaptation",
			Keywords:    []string{"customer customization", "adapt existing", "client-specific configuration", "tailoring existing"},
		},
		{
			Code:        "duplication",
			Description: "Duplication of an existing business component from physical examination or specifications",
			Citation:    "IRC §41(d)(4)(C)",
			FactorKey:   "duplication",
			Keywords:    []string{"reverse engineer", "reverse-engineering", "duplicate existing", "copy of existing"},
		},
		{
			Code:        "quality_control",
			Description: "Ordinary testing or inspection for quality control",
			Citation:    "IRC §41(d)(4)(D)(i)",
			FactorKey:   "quality_control",
			Keywords:    []string{"routine quality control", "routine inspection", "qc testing of production", "acceptance testing of production"},
		},
		{
			Code:        "internal_use_software",
			Description: "Software developed primarily for internal general-and-administrative use, unless the high-threshold-of-innovation test is met",
			Citation:    "IRC §41(d)(4)(E); Treas. Reg. §1.41-4(c)(6)",
			FactorKey:   "internal_use_software",
			Keywords:    []string{"internal use software", "back-office system", "internal administrative tool", "hr system for internal"},
		},
		{
			Code:        "social_science",
			Description: "Research in the social sciences, arts, or humanities",
			Citation:    "IRC §41(d)(4)(G)",
			FactorKey:   "social_science",
			Keywords:    []string{"consumer preference survey", "market research", "social science study", "focus group"},
		},
	}
}
