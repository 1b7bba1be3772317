package analysis

// Fallback pattern tables. Weights and confidence boosts are calibration
// data, not logic: adjusting a number here changes scoring behavior without
// touching the engine. Keyword lists are deliberately short so the matched
// fraction of a group carries signal.

type patternGroup struct {
	category        string
	keywords        []string
	weight          float64
	confidenceBoost float64
	insight         string
}

var fallbackPatterns = map[Type][]patternGroup{
	TypeBusinessValue: {
		{
			category:        "revenue",
			keywords:        []string{"revenue", "billing", "subscription", "pricing"},
			weight:          0.6,
			confidenceBoost: 0.15,
			insight:         "Revenue-related language indicates direct monetization impact",
		},
		{
			category:        "customer",
			keywords:        []string{"customer", "user experience", "retention", "satisfaction", "churn"},
			weight:          0.35,
			confidenceBoost: 0.12,
			insight:         "Customer-facing scope suggests measurable user value",
		},
		{
			category:        "competitive",
			keywords:        []string{"competitive", "differentiator", "market share", "parity"},
			weight:          0.3,
			confidenceBoost: 0.1,
			insight:         "Competitive positioning language detected",
		},
		{
			category:        "efficiency",
			keywords:        []string{"optimization", "efficiency", "streamline", "automation"},
			weight:          0.35,
			confidenceBoost: 0.1,
			insight:         "Efficiency gains contribute indirect business value",
		},
	},
	TypeStrategicAlignment: {
		{
			category:        "objectives",
			keywords:        []string{"okr", "objective", "key result", "goal"},
			weight:          0.4,
			confidenceBoost: 0.15,
			insight:         "Explicit objective references indicate strategic intent",
		},
		{
			category:        "initiative",
			keywords:        []string{"initiative", "roadmap", "strategy", "strategic theme"},
			weight:          0.35,
			confidenceBoost: 0.12,
			insight:         "Tied to a named initiative or roadmap theme",
		},
		{
			category:        "planning",
			keywords:        []string{"program increment", "pi objective", "milestone", "quarter"},
			weight:          0.3,
			confidenceBoost: 0.1,
			insight:         "Planning-cadence language suggests committed alignment",
		},
		{
			category:        "outcomes",
			keywords:        []string{"business outcome", "north star", "kpi", "metric"},
			weight:          0.3,
			confidenceBoost: 0.1,
			insight:         "Outcome measurement language detected",
		},
	},
	TypeRiskAssessment: {
		{
			category:        "technical",
			keywords:        []string{"migration", "legacy", "refactor", "breaking change"},
			weight:          0.35,
			confidenceBoost: 0.12,
			insight:         "Technical risk indicators present in scope",
		},
		{
			category:        "dependency",
			keywords:        []string{"dependency", "blocked", "third-party", "vendor", "integration"},
			weight:          0.35,
			confidenceBoost: 0.12,
			insight:         "External or cross-team dependencies raise delivery risk",
		},
		{
			category:        "security",
			keywords:        []string{"security", "compliance", "pii", "audit", "encryption"},
			weight:          0.3,
			confidenceBoost: 0.12,
			insight:         "Security or compliance exposure identified",
		},
		{
			category:        "schedule",
			keywords:        []string{"deadline", "urgent", "critical path", "slip"},
			weight:          0.25,
			confidenceBoost: 0.1,
			insight:         "Schedule pressure increases execution risk",
		},
		{
			category:        "data",
			keywords:        []string{"data loss", "rollback", "irreversible", "production"},
			weight:          0.3,
			confidenceBoost: 0.1,
			insight:         "Production data handling carries operational risk",
		},
	},
	TypeComplexityAnalysis: {
		{
			category:        "integration",
			keywords:        []string{"integration", "api", "interface", "cross-team"},
			weight:          0.35,
			confidenceBoost: 0.12,
			insight:         "Integration surface adds coordination complexity",
		},
		{
			category:        "scale",
			keywords:        []string{"distributed", "concurrency", "performance", "scalability"},
			weight:          0.35,
			confidenceBoost: 0.12,
			insight:         "Scale and performance concerns increase technical complexity",
		},
		{
			category:        "novelty",
			keywords:        []string{"prototype", "research", "spike", "experimental"},
			weight:          0.3,
			confidenceBoost: 0.1,
			insight:         "Novel or exploratory work carries estimation uncertainty",
		},
		{
			category:        "scope",
			keywords:        []string{"refactor", "migration", "multiple systems", "end-to-end"},
			weight:          0.3,
			confidenceBoost: 0.1,
			insight:         "Broad scope spans multiple systems",
		},
	},
	TypeFinancialImpact: {
		{
			category:        "revenue",
			keywords:        []string{"revenue", "sales", "monetization", "upsell"},
			weight:          0.4,
			confidenceBoost: 0.15,
			insight:         "Direct revenue effects expected",
		},
		{
			category:        "cost",
			keywords:        []string{"cost", "saving", "license", "infrastructure"},
			weight:          0.35,
			confidenceBoost: 0.12,
			insight:         "Cost structure effects identified",
		},
		{
			category:        "returns",
			keywords:        []string{"roi", "payback", "margin", "profit"},
			weight:          0.3,
			confidenceBoost: 0.12,
			insight:         "Return-on-investment language detected",
		},
		{
			category:        "pricing",
			keywords:        []string{"pricing", "billing", "subscription", "invoice"},
			weight:          0.3,
			confidenceBoost: 0.1,
			insight:         "Pricing or billing mechanics affected",
		},
	},
	TypeStakeholderImpact: {
		{
			category:        "customers",
			keywords:        []string{"customer", "end user", "client"},
			weight:          0.35,
			confidenceBoost: 0.12,
			insight:         "Customer-facing stakeholders directly affected",
		},
		{
			category:        "internal",
			keywords:        []string{"support", "operations", "sales team", "internal"},
			weight:          0.3,
			confidenceBoost: 0.1,
			insight:         "Internal teams need coordination",
		},
		{
			category:        "enablement",
			keywords:        []string{"training", "documentation", "onboarding", "change management"},
			weight:          0.3,
			confidenceBoost: 0.1,
			insight:         "Enablement work required for adoption",
		},
		{
			category:        "rollout",
			keywords:        []string{"announcement", "rollout", "communication", "migration guide"},
			weight:          0.25,
			confidenceBoost: 0.1,
			insight:         "Rollout communication affects multiple groups",
		},
	},
}

// typeLabels render a Type for human-readable insights.
var typeLabels = map[Type]string{
	TypeBusinessValue:      "business value",
	TypeStrategicAlignment: "strategic alignment",
	TypeRiskAssessment:     "risk",
	TypeComplexityAnalysis: "complexity",
	TypeFinancialImpact:    "financial impact",
	TypeStakeholderImpact:  "stakeholder impact",
}
