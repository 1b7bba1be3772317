package analysis

// Structured-data contract. For every analysis type there is a fixed set of
// required top-level fields; the AI and fallback paths both populate exactly
// this set, so downstream consumers never branch on which path produced a
// result. Extra fields are tolerated for forward compatibility.

type fieldKind int

const (
	kindNumber fieldKind = iota
	kindArray
	kindObject
	kindStringArray
)

type fieldSpec struct {
	name string
	kind fieldKind
}

var requiredFields = map[Type][]fieldSpec{
	TypeBusinessValue: {
		{"business_value_score", kindNumber},
		{"value_drivers", kindArray},
		{"customer_impact", kindObject},
		{"revenue_potential", kindObject},
		{"competitive_advantage", kindObject},
		{"key_insights", kindStringArray},
		{"confidence_level", kindNumber},
	},
	TypeStrategicAlignment: {
		{"strategic_alignment_score", kindNumber},
		{"alignment_factors", kindArray},
		{"pi_objective_alignment", kindArray},
		{"business_outcome_impact", kindArray},
		{"key_insights", kindStringArray},
		{"confidence_level", kindNumber},
	},
	TypeRiskAssessment: {
		{"overall_risk_score", kindNumber},
		{"risk_factors", kindArray},
		{"technical_risks", kindArray},
		{"business_risks", kindArray},
		{"dependency_risks", kindArray},
		{"risk_mitigation_plan", kindObject},
		{"confidence_level", kindNumber},
	},
	TypeComplexityAnalysis: {
		{"complexity_score", kindNumber},
		{"complexity_factors", kindArray},
		{"technical_complexity", kindObject},
		{"effort_estimation", kindObject},
		{"confidence_level", kindNumber},
	},
	TypeFinancialImpact: {
		{"financial_impact_score", kindNumber},
		{"revenue_impact", kindObject},
		{"cost_impact", kindObject},
		{"roi_indicators", kindArray},
		{"confidence_level", kindNumber},
	},
	TypeStakeholderImpact: {
		{"stakeholder_impact_score", kindNumber},
		{"affected_stakeholders", kindArray},
		{"customer_impact", kindObject},
		{"change_management", kindObject},
		{"confidence_level", kindNumber},
	},
}

// scoreFields maps each type to its primary 0-100 score field.
var scoreFields = map[Type]string{
	TypeBusinessValue:      "business_value_score",
	TypeStrategicAlignment: "strategic_alignment_score",
	TypeRiskAssessment:     "overall_risk_score",
	TypeComplexityAnalysis: "complexity_score",
	TypeFinancialImpact:    "financial_impact_score",
	TypeStakeholderImpact:  "stakeholder_impact_score",
}

// RequiredFieldNames returns the required top-level field names for a type.
func RequiredFieldNames(t Type) []string {
	specs := requiredFields[t]
	out := make([]string, 0, len(specs))
	for _, s := range specs {
		out = append(out, s.name)
	}
	return out
}

// ScoreField returns the name of the primary score field for a type.
func ScoreField(t Type) string {
	return scoreFields[t]
}
