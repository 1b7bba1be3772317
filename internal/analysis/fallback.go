package analysis

import (
	"fmt"
	"math"
	"strings"

	"prioritizer-backend/internal/workitem"
)

// Deterministic pattern-based scorer. Mirrors the AI path's output contract
// exactly so the two paths are interchangeable to every caller. Pure: no
// I/O, no randomness, no wall-clock reads; identical input always yields
// identical output.

const (
	fallbackConfidenceBase = 0.3
	fallbackConfidenceMin  = 0.1
	fallbackConfidenceMax  = 0.95
	insightScoreThreshold  = 0.05
	sparseTextWordCount    = 20
)

type textStats struct {
	wordCount        int
	technicalDensity float64
}

type groupMatch struct {
	group    patternGroup
	fraction float64
	score    float64
}

// FallbackAnalyze scores a work item on one dimension without the inference
// server. It never fails for a known type; ProcessingTimeMs is left for the
// caller to fill so the output stays a pure function of its inputs.
func FallbackAnalyze(item workitem.Payload, t Type, ctx workitem.Context) Result {
	corpus := item.Corpus()
	if extra := ctx.CanonicalString(); extra != "" {
		corpus += "\n" + strings.ToLower(extra)
	}
	stats := computeStats(corpus)

	var matches []groupMatch
	score := 0.0
	confidence := fallbackConfidenceBase
	for _, group := range fallbackPatterns[t] {
		found := 0
		for _, kw := range group.keywords {
			if strings.Contains(corpus, kw) {
				found++
			}
		}
		if found == 0 {
			continue
		}
		fraction := float64(found) / float64(len(group.keywords))
		match := groupMatch{group: group, fraction: fraction, score: fraction * group.weight}
		matches = append(matches, match)
		score += match.score
		confidence += group.confidenceBoost
	}

	score, sparseInsight := applyStatAdjustments(t, score, stats)
	score = clamp(score, 0, 1)
	confidence = clamp(confidence+detailConfidenceBoost(stats), fallbackConfidenceMin, fallbackConfidenceMax)

	insights := buildInsights(t, matches, sparseInsight)

	return Result{
		WorkItemID:     item.ID,
		AnalysisType:   t,
		Score:          round2(score),
		Confidence:     round2(confidence),
		Insights:       insights,
		StructuredData: buildStructuredData(t, item, ctx, matches, score, confidence, insights),
		UsedAI:         false,
	}
}

func computeStats(corpus string) textStats {
	words := strings.Fields(corpus)
	technical := 0
	for _, w := range words {
		if hasTechnicalSuffix(w) {
			technical++
		}
	}
	density := 0.0
	if len(words) > 0 {
		density = float64(technical) / float64(len(words))
	}
	return textStats{wordCount: len(words), technicalDensity: density}
}

var technicalSuffixes = []string{"tion", "sion", "ment", "ance", "ence", "ility", "ware", "base", "sync"}

func hasTechnicalSuffix(word string) bool {
	trimmed := strings.Trim(word, ".,;:!?()[]\"'")
	if len(trimmed) < 6 {
		return false
	}
	for _, suffix := range technicalSuffixes {
		if strings.HasSuffix(trimmed, suffix) {
			return true
		}
	}
	return false
}

// applyStatAdjustments nudges the score from text statistics. Each
// adjustment is capped so no single factor dominates the keyword signal.
func applyStatAdjustments(t Type, score float64, stats textStats) (float64, string) {
	sparseInsight := ""
	switch t {
	case TypeRiskAssessment:
		if stats.wordCount < sparseTextWordCount {
			score += 0.25
			sparseInsight = "Limited detail in the work item increases delivery uncertainty"
		}
	case TypeComplexityAnalysis:
		if stats.wordCount < sparseTextWordCount {
			score += 0.15
			sparseInsight = "Sparse description leaves complexity unknowns unresolved"
		} else {
			score += math.Min(0.1, float64(stats.wordCount)/2000)
		}
		score += math.Min(0.1, stats.technicalDensity*0.5)
	}
	return score, sparseInsight
}

func detailConfidenceBoost(stats textStats) float64 {
	return math.Min(0.1, float64(stats.wordCount)/1000)
}

func buildInsights(t Type, matches []groupMatch, sparseInsight string) []string {
	var insights []string
	for _, m := range matches {
		if m.score >= insightScoreThreshold {
			insights = append(insights, m.group.insight)
		}
	}
	if sparseInsight != "" {
		insights = append(insights, sparseInsight)
	}
	if len(insights) == 0 {
		insights = append(insights, fmt.Sprintf("No strong %s signals detected; pattern-based scoring has limited signal", typeLabels[t]))
	}
	return insights
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func strengthOf(fraction float64) string {
	switch {
	case fraction >= 2.0/3.0:
		return "high"
	case fraction >= 1.0/3.0:
		return "medium"
	default:
		return "low"
	}
}

func matchFor(matches []groupMatch, category string) (groupMatch, bool) {
	for _, m := range matches {
		if m.group.category == category {
			return m, true
		}
	}
	return groupMatch{}, false
}

func levelFromScore(score float64) string {
	switch {
	case score >= 0.6:
		return "high"
	case score >= 0.3:
		return "medium"
	default:
		return "low"
	}
}

// buildStructuredData assembles the per-type required-field set from the
// matched groups so the fallback path's shape matches the AI path's.
func buildStructuredData(t Type, item workitem.Payload, ctx workitem.Context, matches []groupMatch, score, confidence float64, insights []string) map[string]any {
	scoreInt := int(math.Round(score * 100))
	confInt := int(math.Round(confidence * 100))

	switch t {
	case TypeBusinessValue:
		drivers := make([]any, 0, len(matches))
		for _, m := range matches {
			drivers = append(drivers, map[string]any{"driver": m.group.category, "strength": strengthOf(m.fraction)})
		}
		return map[string]any{
			"business_value_score":  scoreInt,
			"value_drivers":         drivers,
			"customer_impact":       impactObject(matches, "customer"),
			"revenue_potential":     levelObject(matches, "revenue"),
			"competitive_advantage": levelObject(matches, "competitive"),
			"key_insights":          insights,
			"confidence_level":      confInt,
		}

	case TypeStrategicAlignment:
		factors := make([]any, 0, len(matches))
		for _, m := range matches {
			factors = append(factors, map[string]any{"factor": m.group.category, "strength": strengthOf(m.fraction)})
		}
		return map[string]any{
			"strategic_alignment_score": scoreInt,
			"alignment_factors":         factors,
			"pi_objective_alignment":    objectiveAlignments(ctx, matches),
			"business_outcome_impact":   outcomeImpacts(matches),
			"key_insights":              insights,
			"confidence_level":          confInt,
		}

	case TypeRiskAssessment:
		factors := make([]any, 0, len(matches))
		for _, m := range matches {
			factors = append(factors, map[string]any{"factor": m.group.category, "severity": strengthOf(m.fraction)})
		}
		return map[string]any{
			"overall_risk_score":   scoreInt,
			"risk_factors":         factors,
			"technical_risks":      riskList(matches, "technical", "security"),
			"business_risks":       riskList(matches, "schedule"),
			"dependency_risks":     dependencyRisks(item, matches),
			"risk_mitigation_plan": mitigationPlan(matches),
			"confidence_level":     confInt,
		}

	case TypeComplexityAnalysis:
		factors := make([]any, 0, len(matches))
		for _, m := range matches {
			factors = append(factors, map[string]any{"factor": m.group.category, "weight": strengthOf(m.fraction)})
		}
		return map[string]any{
			"complexity_score":   scoreInt,
			"complexity_factors": factors,
			"technical_complexity": map[string]any{
				"level":     levelFromScore(score),
				"rationale": "Derived from integration, scale and novelty indicators in the work item text",
			},
			"effort_estimation": map[string]any{
				"size":      effortSize(score),
				"rationale": "Pattern-based estimate from scope and technical indicators",
			},
			"confidence_level": confInt,
		}

	case TypeFinancialImpact:
		indicators := make([]any, 0, len(matches))
		for _, m := range matches {
			indicators = append(indicators, map[string]any{"indicator": m.group.category, "signal": "positive"})
		}
		revDirection := "neutral"
		if _, ok := matchFor(matches, "revenue"); ok {
			revDirection = "increase"
		}
		costDirection := "neutral"
		if _, ok := matchFor(matches, "cost"); ok {
			costDirection = "decrease"
		}
		return map[string]any{
			"financial_impact_score": scoreInt,
			"revenue_impact": map[string]any{
				"direction": revDirection,
				"rationale": "Derived from revenue and monetization language in the work item",
			},
			"cost_impact": map[string]any{
				"direction": costDirection,
				"rationale": "Derived from cost and savings language in the work item",
			},
			"roi_indicators":   indicators,
			"confidence_level": confInt,
		}

	case TypeStakeholderImpact:
		stakeholders := make([]any, 0, len(matches))
		for _, m := range matches {
			stakeholders = append(stakeholders, map[string]any{"group": m.group.category, "impact": strengthOf(m.fraction)})
		}
		return map[string]any{
			"stakeholder_impact_score": scoreInt,
			"affected_stakeholders":    stakeholders,
			"customer_impact":          impactObject(matches, "customers"),
			"change_management": map[string]any{
				"effort": levelFromScore(score),
				"notes":  "Derived from enablement and rollout indicators in the work item text",
			},
			"confidence_level": confInt,
		}
	}
	return map[string]any{}
}

func impactObject(matches []groupMatch, category string) map[string]any {
	if m, ok := matchFor(matches, category); ok {
		return map[string]any{
			"segment":     "existing customers",
			"description": m.group.insight,
		}
	}
	return map[string]any{
		"segment":     "unknown",
		"description": "No customer-facing impact detected in the work item text",
	}
}

func levelObject(matches []groupMatch, category string) map[string]any {
	if m, ok := matchFor(matches, category); ok {
		return map[string]any{"level": strengthOf(m.fraction), "rationale": m.group.insight}
	}
	return map[string]any{"level": "low", "rationale": "No matching indicators in the work item text"}
}

func objectiveAlignments(ctx workitem.Context, matches []groupMatch) []any {
	alignment := "none"
	if _, ok := matchFor(matches, "objectives"); ok {
		alignment = "direct"
	} else if len(matches) > 0 {
		alignment = "indirect"
	}
	out := make([]any, 0)
	for _, line := range strings.Split(ctx.CanonicalString(), "\n") {
		key, value, found := strings.Cut(line, "=")
		if !found || !strings.Contains(strings.ToLower(key), "objective") {
			continue
		}
		out = append(out, map[string]any{"objective": value, "alignment": alignment})
	}
	return out
}

func outcomeImpacts(matches []groupMatch) []any {
	out := make([]any, 0)
	if m, ok := matchFor(matches, "outcomes"); ok {
		out = append(out, map[string]any{"outcome": "measured business outcomes", "impact": strengthOf(m.fraction)})
	}
	return out
}

func riskList(matches []groupMatch, categories ...string) []any {
	out := make([]any, 0)
	for _, category := range categories {
		if m, ok := matchFor(matches, category); ok {
			out = append(out, map[string]any{"risk": m.group.insight, "severity": strengthOf(m.fraction)})
		}
	}
	return out
}

func dependencyRisks(item workitem.Payload, matches []groupMatch) []any {
	out := make([]any, 0)
	if m, ok := matchFor(matches, "dependency"); ok {
		out = append(out, map[string]any{"risk": m.group.insight, "severity": strengthOf(m.fraction)})
	}
	for _, dep := range item.Dependencies {
		out = append(out, map[string]any{"risk": "Depends on " + dep, "severity": "medium"})
	}
	return out
}

func mitigationPlan(matches []groupMatch) map[string]any {
	actions := make([]any, 0)
	for _, m := range matches {
		switch m.group.category {
		case "dependency":
			actions = append(actions, "Sequence dependent work early and confirm external commitments")
		case "technical":
			actions = append(actions, "Add an incremental rollout with verified rollback steps")
		case "security":
			actions = append(actions, "Schedule a security and compliance review before release")
		case "schedule":
			actions = append(actions, "Re-confirm scope against the committed deadline")
		case "data":
			actions = append(actions, "Rehearse the production change against a restorable snapshot")
		}
	}
	summary := "No specific mitigation required based on detected risk signals"
	if len(actions) > 0 {
		summary = "Mitigations derived from detected risk categories"
	}
	return map[string]any{"summary": summary, "actions": actions}
}

func effortSize(score float64) string {
	switch {
	case score < 0.2:
		return "xs"
	case score < 0.4:
		return "s"
	case score < 0.6:
		return "m"
	case score < 0.8:
		return "l"
	default:
		return "xl"
	}
}
