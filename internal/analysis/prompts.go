package analysis

import (
	_ "embed"
	"strings"

	"prioritizer-backend/internal/inference"
	"prioritizer-backend/internal/workitem"
)

// Prompt catalog. Pure data: templates are embedded text files with
// placeholder substitution, generation parameters are fixed per type.

var (
	//go:embed prompts/business_value.txt
	promptBusinessValue string
	//go:embed prompts/strategic_alignment.txt
	promptStrategicAlignment string
	//go:embed prompts/risk_assessment.txt
	promptRiskAssessment string
	//go:embed prompts/complexity_analysis.txt
	promptComplexityAnalysis string
	//go:embed prompts/financial_impact.txt
	promptFinancialImpact string
	//go:embed prompts/stakeholder_impact.txt
	promptStakeholderImpact string
)

const systemPromptAnalysis = "You are a work item analysis engine for agile prioritization. Respond with JSON only. No markdown. Never omit keys. Output must match the schema exactly."

var promptTemplates = map[Type]string{
	TypeBusinessValue:      promptBusinessValue,
	TypeStrategicAlignment: promptStrategicAlignment,
	TypeRiskAssessment:     promptRiskAssessment,
	TypeComplexityAnalysis: promptComplexityAnalysis,
	TypeFinancialImpact:    promptFinancialImpact,
	TypeStakeholderImpact:  promptStakeholderImpact,
}

var generationOptions = map[Type]inference.GenerateOptions{
	TypeBusinessValue:      {Temperature: 0.3, MaxTokens: 1000},
	TypeStrategicAlignment: {Temperature: 0.3, MaxTokens: 1000},
	TypeRiskAssessment:     {Temperature: 0.2, MaxTokens: 1200},
	TypeComplexityAnalysis: {Temperature: 0.2, MaxTokens: 900},
	TypeFinancialImpact:    {Temperature: 0.2, MaxTokens: 900},
	TypeStakeholderImpact:  {Temperature: 0.3, MaxTokens: 900},
}

// SystemPrompt returns the system instruction for a type.
func SystemPrompt(t Type) string {
	_ = t // one shared instruction today; per-type variants slot in here
	return systemPromptAnalysis
}

// UserPrompt renders the user prompt for a type from the work item and
// optional context.
func UserPrompt(t Type, item workitem.Payload, ctx workitem.Context) string {
	template, ok := promptTemplates[t]
	if !ok {
		template = promptBusinessValue
	}
	replacer := strings.NewReplacer(
		"{{TITLE}}", orNA(item.Title),
		"{{DESCRIPTION}}", orNA(item.Description),
		"{{ACCEPTANCE_CRITERIA}}", orNA(item.AcceptanceCriteria),
		"{{NOTES}}", orNA(item.Notes),
		"{{DEPENDENCIES}}", orNA(strings.Join(item.Dependencies, ", ")),
		"{{CONTEXT}}", renderContext(ctx),
	)
	return replacer.Replace(template)
}

// GenerationOptions returns the generation parameters for a type.
func GenerationOptions(t Type) inference.GenerateOptions {
	if opts, ok := generationOptions[t]; ok {
		return opts
	}
	return inference.GenerateOptions{Temperature: 0.3, MaxTokens: 1000}
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func renderContext(ctx workitem.Context) string {
	if len(ctx) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\nAdditional Context:\n")
	b.WriteString(ctx.CanonicalString())
	return b.String()
}
