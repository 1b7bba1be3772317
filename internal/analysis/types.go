package analysis

import (
	"errors"
	"strings"
)

// Type is one of the six analysis dimensions a work item is scored on.
type Type string

const (
	TypeBusinessValue      Type = "business_value"
	TypeStrategicAlignment Type = "strategic_alignment"
	TypeRiskAssessment     Type = "risk_assessment"
	TypeComplexityAnalysis Type = "complexity_analysis"
	TypeFinancialImpact    Type = "financial_impact"
	TypeStakeholderImpact  Type = "stakeholder_impact"
)

// AllTypes lists every analysis dimension in stable order.
var AllTypes = []Type{
	TypeBusinessValue,
	TypeStrategicAlignment,
	TypeRiskAssessment,
	TypeComplexityAnalysis,
	TypeFinancialImpact,
	TypeStakeholderImpact,
}

// ErrInvalidType reports an unrecognized analysis type string.
var ErrInvalidType = errors.New("analysis type is invalid")

// ParseType normalizes and validates a type string.
func ParseType(raw string) (Type, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return "", errors.New("analysis type is required")
	}
	for _, t := range AllTypes {
		if normalized == string(t) {
			return t, nil
		}
	}
	return "", ErrInvalidType
}

// Result is the outcome of analyzing one work item on one dimension. Both
// the AI and the fallback path produce the same shape; callers never need
// to know which path ran.
//
// Invariant: ErrorMessage is non-empty only when even the fallback failed,
// in which case Score and Confidence are zero and UsedAI is false. In every
// other case Score and Confidence are populated in [0,1].
type Result struct {
	WorkItemID       string         `json:"workItemId"`
	AnalysisType     Type           `json:"analysisType"`
	Score            float64        `json:"score"`
	Confidence       float64        `json:"confidence"`
	Insights         []string       `json:"insights"`
	StructuredData   map[string]any `json:"structuredData"`
	UsedAI           bool           `json:"usedAI"`
	ModelUsed        string         `json:"modelUsed,omitempty"`
	ProcessingTimeMs float64        `json:"processingTimeMs"`
	ErrorMessage     string         `json:"errorMessage,omitempty"`
}

// BatchResult summarizes an AnalyzeBatch run.
type BatchResult struct {
	Results       []Result `json:"results"`
	Total         int      `json:"total"`
	Successful    int      `json:"successful"`
	Failed        int      `json:"failed"`
	AICount       int      `json:"aiCount"`
	FallbackCount int      `json:"fallbackCount"`
	WallTimeMs    float64  `json:"wallTimeMs"`
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
