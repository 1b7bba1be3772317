package inference

import (
	"strconv"
	"strings"
	"time"
)

// Status is the reachability/trust state of the inference server.
type Status string

const (
	StatusUnknown     Status = "unknown"
	StatusHealthy     Status = "healthy"
	StatusDegraded    Status = "degraded"
	StatusUnavailable Status = "unavailable"
)

// ServerHealth is a snapshot of server state as last observed by a Manager.
type ServerHealth struct {
	Status          Status      `json:"status"`
	LastCheckedAt   time.Time   `json:"lastCheckedAt"`
	AvailableModels []ModelInfo `json:"availableModels"`
	PreferredModel  string      `json:"preferredModel,omitempty"`
}

// familyPreferences orders model families by suitability for structured
// JSON analysis output. Unlisted families score zero.
var familyPreferences = map[string]float64{
	"llama":   50,
	"mistral": 45,
	"qwen2":   40,
	"qwen":    40,
	"phi3":    35,
	"phi":     35,
	"gemma2":  30,
	"gemma":   30,
}

// SelectPreferredModel scores candidates by family preference, parameter
// size and recency, and returns the best name. Ties keep first-seen order.
// Returns "" for an empty candidate list.
func SelectPreferredModel(candidates []ModelInfo) string {
	if len(candidates) == 0 {
		return ""
	}

	var newest time.Time
	for _, m := range candidates {
		if m.ModifiedAt.After(newest) {
			newest = m.ModifiedAt
		}
	}

	best := 0
	bestScore := -1.0
	for i, m := range candidates {
		score := scoreModel(m, newest)
		if score > bestScore {
			best = i
			bestScore = score
		}
	}
	return candidates[best].Name
}

func scoreModel(m ModelInfo, newest time.Time) float64 {
	score := familyPreferences[normalizeFamily(m.Family)]
	if score == 0 {
		// Family often only shows up in the model name.
		for family, weight := range familyPreferences {
			if strings.Contains(strings.ToLower(m.Name), family) && weight > score {
				score = weight
			}
		}
	}

	score += sizeScore(parameterBillions(m.ParameterSize))

	if !newest.IsZero() && m.ModifiedAt.Equal(newest) {
		score += 5
	}
	return score
}

// sizeScore prefers the 4B-14B range: big enough to follow a JSON schema,
// small enough to answer inside the request timeout on local hardware.
func sizeScore(billions float64) float64 {
	switch {
	case billions <= 0:
		return 0
	case billions < 4:
		return 10
	case billions <= 14:
		return 20
	case billions <= 35:
		return 12
	default:
		return 6
	}
}

func normalizeFamily(family string) string {
	return strings.ToLower(strings.TrimSpace(family))
}

// parameterBillions parses sizes like "7B", "8x7B", "13.4B" or "700M".
// Returns 0 when the size is absent or unparseable.
func parameterBillions(raw string) float64 {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return 0
	}
	multiplier := 1.0
	if idx := strings.Index(s, "X"); idx > 0 {
		if n, err := strconv.ParseFloat(s[:idx], 64); err == nil {
			multiplier = n
			s = s[idx+1:]
		}
	}
	unit := 1.0
	switch {
	case strings.HasSuffix(s, "B"):
		s = strings.TrimSuffix(s, "B")
	case strings.HasSuffix(s, "M"):
		s = strings.TrimSuffix(s, "M")
		unit = 0.001
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return n * unit * multiplier
}
