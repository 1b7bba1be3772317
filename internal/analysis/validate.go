package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSONObject is returned when raw model output contains no JSON object.
var ErrNoJSONObject = errors.New("no JSON object found in response")

// ParseStructured extracts the first well-formed JSON object from raw model
// output and validates it against the required-field set for the given type.
// Models wrap answers in prose or code fences often enough that extraction
// tolerates both. Any parse failure, missing field, or wrong-typed field is
// an error; nothing is partially accepted.
func ParseStructured(raw string, t Type) (map[string]any, error) {
	specs, ok := requiredFields[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, t)
	}

	objText, err := extractJSONObject(raw)
	if err != nil {
		return nil, err
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(objText), &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	for _, spec := range specs {
		value, present := parsed[spec.name]
		if !present {
			return nil, fmt.Errorf("missing required field %q", spec.name)
		}
		if err := checkKind(value, spec.kind); err != nil {
			return nil, fmt.Errorf("field %q: %w", spec.name, err)
		}
	}
	return parsed, nil
}

// extractJSONObject returns the first balanced {...} block in the text,
// ignoring braces inside JSON strings.
func extractJSONObject(raw string) (string, error) {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return "", ErrNoJSONObject
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		ch := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("%w: unbalanced braces", ErrNoJSONObject)
}

func checkKind(value any, kind fieldKind) error {
	switch kind {
	case kindNumber:
		if _, ok := value.(float64); !ok {
			return fmt.Errorf("expected number, got %T", value)
		}
	case kindArray:
		if _, ok := value.([]any); !ok {
			return fmt.Errorf("expected array, got %T", value)
		}
	case kindObject:
		if _, ok := value.(map[string]any); !ok {
			return fmt.Errorf("expected object, got %T", value)
		}
	case kindStringArray:
		list, ok := value.([]any)
		if !ok {
			return fmt.Errorf("expected array of strings, got %T", value)
		}
		for i, item := range list {
			if _, ok := item.(string); !ok {
				return fmt.Errorf("expected string at index %d, got %T", i, item)
			}
		}
	}
	return nil
}

// extractScore reads the primary score and confidence_level from validated
// structured data, normalized from the 0-100 integers the prompt requests
// into [0,1].
func extractScore(data map[string]any, t Type) (score, confidence float64) {
	rawScore, _ := data[ScoreField(t)].(float64)
	rawConfidence, _ := data["confidence_level"].(float64)
	return clamp(rawScore/100, 0, 1), clamp(rawConfidence/100, 0, 1)
}

// extractInsights reads key_insights when present; types without that field
// fall back to an empty list and the orchestrator derives insights from the
// score instead.
func extractInsights(data map[string]any) []string {
	raw, ok := data["key_insights"].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
