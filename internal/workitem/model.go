package workitem

import (
	"sort"
	"strings"
)

// Payload is the caller-supplied description of a work item. It is treated
// as immutable input; the analysis engine never mutates it.
type Payload struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	AcceptanceCriteria string   `json:"acceptanceCriteria"`
	Notes              string   `json:"notes"`
	Dependencies       []string `json:"dependencies,omitempty"`
}

// Context carries optional auxiliary strings supplied per analysis call,
// e.g. active objectives. It is never persisted.
type Context map[string]string

// Corpus concatenates the payload's text fields into one lowercase string
// for pattern matching and cache keying.
func (p Payload) Corpus() string {
	parts := []string{p.Title, p.Description, p.AcceptanceCriteria, p.Notes}
	if len(p.Dependencies) > 0 {
		parts = append(parts, strings.Join(p.Dependencies, " "))
	}
	return strings.ToLower(strings.TrimSpace(strings.Join(parts, "\n")))
}

// CanonicalString renders a context in deterministic key order so equal
// contexts always produce equal cache keys.
func (c Context) CanonicalString() string {
	if len(c) == 0 {
		return ""
	}
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(c[k])
	}
	return b.String()
}
