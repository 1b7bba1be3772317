package workitem

import (
	"strings"
	"testing"
)

func TestCorpusLowercasesAndJoins(t *testing.T) {
	p := Payload{
		ID:                 "wi-1",
		Title:              "Billing Revamp",
		Description:        "Rework PRICING tiers",
		AcceptanceCriteria: "Conversion holds",
		Notes:              "Design ready",
		Dependencies:       []string{"Payments-API"},
	}

	corpus := p.Corpus()
	if corpus != strings.ToLower(corpus) {
		t.Fatalf("corpus not lowercased: %q", corpus)
	}
	for _, want := range []string{"billing revamp", "pricing", "conversion holds", "design ready", "payments-api"} {
		if !strings.Contains(corpus, want) {
			t.Fatalf("corpus missing %q: %q", want, corpus)
		}
	}
}

func TestCorpusEmptyPayload(t *testing.T) {
	if got := (Payload{}).Corpus(); got != "" {
		t.Fatalf("Corpus() = %q, want empty", got)
	}
}

func TestCanonicalStringStableOrder(t *testing.T) {
	a := Context{"zeta": "1", "alpha": "2", "mid": "3"}
	b := Context{"mid": "3", "alpha": "2", "zeta": "1"}

	if a.CanonicalString() != b.CanonicalString() {
		t.Fatal("equal contexts produced different canonical strings")
	}
	if got := a.CanonicalString(); got != "alpha=2\nmid=3\nzeta=1" {
		t.Fatalf("CanonicalString() = %q", got)
	}
}

func TestCanonicalStringEmpty(t *testing.T) {
	if got := (Context(nil)).CanonicalString(); got != "" {
		t.Fatalf("CanonicalString() = %q, want empty", got)
	}
}
