package analysis

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Record is a persisted analysis outcome.
type Record struct {
	ID               string         `json:"id"`
	WorkItemID       string         `json:"workItemId"`
	AnalysisType     Type           `json:"analysisType"`
	Score            float64        `json:"score"`
	Confidence       float64        `json:"confidence"`
	UsedAI           bool           `json:"usedAI"`
	ModelUsed        string         `json:"modelUsed,omitempty"`
	ProcessingTimeMs float64        `json:"processingTimeMs"`
	Insights         []string       `json:"insights"`
	StructuredData   map[string]any `json:"structuredData"`
	ErrorMessage     string         `json:"errorMessage,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"`
}

// NewRecord builds a Record from a Result with a fresh ID.
func NewRecord(r Result) Record {
	return Record{
		ID:               uuid.NewString(),
		WorkItemID:       r.WorkItemID,
		AnalysisType:     r.AnalysisType,
		Score:            r.Score,
		Confidence:       r.Confidence,
		UsedAI:           r.UsedAI,
		ModelUsed:        r.ModelUsed,
		ProcessingTimeMs: r.ProcessingTimeMs,
		Insights:         r.Insights,
		StructuredData:   r.StructuredData,
		ErrorMessage:     r.ErrorMessage,
		CreatedAt:        time.Now().UTC(),
	}
}

// Repo defines persistence operations for analysis records.
type Repo interface {
	Create(ctx context.Context, record Record) error
	GetByID(ctx context.Context, id string) (Record, error)
	ListByWorkItem(ctx context.Context, workItemID string, limit, offset int) ([]Record, error)
}
