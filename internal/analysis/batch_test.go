package analysis

import (
	"context"
	"testing"
	"time"

	"prioritizer-backend/internal/inference"
	"prioritizer-backend/internal/workitem"
)

func batchItems(n int) []workitem.Payload {
	items := make([]workitem.Payload, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, workitem.Payload{
			ID:          "wi-" + string(rune('a'+i)),
			Title:       "Billing revenue work",
			Description: "subscription pricing change",
		})
	}
	return items
}

func TestAnalyzeBatchCoversEveryPair(t *testing.T) {
	o := NewOrchestrator(nil, nil, OrchestratorOptions{})
	items := batchItems(3)
	types := []Type{TypeBusinessValue, TypeRiskAssessment}

	batch := o.AnalyzeBatch(context.Background(), items, types, nil, 2)
	if batch.Total != 6 {
		t.Fatalf("Total = %d, want 6", batch.Total)
	}
	if len(batch.Results) != 6 {
		t.Fatalf("len(Results) = %d, want 6", len(batch.Results))
	}
	if batch.Successful != 6 || batch.Failed != 0 {
		t.Fatalf("Successful = %d, Failed = %d", batch.Successful, batch.Failed)
	}
	if batch.FallbackCount != 6 || batch.AICount != 0 {
		t.Fatalf("FallbackCount = %d, AICount = %d", batch.FallbackCount, batch.AICount)
	}

	// Results keep (item, type) order: item-major, type-minor.
	idx := 0
	for _, item := range items {
		for _, analysisType := range types {
			r := batch.Results[idx]
			if r.WorkItemID != item.ID || r.AnalysisType != analysisType {
				t.Fatalf("slot %d = (%s, %s), want (%s, %s)", idx, r.WorkItemID, r.AnalysisType, item.ID, analysisType)
			}
			idx++
		}
	}
}

func TestAnalyzeBatchDefaultsToAllTypes(t *testing.T) {
	o := NewOrchestrator(nil, nil, OrchestratorOptions{})

	batch := o.AnalyzeBatch(context.Background(), batchItems(1), nil, nil, 0)
	if batch.Total != len(AllTypes) {
		t.Fatalf("Total = %d, want %d", batch.Total, len(AllTypes))
	}
	seen := map[Type]bool{}
	for _, r := range batch.Results {
		seen[r.AnalysisType] = true
	}
	if len(seen) != len(AllTypes) {
		t.Fatalf("covered %d types, want %d", len(seen), len(AllTypes))
	}
}

func TestAnalyzeBatchExpiredDeadlineStillScoresEverything(t *testing.T) {
	fake := healthyFake(validBusinessValueJSON)
	mgr := inference.NewManager(fake, inference.ManagerOptions{})
	o := NewOrchestrator(mgr, nil, OrchestratorOptions{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch := o.AnalyzeBatch(ctx, batchItems(2), []Type{TypeBusinessValue}, nil, 1)
	if batch.Total != 2 {
		t.Fatalf("Total = %d, want 2", batch.Total)
	}
	for i, r := range batch.Results {
		if r.UsedAI {
			t.Fatalf("result %d used AI after deadline", i)
		}
		if r.ErrorMessage != "" {
			t.Fatalf("result %d failed: %q", i, r.ErrorMessage)
		}
		if r.Score <= 0 {
			t.Fatalf("result %d Score = %v, want > 0", i, r.Score)
		}
	}
}

func TestAnalyzeBatchIsolatesPairs(t *testing.T) {
	o := NewOrchestrator(nil, nil, OrchestratorOptions{})
	items := []workitem.Payload{
		{ID: "good", Title: "Revenue work", Description: "billing pricing subscription"},
		{ID: "sparse", Title: "x"},
	}

	batch := o.AnalyzeBatch(context.Background(), items, []Type{TypeBusinessValue}, nil, 2)
	for _, r := range batch.Results {
		if r.ErrorMessage != "" {
			t.Fatalf("item %s failed: %q", r.WorkItemID, r.ErrorMessage)
		}
	}
}

func TestAnalyzeBatchWallTime(t *testing.T) {
	o := NewOrchestrator(nil, nil, OrchestratorOptions{})
	start := time.Now()
	batch := o.AnalyzeBatch(context.Background(), batchItems(2), []Type{TypeBusinessValue}, nil, 4)
	elapsed := time.Since(start)

	if batch.WallTimeMs < 0 {
		t.Fatalf("WallTimeMs = %v", batch.WallTimeMs)
	}
	if batch.WallTimeMs > float64(elapsed.Milliseconds())+1000 {
		t.Fatalf("WallTimeMs = %v implausible for %v run", batch.WallTimeMs, elapsed)
	}
}
