package analysis

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"prioritizer-backend/internal/workitem"
)

// AnalyzeBatch scores every (work item, type) pair with at most
// maxConcurrency analyses in flight. A non-positive maxConcurrency uses the
// orchestrator default. One pair's failure never aborts or blocks the rest.
// When the context's deadline passes, still-pending pairs are fallback-scored
// immediately instead of being awaited.
func (o *Orchestrator) AnalyzeBatch(ctx context.Context, items []workitem.Payload, types []Type, actx workitem.Context, maxConcurrency int) BatchResult {
	start := time.Now()
	if len(types) == 0 {
		types = AllTypes
	}
	workers := int64(maxConcurrency)
	if workers <= 0 {
		workers = o.workers
	}

	total := len(items) * len(types)
	results := make([]Result, total)
	sem := semaphore.NewWeighted(workers)
	var wg sync.WaitGroup

	idx := 0
	for _, item := range items {
		for _, t := range types {
			wg.Add(1)
			go func(slot int, item workitem.Payload, t Type) {
				defer wg.Done()
				if err := sem.Acquire(ctx, 1); err != nil {
					// Deadline passed while queued: score without the AI path.
					results[slot] = o.fallbackOnly(item, t, actx)
					return
				}
				defer sem.Release(1)
				results[slot] = o.Analyze(ctx, item, t, actx)
			}(idx, item, t)
			idx++
		}
	}
	wg.Wait()

	batch := BatchResult{
		Results:    results,
		Total:      total,
		WallTimeMs: durationMs(start),
	}
	for _, r := range results {
		if r.ErrorMessage == "" {
			batch.Successful++
		} else {
			batch.Failed++
		}
		if r.UsedAI {
			batch.AICount++
		} else {
			batch.FallbackCount++
		}
	}
	return batch
}
