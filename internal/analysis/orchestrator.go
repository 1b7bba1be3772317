package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"prioritizer-backend/internal/inference"
	"prioritizer-backend/internal/shared/metrics"
	"prioritizer-backend/internal/shared/telemetry"
	"prioritizer-backend/internal/workitem"
)

// Orchestrator is the analysis entry point. It tries the AI path through
// the inference manager, prompt catalog and response validator; any failure
// at any step falls through to the deterministic pattern scorer. Callers
// always get a usable Result and never an error.
type Orchestrator struct {
	inference *inference.Manager
	repo      Repo
	cache     *resultCache
	workers   int64
}

// OrchestratorOptions configures an Orchestrator.
type OrchestratorOptions struct {
	// CacheTTL bounds reuse of completed AI results. Zero disables caching.
	CacheTTL time.Duration
	// MaxBatchWorkers bounds concurrent analyses during batch runs.
	MaxBatchWorkers int
}

// NewOrchestrator constructs an Orchestrator. The inference manager may be
// nil, in which case every analysis uses the fallback path. The repo may be
// nil to disable persistence.
func NewOrchestrator(mgr *inference.Manager, repo Repo, opts OrchestratorOptions) *Orchestrator {
	workers := opts.MaxBatchWorkers
	if workers <= 0 {
		workers = 5
	}
	return &Orchestrator{
		inference: mgr,
		repo:      repo,
		cache:     newResultCache(opts.CacheTTL),
		workers:   int64(workers),
	}
}

// Analyze scores one work item on one dimension. The sequence is strict:
// cache, then AI attempt, then fallback. AI failures are not surfaced as
// errors; they are observable only through UsedAI=false and metrics.
func (o *Orchestrator) Analyze(ctx context.Context, item workitem.Payload, t Type, actx workitem.Context) Result {
	start := time.Now()
	metrics.IncAnalysis()

	key := resultKey(item, t, actx)
	if cached, ok := o.cache.get(key); ok {
		metrics.IncCacheHit()
		return cached
	}

	if result, err := o.tryAI(ctx, item, t, actx); err == nil {
		result.ProcessingTimeMs = durationMs(start)
		o.cache.put(key, result)
		metrics.IncAnalysisAIPath()
		metrics.ObserveAnalysisDurationMs(result.ProcessingTimeMs)
		o.record(ctx, result)
		return result
	} else if o.inference != nil {
		telemetry.Info("analysis.fallback", map[string]any{
			"work_item_id":  item.ID,
			"analysis_type": string(t),
			"error_code":    classifyAIFailure(err),
			"error":         err.Error(),
		})
	}

	result := o.safeFallback(item, t, actx)
	result.ProcessingTimeMs = durationMs(start)
	if result.ErrorMessage == "" {
		metrics.IncAnalysisFallback()
	} else {
		telemetry.Error("analysis.internal", map[string]any{
			"work_item_id":  item.ID,
			"analysis_type": string(t),
			"error_code":    ErrorCodeInternal,
			"error":         result.ErrorMessage,
		})
		metrics.IncAnalysisFailed()
	}
	metrics.ObserveAnalysisDurationMs(result.ProcessingTimeMs)
	o.record(ctx, result)
	return result
}

// AnalyzeAsync runs Analyze in a goroutine and delivers the result on the
// returned buffered channel.
func (o *Orchestrator) AnalyzeAsync(ctx context.Context, item workitem.Payload, t Type, actx workitem.Context) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		out <- o.Analyze(ctx, item, t, actx)
		close(out)
	}()
	return out
}

// ClearCache drops all cached analysis results.
func (o *Orchestrator) ClearCache() {
	o.cache.clear()
}

// Health reports the inference server health as last observed.
func (o *Orchestrator) Health(ctx context.Context) inference.ServerHealth {
	if o.inference == nil {
		return inference.ServerHealth{Status: inference.StatusUnavailable}
	}
	return o.inference.CheckHealth(ctx, false)
}

func (o *Orchestrator) tryAI(ctx context.Context, item workitem.Payload, t Type, actx workitem.Context) (Result, error) {
	if o.inference == nil {
		return Result{}, fmt.Errorf("no inference manager configured")
	}
	if !o.inference.IsAvailable(ctx) {
		return Result{}, fmt.Errorf("inference server not available")
	}

	resp, err := o.inference.Generate(ctx, inference.GenerateRequest{
		Prompt:  UserPrompt(t, item, actx),
		System:  SystemPrompt(t),
		Options: GenerationOptions(t),
	})
	if err != nil {
		return Result{}, err
	}

	data, err := ParseStructured(resp.Text, t)
	if err != nil {
		return Result{}, fmt.Errorf("validate response: %w", err)
	}

	score, confidence := extractScore(data, t)
	insights := extractInsights(data)
	if len(insights) == 0 {
		insights = []string{fmt.Sprintf("Model scored %s at %d/100", typeLabels[t], int(score*100))}
	}

	return Result{
		WorkItemID:     item.ID,
		AnalysisType:   t,
		Score:          score,
		Confidence:     confidence,
		Insights:       insights,
		StructuredData: data,
		UsedAI:         true,
		ModelUsed:      resp.Model,
	}, nil
}

// fallbackOnly skips the cache and AI attempt entirely. Used when a batch
// deadline has already passed and a result is still owed.
func (o *Orchestrator) fallbackOnly(item workitem.Payload, t Type, actx workitem.Context) Result {
	start := time.Now()
	metrics.IncAnalysis()
	result := o.safeFallback(item, t, actx)
	result.ProcessingTimeMs = durationMs(start)
	if result.ErrorMessage == "" {
		metrics.IncAnalysisFallback()
	} else {
		metrics.IncAnalysisFailed()
	}
	return result
}

// safeFallback guards the deterministic path with a recover. The fallback
// cannot fail under valid input, so the error branch exists only to honor
// the contract that the caller never sees a panic.
func (o *Orchestrator) safeFallback(item workitem.Payload, t Type, actx workitem.Context) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Result{
				WorkItemID:   item.ID,
				AnalysisType: t,
				Insights:     []string{},
				ErrorMessage: fmt.Sprintf("internal: fallback analysis panicked: %v", r),
			}
		}
	}()
	return FallbackAnalyze(item, t, actx)
}

func (o *Orchestrator) record(ctx context.Context, result Result) {
	if o.repo == nil {
		return
	}
	if err := o.repo.Create(ctx, NewRecord(result)); err != nil {
		telemetry.Error("analysis.persist", map[string]any{
			"work_item_id":  result.WorkItemID,
			"analysis_type": string(result.AnalysisType),
			"error":         err.Error(),
		})
	}
}

func classifyAIFailure(err error) string {
	if err == nil {
		return ""
	}
	if strings.HasPrefix(err.Error(), "validate response") {
		return ErrorCodeValidation
	}
	return inference.ClassifyError(err)
}

func durationMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
