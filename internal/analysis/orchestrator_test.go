package analysis

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"prioritizer-backend/internal/inference"
	"prioritizer-backend/internal/shared/metrics"
	"prioritizer-backend/internal/shared/telemetry"
	"prioritizer-backend/internal/workitem"
)

func TestMain(m *testing.M) {
	telemetry.SetLogger(zap.NewNop())
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// fakeInferenceClient serves canned responses and counts calls.
type fakeInferenceClient struct {
	models        []inference.ModelInfo
	listErr       error
	generateText  string
	generateErr   error
	generateCalls atomic.Int64
}

func (f *fakeInferenceClient) ListModels(ctx context.Context) ([]inference.ModelInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.models, nil
}

func (f *fakeInferenceClient) Generate(ctx context.Context, req inference.GenerateRequest) (inference.GenerateResponse, error) {
	f.generateCalls.Add(1)
	if err := ctx.Err(); err != nil {
		return inference.GenerateResponse{}, err
	}
	if f.generateErr != nil {
		return inference.GenerateResponse{}, f.generateErr
	}
	return inference.GenerateResponse{Model: req.Model, Text: f.generateText, Done: true}, nil
}

var _ inference.Client = (*fakeInferenceClient)(nil)

func healthyFake(text string) *fakeInferenceClient {
	return &fakeInferenceClient{
		models: []inference.ModelInfo{
			{Name: "llama3:8b", Family: "llama", ParameterSize: "8B", ModifiedAt: time.Now()},
		},
		generateText: text,
	}
}

func testItem() workitem.Payload {
	return workitem.Payload{
		ID:          "wi-1",
		Title:       "Subscription billing revenue optimization",
		Description: "Rework subscription pricing tiers",
	}
}

func TestAnalyzeWithoutInferenceManager(t *testing.T) {
	o := NewOrchestrator(nil, nil, OrchestratorOptions{})

	result := o.Analyze(context.Background(), testItem(), TypeBusinessValue, nil)
	if result.UsedAI {
		t.Fatal("UsedAI = true, want false")
	}
	if result.ErrorMessage != "" {
		t.Fatalf("ErrorMessage = %q, want empty", result.ErrorMessage)
	}
	if result.Score <= 0 {
		t.Fatalf("Score = %v, want > 0", result.Score)
	}
	if len(result.StructuredData) == 0 {
		t.Fatal("StructuredData is empty")
	}
}

func TestAnalyzeUsesAIWhenHealthy(t *testing.T) {
	fake := healthyFake(validBusinessValueJSON)
	mgr := inference.NewManager(fake, inference.ManagerOptions{})
	repo := NewMemoryRepo()
	o := NewOrchestrator(mgr, repo, OrchestratorOptions{})

	result := o.Analyze(context.Background(), testItem(), TypeBusinessValue, nil)
	if !result.UsedAI {
		t.Fatalf("UsedAI = false, ErrorMessage = %q", result.ErrorMessage)
	}
	if result.ModelUsed != "llama3:8b" {
		t.Fatalf("ModelUsed = %q, want llama3:8b", result.ModelUsed)
	}
	if result.Score != 0.72 {
		t.Fatalf("Score = %v, want 0.72", result.Score)
	}
	if result.Confidence != 0.8 {
		t.Fatalf("Confidence = %v, want 0.8", result.Confidence)
	}

	records, err := repo.ListByWorkItem(context.Background(), "wi-1", 10, 0)
	if err != nil {
		t.Fatalf("ListByWorkItem: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
}

func TestAnalyzeFallsBackOnInvalidModelOutput(t *testing.T) {
	fake := healthyFake("I am not able to produce JSON today.")
	mgr := inference.NewManager(fake, inference.ManagerOptions{})
	o := NewOrchestrator(mgr, nil, OrchestratorOptions{})

	result := o.Analyze(context.Background(), testItem(), TypeBusinessValue, nil)
	if result.UsedAI {
		t.Fatal("UsedAI = true, want fallback")
	}
	if result.ErrorMessage != "" {
		t.Fatalf("ErrorMessage = %q, want empty on fallback", result.ErrorMessage)
	}
	if result.Score <= 0 {
		t.Fatalf("Score = %v, want > 0 from pattern scoring", result.Score)
	}
}

func TestAnalyzeFallsBackOnGenerateError(t *testing.T) {
	fake := healthyFake("")
	fake.generateErr = fmt.Errorf("connection refused")
	mgr := inference.NewManager(fake, inference.ManagerOptions{})
	o := NewOrchestrator(mgr, nil, OrchestratorOptions{})

	result := o.Analyze(context.Background(), testItem(), TypeBusinessValue, nil)
	if result.UsedAI {
		t.Fatal("UsedAI = true, want fallback")
	}
	if result.ErrorMessage != "" {
		t.Fatalf("ErrorMessage = %q, want empty", result.ErrorMessage)
	}
}

func TestAnalyzeCachesAIResults(t *testing.T) {
	fake := healthyFake(validBusinessValueJSON)
	mgr := inference.NewManager(fake, inference.ManagerOptions{})
	o := NewOrchestrator(mgr, nil, OrchestratorOptions{CacheTTL: time.Hour})

	before := metrics.SnapshotCounters()
	first := o.Analyze(context.Background(), testItem(), TypeBusinessValue, nil)
	second := o.Analyze(context.Background(), testItem(), TypeBusinessValue, nil)
	after := metrics.SnapshotCounters()

	if got := fake.generateCalls.Load(); got != 1 {
		t.Fatalf("generate calls = %d, want 1 (second analysis should hit the cache)", got)
	}
	if first.Score != second.Score || first.ModelUsed != second.ModelUsed {
		t.Fatal("cached result differs from original")
	}
	if hits := after.CacheHits - before.CacheHits; hits != 1 {
		t.Fatalf("cache hit counter moved by %d, want 1", hits)
	}
	if calls := after.InferenceCalls - before.InferenceCalls; calls != 1 {
		t.Fatalf("inference call counter moved by %d, want 1", calls)
	}

	o.ClearCache()
	o.Analyze(context.Background(), testItem(), TypeBusinessValue, nil)
	if got := fake.generateCalls.Load(); got != 2 {
		t.Fatalf("generate calls after ClearCache = %d, want 2", got)
	}
}

func TestAnalyzeCacheExpiry(t *testing.T) {
	fake := healthyFake(validBusinessValueJSON)
	mgr := inference.NewManager(fake, inference.ManagerOptions{})
	o := NewOrchestrator(mgr, nil, OrchestratorOptions{CacheTTL: time.Hour})

	current := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	o.cache.now = func() time.Time { return current }

	o.Analyze(context.Background(), testItem(), TypeBusinessValue, nil)
	current = current.Add(30 * time.Minute)
	o.Analyze(context.Background(), testItem(), TypeBusinessValue, nil)
	if got := fake.generateCalls.Load(); got != 1 {
		t.Fatalf("generate calls = %d, want 1 inside the TTL", got)
	}

	current = current.Add(31 * time.Minute)
	o.Analyze(context.Background(), testItem(), TypeBusinessValue, nil)
	if got := fake.generateCalls.Load(); got != 2 {
		t.Fatalf("generate calls = %d, want 2 after the TTL elapsed", got)
	}
}

func TestAnalyzeCacheKeyedOnContent(t *testing.T) {
	fake := healthyFake(validBusinessValueJSON)
	mgr := inference.NewManager(fake, inference.ManagerOptions{})
	o := NewOrchestrator(mgr, nil, OrchestratorOptions{CacheTTL: time.Hour})

	item := testItem()
	o.Analyze(context.Background(), item, TypeBusinessValue, nil)

	item.Description = "A different description entirely"
	o.Analyze(context.Background(), item, TypeBusinessValue, nil)

	if got := fake.generateCalls.Load(); got != 2 {
		t.Fatalf("generate calls = %d, want 2 (changed content must miss the cache)", got)
	}
}

func TestAnalyzeAsyncDeliversResult(t *testing.T) {
	o := NewOrchestrator(nil, nil, OrchestratorOptions{})

	select {
	case result := <-o.AnalyzeAsync(context.Background(), testItem(), TypeRiskAssessment, nil):
		if result.AnalysisType != TypeRiskAssessment {
			t.Fatalf("AnalysisType = %q", result.AnalysisType)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for async result")
	}
}

func TestHealthWithoutManager(t *testing.T) {
	o := NewOrchestrator(nil, nil, OrchestratorOptions{})
	health := o.Health(context.Background())
	if health.Status != inference.StatusUnavailable {
		t.Fatalf("Status = %q, want unavailable", health.Status)
	}
}

func TestClassifyAIFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "validation", err: fmt.Errorf("validate response: %w", ErrNoJSONObject), want: ErrorCodeValidation},
		{name: "protocol", err: &inference.ProtocolError{StatusCode: 500}, want: inference.ErrorCodeProtocol},
		{name: "connectivity", err: fmt.Errorf("dial tcp: connection refused"), want: inference.ErrorCodeConnectivity},
		{name: "timeout", err: context.DeadlineExceeded, want: inference.ErrorCodeTimeout},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyAIFailure(tt.err); got != tt.want {
				t.Fatalf("classifyAIFailure = %q, want %q", got, tt.want)
			}
		})
	}
}
