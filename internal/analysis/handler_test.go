package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(t *testing.T) (*gin.Engine, *MemoryRepo) {
	t.Helper()
	repo := NewMemoryRepo()
	orchestrator := NewOrchestrator(nil, repo, OrchestratorOptions{})
	handler := NewHandler(orchestrator, repo)

	router := gin.New()
	handler.RegisterRoutes(router.Group("/api/v1"))
	return router, repo
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandlerAnalyze(t *testing.T) {
	router, repo := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/analyses", map[string]any{
		"workItem": map[string]any{
			"id":          "wi-1",
			"title":       "Subscription billing revenue optimization",
			"description": "Rework pricing tiers",
		},
		"analysisType": "business_value",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var result Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if result.WorkItemID != "wi-1" || result.AnalysisType != TypeBusinessValue {
		t.Fatalf("result = %+v", result)
	}
	if result.UsedAI {
		t.Fatal("UsedAI = true with no inference manager")
	}

	records, err := repo.ListByWorkItem(context.Background(), "wi-1", 10, 0)
	if err != nil {
		t.Fatalf("ListByWorkItem: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("persisted %d records, want 1", len(records))
	}
}

func TestHandlerAnalyzeValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{name: "missing work item", body: map[string]any{"analysisType": "business_value"}},
		{name: "missing title", body: map[string]any{
			"workItem":     map[string]any{"id": "wi-1"},
			"analysisType": "business_value",
		}},
		{name: "bad type", body: map[string]any{
			"workItem":     map[string]any{"id": "wi-1", "title": "t"},
			"analysisType": "velocity",
		}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/api/v1/analyses", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestHandlerAnalyzeBatch(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/analyses/batch", map[string]any{
		"workItems": []map[string]any{
			{"id": "wi-1", "title": "Billing work", "description": "revenue pricing"},
			{"id": "wi-2", "title": "Migration", "description": "legacy refactor"},
		},
		"analysisTypes": []string{"business_value", "risk_assessment"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var batch BatchResult
	if err := json.Unmarshal(rec.Body.Bytes(), &batch); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if batch.Total != 4 || len(batch.Results) != 4 {
		t.Fatalf("Total = %d, len(Results) = %d", batch.Total, len(batch.Results))
	}
	if batch.Failed != 0 {
		t.Fatalf("Failed = %d, want 0", batch.Failed)
	}
}

func TestHandlerAnalyzeBatchEmpty(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/v1/analyses/batch", map[string]any{
		"workItems": []map[string]any{},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandlerGetAnalysis(t *testing.T) {
	router, repo := newTestRouter(t)

	record := NewRecord(Result{WorkItemID: "wi-1", AnalysisType: TypeBusinessValue, Score: 0.5, Confidence: 0.4, Insights: []string{"x"}})
	if err := repo.Create(context.Background(), record); err != nil {
		t.Fatalf("Create: %v", err)
	}

	rec := doJSON(t, router, http.MethodGet, "/api/v1/analyses/"+record.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	missing := doJSON(t, router, http.MethodGet, "/api/v1/analyses/nope", nil)
	if missing.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", missing.Code)
	}
}

func TestHandlerListAnalyses(t *testing.T) {
	router, repo := newTestRouter(t)
	record := NewRecord(Result{WorkItemID: "wi-7", AnalysisType: TypeRiskAssessment, Score: 0.3, Confidence: 0.3, Insights: []string{"x"}})
	if err := repo.Create(context.Background(), record); err != nil {
		t.Fatalf("Create: %v", err)
	}

	rec := doJSON(t, router, http.MethodGet, "/api/v1/analyses?workItemId=wi-7", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Analyses []Record `json:"analyses"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(body.Analyses) != 1 {
		t.Fatalf("len = %d, want 1", len(body.Analyses))
	}

	missing := doJSON(t, router, http.MethodGet, "/api/v1/analyses", nil)
	if missing.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", missing.Code)
	}
}

func TestHandlerInferenceHealth(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/api/v1/inference/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var health struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if health.Status != "unavailable" {
		t.Fatalf("status = %q, want unavailable", health.Status)
	}
}
