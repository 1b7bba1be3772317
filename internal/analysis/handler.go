package analysis

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"prioritizer-backend/internal/shared/server/respond"
	"prioritizer-backend/internal/workitem"
)

// Handler wires HTTP handlers to the orchestrator and repo.
type Handler struct {
	Orchestrator *Orchestrator
	Repo         Repo
}

// NewHandler constructs a Handler.
func NewHandler(orchestrator *Orchestrator, repo Repo) *Handler {
	return &Handler{Orchestrator: orchestrator, Repo: repo}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyses", h.analyze)
	rg.POST("/analyses/batch", h.analyzeBatch)
	rg.GET("/analyses", h.listAnalyses)
	rg.GET("/analyses/:id", h.getAnalysis)
	rg.GET("/inference/health", h.inferenceHealth)
}

type analyzeRequest struct {
	WorkItem     workitem.Payload `json:"workItem"`
	AnalysisType string           `json:"analysisType"`
	Context      workitem.Context `json:"context,omitempty"`
}

func (h *Handler) analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if req.WorkItem.ID == "" || req.WorkItem.Title == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "workItem.id and workItem.title are required", nil)
		return
	}
	analysisType, err := ParseType(req.AnalysisType)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}

	result := h.Orchestrator.Analyze(c.Request.Context(), req.WorkItem, analysisType, req.Context)
	respond.OK(c, result)
}

type batchRequest struct {
	WorkItems      []workitem.Payload `json:"workItems"`
	AnalysisTypes  []string           `json:"analysisTypes,omitempty"`
	Context        workitem.Context   `json:"context,omitempty"`
	MaxConcurrency int                `json:"maxConcurrency,omitempty"`
	DeadlineMs     int                `json:"deadlineMs,omitempty"`
}

func (h *Handler) analyzeBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if len(req.WorkItems) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "workItems is required", nil)
		return
	}
	for _, item := range req.WorkItems {
		if item.ID == "" || item.Title == "" {
			respond.Error(c, http.StatusBadRequest, "validation_error", "every work item needs id and title", nil)
			return
		}
	}
	types := make([]Type, 0, len(req.AnalysisTypes))
	for _, raw := range req.AnalysisTypes {
		analysisType, err := ParseType(raw)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
			return
		}
		types = append(types, analysisType)
	}

	ctx := c.Request.Context()
	if req.DeadlineMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(req.DeadlineMs)*time.Millisecond)
		defer cancel()
	}

	batch := h.Orchestrator.AnalyzeBatch(ctx, req.WorkItems, types, req.Context, req.MaxConcurrency)
	respond.OK(c, batch)
}

func (h *Handler) listAnalyses(c *gin.Context) {
	workItemID := c.Query("workItemId")
	if workItemID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "workItemId is required", nil)
		return
	}
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)

	records, err := h.Repo.ListByWorkItem(c.Request.Context(), workItemID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list analyses", nil)
		return
	}
	respond.OK(c, gin.H{"analyses": records})
}

func (h *Handler) getAnalysis(c *gin.Context) {
	id := c.Param("id")
	record, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch analysis", nil)
		}
		return
	}
	respond.OK(c, record)
}

func (h *Handler) inferenceHealth(c *gin.Context) {
	respond.OK(c, h.Orchestrator.Health(c.Request.Context()))
}

func intQuery(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}
