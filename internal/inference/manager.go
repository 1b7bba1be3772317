package inference

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"prioritizer-backend/internal/shared/metrics"
	"prioritizer-backend/internal/shared/telemetry"
)

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	// CheckInterval throttles health checks; a check within the interval
	// reuses the previous result unless forced.
	CheckInterval time.Duration
	// CacheTTL bounds how long generation responses are reused. Zero
	// disables the cache.
	CacheTTL time.Duration
	// PinnedModel, when set and advertised by the server, overrides
	// automatic model selection.
	PinnedModel string
}

// Manager owns connectivity to an optional inference server: throttled
// health checks, model discovery and selection, request dispatch, and a TTL
// response cache. Safe for concurrent use; construct one per server and
// inject it wherever generation is needed.
type Manager struct {
	client        Client
	checkInterval time.Duration
	pinnedModel   string
	cache         *responseCache

	mu     sync.Mutex
	health ServerHealth

	now func() time.Time
}

// NewManager constructs a Manager around the given client.
func NewManager(client Client, opts ManagerOptions) *Manager {
	interval := opts.CheckInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Manager{
		client:        client,
		checkInterval: interval,
		pinnedModel:   strings.TrimSpace(opts.PinnedModel),
		cache:         newResponseCache(opts.CacheTTL),
		health:        ServerHealth{Status: StatusUnknown},
		now:           time.Now,
	}
}

// IsAvailable reports whether the server can currently serve generation
// requests. It runs a throttled health check first.
func (m *Manager) IsAvailable(ctx context.Context) bool {
	health := m.CheckHealth(ctx, false)
	return health.Status == StatusHealthy && len(health.AvailableModels) > 0
}

// GetHealth returns the last observed health snapshot without checking.
func (m *Manager) GetHealth() ServerHealth {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyHealth(m.health)
}

// CheckHealth pings the server's model-listing endpoint and updates the
// health snapshot. Checks within the configured interval reuse the previous
// result unless force is set.
func (m *Manager) CheckHealth(ctx context.Context, force bool) ServerHealth {
	m.mu.Lock()
	if !force && m.health.Status != StatusUnknown && m.now().Sub(m.health.LastCheckedAt) < m.checkInterval {
		snapshot := copyHealth(m.health)
		m.mu.Unlock()
		return snapshot
	}
	m.mu.Unlock()

	models, err := m.client.ListModels(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.health.LastCheckedAt = m.now()

	if err != nil {
		prev := m.health.Status
		m.health.Status = classifyHealthFailure(err)
		if prev != m.health.Status {
			telemetry.Info("inference.health", map[string]any{
				"status":     string(m.health.Status),
				"error_code": ClassifyError(err),
				"error":      err.Error(),
			})
		}
		return copyHealth(m.health)
	}

	m.health.Status = StatusHealthy
	m.health.AvailableModels = models
	m.health.PreferredModel = m.choosePreferredLocked(models)
	return copyHealth(m.health)
}

// classifyHealthFailure maps a model-listing failure to a health status.
// A response that arrived but did not match the expected shape means the
// server is up yet untrustworthy; anything else means unreachable.
func classifyHealthFailure(err error) Status {
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) || errors.Is(err, ErrUnexpectedResponse) {
		return StatusDegraded
	}
	return StatusUnavailable
}

// choosePreferredLocked re-selects the preferred model when the previous
// choice disappeared from the list. Callers hold m.mu.
func (m *Manager) choosePreferredLocked(models []ModelInfo) string {
	if m.pinnedModel != "" && containsModel(models, m.pinnedModel) {
		return m.pinnedModel
	}
	if m.health.PreferredModel != "" && containsModel(models, m.health.PreferredModel) {
		return m.health.PreferredModel
	}
	return SelectPreferredModel(models)
}

func containsModel(models []ModelInfo, name string) bool {
	for _, m := range models {
		if m.Name == name {
			return true
		}
	}
	return false
}

// Generate runs one blocking generation call. The request's model may be
// empty, in which case the manager's preferred model is used. Responses are
// cached by hash(model, prompt, system, options); failures are not cached.
func (m *Manager) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	if strings.TrimSpace(req.Model) == "" {
		health := m.CheckHealth(ctx, false)
		if health.PreferredModel == "" {
			return GenerateResponse{}, ErrNoModels
		}
		req.Model = health.PreferredModel
	}

	key := requestKey(req)
	if cached, ok := m.cache.get(key); ok {
		return cached, nil
	}

	metrics.IncInferenceCall()
	resp, err := m.client.Generate(ctx, req)
	if err != nil {
		metrics.IncInferenceError()
		return GenerateResponse{}, fmt.Errorf("generate model=%s: %w", req.Model, err)
	}
	if resp.Model == "" {
		resp.Model = req.Model
	}
	m.cache.put(key, resp)
	return resp, nil
}

// GenerateOutcome carries the result of an asynchronous generation call.
type GenerateOutcome struct {
	Response GenerateResponse
	Err      error
}

// GenerateAsync runs Generate in a goroutine and delivers the outcome on
// the returned channel. The channel is buffered; abandoning it does not
// leak the goroutine.
func (m *Manager) GenerateAsync(ctx context.Context, req GenerateRequest) <-chan GenerateOutcome {
	out := make(chan GenerateOutcome, 1)
	go func() {
		resp, err := m.Generate(ctx, req)
		out <- GenerateOutcome{Response: resp, Err: err}
		close(out)
	}()
	return out
}

// ClearCache drops all cached generation responses.
func (m *Manager) ClearCache() {
	m.cache.clear()
}

func copyHealth(h ServerHealth) ServerHealth {
	out := h
	out.AvailableModels = append([]ModelInfo(nil), h.AvailableModels...)
	return out
}
