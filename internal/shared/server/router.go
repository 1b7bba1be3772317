package server

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"prioritizer-backend/internal/analysis"
	"prioritizer-backend/internal/inference"
	"prioritizer-backend/internal/inference/local"
	"prioritizer-backend/internal/shared/config"
	"prioritizer-backend/internal/shared/metrics"
	"prioritizer-backend/internal/shared/server/middleware"
	"prioritizer-backend/internal/shared/server/respond"
	"prioritizer-backend/internal/shared/storage/db"
)

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(cfg config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.APIKey(cfg.APIKey),
		middleware.RateLimit(middleware.RateLimitConfig{
			// Analysis runs can fan out to the inference server; budget them
			// separately from cheap reads.
			GroupFor: func(c *gin.Context) string {
				if c.Request.Method == http.MethodPost {
					return "ANALYZE"
				}
				return "DEFAULT"
			},
			Rules: map[string]middleware.RateLimitRule{
				"ANALYZE": {Rate: 2, Burst: 10},
				"DEFAULT": {Rate: 20, Burst: 60},
			},
		}),
	)

	// Dependencies
	var sqlDB *sql.DB
	if cfg.DatabaseURL != "" {
		dbConn, err := db.Connect(context.Background(), cfg.DatabaseURL, db.DefaultServerOptions())
		if err != nil {
			log.Printf("failed to connect database, falling back to memory: %v", err)
		} else {
			if err := db.RunMigrations(context.Background(), dbConn); err != nil {
				log.Printf("failed to run migrations, falling back to memory: %v", err)
				_ = dbConn.Close()
				dbConn = nil
			}
		}
		sqlDB = dbConn
	}

	var repo analysis.Repo
	if sqlDB != nil {
		repo = &analysis.PGRepo{DB: sqlDB}
	} else {
		repo = analysis.NewMemoryRepo()
	}

	var manager *inference.Manager
	client, err := local.NewClient(cfg.InferenceBaseURL, cfg.InferenceTimeout)
	if err != nil {
		log.Printf("inference client disabled: %v", err)
	} else {
		manager = inference.NewManager(client, inference.ManagerOptions{
			CheckInterval: cfg.HealthCheckInterval,
			CacheTTL:      cfg.ResponseCacheTTL,
			PinnedModel:   cfg.InferenceModel,
		})
	}

	orchestrator := analysis.NewOrchestrator(manager, repo, analysis.OrchestratorOptions{
		CacheTTL:        cfg.ResponseCacheTTL,
		MaxBatchWorkers: cfg.MaxBatchWorkers,
	})
	analysisHandler := analysis.NewHandler(orchestrator, repo)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	analysisHandler.RegisterRoutes(api)

	r.GET("/metrics", metrics.Handler())

	return r
}

// Addr formats the listen address for a port.
func Addr(port string) string {
	return ":" + port
}
