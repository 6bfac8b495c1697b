package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gcbaptista/go-skillmatch/internal/analytics"
	"github.com/gcbaptista/go-skillmatch/internal/engine"
	"github.com/gcbaptista/go-skillmatch/internal/jobs"
	"github.com/gcbaptista/go-skillmatch/model"
)

// Recommender is the engine surface the handlers depend on.
type Recommender interface {
	Recommend(ctx context.Context, req engine.RecommendRequest) (*engine.Recommendation, error)
	SkillGap(userSkills []string, documentText string) []string
	Stats() (engine.CorpusStats, error)
	ReloadAsync() (string, error)
}

// JobTracker exposes background job state.
type JobTracker interface {
	GetJob(jobID string) (*model.Job, error)
	ListJobs(source string, status *model.JobStatus) []*model.Job
	GetMetrics() jobs.JobMetricsData
	GetJobSuccessRate() float64
	GetCurrentWorkload() int64
}

// API holds dependencies for API handlers.
type API struct {
	engine    Recommender
	jobs      JobTracker
	analytics *analytics.Service
	logger    *zap.Logger
}

// NewAPI creates a new API handler structure.
func NewAPI(engine Recommender, jobs JobTracker, logger *zap.Logger) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{
		engine:    engine,
		jobs:      jobs,
		analytics: analytics.NewService(engine),
		logger:    logger,
	}
}

// NewRouter builds a gin engine with the standard middleware chain and all routes.
func NewRouter(eng *engine.Engine, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	router := gin.New()
	router.Use(
		gin.Recovery(),
		RequestIDMiddleware(),
		AccessLogMiddleware(logger.Named("http")),
		CORSMiddleware(),
		RequestSizeLimitMiddleware(eng.Settings().Server.MaxBodyBytes),
	)
	SetupRoutes(router, NewAPI(eng, eng.JobManager(), logger))
	return router
}

// SetupRoutes defines all the API routes for the recommender.
func SetupRoutes(router *gin.Engine, apiHandler *API) {
	// Health check route
	router.GET("/health", apiHandler.HealthCheckHandler)

	// Analytics route
	router.GET("/analytics", apiHandler.GetAnalyticsHandler)

	// Recommendation routes
	router.POST("/recommendations", apiHandler.RecommendHandler)
	router.POST("/skill-gap", apiHandler.SkillGapHandler)

	// Corpus routes
	corpusRoutes := router.Group("/corpus")
	{
		corpusRoutes.GET("/stats", apiHandler.CorpusStatsHandler)    // Describe the active corpus
		corpusRoutes.POST("/reload", apiHandler.ReloadCorpusHandler) // Reload and refit in the background
	}

	// Job management routes
	jobRoutes := router.Group("/jobs")
	{
		jobRoutes.GET("", apiHandler.ListJobsHandler)                // List jobs, optionally by status
		jobRoutes.GET("/:jobId", apiHandler.GetJobHandler)         // Get job status by ID
		jobRoutes.GET("/metrics", apiHandler.GetJobMetricsHandler) // Get job performance metrics
	}
}

// HealthCheckHandler provides a simple health check endpoint. The service is
// healthy even before a corpus is loaded; corpus_loaded says whether it can rank.
func (api *API) HealthCheckHandler(c *gin.Context) {
	_, err := api.engine.Stats()
	c.JSON(http.StatusOK, gin.H{
		"status":        "healthy",
		"service":       "go-skillmatch",
		"corpus_loaded": err == nil,
		"timestamp":     fmt.Sprintf("%d", time.Now().Unix()),
	})
}
