package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/Harshitk-cp/ideaforge/internal/api/handlers"
	mw "github.com/Harshitk-cp/ideaforge/internal/api/middleware"
	"github.com/Harshitk-cp/ideaforge/internal/config"
	"github.com/Harshitk-cp/ideaforge/internal/domain"
	"github.com/Harshitk-cp/ideaforge/internal/embedding"
	"github.com/Harshitk-cp/ideaforge/internal/llm"
	"github.com/Harshitk-cp/ideaforge/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// App holds the router and shared state for lifecycle management.
type App struct {
	Router    *chi.Mux
	startTime time.Time
	metrics   *mw.MetricsCollector
	db        *pgxpool.Pool // nil when the run archive is disabled
}

// NewApp wires the HTTP surface. db may be nil; the pipeline endpoints work
// without an archive, only the /v1/runs endpoints disappear.
func NewApp(db *pgxpool.Pool, logger *zap.Logger) *App {
	// Completion client: provider -> process-wide rate limit -> retries.
	var client domain.CompletionClient
	client, err := llm.NewClient(config.LLMProvider(), config.LLMAPIKey())
	if err != nil {
		logger.Warn("LLM client initialization failed", zap.String("provider", config.LLMProvider()), zap.Error(err))
		client = llm.NewMockClient()
	} else {
		logger.Info("LLM client initialized", zap.String("provider", config.LLMProvider()))
	}
	client = llm.NewLimiter(client, config.LLMRPS(), 1)
	client = llm.NewRetrier(client, logger)

	var embeddingClient domain.EmbeddingClient
	embeddingClient, err = embedding.NewClient(config.EmbeddingProvider(), config.EmbeddingAPIKey())
	if err != nil {
		logger.Warn("embedding client initialization failed", zap.String("provider", config.EmbeddingProvider()), zap.Error(err))
		embeddingClient = nil
	} else {
		logger.Info("embedding client initialized", zap.String("provider", config.EmbeddingProvider()))
	}

	var runStore domain.RunStore
	if db != nil {
		runStore = store.NewRunStore(db)
	}

	settings := handlers.PipelineSettings{
		MemoryCapacity: config.MemoryCapacity(),
		InferenceDepth: config.InferenceDepth(),
	}

	workflowHandler := handlers.NewWorkflowHandler(client, runStore, embeddingClient, settings, logger)

	r := chi.NewRouter()
	app := &App{
		Router:    r,
		startTime: time.Now(),
		metrics:   mw.NewMetricsCollector(),
		db:        db,
	}

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(app.metrics.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", mw.RequestIDHeader},
	}))

	r.Get("/health", app.healthHandler())
	r.Get("/metrics", app.metricsHandler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/workflows", workflowHandler.Run)

		if runStore != nil {
			runsHandler := handlers.NewRunsHandler(runStore, embeddingClient)
			r.Route("/runs", func(r chi.Router) {
				r.Get("/", runsHandler.List)
				r.Get("/search", runsHandler.Search)
				r.Get("/{id}", runsHandler.Get)
			})
		}
	})

	return app
}

func (app *App) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if app.db != nil {
			if err := app.db.Ping(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(map[string]string{"status": "degraded", "database": err.Error()})
				return
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)
		requests, errors, inFlight := app.metrics.Snapshot()

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  requests,
			"error_count":    errors,
			"in_flight":      inFlight,
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response)
	}
}
