package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/osint-works/veracity/internal/api/handlers"
	mw "github.com/osint-works/veracity/internal/api/middleware"
	"github.com/osint-works/veracity/internal/config"
	"github.com/osint-works/veracity/internal/domain"
	"github.com/osint-works/veracity/internal/embedding"
	"github.com/osint-works/veracity/internal/search"
	"github.com/osint-works/veracity/internal/service"
	"github.com/osint-works/veracity/internal/store"
)

// App holds the router and background services for lifecycle management.
type App struct {
	Router       *chi.Mux
	Worker       *service.VerificationWorker
	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

func NewApp(db *pgxpool.Pool, logger *zap.Logger) *App {
	// Stores
	factStore := store.NewFactStore(db)
	classificationStore := store.NewClassificationStore(db)
	verificationStore := store.NewVerificationStore(db)

	// External clients via provider factory
	var embeddingClient domain.EmbeddingClient
	var searchClient domain.SearchClient

	embeddingProvider := config.EmbeddingProvider()
	searchProvider := config.SearchProvider()

	var err error
	embeddingClient, err = embedding.NewClient(embeddingProvider, config.EmbeddingAPIKey())
	if err != nil {
		logger.Warn("embedding client initialization failed", zap.String("provider", embeddingProvider), zap.Error(err))
	} else {
		logger.Info("embedding client initialized", zap.String("provider", embeddingProvider))
	}

	searchClient, err = search.NewClient(searchProvider, config.SearchAPIKey(), config.SearchRPS())
	if err != nil {
		logger.Warn("search client initialization failed", zap.String("provider", searchProvider), zap.Error(err))
	} else {
		logger.Info("search client initialized", zap.String("provider", searchProvider))
	}

	// Services
	authority := service.NewAuthorityIndex(nil)
	scorer := service.NewCredibilityScorer(authority, logger)
	echo := service.NewEchoDetector()
	dubious := service.NewDubiousDetector(logger)
	impact := service.NewImpactAssessor(logger)
	consolidator := service.NewConsolidator(factStore, embeddingClient, logger)
	classifySvc := service.NewClassificationService(classificationStore, scorer, echo, dubious, impact, logger)
	queries := service.NewQueryGenerator()
	executor := service.NewSearchExecutor(searchClient, authority, logger)
	aggregator := service.NewEvidenceAggregator()
	reclassifier := service.NewReclassifier(classificationStore, factStore, verificationStore, impact, logger)
	agent := service.NewVerificationAgent(
		factStore, classificationStore, verificationStore,
		queries, executor, aggregator, reclassifier,
		config.VerifyBatchSize(), logger)
	worker := service.NewVerificationWorker(agent, classificationStore,
		time.Duration(config.VerifyIntervalMinutes())*time.Minute, logger)

	// Handlers
	factHandler := handlers.NewFactHandler(consolidator, factStore)
	classificationHandler := handlers.NewClassificationHandler(classifySvc, factStore, classificationStore)
	verificationHandler := handlers.NewVerificationHandler(agent, reclassifier, verificationStore)
	reviewHandler := handlers.NewReviewHandler(agent, verificationStore)

	r := chi.NewRouter()

	// Initialize app with metrics tracking
	app := &App{
		Router:    r,
		Worker:    worker,
		startTime: time.Now(),
	}

	// Metrics collector for middleware
	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)                                                 // Generate/extract request ID first
	r.Use(middleware.RealIP)                                            // Extract real IP
	r.Use(metricsCollector.Middleware)                                  // Collect metrics
	r.Use(mw.Logging(logger))                                           // Log all requests
	r.Use(middleware.Recoverer)                                         // Recover from panics
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst())) // Rate limiting

	// Health (no auth)
	r.Get("/health", healthHandler(db))

	// Metrics (no auth)
	r.Get("/metrics", app.metricsHandler())

	// Authenticated routes
	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(config.APIKey()))

		r.Route("/investigations/{id}", func(r chi.Router) {
			// Facts (ingest + consolidation)
			r.Route("/facts", func(r chi.Router) {
				r.Post("/", factHandler.Ingest)
				r.Post("/sift", factHandler.Sift)
				r.Get("/", factHandler.List)
				r.Get("/{factID}", factHandler.GetByID)
			})

			// Classification
			r.Post("/classify", classificationHandler.Classify)
			r.Post("/classify/batch", classificationHandler.ClassifyBatch)
			r.Get("/classifications/{factID}", classificationHandler.GetByFactID)
			r.Get("/queue", classificationHandler.Queue)

			// Verification
			r.Route("/verify", func(r chi.Router) {
				r.Post("/", verificationHandler.VerifyInvestigation)
				r.Post("/{factID}", verificationHandler.VerifyFact)
			})
			r.Get("/results", verificationHandler.Results)
			r.Get("/results/{factID}", verificationHandler.GetResult)
			r.Post("/anomalies/resolve", verificationHandler.ResolveAnomaly)

			// Human review
			r.Get("/review", reviewHandler.Pending)
			r.Post("/review/{factID}", reviewHandler.Complete)
		})
	})

	return app
}

// NewRouter returns just the chi.Mux for callers that manage lifecycle
// themselves.
func NewRouter(db *pgxpool.Pool, logger *zap.Logger) *chi.Mux {
	return NewApp(db, logger).Router
}

func healthHandler(db *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure stores and clients satisfy interfaces at compile time.
var (
	_ domain.FactStore           = (*store.FactStore)(nil)
	_ domain.ClassificationStore = (*store.ClassificationStore)(nil)
	_ domain.VerificationStore   = (*store.VerificationStore)(nil)
	_ domain.EmbeddingClient     = (*embedding.OpenAIClient)(nil)
	_ domain.EmbeddingClient     = (*embedding.MockClient)(nil)
	_ domain.SearchClient        = (*search.BraveClient)(nil)
	_ domain.SearchClient        = (*search.MockClient)(nil)
)
