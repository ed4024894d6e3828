package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/RMahshie/vibrascope/internal/api"
	"github.com/RMahshie/vibrascope/internal/api/handlers"
	"github.com/RMahshie/vibrascope/internal/config"
	"github.com/RMahshie/vibrascope/internal/processing"
	"github.com/RMahshie/vibrascope/internal/repository/postgres"
	"github.com/RMahshie/vibrascope/internal/storage"
	"github.com/RMahshie/vibrascope/pkg/models"
)

func main() {
	// Configure zerolog for structured logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	// Database
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 10*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	cancelPing()

	// Object storage
	s3Service, err := storage.New(cfg.Storage.S3())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create storage service")
	}
	if cfg.Storage.Backend == storage.BackendMinio {
		if err := storage.EnsureBucket(context.Background(), s3Service, cfg.Storage.Region); err != nil {
			log.Fatal().Err(err).Str("bucket", cfg.Storage.Bucket).Msg("Failed to prepare bucket")
		}
	}

	pipeline := processing.NewPipeline(
		processing.WithDuplicatePolicy(cfg.Analysis.Duplicates),
		processing.WithMaxSignalLength(cfg.Analysis.MaxSignalLength),
		processing.WithExactFrequencyAxis(cfg.Analysis.ExactFrequencyAxis),
		processing.WithLimits(processing.Limits{
			MaxSampleRateHz: cfg.Analysis.MaxSampleRateHz,
			MaxPathLength:   cfg.Analysis.MaxPathLength,
		}),
	)

	analysisRepo := postgres.NewPostgresAnalysisRepository(db)
	processingSvc := processing.NewProcessingService(s3Service, analysisRepo, pipeline)
	analysisHandler := handlers.NewAnalysisHandler(analysisRepo, s3Service, processingSvc, pipeline, handlers.Limits{
		MaxSampleRateHz: cfg.Analysis.MaxSampleRateHz,
		MaxUploadBytes:  cfg.Analysis.MaxUploadBytes,
	})

	// Create Chi router
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(zerologLogger())
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Create Huma API
	humaConfig := huma.DefaultConfig("Vibrascope API", "1.0.0")
	humaConfig.DocsPath = "/api/docs"
	humaAPI := humachi.New(router, humaConfig)

	// Register health endpoint
	huma.Register(humaAPI, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns the health status of the service",
	}, func(ctx context.Context, input *struct{}) (*models.HealthResponse, error) {
		resp := &models.HealthResponse{}
		resp.Body.Status = "healthy"
		resp.Body.Version = "1.0.0"
		resp.Body.Time = time.Now()
		return resp, nil
	})

	api.RegisterRoutes(humaAPI, analysisHandler)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Server.Env).Msg("Starting Vibrascope API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// zerologLogger returns a Chi middleware that logs HTTP requests using zerolog
func zerologLogger() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				log.Info().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("request_id", middleware.GetReqID(r.Context())).
					Int("status", ww.Status()).
					Dur("latency", time.Since(start)).
					Msg("HTTP request")
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
