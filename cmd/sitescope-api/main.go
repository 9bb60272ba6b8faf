// Package main provides the entry point for the website analysis server.
package main

import (
	"context"
	"fmt"
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
	"github.com/go-chi/httprate"

	"github.com/wasgeurtjeNL/retail-sub002/internal/analyzer"
	"github.com/wasgeurtjeNL/retail-sub002/internal/browser"
	"github.com/wasgeurtjeNL/retail-sub002/internal/config"
	"github.com/wasgeurtjeNL/retail-sub002/internal/http/handlers"
	"github.com/wasgeurtjeNL/retail-sub002/internal/http/mw"
	"github.com/wasgeurtjeNL/retail-sub002/internal/llm"
	"github.com/wasgeurtjeNL/retail-sub002/internal/logging"
	"github.com/wasgeurtjeNL/retail-sub002/internal/pipeline"
	"github.com/wasgeurtjeNL/retail-sub002/internal/scraper"
	"github.com/wasgeurtjeNL/retail-sub002/internal/validation"
	"github.com/wasgeurtjeNL/retail-sub002/internal/version"
)

func main() {
	// Load configuration first (logging config comes from env)
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger using slog-logfilter (respects LOG_LEVEL, LOG_FORMAT env vars)
	logger := logging.SetDefault()

	logger.Info("starting analysis server",
		"version", version.Get().Version,
		"port", cfg.Port,
		"pool_size", cfg.BrowserPoolSize,
		"model", cfg.LLMModel,
	)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	validator, err := validation.New(cfg.AllowedDomains)
	if err != nil {
		logger.Error("invalid domain allow-list", "error", err)
		os.Exit(1)
	}

	// Browser pool (sessions are created on-demand)
	pool := browser.NewPool(browser.Config{
		PoolSize:    cfg.BrowserPoolSize,
		MaxAge:      cfg.BrowserMaxAge,
		MaxRequests: cfg.BrowserMaxRequests,
		IdleTimeout: cfg.BrowserIdleTimeout,
		ChromePath:  cfg.ChromePath,
	}, logger)
	defer pool.Close()
	go pool.StartCleanup(ctx)

	scr := scraper.New(pool, scraper.Config{
		RetryDelay:  cfg.ScrapeRetryDelay,
		SettleDelay: cfg.SettleDelay,
	}, logger)

	llmClient := llm.NewOpenAI(llm.Config{
		APIKey:  cfg.LLMAPIKey,
		BaseURL: cfg.LLMBaseURL,
		Model:   cfg.LLMModel,
		Timeout: cfg.LLMTimeout,
		Logger:  logger,
	})
	if cfg.LLMAPIKey == "" {
		logger.Warn("no LLM API key configured - all analyses will use the heuristic fallback")
	}

	anl := analyzer.New(llmClient, logger)
	pipe := pipeline.New(validator, scr, anl, cfg, logger)
	pipe.StartCleanup(ctx)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(pool, pipe)
	analyzeHandler := handlers.NewAnalyzeHandler(pipe, logger)

	// Create router
	r := chi.NewRouter()

	// Middleware
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.ScrapeTimeout + cfg.LLMTimeout + 30*time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{mw.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Rate limiting: a short window against bursts plus a daily ceiling
	r.Use(httprate.LimitByIP(cfg.RequestsPerHour, time.Hour))
	r.Use(httprate.LimitByIP(cfg.RequestsPerDay, 24*time.Hour))

	// Create Huma API
	humaConfig := huma.DefaultConfig("Site Analysis API", version.Get().Version)
	humaConfig.Info.Description = "Website extraction and business analysis service"
	api := humachi.New(r, humaConfig)

	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns health status, browser pool statistics, and cache statistics",
		Tags:        []string{"Health"},
	}, func(ctx context.Context, input *struct{}) (*handlers.HealthOutput, error) {
		resp := healthHandler.Handle(ctx)
		return &handlers.HealthOutput{Body: *resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "analyze",
		Method:      http.MethodPost,
		Path:        "/v1/analyze",
		Summary:     "Analyze a website",
		Description: "Validates, extracts, and analyzes the given URL into a business profile",
		Tags:        []string{"Analyze"},
	}, analyzeHandler.Handle)

	// Create HTTP server
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.ScrapeTimeout + cfg.LLMTimeout + 60*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Cancel context to stop background tasks
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
}
