package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/jobscout-api/internal/config"
	"github.com/yourusername/jobscout-api/internal/handler"
	"github.com/yourusername/jobscout-api/internal/middleware"
	"github.com/yourusername/jobscout-api/internal/repository"
	"github.com/yourusername/jobscout-api/internal/service"
)

func main() {
	// ── Logging ──────────────────────────────────────────
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// ── Config ───────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Str("provider", cfg.LLMProvider).
		Str("language", cfg.OutputLanguage).
		Msg("Starting JobScout API")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Services ─────────────────────────────────────────
	locale, err := service.LoadLocale(cfg.OutputLanguage)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load locale")
	}

	gen, err := service.NewGenerator(ctx, cfg)
	if errors.Is(err, service.ErrMissingAPIKey) {
		// Serve anyway; model-backed endpoints answer 503 until a key is set
		log.Warn().Str("provider", cfg.LLMProvider).Msg("No LLM API key configured")
	} else if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize LLM client")
	}

	scout, err := service.NewScout(gen, locale, cfg.MaxCompanies)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize scout")
	}
	orchestrator := service.NewOrchestrator(scout, scout.Messages())

	// ── Repositories ─────────────────────────────────────
	sessions := repository.NewSessionRepo(cfg.SessionTTL)

	// ── Handlers ─────────────────────────────────────────
	scoutHandler := handler.NewScoutHandler(scout)
	sessionHandler := handler.NewSessionHandler(sessions, scout, orchestrator)

	// ── Middleware ────────────────────────────────────────
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS)

	// ── Router ───────────────────────────────────────────
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())

	// CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"service":  "jobscout-api",
			"llmReady": scout.Ready(),
			"sessions": sessions.Len(),
			"time":     time.Now().UTC(),
		})
	})

	api := r.Group("/", rateLimiter.Limit())
	{
		// Stateless
		api.POST("/companies/search", scoutHandler.SearchCompanies)
		api.POST("/companies/analyze", scoutHandler.AnalyzeCompany)

		// Sessions
		api.POST("/sessions", sessionHandler.Create)
		api.GET("/sessions/:id", sessionHandler.Get)
		api.DELETE("/sessions/:id", sessionHandler.Delete)
		api.POST("/sessions/:id/search", sessionHandler.Search)
		api.POST("/sessions/:id/companies/:companyId/toggle", sessionHandler.ToggleCompany)
		api.POST("/sessions/:id/analysis", sessionHandler.StartAnalysis)
		api.POST("/sessions/:id/reset", sessionHandler.Reset)
	}

	// Event streams are long-lived and stay out of the rate limiter
	r.GET("/sessions/:id/events", sessionHandler.Events)

	// ── Server ───────────────────────────────────────────
	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		// no WriteTimeout: SSE responses stay open for a whole batch
		IdleTimeout: 60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("JobScout API server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return sessions.Run(gctx, time.Minute)
	})

	g.Go(func() error {
		return rateLimiter.Run(gctx)
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		if err := sessionHandler.Wait(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Analysis batches still running at shutdown")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("Server stopped with error")
	}

	log.Info().Msg("Server stopped")
}

// requestLogger logs every request with zerolog
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= 400 {
			event = log.Warn()
		}
		if status >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", latency).
			Str("ip", c.ClientIP()).
			Msg(fmt.Sprintf("%s %s", c.Request.Method, path))
	}
}
