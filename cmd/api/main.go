// Package main is the entrypoint for the RapidRead API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/rapidread/rapidread/internal/cache"
	"github.com/rapidread/rapidread/internal/config"
	"github.com/rapidread/rapidread/internal/extractor"
	"github.com/rapidread/rapidread/internal/handler"
	"github.com/rapidread/rapidread/internal/metrics"
	"github.com/rapidread/rapidread/internal/middleware"
	"github.com/rapidread/rapidread/internal/repository"
	"github.com/rapidread/rapidread/internal/server"
	"github.com/rapidread/rapidread/internal/service"
	"github.com/rapidread/rapidread/internal/summarizer"
)

func main() {
	// Initialize context
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	if err := repo.Migrate(ctx); err != nil {
		logger.Error("failed to apply schema", slog.String("error", sanitizeError(err, cfg.DatabaseURL)))
		repo.Close()
		os.Exit(1)
	}

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		repo.Close()
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	// Initialize metrics
	recorder := metrics.NewInMemory()

	// Initialize services
	authService := service.NewAuthService(repo, cacheClient, cfg.SessionTTL, recorder)
	summaryService := service.NewSummaryService(
		repo,
		extractor.NewArticleExtractor(cfg.ExtractTimeout),
		extractor.NewYouTubeExtractor(cfg.ExtractTimeout),
		extractor.NewGitHubExtractor(cfg.ExtractTimeout, cfg.GitHubToken),
		extractor.NewPDFExtractor(),
		summarizer.NewGeminiSummarizer(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.SummarizeTimeout),
		recorder,
	)

	// Initialize handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	metricsHandler := handler.NewMetricsHandler(recorder)
	authHandler := handler.NewAuthHandler(authService, logger)
	summaryHandler := handler.NewSummaryHandler(summaryService, logger, cfg.MaxUploadSize)

	// Setup router
	r := setupRouter(routerDeps{
		base:      h,
		health:    healthHandler,
		metrics:   metricsHandler,
		auth:      authHandler,
		summaries: summaryHandler,
		sessions:  authService,
		cache:     cacheClient,
		cfg:       cfg,
		logger:    logger,
	})

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	srv.OnShutdown("database", func(_ context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(_ context.Context) error {
		return cacheClient.Close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"gemini_model", cfg.GeminiModel,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routerDeps struct {
	base      *handler.Handler
	health    *handler.HealthHandler
	metrics   *handler.MetricsHandler
	auth      *handler.AuthHandler
	summaries *handler.SummaryHandler
	sessions  middleware.SessionResolver
	cache     *cache.Cache
	cfg       *config.Config
	logger    *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps routerDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.logger))
	r.Use(middleware.Recoverer(deps.logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment: deps.cfg.IsDevelopment(),
	}))

	if origins := deps.cfg.GetCORSAllowedOrigins(); len(origins) > 0 {
		corsCfg := middleware.DefaultCORSConfig()
		corsCfg.AllowedOrigins = origins
		r.Use(middleware.CORS(corsCfg))
	}

	// JSON endpoints get a small body cap. The PDF upload route manages
	// its own larger limit.
	jsonBody := middleware.MaxBodySize(deps.cfg.MaxRequestBodySize)

	// Health and metrics endpoints (no auth required)
	r.Get("/healthz", deps.health.Healthz)
	r.Get("/readyz", deps.health.Readyz)
	r.Get("/metrics", deps.metrics.Metrics)

	// Root info endpoint
	r.Get("/", deps.base.Hello)

	// Account routes. Logout validates its own bearer token.
	r.Group(func(r chi.Router) {
		r.Use(jsonBody)
		r.Post("/auth/register", deps.auth.Register)
		r.Post("/auth/login", deps.auth.Login)
		r.Post("/auth/logout", deps.auth.Logout)
	})

	// Auth middleware configuration
	authCfg := middleware.AuthConfig{
		Logger:   deps.logger,
		Sessions: deps.sessions,
	}

	// Rate limit middleware configuration
	rateLimitCfg := middleware.RateLimitConfig{
		Logger:    deps.logger,
		Cache:     deps.cache,
		Enabled:   deps.cfg.RateLimitEnabled,
		PerMinute: deps.cfg.RateLimitPerMinute,
		Burst:     deps.cfg.RateLimitBurst,
	}

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(authCfg))

		// Summarize endpoints burn AI quota, so they carry the per-user
		// rate limit.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(rateLimitCfg))

			r.With(jsonBody).Post("/article/summarize", deps.summaries.SummarizeArticle)
			r.With(jsonBody).Post("/youtube/summarize", deps.summaries.SummarizeYouTube)
			r.With(jsonBody).Post("/github/summarize", deps.summaries.SummarizeGitHub)
			r.Post("/pdf/summarize", deps.summaries.SummarizePDF)
		})

		r.Route("/summaries", func(r chi.Router) {
			r.Get("/", deps.summaries.List)
			r.Get("/{id}", deps.summaries.Get)
			r.Delete("/{id}", deps.summaries.Delete)
		})
	})

	// 404 and 405 handlers
	r.NotFound(deps.base.NotFound)
	r.MethodNotAllowed(deps.base.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
