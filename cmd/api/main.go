// Package main is the entrypoint for the Cardvault API server.
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

	"github.com/cardvault/cardvault/internal/cache"
	"github.com/cardvault/cardvault/internal/config"
	"github.com/cardvault/cardvault/internal/handler"
	"github.com/cardvault/cardvault/internal/metrics"
	"github.com/cardvault/cardvault/internal/middleware"
	"github.com/cardvault/cardvault/internal/repository"
	"github.com/cardvault/cardvault/internal/server"
	"github.com/cardvault/cardvault/internal/service"
)

func main() {
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
	defer repo.Close()
	logger.Info("connected to database")

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	// Initialize services
	recorder := metrics.NewInMemory()
	userService := service.NewUserService(repo, cacheClient, recorder)
	subscriptionService := service.NewSubscriptionService(repo, recorder)
	cardService := service.NewCardService(repo, recorder)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	userHandler := handler.NewUserHandler(userService, logger)
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionService, logger)
	cardHandler := handler.NewCardHandler(cardService, logger)
	adminHandler := handler.NewAdminHandler(userService, subscriptionService, cardService, logger)

	// Setup router
	r := setupRouter(routerDeps{
		health:        healthHandler,
		users:         userHandler,
		subscriptions: subscriptionHandler,
		cards:         cardHandler,
		admin:         adminHandler,
		repo:          repo,
		cache:         cacheClient,
		cfg:           cfg,
		logger:        logger,
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

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
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
	health        *handler.HealthHandler
	users         *handler.UserHandler
	subscriptions *handler.SubscriptionHandler
	cards         *handler.CardHandler
	admin         *handler.AdminHandler
	repo          *repository.Repository
	cache         *cache.Cache
	cfg           *config.Config
	logger        *slog.Logger
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
	r.Use(middleware.MaxBodySize(deps.cfg.MaxRequestBodySize))

	if origins := deps.cfg.GetCORSAllowedOrigins(); len(origins) > 0 {
		corsCfg := middleware.DefaultCORSConfig()
		corsCfg.AllowedOrigins = origins
		r.Use(middleware.CORS(corsCfg))
	}

	// Health endpoints (no auth required)
	r.Get("/healthz", deps.health.Healthz)
	r.Get("/readyz", deps.health.Readyz)

	authCfg := middleware.AuthConfig{
		Logger:     deps.logger,
		Repository: deps.repo,
		Cache:      deps.cache,
	}

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:           deps.logger,
		Cache:            deps.cache,
		APIEnabled:       deps.cfg.RateLimitAPIEnabled,
		APIPerMinute:     deps.cfg.RateLimitAPIPerMinute,
		APIBurst:         deps.cfg.RateLimitAPIBurst,
		AnonymousEnabled: deps.cfg.RateLimitAnonymousEnabled,
		AnonymousRPS:     deps.cfg.RateLimitAnonymousRPS,
		AnonymousBurst:   deps.cfg.RateLimitAnonymousBurst,
	}

	// Anonymous catalog and registration (no credential, per-IP limits)
	r.Route("/api/anonymous", func(r chi.Router) {
		r.Use(middleware.RateLimitIP(rateLimitCfg))

		r.Get("/users", deps.users.ListAnonymous)
		r.Get("/users/{email}", deps.users.GetAnonymous)
		r.Post("/register", deps.users.Register)
		r.Get("/subscriptions", deps.subscriptions.List)
		r.Get("/subscriptions/{id}", deps.subscriptions.Get)
	})

	// Self-service tier (apiKey credential)
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(authCfg))
		r.Use(middleware.RateLimitAPI(rateLimitCfg))

		r.Get("/profile", deps.users.Profile)
		r.Patch("/profile", deps.users.PatchProfile)

		r.Route("/cards", func(r chi.Router) {
			r.Get("/", deps.cards.List)
			r.Post("/", deps.cards.Create)
			r.Get("/{id}", deps.cards.Get)
			r.Patch("/{id}", deps.cards.Patch)
			r.Delete("/{id}", deps.cards.Delete)
		})

		// Administrative tier (ADMIN role)
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin())

			r.Route("/users", func(r chi.Router) {
				r.Get("/", deps.admin.ListUsers)
				r.Get("/{email}", deps.admin.GetUser)
				r.Patch("/{email}", deps.admin.PatchUser)
				r.Delete("/{email}", deps.admin.DeleteUser)
			})

			r.Route("/subscriptions", func(r chi.Router) {
				r.Get("/", deps.admin.ListSubscriptions)
				r.Post("/", deps.admin.CreateSubscription)
				r.Get("/{id}", deps.admin.GetSubscription)
				r.Patch("/{id}", deps.admin.PatchSubscription)
				r.Delete("/{id}", deps.admin.DeleteSubscription)
			})

			r.Route("/cards", func(r chi.Router) {
				r.Get("/", deps.admin.ListCards)
				r.Post("/", deps.admin.CreateCard)
				r.Get("/{id}", deps.admin.GetCard)
				r.Patch("/{id}", deps.admin.PatchCard)
				r.Delete("/{id}", deps.admin.DeleteCard)
			})
		})
	})

	// 404 and 405 handlers
	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

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
