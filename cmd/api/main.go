// Package main is the entrypoint for the Git Chest backend.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/gitchest/gitchest/internal/assets"
	"github.com/gitchest/gitchest/internal/avatar"
	"github.com/gitchest/gitchest/internal/cache"
	"github.com/gitchest/gitchest/internal/config"
	"github.com/gitchest/gitchest/internal/dirs"
	"github.com/gitchest/gitchest/internal/events"
	"github.com/gitchest/gitchest/internal/handler"
	"github.com/gitchest/gitchest/internal/metrics"
	"github.com/gitchest/gitchest/internal/middleware"
	"github.com/gitchest/gitchest/internal/platform/github"
	"github.com/gitchest/gitchest/internal/repository"
	"github.com/gitchest/gitchest/internal/repository/sqlite"
	"github.com/gitchest/gitchest/internal/server"
	"github.com/gitchest/gitchest/internal/service"
	"github.com/gitchest/gitchest/internal/toast"
)

// sqliteFile is the database file name under the data directory.
const sqliteFile = "git-chest.db"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Application directories
	appDirs, err := resolveDirs(cfg)
	if err != nil {
		logger.Error("failed to resolve application directories", "error", err)
		os.Exit(1)
	}
	if err := appDirs.EnsureAll(logger); err != nil {
		logger.Error("failed to create application directories", "error", err)
		os.Exit(1)
	}

	// Initialize database
	store, err := openStore(ctx, cfg, appDirs)
	if err != nil {
		logger.Error(
			"failed to open database",
			slog.String("driver", cfg.DBDriver),
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database", "driver", cfg.DBDriver)

	// Initialize cache (optional)
	var cacheClient *cache.Cache
	if cfg.RedisURL != "" {
		cacheClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			store.Close()
			os.Exit(1)
		}
		cacheClient.SetUserTTL(cfg.UserCacheTTL)
		logger.Info("connected to Redis")
	}

	// Events and toasts
	metricsRecorder := metrics.NewInMemory()
	bus := events.NewBus(logger, cfg.EventBuffer)
	toasts := toast.NewStore(toast.StoreOptions{TTL: cfg.ToastTTL, Capacity: cfg.ToastCapacity})
	feed := toast.NewFeed(bus, toasts, logger, metricsRecorder)
	if err := feed.Mount(ctx); err != nil {
		logger.Warn("toast feed running without live updates", "error", err)
	}
	go toasts.Run(ctx, time.Second)

	// Initialize services
	githubClient := github.New(github.Options{
		BaseURL: cfg.GitHubAPIURL,
		Token:   cfg.GitHubToken,
		Timeout: cfg.GitHubTimeout,
	}, logger)

	deps := service.UserServiceDeps{
		Store:      store,
		GitHub:     githubClient,
		Avatars:    avatar.NewStore(appDirs, logger),
		Emitter:    bus,
		Metrics:    metricsRecorder,
		Logger:     logger,
		AvatarSize: cfg.AvatarSize,
	}
	if cacheClient != nil {
		deps.Cache = cacheClient
	}
	userService := service.NewUserService(deps)

	// Initialize handlers
	var cacheChecker handler.HealthChecker
	if cacheClient != nil {
		cacheChecker = cacheClient
	}
	handlers := routes{
		index:   handler.New(),
		health:  handler.NewHealthHandler(cfg.DBDriver, store, cacheChecker),
		metrics: handler.NewMetricsHandler(metricsRecorder),
		users:   handler.NewUserHandler(userService, assets.Converter{BaseURL: cfg.BaseURL}.Convert, logger),
		toasts:  handler.NewToastHandler(toasts, bus, logger),
		events:  handler.NewEventsHandler(bus, cfg.GetCORSAllowedOrigins(), logger),
		asset:   handler.NewAssetHandler(appDirs.Data, logger),
	}

	// Setup router
	r := setupRouter(handlers, newLimiter(cfg, cacheClient), cfg, logger)

	// Create and run server
	srv := server.New(
		r,
		cfg.Addr(),
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	// Registered first, closed last.
	srv.OnShutdown("database", func(context.Context) error {
		store.Close()
		return nil
	})
	if cacheClient != nil {
		srv.OnShutdown("redis", func(context.Context) error {
			return cacheClient.Close()
		})
	}
	srv.OnShutdown("event bus", func(context.Context) error {
		bus.Close()
		return nil
	})
	srv.OnShutdown("toast feed", func(context.Context) error {
		feed.Unmount()
		cancel()
		return nil
	})

	logger.Info("starting server",
		"addr", cfg.Addr(),
		"base_url", cfg.BaseURL,
		"data_dir", appDirs.Data,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(ctx); err != nil {
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
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func resolveDirs(cfg *config.Config) (dirs.Dirs, error) {
	if cfg.Home != "" {
		return dirs.FromRoot(cfg.Home), nil
	}
	return dirs.Resolve()
}

// openStore opens the configured user store. SQLite lives under the data
// directory unless SQLITE_PATH says otherwise.
func openStore(ctx context.Context, cfg *config.Config, d dirs.Dirs) (repository.UserStore, error) {
	if cfg.DBDriver == config.DriverPostgres {
		return repository.New(ctx, cfg.DatabaseURL)
	}

	path := cfg.SQLitePath
	if path == "" {
		path = filepath.Join(d.Data, sqliteFile)
	}
	return sqlite.New(ctx, path)
}

// newLimiter shares rate limit state through Redis when it is configured.
func newLimiter(cfg *config.Config, cacheClient *cache.Cache) middleware.Limiter {
	if cacheClient != nil {
		return middleware.NewRedisLimiter(cacheClient, cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	return middleware.NewMemoryLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, 10*time.Minute)
}

type routes struct {
	index   *handler.Handler
	health  *handler.HealthHandler
	metrics *handler.MetricsHandler
	users   *handler.UserHandler
	toasts  *handler.ToastHandler
	events  *handler.EventsHandler
	asset   *handler.AssetHandler
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(h routes, limiter middleware.Limiter, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{HSTS: cfg.IsProduction()}))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.GetCORSAllowedOrigins()...)))

	// Health endpoints
	r.Get("/healthz", h.health.Healthz)
	r.Get("/readyz", h.health.Readyz)
	r.Get("/metrics", h.metrics.Metrics)

	r.Get("/", h.index.Index)
	r.Get("/events", h.events.Stream)
	r.Get(assets.RoutePrefix+"*", h.asset.Serve)

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:  logger,
		Limiter: limiter,
		Enabled: cfg.RateLimitEnabled,
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))
		r.Use(middleware.RateLimitIP(rateLimitCfg))

		r.Get("/layout", h.index.Layout)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.users.List)
			r.Post("/", h.users.Create)
			r.Get("/exists", h.users.Exists)
			r.Get("/{id}", h.users.Get)
			r.Get("/{id}/card", h.users.Card)
			r.Post("/{id}/refresh", h.users.Refresh)
			r.Delete("/{id}", h.users.Delete)
		})

		r.Route("/toasts", func(r chi.Router) {
			r.Get("/", h.toasts.List)
			r.Post("/", h.toasts.Send)
			r.Delete("/{id}", h.toasts.Dismiss)
		})
	})

	// 404 and 405 handlers
	r.NotFound(h.index.NotFound)
	r.MethodNotAllowed(h.index.MethodNotAllowed)

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
