// Package gateway assembles the AI gateway server: configuration, storage,
// auth, routes, and lifecycle.
package gateway

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/sparknote/ai-gateway/internal/api"
	"github.com/sparknote/ai-gateway/internal/config"
	"github.com/sparknote/ai-gateway/internal/services/auth"
	"github.com/sparknote/ai-gateway/internal/services/credential"
	"github.com/sparknote/ai-gateway/internal/services/database"
	"github.com/sparknote/ai-gateway/internal/services/dispatch"
	"github.com/sparknote/ai-gateway/internal/services/middleware"
	"github.com/sparknote/ai-gateway/internal/services/usage"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
)

// Gateway represents one gateway server instance.
type Gateway struct {
	config *config.Config
	app    *fiber.App
	redis  *redis.Client
	db     *database.DB
}

// New creates a Gateway instance with the given configuration. The cfg
// parameter is required and must not be nil.
func New(cfg *config.Config) *Gateway {
	if cfg == nil {
		panic("config cannot be nil - use config.LoadFromFile() to create config")
	}
	return &Gateway{config: cfg}
}

// Run starts the gateway server and blocks until shutdown.
func (g *Gateway) Run() error {
	if err := g.config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	setupLogLevel(g.config)

	port := g.config.Server.Port
	if port == "" {
		port = "8080"
	}
	listenAddr := ":" + port

	g.app = createFiberApp(g.config)

	db, err := database.New(*g.config.Database)
	if err != nil {
		return fmt.Errorf("database initialization failed: %w", err)
	}
	g.db = db
	defer func() {
		if err := g.db.Close(); err != nil {
			fiberlog.Errorf("Failed to close database connection: %v", err)
		}
	}()

	if err := g.db.AutoMigrate(); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}

	redisClient, err := createRedisClient(g.config)
	if err != nil {
		return err
	}
	g.redis = redisClient
	if g.redis != nil {
		defer func() {
			if err := g.redis.Close(); err != nil {
				fiberlog.Errorf("Failed to close Redis client: %v", err)
			}
		}()
	}

	setupMiddleware(g.app, g.config)
	setupRoutes(g.app, g.config, g.db, g.redis)

	fmt.Printf("SparkNote AI Gateway starting on %s\n", listenAddr)
	fmt.Printf("   Environment: %s\n", g.config.Server.Environment)
	fmt.Printf("   Database: %s\n", g.db.DriverName())
	fmt.Printf("   Go version: %s\n", runtime.Version())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	serverErrChan := make(chan error, 1)
	go func() {
		if err := g.app.Listen(listenAddr); err != nil {
			serverErrChan <- err
		}
	}()

	select {
	case sig := <-sigChan:
		fiberlog.Infof("Received signal: %v. Starting graceful shutdown...", sig)
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		fiberlog.Info("Context cancelled, starting shutdown...")
	}

	fiberlog.Info("Server shutting down gracefully...")
	if err := g.app.ShutdownWithTimeout(30 * time.Second); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	fiberlog.Info("Server shutdown completed successfully")

	return nil
}

func createFiberApp(cfg *config.Config) *fiber.App {
	isProd := cfg.IsProduction()

	return fiber.New(fiber.Config{
		AppName:              "SparkNote AI Gateway v1.0",
		EnablePrintRoutes:    !isProd,
		ReadTimeout:          2 * time.Minute,
		WriteTimeout:         2 * time.Minute,
		IdleTimeout:          5 * time.Minute,
		ReadBufferSize:       8192,
		WriteBufferSize:      8192,
		CompressedFileSuffix: ".gz",
		Prefork:              false,
		CaseSensitive:        true,
		StrictRouting:        false,
		Network:              "tcp",
		ServerHeader:         "SparkNote-AI-Gateway",
	})
}

func setupMiddleware(app *fiber.App, cfg *config.Config) {
	isProd := cfg.IsProduction()

	// Recover middleware (must be first)
	app.Use(recover.New(recover.Config{
		EnableStackTrace: !isProd,
	}))

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	if isProd {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${status} ${method} ${path} ${latency} ${bytesSent}b\n",
			Output: os.Stdout,
		}))
	} else {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path} ${error}\n",
			Output: os.Stdout,
		}))
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, User-Agent",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
		MaxAge:           86400,
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
	}))

	// Profiler (dev only)
	if !isProd {
		app.Use(pprof.New())
	}
}

func setupLogLevel(cfg *config.Config) {
	logLevel := cfg.GetNormalizedLogLevel()

	switch logLevel {
	case "trace":
		fiberlog.SetLevel(fiberlog.LevelTrace)
	case "debug":
		fiberlog.SetLevel(fiberlog.LevelDebug)
	case "info":
		fiberlog.SetLevel(fiberlog.LevelInfo)
	case "warn", "warning":
		fiberlog.SetLevel(fiberlog.LevelWarn)
	case "error":
		fiberlog.SetLevel(fiberlog.LevelError)
	default:
		fiberlog.SetLevel(fiberlog.LevelInfo)
	}

	fiberlog.Infof("Log level set to: %s", logLevel)
}

func createRedisClient(cfg *config.Config) (*redis.Client, error) {
	redisURL := ""
	if cfg.Cache != nil {
		redisURL = cfg.Cache.RedisURL
	}
	if redisURL == "" {
		fiberlog.Info("Redis not configured - admin-status cache runs in process")
		return nil, nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opt.PoolSize = 20
	opt.MinIdleConns = 4
	opt.DialTimeout = 10 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second
	opt.MaxRetries = 3

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		if closeErr := client.Close(); closeErr != nil {
			fiberlog.Errorf("Failed to close Redis client after connection failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	fiberlog.Info("Redis connection established successfully")
	return client, nil
}

// createAuthProvider selects the auth provider from the config. Clerk wins
// when both are configured. The status cache is returned alongside so the
// sign-out endpoint can invalidate cached verdicts.
func createAuthProvider(cfg *config.Config, redisClient *redis.Client) (auth.Provider, *auth.StatusCache) {
	if cfg.Auth == nil {
		return nil, nil
	}

	ttl := time.Duration(cfg.Auth.AdminCacheTTLSeconds) * time.Second

	if cfg.Auth.ClerkSecretKey != "" {
		fiberlog.Info("Using Clerk auth provider for admin routes")
		cache := auth.NewStatusCache(redisClient, ttl)
		return auth.NewClerkProvider(cfg.Auth.ClerkSecretKey, cache), cache
	}
	if cfg.Auth.JWTSecret != "" {
		fiberlog.Info("Using local JWT auth provider for admin routes")
		return auth.NewLocalProvider(cfg.Auth.JWTSecret), nil
	}
	return nil, nil
}

func setupRoutes(app *fiber.App, cfg *config.Config, db *database.DB, redisClient *redis.Client) {
	credentialService := credential.NewService(credential.NewGormRepository(db.DB))
	usageService := usage.NewService(db)
	dispatchService := dispatch.NewService(cfg, credentialService)

	authProvider, adminCache := createAuthProvider(cfg, redisClient)
	authMiddleware := middleware.NewAuthMiddleware(authProvider)

	generateHandler := api.NewGenerateHandler(dispatchService, usageService)
	keyHandler := api.NewProviderKeyHandler(credentialService)
	usageHandler := api.NewUsageHandler(usageService)
	healthHandler := api.NewHealthHandler(db, redisClient)
	authHandler := api.NewAuthHandler(adminCache)

	app.Get("/health", healthHandler.HealthCheck)

	v1 := app.Group("/v1")
	v1.Post("/generate", generateHandler.Generate)

	admin := app.Group("/admin", authMiddleware.RequireAdmin())

	keys := admin.Group("/provider-keys")
	keys.Post("/", keyHandler.Create)
	keys.Get("/", keyHandler.List)
	keys.Get("/:id", keyHandler.Get)
	keys.Get("/:id/secret", keyHandler.RevealSecret)
	keys.Post("/:id/activate", keyHandler.Activate)
	keys.Delete("/:id", keyHandler.Delete)

	logs := admin.Group("/usage-logs")
	logs.Get("/", usageHandler.List)
	logs.Get("/stats", usageHandler.Stats)

	admin.Post("/auth/sign-out", authHandler.SignOut)
}
