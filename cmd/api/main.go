package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/omnisearch/backend/internal/adapters"
	"github.com/omnisearch/backend/internal/api/handlers"
	"github.com/omnisearch/backend/internal/cache"
	redisc "github.com/omnisearch/backend/internal/cache/redis"
	"github.com/omnisearch/backend/internal/filters"
	"github.com/omnisearch/backend/internal/health"
	"github.com/omnisearch/backend/internal/llm"
	"github.com/omnisearch/backend/internal/metrics"
	"github.com/omnisearch/backend/internal/middleware/auth"
	"github.com/omnisearch/backend/internal/middleware/ratelimit"
	"github.com/omnisearch/backend/internal/middleware/security"
	"github.com/omnisearch/backend/internal/middleware/validation"
	"github.com/omnisearch/backend/internal/orchestrator"
	"github.com/omnisearch/backend/internal/query"
	"github.com/omnisearch/backend/internal/rank"
	"github.com/omnisearch/backend/internal/search"
	"github.com/omnisearch/backend/internal/tokens"
	"github.com/omnisearch/backend/internal/transform"
	"github.com/omnisearch/backend/pkg/config"
	appLogger "github.com/omnisearch/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting OmniSearch API Server")

	metrics.Init()

	redisClient, err := redisc.NewClient(
		cfg.Redis.Host,
		cfg.Redis.Port,
		cfg.Redis.Password,
		cfg.Redis.DB,
	)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	tokenFetcher := tokens.NewRedisFetcher(redisClient)

	registry := adapters.NewRegistryFromConfig(cfg.Providers)
	appLogger.Info("Provider adapters registered", zap.Int("count", registry.Len()))

	llmClient := llm.NewClient(
		cfg.LLM.APIKey,
		cfg.LLM.Model,
		cfg.LLM.Temperature,
		cfg.LLM.MaxTokens,
		cfg.LLM.TimeoutSec,
	)

	queryCache := cache.NewTTL(
		cfg.Search.QueryCacheSize,
		time.Duration(cfg.Search.QueryCacheTTLSec)*time.Second,
	)
	suggestionCache := cache.NewTTL(
		cfg.Search.QueryCacheSize,
		time.Duration(cfg.Search.QueryCacheTTLSec)*time.Second,
	)

	processor := query.NewProcessor(llmClient, queryCache)
	orch := orchestrator.New(orchestrator.Config{
		AdapterTimeout: time.Duration(cfg.Search.AdapterTimeoutSec) * time.Second,
		GlobalTimeout:  time.Duration(cfg.Search.GlobalTimeoutSec) * time.Second,
		MaxConcurrency: cfg.Search.MaxConcurrency,
	})
	transformer := transform.New()
	ranker := rank.New(llmClient)
	filterEngine := filters.NewEngine(suggestionCache)

	service := search.NewService(
		cfg.Search,
		tokenFetcher,
		registry,
		processor,
		orch,
		transformer,
		ranker,
		filterEngine,
		redisClient,
	)

	checker := health.NewChecker(redisClient, registry)

	rateLimiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: cfg.RateLimit.MaxRequestsPerMinute,
		Logger:               appLogger.GetLogger(),
	})
	defer rateLimiter.Stop()

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-User-ID",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))

	searchHandler := handlers.NewSearchHandler(service)
	healthHandler := handlers.NewHealthHandler(checker)
	streamHandler := handlers.NewStreamHandler(service)

	api := app.Group("/api/v1")

	api.Get("/health", healthHandler.HandleHealth)
	app.Get("/metrics", metrics.MetricsHandler())

	api.Use(auth.Middleware(auth.Config{
		Enabled:       cfg.Auth.Enabled,
		SessionHeader: cfg.Auth.SessionHeader,
	}))
	api.Use(rateLimiter.Middleware())
	api.Use(validation.Middleware(validation.Config{
		MaxQueryLength: cfg.Search.MaxQueryLength,
		Logger:         appLogger.GetLogger(),
	}))

	api.Post("/search", searchHandler.HandleSearch)

	api.Use("/search/stream", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	api.Get("/search/stream", websocket.New(streamHandler.HandleConnection))

	// Anything else on the search path gets an explicit 405, not a 404.
	api.All("/search", searchHandler.MethodNotAllowed)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
