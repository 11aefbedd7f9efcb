package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/shubhamsonni/AI-Resume-Analyzer/internal/auth"
	"github.com/shubhamsonni/AI-Resume-Analyzer/internal/client"
	"github.com/shubhamsonni/AI-Resume-Analyzer/internal/config"
	"github.com/shubhamsonni/AI-Resume-Analyzer/internal/handler"
	"github.com/shubhamsonni/AI-Resume-Analyzer/internal/middleware"
	"github.com/shubhamsonni/AI-Resume-Analyzer/internal/service"
	"github.com/shubhamsonni/AI-Resume-Analyzer/internal/state"
	"github.com/shubhamsonni/AI-Resume-Analyzer/internal/store"
	"github.com/shubhamsonni/AI-Resume-Analyzer/internal/worker"
	ws "github.com/shubhamsonni/AI-Resume-Analyzer/internal/websocket"
)

func main() {
	// .env is optional; real deployments use environment variables
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Test Redis connection
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis not available: %v", err)
	}

	// Initialize Asynq client
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()

	// Initialize validator
	validate := validator.New()

	// Initialize WebSocket hub and process-state tracker
	hub := ws.NewHub()
	go hub.Run()
	tracker := state.NewTracker()

	// Initialize external clients (mock fallbacks when not configured)
	var storageClient client.StorageClient
	if cfg.Storage.AccessKeyID != "" && cfg.Storage.SecretAccessKey != "" {
		s3Client, err := client.NewS3Client(&cfg.Storage)
		if err != nil {
			log.Fatalf("Failed to initialize storage client: %v", err)
		}
		storageClient = s3Client
	} else {
		log.Println("Info: object storage not configured, using mock storage")
		storageClient = client.NewMockStorageClient()
	}

	converter := client.NewConvertClient(&cfg.Convert)

	var feedbackClient client.FeedbackClient
	aiClient := client.NewAIClient(&cfg.AI)
	if aiClient.IsConfigured() {
		feedbackClient = aiClient
	} else {
		log.Println("Info: AI feedback service not configured, using mock feedback")
		feedbackClient = client.NewMockFeedbackClient()
	}

	// Initialize Zitadel JWKS verifier (optional - falls back to legacy JWT)
	var jwksVerifier *auth.JWKSVerifier
	if cfg.Zitadel.Issuer != "" {
		var err error
		jwksVerifier, err = auth.NewJWKSVerifier(&cfg.Zitadel)
		if err != nil {
			log.Printf("Warning: JWKS verifier not initialized: %v", err)
		} else {
			defer jwksVerifier.Close()
		}
	}

	// Initialize the submission service and its pipeline worker
	recordStore := store.NewRedisStore(redisClient)
	submissionService := service.NewSubmissionService(recordStore, asynqClient, tracker, storageClient)
	submissionWorker := worker.NewSubmissionWorker(
		submissionService,
		storageClient,
		converter,
		feedbackClient,
		hub,
		cfg.AI.AnalysisBudget(),
	)

	// Initialize handlers
	submissionHandler := handler.NewSubmissionHandler(submissionService, validate)

	// Initialize auth handler for ForwardAuth verification
	var tokenVerifier auth.TokenVerifier
	if jwksVerifier != nil {
		tokenVerifier = jwksVerifier
	}
	authHandler := handler.NewAuthHandler(tokenVerifier, cfg.JWT.Secret)

	// Initialize middleware (with fallback support)
	var apiAuthMiddleware fiber.Handler
	if cfg.Gateway.Enabled {
		// Behind Traefik: auth is handled by ForwardAuth, read X-User-* headers
		log.Println("Info: Gateway mode enabled — using header-based auth")
		apiAuthMiddleware = middleware.GatewayAuthMiddleware()
	} else {
		// Direct mode: auth is handled by the backend itself
		var authMiddleware *middleware.AuthMiddleware
		if jwksVerifier != nil && cfg.JWT.Secret != "" {
			authMiddleware = middleware.NewAuthMiddlewareWithFallback(jwksVerifier, cfg.JWT.Secret)
		} else if jwksVerifier != nil {
			authMiddleware = middleware.NewAuthMiddleware(jwksVerifier)
		} else {
			authMiddleware = middleware.NewLegacyAuthMiddleware(cfg.JWT.Secret)
		}
		apiAuthMiddleware = authMiddleware.Authenticate()
	}
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    25 * 1024 * 1024, // resume cap plus multipart overhead
	})

	// Global middleware
	app.Use(recover.New())
	isDebug := strings.EqualFold(cfg.Server.LogLevel, "debug")
	logFormat := "[${time}] ${status} - ${latency} ${method} ${path}\n"
	if isDebug {
		logFormat = "[${time}] ${status} - ${latency} ${method} ${path} ${queryParams} ${body} ${reqHeaders}\n"
		log.Println("Debug logging enabled")
	}
	app.Use(logger.New(logger.Config{
		Format: logFormat,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Base URL - timestamp
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"timestamp": time.Now().Unix(),
		})
	})

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"services": fiber.Map{
				"redis":   recordStore.Ping(c.Context()) == nil,
				"storage": cfg.Storage.AccessKeyID != "",
				"convert": converter.IsConfigured(),
				"ai":      aiClient.IsConfigured(),
				"auth":    jwksVerifier != nil || cfg.JWT.Secret != "",
			},
		})
	})

	// ForwardAuth verification endpoint (internal, called by Traefik)
	app.Get("/auth/verify", authHandler.Verify)

	// API routes
	api := app.Group("/api", apiAuthMiddleware)

	// Submission routes
	submissions := api.Group("/submissions")
	submissions.Post("/", rateLimiter.SubmitLimit(cfg.RateLimit.SubmitPerHour), submissionHandler.Start)
	submissions.Get("/", submissionHandler.List)
	submissions.Delete("/", rateLimiter.WipeLimit(cfg.RateLimit.WipePerHour), submissionHandler.Wipe)
	submissions.Get("/:id", submissionHandler.Get)
	submissions.Get("/:id/status", submissionHandler.Status)
	submissions.Post("/:id/reset", submissionHandler.Reset)

	// WebSocket routes
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/submissions/:id", websocket.New(func(c *websocket.Conn) {
		id := c.Params("id")

		// First frame is the current state so late subscribers catch up.
		hub.HandleConnection(c, id, ws.StatusFrame(id, tracker.Get(id)))
	}))

	// Start Asynq worker server
	go startWorkerServer(cfg, submissionWorker)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// Start server
	addr := ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func startWorkerServer(cfg *config.Config, submissionWorker *worker.SubmissionWorker) {
	asynqLogLevel := asynq.InfoLevel
	if strings.EqualFold(cfg.Server.LogLevel, "debug") {
		asynqLogLevel = asynq.DebugLevel
	} else if strings.EqualFold(cfg.Server.LogLevel, "warn") {
		asynqLogLevel = asynq.WarnLevel
	} else if strings.EqualFold(cfg.Server.LogLevel, "error") {
		asynqLogLevel = asynq.ErrorLevel
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"analysis": 10,
			},
			LogLevel: asynqLogLevel,
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(service.TaskTypeAnalyze, submissionWorker.ProcessTask)

	if err := srv.Run(mux); err != nil {
		log.Printf("Asynq worker error: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "SERVICE_ERROR",
			"message": message,
		},
	})
}
