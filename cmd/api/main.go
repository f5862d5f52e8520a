package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"jobfit/cv-analyzer/internal/config"
	"jobfit/cv-analyzer/internal/handlers"
	"jobfit/cv-analyzer/internal/logger"
	"jobfit/cv-analyzer/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	zlog.Info("config loaded", zap.String("env", cfg.Server.Env))

	// Initialize services
	extractor := services.NewPDFExtractor(services.ExtractorOptions{
		MaxDecodedSize:    cfg.Extractor.MaxFileSize,
		ParseTimeout:      cfg.Extractor.ParseTimeout,
		MaxAttempts:       cfg.Extractor.RetryMaxAttempts,
		RetryInitialDelay: cfg.Extractor.RetryInitialDelay,
	}, zlog)

	ctx := context.Background()
	geminiService, err := services.NewGeminiService(ctx, services.GeminiOptions{
		APIKey:   cfg.Gemini.APIKey,
		Endpoint: cfg.Gemini.Endpoint,
		Model:    cfg.Gemini.Model,
		Timeout:  cfg.Gemini.Timeout,
	}, zlog)
	if err != nil {
		zlog.Fatal("failed to initialize Gemini AI", zap.Error(err))
	}
	zlog.Info("Gemini AI initialized", zap.String("model", cfg.Gemini.Model))

	analyzerService := services.NewAnalyzer(geminiService, services.NewNormalizer(zlog), zlog)
	analyzeHandler := handlers.NewAnalyzeHandler(analyzerService, extractor, zlog)

	// Create Fiber app. The body limit leaves headroom for base64 overhead
	// on top of the decoded-size cap.
	app := fiber.New(fiber.Config{
		AppName:      "CV Match Analyzer API",
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 2 * time.Minute,
		BodyLimit:    int(cfg.Extractor.MaxFileSize) * 3,
		ErrorHandler: apiErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	// Routes
	api := app.Group("/api/v1")

	// Two rate-limit windows on the analysis endpoints, mirroring the
	// per-minute and hourly operator thresholds.
	api.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimit.PerMinute,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "too many requests, please try again later",
			})
		},
	}))
	api.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimit.PerHour,
		Expiration: time.Hour,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "hourly rate limit exceeded, please try again later",
			})
		},
	}))

	api.Post("/analyze", analyzeHandler.HandleAnalyze)
	api.Post("/upload-and-analyze", analyzeHandler.HandleUploadAndAnalyze)

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"time":   time.Now().UTC(),
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		zlog.Info("shutting down server")
		if err := app.Shutdown(); err != nil {
			zlog.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zlog.Info("server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		zlog.Fatal("failed to start server", zap.Error(err))
	}
}

func apiErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
