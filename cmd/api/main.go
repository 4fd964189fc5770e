package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"alfredoptarigan/resume-matcher/internal/app"
	"alfredoptarigan/resume-matcher/internal/config"
	"alfredoptarigan/resume-matcher/internal/handlers"
	"alfredoptarigan/resume-matcher/internal/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.Log.JSON, cfg.Log.Level)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer zlog.Sync()
	zlog.Info("config loaded", zap.String("env", cfg.Server.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := app.Build(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to initialize services", zap.Error(err))
	}
	defer deps.Close()

	// Initialize Handlers
	uploadHandler := handlers.NewUploadHandler(
		deps.Intake,
		deps.TempStorage,
		cfg.Storage.MaxFileSize,
		zlog,
	)
	companyHandler := handlers.NewCompanyHandler(deps.Matching, zlog)
	resumeHandler := handlers.NewResumeHandler(deps.Search, zlog)
	zlog.Info("handlers initialized")

	// Create Fiber app
	server := fiber.New(fiber.Config{
		AppName:      "Resume Matcher API",
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1<<20,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	server.Use(recover.New())
	server.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	server.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Health check
	api := server.Group("/api/v1")
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// API endpoints
	server.Post("/upload", uploadHandler.HandleUpload)
	server.Post("/company", companyHandler.HandleCompany)
	server.Get("/company/:name", companyHandler.HandleGetCompany)
	server.Get("/search_resumes", resumeHandler.HandleSearch)
	server.Get("/get_resume/:email", resumeHandler.HandleGetResume)
	server.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))

	if cfg.Storage.Provider == "local" {
		server.Static("/files", cfg.Storage.UploadPath)
	}

	// Root route
	server.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Resume Matcher API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /upload",
				"POST /company",
				"GET /company/:name",
				"GET /search_resumes?query=",
				"GET /get_resume/:email",
				"GET /api/v1/health",
				"GET /metrics",
			},
		})
	})

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		zlog.Info("shutting down server")
		if err := server.ShutdownWithTimeout(30 * time.Second); err != nil {
			zlog.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zlog.Info("server starting", zap.String("addr", addr))

	if err := server.Listen(addr); err != nil {
		zlog.Error("failed to start server", zap.Error(err))
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
