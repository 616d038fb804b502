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

	"github.com/pvlab/backend/internal/api/handlers"
	"github.com/pvlab/backend/internal/archive"
	"github.com/pvlab/backend/internal/assistant"
	redisCache "github.com/pvlab/backend/internal/cache/redis"
	"github.com/pvlab/backend/internal/knowledge"
	"github.com/pvlab/backend/internal/llm"
	"github.com/pvlab/backend/internal/metrics"
	"github.com/pvlab/backend/internal/middleware/ratelimit"
	"github.com/pvlab/backend/internal/middleware/security"
	"github.com/pvlab/backend/internal/middleware/validation"
	"github.com/pvlab/backend/internal/quality"
	"github.com/pvlab/backend/internal/report"
	"github.com/pvlab/backend/internal/session"
	"github.com/pvlab/backend/internal/template"
	"github.com/pvlab/backend/pkg/config"
	appLogger "github.com/pvlab/backend/pkg/logger"
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

	appLogger.Info("Starting PV Lab Assistant API Server")

	metrics.Init()

	archiveStore, err := archive.NewStore(cfg.Archive.Path, cfg.Archive.Dir)
	if err != nil {
		appLogger.Fatal("Failed to create archive store", zap.Error(err))
	}
	defer archiveStore.Close()

	if err := archiveStore.InitSchema(); err != nil {
		appLogger.Fatal("Failed to initialize archive schema", zap.Error(err))
	}

	templates, err := template.NewRegistry(template.LabInfo{
		Name:     cfg.Reports.LabName,
		NABLCert: cfg.Reports.LabAccreditation,
		Address:  cfg.Reports.LabAddress,
		Phone:    cfg.Reports.LabPhone,
		Email:    cfg.Reports.LabEmail,
	})
	if err != nil {
		appLogger.Fatal("Failed to initialize templates", zap.Error(err))
	}

	llmClient := llm.NewClient(llm.Config{
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     time.Duration(cfg.LLM.TimeoutSec) * time.Second,
		MaxAttempts: cfg.LLM.MaxAttempts,
	})

	var responseCache assistant.ResponseCache
	if cfg.Redis.Enabled {
		cache, err := redisCache.NewClient(
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
			time.Duration(cfg.Redis.TTLSec)*time.Second,
		)
		if err != nil {
			appLogger.Warn("Redis unavailable, response caching disabled", zap.Error(err))
		} else {
			defer cache.Close()
			responseCache = cache
		}
	}

	sessions := session.NewStore(time.Duration(cfg.Session.TimeoutSec) * time.Second)
	kb := knowledge.NewStore()

	engine := assistant.NewEngine(llmClient, sessions, kb, responseCache)
	checker := quality.NewChecker(llmClient)
	generator := report.NewGenerator(llmClient, templates, nil, checker, archiveStore, cfg.Reports.OutputDir)

	// Expired sessions are swept on a fixed interval for the process
	// lifetime.
	sweepInterval := time.Duration(cfg.Session.SweepIntervalSec) * time.Second
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for range ticker.C {
			sessions.SweepExpired(time.Now())
			metrics.ActiveSessions.Set(float64(sessions.Len()))
		}
	}()

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{
		IsDevelopment: cfg.Logging.Level == "debug",
	}))

	limiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: cfg.RateLimit.MaxRequestsPerMinute,
		Logger:               appLogger.GetLogger(),
	})
	app.Use(limiter.Middleware())

	app.Use(validation.Middleware(validation.Config{
		Logger: appLogger.GetLogger(),
	}))

	assistantHandler := handlers.NewAssistantHandler(engine)
	reportHandler := handlers.NewReportHandler(generator, templates, archiveStore, checker, llmClient)
	knowledgeHandler := handlers.NewKnowledgeHandler(kb)
	wsHandler := handlers.NewWebSocketHandler(engine)

	api := app.Group("/api/v1")

	api.Post("/assistant/chat", assistantHandler.HandleChat)
	api.Post("/assistant/analyze", assistantHandler.HandleAnalyze)
	api.Post("/assistant/review", assistantHandler.HandleReview)
	api.Post("/assistant/troubleshoot", assistantHandler.HandleTroubleshoot)
	api.Post("/assistant/decision", assistantHandler.HandleDecision)
	api.Post("/assistant/intent", assistantHandler.HandleIntent)
	api.Get("/assistant/insights", assistantHandler.HandleInsights)

	api.Get("/sessions/stats", assistantHandler.GetSessionStats)
	api.Get("/sessions/:id", assistantHandler.GetSessionHistory)
	api.Delete("/sessions/:id", assistantHandler.DeleteSession)

	api.Post("/knowledge", knowledgeHandler.AddKnowledge)
	api.Get("/knowledge/categories", knowledgeHandler.ListCategories)
	api.Get("/knowledge/search", knowledgeHandler.SearchKnowledge)
	api.Get("/knowledge/:category", knowledgeHandler.GetKnowledge)

	api.Post("/reports/generate", reportHandler.GenerateReport)
	api.Get("/reports/templates", reportHandler.ListTemplates)
	api.Post("/reports/templates/validate", reportHandler.ValidateTemplate)
	api.Post("/reports/quality-check", reportHandler.QualityCheck)
	api.Post("/reports/validate-data", reportHandler.ValidateData)
	api.Post("/reports/enhance-text", reportHandler.EnhanceText)
	api.Get("/reports/:id/versions", reportHandler.GetVersions)
	api.Get("/reports/:id/summary", reportHandler.GetVersionSummary)
	api.Get("/reports/:id/compare", reportHandler.CompareVersions)
	api.Delete("/reports/:id/versions/:version", reportHandler.DeleteVersion)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/chat", websocket.New(wsHandler.HandleConnection))

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})

	app.Get("/metrics", metrics.MetricsHandler())

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
