// Package server assembles the Fiber application: middleware, views and routes.
package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"

	"finsight-go-api/internal/config"
	"finsight-go-api/internal/handlers"
	"finsight-go-api/internal/logging"
	"finsight-go-api/internal/views"
)

// New builds the app. The analyzer is shared by the page and the JSON API.
func New(cfg *config.Config, log zerolog.Logger, analyzer handlers.Analyzer) *fiber.App {
	app := fiber.New(fiber.Config{
		StrictRouting: true,
		CaseSensitive: true,
		ServerHeader:  "FinSight",
		AppName:       "FinSight v1.0",
		ReadTimeout:   10 * time.Second,
		WriteTimeout:  handlers.RequestTimeout + 10*time.Second,
		BodyLimit:     64 * 1024,
		Views:         views.NewEngine(),
		ErrorHandler:  handlers.CustomErrorHandler,
	})

	// Middleware stack
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${status} - ${latency} ${method} ${path} id=${locals:requestid}\n",
		Output: logging.WithComponent(log, "http"),
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
		MaxAge:       3600,
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimitPerMinute,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodGet && (c.Path() == "/health" || c.Path() == "/health/ready")
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Rate limit exceeded. Please try again later.",
			})
		},
	}))

	pageHandler := handlers.NewPageHandler(analyzer, logging.WithComponent(log, "page"))
	analysisHandler := handlers.NewAnalysisHandler(analyzer)
	healthHandler := handlers.NewHealthHandler(cfg)

	// Routes
	app.Get("/", pageHandler.Index)
	app.Post("/analyze", pageHandler.Analyze)

	app.Get("/health", healthHandler.Health)
	app.Get("/health/ready", healthHandler.Ready)

	// API v1 routes
	v1 := app.Group("/v1")
	v1.Post("/analysis", analysisHandler.PostAnalysis)
	v1.Get("/tickers/:symbol", analysisHandler.GetSnapshot)
	v1.Get("/tickers/:symbol/news", analysisHandler.GetNews)
	v1.Get("/tickers/:symbol/chart", analysisHandler.GetChart)

	return app
}
