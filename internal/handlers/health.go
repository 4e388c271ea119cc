package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"finsight-go-api/internal/config"
)

const serviceName = "finsight-go-api"

// Version is reported by /health and the version command.
const Version = "1.0.0"

type HealthHandler struct {
	startTime time.Time
	checks    fiber.Map
}

func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{
		startTime: time.Now(),
		checks: fiber.Map{
			"market_data":   "ok",
			"fundamentals":  configured(cfg.MarketData.AlphaVantageKey != ""),
			"google_search": configured(cfg.GoogleSearchEnabled()),
			"web_search":    "ok",
			"completion":    configured(cfg.Completion.APIKey != ""),
		},
	}
}

func configured(ok bool) string {
	if ok {
		return "ok"
	}
	return "not_configured"
}

// Health handles GET /health
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"service": serviceName,
		"version": Version,
		"uptime":  time.Since(h.startTime).String(),
		"time":    time.Now(),
	})
}

// Ready handles GET /health/ready. Missing optional providers report "degraded"
// but the page still serves.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	status := "ready"
	for _, v := range h.checks {
		if v != "ok" {
			status = "degraded"
		}
	}
	return c.JSON(fiber.Map{
		"status": status,
		"checks": h.checks,
	})
}
