package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	apperrors "finsight-go-api/internal/errors"
	"finsight-go-api/internal/models"
	"finsight-go-api/internal/views"
)

// PageHandler serves the HTML page. Every response is built from a fresh
// PageView; nothing is remembered between submissions.
type PageHandler struct {
	analyzer Analyzer
	logger   zerolog.Logger
}

func NewPageHandler(analyzer Analyzer, logger zerolog.Logger) *PageHandler {
	return &PageHandler{
		analyzer: analyzer,
		logger:   logger,
	}
}

// Index handles GET /
func (h *PageHandler) Index(c *fiber.Ctx) error {
	return c.Render(views.PageTemplate, views.IdleView(), views.Layout)
}

// Analyze handles POST /analyze
func (h *PageHandler) Analyze(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), RequestTimeout)
	defer cancel()

	var req models.AnalysisRequest
	if err := c.BodyParser(&req); err != nil {
		req.Ticker = c.FormValue("ticker")
	}
	submitted := strings.ToUpper(strings.TrimSpace(req.Ticker))

	report, err := h.analyzer.Analyze(ctx, req.Ticker)
	if err != nil {
		h.logError(submitted, err)
		return h.renderError(c, submitted, err)
	}

	view, err := views.SuccessView(report)
	if err != nil {
		h.logError(submitted, err)
		return h.renderError(c, submitted, err)
	}
	return c.Render(views.PageTemplate, view, views.Layout)
}

func (h *PageHandler) renderError(c *fiber.Ctx, ticker string, err error) error {
	return c.Status(apperrors.HTTPStatus(err)).
		Render(views.PageTemplate, views.ErrorView(ticker, err), views.Layout)
}

func (h *PageHandler) logError(ticker string, err error) {
	event := h.logger.Error()
	if apperrors.Is(err, apperrors.ErrInvalidTicker) || apperrors.Is(err, apperrors.ErrTickerNotFound) {
		event = h.logger.Info()
	}
	event.Str("symbol", ticker).Err(err).Msg("Analysis failed")
}
