package handlers

import (
	"context"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"

	apperrors "finsight-go-api/internal/errors"
	"finsight-go-api/internal/models"
)

// RequestTimeout bounds one analysis: fetch, search and completion run back to back.
const RequestTimeout = 90 * time.Second

// Analyzer is the pipeline the handlers drive.
type Analyzer interface {
	Analyze(ctx context.Context, raw string) (*models.AnalysisReport, error)
	Snapshot(ctx context.Context, raw string) (*models.MarketSnapshot, error)
	Search(ctx context.Context, raw string) (string, []models.SearchResult, error)
	WriteChartPage(ctx context.Context, w io.Writer, raw string) error
}

type AnalysisHandler struct {
	analyzer Analyzer
}

func NewAnalysisHandler(analyzer Analyzer) *AnalysisHandler {
	return &AnalysisHandler{
		analyzer: analyzer,
	}
}

// PostAnalysis handles POST /v1/analysis
func (h *AnalysisHandler) PostAnalysis(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), RequestTimeout)
	defer cancel()

	var req models.AnalysisRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
			Code:    fiber.StatusBadRequest,
		})
	}

	report, err := h.analyzer.Analyze(ctx, req.Ticker)
	if err != nil {
		return errorJSON(c, "Failed to analyze ticker", err)
	}

	return c.JSON(report)
}

// GetSnapshot handles GET /v1/tickers/:symbol
func (h *AnalysisHandler) GetSnapshot(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 30*time.Second)
	defer cancel()

	snapshot, err := h.analyzer.Snapshot(ctx, c.Params("symbol"))
	if err != nil {
		return errorJSON(c, "Failed to fetch market data", err)
	}

	return c.JSON(snapshot)
}

// GetNews handles GET /v1/tickers/:symbol/news
func (h *AnalysisHandler) GetNews(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 30*time.Second)
	defer cancel()

	symbol, results, err := h.analyzer.Search(ctx, c.Params("symbol"))
	if err != nil {
		return errorJSON(c, "Failed to search", err)
	}

	return c.JSON(fiber.Map{
		"ticker":  symbol,
		"results": results,
		"count":   len(results),
	})
}

// GetChart handles GET /v1/tickers/:symbol/chart
func (h *AnalysisHandler) GetChart(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 30*time.Second)
	defer cancel()

	c.Type("html", "utf-8")
	if err := h.analyzer.WriteChartPage(ctx, c.Response().BodyWriter(), c.Params("symbol")); err != nil {
		c.Response().ResetBody()
		return errorJSON(c, "Failed to render chart", err)
	}
	return nil
}

func errorJSON(c *fiber.Ctx, title string, err error) error {
	code := apperrors.HTTPStatus(err)
	return c.Status(code).JSON(models.ErrorResponse{
		Error:   title,
		Message: apperrors.UserMessage(err),
		Code:    code,
	})
}

// CustomErrorHandler handles Fiber errors
func CustomErrorHandler(c *fiber.Ctx, err error) error {
	code := apperrors.HTTPStatus(err)

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(models.ErrorResponse{
		Error:   "Request failed",
		Message: err.Error(),
		Code:    code,
	})
}
