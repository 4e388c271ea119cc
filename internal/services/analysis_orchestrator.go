package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"finsight-go-api/internal/logging"
	"finsight-go-api/internal/models"
)

// SnapshotFetcher loads market data for a validated ticker.
type SnapshotFetcher interface {
	FetchSnapshot(ctx context.Context, ticker models.TickerQuery) (*models.MarketSnapshot, error)
}

// Searcher gathers web context. It reports no errors; an empty slice means no context.
type Searcher interface {
	Search(ctx context.Context, ticker models.TickerQuery, companyName string) []models.SearchResult
}

// InsightGenerator produces the markdown insight.
type InsightGenerator interface {
	Generate(ctx context.Context, snapshot *models.MarketSnapshot, results []models.SearchResult) (*models.Insight, error)
}

// ChartRenderer formats price history as an embeddable chart.
type ChartRenderer interface {
	Render(snapshot *models.MarketSnapshot) (*models.Chart, error)
	RenderPage(w io.Writer, snapshot *models.MarketSnapshot) error
}

// AnalysisOrchestrator runs validate, fetch, search, generate and chart in order.
// It keeps no state between calls.
type AnalysisOrchestrator struct {
	fetcher  SnapshotFetcher
	searcher Searcher
	insights InsightGenerator
	charts   ChartRenderer
	logger   zerolog.Logger
}

func NewAnalysisOrchestrator(fetcher SnapshotFetcher, searcher Searcher, insights InsightGenerator, charts ChartRenderer, logger zerolog.Logger) *AnalysisOrchestrator {
	return &AnalysisOrchestrator{
		fetcher:  fetcher,
		searcher: searcher,
		insights: insights,
		charts:   charts,
		logger:   logging.WithComponent(logger, "pipeline"),
	}
}

// Analyze runs the whole pipeline for raw user input. Invalid input returns
// before any provider is called; fetch and generation failures are fatal;
// search failures only leave the sources empty.
func (o *AnalysisOrchestrator) Analyze(ctx context.Context, raw string) (*models.AnalysisReport, error) {
	ticker, err := models.ParseTicker(raw)
	if err != nil {
		return nil, err
	}
	logger := logging.WithSymbol(o.logger, ticker.Symbol)
	started := time.Now()

	start := time.Now()
	snapshot, err := o.fetcher.FetchSnapshot(ctx, ticker)
	logging.LogStage(logger, "fetch", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	sources := o.searcher.Search(ctx, ticker, snapshot.CompanyName)
	logging.LogStage(logger, "search", time.Since(start), nil)
	if sources == nil {
		sources = []models.SearchResult{}
	}

	start = time.Now()
	insight, err := o.insights.Generate(ctx, snapshot, sources)
	logging.LogStage(logger, "generate", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	chart, err := o.charts.Render(snapshot)
	logging.LogStage(logger, "chart", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("render chart for %s: %w", ticker.Symbol, err)
	}

	logger.Info().
		Int("sources", len(sources)).
		Dur("total", time.Since(started)).
		Msg("Analysis completed")

	return &models.AnalysisReport{
		Ticker:      ticker.Symbol,
		Snapshot:    snapshot,
		Sources:     sources,
		Insight:     *insight,
		Chart:       chart,
		GeneratedAt: time.Now(),
	}, nil
}

// Snapshot validates raw and fetches market data only.
func (o *AnalysisOrchestrator) Snapshot(ctx context.Context, raw string) (*models.MarketSnapshot, error) {
	ticker, err := models.ParseTicker(raw)
	if err != nil {
		return nil, err
	}
	return o.fetcher.FetchSnapshot(ctx, ticker)
}

// Search validates raw and runs the search stage only.
func (o *AnalysisOrchestrator) Search(ctx context.Context, raw string) (string, []models.SearchResult, error) {
	ticker, err := models.ParseTicker(raw)
	if err != nil {
		return "", nil, err
	}
	results := o.searcher.Search(ctx, ticker, "")
	if results == nil {
		results = []models.SearchResult{}
	}
	return ticker.Symbol, results, nil
}

// WriteChartPage validates raw, fetches market data and writes a standalone chart page.
func (o *AnalysisOrchestrator) WriteChartPage(ctx context.Context, w io.Writer, raw string) error {
	snapshot, err := o.Snapshot(ctx, raw)
	if err != nil {
		return err
	}
	return o.charts.RenderPage(w, snapshot)
}
