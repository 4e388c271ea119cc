package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"finsight-go-api/internal/config"
	"finsight-go-api/internal/logging"
	"finsight-go-api/internal/models"
	"finsight-go-api/pkg/alphavantage"
	"finsight-go-api/pkg/yahoo"
)

// QuoteProvider returns price history and quote metadata for a symbol.
type QuoteProvider interface {
	GetSnapshot(ctx context.Context, symbol, rng string) (*models.MarketSnapshot, error)
}

// OverviewProvider returns company fundamentals and the company name.
type OverviewProvider interface {
	Configured() bool
	GetOverview(ctx context.Context, symbol string) (*models.Fundamentals, string, error)
}

// MarketDataService fetches a snapshot from the quote provider and enriches it
// with fundamentals from the overview provider when one is configured.
type MarketDataService struct {
	quotes       QuoteProvider
	overview     OverviewProvider
	historyRange string
	timeout      time.Duration
	logger       zerolog.Logger
}

func NewMarketDataService(cfg *config.Config, logger zerolog.Logger) *MarketDataService {
	return &MarketDataService{
		quotes:       yahoo.NewClient("", cfg.MarketData.Timeout),
		overview:     alphavantage.NewClient(cfg.MarketData.AlphaVantageKey, "", cfg.MarketData.Timeout),
		historyRange: cfg.MarketData.HistoryRange,
		timeout:      cfg.MarketData.Timeout,
		logger:       logging.WithComponent(logger, "market_data"),
	}
}

// NewMarketDataServiceWith builds the service over explicit providers. overview may be nil.
func NewMarketDataServiceWith(quotes QuoteProvider, overview OverviewProvider, historyRange string, timeout time.Duration, logger zerolog.Logger) *MarketDataService {
	return &MarketDataService{
		quotes:       quotes,
		overview:     overview,
		historyRange: historyRange,
		timeout:      timeout,
		logger:       logging.WithComponent(logger, "market_data"),
	}
}

// FetchSnapshot fetches quotes and then, when configured, fundamentals. A quote
// failure fails the fetch; an overview failure only leaves fundamentals empty.
func (s *MarketDataService) FetchSnapshot(ctx context.Context, ticker models.TickerQuery) (*models.MarketSnapshot, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	snapshot, err := s.quotes.GetSnapshot(fetchCtx, ticker.Symbol, s.historyRange)
	logging.LogAPICall(s.logger, "yahoo", "chart", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	if s.overview == nil || !s.overview.Configured() {
		return snapshot, nil
	}

	start = time.Now()
	fundamentals, name, err := s.overview.GetOverview(fetchCtx, ticker.Symbol)
	logging.LogAPICall(s.logger, "alphavantage", "OVERVIEW", time.Since(start), err)
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", ticker.Symbol).Msg("Fundamentals unavailable")
		return snapshot, nil
	}

	if fundamentals != nil {
		snapshot.Fundamentals = *fundamentals
	}
	if snapshot.CompanyName == "" {
		snapshot.CompanyName = name
	}
	return snapshot, nil
}
