package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"finsight-go-api/internal/config"
	"finsight-go-api/internal/logging"
	"finsight-go-api/internal/models"
	"finsight-go-api/pkg/duckduckgo"
	"finsight-go-api/pkg/googlesearch"
)

// PrimarySearcher is the structured search backend (Google Custom Search).
type PrimarySearcher interface {
	Search(ctx context.Context, p googlesearch.Params) ([]models.SearchResult, error)
}

// FallbackSearcher is the keyless search backend (DuckDuckGo).
type FallbackSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error)
}

// SearchService gathers web context for a ticker. It never fails: provider
// errors are logged and produce an empty result.
type SearchService struct {
	primary      PrimarySearcher
	fallback     FallbackSearcher
	maxResults   int
	dateRestrict string
	sites        []string
	timeout      time.Duration
	logger       zerolog.Logger
}

// NewSearchService wires Google when both secrets are set and DuckDuckGo always.
func NewSearchService(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *SearchService {
	logger = logging.WithComponent(logger, "search")

	var primary PrimarySearcher
	if cfg.GoogleSearchEnabled() {
		client, err := googlesearch.NewClient(ctx, cfg.Search.GoogleAPIKey, cfg.Search.GoogleEngineID)
		if err != nil {
			logger.Warn().Err(err).Msg("Google search disabled")
		} else {
			primary = client
		}
	}

	return &SearchService{
		primary:      primary,
		fallback:     duckduckgo.NewClient("", cfg.Search.Timeout),
		maxResults:   cfg.Search.MaxResults,
		dateRestrict: cfg.Search.DateRestrict,
		sites:        cfg.Search.Sites,
		timeout:      cfg.Search.Timeout,
		logger:       logger,
	}
}

// NewSearchServiceWith builds the service over explicit backends. Either may be nil.
func NewSearchServiceWith(primary PrimarySearcher, fallback FallbackSearcher, cfg config.SearchConfig, logger zerolog.Logger) *SearchService {
	return &SearchService{
		primary:      primary,
		fallback:     fallback,
		maxResults:   cfg.MaxResults,
		dateRestrict: cfg.DateRestrict,
		sites:        cfg.Sites,
		timeout:      cfg.Timeout,
		logger:       logging.WithComponent(logger, "search"),
	}
}

// SearchQuery is the query sent to the search providers.
func SearchQuery(ticker models.TickerQuery, companyName string) string {
	q := ticker.Symbol + " stock analysis latest financial insights"
	if companyName != "" {
		q = companyName + " " + q
	}
	return q
}

// Search returns at most maxResults results, trying the primary backend first.
func (s *SearchService) Search(ctx context.Context, ticker models.TickerQuery, companyName string) []models.SearchResult {
	searchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	query := SearchQuery(ticker, companyName)

	if s.primary != nil {
		start := time.Now()
		results, err := s.primary.Search(searchCtx, googlesearch.Params{
			Query:        query,
			Num:          s.maxResults,
			DateRestrict: s.dateRestrict,
			Sites:        s.sites,
			SortByDate:   true,
		})
		logging.LogAPICall(s.logger, "google", "customsearch", time.Since(start), err)
		if err == nil && len(results) > 0 {
			return s.limit(results)
		}
		if err != nil {
			s.logger.Warn().Err(err).Str("symbol", ticker.Symbol).Msg("Primary search failed, falling back")
		}
	}

	if s.fallback == nil {
		return []models.SearchResult{}
	}

	start := time.Now()
	results, err := s.fallback.Search(searchCtx, query, s.maxResults)
	logging.LogAPICall(s.logger, "duckduckgo", "html", time.Since(start), err)
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", ticker.Symbol).Msg("Search unavailable, continuing without context")
		return []models.SearchResult{}
	}
	return s.limit(results)
}

func (s *SearchService) limit(results []models.SearchResult) []models.SearchResult {
	if results == nil {
		return []models.SearchResult{}
	}
	if s.maxResults > 0 && len(results) > s.maxResults {
		return results[:s.maxResults]
	}
	return results
}
