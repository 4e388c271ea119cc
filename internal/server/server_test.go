package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"finsight-go-api/internal/config"
	apperrors "finsight-go-api/internal/errors"
	"finsight-go-api/internal/handlers"
	"finsight-go-api/internal/models"
	"finsight-go-api/internal/services"
)

type stubFetcher struct {
	calls int
	fail  map[string]error
}

func (s *stubFetcher) FetchSnapshot(ctx context.Context, t models.TickerQuery) (*models.MarketSnapshot, error) {
	s.calls++
	if err := s.fail[t.Symbol]; err != nil {
		return nil, err
	}
	return &models.MarketSnapshot{
		Symbol:       t.Symbol,
		CompanyName:  t.Symbol + " Corp",
		Currency:     "USD",
		CurrentPrice: decimal.NewFromInt(100),
		History: []models.PricePoint{
			{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Close: decimal.NewFromInt(95)},
			{Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Close: decimal.NewFromInt(100)},
		},
	}, nil
}

type stubSearcher struct {
	calls   int
	results map[string][]models.SearchResult
}

func (s *stubSearcher) Search(ctx context.Context, t models.TickerQuery, company string) []models.SearchResult {
	s.calls++
	return s.results[t.Symbol]
}

type stubGenerator struct {
	calls int
	fail  map[string]error
}

func (s *stubGenerator) Generate(ctx context.Context, snap *models.MarketSnapshot, results []models.SearchResult) (*models.Insight, error) {
	s.calls++
	if err := s.fail[snap.Symbol]; err != nil {
		return nil, err
	}
	return &models.Insight{Markdown: "## Insight for " + snap.Symbol, Model: "test"}, nil
}

type env struct {
	fetcher   *stubFetcher
	searcher  *stubSearcher
	generator *stubGenerator
	handler   func(*http.Request) *http.Response
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		fetcher: &stubFetcher{fail: map[string]error{
			"ZZZZ": apperrors.NewProviderError("yahoo", "chart", "ZZZZ", apperrors.ErrTickerNotFound, nil),
			"DOWN": apperrors.NewProviderError("yahoo", "chart", "DOWN", apperrors.ErrProviderUnavailable, nil),
		}},
		searcher: &stubSearcher{results: map[string][]models.SearchResult{
			"AAPL": {{Title: "Apple news", URL: "https://www.reuters.com/apple", Source: "reuters.com"}},
		}},
		generator: &stubGenerator{fail: map[string]error{
			"FAIL": apperrors.NewProviderError("completion", "generate", "FAIL", apperrors.ErrGenerationUnavailable, nil),
		}},
	}

	orchestrator := services.NewAnalysisOrchestrator(e.fetcher, e.searcher, e.generator,
		services.NewChartService(config.ChartStyleLine), zerolog.Nop())

	cfg := &config.Config{RateLimitPerMinute: 1000, Completion: config.CompletionConfig{APIKey: "k"}}
	app := New(cfg, zerolog.Nop(), orchestrator)

	e.handler = func(req *http.Request) *http.Response {
		resp, err := app.Test(req, 5000)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		return resp
	}
	return e
}

func (e *env) submit(t *testing.T, ticker string) (int, string) {
	t.Helper()
	form := url.Values{"ticker": {ticker}}
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := e.handler(req)
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestIndexPage(t *testing.T) {
	e := newEnv(t)
	resp := e.handler(httptest.NewRequest(http.MethodGet, "/", nil))
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "Grounded Finance Intelligence") {
		t.Error("page title missing")
	}
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
		t.Errorf("content type = %q", resp.Header.Get("Content-Type"))
	}
}

func TestSubmitSuccess(t *testing.T) {
	e := newEnv(t)
	status, body := e.submit(t, "aapl")

	if status != http.StatusOK {
		t.Fatalf("status = %d: %s", status, body)
	}
	for _, want := range []string{"AAPL Corp (AAPL)", "<h2>Insight for AAPL</h2>", "Sources Consulted", "https://www.reuters.com/apple", `id="chart_AAPL"`} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestSubmitWithoutSearchResults(t *testing.T) {
	e := newEnv(t)
	status, body := e.submit(t, "MSFT")

	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if strings.Contains(body, "Sources Consulted") {
		t.Error("sources section rendered with no results")
	}
	if !strings.Contains(body, "Insight for MSFT") {
		t.Error("insight missing")
	}
}

func TestSubmitInvalidTickerSkipsProviders(t *testing.T) {
	e := newEnv(t)
	status, body := e.submit(t, "NOT A TICKER!")

	if status != http.StatusBadRequest {
		t.Errorf("status = %d", status)
	}
	if !strings.Contains(body, "Please enter a valid stock ticker") {
		t.Error("validation message missing")
	}
	if e.fetcher.calls+e.searcher.calls+e.generator.calls != 0 {
		t.Error("providers called for invalid input")
	}
}

func TestSubmitGenerationFailure(t *testing.T) {
	e := newEnv(t)
	status, body := e.submit(t, "FAIL")

	if status != http.StatusServiceUnavailable {
		t.Errorf("status = %d", status)
	}
	if !strings.Contains(body, "Unable to generate AI insights at this moment.") {
		t.Error("generation error missing")
	}
	if strings.Contains(body, "Comprehensive Insights") {
		t.Error("insight section rendered on failure")
	}
}

func TestSequentialSubmissionsReplaceResults(t *testing.T) {
	e := newEnv(t)

	_, first := e.submit(t, "AAPL")
	if !strings.Contains(first, "Insight for AAPL") {
		t.Fatal("first submission missing insight")
	}

	_, second := e.submit(t, "NVDA")
	if !strings.Contains(second, "Insight for NVDA") {
		t.Error("second submission missing its insight")
	}
	for _, stale := range []string{"Insight for AAPL", "AAPL Corp", "reuters.com/apple", "Sources Consulted"} {
		if strings.Contains(second, stale) {
			t.Errorf("second page still shows %q", stale)
		}
	}

	_, third := e.submit(t, "FAIL")
	if strings.Contains(third, "NVDA") {
		t.Error("error page shows the previous result")
	}
}

func TestAnalysisAPI(t *testing.T) {
	e := newEnv(t)

	tests := []struct {
		ticker string
		status int
	}{
		{"AAPL", http.StatusOK},
		{"", http.StatusBadRequest},
		{"ZZZZ", http.StatusNotFound},
		{"DOWN", http.StatusBadGateway},
		{"FAIL", http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("ticker=%q", tt.ticker), func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/analysis", strings.NewReader(fmt.Sprintf(`{"ticker":%q}`, tt.ticker)))
			req.Header.Set("Content-Type", "application/json")
			resp := e.handler(req)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if tt.status == http.StatusOK {
				var report models.AnalysisReport
				if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if report.Ticker != "AAPL" || len(report.Sources) != 1 {
					t.Errorf("unexpected report %+v", report)
				}
				return
			}
			var errResp models.ErrorResponse
			if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if errResp.Code != tt.status || errResp.Message == "" {
				t.Errorf("unexpected error body %+v", errResp)
			}
		})
	}
}

func TestTickerEndpoints(t *testing.T) {
	e := newEnv(t)

	resp := e.handler(httptest.NewRequest(http.MethodGet, "/v1/tickers/aapl", nil))
	var snap models.MarketSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil || snap.Symbol != "AAPL" {
		t.Errorf("snapshot = %+v (%v)", snap, err)
	}

	resp = e.handler(httptest.NewRequest(http.MethodGet, "/v1/tickers/MSFT/news", nil))
	var news struct {
		Ticker  string                `json:"ticker"`
		Results []models.SearchResult `json:"results"`
		Count   int                   `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&news); err != nil {
		t.Fatalf("decode news: %v", err)
	}
	if resp.StatusCode != http.StatusOK || news.Ticker != "MSFT" || news.Results == nil || news.Count != 0 {
		t.Errorf("news = %+v (status %d)", news, resp.StatusCode)
	}

	resp = e.handler(httptest.NewRequest(http.MethodGet, "/v1/tickers/AAPL/chart", nil))
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "goecharts_chart_AAPL") {
		t.Errorf("chart page status %d", resp.StatusCode)
	}

	resp = e.handler(httptest.NewRequest(http.MethodGet, "/v1/tickers/ZZZZ/chart", nil))
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("chart for unknown ticker status = %d", resp.StatusCode)
	}
}

func TestHealth(t *testing.T) {
	e := newEnv(t)

	resp := e.handler(httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	var ready struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ready); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ready.Status != "degraded" || ready.Checks["completion"] != "ok" || ready.Checks["google_search"] != "not_configured" {
		t.Errorf("unexpected readiness %+v", ready)
	}
}

func TestHealthReportsVersion(t *testing.T) {
	e := newEnv(t)

	resp := e.handler(httptest.NewRequest(http.MethodGet, "/health", nil))
	var health struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if health.Status != "healthy" || health.Version != handlers.Version {
		t.Errorf("unexpected health %+v", health)
	}
}
