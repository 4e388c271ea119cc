package services

import (
	"context"
	"io"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/shopspring/decimal"

	"finsight-go-api/internal/models"
	"finsight-go-api/pkg/googlesearch"
)

func sampleSnapshot(symbol string) *models.MarketSnapshot {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	return &models.MarketSnapshot{
		Symbol:       symbol,
		CompanyName:  "Apple Inc.",
		Currency:     "USD",
		CurrentPrice: decimal.RequireFromString("192.53"),
		High52Week:   decimal.NewNullDecimal(decimal.RequireFromString("199.62")),
		Low52Week:    decimal.NewNullDecimal(decimal.RequireFromString("164.08")),
		Fundamentals: models.Fundamentals{
			MarketCap: decimal.NewNullDecimal(decimal.RequireFromString("2953000000000")),
			PERatio:   decimal.NewNullDecimal(decimal.RequireFromString("29.8")),
		},
		History: []models.PricePoint{
			{Date: day(2), Open: decimal.NewFromInt(184), High: decimal.NewFromInt(186), Low: decimal.NewFromInt(183), Close: decimal.NewFromInt(185)},
			{Date: day(3), Open: decimal.NewFromInt(185), High: decimal.NewFromInt(189), Low: decimal.NewFromInt(184), Close: decimal.NewFromInt(188)},
			{Date: day(4), Open: decimal.NewFromInt(188), High: decimal.NewFromInt(190), Low: decimal.NewFromInt(181), Close: decimal.NewFromInt(181)},
		},
	}
}

type fakeQuotes struct {
	calls    int
	snapshot *models.MarketSnapshot
	err      error
}

func (f *fakeQuotes) GetSnapshot(ctx context.Context, symbol, rng string) (*models.MarketSnapshot, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	s := *f.snapshot
	s.Symbol = symbol
	return &s, nil
}

type fakeOverview struct {
	configured   bool
	calls        int
	fundamentals *models.Fundamentals
	name         string
	err          error
}

func (f *fakeOverview) Configured() bool { return f.configured }

func (f *fakeOverview) GetOverview(ctx context.Context, symbol string) (*models.Fundamentals, string, error) {
	f.calls++
	return f.fundamentals, f.name, f.err
}

type fakePrimary struct {
	calls   int
	params  googlesearch.Params
	results []models.SearchResult
	err     error
}

func (f *fakePrimary) Search(ctx context.Context, p googlesearch.Params) ([]models.SearchResult, error) {
	f.calls++
	f.params = p
	return f.results, f.err
}

type fakeFallback struct {
	calls   int
	query   string
	results []models.SearchResult
	err     error
}

func (f *fakeFallback) Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error) {
	f.calls++
	f.query = query
	return f.results, f.err
}

type fakeChat struct {
	calls    int
	messages []*schema.Message
	content  string
	err      error
}

func (f *fakeChat) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.calls++
	f.messages = input
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.content, nil), nil
}

type fakeFetcher struct {
	calls int
	err   error
}

func (f *fakeFetcher) FetchSnapshot(ctx context.Context, ticker models.TickerQuery) (*models.MarketSnapshot, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return sampleSnapshot(ticker.Symbol), nil
}

type fakeSearcher struct {
	calls   int
	results []models.SearchResult
}

func (f *fakeSearcher) Search(ctx context.Context, ticker models.TickerQuery, companyName string) []models.SearchResult {
	f.calls++
	return f.results
}

type fakeGenerator struct {
	calls   int
	sources []models.SearchResult
	err     error
}

func (f *fakeGenerator) Generate(ctx context.Context, snapshot *models.MarketSnapshot, results []models.SearchResult) (*models.Insight, error) {
	f.calls++
	f.sources = results
	if f.err != nil {
		return nil, f.err
	}
	return &models.Insight{Markdown: "## " + snapshot.Symbol + " outlook", Model: "test-model", GeneratedAt: time.Now()}, nil
}

type fakeCharts struct{ calls int }

func (f *fakeCharts) Render(snapshot *models.MarketSnapshot) (*models.Chart, error) {
	f.calls++
	return &models.Chart{ID: ChartID(snapshot.Symbol)}, nil
}

func (f *fakeCharts) RenderPage(w io.Writer, snapshot *models.MarketSnapshot) error {
	f.calls++
	_, err := io.WriteString(w, "<html>"+snapshot.Symbol+"</html>")
	return err
}
