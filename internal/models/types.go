package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TickerQuery is a validated, upper-cased stock symbol
type TickerQuery struct {
	Symbol string `json:"symbol"`
}

// AnalysisRequest represents the incoming JSON analysis request
type AnalysisRequest struct {
	Ticker string `json:"ticker" form:"ticker"`
}

// PricePoint is one daily bar of price history
type PricePoint struct {
	Date   time.Time       `json:"date"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume int64           `json:"volume"`
}

// MarketSnapshot is a point-in-time bundle of metrics and price history for one ticker.
// Optional fields are NullDecimal and render as "N/A" when the provider has no value.
type MarketSnapshot struct {
	Symbol        string              `json:"symbol"`
	CompanyName   string              `json:"companyName"`
	Currency      string              `json:"currency"`
	Exchange      string              `json:"exchange"`
	CurrentPrice  decimal.Decimal     `json:"currentPrice"`
	PreviousClose decimal.NullDecimal `json:"previousClose"`
	High52Week    decimal.NullDecimal `json:"high52Week"`
	Low52Week     decimal.NullDecimal `json:"low52Week"`
	Volume        int64               `json:"volume"`
	Fundamentals  Fundamentals        `json:"fundamentals"`
	History       []PricePoint        `json:"history"`
	FetchedAt     time.Time           `json:"fetchedAt"`
	Source        string              `json:"source"`
}

// Fundamentals holds descriptive company fields from the overview provider
type Fundamentals struct {
	MarketCap     decimal.NullDecimal `json:"marketCap"`
	PERatio       decimal.NullDecimal `json:"peRatio"`
	DividendYield decimal.NullDecimal `json:"dividendYield"`
	EPS           decimal.NullDecimal `json:"eps"`
	Beta          decimal.NullDecimal `json:"beta"`
	Sector        string              `json:"sector,omitempty"`
	Industry      string              `json:"industry,omitempty"`
	Description   string              `json:"description,omitempty"`
}

// PeriodChange returns the close-to-close change across the history window
// and its percentage. ok is false when fewer than two points exist.
func (s *MarketSnapshot) PeriodChange() (change, percent decimal.Decimal, ok bool) {
	if len(s.History) < 2 {
		return decimal.Zero, decimal.Zero, false
	}
	first := s.History[0].Close
	last := s.History[len(s.History)-1].Close
	change = last.Sub(first)
	if first.IsZero() {
		return change, decimal.Zero, true
	}
	return change, change.Div(first).Mul(decimal.NewFromInt(100)), true
}

// SearchResult is one web search hit
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"`
}

// Insight is the markdown narrative returned by the completion API
type Insight struct {
	Markdown    string    `json:"markdown"`
	Model       string    `json:"model"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Chart is an embeddable chart snippet
type Chart struct {
	ID      string `json:"id"`
	Element string `json:"element"`
	Script  string `json:"script"`
}

// AnalysisReport is the full result of one pipeline run
type AnalysisReport struct {
	Ticker      string          `json:"ticker"`
	Snapshot    *MarketSnapshot `json:"snapshot"`
	Sources     []SearchResult  `json:"sources"`
	Insight     Insight         `json:"insight"`
	Chart       *Chart          `json:"chart,omitempty"`
	GeneratedAt time.Time       `json:"generatedAt"`
}

// ErrorResponse represents API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}
