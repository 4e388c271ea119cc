package views

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	apperrors "finsight-go-api/internal/errors"
	"finsight-go-api/internal/models"
)

func render(t *testing.T, view PageView) string {
	t.Helper()
	var buf bytes.Buffer
	if err := NewEngine().Render(&buf, PageTemplate, view, Layout); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return buf.String()
}

func sampleReport(sources []models.SearchResult) *models.AnalysisReport {
	return &models.AnalysisReport{
		Ticker: "AAPL",
		Snapshot: &models.MarketSnapshot{
			Symbol:       "AAPL",
			CompanyName:  "Apple Inc.",
			Currency:     "USD",
			CurrentPrice: decimal.RequireFromString("192.53"),
			Fundamentals: models.Fundamentals{
				MarketCap: decimal.NewNullDecimal(decimal.RequireFromString("2953000000000")),
			},
		},
		Sources:     sources,
		Insight:     models.Insight{Markdown: "## Outlook\n\n| Metric | Value |\n|---|---|\n| P/E | N/A |\n\n<script>alert(1)</script>", Model: "llama"},
		Chart:       &models.Chart{ID: "chart_AAPL", Element: `<div id="chart_AAPL"></div>`, Script: `<script>let goecharts_chart_AAPL = 1;</script>`},
		GeneratedAt: time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC),
	}
}

func TestIdleView(t *testing.T) {
	out := render(t, IdleView())
	if !strings.Contains(out, "Grounded Finance Intelligence") || !strings.Contains(out, `action="/analyze"`) {
		t.Error("idle page missing title or form")
	}
	for _, unwanted := range []string{"Comprehensive Insights", "Sources Consulted", `role="alert"`, "echarts.min.js"} {
		if strings.Contains(out, unwanted) {
			t.Errorf("idle page contains %q", unwanted)
		}
	}
}

func TestSuccessView(t *testing.T) {
	view, err := SuccessView(sampleReport([]models.SearchResult{
		{Title: "Apple <b>beats</b>", URL: "https://www.reuters.com/a", Source: "reuters.com"},
	}))
	if err != nil {
		t.Fatalf("SuccessView: %v", err)
	}
	out := render(t, view)

	for _, want := range []string{
		"Apple Inc. (AAPL)",
		"$192.53",
		"$2.95T",
		"<h2>Outlook</h2>",
		"<table>",
		"Sources Consulted",
		`href="https://www.reuters.com/a"`,
		"Apple &lt;b&gt;beats&lt;/b&gt;",
		`<div id="chart_AAPL"></div>`,
		"let goecharts_chart_AAPL",
		"echarts.min.js",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("success page missing %q", want)
		}
	}
	if strings.Contains(out, "alert(1)") {
		t.Error("script from markdown was not sanitized")
	}
}

func TestSuccessViewWithoutSources(t *testing.T) {
	view, err := SuccessView(sampleReport(nil))
	if err != nil {
		t.Fatalf("SuccessView: %v", err)
	}
	out := render(t, view)
	if strings.Contains(out, "Sources Consulted") {
		t.Error("sources section rendered without results")
	}
	if !strings.Contains(out, "Comprehensive Insights") {
		t.Error("insight section missing")
	}
}

func TestErrorView(t *testing.T) {
	out := render(t, ErrorView("ZZZZ", apperrors.NewProviderError("yahoo", "chart", "ZZZZ", apperrors.ErrTickerNotFound, nil)))
	if !strings.Contains(out, `role="alert"`) || !strings.Contains(out, "No market data was found") {
		t.Error("error message missing")
	}
	if !strings.Contains(out, `value="ZZZZ"`) {
		t.Error("submitted ticker not kept in the input")
	}
	if strings.Contains(out, "Comprehensive Insights") {
		t.Error("error page shows an insight")
	}
}

func TestRenderMarkdown(t *testing.T) {
	got, err := RenderMarkdown("**Buy** [link](https://example.com) <img src=x onerror=alert(1)>")
	if err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}
	s := string(got)
	if !strings.Contains(s, "<strong>Buy</strong>") {
		t.Errorf("bold missing: %s", s)
	}
	if !strings.Contains(s, `rel="nofollow`) {
		t.Errorf("link not marked nofollow: %s", s)
	}
	if strings.Contains(s, "onerror") {
		t.Errorf("unsafe attribute kept: %s", s)
	}
}
