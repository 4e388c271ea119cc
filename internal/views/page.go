// Package views renders the single analysis page.
package views

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/gofiber/template/html/v2"

	apperrors "finsight-go-api/internal/errors"
	"finsight-go-api/internal/format"
	"finsight-go-api/internal/models"
)

//go:embed templates
var templateFS embed.FS

const (
	// PageTemplate and Layout are the names passed to fiber.Ctx.Render.
	PageTemplate = "index"
	Layout       = "layouts/main"

	EChartsJS = "https://go-echarts.github.io/go-echarts-assets/assets/echarts.min.js"
)

// NewEngine returns the template engine over the embedded templates.
func NewEngine() *html.Engine {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		panic(err)
	}
	return html.NewFileSystem(http.FS(sub), ".html")
}

type ViewState string

const (
	StateIdle    ViewState = "idle"
	StateSuccess ViewState = "success"
	StateError   ViewState = "error"
)

type Metric struct {
	Label    string
	Value    string
	Negative bool
}

// PageView is everything the page template reads. A new value is built for
// every response, so nothing from an earlier request can leak into a later one.
type PageView struct {
	Title       string
	State       ViewState
	Ticker      string
	Error       string
	CompanyName string
	Exchange    string
	Metrics     []Metric
	InsightHTML template.HTML
	Model       string
	Chart       *ChartView
	Sources     []models.SearchResult
	GeneratedAt string
	EChartsJS   string
}

type ChartView struct {
	Element template.HTML
	Script  template.HTML
}

const pageTitle = "Grounded Finance Intelligence"

func IdleView() PageView {
	return PageView{Title: pageTitle, State: StateIdle, EChartsJS: EChartsJS}
}

// ErrorView shows err inline next to the submitted ticker.
func ErrorView(ticker string, err error) PageView {
	return PageView{
		Title:     pageTitle,
		State:     StateError,
		Ticker:    ticker,
		Error:     apperrors.UserMessage(err),
		EChartsJS: EChartsJS,
	}
}

// SuccessView renders a completed report.
func SuccessView(report *models.AnalysisReport) (PageView, error) {
	insight, err := RenderMarkdown(report.Insight.Markdown)
	if err != nil {
		return PageView{}, apperrors.Wrap(err, "render insight markdown")
	}

	view := PageView{
		Title:       pageTitle,
		State:       StateSuccess,
		Ticker:      report.Ticker,
		InsightHTML: insight,
		Model:       report.Insight.Model,
		Sources:     report.Sources,
		GeneratedAt: report.GeneratedAt.UTC().Format(time.RFC1123),
		EChartsJS:   EChartsJS,
	}

	if snap := report.Snapshot; snap != nil {
		view.CompanyName = snap.CompanyName
		view.Exchange = snap.Exchange
		view.Metrics = metrics(snap)
	}
	if report.Chart != nil {
		view.Chart = &ChartView{
			// Both come from the chart renderer, never from user input.
			Element: template.HTML(report.Chart.Element),
			Script:  template.HTML(report.Chart.Script),
		}
	}
	return view, nil
}

func metrics(s *models.MarketSnapshot) []Metric {
	cur := s.Currency
	out := []Metric{
		{Label: "Current Price", Value: format.Money(s.CurrentPrice, cur)},
		{Label: "Market Cap", Value: format.Compact(s.Fundamentals.MarketCap, cur)},
		{Label: "P/E Ratio", Value: format.Number(s.Fundamentals.PERatio, 2)},
		{Label: "52-Week Range", Value: format.OptionalMoney(s.Low52Week, cur) + " - " + format.OptionalMoney(s.High52Week, cur)},
	}
	if _, pct, ok := s.PeriodChange(); ok {
		out = append(out, Metric{Label: "Period Change", Value: format.SignedPercent(pct), Negative: pct.IsNegative()})
	}
	return out
}
