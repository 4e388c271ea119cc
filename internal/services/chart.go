package services

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"finsight-go-api/internal/config"
	"finsight-go-api/internal/models"
)

// EChartsAssetsHost serves echarts.min.js for pages embedding chart snippets.
const EChartsAssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

// ChartService renders price history as an ECharts line or candlestick chart.
type ChartService struct {
	style  string
	width  string
	height string
}

func NewChartService(style string) *ChartService {
	if style != config.ChartStyleCandlestick {
		style = config.ChartStyleLine
	}
	return &ChartService{style: style, width: "100%", height: "420px"}
}

// ChartID derives the element id from the symbol. The id doubles as a
// JavaScript identifier, so only letters, digits and underscores survive.
func ChartID(symbol string) string {
	var b strings.Builder
	b.WriteString("chart_")
	for _, r := range strings.ToUpper(symbol) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// Render returns an embeddable snippet for the snapshot's history.
func (s *ChartService) Render(snapshot *models.MarketSnapshot) (*models.Chart, error) {
	if len(snapshot.History) == 0 {
		return nil, fmt.Errorf("no price history to chart for %s", snapshot.Symbol)
	}

	var snippet struct{ Element, Script string }
	if s.style == config.ChartStyleCandlestick {
		sn := s.kline(snapshot).RenderSnippet()
		snippet.Element, snippet.Script = sn.Element, sn.Script
	} else {
		sn := s.line(snapshot).RenderSnippet()
		snippet.Element, snippet.Script = sn.Element, sn.Script
	}

	return &models.Chart{
		ID:      ChartID(snapshot.Symbol),
		Element: snippet.Element,
		Script:  snippet.Script,
	}, nil
}

// RenderPage writes a standalone HTML page holding only the chart.
func (s *ChartService) RenderPage(w io.Writer, snapshot *models.MarketSnapshot) error {
	if len(snapshot.History) == 0 {
		return fmt.Errorf("no price history to chart for %s", snapshot.Symbol)
	}
	if s.style == config.ChartStyleCandlestick {
		return s.kline(snapshot).Render(w)
	}
	return s.line(snapshot).Render(w)
}

func (s *ChartService) globalOptions(snapshot *models.MarketSnapshot, trigger string) []charts.GlobalOpts {
	title := snapshot.Symbol
	if snapshot.CompanyName != "" {
		title = fmt.Sprintf("%s (%s)", snapshot.CompanyName, snapshot.Symbol)
	}

	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			ChartID:    ChartID(snapshot.Symbol),
			Width:      s.width,
			Height:     s.height,
			PageTitle:  title,
			AssetsHost: EChartsAssetsHost,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: "Daily close, " + snapshot.Currency,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: trigger}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside", Start: 0, End: 100}),
		charts.WithYAxisOpts(opts.YAxis{Scale: opts.Bool(true)}),
	}
}

func dates(history []models.PricePoint) []string {
	out := make([]string, len(history))
	for i, p := range history {
		out[i] = p.Date.Format("2006-01-02")
	}
	return out
}

func (s *ChartService) line(snapshot *models.MarketSnapshot) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(s.globalOptions(snapshot, "axis")...)

	data := make([]opts.LineData, len(snapshot.History))
	for i, p := range snapshot.History {
		data[i] = opts.LineData{Value: p.Close.InexactFloat64()}
	}

	line.SetXAxis(dates(snapshot.History)).
		AddSeries("Close", data).
		SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{
			Smooth:     opts.Bool(true),
			ShowSymbol: opts.Bool(false),
		}))
	return line
}

func (s *ChartService) kline(snapshot *models.MarketSnapshot) *charts.Kline {
	kline := charts.NewKLine()
	kline.SetGlobalOptions(s.globalOptions(snapshot, "axis")...)

	data := make([]opts.KlineData, len(snapshot.History))
	for i, p := range snapshot.History {
		// ECharts expects [open, close, low, high].
		data[i] = opts.KlineData{Value: [4]float64{
			p.Open.InexactFloat64(),
			p.Close.InexactFloat64(),
			p.Low.InexactFloat64(),
			p.High.InexactFloat64(),
		}}
	}

	kline.SetXAxis(dates(snapshot.History)).AddSeries(snapshot.Symbol, data)
	return kline
}
