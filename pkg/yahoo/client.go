package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	apperrors "finsight-go-api/internal/errors"
	"finsight-go-api/internal/models"
)

const (
	DefaultBaseURL = "https://query1.finance.yahoo.com"
	providerName   = "yahoo"
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

type Client struct {
	httpClient *resty.Client
}

// NewClient creates a chart API client. baseURL may be empty for the public endpoint.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json")

	return &Client{httpClient: client}
}

type ChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol               string  `json:"symbol"`
				Currency             string  `json:"currency"`
				ExchangeName         string  `json:"exchangeName"`
				FullExchangeName     string  `json:"fullExchangeName"`
				LongName             string  `json:"longName"`
				ShortName            string  `json:"shortName"`
				RegularMarketPrice   float64 `json:"regularMarketPrice"`
				ChartPreviousClose   float64 `json:"chartPreviousClose"`
				PreviousClose        float64 `json:"previousClose"`
				FiftyTwoWeekHigh     float64 `json:"fiftyTwoWeekHigh"`
				FiftyTwoWeekLow      float64 `json:"fiftyTwoWeekLow"`
				RegularMarketVolume  int64   `json:"regularMarketVolume"`
				GMTOffset            int64   `json:"gmtoffset"`
				ExchangeTimezoneName string  `json:"exchangeTimezoneName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []QuoteSeries `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// QuoteSeries holds the parallel OHLCV arrays; nulls mark missing bars.
type QuoteSeries struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

// GetSnapshot fetches daily bars for rng (e.g. "1mo") and the quote metadata.
// Fundamentals are left empty.
func (c *Client) GetSnapshot(ctx context.Context, symbol, rng string) (*models.MarketSnapshot, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("symbol", symbol).
		SetQueryParams(map[string]string{
			"interval":       "1d",
			"range":          rng,
			"includePrePost": "false",
		}).
		Get("/v8/finance/chart/{symbol}")
	if err != nil {
		return nil, apperrors.NewProviderError(providerName, "chart", symbol, apperrors.ErrProviderUnavailable, err)
	}

	var chartResp ChartResponse
	decodeErr := json.Unmarshal(resp.Body(), &chartResp)

	if chartResp.Chart.Error != nil && strings.EqualFold(chartResp.Chart.Error.Code, "Not Found") {
		return nil, apperrors.NewProviderError(providerName, "chart", symbol, apperrors.ErrTickerNotFound,
			fmt.Errorf("%s", chartResp.Chart.Error.Description))
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, apperrors.NewProviderError(providerName, "chart", symbol, apperrors.ErrTickerNotFound, nil)
	}
	if resp.IsError() {
		return nil, apperrors.NewProviderError(providerName, "chart", symbol, apperrors.ErrProviderUnavailable,
			fmt.Errorf("yahoo finance returned status %d", resp.StatusCode()))
	}
	if decodeErr != nil {
		return nil, apperrors.NewProviderError(providerName, "chart", symbol, apperrors.ErrProviderUnavailable, decodeErr)
	}
	if chartResp.Chart.Error != nil {
		return nil, apperrors.NewProviderError(providerName, "chart", symbol, apperrors.ErrProviderUnavailable,
			fmt.Errorf("%s: %s", chartResp.Chart.Error.Code, chartResp.Chart.Error.Description))
	}
	if len(chartResp.Chart.Result) == 0 {
		return nil, apperrors.NewProviderError(providerName, "chart", symbol, apperrors.ErrTickerNotFound,
			fmt.Errorf("no data returned for symbol %s", symbol))
	}

	result := chartResp.Chart.Result[0]
	history := buildHistory(result.Timestamp, result.Meta.GMTOffset, result.Indicators.Quote)
	if len(history) == 0 {
		return nil, apperrors.NewProviderError(providerName, "chart", symbol, apperrors.ErrTickerNotFound,
			fmt.Errorf("no price history for %s", symbol))
	}

	meta := result.Meta
	price := decimal.NewFromFloat(meta.RegularMarketPrice)
	if meta.RegularMarketPrice <= 0 {
		price = history[len(history)-1].Close
	}
	previousClose := meta.PreviousClose
	if previousClose <= 0 {
		previousClose = meta.ChartPreviousClose
	}

	name := meta.LongName
	if name == "" {
		name = meta.ShortName
	}
	exchange := meta.FullExchangeName
	if exchange == "" {
		exchange = meta.ExchangeName
	}

	return &models.MarketSnapshot{
		Symbol:        symbol,
		CompanyName:   name,
		Currency:      meta.Currency,
		Exchange:      exchange,
		CurrentPrice:  price,
		PreviousClose: positive(previousClose),
		High52Week:    positive(meta.FiftyTwoWeekHigh),
		Low52Week:     positive(meta.FiftyTwoWeekLow),
		Volume:        meta.RegularMarketVolume,
		History:       history,
		FetchedAt:     time.Now(),
		Source:        providerName,
	}, nil
}

// buildHistory drops bars without a close and returns the rest in
// chronological order, dated in the exchange's local calendar.
func buildHistory(timestamps []int64, gmtOffset int64, quotes []QuoteSeries) []models.PricePoint {
	if len(quotes) == 0 {
		return nil
	}
	q := quotes[0]

	points := make([]models.PricePoint, 0, len(timestamps))
	for i, ts := range timestamps {
		closePrice := at(q.Close, i)
		if closePrice == nil || *closePrice <= 0 {
			continue
		}
		c := decimal.NewFromFloat(*closePrice).Round(4)
		point := models.PricePoint{
			Date:  time.Unix(ts+gmtOffset, 0).UTC().Truncate(24 * time.Hour),
			Open:  orDefault(at(q.Open, i), c),
			High:  orDefault(at(q.High, i), c),
			Low:   orDefault(at(q.Low, i), c),
			Close: c,
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			point.Volume = *q.Volume[i]
		}
		points = append(points, point)
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})

	// Yahoo occasionally repeats the live bar with the same date; keep the latest.
	deduped := points[:0]
	for _, p := range points {
		if n := len(deduped); n > 0 && deduped[n-1].Date.Equal(p.Date) {
			deduped[n-1] = p
			continue
		}
		deduped = append(deduped, p)
	}
	return deduped
}

func at(values []*float64, i int) *float64 {
	if i < len(values) {
		return values[i]
	}
	return nil
}

func orDefault(v *float64, def decimal.Decimal) decimal.Decimal {
	if v == nil || *v <= 0 {
		return def
	}
	return decimal.NewFromFloat(*v).Round(4)
}

func positive(v float64) decimal.NullDecimal {
	if v <= 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(v))
}
