package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	apperrors "finsight-go-api/internal/errors"
	"finsight-go-api/internal/models"
)

const (
	DefaultBaseURL = "https://www.alphavantage.co"
	providerName   = "alphavantage"
)

type Client struct {
	apiKey     string
	httpClient *resty.Client
}

func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:     apiKey,
		httpClient: resty.New().SetBaseURL(baseURL).SetTimeout(timeout),
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// OverviewResponse mirrors the OVERVIEW function. Numbers arrive as strings
// and "None" or "-" mark missing values.
type OverviewResponse struct {
	Symbol               string `json:"Symbol"`
	Name                 string `json:"Name"`
	Description          string `json:"Description"`
	Sector               string `json:"Sector"`
	Industry             string `json:"Industry"`
	MarketCapitalization string `json:"MarketCapitalization"`
	PERatio              string `json:"PERatio"`
	DividendYield        string `json:"DividendYield"`
	EPS                  string `json:"EPS"`
	Beta                 string `json:"Beta"`
	Note                 string `json:"Note"`
	Information          string `json:"Information"`
	ErrorMessage         string `json:"Error Message"`
}

// GetOverview returns the company fundamentals for symbol.
func (c *Client) GetOverview(ctx context.Context, symbol string) (*models.Fundamentals, string, error) {
	if !c.Configured() {
		return nil, "", apperrors.NewProviderError(providerName, "overview", symbol, apperrors.ErrProviderUnavailable,
			fmt.Errorf("api key not configured"))
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"function": "OVERVIEW",
			"symbol":   symbol,
			"apikey":   c.apiKey,
		}).
		Get("/query")
	if err != nil {
		return nil, "", apperrors.NewProviderError(providerName, "overview", symbol, apperrors.ErrProviderUnavailable, err)
	}
	if resp.IsError() {
		return nil, "", apperrors.NewProviderError(providerName, "overview", symbol, apperrors.ErrProviderUnavailable,
			fmt.Errorf("alpha vantage returned status %d", resp.StatusCode()))
	}

	var overview OverviewResponse
	if err := json.Unmarshal(resp.Body(), &overview); err != nil {
		return nil, "", apperrors.NewProviderError(providerName, "overview", symbol, apperrors.ErrProviderUnavailable, err)
	}

	// Rate limit and key problems come back as 200 with a message field.
	if msg := firstNonEmpty(overview.Note, overview.Information, overview.ErrorMessage); msg != "" {
		return nil, "", apperrors.NewProviderError(providerName, "overview", symbol, apperrors.ErrProviderUnavailable,
			fmt.Errorf("%s", msg))
	}
	if overview.Symbol == "" {
		return nil, "", apperrors.NewProviderError(providerName, "overview", symbol, apperrors.ErrTickerNotFound,
			fmt.Errorf("no overview returned for symbol %s", symbol))
	}

	return &models.Fundamentals{
		MarketCap:     parseNumber(overview.MarketCapitalization),
		PERatio:       parseNumber(overview.PERatio),
		DividendYield: parseNumber(overview.DividendYield),
		EPS:           parseNumber(overview.EPS),
		Beta:          parseNumber(overview.Beta),
		Sector:        cleanText(overview.Sector),
		Industry:      cleanText(overview.Industry),
		Description:   cleanText(overview.Description),
	}, cleanText(overview.Name), nil
}

func parseNumber(s string) decimal.NullDecimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

func cleanText(s string) string {
	s = strings.TrimSpace(s)
	if s == "None" || s == "-" {
		return ""
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
