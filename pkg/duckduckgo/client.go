// Package duckduckgo scrapes the DuckDuckGo HTML results page. It needs no API key
// and serves as the fallback search provider.
package duckduckgo

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	apperrors "finsight-go-api/internal/errors"
	"finsight-go-api/internal/models"
)

const (
	DefaultBaseURL = "https://html.duckduckgo.com"
	providerName   = "duckduckgo"
)

type Client struct {
	client *resty.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36")

	return &Client{client: client}
}

// Search returns up to limit organic results for query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{"q": query, "kl": "us-en"}).
		Post("/html/")
	if err != nil {
		return nil, apperrors.NewProviderError(providerName, "search", "", apperrors.ErrSearchUnavailable, err)
	}
	if resp.IsError() {
		return nil, apperrors.NewProviderError(providerName, "search", "", apperrors.ErrSearchUnavailable,
			fmt.Errorf("duckduckgo returned status %d", resp.StatusCode()))
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, apperrors.NewProviderError(providerName, "search", "", apperrors.ErrSearchUnavailable, err)
	}

	return parseResults(doc, limit), nil
}

func parseResults(doc *goquery.Document, limit int) []models.SearchResult {
	var results []models.SearchResult

	doc.Find("div.result").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if s.HasClass("result--ad") {
			return true
		}

		anchor := s.Find("a.result__a").First()
		title := strings.TrimSpace(anchor.Text())
		href, _ := anchor.Attr("href")
		link := resolveLink(href)
		if title == "" || link == "" {
			return true
		}

		source := strings.TrimSpace(s.Find(".result__url").First().Text())
		if source == "" {
			if u, err := url.Parse(link); err == nil {
				source = u.Host
			}
		}

		results = append(results, models.SearchResult{
			Title:   title,
			URL:     link,
			Snippet: strings.Join(strings.Fields(s.Find(".result__snippet").First().Text()), " "),
			Source:  source,
		})
		return limit <= 0 || len(results) < limit
	})

	return results
}

// resolveLink unwraps DuckDuckGo redirect links (//duckduckgo.com/l/?uddg=...).
func resolveLink(href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := u.Query().Get("uddg"); target != "" {
		if u, err = url.Parse(target); err != nil {
			return ""
		}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}
