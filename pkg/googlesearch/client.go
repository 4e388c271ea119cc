// Package googlesearch wraps the Google Custom Search JSON API.
package googlesearch

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	apperrors "finsight-go-api/internal/errors"
	"finsight-go-api/internal/models"
)

const providerName = "google"

// Params narrows a search. Zero values leave the API defaults in place.
type Params struct {
	Query        string
	Num          int
	DateRestrict string
	Sites        []string
	SortByDate   bool
}

type Client struct {
	svc      *customsearch.Service
	engineID string
}

// NewClient builds a Custom Search client authenticated with an API key.
// Extra options are appended; tests use option.WithEndpoint.
func NewClient(ctx context.Context, apiKey, engineID string, opts ...option.ClientOption) (*Client, error) {
	if apiKey == "" || engineID == "" {
		return nil, fmt.Errorf("%w: google search api key and engine id are required", apperrors.ErrConfigInvalid)
	}

	svc, err := customsearch.NewService(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, apperrors.Wrap(err, "create custom search service")
	}

	return &Client{svc: svc, engineID: engineID}, nil
}

// Search runs one query and returns at most p.Num results.
func (c *Client) Search(ctx context.Context, p Params) ([]models.SearchResult, error) {
	query := p.Query
	call := c.svc.Cse.List().Cx(c.engineID)

	switch len(p.Sites) {
	case 0:
	case 1:
		call = call.SiteSearch(p.Sites[0]).SiteSearchFilter("i")
	default:
		// siteSearch takes a single site, so several are folded into the query.
		terms := make([]string, len(p.Sites))
		for i, site := range p.Sites {
			terms[i] = "site:" + site
		}
		query = fmt.Sprintf("%s (%s)", query, strings.Join(terms, " OR "))
	}

	call = call.Q(query)
	if p.Num > 0 {
		call = call.Num(int64(p.Num))
	}
	if p.DateRestrict != "" {
		call = call.DateRestrict(p.DateRestrict)
	}
	if p.SortByDate {
		call = call.Sort("date")
	}

	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, apperrors.NewProviderError(providerName, "search", "", apperrors.ErrSearchUnavailable, err)
	}

	results := make([]models.SearchResult, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item == nil || item.Link == "" {
			continue
		}
		results = append(results, models.SearchResult{
			Title:   strings.TrimSpace(item.Title),
			URL:     item.Link,
			Snippet: strings.TrimSpace(strings.ReplaceAll(item.Snippet, "\n", " ")),
			Source:  item.DisplayLink,
		})
		if p.Num > 0 && len(results) == p.Num {
			break
		}
	}
	return results, nil
}
