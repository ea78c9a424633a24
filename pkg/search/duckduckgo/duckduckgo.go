// Package duckduckgo implements the search capability against the
// DuckDuckGo HTML endpoint, which needs no API key. Result links come back
// wrapped in a redirect URL whose uddg parameter carries the real target.
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

	"github.com/VictorBaumgartner/detect-errors/pkg/search"
)

const (
	defaultBaseURL = "https://html.duckduckgo.com/html/"
	defaultTimeout = 10 * time.Second

	// The HTML endpoint blocks obvious bots, same as the platforms do.
	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:146.0) Gecko/20100101 Firefox/146.0"
)

// Client queries the DuckDuckGo HTML endpoint.
type Client struct {
	http *resty.Client
}

// New creates a client against the public endpoint.
func New() *Client {
	return NewWithBaseURL(defaultBaseURL, defaultTimeout)
}

// NewWithBaseURL creates a client against a custom endpoint, used by tests.
func NewWithBaseURL(baseURL string, timeout time.Duration) *Client {
	http := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent)

	return &Client{http: http}
}

// Name implements search.Searcher.
func (c *Client) Name() string { return "duckduckgo" }

// Search runs one query, optionally restricted to a site, and returns the
// hits in rank order.
func (c *Client) Search(ctx context.Context, query, site string) ([]search.Result, error) {
	if site != "" {
		query = query + " site:" + site
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("q", query).
		Get("")
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("search returned HTTP %d", resp.StatusCode())
	}

	return parseResults(resp.Body())
}

// parseResults extracts result links from the endpoint's HTML.
func parseResults(body []byte) ([]search.Result, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse search results: %w", err)
	}

	var results []search.Result
	doc.Find("a.result__a").Each(func(i int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		target := unwrapRedirect(href)
		if target == "" {
			return
		}
		results = append(results, search.Result{
			URL:   target,
			Title: strings.TrimSpace(s.Text()),
		})
	})

	return results, nil
}

// unwrapRedirect resolves DuckDuckGo's /l/?uddg=... indirection. Links that
// are already direct pass through unchanged.
func unwrapRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}

	if target := u.Query().Get("uddg"); target != "" {
		return target
	}

	if u.Scheme == "http" || u.Scheme == "https" {
		return href
	}
	return ""
}

func init() {
	if err := search.Register(New()); err != nil {
		panic(err)
	}
}
