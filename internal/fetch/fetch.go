// Package fetch retrieves candidate link targets over HTTP. It follows
// redirects, records the final resolved URL, and hands back content only
// when the response looks like an HTML document worth analyzing.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"go.uber.org/zap"
)

// UserAgent is the browser identity sent with every request. Several
// platforms serve a stripped or interstitial page to unknown clients, which
// would make every relevance check fail, so a realistic identity is part of
// the fetching contract rather than cosmetics.
const UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:146.0) Gecko/20100101 Firefox/146.0"

const (
	defaultTimeout = 10 * time.Second
	maxRedirects   = 10
	maxBodySize    = 2 << 20 // 2MB is plenty for profile pages
)

// Config holds fetcher settings.
type Config struct {
	// Timeout bounds each fetch, redirects included.
	Timeout time.Duration
	// Locale is sent as Accept-Language for content negotiation
	// (e.g. "fr-FR").
	Locale string
	// RetryAttempts is the total number of tries per URL. 1 disables
	// retrying; transient transport errors are the only thing retried.
	RetryAttempts uint
}

// Outcome is the immutable result of fetching one URL. A transport failure
// yields an Outcome with Err set and no final URL or status; it is never a
// pipeline error.
type Outcome struct {
	InitialURL  string
	FinalURL    string
	Status      int
	ContentType string
	// Body holds the response content, only when the response passed the
	// analyzability filter.
	Body []byte
	// Analyzable reports whether Body is worth parsing (HTML document,
	// non-asset URL).
	Analyzable bool
	Err        error
}

// Client fetches URLs with browser-like headers and bounded retries.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     *zap.Logger
}

// NewClient builds a fetch client. A zero Timeout falls back to 10 seconds.
func NewClient(config Config, logger *zap.Logger) *Client {
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}
	if config.RetryAttempts == 0 {
		config.RetryAttempts = 1
	}

	httpClient := &http.Client{
		Timeout: config.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("too many redirects: %d", len(via))
			}
			// Keep negotiation headers through the redirect chain.
			if len(via) > 0 {
				req.Header = via[0].Header.Clone()
			}
			return nil
		},
	}

	return &Client{
		httpClient: httpClient,
		config:     config,
		logger:     logger,
	}
}

// Fetch retrieves one URL and returns its Outcome. The outcome always comes
// back non-nil; network failures and timeouts are recorded in Outcome.Err.
func (c *Client) Fetch(ctx context.Context, rawURL string) *Outcome {
	outcome := &Outcome{InitialURL: rawURL}

	resp, err := c.get(ctx, rawURL)
	if err != nil {
		outcome.Err = err
		c.logger.Debug("fetch failed",
			zap.String("url", rawURL),
			zap.Error(err))
		return outcome
	}
	defer resp.Body.Close()

	outcome.FinalURL = resp.Request.URL.String()
	outcome.Status = resp.StatusCode
	outcome.ContentType = resp.Header.Get("Content-Type")
	outcome.Analyzable = Analyzable(outcome.FinalURL, outcome.ContentType)

	if outcome.Analyzable {
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if err != nil {
			outcome.Err = fmt.Errorf("failed to read body: %w", err)
			outcome.Analyzable = false
			return outcome
		}
		outcome.Body = body
	}

	return outcome
}

// get performs the HTTP request, retrying transient transport errors once
// with a short jittered delay.
func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	return retry.DoWithData(
		func() (*http.Response, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
			if err != nil {
				return nil, retry.Unrecoverable(err)
			}
			req.Header.Set("User-Agent", UserAgent)
			req.Header.Set("Accept", "text/html,application/xhtml+xml")
			if c.config.Locale != "" {
				req.Header.Set("Accept-Language", c.config.Locale)
			}
			return c.httpClient.Do(req)
		},
		retry.Context(ctx),
		retry.Attempts(c.config.RetryAttempts),
		retry.Delay(200*time.Millisecond),
		retry.MaxJitter(100*time.Millisecond),
		retry.RetryIf(isRetryable),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debug("retrying fetch",
				zap.String("url", rawURL),
				zap.Uint("attempt", n+1),
				zap.Error(err))
		}),
	)
}

// isRetryable reports whether a transport error is worth a second attempt.
// Context cancellation and deadline expiry are not: the caller gave up.
func isRetryable(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
