// Package verify runs the link verification pipeline: URLs discovered in a
// business record are classified, fetched, filtered, scored against the
// business identity, and merged with search-based replacement suggestions
// into one verdict per platform.
package verify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/VictorBaumgartner/detect-errors/internal/content"
	"github.com/VictorBaumgartner/detect-errors/internal/fetch"
	"github.com/VictorBaumgartner/detect-errors/internal/record"
	"github.com/VictorBaumgartner/detect-errors/internal/resolver"
	"github.com/VictorBaumgartner/detect-errors/internal/score"
	"github.com/VictorBaumgartner/detect-errors/pkg/platforms"
	"github.com/VictorBaumgartner/detect-errors/pkg/search"
)

// Options configure a verification run.
type Options struct {
	// Timeout bounds each fetch. Zero means the 10 second default.
	Timeout time.Duration
	// Locale is the Accept-Language value, e.g. "fr-FR".
	Locale string
	// Workers is the fetch concurrency. Zero means 4.
	Workers int
	// Policy decides what happens to URLs on unrecognized domains.
	Policy platforms.Policy
	// Strategy names the scoring strategy ("terms" or "similarity").
	Strategy string
	// Threshold overrides the strategy's relevance threshold when > 0.
	Threshold float64
	// RetryAttempts is the per-URL fetch attempt budget.
	RetryAttempts uint
	// Suggestions enables the search-based candidate resolver.
	Suggestions bool
}

// Verifier wires the pipeline stages together.
type Verifier struct {
	options    Options
	classifier *platforms.Classifier
	fetcher    *fetch.Client
	strategy   score.Strategy
	resolver   *resolver.Resolver
	logger     *zap.Logger
}

// New builds a Verifier. The searcher may be nil when suggestions are
// disabled.
func New(options Options, searcher search.Searcher, logger *zap.Logger) (*Verifier, error) {
	strategy, err := score.New(options.Strategy, options.Threshold)
	if err != nil {
		return nil, err
	}

	v := &Verifier{
		options:    options,
		classifier: platforms.NewClassifier(),
		strategy:   strategy,
		logger:     logger,
		fetcher: fetch.NewClient(fetch.Config{
			Timeout:       options.Timeout,
			Locale:        options.Locale,
			RetryAttempts: options.RetryAttempts,
		}, logger),
	}

	if options.Suggestions {
		if searcher == nil {
			return nil, fmt.Errorf("suggestions enabled but no search provider given")
		}
		v.resolver = resolver.New(searcher, logger)
	}

	return v, nil
}

// Run verifies every URL found in the record and returns the aggregated
// verdict list. Per-URL failures are recorded in their verdicts; the only
// errors returned here are setup-level.
func (v *Verifier) Run(ctx context.Context, rec map[string]any) ([]Verdict, error) {
	profile := record.ProfileFromRecord(rec)
	urls := record.ExtractURLs(rec)

	v.logger.Info("starting verification",
		zap.String("business", profile.Name),
		zap.String("city", profile.City),
		zap.Int("urls", len(urls)))

	// Replacement search is independent of link fetching; run it alongside.
	suggestionsCh := make(chan map[platforms.Kind]string, 1)
	go func() {
		if v.resolver == nil {
			suggestionsCh <- nil
			return
		}
		suggestionsCh <- v.resolver.Suggest(ctx, profile)
	}()

	pool := newWorkerPool(v.options.Workers, func(ctx context.Context, url string) *Verdict {
		return v.checkURL(ctx, url, profile)
	})
	pool.Start(ctx)

	go func() {
		for _, url := range urls {
			pool.Submit(ctx, url)
		}
		pool.Close()
	}()

	var verdicts []*Verdict
	for verdict := range pool.Results() {
		verdicts = append(verdicts, verdict)
	}

	suggestions := <-suggestionsCh

	result := aggregate(verdicts, suggestions)

	v.logger.Info("verification finished",
		zap.Int("verdicts", len(result)))

	return result, ctx.Err()
}

// checkURL is the per-URL unit of work: classify, fetch, filter, extract,
// score. Returns nil when the strict policy drops the URL.
func (v *Verifier) checkURL(ctx context.Context, url string, profile record.Profile) *Verdict {
	kind := v.classifier.Classify(url)
	if kind == platforms.Unknown && v.options.Policy != platforms.PolicyPermissive {
		v.logger.Debug("dropping URL on unrecognized domain",
			zap.String("url", url))
		return nil
	}

	verdict := &Verdict{
		InitialURL: strPtr(url),
		Platform:   kind,
	}

	outcome := v.fetcher.Fetch(ctx, url)
	if outcome.Err != nil {
		verdict.fail(ErrorTransport, outcome.Err.Error())
		return verdict
	}

	verdict.FinalURL = strPtr(outcome.FinalURL)
	verdict.HTTPStatus = intPtr(outcome.Status)

	// Short links and vanity domains reveal their platform only after
	// redirects; prefer the final URL's classification when it is known.
	if finalKind := v.classifier.Classify(outcome.FinalURL); finalKind != platforms.Unknown {
		verdict.Platform = finalKind
	}

	if outcome.Status >= 400 {
		verdict.fail(ErrorHTTPStatus, fmt.Sprintf("%d", outcome.Status))
		return verdict
	}

	if !outcome.Analyzable {
		verdict.fail(ErrorNotAnalyzable, outcome.ContentType)
		return verdict
	}

	extraction, err := content.Extract(outcome.Body)
	if err != nil {
		verdict.fail(ErrorUnparseable, err.Error())
		return verdict
	}
	for _, warning := range extraction.Warnings {
		v.logger.Warn("degraded content extraction",
			zap.String("url", url),
			zap.String("warning", warning))
	}

	result := score.Evaluate(v.strategy, profile, extraction)
	verdict.Score = result.Value
	verdict.Relevant = result.Relevant
	if !result.Relevant {
		verdict.Error = strPtr(notRecognizedMessage)
	}

	v.logger.Debug("url checked",
		zap.String("url", url),
		zap.String("platform", string(verdict.Platform)),
		zap.Float64("score", result.Value),
		zap.Bool("relevant", result.Relevant))

	return verdict
}
