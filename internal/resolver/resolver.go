// Package resolver finds candidate replacement links for platforms that
// have no confirmed link, by running site-restricted searches against the
// external search provider. Candidates are surfaced as-is; confirming them
// is someone else's job.
package resolver

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/VictorBaumgartner/detect-errors/internal/record"
	"github.com/VictorBaumgartner/detect-errors/pkg/platforms"
	"github.com/VictorBaumgartner/detect-errors/pkg/search"
)

// Resolver suggests one candidate URL per platform.
type Resolver struct {
	searcher search.Searcher
	sites    map[platforms.Kind]string
	logger   *zap.Logger
}

// New builds a resolver over the given search provider and the default
// suggestion sites.
func New(searcher search.Searcher, logger *zap.Logger) *Resolver {
	return &Resolver{
		searcher: searcher,
		sites:    platforms.SuggestionSites(),
		logger:   logger,
	}
}

// Suggest queries each suggestion site for the business and keeps the first
// hit per platform. A failed or empty search for one site just means no
// suggestion for that platform; it never fails the run.
func (r *Resolver) Suggest(ctx context.Context, profile record.Profile) map[platforms.Kind]string {
	query := strings.Join(profile.Terms(), " ")
	suggestions := make(map[platforms.Kind]string)
	if query == "" {
		return suggestions
	}

	// Stable site order keeps runs reproducible and logs readable.
	kinds := make([]platforms.Kind, 0, len(r.sites))
	for kind := range r.sites {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	for _, kind := range kinds {
		site := r.sites[kind]

		results, err := r.searcher.Search(ctx, query, site)
		if err != nil {
			r.logger.Warn("suggestion search failed",
				zap.String("site", site),
				zap.Error(err))
			continue
		}
		if len(results) == 0 {
			r.logger.Debug("no suggestion found",
				zap.String("site", site))
			continue
		}

		suggestions[kind] = results[0].URL
	}

	return suggestions
}
