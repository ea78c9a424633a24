// Package score decides whether an extracted page represents a given
// business. One strategy is picked by configuration; the structured-data
// containment check runs first as a strict-pass shortcut regardless of the
// configured strategy.
package score

import (
	"fmt"
	"strings"

	"github.com/VictorBaumgartner/detect-errors/internal/content"
	"github.com/VictorBaumgartner/detect-errors/internal/record"
)

// Score is the outcome of evaluating one page against one profile.
type Score struct {
	// Value is in [0,1].
	Value float64
	// Relevant reports whether Value cleared the strategy threshold.
	Relevant bool
	// Matched lists the profile terms found in the page, as evidence.
	Matched []string
}

// Strategy scores a page extraction against a business profile. Strategies
// are pure: same inputs, same score, no side effects.
type Strategy interface {
	Name() string
	Score(profile record.Profile, ext *content.Extraction) Score
}

// New returns the strategy for a config name. Known names are "terms"
// (weighted term coverage, the default) and "similarity" (normalized
// edit-distance ratio, for profiles without activity tags).
func New(name string, threshold float64) (Strategy, error) {
	switch strings.ToLower(name) {
	case "", "terms":
		if threshold == 0 {
			threshold = DefaultTermThreshold
		}
		return TermCoverage{Threshold: threshold}, nil
	case "similarity":
		if threshold == 0 {
			threshold = DefaultSimilarityThreshold
		}
		return Similarity{Threshold: threshold}, nil
	default:
		return nil, fmt.Errorf("unknown scoring strategy: %s", name)
	}
}

// Evaluate applies the structured containment shortcut and falls back to the
// configured strategy. This is the single entry point the pipeline uses.
func Evaluate(strategy Strategy, profile record.Profile, ext *content.Extraction) Score {
	if s, ok := structuredContainment(profile, ext); ok {
		return s
	}
	return strategy.Score(profile, ext)
}

// structuredContainment passes a page outright when one structured-data
// record contains the name, the city and every activity tag. This mirrors
// how platforms embed the authoritative business identity in page markup.
func structuredContainment(profile record.Profile, ext *content.Extraction) (Score, bool) {
	terms := profile.Terms()
	if len(terms) == 0 {
		return Score{}, false
	}

	for _, rec := range ext.Records {
		normalized := rec.Normalized()
		if normalized == "" {
			continue
		}
		if containsAll(normalized, terms) {
			return Score{Value: 1.0, Relevant: true, Matched: terms}, true
		}
	}

	return Score{}, false
}

func containsAll(haystack string, terms []string) bool {
	for _, term := range terms {
		if !strings.Contains(haystack, strings.ToLower(term)) {
			return false
		}
	}
	return true
}
