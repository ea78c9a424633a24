package score

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/VictorBaumgartner/detect-errors/internal/content"
	"github.com/VictorBaumgartner/detect-errors/internal/record"
)

const (
	// DefaultTermThreshold is the coverage a page needs to count as
	// relevant under TermCoverage. Empirically chosen; tunable.
	DefaultTermThreshold = 0.5

	// DefaultSimilarityThreshold is the minimum similarity ratio under
	// Similarity. Lower than the term threshold because whole-string
	// similarity is a much coarser signal.
	DefaultSimilarityThreshold = 0.3
)

// TermCoverage scores a page by the fraction of profile terms ({name, city}
// plus activity tags) present in the flattened corpus, case-insensitive.
type TermCoverage struct {
	Threshold float64
}

func (TermCoverage) Name() string { return "terms" }

func (t TermCoverage) Score(profile record.Profile, ext *content.Extraction) Score {
	terms := profile.Terms()
	if len(terms) == 0 {
		// Nothing to verify, so no claim of relevance can be made.
		return Score{}
	}

	corpus := strings.ToLower(ext.CorpusText())

	var matched []string
	for _, term := range terms {
		if strings.Contains(corpus, strings.ToLower(term)) {
			matched = append(matched, term)
		}
	}

	value := float64(len(matched)) / float64(len(terms))
	return Score{
		Value:    value,
		Relevant: value >= t.Threshold,
		Matched:  matched,
	}
}

// Similarity scores a page by the best normalized Levenshtein ratio between
// the profile's reference string and each corpus line. Meant for profiles
// without activity tags, where term coverage has too few terms to be
// meaningful.
type Similarity struct {
	Threshold float64
}

func (Similarity) Name() string { return "similarity" }

func (s Similarity) Score(profile record.Profile, ext *content.Extraction) Score {
	reference := strings.ToLower(profile.Reference())
	if reference == "" {
		return Score{}
	}

	var best float64
	var bestLine string
	for _, line := range ext.Corpus {
		ratio := similarityRatio(reference, strings.ToLower(line))
		if ratio > best {
			best = ratio
			bestLine = line
		}
	}

	result := Score{Value: best, Relevant: best >= s.Threshold}
	if result.Relevant {
		result.Matched = []string{bestLine}
	}
	return result
}

// similarityRatio is 1 - dist/maxLen over runes, so identical strings score
// 1.0 and fully different strings score 0.
func similarityRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)

	maxLen := len([]rune(a))
	if lb := len([]rune(b)); lb > maxLen {
		maxLen = lb
	}
	if maxLen == 0 {
		return 0
	}

	ratio := 1.0 - float64(dist)/float64(maxLen)
	if ratio < 0 {
		return 0
	}
	return ratio
}
