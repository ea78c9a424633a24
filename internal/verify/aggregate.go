package verify

import (
	"sort"

	"github.com/VictorBaumgartner/detect-errors/pkg/platforms"
)

// aggregate merges discovered-link verdicts and resolver suggestions into
// the final list, holding the per-platform invariants:
//   - at most one verdict per known platform (relevant beats irrelevant,
//     then higher score wins);
//   - a platform confirmed relevant from a discovered link suppresses its
//     suggestion;
//   - a platform with only a failed discovered link gets the suggestion
//     attached to that verdict as the corrected URL;
//   - a platform seen only in suggestions gets one synthetic verdict,
//     trusted pending confirmation.
//
// Unknown-platform entries (permissive mode) are kept per URL: "Unknown" is
// a label, not a platform, so the one-per-platform rule does not collapse
// unrelated unrecognized links.
func aggregate(verdicts []*Verdict, suggestions map[platforms.Kind]string) []Verdict {
	byPlatform := make(map[platforms.Kind]*Verdict)
	var unknown []*Verdict

	for _, verdict := range verdicts {
		if verdict.Platform == platforms.Unknown {
			unknown = append(unknown, verdict)
			continue
		}

		current, ok := byPlatform[verdict.Platform]
		if !ok || better(verdict, current) {
			byPlatform[verdict.Platform] = verdict
		}
	}

	for kind, suggested := range suggestions {
		if existing, ok := byPlatform[kind]; ok {
			if existing.Relevant {
				continue
			}
			existing.SuggestedURL = strPtr(suggested)
			continue
		}

		byPlatform[kind] = &Verdict{
			Platform:     kind,
			Relevant:     true,
			SuggestedURL: strPtr(suggested),
		}
	}

	merged := make([]*Verdict, 0, len(byPlatform)+len(unknown))
	for _, verdict := range byPlatform {
		merged = append(merged, verdict)
	}
	merged = append(merged, unknown...)

	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Platform != merged[j].Platform {
			return merged[i].Platform < merged[j].Platform
		}
		return deref(merged[i].InitialURL) < deref(merged[j].InitialURL)
	})

	out := make([]Verdict, len(merged))
	for i, verdict := range merged {
		out[i] = *verdict
	}
	return out
}

// better reports whether a should replace b as the platform's verdict.
func better(a, b *Verdict) bool {
	if a.Relevant != b.Relevant {
		return a.Relevant
	}
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	// Deterministic tie-break.
	return deref(a.InitialURL) < deref(b.InitialURL)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
