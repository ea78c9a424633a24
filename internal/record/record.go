// Package record loads business records and extracts the raw material the
// verification pipeline works on: the set of URLs embedded anywhere in the
// record, and the identity attributes (name, city, activity tags) pages are
// scored against.
package record

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

// urlPattern matches scheme-prefixed URLs inside free text, stopping at
// whitespace and quoting characters.
var urlPattern = regexp.MustCompile(`https?://[^\s"'<>]+`)

// Profile holds the identity attributes of a business.
type Profile struct {
	Name string   `json:"name"`
	City string   `json:"city"`
	Tags []string `json:"tags"`
}

// Terms returns the candidate term set used for relevance scoring:
// {name, city} plus every activity tag, blanks removed.
func (p Profile) Terms() []string {
	terms := make([]string, 0, len(p.Tags)+2)
	for _, t := range append([]string{p.Name, p.City}, p.Tags...) {
		if strings.TrimSpace(t) != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

// Reference returns a short free-text reference string for similarity-based
// scoring ("name city tag1 tag2 ...").
func (p Profile) Reference() string {
	return strings.Join(p.Terms(), " ")
}

// Load reads and decodes a JSON business record from disk. This is the one
// fatal error path of a run: without a record there is nothing to verify.
func Load(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read record: %w", err)
	}

	var rec map[string]any
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}

	return rec, nil
}

// ExtractURLs walks an arbitrarily nested structure of maps, slices and
// scalars and returns every URL-like substring found in string leaves,
// deduplicated and sorted for reproducible output.
func ExtractURLs(v any) []string {
	seen := make(map[string]struct{})
	walk(v, seen)

	urls := make([]string, 0, len(seen))
	for u := range seen {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls
}

func walk(v any, seen map[string]struct{}) {
	switch val := v.(type) {
	case map[string]any:
		for _, child := range val {
			walk(child, seen)
		}
	case []any:
		for _, child := range val {
			walk(child, seen)
		}
	case string:
		for _, match := range urlPattern.FindAllString(val, -1) {
			seen[match] = struct{}{}
		}
	}
}

// ProfileFromRecord pulls the business identity out of a decoded record.
// The expected shape is info.name, info.addresses[0].city and info.tags;
// missing fields yield zero values rather than errors.
func ProfileFromRecord(rec map[string]any) Profile {
	info, _ := rec["info"].(map[string]any)

	var profile Profile
	profile.Name, _ = info["name"].(string)

	if addresses, ok := info["addresses"].([]any); ok && len(addresses) > 0 {
		if first, ok := addresses[0].(map[string]any); ok {
			profile.City, _ = first["city"].(string)
		}
	}

	if tags, ok := info["tags"].([]any); ok {
		for _, t := range tags {
			if s, ok := t.(string); ok {
				profile.Tags = append(profile.Tags, s)
			}
		}
	}

	return profile
}
