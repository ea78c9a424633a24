// Package platforms maps URLs to the social networks and map services a
// business profile may link to. Classification is based on the registrable
// domain of the URL host (public-suffix aware), so "www.facebook.com" and
// "m.facebook.com" both resolve to the same platform.
package platforms

import (
	"net/url"
	"sort"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Kind identifies a recognized platform.
type Kind string

const (
	Facebook        Kind = "Facebook"
	Instagram       Kind = "Instagram"
	Twitter         Kind = "Twitter"
	LinkedIn        Kind = "LinkedIn"
	GoogleMaps      Kind = "Google"
	GoogleMapsShort Kind = "Google Maps (short)"
	TripAdvisor     Kind = "TripAdvisor"
	YouTube         Kind = "YouTube"
	Unknown         Kind = "Unknown"
)

// Policy controls how unrecognized domains are treated by callers.
type Policy string

const (
	// PolicyStrict drops URLs whose domain is not in the platform table
	// before any fetching happens. This is the default for verification
	// runs, where only known platforms are worth scoring.
	PolicyStrict Policy = "strict"

	// PolicyPermissive keeps unrecognized URLs and reports them with an
	// explicit Unknown label. Used by diagnostic listing modes.
	PolicyPermissive Policy = "permissive"
)

// ParsePolicy converts a config string to a Policy, defaulting to strict.
func ParsePolicy(s string) Policy {
	if strings.EqualFold(s, string(PolicyPermissive)) {
		return PolicyPermissive
	}
	return PolicyStrict
}

// Classifier resolves URLs to platform kinds using an immutable domain table.
type Classifier struct {
	table map[string]Kind
}

// NewClassifier builds a classifier over the default platform table.
func NewClassifier() *Classifier {
	return &Classifier{table: defaultTable()}
}

// defaultTable returns the registrable-domain -> platform mapping.
func defaultTable() map[string]Kind {
	return map[string]Kind{
		"facebook.com":    Facebook,
		"instagram.com":   Instagram,
		"twitter.com":     Twitter,
		"x.com":           Twitter,
		"linkedin.com":    LinkedIn,
		"google.com":      GoogleMaps,
		"g.co":            GoogleMapsShort,
		"tripadvisor.fr":  TripAdvisor,
		"tripadvisor.com": TripAdvisor,
		"youtube.com":     YouTube,
		"youtu.be":        YouTube,
	}
}

// Classify returns the platform for a URL, or Unknown. Malformed URLs and
// hosts without a registrable domain classify as Unknown; this function
// never fails.
func (c *Classifier) Classify(rawURL string) Kind {
	domain := RegistrableDomain(rawURL)
	if domain == "" {
		return Unknown
	}
	if kind, ok := c.table[domain]; ok {
		return kind
	}
	return Unknown
}

// Domains returns the known registrable domains in sorted order.
func (c *Classifier) Domains() []string {
	domains := make([]string, 0, len(c.table))
	for d := range c.table {
		domains = append(domains, d)
	}
	sort.Strings(domains)
	return domains
}

// Lookup returns the platform for a registrable domain without URL parsing.
func (c *Classifier) Lookup(domain string) (Kind, bool) {
	kind, ok := c.table[strings.ToLower(domain)]
	return kind, ok
}

// RegistrableDomain extracts the public-suffix-aware root domain of a URL's
// host ("facebook.com" for "https://m.facebook.com/page"). Returns "" when
// the URL cannot be parsed or the host has no registrable domain.
func RegistrableDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(strings.ToLower(u.Hostname()))
	if err != nil {
		return ""
	}
	return domain
}

// SuggestionSites returns the site restrictions used when searching for
// replacement links, keyed by the platform a hit on that site maps to.
func SuggestionSites() map[Kind]string {
	return map[Kind]string{
		Facebook:        "facebook.com",
		Instagram:       "instagram.com",
		TripAdvisor:     "tripadvisor.fr",
		GoogleMapsShort: "g.co",
	}
}
