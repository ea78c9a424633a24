// Package search defines the external search capability the pipeline uses
// to find replacement candidate links, plus a registry of providers.
package search

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Result is one search hit.
type Result struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// Searcher runs a free-text query restricted to one site and returns hits
// in rank order. Implementations must tolerate empty result sets; callers
// only rely on the first hit.
type Searcher interface {
	Name() string
	Search(ctx context.Context, query, site string) ([]Result, error)
}

var (
	mu        sync.RWMutex
	providers = make(map[string]Searcher)
)

// Register adds a search provider under its name. Duplicate registration is
// a programming error.
func Register(s Searcher) error {
	mu.Lock()
	defer mu.Unlock()

	name := s.Name()
	if _, exists := providers[name]; exists {
		return fmt.Errorf("search provider %q already registered", name)
	}
	providers[name] = s
	return nil
}

// Get returns a registered provider by name.
func Get(name string) (Searcher, bool) {
	mu.RLock()
	defer mu.RUnlock()

	s, ok := providers[name]
	return s, ok
}

// Providers lists registered provider names in sorted order.
func Providers() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
