package duckduckgo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

const resultsPage = `<html><body>
<div class="result">
  <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fwww.facebook.com%2Fbistrot-du-port&amp;rut=abc">Bistrot du Port - Facebook</a>
</div>
<div class="result">
  <a class="result__a" href="https://www.tripadvisor.fr/Restaurant_Review-xyz">Bistrot du Port - TripAdvisor</a>
</div>
<div class="result">
  <a class="result__a">no href</a>
</div>
</body></html>`

func TestSearch(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		_, _ = w.Write([]byte(resultsPage))
	}))
	defer server.Close()

	client := NewWithBaseURL(server.URL, 2*time.Second)
	results, err := client.Search(context.Background(), "Bistrot du Port Nice restaurant", "facebook.com")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if gotQuery != "Bistrot du Port Nice restaurant site:facebook.com" {
		t.Errorf("query = %q", gotQuery)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d: %v", len(results), results)
	}
	if results[0].URL != "https://www.facebook.com/bistrot-du-port" {
		t.Errorf("redirect not unwrapped: %q", results[0].URL)
	}
	if results[1].URL != "https://www.tripadvisor.fr/Restaurant_Review-xyz" {
		t.Errorf("direct link mangled: %q", results[1].URL)
	}
	if results[0].Title != "Bistrot du Port - Facebook" {
		t.Errorf("Title = %q", results[0].Title)
	}
}

func TestSearchEmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>no results</body></html>"))
	}))
	defer server.Close()

	client := NewWithBaseURL(server.URL, 2*time.Second)
	results, err := client.Search(context.Background(), "nothing", "")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %v", results)
	}
}

func TestSearchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewWithBaseURL(server.URL, 2*time.Second)
	if _, err := client.Search(context.Background(), "q", ""); err == nil {
		t.Error("expected error on HTTP 429")
	}
}

func TestUnwrapRedirect(t *testing.T) {
	testCases := []struct {
		href     string
		expected string
	}{
		{
			href:     "//duckduckgo.com/l/?uddg=" + url.QueryEscape("https://g.co/kgs/abc") + "&rut=x",
			expected: "https://g.co/kgs/abc",
		},
		{
			href:     "https://direct.example.com/page",
			expected: "https://direct.example.com/page",
		},
		{
			href:     "javascript:void(0)",
			expected: "",
		},
		{
			href:     "",
			expected: "",
		},
	}

	for _, tc := range testCases {
		if got := unwrapRedirect(tc.href); got != tc.expected {
			t.Errorf("unwrapRedirect(%q) = %q, want %q", tc.href, got, tc.expected)
		}
	}
}
