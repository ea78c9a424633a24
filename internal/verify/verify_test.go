package verify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/VictorBaumgartner/detect-errors/pkg/platforms"
	"github.com/VictorBaumgartner/detect-errors/pkg/search"
)

func testRecord(urls ...string) map[string]any {
	links := make([]any, len(urls))
	for i, u := range urls {
		links[i] = u
	}
	return map[string]any{
		"info": map[string]any{
			"name":      "Bistrot du Port",
			"addresses": []any{map[string]any{"city": "Nice"}},
			"tags":      []any{"restaurant"},
		},
		"links": links,
	}
}

func newTestVerifier(t *testing.T, options Options) *Verifier {
	t.Helper()
	if options.Policy == "" {
		// Test servers live on localhost, which no platform table knows.
		options.Policy = platforms.PolicyPermissive
	}
	if options.Timeout == 0 {
		options.Timeout = 5 * time.Second
	}
	v, err := New(options, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("New verifier: %v", err)
	}
	return v
}

func TestRunScoresMatchingPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><head>
			<title>Bistrot du Port - restaurant à Nice</title>
			</head><body></body></html>`))
	}))
	defer server.Close()

	v := newTestVerifier(t, Options{})
	verdicts, err := v.Run(context.Background(), testRecord(server.URL))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(verdicts) != 1 {
		t.Fatalf("expected one verdict, got %d", len(verdicts))
	}
	got := verdicts[0]
	if !got.Relevant {
		t.Errorf("matching page should be relevant: %+v", got)
	}
	if got.Score != 1.0 {
		t.Errorf("Score = %f, want 1.0", got.Score)
	}
	if got.Error != nil {
		t.Errorf("Error = %q", deref(got.Error))
	}
	if deref(got.FinalURL) == "" || *got.HTTPStatus != http.StatusOK {
		t.Errorf("fetch facts missing: %+v", got)
	}
}

func TestRunDeduplicatesURLs(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><title>Bistrot du Port Nice restaurant</title></html>"))
	}))
	defer server.Close()

	rec := testRecord(server.URL, server.URL)
	rec["nested"] = map[string]any{"again": server.URL}

	v := newTestVerifier(t, Options{Workers: 1})
	verdicts, err := v.Run(context.Background(), rec)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if requests != 1 {
		t.Errorf("duplicated URL fetched %d times, want 1", requests)
	}
	if len(verdicts) != 1 {
		t.Errorf("expected one verdict, got %d", len(verdicts))
	}
}

func TestRunTransportFailureRecorded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := server.URL
	server.Close()

	v := newTestVerifier(t, Options{Timeout: time.Second})
	verdicts, err := v.Run(context.Background(), testRecord(deadURL))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(verdicts) != 1 {
		t.Fatalf("expected one verdict, got %d", len(verdicts))
	}
	got := verdicts[0]
	if got.FinalURL != nil {
		t.Errorf("FinalURL must be nil on transport failure, got %q", deref(got.FinalURL))
	}
	if got.HTTPStatus != nil {
		t.Errorf("HTTPStatus must be nil on transport failure, got %d", *got.HTTPStatus)
	}
	if got.Relevant {
		t.Error("failed fetch cannot be relevant")
	}
	if got.Error == nil || !strings.HasPrefix(deref(got.Error), string(ErrorTransport)) {
		t.Errorf("Error = %v, want transport description", got.Error)
	}
}

func TestRunFiltersBinaryContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{0x89, 0x50})
	}))
	defer server.Close()

	v := newTestVerifier(t, Options{})
	verdicts, err := v.Run(context.Background(), testRecord(server.URL+"/logo"))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(verdicts) != 1 {
		t.Fatalf("expected one verdict, got %d", len(verdicts))
	}
	got := verdicts[0]
	if got.Relevant {
		t.Error("filtered content cannot be relevant")
	}
	if got.Error == nil || !strings.HasPrefix(deref(got.Error), string(ErrorNotAnalyzable)) {
		t.Errorf("Error = %v, want not-analyzable kind", got.Error)
	}
}

func TestRunRecordsHTTPStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	v := newTestVerifier(t, Options{})
	verdicts, err := v.Run(context.Background(), testRecord(server.URL))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	got := verdicts[0]
	if *got.HTTPStatus != http.StatusNotFound {
		t.Errorf("HTTPStatus = %d", *got.HTTPStatus)
	}
	if got.Relevant {
		t.Error("404 cannot be relevant")
	}
	if got.Error == nil || !strings.HasPrefix(deref(got.Error), string(ErrorHTTPStatus)) {
		t.Errorf("Error = %v, want http_status kind", got.Error)
	}
}

func TestRunStrictPolicyDropsUnknownDomains(t *testing.T) {
	// No server: the URL must be dropped before any fetch is attempted.
	v := newTestVerifier(t, Options{Policy: platforms.PolicyStrict, Timeout: time.Second})
	verdicts, err := v.Run(context.Background(), testRecord("https://unknown-domain-12345.example/page"))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(verdicts) != 0 {
		t.Errorf("strict policy must drop unknown domains, got %v", verdicts)
	}
}

func TestRunIrrelevantPageGetsHistoricalMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><title>Totally different business</title></html>"))
	}))
	defer server.Close()

	v := newTestVerifier(t, Options{})
	verdicts, err := v.Run(context.Background(), testRecord(server.URL))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	got := verdicts[0]
	if got.Relevant {
		t.Error("non-matching page must be irrelevant")
	}
	if deref(got.Error) != "Contenu non reconnu" {
		t.Errorf("Error = %q, want the stable historical message", deref(got.Error))
	}
}

func TestRunCancellation(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	v := newTestVerifier(t, Options{Timeout: 30 * time.Second})
	go func() {
		defer close(done)
		_, _ = v.Run(ctx, testRecord(server.URL+"/a", server.URL+"/b"))
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

// stubSearcher returns one canned hit for a single site restriction.
type stubSearcher struct {
	site string
	url  string
}

func (s *stubSearcher) Name() string { return "stub" }

func (s *stubSearcher) Search(ctx context.Context, query, site string) ([]search.Result, error) {
	if site == s.site {
		return []search.Result{{URL: s.url}}, nil
	}
	return nil, nil
}

func TestRunSuggestionOnlyPlatform(t *testing.T) {
	// Business with no discovered TripAdvisor link; the resolver finds one.
	rec := map[string]any{
		"info": map[string]any{
			"name":      "Chez Marie",
			"addresses": []any{map[string]any{"city": "Nice"}},
			"tags":      []any{"restaurant"},
		},
	}

	searcher := &stubSearcher{
		site: "tripadvisor.fr",
		url:  "https://www.tripadvisor.fr/Restaurant_Review-xyz",
	}

	v, err := New(Options{
		Policy:      platforms.PolicyStrict,
		Suggestions: true,
		Timeout:     time.Second,
	}, searcher, zap.NewNop())
	if err != nil {
		t.Fatalf("New verifier: %v", err)
	}

	verdicts, err := v.Run(context.Background(), rec)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(verdicts) != 1 {
		t.Fatalf("expected one synthetic verdict, got %d: %v", len(verdicts), verdicts)
	}
	got := verdicts[0]
	if got.InitialURL != nil {
		t.Errorf("InitialURL must be nil, got %q", deref(got.InitialURL))
	}
	if !got.Relevant {
		t.Error("suggestion-only verdict is trusted pending confirmation")
	}
	if deref(got.SuggestedURL) != "https://www.tripadvisor.fr/Restaurant_Review-xyz" {
		t.Errorf("SuggestedURL = %q", deref(got.SuggestedURL))
	}
	if got.Platform != platforms.TripAdvisor {
		t.Errorf("Platform = %q", got.Platform)
	}
}

func TestNewRejectsUnknownStrategy(t *testing.T) {
	_, err := New(Options{Strategy: "neural"}, nil, zap.NewNop())
	if err == nil {
		t.Error("unknown strategy must be rejected at construction")
	}
}
