package verify

import (
	"fmt"

	"github.com/VictorBaumgartner/detect-errors/pkg/platforms"
)

// ErrorKind categorizes per-URL failures. None of them abort a run.
type ErrorKind string

const (
	// ErrorTransport covers DNS, connection and timeout failures.
	ErrorTransport ErrorKind = "transport_error"
	// ErrorHTTPStatus marks responses with status >= 400.
	ErrorHTTPStatus ErrorKind = "http_status"
	// ErrorNotAnalyzable marks responses filtered before parsing
	// (binary assets, non-HTML content types).
	ErrorNotAnalyzable ErrorKind = "content_not_analyzable"
	// ErrorUnparseable marks HTML that could not be parsed.
	ErrorUnparseable ErrorKind = "unparseable_content"
	// ErrorNotRecognized marks pages that fetched fine but did not match
	// the business identity.
	ErrorNotRecognized ErrorKind = "content_not_recognized"
)

// notRecognizedMessage is the historical value downstream consumers match
// against; keep it stable.
const notRecognizedMessage = "Contenu non reconnu"

// Verdict is the terminal record for one platform (or, in permissive mode,
// one unrecognized URL). Field names follow the established output contract
// and stay French where downstream consumers expect it.
type Verdict struct {
	InitialURL   *string        `json:"initial_url"`
	FinalURL     *string        `json:"final_url"`
	Platform     platforms.Kind `json:"reseau"`
	HTTPStatus   *int           `json:"http_status"`
	Relevant     bool           `json:"pertinent"`
	Score        float64        `json:"score"`
	Error        *string        `json:"erreur"`
	SuggestedURL *string        `json:"url_corrigee"`
}

// fail records an error kind with detail on the verdict.
func (v *Verdict) fail(kind ErrorKind, detail string) {
	msg := string(kind)
	if detail != "" {
		msg = fmt.Sprintf("%s: %s", kind, detail)
	}
	v.Error = &msg
	v.Relevant = false
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
