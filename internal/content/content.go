// Package content derives scoreable representations from fetched HTML: the
// structured-data records embedded in the page (JSON-LD, OpenGraph,
// microdata) and a flattened text corpus of its visible identity (title,
// meta descriptions, headings).
package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Record is one structured-data item found in a page.
type Record map[string]any

// Normalized serializes the record to a lowercase JSON string for
// substring containment checks.
func (r Record) Normalized() string {
	data, err := json.Marshal(r)
	if err != nil {
		return ""
	}
	return strings.ToLower(string(data))
}

// Extraction holds everything the scorer needs from one page.
type Extraction struct {
	// Records are structured-data items in document order.
	Records []Record
	// Corpus is the flattened page text: title, meta descriptions and
	// headings, one entry per source line.
	Corpus []string
	// Warnings collects non-fatal parse problems (bad JSON-LD blocks and
	// the like); the rest of the page is still used.
	Warnings []string
}

// CorpusText returns the corpus joined into a single searchable string.
func (e *Extraction) CorpusText() string {
	return strings.Join(e.Corpus, "\n")
}

// Extract parses raw HTML and collects structured records and the text
// corpus. Malformed HTML degrades to an empty extraction with an error; a
// malformed structured-data block degrades to a warning only.
func Extract(html []byte) (*Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return &Extraction{}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	ext := &Extraction{}
	ext.collectJSONLD(doc)
	ext.collectOpenGraph(doc)
	ext.collectMicrodata(doc)
	ext.collectCorpus(doc)

	return ext, nil
}

// collectJSONLD pulls records out of ld+json script blocks. A block may hold
// a single object or an array of objects.
func (e *Extraction) collectJSONLD(doc *goquery.Document) {
	doc.Find(`script[type="application/ld+json"]`).Each(func(i int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}

		var parsed any
		if err := json.Unmarshal([]byte(text), &parsed); err != nil {
			e.Warnings = append(e.Warnings, fmt.Sprintf("invalid JSON-LD block %d: %v", i, err))
			return
		}

		switch v := parsed.(type) {
		case map[string]any:
			e.Records = append(e.Records, Record(v))
		case []any:
			for _, item := range v {
				if obj, ok := item.(map[string]any); ok {
					e.Records = append(e.Records, Record(obj))
				}
			}
		}
	})
}

// collectOpenGraph gathers og:* meta properties into a single record.
func (e *Extraction) collectOpenGraph(doc *goquery.Document) {
	og := Record{}
	doc.Find(`meta[property]`).Each(func(i int, s *goquery.Selection) {
		property, _ := s.Attr("property")
		if !strings.HasPrefix(property, "og:") {
			return
		}
		if value, ok := s.Attr("content"); ok && value != "" {
			og[property] = value
		}
	})
	if len(og) > 0 {
		e.Records = append(e.Records, og)
	}
}

// collectMicrodata gathers itemprop name/value pairs from each itemscope
// into one record per scope.
func (e *Extraction) collectMicrodata(doc *goquery.Document) {
	doc.Find(`[itemscope]`).Each(func(i int, scope *goquery.Selection) {
		item := Record{}
		if itemType, ok := scope.Attr("itemtype"); ok {
			item["@type"] = itemType
		}
		scope.Find(`[itemprop]`).Each(func(j int, prop *goquery.Selection) {
			name, _ := prop.Attr("itemprop")
			if name == "" {
				return
			}
			value, ok := prop.Attr("content")
			if !ok {
				value = strings.TrimSpace(prop.Text())
			}
			if value != "" {
				item[name] = value
			}
		})
		if len(item) > 0 {
			e.Records = append(e.Records, item)
		}
	})
}

// collectCorpus flattens the page's identity text: title, meta descriptions,
// og: content values and top-level headings.
func (e *Extraction) collectCorpus(doc *goquery.Document) {
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s != "" {
			e.Corpus = append(e.Corpus, s)
		}
	}

	add(doc.Find("title").First().Text())

	doc.Find(`meta[name="description"], meta[name="keywords"]`).Each(func(i int, s *goquery.Selection) {
		value, _ := s.Attr("content")
		add(value)
	})

	doc.Find(`meta[property]`).Each(func(i int, s *goquery.Selection) {
		property, _ := s.Attr("property")
		if strings.HasPrefix(property, "og:") {
			value, _ := s.Attr("content")
			add(value)
		}
	})

	doc.Find("h1, h2").Each(func(i int, s *goquery.Selection) {
		add(s.Text())
	})
}
