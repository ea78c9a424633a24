package fetch

import (
	"net/url"
	"path"
	"strings"
)

// skippedExtensions lists path suffixes that never contain a profile page:
// images, stylesheets, scripts, fonts and feed documents.
var skippedExtensions = map[string]struct{}{
	".png":   {},
	".jpg":   {},
	".jpeg":  {},
	".gif":   {},
	".webp":  {},
	".svg":   {},
	".ico":   {},
	".css":   {},
	".js":    {},
	".woff":  {},
	".woff2": {},
	".ttf":   {},
	".otf":   {},
	".eot":   {},
	".xml":   {},
	".rss":   {},
	".atom":  {},
}

// htmlContentTypes are the media types accepted for content analysis.
var htmlContentTypes = []string{
	"text/html",
	"application/xhtml+xml",
}

// Analyzable decides whether a response body should be parsed at all. Both
// checks must pass: the final URL's path must not end in a known non-document
// extension, and the declared content type must indicate an HTML document.
// The content-type check wins over the extension: an image served from an
// extensionless URL is still rejected.
func Analyzable(finalURL, contentType string) bool {
	if u, err := url.Parse(finalURL); err == nil {
		ext := strings.ToLower(path.Ext(u.Path))
		if _, skip := skippedExtensions[ext]; skip {
			return false
		}
	}

	mediaType := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	for _, accepted := range htmlContentTypes {
		if mediaType == accepted {
			return true
		}
	}
	return false
}
