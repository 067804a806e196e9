package extractor

import (
	"net/url"

	"golang.org/x/net/html"
)

// ExtractionResult holds the parsed document and every candidate link found
// in it, already resolved against the page URL and stripped of fragments.
// Links keep document order and may contain duplicates.
type ExtractionResult struct {
	DocumentRoot *html.Node
	Links        []url.URL
}
