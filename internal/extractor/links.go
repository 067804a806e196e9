package extractor

import (
	"bytes"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/webqa/internal/metadata"
	"github.com/rohmanhakim/webqa/pkg/failure"
	"golang.org/x/net/html"
)

/*
Responsibilities
- Parse HTML into a DOM tree
- Collect candidate links from a[href], link[href], script[src], img[src]
  and form[action]
- Resolve each against the page URL and strip fragments
- Drop anything that is not http or https

Extraction never decides relevance or deduplication; the crawler does.
*/

type LinkExtractor struct {
	metadataSink metadata.MetadataSink
}

func NewLinkExtractor(metadataSink metadata.MetadataSink) LinkExtractor {
	return LinkExtractor{metadataSink: metadataSink}
}

func (l *LinkExtractor) Extract(
	pageURL url.URL,
	htmlByte []byte,
) (ExtractionResult, failure.ClassifiedError) {
	doc, err := parse(htmlByte)
	if err != nil {
		var extractionError *ExtractionError
		errors.As(err, &extractionError)
		l.metadataSink.RecordError(
			time.Now(),
			"extractor",
			"LinkExtractor.Extract",
			mapExtractionErrorToMetadataCause(extractionError),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, pageURL.String()),
			},
		)
		return ExtractionResult{}, extractionError
	}

	return ExtractionResult{
		DocumentRoot: doc,
		Links:        collectLinks(doc, pageURL),
	}, nil
}

func parse(htmlByte []byte) (*html.Node, error) {
	doc, err := html.Parse(bytes.NewReader(htmlByte))
	if err != nil {
		return nil, &ExtractionError{
			Message: err.Error(),
			Cause:   ErrCauseNotHTML,
		}
	}
	return doc, nil
}

func collectLinks(doc *html.Node, pageURL url.URL) []url.URL {
	gqDoc := goquery.NewDocumentFromNode(doc)

	// <base href> changes the resolution root
	base := pageURL
	if href, ok := gqDoc.Find("base[href]").First().Attr("href"); ok {
		if resolved, ok := Resolve(pageURL, href); ok {
			base = resolved
		}
	}

	var links []url.URL
	for _, source := range linkSources {
		gqDoc.Find(source.selector).Each(func(_ int, s *goquery.Selection) {
			raw, _ := s.Attr(source.attr)
			if resolved, ok := Resolve(base, raw); ok {
				links = append(links, resolved)
			}
		})
	}
	return links
}

// Resolve resolves ref against base, strips the fragment and keeps only
// http and https results.
func Resolve(base url.URL, ref string) (url.URL, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "#") {
		return url.URL{}, false
	}
	parsed, err := url.Parse(ref)
	if err != nil {
		return url.URL{}, false
	}
	resolved := base.ResolveReference(parsed)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return url.URL{}, false
	}
	resolved.Fragment = ""
	resolved.RawFragment = ""
	return *resolved, true
}
