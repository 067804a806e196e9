package frontier

import (
	"net/url"
)

type SourceContext string

const (
	SourceSeed  SourceContext = "Seed"
	SourceCrawl SourceContext = "Crawl"
)

// CrawlToken is a frontier entry: a URL paired with the BFS depth it was discovered at.
// A token is consumed exactly once when dequeued.
type CrawlToken struct {
	url   url.URL
	depth int
}

func NewCrawlToken(u url.URL, depth int) CrawlToken {
	return CrawlToken{url: u, depth: depth}
}

func (c CrawlToken) URL() url.URL {
	return c.url
}

func (c CrawlToken) Depth() int {
	return c.depth
}

// CrawlAdmissionCandidate represents a URL that the crawler found relevant
// and wants the frontier to accept.
//
// Invariants:
// - The relevance filter has already passed
// - Fragment is already stripped
// - Frontier decides acceptance only from dedup, depth and size limits
type CrawlAdmissionCandidate struct {
	targetURL         url.URL
	sourceContext     SourceContext
	discoveryMetadata DiscoveryMetadata
}

func NewCrawlAdmissionCandidate(
	targetUrl url.URL,
	sourceContext SourceContext,
	discoveryMetadata DiscoveryMetadata,
) CrawlAdmissionCandidate {
	return CrawlAdmissionCandidate{
		targetURL:         targetUrl,
		sourceContext:     sourceContext,
		discoveryMetadata: discoveryMetadata,
	}
}

func (c CrawlAdmissionCandidate) TargetURL() url.URL {
	return c.targetURL
}

func (c CrawlAdmissionCandidate) SourceContext() SourceContext {
	return c.sourceContext
}

func (c CrawlAdmissionCandidate) DiscoveryMetadata() DiscoveryMetadata {
	return c.discoveryMetadata
}

type DiscoveryMetadata struct {
	depth int
}

func NewDiscoveryMetadata(depth int) DiscoveryMetadata {
	return DiscoveryMetadata{depth: depth}
}

func (d DiscoveryMetadata) Depth() int {
	return d.depth
}
