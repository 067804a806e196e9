package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rohmanhakim/webqa/internal/extractor"
	"github.com/rohmanhakim/webqa/internal/fetcher"
	"github.com/rohmanhakim/webqa/internal/frontier"
	"github.com/rohmanhakim/webqa/internal/metadata"
	"github.com/rohmanhakim/webqa/pkg/limiter"
	"github.com/rohmanhakim/webqa/pkg/urlutil"
)

/*
 Crawler is the sole control-plane authority of link discovery.

 - Crawling is sequential: one fetch at a time, spaced by the politeness limiter.
 - Only the crawler constructs CrawlAdmissionCandidate and submits to the frontier.
 - Relevance is decided here, before submission. Dedup, depth and size limits
   are decided by the frontier.
 - A page that fails to fetch or parse yields no links. It never aborts the crawl.
 - Metadata emission is observational only.
*/

var ErrInvalidSeed = errors.New("invalid seed url")

// AdmissionPolicy vetoes discovered links before they reach the frontier.
// The seed is never checked.
type AdmissionPolicy interface {
	Allowed(ctx context.Context, target url.URL) bool
}

type Option func(*Crawler)

func WithAdmissionPolicy(policy AdmissionPolicy) Option {
	return func(c *Crawler) {
		c.policy = policy
	}
}

type Crawler struct {
	metadataSink   metadata.MetadataSink
	crawlFinalizer metadata.CrawlFinalizer
	fetcher        fetcher.Fetcher
	linkExtractor  extractor.LinkExtractor
	limiter        limiter.Limiter
	policy         AdmissionPolicy
	userAgent      string
}

func NewCrawler(
	metadataSink metadata.MetadataSink,
	crawlFinalizer metadata.CrawlFinalizer,
	pageFetcher fetcher.Fetcher,
	politeness limiter.Limiter,
	userAgent string,
	opts ...Option,
) *Crawler {
	c := &Crawler{
		metadataSink:   metadataSink,
		crawlFinalizer: crawlFinalizer,
		fetcher:        pageFetcher,
		linkExtractor:  extractor.NewLinkExtractor(metadataSink),
		limiter:        politeness,
		userAgent:      userAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Crawl runs a breadth-first traversal from seed and returns the accepted links
// in discovery order. At most maxLinks links are returned (maxLinks <= 0 means
// unbounded) and no link beyond maxDepth is included. The seed itself is only
// returned if some crawled page links to it.
//
// When ctx is cancelled the links accepted so far are returned together with
// the context error.
func (c *Crawler) Crawl(ctx context.Context, seed string, maxDepth, maxLinks int) ([]string, error) {
	seedURL, err := ParseSeed(seed)
	if err != nil {
		return nil, err
	}

	startTime := time.Now()
	pages, pageErrors := 0, 0

	f := frontier.NewFrontier(maxDepth, maxLinks)
	f.Seed(frontier.NewCrawlAdmissionCandidate(
		seedURL,
		frontier.SourceSeed,
		frontier.NewDiscoveryMetadata(0),
	))

	var crawlErr error
	for {
		if crawlErr = ctx.Err(); crawlErr != nil {
			break
		}
		token, ok := f.Dequeue()
		if !ok {
			break
		}
		if crawlErr = c.limiter.Wait(ctx); crawlErr != nil {
			break
		}

		pages++
		links, ok := c.visit(ctx, token)
		if !ok {
			pageErrors++
			continue
		}

		for _, link := range links {
			if !extractor.IsRelevant(link, seedURL) {
				continue
			}
			if c.policy != nil && !c.policy.Allowed(ctx, link) {
				continue
			}
			f.Submit(frontier.NewCrawlAdmissionCandidate(
				link,
				frontier.SourceCrawl,
				frontier.NewDiscoveryMetadata(token.Depth()+1),
			))
			if f.Full() {
				break
			}
		}
	}

	accepted := f.Accepted()
	if maxLinks > 0 && len(accepted) > maxLinks {
		accepted = accepted[:maxLinks]
	}
	result := urlutil.RemoveDuplicates(accepted)

	c.crawlFinalizer.RecordFinalCrawlStats(pages, pageErrors, len(result), time.Since(startTime))
	return result, crawlErr
}

// visit fetches one page and extracts its candidate links. Errors are already
// recorded by the fetcher and extractor; the caller only needs to skip the page.
func (c *Crawler) visit(ctx context.Context, token frontier.CrawlToken) ([]url.URL, bool) {
	result, err := c.fetcher.Fetch(ctx, token.Depth(), fetcher.NewFetchParam(token.URL(), c.userAgent))
	if err != nil {
		return nil, false
	}
	extraction, err := c.linkExtractor.Extract(result.FinalURL(), result.Body())
	if err != nil {
		return nil, false
	}
	return extraction.Links, true
}

// ParseSeed defaults a missing scheme to http and requires a host.
func ParseSeed(seed string) (url.URL, error) {
	seed = strings.TrimSpace(seed)
	if !strings.HasPrefix(strings.ToLower(seed), "http://") && !strings.HasPrefix(strings.ToLower(seed), "https://") {
		seed = "http://" + seed
	}
	u, err := url.Parse(seed)
	if err != nil {
		return url.URL{}, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}
	if u.Host == "" {
		return url.URL{}, fmt.Errorf("%w: %q has no host", ErrInvalidSeed, seed)
	}
	u.Fragment = ""
	u.RawFragment = ""
	return *u, nil
}
