package robots

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rohmanhakim/webqa/internal/metadata"
)

/*
Checker

- Fetches robots.txt once per scheme and host and caches the resolved rules
  for its own lifetime (one crawl).
- 4xx means the host has no rules.
- Transport failures, 5xx and unreadable bodies are recorded and the host is
  treated as having no rules.
*/

const maxRobotsSize = 500 * 1024

type Checker struct {
	metadataSink metadata.MetadataSink
	httpClient   *http.Client
	userAgent    string

	mu    sync.Mutex
	rules map[string]RuleSet
}

func NewChecker(metadataSink metadata.MetadataSink, httpClient *http.Client, userAgent string) *Checker {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Checker{
		metadataSink: metadataSink,
		httpClient:   httpClient,
		userAgent:    userAgent,
		rules:        make(map[string]RuleSet),
	}
}

// Allowed reports whether the user agent may fetch target.
func (c *Checker) Allowed(ctx context.Context, target url.URL) bool {
	return c.Decide(ctx, target).Allowed
}

func (c *Checker) Decide(ctx context.Context, target url.URL) Decision {
	rules := c.rulesFor(ctx, target.Scheme, target.Host)
	path := target.EscapedPath()
	if target.RawQuery != "" {
		path += "?" + target.RawQuery
	}
	return rules.Decide(path)
}

// rulesFor serializes fetches so that each host is fetched once.
func (c *Checker) rulesFor(ctx context.Context, scheme, host string) RuleSet {
	key := strings.ToLower(scheme + "://" + host)

	c.mu.Lock()
	defer c.mu.Unlock()
	if rules, ok := c.rules[key]; ok {
		return rules
	}

	rules, err := c.fetch(ctx, key+"/robots.txt")
	if err != nil {
		c.metadataSink.RecordError(
			time.Now(),
			"robots",
			"Checker.Allowed",
			mapRobotsErrorToMetadataCause(err),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrHost, host),
			},
		)
	}
	// cancellation is not cached so a later crawl can fetch again
	if ctx.Err() == nil {
		c.rules[key] = rules
	}
	return rules
}

func (c *Checker) fetch(ctx context.Context, robotsURL string) (RuleSet, *RobotsError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return RuleSet{}, &RobotsError{Message: err.Error(), Cause: ErrCausePreFetchFailure}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/plain,*/*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return RuleSet{}, &RobotsError{Message: err.Error(), Cause: ErrCauseHttpFetchFailure}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		content, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsSize))
		if err != nil {
			return RuleSet{}, &RobotsError{Message: err.Error(), Cause: ErrCauseReadFailure}
		}
		return Parse(string(content), c.userAgent), nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return RuleSet{}, nil
	case resp.StatusCode >= 500:
		return RuleSet{}, &RobotsError{
			Message: fmt.Sprintf("status %d for %s", resp.StatusCode, robotsURL),
			Cause:   ErrCauseHttpServerError,
		}
	default:
		return RuleSet{}, &RobotsError{
			Message: fmt.Sprintf("status %d for %s", resp.StatusCode, robotsURL),
			Cause:   ErrCauseHttpUnexpected,
		}
	}
}
