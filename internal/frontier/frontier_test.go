package frontier_test

import (
	"fmt"
	"net/url"
	"testing"

	"github.com/rohmanhakim/webqa/internal/frontier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustURL(t *testing.T, raw string) url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return *u
}

func link(t *testing.T, raw string, depth int) frontier.CrawlAdmissionCandidate {
	return frontier.NewCrawlAdmissionCandidate(
		mustURL(t, raw),
		frontier.SourceCrawl,
		frontier.NewDiscoveryMetadata(depth),
	)
}

func seed(t *testing.T, raw string) frontier.CrawlAdmissionCandidate {
	return frontier.NewCrawlAdmissionCandidate(
		mustURL(t, raw),
		frontier.SourceSeed,
		frontier.NewDiscoveryMetadata(0),
	)
}

func TestFrontier_BFSOrder(t *testing.T) {
	/*
		    A (0)
		   / \
		  B   C (1)
		  |
		  D (2)
	*/
	f := frontier.NewFrontier(3, 0)
	f.Seed(seed(t, "https://example.com/a"))

	token, ok := f.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "/a", token.URL().Path)
	assert.Equal(t, 0, token.Depth())

	assert.True(t, f.Submit(link(t, "https://example.com/b", 1)))
	assert.True(t, f.Submit(link(t, "https://example.com/c", 1)))

	token, ok = f.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "/b", token.URL().Path)

	assert.True(t, f.Submit(link(t, "https://example.com/d", 2)))

	token, ok = f.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "/c", token.URL().Path)

	token, ok = f.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "/d", token.URL().Path)
	assert.Equal(t, 2, token.Depth())

	_, ok = f.Dequeue()
	assert.False(t, ok)
	assert.Equal(t, []string{
		"https://example.com/b",
		"https://example.com/c",
		"https://example.com/d",
	}, f.Accepted())
}

func TestFrontier_RejectsDuplicateCanonicalLinks(t *testing.T) {
	f := frontier.NewFrontier(2, 0)

	assert.True(t, f.Submit(link(t, "https://example.com/docs", 1)))
	assert.False(t, f.Submit(link(t, "https://example.com/docs/", 1)))
	assert.False(t, f.Submit(link(t, "https://EXAMPLE.com/docs?x=1", 1)))

	assert.Equal(t, 1, f.AcceptedCount())
}

func TestFrontier_NeverVisitsCanonicalPageTwice(t *testing.T) {
	f := frontier.NewFrontier(2, 0)
	f.Seed(seed(t, "https://example.com/"))

	_, ok := f.Dequeue()
	require.True(t, ok)

	// the seed linked to itself under another spelling
	assert.True(t, f.Submit(link(t, "https://example.com", 1)))
	assert.True(t, f.Submit(link(t, "https://example.com/about", 1)))

	token, ok := f.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "/about", token.URL().Path)

	_, ok = f.Dequeue()
	assert.False(t, ok)
	assert.Equal(t, 2, f.VisitedCount())
}

func TestFrontier_DepthLimit(t *testing.T) {
	f := frontier.NewFrontier(1, 0)
	f.Seed(seed(t, "https://example.com"))

	_, ok := f.Dequeue()
	require.True(t, ok)

	assert.True(t, f.Submit(link(t, "https://example.com/one", 1)))
	assert.False(t, f.Submit(link(t, "https://example.com/two", 2)))

	// depth-1 pages sit at the limit and are never fetched
	_, ok = f.Dequeue()
	assert.False(t, ok)
	assert.Equal(t, []string{"https://example.com/one"}, f.Accepted())
}

func TestFrontier_ZeroDepthFetchesNothing(t *testing.T) {
	f := frontier.NewFrontier(0, 0)
	f.Seed(seed(t, "https://example.com"))

	_, ok := f.Dequeue()
	assert.False(t, ok)
}

func TestFrontier_MaxLinks(t *testing.T) {
	f := frontier.NewFrontier(5, 3)
	f.Seed(seed(t, "https://example.com"))
	_, ok := f.Dequeue()
	require.True(t, ok)

	accepted := 0
	for i := 0; i < 10; i++ {
		if f.Submit(link(t, fmt.Sprintf("https://example.com/p%d", i), 1)) {
			accepted++
		}
	}

	assert.Equal(t, 3, accepted)
	assert.Len(t, f.Accepted(), 3)
	assert.True(t, f.Full())
	assert.True(t, f.Exhausted())

	_, ok = f.Dequeue()
	assert.False(t, ok, "a full accepted set stops traversal")
}

func TestFrontier_EmptyQueueIsNotFull(t *testing.T) {
	f := frontier.NewFrontier(1, 50)
	f.Seed(seed(t, "https://example.com"))
	_, ok := f.Dequeue()
	require.True(t, ok)

	// depth-1 links are accepted without being queued
	for _, p := range []string{"/a", "/b", "/c", "/d"} {
		assert.True(t, f.Submit(link(t, "https://example.com"+p, 1)))
		assert.False(t, f.Full())
		assert.True(t, f.Exhausted())
	}
	assert.Len(t, f.Accepted(), 4)
}
