package frontier

import (
	"github.com/rohmanhakim/webqa/pkg/urlutil"
)

/*
Frontier Responsibilities
- Maintain BFS ordering
- Track pages already fetched (visited) separately from links already accepted
- Bound accepted links by maxLinks
- Bound traversal by maxDepth
- Knows nothing about:
	- fetching
	- extraction
	- relevance

It is a data structure + policy module, not a pipeline executor.
*/

// Frontier is not safe for concurrent use. The crawl that owns it is sequential.
type Frontier struct {
	queue    *FIFOQueue[CrawlToken]
	visited  Set[string]
	accepted *urlutil.Index
	maxDepth int
}

func NewFrontier(maxDepth, maxLinks int) *Frontier {
	return &Frontier{
		queue:    NewFIFOQueue[CrawlToken](),
		visited:  NewSet[string](),
		accepted: urlutil.NewIndex(maxLinks),
		maxDepth: maxDepth,
	}
}

// Seed enqueues the crawl root at depth 0. The seed is a page to fetch,
// it is not an accepted link by itself.
func (f *Frontier) Seed(candidate CrawlAdmissionCandidate) {
	f.queue.Enqueue(NewCrawlToken(candidate.TargetURL(), 0))
}

// Submit offers a discovered link. It returns true when the link was accepted.
// Links deeper than maxDepth, links already accepted and links arriving after
// the accepted set is full are rejected. Accepted links are enqueued for
// fetching only when their own outgoing links could still be accepted.
func (f *Frontier) Submit(candidate CrawlAdmissionCandidate) bool {
	depth := candidate.DiscoveryMetadata().Depth()
	if depth > f.maxDepth {
		return false
	}
	target := candidate.TargetURL()
	if !f.accepted.Admit(target.String()) {
		return false
	}
	if depth < f.maxDepth {
		f.queue.Enqueue(NewCrawlToken(target, depth))
	}
	return true
}

// Dequeue returns the next page to fetch and marks it visited.
// Entries whose canonical key was already visited, or which sit at the depth
// limit, are discarded. Returns false once nothing is left to fetch or the
// accepted set is full.
func (f *Frontier) Dequeue() (CrawlToken, bool) {
	for !f.Exhausted() {
		token, _ := f.queue.Dequeue()
		u := token.URL()
		key := urlutil.CanonicalKey(u.String())
		if f.visited.Contains(key) || token.Depth() >= f.maxDepth {
			continue
		}
		f.visited.Add(key)
		return token, true
	}
	return CrawlToken{}, false
}

func (f *Frontier) Exhausted() bool {
	return f.queue.Size() == 0 || f.Full()
}

// Full reports whether the accepted set reached maxLinks. An empty queue
// does not make the frontier full: links of the page being processed may
// still be accepted.
func (f *Frontier) Full() bool {
	return f.accepted.Full()
}

// Accepted returns accepted links in acceptance order.
func (f *Frontier) Accepted() []string {
	return f.accepted.URLs()
}

func (f *Frontier) VisitedCount() int {
	return f.visited.Size()
}

func (f *Frontier) AcceptedCount() int {
	return f.accepted.Size()
}
